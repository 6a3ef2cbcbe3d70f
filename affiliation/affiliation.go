// Package affiliation turns ORCID employment and education summaries into
// resolved entries: a Wikidata institution, an optional role, and dates.
package affiliation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lehigh-university-libraries/orcidator/mapping"
	"github.com/lehigh-university-libraries/orcidator/orcid"
)

// Entry is one resolved affiliation. Role, StartDate and EndDate are empty
// when the source record lacks them.
type Entry struct {
	Role        string
	Institution string
	StartDate   string
	EndDate     string
}

// HasRole reports whether the entry carries a role.
func (e Entry) HasRole() bool { return e.Role != "" }

// Vocabulary resolves free-text labels within a category.
type Vocabulary interface {
	Lookup(ctx context.Context, category, label string) (string, error)
}

// IdentifierResolver finds the entity carrying an external registry identifier.
type IdentifierResolver interface {
	Resolve(ctx context.Context, externalID, property, def string) (string, error)
}

// Extractor resolves affiliation summaries.
type Extractor struct {
	vocabulary Vocabulary
	resolver   IdentifierResolver
	profile    *mapping.Profile
}

// NewExtractor creates an Extractor.
func NewExtractor(vocabulary Vocabulary, resolver IdentifierResolver, profile *mapping.Profile) *Extractor {
	return &Extractor{
		vocabulary: vocabulary,
		resolver:   resolver,
		profile:    profile,
	}
}

// Extract resolves every summary, preserving order. Any failure aborts the
// whole extraction.
func (e *Extractor) Extract(ctx context.Context, summaries []orcid.AffiliationSummary) ([]Entry, error) {
	entries := make([]Entry, 0, len(summaries))
	for i, s := range summaries {
		entry, err := e.extractOne(ctx, s)
		if err != nil {
			return nil, fmt.Errorf("affiliation %d (%s): %w", i, s.Organization.Name, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (e *Extractor) extractOne(ctx context.Context, s orcid.AffiliationSummary) (Entry, error) {
	var entry Entry

	// Dates are checked before any lookup; a malformed date must not write to the vocabulary.
	var err error
	if entry.StartDate, err = FormatDate(s.StartDate); err != nil {
		return Entry{}, fmt.Errorf("start date: %w", err)
	}
	if entry.EndDate, err = FormatDate(s.EndDate); err != nil {
		return Entry{}, fmt.Errorf("end date: %w", err)
	}

	if s.RoleTitle != nil {
		if entry.Role, err = e.vocabulary.Lookup(ctx, e.profile.Vocabulary.Roles, *s.RoleTitle); err != nil {
			return Entry{}, fmt.Errorf("resolving role: %w", err)
		}
	}

	if entry.Institution, err = e.institution(ctx, s.Organization); err != nil {
		return Entry{}, fmt.Errorf("resolving institution: %w", err)
	}

	return entry, nil
}

// institution resolves an organization through its registry identifier when
// it has one the profile knows, and through the vocabulary otherwise. An
// unmatched registry identifier falls back to the organization's name.
func (e *Extractor) institution(ctx context.Context, org orcid.Organization) (string, error) {
	if d := org.DisambiguatedOrganization; d != nil && d.Identifier != nil {
		if property, ok := e.profile.RegistryProperty(d.Source); ok {
			slog.Debug("resolving institution by registry", "source", d.Source, "id", *d.Identifier, "name", org.Name)
			return e.resolver.Resolve(ctx, *d.Identifier, property, org.Name)
		}
	}
	return e.vocabulary.Lookup(ctx, e.profile.Vocabulary.Institutions, org.Name)
}
