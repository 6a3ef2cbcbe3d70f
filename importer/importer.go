// Package importer turns an ORCID record into a QuickStatements batch for
// Wikidata.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lehigh-university-libraries/orcidator/affiliation"
	"github.com/lehigh-university-libraries/orcidator/mapping"
	"github.com/lehigh-university-libraries/orcidator/metrics"
	"github.com/lehigh-university-libraries/orcidator/orcid"
	qs "github.com/lehigh-university-libraries/orcidator/quickstatements"
)

// ErrInvalidORCID is returned for a malformed ORCID iD.
var ErrInvalidORCID = errors.New("invalid ORCID iD")

// IdentifierResolver finds entities by external identifier.
type IdentifierResolver interface {
	affiliation.IdentifierResolver
	Lookup(ctx context.Context, externalID, property string) (string, bool, error)
}

// Importer runs one import at a time. Each step blocks on its collaborator
// and any failure aborts the import without output.
type Importer struct {
	fetcher   orcid.Fetcher
	resolver  IdentifierResolver
	extractor *affiliation.Extractor
	profile   *mapping.Profile

	Metrics *metrics.Metrics
}

// New creates an Importer.
func New(fetcher orcid.Fetcher, vocabulary affiliation.Vocabulary, resolver IdentifierResolver, profile *mapping.Profile) *Importer {
	return &Importer{
		fetcher:   fetcher,
		resolver:  resolver,
		extractor: affiliation.NewExtractor(vocabulary, resolver, profile),
		profile:   profile,
	}
}

// Result is the outcome of a successful import.
type Result struct {
	ORCID    string
	Record   *orcid.Record
	Subject  qs.Subject
	Document *qs.Document
}

// Import fetches the record for id, resolves every name, and assembles the
// statements.
func (im *Importer) Import(ctx context.Context, id string) (*Result, error) {
	start := time.Now()

	id, ok := orcid.NormalizeID(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidORCID, id)
	}

	rec, err := im.fetcher.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	subject, err := im.subject(ctx, id)
	if err != nil {
		return nil, err
	}

	employments, err := im.extractor.Extract(ctx, rec.ActivitiesSummary.Employments.Summaries)
	if err != nil {
		return nil, fmt.Errorf("employments: %w", err)
	}
	educations, err := im.extractor.Extract(ctx, rec.ActivitiesSummary.Educations.Summaries)
	if err != nil {
		return nil, fmt.Errorf("educations: %w", err)
	}

	asm := NewAssembler(im.profile)
	asm.Metrics = im.Metrics
	doc := asm.Assemble(Input{
		Subject:     subject,
		ORCID:       id,
		GivenNames:  rec.Person.GivenNames(),
		FamilyName:  rec.Person.FamilyName(),
		Employments: employments,
		Educations:  educations,
		ExternalIDs: rec.Person.ExternalIDs(),
	})

	slog.Info("import complete",
		"orcid", id,
		"subject", subject.String(),
		"employments", len(employments),
		"educations", len(educations),
		"commands", doc.Len(),
		"duration", time.Since(start),
	)

	return &Result{
		ORCID:    id,
		Record:   rec,
		Subject:  subject,
		Document: doc,
	}, nil
}

// Render imports id and returns the statement text.
func (im *Importer) Render(ctx context.Context, id string) (string, error) {
	res, err := im.Import(ctx, id)
	if err != nil {
		return "", err
	}
	return res.Document.String(), nil
}

// subject finds the researcher's existing item, or a new item when none or
// several items carry the ORCID iD.
func (im *Importer) subject(ctx context.Context, id string) (qs.Subject, error) {
	qid, found, err := im.resolver.Lookup(ctx, id, im.profile.Subject.ORCIDProperty)
	if err != nil {
		return qs.Subject{}, fmt.Errorf("resolving researcher: %w", err)
	}
	if !found {
		slog.Debug("researcher not on wikidata, creating item", "orcid", id)
		return qs.NewItem(), nil
	}
	return qs.Existing(qid), nil
}
