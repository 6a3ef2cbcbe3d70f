// Package mapping provides the import profile: the Wikidata properties and
// items used when turning an ORCID record into statements.
package mapping

import (
	"fmt"
	"regexp"
)

// Profile represents a complete import configuration.
type Profile struct {
	// Name is the profile identifier
	Name string `yaml:"name" json:"name"`

	// Description provides human-readable documentation
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// ReferenceProperty cites the ORCID record on every statement (e.g., "S854" reference URL)
	ReferenceProperty string `yaml:"reference_property" json:"reference_property"`

	// Subject configures the researcher item itself
	Subject SubjectConfig `yaml:"subject" json:"subject"`

	// Employment configures statements built from employment summaries
	Employment AffiliationConfig `yaml:"employment" json:"employment"`

	// Education configures statements built from education summaries
	Education AffiliationConfig `yaml:"education" json:"education"`

	// StartQualifier and EndQualifier carry affiliation dates (e.g., "P580", "P582")
	StartQualifier string `yaml:"start_qualifier" json:"start_qualifier"`
	EndQualifier   string `yaml:"end_qualifier" json:"end_qualifier"`

	// Registries maps an ORCID disambiguation source (e.g., "GRID") to the
	// property that stores its identifiers on Wikidata
	Registries map[string]string `yaml:"registries,omitempty" json:"registries,omitempty"`

	// ExternalIDs maps ORCID external identifier types to Wikidata properties
	ExternalIDs map[string]string `yaml:"external_ids,omitempty" json:"external_ids,omitempty"`

	// Vocabulary names the vocabulary categories used for free-text labels
	Vocabulary VocabularyConfig `yaml:"vocabulary" json:"vocabulary"`
}

// SubjectConfig describes the researcher item.
type SubjectConfig struct {
	// ORCIDProperty stores the ORCID iD (e.g., "P496")
	ORCIDProperty string `yaml:"orcid_property" json:"orcid_property"`

	// LabelLanguage is the language code for the label and description of a new item
	LabelLanguage string `yaml:"label_language" json:"label_language"`

	// Description is the description given to a new item
	Description string `yaml:"description" json:"description"`

	// Identity lists the statements every researcher carries, in order
	Identity []Claim `yaml:"identity" json:"identity"`
}

// Claim is a property with an item value.
type Claim struct {
	Property string `yaml:"property" json:"property"`
	Item     string `yaml:"item" json:"item"`
}

// AffiliationConfig describes one kind of affiliation statement.
type AffiliationConfig struct {
	// Property links the researcher to the institution (e.g., "P108" employer)
	Property string `yaml:"property" json:"property"`

	// RoleQualifier carries the role (e.g., "P2868" subject has role)
	RoleQualifier string `yaml:"role_qualifier" json:"role_qualifier"`
}

// VocabularyConfig names the vocabulary categories.
type VocabularyConfig struct {
	Institutions string `yaml:"institutions" json:"institutions"`
	Roles        string `yaml:"roles" json:"roles"`
}

var (
	propertyRegex  = regexp.MustCompile(`^P[0-9]+$`)
	referenceRegex = regexp.MustCompile(`^S[0-9]+$`)
	itemRegex      = regexp.MustCompile(`^Q[0-9]+$`)
)

// Validate checks that every identifier the assembler needs is present and well formed.
func (p *Profile) Validate() error {
	if !referenceRegex.MatchString(p.ReferenceProperty) {
		return fmt.Errorf("reference_property must be a source property like S854, got %q", p.ReferenceProperty)
	}

	props := map[string]string{
		"subject.orcid_property":    p.Subject.ORCIDProperty,
		"employment.property":       p.Employment.Property,
		"employment.role_qualifier": p.Employment.RoleQualifier,
		"education.property":        p.Education.Property,
		"education.role_qualifier":  p.Education.RoleQualifier,
		"start_qualifier":           p.StartQualifier,
		"end_qualifier":             p.EndQualifier,
	}
	for name, prop := range props {
		if !propertyRegex.MatchString(prop) {
			return fmt.Errorf("%s must be a property id, got %q", name, prop)
		}
	}

	for i, c := range p.Subject.Identity {
		if !propertyRegex.MatchString(c.Property) || !itemRegex.MatchString(c.Item) {
			return fmt.Errorf("subject.identity[%d] must pair a property with an item, got %s|%s", i, c.Property, c.Item)
		}
	}
	for source, prop := range p.Registries {
		if !propertyRegex.MatchString(prop) {
			return fmt.Errorf("registries.%s must be a property id, got %q", source, prop)
		}
	}
	for idType, prop := range p.ExternalIDs {
		if !propertyRegex.MatchString(prop) {
			return fmt.Errorf("external_ids.%s must be a property id, got %q", idType, prop)
		}
	}

	if p.Vocabulary.Institutions == "" || p.Vocabulary.Roles == "" {
		return fmt.Errorf("vocabulary.institutions and vocabulary.roles are required")
	}
	if p.Subject.LabelLanguage == "" {
		return fmt.Errorf("subject.label_language is required")
	}

	return nil
}

// RegistryProperty returns the property for a disambiguation source.
func (p *Profile) RegistryProperty(source string) (string, bool) {
	prop, ok := p.Registries[source]
	return prop, ok
}

// ExternalIDProperty returns the property for an ORCID external identifier type.
func (p *Profile) ExternalIDProperty(idType string) (string, bool) {
	prop, ok := p.ExternalIDs[idType]
	return prop, ok
}
