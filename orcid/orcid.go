// Package orcid models the public ORCID record document and fetches it from the ORCID API.
package orcid

import (
	"encoding/json"
	"regexp"
	"strings"
)

var idRegex = regexp.MustCompile(`^\d{4}-\d{4}-\d{4}-\d{3}[\dX]$`)

// NormalizeID strips a resolver prefix from an ORCID iD and reports whether the
// remainder is a well-formed iD.
func NormalizeID(id string) (string, bool) {
	id = strings.TrimSpace(id)
	id = strings.TrimPrefix(id, "https://orcid.org/")
	id = strings.TrimPrefix(id, "http://orcid.org/")
	return id, idRegex.MatchString(id)
}

// URL returns the canonical resolvable URL for an ORCID iD.
func URL(id string) string {
	return "https://orcid.org/" + id
}

// Record is the subset of an ORCID v2.0 record used for import.
type Record struct {
	Person            Person            `json:"person"`
	ActivitiesSummary ActivitiesSummary `json:"activities-summary"`

	// Raw holds the document exactly as it was returned by the API.
	Raw json.RawMessage `json:"-"`
}

// Person holds the biographical part of a record.
type Person struct {
	Name                *Name               `json:"name"`
	ExternalIdentifiers ExternalIdentifiers `json:"external-identifiers"`
}

// Name is the researcher's name block.
type Name struct {
	GivenNames *StringValue `json:"given-names"`
	FamilyName *StringValue `json:"family-name"`
}

// StringValue is ORCID's {"value": "..."} wrapper.
type StringValue struct {
	Value string `json:"value"`
}

// ExternalIdentifiers wraps the person's external identifier list.
type ExternalIdentifiers struct {
	ExternalIdentifier []ExternalIdentifier `json:"external-identifier"`
}

// ExternalIdentifier is one self-asserted identifier in another registry.
type ExternalIdentifier struct {
	Type  string `json:"external-id-type"`
	Value string `json:"external-id-value"`
}

// ActivitiesSummary groups affiliations and works.
type ActivitiesSummary struct {
	Employments Employments `json:"employments"`
	Educations  Educations  `json:"educations"`
	Works       Works       `json:"works"`
}

// Employments wraps the employment summaries.
type Employments struct {
	Summaries []AffiliationSummary `json:"employment-summary"`
}

// Educations wraps the education summaries.
type Educations struct {
	Summaries []AffiliationSummary `json:"education-summary"`
}

// AffiliationSummary is one employment or education record.
type AffiliationSummary struct {
	DepartmentName *string      `json:"department-name"`
	RoleTitle      *string      `json:"role-title"`
	StartDate      *FuzzyDate   `json:"start-date"`
	EndDate        *FuzzyDate   `json:"end-date"`
	Organization   Organization `json:"organization"`
}

// Organization is the affiliated institution as typed by the researcher.
type Organization struct {
	Name                      string                     `json:"name"`
	DisambiguatedOrganization *DisambiguatedOrganization `json:"disambiguated-organization"`
}

// DisambiguatedOrganization links an organization to an external registry.
type DisambiguatedOrganization struct {
	Identifier *string `json:"disambiguated-organization-identifier"`
	Source     string  `json:"disambiguation-source"`
}

// FuzzyDate is a date whose components may each be missing.
type FuzzyDate struct {
	Year  *StringValue `json:"year"`
	Month *StringValue `json:"month"`
	Day   *StringValue `json:"day"`
}

// Works wraps the grouped work summaries.
type Works struct {
	Group []WorkGroup `json:"group"`
}

// WorkGroup is a set of work summaries sharing external identifiers.
type WorkGroup struct {
	ExternalIDs WorkExternalIDs `json:"external-ids"`
}

// WorkExternalIDs wraps the identifiers of a work group.
type WorkExternalIDs struct {
	ExternalID []WorkExternalID `json:"external-id"`
}

// WorkExternalID is one identifier of a work, such as a DOI.
type WorkExternalID struct {
	Type  string `json:"external-id-type"`
	Value string `json:"external-id-value"`
}

// GivenNames returns the given names, or "" when absent.
func (p Person) GivenNames() string {
	if p.Name == nil || p.Name.GivenNames == nil {
		return ""
	}
	return p.Name.GivenNames.Value
}

// FamilyName returns the family name, or "" when absent.
func (p Person) FamilyName() string {
	if p.Name == nil || p.Name.FamilyName == nil {
		return ""
	}
	return p.Name.FamilyName.Value
}

// ExternalIDType is an external identifier type with its last asserted value.
type ExternalIDType struct {
	Type  string
	Value string
}

// ExternalIDs collapses the person's external identifiers by type. Types keep
// the position of their first occurrence; the last value asserted wins.
func (p Person) ExternalIDs() []ExternalIDType {
	var out []ExternalIDType
	index := make(map[string]int)
	for _, id := range p.ExternalIdentifiers.ExternalIdentifier {
		if i, ok := index[id.Type]; ok {
			out[i].Value = id.Value
			continue
		}
		index[id.Type] = len(out)
		out = append(out, ExternalIDType{Type: id.Type, Value: id.Value})
	}
	return out
}

// WorkDOIs returns the DOIs of every work group in document order.
func (r *Record) WorkDOIs() []string {
	var dois []string
	for _, group := range r.ActivitiesSummary.Works.Group {
		for _, id := range group.ExternalIDs.ExternalID {
			if id.Type == "doi" {
				dois = append(dois, id.Value)
			}
		}
	}
	return dois
}
