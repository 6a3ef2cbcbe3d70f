package importer

import (
	"strings"

	"github.com/lehigh-university-libraries/orcidator/affiliation"
	"github.com/lehigh-university-libraries/orcidator/mapping"
	"github.com/lehigh-university-libraries/orcidator/metrics"
	"github.com/lehigh-university-libraries/orcidator/orcid"
	qs "github.com/lehigh-university-libraries/orcidator/quickstatements"
)

// Input is everything the assembler needs, already resolved.
type Input struct {
	Subject     qs.Subject
	ORCID       string
	GivenNames  string
	FamilyName  string
	Employments []affiliation.Entry
	Educations  []affiliation.Entry
	ExternalIDs []orcid.ExternalIDType
}

// Assembler renders resolved researcher data as statements. Output order is
// fixed: item creation, identity, employments, educations, external ids.
type Assembler struct {
	profile *mapping.Profile

	Metrics *metrics.Metrics
}

// NewAssembler creates an Assembler for profile.
func NewAssembler(profile *mapping.Profile) *Assembler {
	return &Assembler{profile: profile}
}

// Assemble builds the statement document.
func (a *Assembler) Assemble(in Input) *qs.Document {
	doc := &qs.Document{}
	ref := a.reference(in.ORCID)
	subj := a.profile.Subject

	if in.Subject.IsNew() {
		doc.Create()
		name := strings.TrimSpace(in.GivenNames + " " + in.FamilyName)
		doc.Label(in.Subject, subj.LabelLanguage, name)
		doc.Description(in.Subject, subj.LabelLanguage, subj.Description)
	}

	for _, c := range subj.Identity {
		a.add(doc, qs.Statement{Subject: in.Subject, Property: c.Property, Value: qs.Item(c.Item), Sources: ref})
	}
	a.add(doc, qs.Statement{Subject: in.Subject, Property: subj.ORCIDProperty, Value: qs.String(in.ORCID), Sources: ref})

	a.affiliations(doc, in.Subject, ref, in.Employments, a.profile.Employment)
	a.affiliations(doc, in.Subject, ref, in.Educations, a.profile.Education)

	for _, id := range in.ExternalIDs {
		prop, ok := a.profile.ExternalIDProperty(id.Type)
		if !ok {
			continue
		}
		a.add(doc, qs.Statement{Subject: in.Subject, Property: prop, Value: qs.String(id.Value), Sources: ref})
	}

	return doc
}

// affiliations emits one statement per entry. The end date is only written
// alongside a start date.
func (a *Assembler) affiliations(doc *qs.Document, subject qs.Subject, ref []qs.Snak, entries []affiliation.Entry, cfg mapping.AffiliationConfig) {
	for _, e := range entries {
		st := qs.Statement{Subject: subject, Property: cfg.Property, Value: qs.Item(e.Institution), Sources: ref}
		if e.HasRole() {
			st.Qualify(cfg.RoleQualifier, qs.Item(e.Role))
		}
		if e.StartDate != "" {
			st.Qualify(a.profile.StartQualifier, qs.Time(e.StartDate))
			if e.EndDate != "" {
				st.Qualify(a.profile.EndQualifier, qs.Time(e.EndDate))
			}
		}
		a.add(doc, st)
	}
}

func (a *Assembler) add(doc *qs.Document, st qs.Statement) {
	doc.Add(st)
	a.Metrics.Statement(st.Property)
}

func (a *Assembler) reference(id string) []qs.Snak {
	return []qs.Snak{{Property: a.profile.ReferenceProperty, Value: qs.String(orcid.URL(id))}}
}
