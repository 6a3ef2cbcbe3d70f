package importer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehigh-university-libraries/orcidator/affiliation"
	"github.com/lehigh-university-libraries/orcidator/mapping"
	"github.com/lehigh-university-libraries/orcidator/metrics"
	"github.com/lehigh-university-libraries/orcidator/orcid"
	qs "github.com/lehigh-university-libraries/orcidator/quickstatements"
	"github.com/lehigh-university-libraries/orcidator/vocabulary"
	"github.com/lehigh-university-libraries/orcidator/wikidata"
)

const testORCID = "0000-0003-4423-4370"

const ref = `|S854|"https://orcid.org/0000-0003-4423-4370"`

func profile(t *testing.T) *mapping.Profile {
	t.Helper()
	r, err := mapping.NewProfileRegistry()
	require.NoError(t, err)
	p, err := r.Resolve("", "")
	require.NoError(t, err)
	return p
}

type stubFetcher struct {
	rec *orcid.Record
	err error
}

func (f stubFetcher) Fetch(ctx context.Context, id string) (*orcid.Record, error) {
	return f.rec, f.err
}

// stubResolver answers both subject lookups and registry lookups from one
// table keyed by "property=value".
type stubResolver struct {
	ids map[string]string
	err error
}

func (r stubResolver) Lookup(ctx context.Context, externalID, property string) (string, bool, error) {
	if r.err != nil {
		return "", false, r.err
	}
	id, ok := r.ids[property+"="+externalID]
	return id, ok, nil
}

func (r stubResolver) Resolve(ctx context.Context, externalID, property, def string) (string, error) {
	id, ok, err := r.Lookup(ctx, externalID, property)
	if err != nil {
		return "", err
	}
	if !ok {
		return def, nil
	}
	return id, nil
}

type stubVocabulary map[string]string

func (v stubVocabulary) Lookup(ctx context.Context, category, label string) (string, error) {
	if vocabulary.IsEntityID(label) {
		return label, nil
	}
	id, ok := v[category+"/"+label]
	if !ok {
		return "", fmt.Errorf("%s %q: %w", category, label, vocabulary.ErrNoAssignment)
	}
	return id, nil
}

func ptr(s string) *string { return &s }

func scenarioRecord() *orcid.Record {
	return &orcid.Record{
		Person: orcid.Person{
			Name: &orcid.Name{
				GivenNames: &orcid.StringValue{Value: "Ada"},
				FamilyName: &orcid.StringValue{Value: "Lovelace"},
			},
		},
		ActivitiesSummary: orcid.ActivitiesSummary{
			Employments: orcid.Employments{Summaries: []orcid.AffiliationSummary{{
				Organization: orcid.Organization{
					Name: "Lehigh University",
					DisambiguatedOrganization: &orcid.DisambiguatedOrganization{
						Identifier: ptr("grid.259029.5"),
						Source:     "GRID",
					},
				},
			}}},
			Educations: orcid.Educations{Summaries: []orcid.AffiliationSummary{{
				Organization: orcid.Organization{Name: "University of London"},
			}}},
		},
	}
}

func TestRenderNewResearcher(t *testing.T) {
	im := New(
		stubFetcher{rec: scenarioRecord()},
		stubVocabulary{"institutions/University of London": "Q99"},
		stubResolver{ids: map[string]string{"P2427=grid.259029.5": "Q42"}},
		profile(t),
	)

	got, err := im.Render(context.Background(), testORCID)
	require.NoError(t, err)

	want := strings.Join([]string{
		"CREATE",
		`LAST|Len|"Ada Lovelace"`,
		`LAST|Den|"researcher"`,
		"LAST|P31|Q5" + ref,
		"LAST|P106|Q1650915" + ref,
		`LAST|P496|"0000-0003-4423-4370"` + ref,
		"LAST|P108|Q42" + ref,
		"LAST|P69|Q99" + ref,
	}, "\n")
	assert.Equal(t, want, got)
}

func TestImportExistingResearcher(t *testing.T) {
	rec := scenarioRecord()
	rec.Person.ExternalIdentifiers.ExternalIdentifier = []orcid.ExternalIdentifier{
		{Type: "Scopus Author ID", Value: "111"},
		{Type: "Personal website", Value: "https://example.com"},
		{Type: "ResearcherID", Value: "A-1234-2010"},
		{Type: "Scopus Author ID", Value: "222"},
	}

	m := metrics.New()
	im := New(
		stubFetcher{rec: rec},
		stubVocabulary{"institutions/University of London": "Q99"},
		stubResolver{ids: map[string]string{
			"P496=" + testORCID:   "Q7259",
			"P2427=grid.259029.5": "Q42",
		}},
		profile(t),
	)
	im.Metrics = m

	res, err := im.Import(context.Background(), "https://orcid.org/"+testORCID)
	require.NoError(t, err)

	assert.Equal(t, testORCID, res.ORCID)
	assert.Equal(t, qs.Existing("Q7259"), res.Subject)
	assert.Same(t, rec, res.Record)

	want := []string{
		"Q7259|P31|Q5" + ref,
		"Q7259|P106|Q1650915" + ref,
		`Q7259|P496|"0000-0003-4423-4370"` + ref,
		"Q7259|P108|Q42" + ref,
		"Q7259|P69|Q99" + ref,
		`Q7259|P1153|"222"` + ref,
		`Q7259|P2038|"A-1234-2010"` + ref,
	}
	assert.Equal(t, want, res.Document.Lines())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StatementsTotal.WithLabelValues("P1153")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StatementsTotal.WithLabelValues("P108")))
}

func TestImportFailures(t *testing.T) {
	boom := errors.New("connection refused")

	unknownEducation := scenarioRecord()
	unknownEducation.ActivitiesSummary.Educations.Summaries[0].Organization.Name = "Nowhere College"

	badDate := scenarioRecord()
	badDate.ActivitiesSummary.Employments.Summaries[0].StartDate = &orcid.FuzzyDate{Month: &orcid.StringValue{Value: "02"}}

	tests := []struct {
		name     string
		id       string
		fetcher  stubFetcher
		resolver stubResolver
		wantErr  error
	}{
		{"invalid orcid", "not-an-orcid", stubFetcher{rec: scenarioRecord()}, stubResolver{}, ErrInvalidORCID},
		{"fetch failure", testORCID, stubFetcher{err: boom}, stubResolver{}, boom},
		{"remote failure", testORCID, stubFetcher{rec: scenarioRecord()}, stubResolver{err: boom}, boom},
		{"unresolvable institution", testORCID, stubFetcher{rec: unknownEducation}, stubResolver{}, vocabulary.ErrNoAssignment},
		{"malformed date", testORCID, stubFetcher{rec: badDate}, stubResolver{}, affiliation.ErrMissingYear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			im := New(tt.fetcher, stubVocabulary{"institutions/University of London": "Q99"}, tt.resolver, profile(t))
			res, err := im.Import(context.Background(), tt.id)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)

			out, err := im.Render(context.Background(), tt.id)
			assert.Error(t, err)
			assert.Empty(t, out)
		})
	}
}

// TestImportEndToEnd wires the real clients and vocabulary store against
// local test servers.
func TestImportEndToEnd(t *testing.T) {
	fixture, err := os.ReadFile(filepath.Join("..", "orcid", "testdata", "record.json"))
	require.NoError(t, err)

	orcidSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2.0/"+testORCID {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write(fixture)
	}))
	defer orcidSrv.Close()

	wdqs := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("query")
		switch {
		case strings.Contains(query, `wdt:P2427 "grid.259029.5"`):
			fmt.Fprint(w, `{"results":{"bindings":[{"item":{"type":"uri","value":"http://www.wikidata.org/entity/Q1520149"}}]}}`)
		default:
			fmt.Fprint(w, `{"results":{"bindings":[]}}`)
		}
	}))
	defer wdqs.Close()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "role.json"), []byte(`{"Professor": "Q121594"}`), 0644))

	assigned := vocabulary.AssignerFunc(func(ctx context.Context, category, label string, entries map[string]string) (string, error) {
		if category == "institutions" && label == "University of London" {
			return "Q170027", nil
		}
		return "", vocabulary.ErrNoAssignment
	})
	store, err := vocabulary.Load(dir, "", assigned)
	require.NoError(t, err)

	m := metrics.New()
	store.Metrics = m
	resolver := wikidata.NewResolver(wikidata.NewClient(wdqs.URL, ""))
	resolver.Metrics = m

	im := New(orcid.NewClient(orcidSrv.URL+"/v2.0"), store, resolver, profile(t))
	im.Metrics = m

	got, err := im.Render(context.Background(), testORCID)
	require.NoError(t, err)

	want := strings.Join([]string{
		"CREATE",
		`LAST|Len|"Ada Lovelace"`,
		`LAST|Den|"researcher"`,
		"LAST|P31|Q5" + ref,
		"LAST|P106|Q1650915" + ref,
		`LAST|P496|"0000-0003-4423-4370"` + ref,
		"LAST|P108|Q1520149|P2868|Q121594|P580|+2020-05-00T00:00:00Z/10" + ref,
		"LAST|P69|Q170027" + ref,
		`LAST|P1153|"222"` + ref,
		`LAST|P2038|"A-1234-2010"` + ref,
	}, "\n")
	assert.Equal(t, want, got)

	data, err := os.ReadFile(filepath.Join(dir, "institutions.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"University of London": "Q170027"}`, string(data))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.VocabularyLookupsTotal.WithLabelValues("role", metrics.ResultHit)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.VocabularyLookupsTotal.WithLabelValues("institutions", metrics.ResultMiss)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RemoteLookupsTotal.WithLabelValues("P496", metrics.ResultDefault)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RemoteLookupsTotal.WithLabelValues("P2427", metrics.ResultFound)))
}
