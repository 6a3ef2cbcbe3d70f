package mapping

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultProfile(t *testing.T) *Profile {
	t.Helper()
	r, err := NewProfileRegistry()
	require.NoError(t, err)
	p, ok := r.Get(DefaultProfile)
	require.True(t, ok, "embedded default profile missing")
	return p
}

func TestEmbeddedDefaultProfile(t *testing.T) {
	p := defaultProfile(t)
	require.NoError(t, p.Validate())

	assert.Equal(t, "S854", p.ReferenceProperty)
	assert.Equal(t, "P496", p.Subject.ORCIDProperty)
	assert.Equal(t, "researcher", p.Subject.Description)
	assert.Equal(t, []Claim{{Property: "P31", Item: "Q5"}, {Property: "P106", Item: "Q1650915"}}, p.Subject.Identity)
	assert.Equal(t, AffiliationConfig{Property: "P108", RoleQualifier: "P2868"}, p.Employment)
	assert.Equal(t, AffiliationConfig{Property: "P69", RoleQualifier: "P512"}, p.Education)
	assert.Equal(t, "P580", p.StartQualifier)
	assert.Equal(t, "P582", p.EndQualifier)

	grid, ok := p.RegistryProperty("GRID")
	assert.True(t, ok)
	assert.Equal(t, "P2427", grid)
	_, ok = p.RegistryProperty("FUNDREF")
	assert.False(t, ok)

	assert.Equal(t, map[string]string{
		"Loop profile":     "P2798",
		"Scopus Author ID": "P1153",
		"ResearcherID":     "P2038",
	}, p.ExternalIDs)
	assert.Equal(t, VocabularyConfig{Institutions: "institutions", Roles: "role"}, p.Vocabulary)
}

func TestProfileValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Profile)
		wantErr bool
	}{
		{"valid default", func(p *Profile) {}, false},
		{"bad reference property", func(p *Profile) { p.ReferenceProperty = "P854" }, true},
		{"missing employer property", func(p *Profile) { p.Employment.Property = "" }, true},
		{"item used as qualifier", func(p *Profile) { p.StartQualifier = "Q580" }, true},
		{"identity without item", func(p *Profile) { p.Subject.Identity = []Claim{{Property: "P31"}} }, true},
		{"bad registry property", func(p *Profile) { p.Registries = map[string]string{"ROR": "ror"} }, true},
		{"bad external id property", func(p *Profile) { p.ExternalIDs = map[string]string{"x": ""} }, true},
		{"missing vocabulary category", func(p *Profile) { p.Vocabulary.Roles = "" }, true},
		{"missing label language", func(p *Profile) { p.Subject.LabelLanguage = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := MergeProfiles(defaultProfile(t), &Profile{})
			tt.modify(p)
			err := p.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMergeProfilesDoesNotMutateBase(t *testing.T) {
	base := defaultProfile(t)
	custom, err := LoadProfileFromString(`
name: local
subject:
  description: scientist
education:
  role_qualifier: P1686
registries:
  ROR: P6782
external_ids:
  Loop profile: P9999
`)
	require.NoError(t, err)

	merged := MergeProfiles(base, custom)
	require.NoError(t, merged.Validate())

	assert.Equal(t, "local", merged.Name)
	assert.Equal(t, "scientist", merged.Subject.Description)
	assert.Equal(t, "P496", merged.Subject.ORCIDProperty)
	assert.Equal(t, AffiliationConfig{Property: "P69", RoleQualifier: "P1686"}, merged.Education)
	assert.Equal(t, "P6782", merged.Registries["ROR"])
	assert.Equal(t, "P2427", merged.Registries["GRID"])
	assert.Equal(t, "P9999", merged.ExternalIDs["Loop profile"])

	assert.Equal(t, "researcher", base.Subject.Description)
	assert.NotContains(t, base.Registries, "ROR")
	assert.Equal(t, "P2798", base.ExternalIDs["Loop profile"])
}

func TestRegistryResolve(t *testing.T) {
	r, err := NewProfileRegistry()
	require.NoError(t, err)
	assert.Contains(t, r.List(), DefaultProfile)

	p, err := r.Resolve("", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultProfile, p.Name)

	_, err = r.Resolve("missing", "")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("start_qualifier: P571\n"), 0644))
	p, err = r.Resolve("", path)
	require.NoError(t, err)
	assert.Equal(t, "custom", p.Name)
	assert.Equal(t, "P571", p.StartQualifier)

	require.NoError(t, os.WriteFile(path, []byte("start_qualifier: nope\n"), 0644))
	_, err = r.Resolve("", path)
	assert.Error(t, err)
}
