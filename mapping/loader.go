package mapping

import (
	"embed"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultProfile is the name of the embedded profile used when none is chosen.
const DefaultProfile = "wikidata"

//go:embed profiles/*.yaml
var embeddedProfiles embed.FS

// ProfileRegistry holds loaded profiles.
type ProfileRegistry struct {
	profiles map[string]*Profile
}

// NewProfileRegistry creates a new profile registry with embedded profiles loaded.
func NewProfileRegistry() (*ProfileRegistry, error) {
	r := &ProfileRegistry{
		profiles: make(map[string]*Profile),
	}

	entries, err := embeddedProfiles.ReadDir("profiles")
	if err != nil {
		return nil, fmt.Errorf("reading embedded profiles: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		data, err := embeddedProfiles.ReadFile("profiles/" + entry.Name())
		if err != nil {
			return nil, err
		}

		profile, err := parseProfile(data)
		if err != nil {
			return nil, fmt.Errorf("embedded profile %s: %w", entry.Name(), err)
		}

		// Use filename without extension as profile name if not set
		if profile.Name == "" {
			profile.Name = strings.TrimSuffix(entry.Name(), ".yaml")
		}
		r.profiles[profile.Name] = profile
	}

	return r, nil
}

// LoadProfile loads a profile from a file path.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile file: %w", err)
	}

	profile, err := parseProfile(data)
	if err != nil {
		return nil, err
	}
	if profile.Name == "" {
		profile.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return profile, nil
}

// LoadProfileFromString loads a profile from YAML content.
func LoadProfileFromString(content string) (*Profile, error) {
	return parseProfile([]byte(content))
}

func parseProfile(data []byte) (*Profile, error) {
	var profile Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("parsing profile YAML: %w", err)
	}
	return &profile, nil
}

// Get retrieves a profile by name.
func (r *ProfileRegistry) Get(name string) (*Profile, bool) {
	p, ok := r.profiles[name]
	return p, ok
}

// Register adds a profile to the registry.
func (r *ProfileRegistry) Register(profile *Profile) {
	r.profiles[profile.Name] = profile
}

// List returns all registered profile names in sorted order.
func (r *ProfileRegistry) List() []string {
	return slices.Sorted(maps.Keys(r.profiles))
}

// Resolve picks the profile for a run. A custom file is layered over the
// named profile (or the default one) and the result is validated.
func (r *ProfileRegistry) Resolve(name, file string) (*Profile, error) {
	if name == "" {
		name = DefaultProfile
	}
	base, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown profile: %s", name)
	}

	profile := base
	if file != "" {
		custom, err := LoadProfile(file)
		if err != nil {
			return nil, err
		}
		profile = MergeProfiles(base, custom)
	}

	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("profile %s: %w", profile.Name, err)
	}
	return profile, nil
}

// MergeProfiles merges a custom profile over a base profile.
// Fields set in custom override base fields; maps are merged key by key.
func MergeProfiles(base, custom *Profile) *Profile {
	merged := *base
	merged.Registries = maps.Clone(base.Registries)
	merged.ExternalIDs = maps.Clone(base.ExternalIDs)
	merged.Subject.Identity = slices.Clone(base.Subject.Identity)

	if custom.Name != "" {
		merged.Name = custom.Name
	}
	if custom.Description != "" {
		merged.Description = custom.Description
	}
	if custom.ReferenceProperty != "" {
		merged.ReferenceProperty = custom.ReferenceProperty
	}

	if custom.Subject.ORCIDProperty != "" {
		merged.Subject.ORCIDProperty = custom.Subject.ORCIDProperty
	}
	if custom.Subject.LabelLanguage != "" {
		merged.Subject.LabelLanguage = custom.Subject.LabelLanguage
	}
	if custom.Subject.Description != "" {
		merged.Subject.Description = custom.Subject.Description
	}
	if len(custom.Subject.Identity) > 0 {
		merged.Subject.Identity = slices.Clone(custom.Subject.Identity)
	}

	mergeAffiliation(&merged.Employment, custom.Employment)
	mergeAffiliation(&merged.Education, custom.Education)

	if custom.StartQualifier != "" {
		merged.StartQualifier = custom.StartQualifier
	}
	if custom.EndQualifier != "" {
		merged.EndQualifier = custom.EndQualifier
	}

	if merged.Registries == nil && len(custom.Registries) > 0 {
		merged.Registries = make(map[string]string)
	}
	maps.Copy(merged.Registries, custom.Registries)

	if merged.ExternalIDs == nil && len(custom.ExternalIDs) > 0 {
		merged.ExternalIDs = make(map[string]string)
	}
	maps.Copy(merged.ExternalIDs, custom.ExternalIDs)

	if custom.Vocabulary.Institutions != "" {
		merged.Vocabulary.Institutions = custom.Vocabulary.Institutions
	}
	if custom.Vocabulary.Roles != "" {
		merged.Vocabulary.Roles = custom.Vocabulary.Roles
	}

	return &merged
}

func mergeAffiliation(dst *AffiliationConfig, src AffiliationConfig) {
	if src.Property != "" {
		dst.Property = src.Property
	}
	if src.RoleQualifier != "" {
		dst.RoleQualifier = src.RoleQualifier
	}
}
