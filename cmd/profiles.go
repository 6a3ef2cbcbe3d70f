package cmd

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/orcidator/mapping"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Inspect import profiles",
	Long:  `List and inspect the import profiles that choose Wikidata properties.`,
}

var profilesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := mapping.NewProfileRegistry()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Available profiles:")
		for _, name := range registry.List() {
			profile, _ := registry.Get(name)
			desc := ""
			if profile.Description != "" {
				desc = " - " + profile.Description
			}
			fmt.Fprintf(out, "  %s%s\n", name, desc)
		}

		return nil
	},
}

var profilesShowCmd = &cobra.Command{
	Use:   "show [profile]",
	Short: "Show profile details",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := mapping.DefaultProfile
		if len(args) == 1 {
			name = args[0]
		}

		registry, err := mapping.NewProfileRegistry()
		if err != nil {
			return err
		}

		profile, ok := registry.Get(name)
		if !ok {
			return fmt.Errorf("unknown profile: %s", name)
		}

		// Print as YAML
		out, err := yaml.Marshal(profile)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

var profilesPropertiesCmd = &cobra.Command{
	Use:   "properties [profile]",
	Short: "List the properties a profile writes",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := mapping.DefaultProfile
		if len(args) == 1 {
			name = args[0]
		}

		registry, err := mapping.NewProfileRegistry()
		if err != nil {
			return err
		}

		p, ok := registry.Get(name)
		if !ok {
			return fmt.Errorf("unknown profile: %s", name)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Properties in %s profile:\n\n", name)
		fmt.Fprintf(out, "%-30s -> %s\n", "Source", "Property")
		fmt.Fprintf(out, "%-30s    %s\n", "------", "--------")

		for _, c := range p.Subject.Identity {
			fmt.Fprintf(out, "%-30s -> %s|%s\n", "(identity)", c.Property, c.Item)
		}
		fmt.Fprintf(out, "%-30s -> %s\n", "orcid", p.Subject.ORCIDProperty)
		fmt.Fprintf(out, "%-30s -> %s (role %s)\n", "employment", p.Employment.Property, p.Employment.RoleQualifier)
		fmt.Fprintf(out, "%-30s -> %s (role %s)\n", "education", p.Education.Property, p.Education.RoleQualifier)
		fmt.Fprintf(out, "%-30s -> %s / %s\n", "start / end date", p.StartQualifier, p.EndQualifier)
		for _, source := range slices.Sorted(maps.Keys(p.Registries)) {
			fmt.Fprintf(out, "%-30s -> %s\n", "registry "+source, p.Registries[source])
		}
		for _, idType := range slices.Sorted(maps.Keys(p.ExternalIDs)) {
			fmt.Fprintf(out, "%-30s -> %s\n", idType, p.ExternalIDs[idType])
		}
		fmt.Fprintf(out, "%-30s -> %s\n", "(reference)", p.ReferenceProperty)

		return nil
	},
}

func init() {
	profilesCmd.AddCommand(profilesListCmd)
	profilesCmd.AddCommand(profilesShowCmd)
	profilesCmd.AddCommand(profilesPropertiesCmd)
}
