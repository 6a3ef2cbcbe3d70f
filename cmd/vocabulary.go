package cmd

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/orcidator/vocabulary"
)

var vocabularyCmd = &cobra.Command{
	Use:   "vocabulary",
	Short: "Inspect and extend the controlled vocabulary",
	Long: `The vocabulary maps free-text names from ORCID records to Wikidata items.
Each category (institutions, role, ...) is one JSON file in --vocabulary-dir.

Examples:
  orcidator vocabulary list
  orcidator vocabulary show role
  orcidator vocabulary add institutions "Lehigh University" Q1520149`,
}

var vocabularyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List vocabulary categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := vocabulary.Load(vocabularyDir, vocabularyPattern, nil)
		if err != nil {
			return err
		}

		categories := store.Categories()
		if len(categories) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No categories found in %s\n", vocabularyDir)
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CATEGORY\tENTRIES\tFILE")
		for _, c := range categories {
			entries, _ := store.Entries(c)
			fmt.Fprintf(w, "%s\t%d\t%s\n", c, len(entries), store.Path(c))
		}
		return w.Flush()
	},
}

var vocabularyShowCmd = &cobra.Command{
	Use:   "show <category>",
	Short: "Show the entries of a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := vocabulary.Load(vocabularyDir, vocabularyPattern, nil)
		if err != nil {
			return err
		}

		entries, ok := store.Entries(args[0])
		if !ok {
			return fmt.Errorf("unknown category: %s", args[0])
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		for _, label := range slices.Sorted(maps.Keys(entries)) {
			fmt.Fprintf(w, "%s\t%s\n", entries[label], label)
		}
		return w.Flush()
	},
}

var vocabularyAddCmd = &cobra.Command{
	Use:   "add <category> <label> <id>",
	Short: "Map a label to an identifier",
	Long: `Add one entry to a category without prompting. Existing entries are
never overwritten; edit the category file to change one.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		category, label, id := args[0], args[1], args[2]
		if !vocabulary.IsEntityID(id) {
			return fmt.Errorf("not an entity identifier: %q", id)
		}
		if vocabulary.IsEntityID(label) {
			return fmt.Errorf("label %q is already an identifier", label)
		}

		fixed := vocabulary.AssignerFunc(func(ctx context.Context, category, label string, entries map[string]string) (string, error) {
			return id, nil
		})
		store, err := vocabulary.Load(vocabularyDir, vocabularyPattern, fixed)
		if err != nil {
			return err
		}

		if entries, ok := store.Entries(category); ok {
			if existing, ok := entries[label]; ok {
				return fmt.Errorf("%s %q is already mapped to %s", category, label, existing)
			}
		}

		if _, err := store.Lookup(cmd.Context(), category, label); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %q -> %s (%s)\n", category, label, id, store.Path(category))
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{vocabularyListCmd, vocabularyShowCmd, vocabularyAddCmd} {
		addVocabularyFlags(c)
		vocabularyCmd.AddCommand(c)
	}
}
