package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/orcidator/helpers"
	"github.com/lehigh-university-libraries/orcidator/vocabulary"
)

var validateVerbose bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the import profile and vocabulary",
	Long: `Validate the import profile and every vocabulary category without
contacting ORCID or Wikidata.

The profile must name a property for every statement the importer writes,
and every vocabulary entry must map to an entity identifier such as Q42.

Examples:
  orcidator validate --vocabulary-dir ./vocabulary
  orcidator validate --profile-file local.yaml --verbose`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	addProfileFlags(validateCmd)
	addVocabularyFlags(validateCmd)
	validateCmd.Flags().BoolVarP(&validateVerbose, "verbose", "v", false, "Show detailed information")
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	profile, err := loadProfile()
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	fmt.Fprintf(out, "✓ Valid profile: %s\n", profile.Name)

	store, err := vocabulary.Load(vocabularyDir, vocabularyPattern, nil)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if problems := store.Problems(); len(problems) > 0 {
		for _, p := range problems {
			fmt.Fprintf(out, "✗ %s\n", p)
		}
		return fmt.Errorf("validation failed: %d vocabulary problems", len(problems))
	}

	categories := store.Categories()
	fmt.Fprintf(out, "✓ Valid vocabulary: %d categories in %s\n", len(categories), vocabularyDir)

	for _, want := range []string{profile.Vocabulary.Institutions, profile.Vocabulary.Roles} {
		if _, ok := store.Entries(want); !ok {
			fmt.Fprintf(out, "  note: no %q category yet; it is created on the first new entry\n", want)
		}
	}

	if validateVerbose {
		fmt.Fprintln(out, "\nCategories:")
		for _, c := range categories {
			entries, _ := store.Entries(c)
			fmt.Fprintf(out, "  %-20s %5d entries  %s\n", c, len(entries), helpers.TruncateText(store.Path(c), 60))
		}
	}

	return nil
}
