package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/orcidator/importer"
	"github.com/lehigh-university-libraries/orcidator/mapping"
	"github.com/lehigh-university-libraries/orcidator/metrics"
	"github.com/lehigh-university-libraries/orcidator/orcid"
	"github.com/lehigh-university-libraries/orcidator/vocabulary"
	"github.com/lehigh-university-libraries/orcidator/wikidata"
)

var (
	outputFile        string
	snapshotFile      string
	metricsFile       string
	profileName       string
	profileFile       string
	vocabularyDir     string
	vocabularyPattern string
	orcidAPI          string
	sparqlEndpoint    string
	wikidataAPI       string
	nonInteractive    bool
)

var renderCmd = &cobra.Command{
	Use:   "render <orcid>",
	Short: "Render QuickStatements for an ORCID record",
	Long: `Fetch a public ORCID record and render QuickStatements that create or
update the researcher's Wikidata item.

Institutions with a GRID identifier are matched against Wikidata. Other
institutions and all role titles are looked up in the vocabulary directory;
unknown names are resolved at a prompt on stderr and saved to the vocabulary.

Output defaults to stdout.

Examples:
  # Render to stdout
  orcidator render 0000-0003-4423-4370

  # Write statements and a debug copy of the ORCID record
  orcidator render 0000-0003-4423-4370 -o ada.qs --snapshot sample.json

  # Fail instead of prompting for unknown names
  orcidator render 0000-0003-4423-4370 --non-interactive

  # Override properties with a custom profile
  orcidator render 0000-0003-4423-4370 --profile-file local.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	renderCmd.Flags().StringVar(&snapshotFile, "snapshot", "", "Write the fetched ORCID record to this JSON file")
	renderCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile")
	renderCmd.Flags().BoolVar(&nonInteractive, "non-interactive", false, "Fail on unknown names instead of prompting")
	addProfileFlags(renderCmd)
	addVocabularyFlags(renderCmd)
	addRemoteFlags(renderCmd)
}

func addProfileFlags(c *cobra.Command) {
	c.Flags().StringVarP(&profileName, "profile", "p", "", "Import profile name (default: wikidata)")
	c.Flags().StringVar(&profileFile, "profile-file", "", "Custom profile YAML layered over --profile")
}

func addVocabularyFlags(c *cobra.Command) {
	c.Flags().StringVar(&vocabularyDir, "vocabulary-dir", "vocabulary", "Directory of vocabulary category files [$ORCIDATOR_VOCABULARY_DIR]")
	c.Flags().StringVar(&vocabularyPattern, "vocabulary-pattern", vocabulary.DefaultPattern, "Glob selecting category files in --vocabulary-dir")
}

func addRemoteFlags(c *cobra.Command) {
	c.Flags().StringVar(&orcidAPI, "orcid-api", orcid.DefaultBaseURL, "ORCID public API root [$ORCID_API_URL]")
	c.Flags().StringVar(&sparqlEndpoint, "sparql-endpoint", wikidata.DefaultSPARQLEndpoint, "Wikidata SPARQL endpoint [$WIKIDATA_SPARQL_URL]")
	c.Flags().StringVar(&wikidataAPI, "wikidata-api", wikidata.DefaultAPIURL, "Wikidata action API [$WIKIDATA_API_URL]")
}

func loadProfile() (*mapping.Profile, error) {
	registry, err := mapping.NewProfileRegistry()
	if err != nil {
		return nil, err
	}
	return registry.Resolve(profileName, profileFile)
}

func runRender(cmd *cobra.Command, args []string) (err error) {
	ctx := cmd.Context()

	profile, err := loadProfile()
	if err != nil {
		return err
	}

	wd := wikidata.NewClient(sparqlEndpoint, wikidataAPI)

	var assigner vocabulary.Assigner
	if !nonInteractive {
		assigner = vocabulary.NewPromptAssigner(cmd.InOrStdin(), cmd.ErrOrStderr(), wd)
	}

	store, err := vocabulary.Load(vocabularyDir, vocabularyPattern, assigner)
	if err != nil {
		return fmt.Errorf("loading vocabulary: %w", err)
	}

	m := metrics.New()
	store.Metrics = m
	resolver := wikidata.NewResolver(wd)
	resolver.Metrics = m

	im := importer.New(orcid.NewClient(orcidAPI), store, resolver, profile)
	im.Metrics = m

	res, err := im.Import(ctx, args[0])
	if metricsFile != "" {
		if werr := m.WriteTextfile(metricsFile); werr != nil {
			slog.Warn("failed to write metrics", "path", metricsFile, "error", werr)
		}
	}
	if err != nil {
		return err
	}

	if snapshotFile != "" {
		if err := orcid.WriteSnapshot(snapshotFile, res.Record); err != nil {
			return err
		}
		slog.Debug("wrote snapshot", "path", snapshotFile)
	}

	// Determine output destination
	var output io.Writer
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("closing output file: %w", cerr)
			}
		}()
		output = f
	} else {
		output = cmd.OutOrStdout()
	}

	if _, err := res.Document.WriteTo(output); err != nil {
		return fmt.Errorf("writing statements: %w", err)
	}

	return nil
}
