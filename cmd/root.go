// Package cmd provides CLI commands for orcidator.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func setupLogger() {
	logLevel := strings.ToUpper(os.Getenv("LOG_LEVEL"))
	if logLevel == "" {
		logLevel = "INFO"
	}

	var level slog.Level
	switch logLevel {
	case "DEBUG":
		level = slog.LevelDebug
	case "INFO":
		level = slog.LevelInfo
	case "WARN", "WARNING":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := slog.NewTextHandler(os.Stderr, opts)
	logger := slog.New(handler)

	slog.SetDefault(logger)
}

var rootCmd = &cobra.Command{
	Use:   "orcidator",
	Short: "Import ORCID profiles into Wikidata",
	Long: `Orcidator turns a researcher's public ORCID record into QuickStatements
for Wikidata.

Institutions and roles are resolved to Wikidata items through GRID identifiers
already on Wikidata, or through a local controlled vocabulary that grows as
unknown names are resolved interactively.

Examples:
  orcidator render 0000-0003-4423-4370
  orcidator render 0000-0003-4423-4370 -o ada.qs --vocabulary-dir ./vocabulary
  orcidator vocabulary show institutions
  orcidator validate --vocabulary-dir ./vocabulary`,
	SilenceUsage:      true,
	PersistentPreRunE: preRun,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(doisCmd)
	rootCmd.AddCommand(vocabularyCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(profilesCmd)
}

// envFlags maps flag names to the environment variables that supply them
// when the flag is not given.
var envFlags = map[string]string{
	"vocabulary-dir":  "ORCIDATOR_VOCABULARY_DIR",
	"orcid-api":       "ORCID_API_URL",
	"sparql-endpoint": "WIKIDATA_SPARQL_URL",
	"wikidata-api":    "WIKIDATA_API_URL",
}

// preRun loads .env, installs the logger and then fills unset flags from the
// environment. Variables from .env never override the real environment.
func preRun(cmd *cobra.Command, args []string) error {
	dotenvErr := godotenv.Load()
	setupLogger()
	if dotenvErr != nil && !errors.Is(dotenvErr, fs.ErrNotExist) {
		slog.Warn("failed to load .env", "error", dotenvErr)
	}
	return applyEnv(cmd)
}

// applyEnv sets every flag of cmd listed in envFlags that was not given on
// the command line and has its variable set.
func applyEnv(cmd *cobra.Command) error {
	for name, key := range envFlags {
		f := cmd.Flags().Lookup(name)
		if f == nil || f.Changed {
			continue
		}
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		if err := cmd.Flags().Set(name, v); err != nil {
			return fmt.Errorf("applying %s: %w", key, err)
		}
		slog.Debug("flag from environment", "flag", name, "env", key)
	}
	return nil
}
