package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/orcidator/orcid"
)

var doisAPI string

var doisCmd = &cobra.Command{
	Use:   "dois <orcid>",
	Short: "List the DOIs of a researcher's works",
	Long: `Fetch a public ORCID record and print the DOI of every work group,
one per line, in record order.

Example:
  orcidator dois 0000-0003-4423-4370 > dois.txt`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, ok := orcid.NormalizeID(args[0])
		if !ok {
			return fmt.Errorf("invalid ORCID iD: %q", args[0])
		}

		rec, err := orcid.NewClient(doisAPI).Fetch(cmd.Context(), id)
		if err != nil {
			return err
		}

		for _, doi := range rec.WorkDOIs() {
			fmt.Fprintln(cmd.OutOrStdout(), doi)
		}
		return nil
	},
}

func init() {
	doisCmd.Flags().StringVar(&doisAPI, "orcid-api", orcid.DefaultBaseURL, "ORCID public API root [$ORCID_API_URL]")
}
