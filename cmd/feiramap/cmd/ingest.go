package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/feiramap/feiramap/internal/catalog"
)

var ingestFile string

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Push an offer snapshot to the server",
	RunE:  runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestFile, "file", "", "offer JSON file (required)")
	cobra.CheckErr(ingestCmd.MarkFlagRequired("file"))

	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	offers, err := catalog.NewFileSource(ingestFile).Fetch(cmd.Context())
	if err != nil {
		return err
	}

	stats, err := newClient().IngestSnapshot(cmd.Context(), offers)
	if err != nil {
		return err
	}

	if jsonOutput() {
		return outputJSON(stats)
	}
	fmt.Printf("snapshot %s: %d accepted, %d dropped for bad coordinates\n",
		stats.SnapshotID, stats.Accepted, stats.FilteredGeometry)
	return nil
}
