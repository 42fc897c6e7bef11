package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/feiramap/feiramap/internal/catalog"
	"github.com/feiramap/feiramap/internal/engine"
	"github.com/feiramap/feiramap/pkg/geomath"
	score "github.com/feiramap/feiramap/pkg/scorer"
)

var (
	rankFile     string
	rankLat      float64
	rankLng      float64
	rankTopPicks int
	rankRemote   bool
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Score and rank offers from a JSON file",
	Long: "Reads offers from a JSON file and ranks them by the composite\n" +
		"price/distance score. Runs locally by default; --remote sends the\n" +
		"offers to a running server instead.",
	RunE: runRank,
}

func init() {
	rankCmd.Flags().StringVar(&rankFile, "file", "", "offer JSON file (required)")
	rankCmd.Flags().Float64Var(&rankLat, "lat", 0, "origin latitude")
	rankCmd.Flags().Float64Var(&rankLng, "lng", 0, "origin longitude")
	rankCmd.Flags().IntVar(&rankTopPicks, "top-picks", 3, "ranks receiving the top-pick treatment")
	rankCmd.Flags().BoolVar(&rankRemote, "remote", false, "rank via the API server")
	cobra.CheckErr(rankCmd.MarkFlagRequired("file"))

	rootCmd.AddCommand(rankCmd)
}

func rankOrigin(cmd *cobra.Command) (*geomath.Point, error) {
	if !cmd.Flags().Changed("lat") && !cmd.Flags().Changed("lng") {
		return nil, nil
	}
	origin := &geomath.Point{Lat: rankLat, Lng: rankLng}
	if !origin.Valid() {
		return nil, fmt.Errorf("origin coordinates out of range: %.4f, %.4f", rankLat, rankLng)
	}
	return origin, nil
}

func runRank(cmd *cobra.Command, _ []string) error {
	offers, err := catalog.NewFileSource(rankFile).Fetch(cmd.Context())
	if err != nil {
		return err
	}

	origin, err := rankOrigin(cmd)
	if err != nil {
		return err
	}

	if rankRemote {
		resp, err := newClient().Rank(cmd.Context(), offers, origin, rankTopPicks)
		if err != nil {
			return err
		}
		if jsonOutput() {
			return outputJSON(resp)
		}
		return printRankedTable(resp.Results)
	}

	valid, _ := engine.ValidateOffers(offers)
	ranked, _ := engine.RankOffers(valid, origin, score.DefaultWeights(), rankTopPicks)
	if jsonOutput() {
		return outputJSON(ranked)
	}
	return printRankedTable(ranked)
}
