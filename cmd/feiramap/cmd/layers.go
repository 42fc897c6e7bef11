package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/feiramap/feiramap/pkg/geomath"
)

var (
	layersZoom int
	layersLat  float64
	layersLng  float64
)

var layersCmd = &cobra.Command{
	Use:   "layers",
	Short: "Compute cluster layers on the server",
	RunE:  runLayers,
}

func init() {
	layersCmd.Flags().IntVar(&layersZoom, "zoom", 12, "map zoom level")
	layersCmd.Flags().Float64Var(&layersLat, "lat", 0, "origin latitude")
	layersCmd.Flags().Float64Var(&layersLng, "lng", 0, "origin longitude")

	rootCmd.AddCommand(layersCmd)
}

func runLayers(cmd *cobra.Command, _ []string) error {
	var origin *geomath.Point
	if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lng") {
		origin = &geomath.Point{Lat: layersLat, Lng: layersLng}
		if !origin.Valid() {
			return fmt.Errorf("origin coordinates out of range: %.4f, %.4f", layersLat, layersLng)
		}
	}

	resp, err := newClient().Layers(cmd.Context(), layersZoom, origin)
	if err != nil {
		return err
	}

	if jsonOutput() {
		return outputJSON(resp)
	}

	fmt.Printf("snapshot %s, mode %s, zoom %d\n", resp.SnapshotID, resp.Mode, resp.Zoom)
	return printLayersTable(resp.Layers)
}
