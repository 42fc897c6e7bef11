package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var highlightClear bool

var highlightCmd = &cobra.Command{
	Use:   "highlight [vendor-id]",
	Short: "Set or read the highlighted vendor",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHighlight,
}

func init() {
	highlightCmd.Flags().BoolVar(&highlightClear, "clear", false, "clear the highlight")

	rootCmd.AddCommand(highlightCmd)
}

func runHighlight(cmd *cobra.Command, args []string) error {
	c := newClient()

	switch {
	case highlightClear:
		resp, err := c.SetHighlight(cmd.Context(), nil)
		if err != nil {
			return err
		}
		return printHighlight(resp.VendorID)
	case len(args) == 1:
		resp, err := c.SetHighlight(cmd.Context(), &args[0])
		if err != nil {
			return err
		}
		return printHighlight(resp.VendorID)
	default:
		resp, err := c.GetHighlight(cmd.Context())
		if err != nil {
			return err
		}
		return printHighlight(resp.VendorID)
	}
}

func printHighlight(vendorID *string) error {
	if jsonOutput() {
		return outputJSON(map[string]*string{"vendor_id": vendorID})
	}
	if vendorID == nil {
		fmt.Println("no highlight")
		return nil
	}
	fmt.Printf("highlighted vendor: %s\n", *vendorID)
	return nil
}
