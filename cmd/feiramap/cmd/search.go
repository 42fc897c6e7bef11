package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var searchClear bool

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the server's snapshot",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSearch,
}

var viewCmd = &cobra.Command{
	Use:       "view <default|best_price>",
	Short:     "Toggle the server's view mode",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"default", "best_price"},
	RunE:      runView,
}

func init() {
	searchCmd.Flags().BoolVar(&searchClear, "clear", false, "clear the active search")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(viewCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchClear {
		if err := newClient().ClearSearch(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("search cleared")
		return nil
	}

	if len(args) == 0 {
		return fmt.Errorf("query required (or --clear)")
	}

	resp, err := newClient().Search(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if jsonOutput() {
		return outputJSON(resp)
	}
	fmt.Printf("%d matches, mode %s\n", resp.Matches, resp.Mode)
	return nil
}

func runView(cmd *cobra.Command, args []string) error {
	resp, err := newClient().SetView(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if jsonOutput() {
		return outputJSON(resp)
	}
	fmt.Printf("mode %s\n", resp.Mode)
	if len(resp.Results) > 0 {
		return printRankedTable(resp.Results)
	}
	return nil
}
