package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/s0up4200/holocron/loader"
	"github.com/s0up4200/holocron/swapi"
)

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test connection to SWAPI",
	Long:  `Test the connection to the configured SWAPI instance and display basic information.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTest(cmd.Context(), cmd.OutOrStdout())
	},
}

func runTest(ctx context.Context, w io.Writer) error {
	fmt.Fprintf(w, "Testing connection to SWAPI at %s...\n", client.BaseURL())

	if err := client.TestConnection(ctx); err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	fmt.Fprintln(w, "✓ Connection successful!")

	page, err := swapi.FetchCollection[swapi.Planet](ctx, client, swapi.ResourcePlanets, "", 1)
	if err != nil {
		return fmt.Errorf("failed to get planets: %w", err)
	}

	fmt.Fprintf(w, "\nSWAPI Statistics:\n")
	fmt.Fprintf(w, "- Total planets: %d\n", page.Count)
	fmt.Fprintf(w, "- Pages: %d\n", loader.TotalPages(page.Count))

	if presets := filters.Presets(); len(presets) > 0 {
		fmt.Fprintf(w, "- Filter presets: %d\n", len(presets))
	}
	return nil
}
