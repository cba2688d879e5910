package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	discoverLimit int
	discoverJSON  bool
)

var discoverCmd = &cobra.Command{
	Use:   "discover [query]",
	Short: "Search, rank, and generate in one pass",
	Long: `Runs the full discovery pass for a query: hybrid search, preference and
history aware ranking, and, when retrieval is weak or the query asks for
something new, generated workout candidates.`,
	Args: cobra.ExactArgs(1),
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().IntVarP(&discoverLimit, "limit", "n", 10, "maximum number of results")
	discoverCmd.Flags().BoolVar(&discoverJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, args []string) error {
	outcome, err := discovery.Discover(cmd.Context(), args[0], discoverLimit)
	if err != nil {
		return fmt.Errorf("discover failed: %w", err)
	}

	if discoverJSON {
		return printJSON(cmd, outcome)
	}

	if len(outcome.Results) == 0 {
		cmd.Println("No library matches.")
	} else {
		cmd.Printf("Library matches (confidence %.2f):\n\n", outcome.Confidence)
		for i := range outcome.Results {
			cmd.Printf("  [%d] %s (%.2f)\n", i+1, outcome.Results[i].Document.Title, outcome.Results[i].Score)
			printReasons(cmd, outcome.Results[i].Reasons)
			cmd.Println()
		}
	}

	if outcome.Generated == nil {
		return nil
	}

	cmd.Printf("Generated candidates (%s):\n\n", outcome.Generated.Note)
	for i := range outcome.Generated.Candidates {
		c := outcome.Generated.Candidates[i]
		cmd.Printf("  [%d] %s\n", i+1, c.Title)
		if c.Summary != "" {
			cmd.Printf("      %s\n", c.Summary)
		}
		if c.Explanation != "" {
			cmd.Printf("      %s\n", c.Explanation)
		}
		cmd.Println()
	}
	return nil
}
