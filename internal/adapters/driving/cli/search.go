package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forgefit-labs/discovery/internal/core/domain"
)

var (
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the workout library",
	Long: `Performs hybrid search over the workout library.
Combines keyword and semantic matching; quote a phrase to require a
literal match, e.g. search '"push up" circuit'.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	results, err := discovery.Search(cmd.Context(), args[0], searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return printJSON(cmd, results)
	}

	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		title := results[i].Document.Title
		if title == "" {
			title = results[i].Document.ID
		}
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, title, results[i].Score)
		if results[i].Document.Summary != "" {
			cmd.Printf("      %s\n", results[i].Document.Summary)
		}
		cmd.Printf("      keyword %.2f / semantic %.2f\n", results[i].KeywordScore, results[i].SemanticScore)
		cmd.Println()
	}
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// printReasons prints the ranked reasons indented under a result line.
func printReasons(cmd *cobra.Command, reasons []domain.RankReason) {
	for _, reason := range reasons {
		cmd.Printf("      %+.2f %s\n", reason.Contribution, reason.Text)
	}
}
