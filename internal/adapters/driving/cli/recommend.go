package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	recommendLimit int
	recommendJSON  bool
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend workouts from preferences and history",
	Long: `Ranks the workout library against your saved preferences and recent
training history. Each recommendation lists the reasons behind its score.`,
	Args: cobra.NoArgs,
	RunE: runRecommend,
}

func init() {
	recommendCmd.Flags().IntVarP(&recommendLimit, "limit", "n", 5, "maximum number of recommendations")
	recommendCmd.Flags().BoolVar(&recommendJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, _ []string) error {
	ranked, err := discovery.Recommend(cmd.Context(), recommendLimit)
	if err != nil {
		return fmt.Errorf("recommend failed: %w", err)
	}

	if recommendJSON {
		return printJSON(cmd, ranked)
	}

	if len(ranked) == 0 {
		cmd.Println("Nothing to recommend. Is the library empty?")
		return nil
	}

	cmd.Println("Recommendations:")
	cmd.Println()
	for i := range ranked {
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, ranked[i].Document.Title, ranked[i].Score)
		printReasons(cmd, ranked[i].Reasons)
		cmd.Println()
	}
	return nil
}
