package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	generateCount int
	generateJSON  bool
	generateSave  bool
)

var generateCmd = &cobra.Command{
	Use:   "generate [query]",
	Short: "Generate new workout candidates",
	Long: `Creates new workout candidates for a request, regardless of what the
library already holds. Uses the live generation service when configured,
and a deterministic local fallback otherwise.`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().IntVarP(&generateCount, "count", "n", 3, "how many candidates to create (1-5)")
	generateCmd.Flags().BoolVar(&generateJSON, "json", false, "output results as JSON")
	generateCmd.Flags().BoolVar(&generateSave, "save", false, "persist the candidates to storage")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	batch, err := discovery.LoadMore(cmd.Context(), args[0], generateCount)
	if err != nil {
		return fmt.Errorf("generate failed: %w", err)
	}

	if generateSave {
		workouts := store.WorkoutStore()
		for i := range batch.Candidates {
			doc := batch.Candidates[i].Document()
			if err := workouts.SaveWorkout(cmd.Context(), &doc); err != nil {
				return fmt.Errorf("saving candidate %q: %w", doc.Title, err)
			}
		}
	}

	if generateJSON {
		return printJSON(cmd, batch)
	}

	cmd.Printf("Candidates (%s):\n\n", batch.Note)
	for i := range batch.Candidates {
		c := batch.Candidates[i]
		cmd.Printf("  [%d] %s\n", i+1, c.Title)
		if c.Summary != "" {
			cmd.Printf("      %s\n", c.Summary)
		}
		cmd.Println()
		cmd.Println(indent(c.Content.Markdown, "      "))
	}
	if batch.UsedFallback {
		cmd.Println("Some candidates came from the offline template library.")
	}
	return nil
}

// indent prefixes every non-empty line of s.
func indent(s, prefix string) string {
	var b strings.Builder
	for _, line := range strings.Split(strings.TrimRight(s, "\n"), "\n") {
		if line != "" {
			b.WriteString(prefix)
			b.WriteString(line)
		}
		b.WriteString("\n")
	}
	return b.String()
}
