package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/forgefit-labs/discovery/internal/core/domain"
)

var logMinutes int

var logCmd = &cobra.Command{
	Use:   "log [workout-id]",
	Short: "Record a completed workout session",
	Long: `Appends a completed session to your training history. History feeds the
rest-day gates, the repeat penalty, and novelty scoring used by recommend
and discover.`,
	Args: cobra.ExactArgs(1),
	RunE: runLog,
}

func init() {
	logCmd.Flags().IntVarP(&logMinutes, "minutes", "m", 0, "session length in minutes (0 = use the workout's duration)")
	rootCmd.AddCommand(logCmd)
}

func runLog(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	doc, err := store.WorkoutStore().GetWorkout(ctx, args[0])
	if err != nil {
		return fmt.Errorf("looking up workout %q: %w", args[0], err)
	}

	minutes := logMinutes
	if minutes == 0 {
		minutes = doc.Metadata.DurationMinutes
	}

	now := time.Now()
	session := domain.Session{
		ID:              uuid.NewString(),
		WorkoutID:       doc.ID,
		Title:           doc.Title,
		Source:          doc.Source,
		StartedAt:       now.Add(-time.Duration(minutes) * time.Minute),
		EndedAt:         now,
		DurationMinutes: minutes,
		FocusTags:       doc.Metadata.FocusTags,
	}.Finalize()

	if err := store.HistoryStore().AppendSession(ctx, session); err != nil {
		return fmt.Errorf("recording session: %w", err)
	}

	cmd.Printf("Logged %s (%d min)\n", doc.Title, session.DurationMinutes)
	return nil
}
