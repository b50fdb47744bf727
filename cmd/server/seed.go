package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/warp/overtime-board/overtime"
	"github.com/warp/overtime-board/roster"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the store with demo entries for the roster",
	Long: `Books every roster login onto one day per week across the week picker
window (3 weeks back to 3 weeks ahead), alternating day and night shifts.
Days that are already booked are skipped, so running it twice is harmless.

Only use in development/demo environments.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().Int("per-week", 1, "Entries per login per week (1-7)")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	perWeek, _ := cmd.Flags().GetInt("per-week")
	if perWeek < 1 || perWeek > 7 {
		return fmt.Errorf("--per-week must be 1-7, got %d", perWeek)
	}

	store, err := openStore(cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	lookup, err := roster.Load(cfg.Roster.Path)
	if err != nil {
		return err
	}
	managers, err := cfg.ManagerTable()
	if err != nil {
		return fmt.Errorf("invalid managers config: %w", err)
	}
	tracker := overtime.NewTracker(store, lookup, managers, overtime.WithLogger(logger))

	added, skipped, err := seed(cmd.Context(), tracker, lookup.Logins(), perWeek)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d entries (%d already booked)\n", added, skipped)
	return nil
}

// seed is deterministic: login i on week w starts at weekday (i+w) mod 7.
func seed(ctx context.Context, tracker *overtime.Tracker, logins []string, perWeek int) (added, skipped int, err error) {
	for w, week := range tracker.Weeks() {
		for i, login := range logins {
			for k := 0; k < perWeek; k++ {
				day := week.Start.AddDate(0, 0, (i+w+k)%7)
				shift := overtime.ShiftDay
				if (i+k)%2 == 1 {
					shift = overtime.ShiftNight
				}

				_, err := tracker.Add(ctx, login, day, shift)
				switch {
				case err == nil:
					added++
				case errors.Is(err, overtime.ErrDuplicateEntry):
					skipped++
				default:
					return added, skipped, fmt.Errorf("seed %s on %s: %w", login, day.Format(overtime.DateLayout), err)
				}
			}
		}
	}
	return added, skipped, nil
}
