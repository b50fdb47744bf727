package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/warp/overtime-board/roster"
)

var rosterCmd = &cobra.Command{
	Use:   "roster",
	Short: "Roster file utilities",
}

var rosterCheckCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Parse the roster and print how logins map to quarterly buckets",
	Long: `Parses the roster file (the configured roster.path unless a path is
given) and prints the number of logins per quarterly bucket. Exits non-zero
if the file cannot be read or has no login column.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRosterCheck,
}

func init() {
	rosterCmd.AddCommand(rosterCheckCmd)
}

func runRosterCheck(cmd *cobra.Command, args []string) error {
	path := cfg.Roster.Path
	if len(args) == 1 {
		path = args[0]
	}

	lookup, err := roster.Load(path)
	if err != nil {
		return err
	}

	managers, err := cfg.ManagerTable()
	if err != nil {
		return fmt.Errorf("invalid managers config: %w", err)
	}

	perBucket := make(map[string]int)
	for _, login := range lookup.Logins() {
		rec, _ := lookup.Resolve(login)
		perBucket[managers.Resolve(rec.Manager)]++
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d logins\n", path, lookup.Len())
	for _, name := range managers.Buckets() {
		fmt.Fprintf(out, "  %-10s %3d\n", name, perBucket[name])
	}
	return nil
}
