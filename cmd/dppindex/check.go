package main

import (
	"context"
	"fmt"

	"cf_buddy/internal/platform/database"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "List daily_records indexes and flag legacy unique ones",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		indexes, err := database.ListIndexes(ctx, db)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		var legacy, expected int
		for _, idx := range indexes {
			mark := " "
			switch {
			case idx.Legacy():
				mark = "!"
				legacy++
			case idx.Name == database.DailyRecordsUserDay:
				expected++
			}
			fmt.Fprintf(out, "%s %s\n    %s\n", mark, idx.Name, idx.Definition)
		}

		if expected == 0 {
			fmt.Fprintf(out, "missing unique index %s on (user_id, date)\n", database.DailyRecordsUserDay)
		}
		if legacy > 0 {
			fmt.Fprintf(out, "%d legacy unique index(es) found; run `dppindex migrate`\n", legacy)
		}
		if legacy > 0 || expected == 0 {
			return fmt.Errorf("daily_records index layout needs migration")
		}
		fmt.Fprintln(out, "index layout OK")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
