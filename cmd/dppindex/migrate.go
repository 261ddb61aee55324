package main

import (
	"context"
	"fmt"

	"cf_buddy/internal/platform/database"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Drop legacy unique indexes and create the (user_id, date) one",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		dropped, err := database.MigrateUniqueIndex(ctx, db)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, name := range dropped {
			fmt.Fprintf(out, "dropped %s\n", name)
		}
		fmt.Fprintf(out, "ensured %s on (user_id, date)\n", database.DailyRecordsUserDay)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
