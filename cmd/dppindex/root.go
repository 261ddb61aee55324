package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"cf_buddy/internal/platform/config"
	"cf_buddy/internal/platform/database"

	"github.com/spf13/cobra"
)

var (
	dsn     string
	timeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "dppindex",
	Short: "Inspect and repair the daily_records unique index",
	Long: `dppindex checks that daily_records is keyed by (user_id, date) and
can replace legacy unique indexes (for example ones that include level)
with the expected one.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dsn, "dsn", "", "PostgreSQL connection string (defaults to DB_* environment)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "overall operation timeout")
}

// openDB connects using --dsn, or the server's configuration when it is empty.
func openDB(ctx context.Context) (*sql.DB, error) {
	if dsn == "" {
		if err := config.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read .env: %w", err)
		}
		dsn = config.AppConfig.DBConnStr
	}
	return database.Open(ctx, dsn)
}
