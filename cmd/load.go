package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pi22by7/sap-analytics-platform/internal/loader"
)

var (
	loadDir      string
	loadProvider string
	loadURLEnv   string
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load a written dataset into a SQL database",
	Long:  `Reads the dataset manifest and bulk-inserts every table into PostgreSQL, MySQL or SQLite, dropping and recreating tables on each load.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbURL := os.Getenv(loadURLEnv)
		if dbURL == "" {
			return fmt.Errorf("database URL not found in environment variable %s", loadURLEnv)
		}

		db, err := loader.Open(loadProvider, dbURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		color.Cyan("Loading dataset %s/ into %s...", loadDir, loadProvider)
		counts, err := loader.New(db, loadProvider).LoadDataset(context.Background(), loadDir)
		if err != nil {
			return err
		}

		names := make([]string, 0, len(counts))
		for name := range counts {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			color.Green("✓ %s: %d rows", name, counts[name])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
	loadCmd.Flags().StringVar(&loadDir, "dir", "data", "Dataset directory")
	loadCmd.Flags().StringVar(&loadProvider, "provider", "postgresql", "Database provider (postgresql, mysql, sqlite)")
	loadCmd.Flags().StringVar(&loadURLEnv, "url-env", "DATABASE_URL", "Environment variable holding the database URL")
}
