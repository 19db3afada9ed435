package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	applog "github.com/jonlam1989/Capstone/internal/log"
	"github.com/jonlam1989/Capstone/internal/storage"
)

func main() {
	var (
		dbPath       string
		customers    string
		transactions string
		branches     string
	)

	rootCmd := &cobra.Command{
		Use:   "ingest",
		Short: "Load cleaned customer, transaction, and branch CSV files into SQLite",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			applog.SetDefault(applog.New(applog.ParseLevel(os.Getenv("LOG_LEVEL"))))

			repo, err := storage.NewSQLiteRepository(dbPath)
			if err != nil {
				return err
			}
			defer repo.Close()

			ctx := cmd.Context()
			type job struct {
				name string
				path string
				run  func() (storage.ImportResult, error)
			}
			jobs := []job{
				{"customers", customers, func() (storage.ImportResult, error) { return repo.ImportCustomersCSV(ctx, customers) }},
				{"transactions", transactions, func() (storage.ImportResult, error) { return repo.ImportTransactionsCSV(ctx, transactions) }},
				{"branches", branches, func() (storage.ImportResult, error) { return repo.ImportBranchesCSV(ctx, branches) }},
			}
			for _, j := range jobs {
				if j.path == "" {
					continue
				}
				res, err := j.run()
				if err != nil {
					slog.Error("Import failed", "file", j.path, "relation", j.name, "error", err)
					return err
				}
				slog.Info("Import complete",
					"relation", j.name,
					"file", j.path,
					"imported", res.Imported,
					"skipped", res.Skipped)
			}
			return nil
		},
	}

	rootCmd.Flags().StringVar(&dbPath, "db", "./data/capstone.db", "SQLite database path")
	rootCmd.Flags().StringVar(&customers, "customers", "", "customer CSV file")
	rootCmd.Flags().StringVar(&transactions, "transactions", "", "credit card transaction CSV file")
	rootCmd.Flags().StringVar(&branches, "branches", "", "branch CSV file")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
