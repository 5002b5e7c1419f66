package main

import (
	"context"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/daniela/corpus-insights/internal/db"
)

var listRunsCmd = &cobra.Command{
	Use:   "list-runs",
	Short: "List persisted pipeline runs",
	Long:  "List pipeline runs recorded in the database, most recent first, with optional dataset and status filters.",
	RunE:  runListRuns,
}

var (
	listDatabaseURL string
	listDataset     string
	listStatus      string
	listLimit       int
)

func init() {
	listRunsCmd.Flags().StringVar(&listDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	listRunsCmd.Flags().StringVar(&listDataset, "dataset", "", "Filter by dataset substring")
	listRunsCmd.Flags().StringVar(&listStatus, "status", "", "Filter by status (running, completed, failed)")
	listRunsCmd.Flags().IntVar(&listLimit, "limit", 0, "Maximum rows to return (default 50)")

	rootCmd.AddCommand(listRunsCmd)
}

func runListRuns(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	databaseURL := listDatabaseURL
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
	}

	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	runs, err := database.ListRuns(ctx, db.RunFilters{
		Dataset: listDataset,
		Status:  listStatus,
		Limit:   listLimit,
	})
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		_, _ = fmt.Fprintln(os.Stdout, "No runs found.")
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Dataset", "Bucket", "Status", "Created", "Completed"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	for _, run := range runs {
		completed := ""
		if run.CompletedAt != nil {
			completed = run.CompletedAt.Format("2006-01-02 15:04")
		}
		table.Append([]string{
			run.ID.String(),
			run.Dataset,
			run.Bucket,
			run.Status,
			run.CreatedAt.Format("2006-01-02 15:04"),
			completed,
		})
	}
	table.Render()

	return nil
}
