package main

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/afu9/controlplane/pkg/ledger"
)

var migrationsLimit int

var migrationsCmd = &cobra.Command{
	Use:   "migrations",
	Short: "Inspect the schema-migration ledger",
}

var migrationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List applied migrations, ordered by filename",
	RunE:  runMigrationsList,
}

var migrationsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show ledger presence, latest migration, and count",
	RunE:  runMigrationsStatus,
}

var migrationsCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the number of applied migrations",
	RunE:  runMigrationsCount,
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check database reachability",
	RunE:  runHealth,
}

func init() {
	migrationsListCmd.Flags().IntVar(&migrationsLimit, "limit", ledger.DefaultListLimit, "Maximum entries to list")

	migrationsCmd.AddCommand(migrationsListCmd)
	migrationsCmd.AddCommand(migrationsStatusCmd)
	migrationsCmd.AddCommand(migrationsCountCmd)
}

func formatApplied(at *time.Time) string {
	if at == nil {
		return "(unknown)"
	}
	return at.Format(time.RFC3339)
}

func runMigrationsList(cmd *cobra.Command, args []string) error {
	store, err := newLedgerStore()
	if err != nil {
		return err
	}

	rows, err := store.ListApplied(cmd.Context(), migrationsLimit)
	if err != nil {
		return err
	}

	headers := []string{"Filename", "SHA256", "Applied At"}
	table := make([][]string, 0, len(rows))
	for _, r := range rows {
		table = append(table, []string{r.Filename, r.SHA256, formatApplied(r.AppliedAt)})
	}
	return printOutput(rows, headers, table)
}

func runMigrationsStatus(cmd *cobra.Command, args []string) error {
	store, err := newLedgerStore()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	exists := store.TableExists(ctx)
	status := map[string]any{"ledgerExists": exists}

	rows := [][]string{{"Ledger table", strconv.FormatBool(exists)}}
	if exists {
		count, err := store.AppliedCount(ctx)
		if err != nil {
			return err
		}
		last, err := store.LastApplied(ctx)
		if err != nil {
			return err
		}
		status["appliedCount"] = count
		rows = append(rows, []string{"Applied migrations", strconv.FormatInt(count, 10)})
		if last != nil {
			status["lastApplied"] = last
			rows = append(rows, []string{"Latest migration", last.Filename})
			rows = append(rows, []string{"Applied at", formatApplied(last.AppliedAt)})
		}
	}
	return printOutput(status, []string{"Check", "Value"}, rows)
}

func runMigrationsCount(cmd *cobra.Command, args []string) error {
	store, err := newLedgerStore()
	if err != nil {
		return err
	}

	count, err := store.AppliedCount(cmd.Context())
	if err != nil {
		return err
	}
	return printOutput(map[string]int64{"appliedCount": count},
		[]string{"Applied Migrations"}, [][]string{{strconv.FormatInt(count, 10)}})
}

func runHealth(cmd *cobra.Command, args []string) error {
	store, err := newLedgerStore()
	if err != nil {
		return err
	}

	report := store.Ping(cmd.Context())
	rows := [][]string{
		{"Reachable", strconv.FormatBool(report.Reachable)},
		{"Host", report.Host},
		{"Port", report.Port},
		{"Database", report.Database},
	}
	if report.Error != "" {
		rows = append(rows, []string{"Error", report.Error})
	}
	return printOutput(report, []string{"Check", "Value"}, rows)
}
