package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate or list reports",
	}
	cmd.AddCommand(newReportGenerateCmd(), newReportListCmd())
	return cmd
}

func newReportGenerateCmd() *cobra.Command {
	var reportType, format, status string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Append a report entry to the history",
		Long: `Append a report entry sized for the current selection. Entries only
outlive the process when REPORTS_DB_DSN is set.

Example: parceldash report generate --type communes --format xlsx --status success`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			rt, err := newRuntime(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer rt.Close()

			if !cfg.Reports.Enabled() {
				logger.Warn("[Reports] REPORTS_DB_DSN not set, the entry is not persisted")
			}
			if status != "" {
				_ = rt.session.ApplyFilters(filterStatus(status))
			}
			entry, _, err := rt.session.GenerateReport(cmd.Context(), reportType, format)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s %s %s\n", entry.ID, entry.Timestamp, entry.Type, entry.Format, entry.SizeLabel)
			return nil
		},
	}

	cmd.Flags().StringVar(&reportType, "type", "summary", "report type")
	cmd.Flags().StringVar(&format, "format", "pdf", "pdf, xlsx, csv or json")
	cmd.Flags().StringVar(&status, "status", "", "restrict the report to SUCCESS or ERROR communes")
	return cmd
}

func newReportListCmd() *cobra.Command {
	var dateRange string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the report history",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			rt, err := newRuntime(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer rt.Close()

			if dateRange != "" {
				_ = rt.session.ApplyFilters(filterDateRange(dateRange))
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tTYPE\tFORMAT\tSTATUS\tSIZE")
			for _, e := range rt.session.View().Reports {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.Timestamp.Time().Format("2006-01-02 15:04"), e.Type, e.Format, e.Status, e.SizeLabel)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&dateRange, "range", "", "FROM/TO in YYYY-MM-DD, either side optional")
	return cmd
}
