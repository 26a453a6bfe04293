package main

import (
	"fmt"

	"parceldash/adapters/excel"
	"parceldash/internal/dashboard"

	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	var out, status, search string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the selected communes to an .xlsx workbook",
		Long: `Write the communes matching the filters to a workbook that the
dataset loader can read back.

Example: parceldash export --status success --out communes.xlsx`,
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

			patch := filterStatus(status)
			if search != "" {
				patch.SearchText = &search
			}
			filters, _ := dashboard.FilterState{}.Apply(patch)
			communes := dashboard.FilterCommunes(rt.dataset, filters)
			if err := excel.WriteCommunes(out, communes); err != nil {
				return fmt.Errorf("export %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d communes to %s\n", len(communes), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "communes.xlsx", "output workbook")
	cmd.Flags().StringVar(&status, "status", "", "SUCCESS, ERROR or all")
	cmd.Flags().StringVar(&search, "search", "", "case-insensitive name substring")
	return cmd
}

func filterStatus(status string) dashboard.FilterPatch {
	var patch dashboard.FilterPatch
	if status != "" {
		patch.Status = &status
	}
	return patch
}

func filterDateRange(dateRange string) dashboard.FilterPatch {
	return dashboard.FilterPatch{DateRange: &dateRange}
}
