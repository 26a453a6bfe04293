package main

import (
	"encoding/json"
	"fmt"

	"parceldash/internal/dashboard"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// summaryOutput is the machine-readable form of the summary command
type summaryOutput struct {
	KPIs         dashboard.FormattedKPIs    `json:"kpis" yaml:"kpis"`
	Filters      dashboard.FilterState      `json:"filters" yaml:"filters"`
	Communes     []string                   `json:"communes" yaml:"communes"`
	Distribution map[string]int             `json:"distribution" yaml:"distribution"`
	Performance  dashboard.Series           `json:"performance" yaml:"performance"`
	Quality      dashboard.QualityBreakdown `json:"quality" yaml:"quality"`
}

func newSummaryCmd() *cobra.Command {
	var (
		commune, status, search, metric, output, datasetFile string
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print KPIs and series for a filter selection",
		Long: `Derive the dashboard view without a browser.

Example: parceldash summary --status error --metric quality -o yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("dataset") {
				cfg.Data.DatasetFile = datasetFile
			}
			rt, err := newRuntime(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer rt.Close()

			var patch dashboard.FilterPatch
			if cmd.Flags().Changed("commune") {
				patch.CommuneName = &commune
			}
			if cmd.Flags().Changed("status") {
				patch.Status = &status
			}
			if cmd.Flags().Changed("search") {
				patch.SearchText = &search
			}
			filters, _ := dashboard.FilterState{}.Apply(patch)
			view := dashboard.Derive(rt.dataset, filters, dashboard.Metric(metric), dashboard.ChartType(cfg.Dashboard.DefaultChartType))

			out := cmd.OutOrStdout()
			switch output {
			case "markdown", "md":
				fmt.Fprint(out, dashboard.SummaryMarkdown(view))
				fmt.Fprintf(out, "\n%d of %d communes match\n", len(view.FilteredCommunes), len(rt.dataset.Communes))
				return nil
			case "json", "yaml":
				result := summaryOutput{
					KPIs:        view.Formatted,
					Filters:     view.Filters,
					Communes:    make([]string, 0, len(view.FilteredCommunes)),
					Performance: view.Performance,
					Quality:     view.Quality,
					Distribution: map[string]int{
						"individual": view.Distribution[0],
						"collective": view.Distribution[1],
						"conflicts":  view.Distribution[2],
					},
				}
				for _, c := range view.FilteredCommunes {
					result.Communes = append(result.Communes, c.Name)
				}
				if output == "yaml" {
					enc := yaml.NewEncoder(out)
					enc.SetIndent(2)
					defer enc.Close()
					return enc.Encode(result)
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			default:
				return fmt.Errorf("unknown output format %q (markdown, json or yaml)", output)
			}
		},
	}

	cmd.Flags().StringVar(&commune, "commune", "", "exact commune name")
	cmd.Flags().StringVar(&status, "status", "", "SUCCESS, ERROR or all")
	cmd.Flags().StringVar(&search, "search", "", "case-insensitive name substring")
	cmd.Flags().StringVar(&metric, "metric", "individual", "individual, collective, conflicts or quality")
	cmd.Flags().StringVarP(&output, "output", "o", "markdown", "markdown, json or yaml")
	cmd.Flags().StringVar(&datasetFile, "dataset", "", "dataset file: json, yaml, xlsx or csv")
	return cmd
}
