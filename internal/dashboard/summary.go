package dashboard

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

var summaryPolicy = bluemonday.UGCPolicy()

// SummaryMarkdown renders the KPI block as Markdown. It reads only data-set
// level values, so it does not change with the filters.
func SummaryMarkdown(v View) string {
	var b strings.Builder
	b.WriteString("### Survey summary\n\n")
	b.WriteString("| Indicator | Value |\n|---|---|\n")
	rows := [][2]string{
		{"Files processed", fmt.Sprintf("%s / %s", v.Formatted.ProcessedFiles, v.Formatted.TotalFiles)},
		{"Total parcels", v.Formatted.TotalParcels},
		{"Conflicts", fmt.Sprintf("%s (%s)", v.Formatted.Conflicts, v.Formatted.ConflictRate)},
		{"Success rate", v.Formatted.SuccessRate},
		{"Cleaning rate", v.Formatted.CleaningRate},
		{"Validation rate", v.Formatted.ValidationRate},
		{"Critical errors", v.Formatted.CriticalErrors},
		{"Consistency", v.Formatted.Consistency},
	}
	for _, r := range rows {
		fmt.Fprintf(&b, "| %s | %s |\n", escapeCell(r[0]), escapeCell(r[1]))
	}
	if v.Overall.Error > 0 {
		fmt.Fprintf(&b, "\n**%d commune file(s) failed processing.**\n", v.Overall.Error)
	}
	return b.String()
}

// RenderSummaryHTML converts the summary to sanitized HTML
func RenderSummaryHTML(v View) (string, error) {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	out := markdown.ToHTML([]byte(SummaryMarkdown(v)), p, renderer)
	return string(summaryPolicy.SanitizeBytes(out)), nil
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
