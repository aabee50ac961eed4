package report

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"csvpilot/domain/analysis"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Writer renders a human-readable summary of one workflow run into the run's
// artifact directory, as markdown plus an HTML rendering of the same text.
type Writer struct{}

// NewWriter creates a report writer
func NewWriter() *Writer {
	return &Writer{}
}

// Write renders the run summary into outputDir and returns the markdown path
func (w *Writer) Write(result *analysis.WorkflowResult, outputDir string) (string, error) {
	md := renderMarkdown(result)

	mdPath := filepath.Join(outputDir, "report.md")
	if err := os.WriteFile(mdPath, []byte(md), 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	htmlPath := filepath.Join(outputDir, "report.html")
	if err := os.WriteFile(htmlPath, renderHTML(md), 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	log.Printf("[Report] wrote %s", mdPath)
	return mdPath, nil
}

func renderMarkdown(result *analysis.WorkflowResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Analysis Run %s\n\n", result.RunID)
	fmt.Fprintf(&b, "- **File:** %s\n", result.FilePath)
	fmt.Fprintf(&b, "- **Dataset:** %s\n", result.DatasetID)
	fmt.Fprintf(&b, "- **Session:** %s\n", result.SessionID)
	fmt.Fprintf(&b, "- **Started:** %s\n", result.StartedAt)
	fmt.Fprintf(&b, "- **Finished:** %s\n\n", result.FinishedAt)

	b.WriteString("## Stages\n\n")
	b.WriteString("| Stage | Status | Error |\n|---|---|---|\n")
	for _, s := range result.Stages {
		errText := s.Error
		if errText == "" {
			errText = "-"
		}
		fmt.Fprintf(&b, "| %s | %s | %s |\n", s.Stage, s.Status, errText)
	}
	b.WriteString("\n")

	if len(result.ColumnStats) > 0 {
		b.WriteString("## Columns\n\n")
		b.WriteString("| Column | Dtype | Missing | Unique | Mean | Std |\n|---|---|---|---|---|---|\n")
		for _, c := range result.ColumnStats {
			mean, std := "-", "-"
			if c.Numeric != nil {
				mean = fmt.Sprintf("%.3f", c.Numeric.Mean)
				std = fmt.Sprintf("%.3f", c.Numeric.Std)
			}
			fmt.Fprintf(&b, "| %s | %s | %d | %d | %s | %s |\n", c.Column, c.Dtype, c.Missing, c.Unique, mean, std)
		}
		b.WriteString("\n")
	}

	if result.CorrelationResults != nil && len(result.CorrelationResults.HighPairs) > 0 {
		b.WriteString("## Highly Correlated Pairs\n\n")
		for _, p := range result.CorrelationResults.HighPairs {
			fmt.Fprintf(&b, "- %s / %s: %.3f\n", p.Col1, p.Col2, p.Corr)
		}
		b.WriteString("\n")
	}

	if result.TargetColumn != "" {
		b.WriteString("## Modeling\n\n")
		fmt.Fprintf(&b, "- **Target:** %s\n", result.TargetColumn)
		fmt.Fprintf(&b, "- **Problem type:** %s\n", result.ProblemType)
		if result.ModelRecommendation != nil {
			fmt.Fprintf(&b, "- **Recommended model:** %s (score %.2f)\n", result.ModelRecommendation.Model, result.ModelRecommendation.Score)
		}
		b.WriteString("\n")
	}

	if len(result.ChartPaths) > 0 {
		b.WriteString("## Charts\n\n")
		for _, p := range result.ChartPaths {
			fmt.Fprintf(&b, "- %s\n", p)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func renderHTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(md))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.CompletePage})
	return markdown.Render(doc, renderer)
}
