package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nholik/sharecrawl/internal/model"
)

// MarkdownWriter renders a batch run summary as GitHub-flavored Markdown.
type MarkdownWriter struct {
	output io.Writer
}

// NewMarkdownWriter creates a MarkdownWriter that writes to output.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{output: output}
}

// WriteSummary renders the counts table and per-target outcomes.
// It reports the number of bytes in the rendered document.
func (w *MarkdownWriter) WriteSummary(summary model.BatchSummary, outcomes []model.TargetOutcome) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Batch Crawl Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Result", "Count"},
		Rows: [][]string{
			{"Succeeded", strconv.Itoa(summary.Succeeded)},
			{"Failed", strconv.Itoa(summary.Failed)},
			{"Skipped", strconv.Itoa(summary.Skipped)},
			{"**Total**", "**" + strconv.Itoa(summary.Total) + "**"},
		},
	})
	md.PlainText("")

	if summary.Interrupted {
		md.Warning("The run was interrupted; remaining targets were not attempted.")
		md.PlainText("")
	}

	w.writeOutcomes(md, outcomes)

	return len(md.String()), md.Build()
}

// writeOutcomes writes the per-target outcome table, if any outcomes
// were recorded.
func (w *MarkdownWriter) writeOutcomes(md *markdown.Markdown, outcomes []model.TargetOutcome) {
	if len(outcomes) == 0 {
		return
	}

	md.H2("Targets")
	md.PlainText("")

	rows := make([][]string, len(outcomes))
	for i, o := range outcomes {
		detail := o.Detail
		if detail == "" {
			detail = "-"
		}
		rows[i] = []string{o.ID, statusText(o.Status), detail}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Target", "Status", "Detail"},
		Rows:   rows,
	})
	md.PlainText("")
}

// statusText maps an outcome status to its display form.
func statusText(status string) string {
	switch status {
	case model.StatusSucceeded:
		return "✅ Succeeded"
	case model.StatusFailed:
		return "❌ Failed"
	case model.StatusSkipped:
		return "⏭️ Skipped"
	default:
		return status
	}
}
