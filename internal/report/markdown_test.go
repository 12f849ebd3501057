package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nholik/sharecrawl/internal/model"
)

func TestMarkdownWriterWriteSummary(t *testing.T) {
	t.Parallel()

	summary := model.BatchSummary{Total: 4, Succeeded: 2, Failed: 1, Skipped: 1}
	outcomes := []model.TargetOutcome{
		{ID: "alpha", Status: model.StatusSucceeded},
		{ID: "beta", Status: model.StatusFailed, Detail: "activation failed"},
		{ID: "gamma", Status: model.StatusSkipped},
		{ID: "delta", Status: model.StatusSucceeded},
	}

	var buf bytes.Buffer
	n, err := NewMarkdownWriter(&buf).WriteSummary(summary, outcomes)
	if err != nil {
		t.Fatalf("WriteSummary() error = %v", err)
	}
	if n == 0 {
		t.Error("WriteSummary() reported zero bytes")
	}

	out := buf.String()
	for _, want := range []string{
		"# Batch Crawl Summary",
		"## Targets",
		"Succeeded",
		"Failed",
		"Skipped",
		"**4**",
		"activation failed",
		"beta",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("WriteSummary() output missing %q:\n%s", want, out)
		}
	}
}

func TestMarkdownWriterInterrupted(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	summary := model.BatchSummary{Total: 3, Succeeded: 1, Interrupted: true}
	if _, err := NewMarkdownWriter(&buf).WriteSummary(summary, nil); err != nil {
		t.Fatalf("WriteSummary() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "interrupted") {
		t.Errorf("WriteSummary() output missing interruption notice:\n%s", out)
	}
	if strings.Contains(out, "## Targets") {
		t.Errorf("WriteSummary() should omit targets section when no outcomes:\n%s", out)
	}
}
