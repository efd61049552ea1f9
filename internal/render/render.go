// Package render writes pipeline results as JSON, Markdown, or a short
// terminal summary.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bot80-alt/certa/internal/model"
)

// Footer closes every Markdown report unless disabled
const Footer = "_Generated by certa. Labels are produced by an automated search-and-LLM check and can be wrong; follow the sources before relying on them._"

// Renderer formats PipelineResults
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the transport envelope as indented JSON
func (r *Renderer) RenderJSON(w io.Writer, result *model.PipelineResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(result.Envelope()); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

// RenderMarkdown writes a human-readable report
func (r *Renderer) RenderMarkdown(w io.Writer, result *model.PipelineResult) error {
	var b strings.Builder

	title := "Fact-check report"
	if result.Content != nil && result.Content.Title != "" {
		title = result.Content.Title
	}
	fmt.Fprintf(&b, "# %s\n\n", escapeMarkdown(title))

	if result.Content != nil && result.Content.SourceURL != "" {
		fmt.Fprintf(&b, "**Source:** %s  \n", result.Content.SourceURL)
	}
	if result.RequestID != "" {
		fmt.Fprintf(&b, "**Request:** `%s`\n", result.RequestID)
	}
	b.WriteString("\n")

	if !result.OK() {
		fmt.Fprintf(&b, "## ✗ Check failed (%s)\n\n%s\n", result.Stage, result.Message)
		return r.finish(w, &b)
	}

	if v := visual(result); v != nil {
		fmt.Fprintf(&b, "## %s (%d/100)\n\n", v.Verdict, v.Score)
		for _, share := range v.Distribution {
			fmt.Fprintf(&b, "- %s: %d (%.0f%%)\n", share.Label, share.Count, share.Percent)
		}
		b.WriteString("\n")
	}

	if result.Report != nil {
		b.WriteString("## Summary\n\n")
		b.WriteString(result.Report.Summary)
		b.WriteString("\n\n## Claims\n\n")
		b.WriteString("| # | Claim | Accuracy | Explanation |\n")
		b.WriteString("|---|-------|----------|-------------|\n")
		for i, c := range result.Report.Claims {
			fmt.Fprintf(&b, "| %d | %s | %s %s | %s |\n",
				i+1, escapeCell(c.Statement), Marker(c.Accuracy), c.Accuracy, escapeCell(c.Rationale))
		}
		b.WriteString("\n")
	}

	if result.Explanation != nil && result.Explanation.Narrative != "" {
		b.WriteString("## Explanation\n\n")
		b.WriteString(result.Explanation.Narrative)
		b.WriteString("\n\n")
	}

	if result.TranscribedText != "" {
		b.WriteString("## Transcript\n\n")
		for _, line := range strings.Split(result.TranscribedText, "\n") {
			fmt.Fprintf(&b, "> %s\n", line)
		}
		b.WriteString("\n")
	}

	return r.finish(w, &b)
}

func (r *Renderer) finish(w io.Writer, b *strings.Builder) error {
	if r.includeFooter {
		b.WriteString("\n---\n\n")
		b.WriteString(Footer)
		b.WriteString("\n")
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	return nil
}

// RenderSummary prints a compact terminal summary
func (r *Renderer) RenderSummary(w io.Writer, result *model.PipelineResult) {
	if !result.OK() {
		fmt.Fprintf(w, "✗ %s failed [%s]: %s\n", result.Stage, result.Kind, result.Message)
		return
	}

	if v := visual(result); v != nil {
		fmt.Fprintf(w, "%s (%d/100)\n", v.Verdict, v.Score)
	}
	if result.Report != nil {
		fmt.Fprintf(w, "%s\n\n", result.Report.Summary)
		for i, c := range result.Report.Claims {
			fmt.Fprintf(w, "  %s %d. %s [%s]\n", Marker(c.Accuracy), i+1, c.Statement, c.Accuracy)
		}
	}
	if result.Explanation != nil && result.Explanation.Narrative != "" {
		fmt.Fprintf(w, "\n%s\n", result.Explanation.Narrative)
	}
}

// WriteFiles writes JSON and/or Markdown files; an empty path skips that format
func (r *Renderer) WriteFiles(result *model.PipelineResult, jsonPath, mdPath string) error {
	if jsonPath != "" {
		if err := writeFile(jsonPath, func(w io.Writer) error { return r.RenderJSON(w, result) }); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
	}
	if mdPath != "" {
		if err := writeFile(mdPath, func(w io.Writer) error { return r.RenderMarkdown(w, result) }); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
	}
	return nil
}

// Marker is the terminal symbol for a label
func Marker(label model.AccuracyLabel) string {
	switch label {
	case model.Accurate:
		return "✓"
	case model.Inaccurate:
		return "✗"
	case model.PartiallyAccurate:
		return "~"
	default:
		return "?"
	}
}

func visual(result *model.PipelineResult) *model.VisualPayload {
	if result.Explanation == nil {
		return nil
	}
	return result.Explanation.Visual
}

func writeFile(path string, render func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
	}()
	return render(f)
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}

func escapeMarkdown(s string) string {
	return strings.NewReplacer("#", "\\#", "\n", " ").Replace(s)
}
