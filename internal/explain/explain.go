// Package explain turns a FactCheckReport into a reader-facing narrative and
// chart-ready visual data.
package explain

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/bot80-alt/certa/internal/llm"
	"github.com/bot80-alt/certa/internal/model"
)

const narrativeSystemPrompt = `You explain fact-check results to a general audience.
Write 2-4 short paragraphs in plain language. Say which claims held up, which did not, and why, using only the findings given.
Do not introduce new facts, sources, or claims. Do not use markdown headings.`

// Generator builds explanations. A nil provider means template-only narratives.
type Generator struct {
	provider  llm.Provider
	narrative bool
	visual    bool
	logger    *log.Logger
}

// NewGenerator creates a generator
func NewGenerator(cfg model.ExplainConfig, provider llm.Provider, logger *log.Logger) *Generator {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Generator{
		provider:  provider,
		narrative: cfg.Narrative,
		visual:    cfg.Visual,
		logger:    logger,
	}
}

// Explain never fails: a failed or empty LLM narrative falls back to the
// template, and a visual that cannot be built is omitted.
func (g *Generator) Explain(ctx context.Context, report *model.FactCheckReport) model.Explanation {
	exp := model.Explanation{
		Narrative: Template(report),
		Source:    model.NarrativeTemplate,
	}

	if g.narrative && g.provider != nil {
		if text, err := g.llmNarrative(ctx, report); err != nil {
			g.logger.Printf("Warning: narrative generation failed, using template: %v", err)
		} else {
			exp.Narrative = text
			exp.Source = model.NarrativeLLM
		}
	}

	if g.visual {
		visual, err := Visualize(report)
		if err != nil {
			g.logger.Printf("Warning: visual omitted: %v", err)
		} else {
			exp.Visual = visual
		}
	}

	return exp
}

func (g *Generator) llmNarrative(ctx context.Context, report *model.FactCheckReport) (string, error) {
	findings, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}

	resp, err := g.provider.Complete(ctx, llm.CompletionRequest{
		System: narrativeSystemPrompt,
		Prompt: "Explain these fact-check findings:\n\n" + string(findings),
	})
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", fmt.Errorf("empty narrative from %s", g.provider.Name())
	}
	return text, nil
}

// Template renders a deterministic narrative from the summary and claim list
func Template(report *model.FactCheckReport) string {
	if report == nil {
		return ""
	}

	var b strings.Builder
	if s := strings.TrimSpace(report.Summary); s != "" {
		b.WriteString(s)
		b.WriteString("\n\n")
	}

	n := len(report.Claims)
	if n == 0 {
		b.WriteString("No specific claims were identified.")
		return b.String()
	}

	counts := report.CountByLabel()
	var parts []string
	for _, label := range model.AccuracyLabels {
		if c := counts[label]; c > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", c, label))
		}
	}
	noun := "claims were"
	if n == 1 {
		noun = "claim was"
	}
	fmt.Fprintf(&b, "%d %s checked: %s.\n", n, noun, joinList(parts))

	for i, c := range report.Claims {
		fmt.Fprintf(&b, "\n%d. %q is %s.", i+1, c.Statement, c.Accuracy)
		if r := strings.TrimSpace(c.Rationale); r != "" {
			b.WriteString(" ")
			b.WriteString(r)
		}
	}

	return b.String()
}

func joinList(parts []string) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	default:
		return strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
	}
}
