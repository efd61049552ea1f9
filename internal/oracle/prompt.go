package oracle

import (
	"fmt"
	"strings"

	"github.com/bot80-alt/certa/internal/model"
)

const systemPrompt = `You are a careful fact-checker. You assess factual claims against the search evidence provided and your own knowledge.

Respond with a single JSON object of exactly this shape:
{
  "summary": "1-2 sentence overview of the overall factual accuracy",
  "claims": [
    {
      "statement": "the claim as stated in the content",
      "accuracy": "accurate | inaccurate | partially accurate | unverifiable",
      "explanation": "brief explanation citing the evidence"
    }
  ]
}

RULES:
1. Use only the four accuracy values listed above.
2. Use "unverifiable" when the evidence neither supports nor refutes a claim.
3. Prefer evidence marked as a primary or secondary source when results disagree.
4. Do not add fields beyond summary, claims, statement, accuracy, explanation.`

// buildPrompt assembles the user message: content context, truncated text, evidence
func buildPrompt(content *model.NormalizedContent, text string, evidence []Evidence, minClaims, maxClaims int) string {
	var b strings.Builder

	switch content.Modality {
	case model.ModalityAudio:
		b.WriteString("Please fact check the following speech transcript")
	case model.ModalityURL:
		b.WriteString("Please fact check the following content from a web page")
	default:
		b.WriteString("Please fact check the following content")
	}
	if content.Title != "" {
		fmt.Fprintf(&b, " titled %q", content.Title)
	}
	if content.SourceURL != "" {
		fmt.Fprintf(&b, " (Source: %s)", content.SourceURL)
	}
	b.WriteString(".\n\nCONTENT:\n")
	b.WriteString(text)
	b.WriteString("\n\n")

	b.WriteString("SEARCH EVIDENCE:\n")
	if len(evidence) == 0 {
		b.WriteString("(no search results were found)\n")
	}
	for i, e := range evidence {
		if e.Tier == TierPrimary || e.Tier == TierSecondary {
			fmt.Fprintf(&b, "[%d] (%s source) %s - %s\n    %s\n", i+1, e.Tier, e.Title, e.URL, e.Snippet)
			continue
		}
		fmt.Fprintf(&b, "[%d] %s - %s\n    %s\n", i+1, e.Title, e.URL, e.Snippet)
	}

	fmt.Fprintf(&b, `
Please provide a fact-checking analysis with the following structure:
1. A brief summary of the overall factual accuracy (1-2 sentences)
2. Identify %d-%d specific claims made in the content
3. For each claim, provide the claim statement, an accuracy assessment (accurate, inaccurate, partially accurate, or unverifiable), and a brief explanation with evidence
`, minClaims, maxClaims)

	return b.String()
}

// searchQuery derives the evidence query: the title when known, else the opening sentence
func searchQuery(content *model.NormalizedContent, maxRunes int) string {
	q := strings.TrimSpace(content.Title)
	if q == "" {
		q = strings.TrimSpace(content.Text)
		if i := strings.IndexAny(q, ".!?\n"); i > 0 {
			q = q[:i]
		}
	}
	q = strings.Join(strings.Fields(q), " ")
	if r := []rune(q); len(r) > maxRunes {
		q = string(r[:maxRunes])
	}
	return q
}
