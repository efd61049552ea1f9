// Package textutil holds the plain-text helpers shared by the content adapters:
// visible-text extraction from HTML, sentence splitting, and extractive summaries.
package textutil

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// VisibleText extracts text nodes from HTML, skipping scripts/styles and
// page chrome. Block elements end with a newline so paragraphs survive.
func VisibleText(htmlContent string) (title string, text string, err error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", "", err
	}

	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "nav", "footer", "header", "aside", "form":
				return
			case "title":
				if title == "" && n.FirstChild != nil {
					title = strings.TrimSpace(n.FirstChild.Data)
				}
				return
			}
		}

		if n.Type == html.TextNode {
			t := strings.Join(strings.Fields(n.Data), " ")
			if t != "" {
				buf.WriteString(t)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode && isBlock(n.Data) {
			buf.WriteString("\n")
		}
	}

	walk(doc)
	return title, CollapseSpace(buf.String()), nil
}

func isBlock(tag string) bool {
	switch tag {
	case "p", "div", "section", "article", "li", "br", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote", "pre", "tr":
		return true
	}
	return false
}

// CollapseSpace trims every line, drops blank lines, and squeezes runs of spaces
func CollapseSpace(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// CharCount counts characters (runes) of non-whitespace-trimmed text
func CharCount(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}

// SplitSentences splits text into sentences (simple heuristic).
// Fragments shorter than minLen are dropped.
func SplitSentences(text string, minLen int) []string {
	text = strings.ReplaceAll(text, "\n", " ")

	var sentences []string
	var current strings.Builder

	flush := func() {
		sentence := strings.TrimSpace(current.String())
		if len(sentence) >= minLen {
			sentences = append(sentences, sentence)
		}
		current.Reset()
	}

	for i, r := range text {
		current.WriteRune(r)

		if r == '.' || r == '!' || r == '?' {
			// Only split when followed by whitespace, to keep "3.5" and "e.g" intact
			if i+1 < len(text) && (text[i+1] == ' ' || text[i+1] == '\t') {
				flush()
			}
		}
	}

	if current.Len() > 0 {
		flush()
	}

	return sentences
}
