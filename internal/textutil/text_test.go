package textutil

import (
	"strings"
	"testing"
)

func TestVisibleText_SkipsScriptsAndChrome(t *testing.T) {
	page := `
	<html>
	<head><title>Coffee and Longevity</title><style>p { color: red }</style></head>
	<body>
		<nav>Home | World | Sports</nav>
		<script>var tracking = true;</script>
		<article>
			<h1>Coffee and Longevity</h1>
			<p>Researchers followed 500,000 adults for a decade.</p>
			<p>Moderate drinkers had a lower risk of death.</p>
		</article>
		<footer>Copyright 2024</footer>
	</body>
	</html>`

	title, text, err := VisibleText(page)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if title != "Coffee and Longevity" {
		t.Errorf("Unexpected title: %q", title)
	}
	for _, unwanted := range []string{"tracking", "color: red", "Home | World", "Copyright"} {
		if strings.Contains(text, unwanted) {
			t.Errorf("Expected %q to be stripped, got %q", unwanted, text)
		}
	}
	if !strings.Contains(text, "Researchers followed 500,000 adults for a decade.") {
		t.Errorf("Expected paragraph text, got %q", text)
	}
	if !strings.Contains(text, "\n") {
		t.Errorf("Expected paragraphs to be separated by newlines, got %q", text)
	}
}

func TestSplitSentences(t *testing.T) {
	text := "The index rose 3.5 percent on Monday. Analysts were surprised! Was it expected? No."
	sentences := SplitSentences(text, 10)

	want := []string{
		"The index rose 3.5 percent on Monday.",
		"Analysts were surprised!",
		"Was it expected?",
	}
	if len(sentences) != len(want) {
		t.Fatalf("Expected %d sentences, got %d: %v", len(want), len(sentences), sentences)
	}
	for i := range want {
		if sentences[i] != want[i] {
			t.Errorf("sentence %d = %q, want %q", i, sentences[i], want[i])
		}
	}
}

func TestCharCount(t *testing.T) {
	if got := CharCount("  héllo  "); got != 5 {
		t.Errorf("CharCount = %d, want 5", got)
	}
}
