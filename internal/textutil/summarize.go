package textutil

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/jdkato/prose/v2"
	"github.com/kljensen/snowball"

	"github.com/bot80-alt/certa/internal/model"
)

// Summary is the output of the extractive summarizer
type Summary struct {
	Text     string
	Keywords []string
}

// minSummaryWords is the least amount of text worth summarizing
const minSummaryWords = 40

// minSentenceChars drops fragments such as bylines and captions
const minSentenceChars = 20

var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true, "be": true, "been": true,
	"but": true, "by": true, "for": true, "from": true, "had": true, "has": true, "have": true, "he": true,
	"her": true, "his": true, "i": true, "in": true, "into": true, "is": true, "it": true, "its": true,
	"more": true, "not": true, "of": true, "on": true, "or": true, "our": true, "said": true, "she": true,
	"so": true, "than": true, "that": true, "the": true, "their": true, "them": true, "there": true,
	"these": true, "they": true, "this": true, "to": true, "was": true, "we": true, "were": true,
	"which": true, "who": true, "will": true, "with": true, "would": true, "you": true, "also": true,
	"after": true, "about": true, "all": true, "can": true, "one": true, "new": true, "over": true,
}

// Summarize builds an extractive summary plus keywords. Sentences come from
// prose's segmenter and are scored by the stemmed frequency of their content
// words; keywords are the most frequent nouns.
// It never fails: too little text or no scorable sentences yields a degraded result.
func Summarize(text string, sentences, keywords int) model.Optional[Summary] {
	if n := len(tokenize(text)); n < minSummaryWords {
		return model.Degrade[Summary](fmt.Sprintf("text too short to summarize (%d words)", n))
	}

	doc, err := prose.NewDocument(text, prose.WithExtraction(false))
	if err != nil {
		return model.Degrade[Summary](fmt.Sprintf("analyze text: %v", err))
	}

	freq := make(map[string]int)
	nouns := newNounCounter()
	for _, tok := range doc.Tokens() {
		word := strings.ToLower(tok.Text)
		if !isContentWord(word) {
			continue
		}
		stem := stemWord(word)
		freq[stem]++
		if strings.HasPrefix(tok.Tag, "NN") {
			nouns.add(stem, word)
		}
	}
	if len(freq) == 0 {
		return model.Degrade[Summary]("no content words")
	}

	var candidates []string
	for _, s := range doc.Sentences() {
		if len(s.Text) >= minSentenceChars {
			candidates = append(candidates, s.Text)
		}
	}
	if len(candidates) == 0 {
		return model.Degrade[Summary]("no sentences found")
	}

	type scored struct {
		idx   int
		score float64
	}
	ranked := make([]scored, 0, len(candidates))
	for i, s := range candidates {
		toks := tokenize(s)
		if len(toks) == 0 {
			continue
		}
		total := 0
		for _, w := range toks {
			if isContentWord(w) {
				total += freq[stemWord(w)]
			}
		}
		ranked = append(ranked, scored{idx: i, score: float64(total) / float64(len(toks))})
	}
	sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].score > ranked[b].score })

	if sentences <= 0 {
		sentences = 3
	}
	if len(ranked) > sentences {
		ranked = ranked[:sentences]
	}
	// Keep the chosen sentences in reading order
	sort.Slice(ranked, func(a, b int) bool { return ranked[a].idx < ranked[b].idx })

	picked := make([]string, len(ranked))
	for i, r := range ranked {
		picked[i] = candidates[r.idx]
	}

	return model.Some(Summary{
		Text:     strings.Join(picked, " "),
		Keywords: nouns.top(keywords),
	})
}

// nounCounter counts nouns by stem and remembers the most common spelling of each
type nounCounter struct {
	count    map[string]int
	spelling map[string]map[string]int
}

func newNounCounter() *nounCounter {
	return &nounCounter{count: make(map[string]int), spelling: make(map[string]map[string]int)}
}

func (c *nounCounter) add(stem, word string) {
	c.count[stem]++
	if c.spelling[stem] == nil {
		c.spelling[stem] = make(map[string]int)
	}
	c.spelling[stem][word]++
}

func (c *nounCounter) top(n int) []string {
	if n <= 0 {
		return nil
	}
	stems := make([]string, 0, len(c.count))
	for s := range c.count {
		stems = append(stems, s)
	}
	sort.Slice(stems, func(a, b int) bool {
		if c.count[stems[a]] != c.count[stems[b]] {
			return c.count[stems[a]] > c.count[stems[b]]
		}
		return stems[a] < stems[b]
	})
	if len(stems) > n {
		stems = stems[:n]
	}

	words := make([]string, len(stems))
	for i, s := range stems {
		words[i] = c.display(s)
	}
	return words
}

func (c *nounCounter) display(stem string) string {
	best, bestCount := stem, 0
	for word, n := range c.spelling[stem] {
		if n > bestCount || (n == bestCount && word < best) {
			best, bestCount = word, n
		}
	}
	return best
}

func isContentWord(w string) bool {
	if len(w) <= 2 || stopwords[w] {
		return false
	}
	for _, r := range w {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// stemWord folds inflections ("budgets", "budgeting") onto one key
func stemWord(w string) string {
	stem, err := snowball.Stem(w, "english", true)
	if err != nil || stem == "" {
		return w
	}
	return stem
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
