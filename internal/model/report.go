package model

// MaxReportClaims is the most claims a report may carry
const MaxReportClaims = 5

// FactCheckReport is the oracle's structured verdict for one request
type FactCheckReport struct {
	Summary string  `json:"summary"`
	Claims  []Claim `json:"claims"`
}

// CountByLabel tallies claims per accuracy label
func (r FactCheckReport) CountByLabel() map[AccuracyLabel]int {
	counts := make(map[AccuracyLabel]int, len(AccuracyLabels))
	for _, c := range r.Claims {
		counts[c.Accuracy]++
	}
	return counts
}

// NarrativeSource records how an explanation narrative was produced
type NarrativeSource string

const (
	NarrativeLLM      NarrativeSource = "llm"
	NarrativeTemplate NarrativeSource = "template"
)

// Explanation is the human-readable rendering of a FactCheckReport
type Explanation struct {
	Narrative string          `json:"narrative"`
	Source    NarrativeSource `json:"source"`
	Visual    *VisualPayload  `json:"visual,omitempty"`
}

// VisualPayload is chart-ready data derived from a report
type VisualPayload struct {
	Verdict      string        `json:"verdict"`      // overall verdict headline
	Score        int           `json:"score"`        // 0-100, weighted by label
	Distribution []LabelShare  `json:"distribution"` // one entry per label, fixed order
	Claims       []VisualClaim `json:"claims"`
}

// LabelShare is one bar of the label distribution
type LabelShare struct {
	Label   AccuracyLabel `json:"label"`
	Count   int           `json:"count"`
	Percent float64       `json:"percent"`
	Color   string        `json:"color"`
}

// VisualClaim is a claim row in the visual payload
type VisualClaim struct {
	Index     int           `json:"index"`
	Statement string        `json:"statement"`
	Label     AccuracyLabel `json:"label"`
	Color     string        `json:"color"`
}
