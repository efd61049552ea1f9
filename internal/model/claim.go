package model

import (
	"fmt"
	"strings"
)

// Claim is a single factual assertion scored by the oracle
type Claim struct {
	Statement string        `json:"statement"`
	Accuracy  AccuracyLabel `json:"accuracy"`
	Rationale string        `json:"explanation"` // evidence-backed reasoning for the label
}

// AccuracyLabel is the oracle's verdict for a claim
type AccuracyLabel string

const (
	Accurate          AccuracyLabel = "accurate"
	Inaccurate        AccuracyLabel = "inaccurate"
	PartiallyAccurate AccuracyLabel = "partially accurate"
	Unverifiable      AccuracyLabel = "unverifiable"
)

// AccuracyLabels lists the fixed label set in display order
var AccuracyLabels = []AccuracyLabel{Accurate, PartiallyAccurate, Inaccurate, Unverifiable}

// Valid reports whether the label is one of the four known values
func (l AccuracyLabel) Valid() bool {
	switch l {
	case Accurate, Inaccurate, PartiallyAccurate, Unverifiable:
		return true
	}
	return false
}

// ParseAccuracyLabel normalizes a backend label ("Partially_Accurate", " ACCURATE ")
// into one of the four known values.
func ParseAccuracyLabel(raw string) (AccuracyLabel, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	s = strings.Join(strings.Fields(s), " ")

	label := AccuracyLabel(s)
	if !label.Valid() {
		return "", fmt.Errorf("unknown accuracy label %q", raw)
	}
	return label, nil
}
