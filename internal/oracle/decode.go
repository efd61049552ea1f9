package oracle

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/bot80-alt/certa/internal/model"
)

type wireClaim struct {
	Statement   *string `json:"statement"`
	Accuracy    *string `json:"accuracy"`
	Explanation *string `json:"explanation"`
}

type wireReport struct {
	Summary *string     `json:"summary"`
	Claims  []wireClaim `json:"claims"`
}

// DecodeReport strictly parses a model response into a FactCheckReport.
// Unknown fields, missing required fields, unknown labels, trailing data,
// or a claim count outside 1..maxClaims are all rejected.
func DecodeReport(raw string, maxClaims int) (*model.FactCheckReport, error) {
	body := stripCodeFence(raw)
	if body == "" {
		return nil, errors.New("empty response")
	}

	dec := json.NewDecoder(strings.NewReader(body))
	dec.DisallowUnknownFields()

	var wire wireReport
	if err := dec.Decode(&wire); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after report object")
	}

	if wire.Summary == nil || strings.TrimSpace(*wire.Summary) == "" {
		return nil, errors.New("missing summary")
	}
	if len(wire.Claims) == 0 {
		return nil, errors.New("report has no claims")
	}
	if maxClaims <= 0 || maxClaims > model.MaxReportClaims {
		maxClaims = model.MaxReportClaims
	}
	if len(wire.Claims) > maxClaims {
		return nil, fmt.Errorf("report has %d claims, at most %d allowed", len(wire.Claims), maxClaims)
	}

	report := &model.FactCheckReport{
		Summary: strings.TrimSpace(*wire.Summary),
		Claims:  make([]model.Claim, 0, len(wire.Claims)),
	}
	for i, c := range wire.Claims {
		if c.Statement == nil || strings.TrimSpace(*c.Statement) == "" {
			return nil, fmt.Errorf("claim %d: missing statement", i+1)
		}
		if c.Accuracy == nil {
			return nil, fmt.Errorf("claim %d: missing accuracy", i+1)
		}
		if c.Explanation == nil || strings.TrimSpace(*c.Explanation) == "" {
			return nil, fmt.Errorf("claim %d: missing explanation", i+1)
		}
		label, err := model.ParseAccuracyLabel(*c.Accuracy)
		if err != nil {
			return nil, fmt.Errorf("claim %d: %w", i+1, err)
		}
		report.Claims = append(report.Claims, model.Claim{
			Statement: strings.TrimSpace(*c.Statement),
			Accuracy:  label,
			Rationale: strings.TrimSpace(*c.Explanation),
		})
	}

	return report, nil
}

// stripCodeFence unwraps a ```json ... ``` block if the model added one,
// whether or not the fence sits on its own line
func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if end := strings.LastIndex(s, "```"); end >= 0 {
		s = s[:end]
	}
	s = strings.TrimSpace(s)
	// drop the info string ("json")
	if i := strings.IndexAny(s, "{["); i > 0 && isInfoString(s[:i]) {
		s = s[i:]
	}
	return strings.TrimSpace(s)
}

func isInfoString(s string) bool {
	for _, r := range strings.TrimSpace(s) {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
