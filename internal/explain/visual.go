package explain

import (
	"errors"
	"math"

	"github.com/bot80-alt/certa/internal/model"
)

// LabelColors maps each accuracy label to its chart color
var LabelColors = map[model.AccuracyLabel]string{
	model.Accurate:          "#2e7d32",
	model.PartiallyAccurate: "#f9a825",
	model.Inaccurate:        "#c62828",
	model.Unverifiable:      "#757575",
}

// label weights for the 0-100 score; unverifiable claims are excluded
var labelWeights = map[model.AccuracyLabel]float64{
	model.Accurate:          1,
	model.PartiallyAccurate: 0.5,
	model.Inaccurate:        0,
}

// Visualize derives chart data from a report. It is deterministic and only
// fails on a report with no claims.
func Visualize(report *model.FactCheckReport) (*model.VisualPayload, error) {
	if report == nil || len(report.Claims) == 0 {
		return nil, errors.New("report has no claims to visualize")
	}

	counts := report.CountByLabel()
	total := len(report.Claims)

	payload := &model.VisualPayload{
		Distribution: make([]model.LabelShare, 0, len(model.AccuracyLabels)),
		Claims:       make([]model.VisualClaim, 0, total),
	}

	for _, label := range model.AccuracyLabels {
		payload.Distribution = append(payload.Distribution, model.LabelShare{
			Label:   label,
			Count:   counts[label],
			Percent: math.Round(float64(counts[label])*1000/float64(total)) / 10,
			Color:   LabelColors[label],
		})
	}

	for i, c := range report.Claims {
		payload.Claims = append(payload.Claims, model.VisualClaim{
			Index:     i + 1,
			Statement: c.Statement,
			Label:     c.Accuracy,
			Color:     LabelColors[c.Accuracy],
		})
	}

	scored := total - counts[model.Unverifiable]
	if scored == 0 {
		payload.Verdict = "Unverifiable"
		return payload, nil
	}

	var sum float64
	for label, w := range labelWeights {
		sum += w * float64(counts[label])
	}
	payload.Score = int(math.Round(sum * 100 / float64(scored)))
	payload.Verdict = verdict(payload.Score)

	return payload, nil
}

func verdict(score int) string {
	switch {
	case score >= 80:
		return "Mostly accurate"
	case score >= 50:
		return "Mixed accuracy"
	case score >= 20:
		return "Mostly inaccurate"
	default:
		return "Inaccurate"
	}
}
