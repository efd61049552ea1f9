package explain

import (
	"bytes"
	"context"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bot80-alt/certa/internal/llm"
	"github.com/bot80-alt/certa/internal/model"
)

func sampleReport() *model.FactCheckReport {
	return &model.FactCheckReport{
		Summary: "The article is mostly accurate.",
		Claims: []model.Claim{
			{Statement: "The bridge opened in 1937.", Accuracy: model.Accurate, Rationale: "Matches records."},
			{Statement: "It cost $1 billion.", Accuracy: model.PartiallyAccurate, Rationale: "Only inflation-adjusted."},
			{Statement: "It is the longest bridge.", Accuracy: model.Inaccurate, Rationale: "Several are longer."},
			{Statement: "It will be repainted next year.", Accuracy: model.Unverifiable, Rationale: "No public plan."},
		},
	}
}

type stubProvider struct {
	text string
	err  error
}

func (s stubProvider) Name() string                     { return "stub" }
func (s stubProvider) IsAvailable(context.Context) bool { return true }
func (s stubProvider) Complete(context.Context, llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &llm.CompletionResponse{Text: s.text}, nil
}

func TestExplain_UsesLLMNarrative(t *testing.T) {
	g := NewGenerator(model.ExplainConfig{Narrative: true, Visual: true}, stubProvider{text: " Two claims held up. "}, nil)

	exp := g.Explain(context.Background(), sampleReport())
	assert.Equal(t, "Two claims held up.", exp.Narrative)
	assert.Equal(t, model.NarrativeLLM, exp.Source)
	require.NotNil(t, exp.Visual)
}

func TestExplain_FallsBackToTemplate(t *testing.T) {
	for name, p := range map[string]llm.Provider{
		"error": stubProvider{err: errors.New("rate limited")},
		"empty": stubProvider{text: "   "},
		"nil":   nil,
	} {
		t.Run(name, func(t *testing.T) {
			var logs bytes.Buffer
			g := NewGenerator(model.ExplainConfig{Narrative: true}, p, log.New(&logs, "", 0))

			exp := g.Explain(context.Background(), sampleReport())
			assert.Equal(t, model.NarrativeTemplate, exp.Source)
			assert.Equal(t, Template(sampleReport()), exp.Narrative)
			assert.Nil(t, exp.Visual)
			if p != nil {
				assert.Contains(t, logs.String(), "Warning: narrative generation failed")
			}
		})
	}
}

func TestExplain_VisualFailureDoesNotBlockNarrative(t *testing.T) {
	var logs bytes.Buffer
	g := NewGenerator(model.ExplainConfig{Visual: true}, nil, log.New(&logs, "", 0))

	exp := g.Explain(context.Background(), &model.FactCheckReport{Summary: "Nothing to check."})
	assert.Nil(t, exp.Visual)
	assert.Contains(t, exp.Narrative, "Nothing to check.")
	assert.Contains(t, logs.String(), "visual omitted")
}

func TestTemplate(t *testing.T) {
	got := Template(sampleReport())
	want := "The article is mostly accurate.\n\n" +
		"4 claims were checked: 1 accurate, 1 partially accurate, 1 inaccurate and 1 unverifiable.\n" +
		"\n1. \"The bridge opened in 1937.\" is accurate. Matches records." +
		"\n2. \"It cost $1 billion.\" is partially accurate. Only inflation-adjusted." +
		"\n3. \"It is the longest bridge.\" is inaccurate. Several are longer." +
		"\n4. \"It will be repainted next year.\" is unverifiable. No public plan."
	assert.Equal(t, want, got)

	assert.Equal(t, Template(sampleReport()), got, "deterministic")
}

func TestVisualize(t *testing.T) {
	v, err := Visualize(sampleReport())
	require.NoError(t, err)

	// (1 + 0.5 + 0) / 3 scored claims
	assert.Equal(t, 50, v.Score)
	assert.Equal(t, "Mixed accuracy", v.Verdict)

	require.Len(t, v.Distribution, 4)
	assert.Equal(t, model.Accurate, v.Distribution[0].Label)
	assert.Equal(t, 25.0, v.Distribution[0].Percent)
	assert.Equal(t, LabelColors[model.Inaccurate], v.Claims[2].Color)
	assert.Equal(t, 4, v.Claims[3].Index)
}

func TestVisualize_AllUnverifiable(t *testing.T) {
	v, err := Visualize(&model.FactCheckReport{Claims: []model.Claim{{Statement: "x", Accuracy: model.Unverifiable}}})
	require.NoError(t, err)
	assert.Equal(t, "Unverifiable", v.Verdict)
	assert.Zero(t, v.Score)
}

func TestVisualize_Empty(t *testing.T) {
	_, err := Visualize(&model.FactCheckReport{})
	assert.Error(t, err)
	_, err = Visualize(nil)
	assert.Error(t, err)
}
