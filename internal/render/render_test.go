package render

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bot80-alt/certa/internal/model"
)

func successResult() *model.PipelineResult {
	return &model.PipelineResult{
		Status:    model.StatusSuccess,
		RequestID: "req-7",
		Content: &model.NormalizedContent{
			Title:     "Tower | Facts",
			SourceURL: "https://example.com/tower",
			Modality:  model.ModalityURL,
		},
		Report: &model.FactCheckReport{
			Summary: "Mostly right.",
			Claims: []model.Claim{
				{Statement: "Completed in 1889", Accuracy: model.Accurate, Rationale: "Matches records."},
				{Statement: "Made of gold | silver", Accuracy: model.Inaccurate, Rationale: "Wrought iron."},
			},
		},
		Explanation: &model.Explanation{
			Narrative: "One claim holds up.",
			Source:    model.NarrativeTemplate,
			Visual: &model.VisualPayload{
				Verdict: "Mixed accuracy",
				Score:   50,
				Distribution: []model.LabelShare{
					{Label: model.Accurate, Count: 1, Percent: 50},
					{Label: model.Inaccurate, Count: 1, Percent: 50},
				},
			},
		},
	}
}

func TestRenderJSON_Envelope(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRenderer(true).RenderJSON(&buf, successResult()))

	var env model.Envelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.Equal(t, model.StatusSuccess, env.Status)
	require.NotNil(t, env.Content)
	assert.Equal(t, "One claim holds up.", env.Content.Explanation)
	assert.Len(t, env.Content.FactCheckResult.Claims, 2)
}

func TestRenderJSON_Error(t *testing.T) {
	result := &model.PipelineResult{
		Status:  model.StatusError,
		Stage:   model.StageOracle,
		Kind:    model.KindOracleUnavailable,
		Message: "Fact-checking service unavailable: groq request failed",
	}

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(false).RenderJSON(&buf, result))
	assert.Contains(t, buf.String(), `"content": null`)
	assert.Contains(t, buf.String(), `"stage": "ORACLE"`)
}

func TestRenderMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRenderer(true).RenderMarkdown(&buf, successResult()))
	md := buf.String()

	assert.Contains(t, md, "# Tower | Facts")
	assert.Contains(t, md, "## Mixed accuracy (50/100)")
	assert.Contains(t, md, "| 1 | Completed in 1889 | ✓ accurate | Matches records. |")
	assert.Contains(t, md, `Made of gold \| silver`)
	assert.Contains(t, md, Footer)
}

func TestRenderMarkdown_NoFooterAndFailure(t *testing.T) {
	result := &model.PipelineResult{Status: model.StatusError, Stage: model.StageAdapter, Message: "Could not transcribe audio"}

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(false).RenderMarkdown(&buf, result))
	assert.Contains(t, buf.String(), "## ✗ Check failed (ADAPTER)")
	assert.NotContains(t, buf.String(), Footer)
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	NewRenderer(true).RenderSummary(&buf, successResult())
	assert.Contains(t, buf.String(), "Mixed accuracy (50/100)")
	assert.Contains(t, buf.String(), "✗ 2. Made of gold | silver [inaccurate]")
}

func TestWriteFiles(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "out.json")
	mdPath := filepath.Join(dir, "out.md")

	require.NoError(t, NewRenderer(true).WriteFiles(successResult(), jsonPath, mdPath))
	assert.FileExists(t, jsonPath)
	assert.FileExists(t, mdPath)

	data, err := os.ReadFile(mdPath)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "## Transcript")
}

func TestMarker(t *testing.T) {
	assert.Equal(t, "✓", Marker(model.Accurate))
	assert.Equal(t, "~", Marker(model.PartiallyAccurate))
	assert.Equal(t, "✗", Marker(model.Inaccurate))
	assert.Equal(t, "?", Marker(model.Unverifiable))
}
