package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bot80-alt/certa/internal/llm"
	"github.com/bot80-alt/certa/internal/model"
)

const validReport = `{
  "summary": "Mostly accurate with one overstatement.",
  "claims": [
    {"statement": "The bridge opened in 1937.", "accuracy": "accurate", "explanation": "Matches the historical record."},
    {"statement": "It cost $1 billion.", "accuracy": "Partially_Accurate", "explanation": "Inflation-adjusted figure only."},
    {"statement": "It is the longest bridge.", "accuracy": "INACCURATE", "explanation": "Several are longer."}
  ]
}`

func TestTruncate(t *testing.T) {
	short := strings.Repeat("a", 8000)
	assert.Equal(t, short, Truncate(short, 8000), "text at the cap is untouched")

	long := strings.Repeat("é", 8001)
	got := Truncate(long, 8000)
	assert.True(t, strings.HasSuffix(got, TruncationMarker))
	assert.Equal(t, 8000+utf8.RuneCountInString(TruncationMarker), utf8.RuneCountInString(got))
	assert.NotEqual(t, long, got)

	assert.Equal(t, DefaultMaxChars+utf8.RuneCountInString(TruncationMarker),
		utf8.RuneCountInString(Truncate(strings.Repeat("x", 9000), 0)))
}

func TestDecodeReport_Valid(t *testing.T) {
	report, err := DecodeReport(validReport, 5)
	require.NoError(t, err)

	assert.Equal(t, "Mostly accurate with one overstatement.", report.Summary)
	require.Len(t, report.Claims, 3)
	assert.Equal(t, model.Accurate, report.Claims[0].Accuracy)
	assert.Equal(t, model.PartiallyAccurate, report.Claims[1].Accuracy)
	assert.Equal(t, model.Inaccurate, report.Claims[2].Accuracy)
	assert.Equal(t, "Several are longer.", report.Claims[2].Rationale)
}

func TestDecodeReport_CodeFence(t *testing.T) {
	compact := `{"summary":"s","claims":[{"statement":"a","accuracy":"accurate","explanation":"e"}]}`
	tests := map[string]struct {
		raw    string
		claims int
	}{
		"fence on own lines": {"```json\n" + validReport + "\n```", 3},
		"bare fence":         {"```\n" + validReport + "\n```", 3},
		"single line":        {"```json " + compact + "```", 1},
		"inline info string": {"```json" + validReport + "```", 3},
		"upper-case info":    {"```JSON\n" + compact + "\n```", 1},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			report, err := DecodeReport(tt.raw, 5)
			require.NoError(t, err)
			assert.Len(t, report.Claims, tt.claims)
		})
	}
}

func TestDecodeReport_ClaimCountCappedAtSchemaMaximum(t *testing.T) {
	claim := `{"statement": "a", "accuracy": "accurate", "explanation": "b"}`
	claims := make([]string, model.MaxReportClaims+1)
	for i := range claims {
		claims[i] = claim
	}
	raw := `{"summary": "s", "claims": [` + strings.Join(claims, ",") + `]}`

	for _, maxClaims := range []int{0, model.MaxReportClaims + 3} {
		_, err := DecodeReport(raw, maxClaims)
		assert.Error(t, err, "maxClaims=%d", maxClaims)
	}

	report, err := DecodeReport(`{"summary": "s", "claims": [`+strings.Join(claims[:model.MaxReportClaims], ",")+`]}`, 0)
	require.NoError(t, err)
	assert.Len(t, report.Claims, model.MaxReportClaims)
}

func TestDecodeReport_Rejects(t *testing.T) {
	tests := map[string]string{
		"not json":        `The claims look fine to me.`,
		"empty":           ``,
		"missing summary": `{"claims": [{"statement": "a", "accuracy": "accurate", "explanation": "b"}]}`,
		"no claims":       `{"summary": "s", "claims": []}`,
		"unknown field":   `{"summary": "s", "verdict": "ok", "claims": [{"statement": "a", "accuracy": "accurate", "explanation": "b"}]}`,
		"unknown label":   `{"summary": "s", "claims": [{"statement": "a", "accuracy": "mostly true", "explanation": "b"}]}`,
		"missing label":   `{"summary": "s", "claims": [{"statement": "a", "explanation": "b"}]}`,
		"blank statement": `{"summary": "s", "claims": [{"statement": " ", "accuracy": "accurate", "explanation": "b"}]}`,
		"missing explain": `{"summary": "s", "claims": [{"statement": "a", "accuracy": "accurate"}]}`,
		"trailing data":   `{"summary": "s", "claims": [{"statement": "a", "accuracy": "accurate", "explanation": "b"}]} {}`,
		"truncated":       `{"summary": "s", "claims": [{"statement": "a"`,
		"too many claims": `{"summary": "s", "claims": [` + strings.TrimSuffix(strings.Repeat(`{"statement": "a", "accuracy": "accurate", "explanation": "b"},`, 6), ",") + `]}`,
	}

	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeReport(raw, 5)
			assert.Error(t, err)
		})
	}
}

type stubLLM struct {
	text  string
	err   error
	calls int
	last  llm.CompletionRequest
}

func (s *stubLLM) Name() string                     { return "stub" }
func (s *stubLLM) IsAvailable(context.Context) bool { return true }
func (s *stubLLM) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	s.calls++
	s.last = req
	if s.err != nil {
		return nil, s.err
	}
	return &llm.CompletionResponse{Text: s.text}, nil
}

type stubSearch struct {
	results []Evidence
	err     error
	query   string
	calls   int
}

func (s *stubSearch) Name() string { return "stub-search" }
func (s *stubSearch) Search(_ context.Context, q string, _ int) ([]Evidence, error) {
	s.calls++
	s.query = q
	return s.results, s.err
}

func newClient(t *testing.T, l *stubLLM, s *stubSearch) *Client {
	t.Helper()
	c, err := New(model.DefaultConfig().Oracle, l, s, nil)
	require.NoError(t, err)
	return c
}

func TestClient_CheckContent(t *testing.T) {
	l := &stubLLM{text: validReport}
	s := &stubSearch{results: []Evidence{{Title: "Golden Gate Bridge", URL: "https://example.org/ggb", Snippet: "Opened May 27, 1937."}}}
	c := newClient(t, l, s)

	report, err := c.CheckContent(context.Background(), &model.NormalizedContent{
		Text:      "The Golden Gate Bridge opened in 1937. It cost $1 billion.",
		Title:     "Golden Gate facts",
		SourceURL: "https://news.example.com/ggb",
		Modality:  model.ModalityURL,
	})
	require.NoError(t, err)
	assert.Len(t, report.Claims, 3)

	assert.Equal(t, 1, l.calls, "one logical request per check")
	assert.Equal(t, 1, s.calls)
	assert.Equal(t, "Golden Gate facts", s.query)
	assert.True(t, l.last.JSON)
	assert.Contains(t, l.last.Prompt, `titled "Golden Gate facts"`)
	assert.Contains(t, l.last.Prompt, "https://news.example.com/ggb")
	assert.Contains(t, l.last.Prompt, "Opened May 27, 1937.")
	assert.Contains(t, l.last.Prompt, "3-5 specific claims")
}

func TestClient_TruncatesBeforeSending(t *testing.T) {
	l := &stubLLM{text: validReport}
	c := newClient(t, l, &stubSearch{})

	long := strings.Repeat("word ", 3000)
	_, err := c.Check(context.Background(), long)
	require.NoError(t, err)

	assert.Contains(t, l.last.Prompt, TruncationMarker)
	assert.NotContains(t, l.last.Prompt, long)
}

func TestClient_QueryFromFirstSentence(t *testing.T) {
	s := &stubSearch{}
	c := newClient(t, &stubLLM{text: validReport}, s)

	_, err := c.Check(context.Background(), "Coffee   drinkers live longer. Another sentence follows.")
	require.NoError(t, err)
	assert.Equal(t, "Coffee drinkers live longer", s.query)
}

func TestClient_BackendFailuresAreUnavailable(t *testing.T) {
	c := newClient(t, &stubLLM{err: errors.New("503")}, &stubSearch{})
	_, err := c.Check(context.Background(), "text")
	assert.True(t, model.IsKind(err, model.KindOracleUnavailable))

	l := &stubLLM{text: validReport}
	c = newClient(t, l, &stubSearch{err: errors.New("timeout")})
	_, err = c.Check(context.Background(), "text")
	assert.True(t, model.IsKind(err, model.KindOracleUnavailable))
	assert.Zero(t, l.calls, "no completion without evidence backend")
}

func TestClient_MalformedResponse(t *testing.T) {
	c := newClient(t, &stubLLM{text: `{"summary": "ok"}`}, &stubSearch{})
	_, err := c.Check(context.Background(), "text")
	assert.True(t, model.IsKind(err, model.KindMalformedResponse))
}

func TestNew_RequiresBackends(t *testing.T) {
	_, err := New(model.DefaultConfig().Oracle, nil, &stubSearch{}, nil)
	assert.True(t, model.IsKind(err, model.KindConfiguration))

	_, err = New(model.DefaultConfig().Oracle, &stubLLM{}, nil, nil)
	assert.True(t, model.IsKind(err, model.KindConfiguration))
}

func TestNewFromConfig_MissingCredentials(t *testing.T) {
	cfg := model.DefaultConfig().Oracle

	_, err := NewFromConfig(cfg, nil, nil)
	assert.True(t, model.IsKind(err, model.KindConfiguration), "missing LLM key: %v", err)

	cfg.LLM.APIKey = "groq-key"
	_, err = NewFromConfig(cfg, nil, nil)
	assert.True(t, model.IsKind(err, model.KindConfiguration), "missing search key: %v", err)

	cfg.Search.APIKey = "serper-key"
	c, err := NewFromConfig(cfg, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "groq", c.Provider().Name())

	ollama := model.DefaultConfig().Oracle
	ollama.LLM = model.LLMConfig{Provider: "ollama", Model: "llama3.1"}
	ollama.Search.APIKey = "serper-key"
	_, err = NewFromConfig(ollama, nil, nil)
	assert.NoError(t, err, "ollama needs no LLM key")
}

func TestSerperSearch(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "serper-key", r.Header.Get("X-API-KEY"))
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"organic": [
			{"title": "A", "link": "https://a.example", "snippet": "first"},
			{"title": "B", "link": "https://b.example", "snippet": "second"},
			{"title": "C", "link": "https://c.example", "snippet": "third"}
		]}`))
	}))
	defer server.Close()

	s, err := NewSearcher(model.SearchConfig{Provider: "serper", APIKey: "serper-key", BaseURL: server.URL}, server.Client())
	require.NoError(t, err)

	results, err := s.Search(context.Background(), "bridge 1937", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, Evidence{Title: "A", URL: "https://a.example", Snippet: "first"}, results[0])
	assert.Equal(t, "bridge 1937", gotBody["q"])
}

func TestSerperSearch_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message": "Unauthorized."}`))
	}))
	defer server.Close()

	s, err := NewSearcher(model.SearchConfig{APIKey: "bad", BaseURL: server.URL}, server.Client())
	require.NoError(t, err)

	_, err = s.Search(context.Background(), "q", 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestBraveSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "brave-key", r.Header.Get("X-Subscription-Token"))
		assert.Equal(t, "bridge 1937", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`{"web": {"results": [{"title": "A", "url": "https://a.example", "description": "first"}]}}`))
	}))
	defer server.Close()

	s, err := NewSearcher(model.SearchConfig{Provider: "brave", APIKey: "brave-key", BaseURL: server.URL}, server.Client())
	require.NoError(t, err)

	results, err := s.Search(context.Background(), "bridge 1937", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "first", results[0].Snippet)
}

func TestNewSearcher_Config(t *testing.T) {
	_, err := NewSearcher(model.SearchConfig{Provider: "serper"}, nil)
	assert.True(t, model.IsKind(err, model.KindConfiguration))

	_, err = NewSearcher(model.SearchConfig{Provider: "bing", APIKey: "k"}, nil)
	assert.True(t, model.IsKind(err, model.KindConfiguration))
}
