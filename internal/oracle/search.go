package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/bot80-alt/certa/internal/model"
)

// Evidence is one search hit offered to the model as context
type Evidence struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Tier    Tier   `json:"tier,omitempty"`
}

// Searcher retrieves web evidence for a query
type Searcher interface {
	Name() string
	Search(ctx context.Context, query string, k int) ([]Evidence, error)
}

const (
	serperDefaultURL = "https://google.serper.dev/search"
	braveDefaultURL  = "https://api.search.brave.com/res/v1/web/search"
)

// NewSearcher creates the search provider named in cfg
func NewSearcher(cfg model.SearchConfig, client *http.Client) (Searcher, error) {
	if client == nil {
		client = http.DefaultClient
	}
	if cfg.APIKey == "" {
		return nil, model.ConfigError("oracle", "search API key is required (set SERPER_API_KEY or oracle.search.api_key)")
	}

	switch strings.ToLower(cfg.Provider) {
	case "", "serper":
		endpoint := cfg.BaseURL
		if endpoint == "" {
			endpoint = serperDefaultURL
		}
		return &SerperSearch{apiKey: cfg.APIKey, endpoint: endpoint, client: client}, nil
	case "brave":
		endpoint := cfg.BaseURL
		if endpoint == "" {
			endpoint = braveDefaultURL
		}
		return &BraveSearch{apiKey: cfg.APIKey, endpoint: endpoint, client: client}, nil
	default:
		return nil, model.ConfigError("oracle", "unknown search provider: %s (supported: serper, brave)", cfg.Provider)
	}
}

// SerperSearch queries google.serper.dev
type SerperSearch struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// Name returns the provider name
func (s *SerperSearch) Name() string {
	return "serper"
}

// Search returns up to k organic results
func (s *SerperSearch) Search(ctx context.Context, query string, k int) ([]Evidence, error) {
	body, err := json.Marshal(map[string]any{"q": query, "num": k})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-API-KEY", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	var raw struct {
		Organic []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"organic"`
	}
	if err := doJSON(s.client, req, &raw); err != nil {
		return nil, fmt.Errorf("serper: %w", err)
	}

	out := make([]Evidence, 0, len(raw.Organic))
	for i, r := range raw.Organic {
		if i >= k {
			break
		}
		out = append(out, Evidence{Title: r.Title, URL: r.Link, Snippet: r.Snippet})
	}
	return out, nil
}

// BraveSearch queries the Brave Search API
type BraveSearch struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// Name returns the provider name
func (s *BraveSearch) Name() string {
	return "brave"
}

// Search returns up to k web results
func (s *BraveSearch) Search(ctx context.Context, query string, k int) ([]Evidence, error) {
	u := fmt.Sprintf("%s?q=%s&count=%d", s.endpoint, url.QueryEscape(query), k)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", s.apiKey)

	var raw struct {
		Web struct {
			Results []struct {
				Title   string `json:"title"`
				URL     string `json:"url"`
				Snippet string `json:"description"`
			} `json:"results"`
		} `json:"web"`
	}
	if err := doJSON(s.client, req, &raw); err != nil {
		return nil, fmt.Errorf("brave: %w", err)
	}

	out := make([]Evidence, 0, len(raw.Web.Results))
	for i, r := range raw.Web.Results {
		if i >= k {
			break
		}
		out = append(out, Evidence{Title: r.Title, URL: r.URL, Snippet: r.Snippet})
	}
	return out, nil
}

func doJSON(client *http.Client, req *http.Request, v any) error {
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("API error (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
