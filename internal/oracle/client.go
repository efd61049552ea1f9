// Package oracle is the fact-check backend client: it gathers search
// evidence, asks an LLM to score the claims, and strictly validates the reply.
package oracle

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/bot80-alt/certa/internal/llm"
	"github.com/bot80-alt/certa/internal/model"
)

const maxQueryRunes = 256

// Client checks text against search evidence with one LLM completion per call
type Client struct {
	llm    llm.Provider
	search Searcher
	ranker *AuthorityRanker
	cfg    model.OracleConfig
	logger *log.Logger
}

// New wires a client from already-built backends
func New(cfg model.OracleConfig, provider llm.Provider, search Searcher, logger *log.Logger) (*Client, error) {
	if provider == nil {
		return nil, model.ConfigError("oracle", "an LLM provider is required")
	}
	if search == nil {
		return nil, model.ConfigError("oracle", "a search provider is required")
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = DefaultMaxChars
	}
	if cfg.MaxClaims <= 0 || cfg.MaxClaims > model.MaxReportClaims {
		cfg.MaxClaims = model.MaxReportClaims
	}
	if cfg.MinClaims <= 0 || cfg.MinClaims > cfg.MaxClaims {
		cfg.MinClaims = 1
	}
	if cfg.Search.Results <= 0 {
		cfg.Search.Results = 5
	}
	return &Client{
		llm:    provider,
		search: search,
		ranker: NewAuthorityRanker(cfg.Authority),
		cfg:    cfg,
		logger: logger,
	}, nil
}

// NewFromConfig builds the LLM and search backends from configuration.
// Missing credentials fail here with a configuration error, never per request.
func NewFromConfig(cfg model.OracleConfig, proxy func(*http.Request) (*url.URL, error), logger *log.Logger) (*Client, error) {
	llmCfg := llm.ConfigFromModel(cfg.LLM)
	if llmCfg.Provider == "" {
		return nil, model.ConfigError("oracle", "oracle.llm.provider is required")
	}
	if llm.RequiresAPIKey(llmCfg.Provider) && llmCfg.APIKey == "" {
		return nil, model.ConfigError("oracle", "%s API key is required (set GROQ_API_KEY or oracle.llm.api_key)", llmCfg.Provider)
	}
	llmCfg.Proxy = proxy

	provider, err := llm.NewProvider(llmCfg)
	if err != nil {
		return nil, model.ConfigError("oracle", "create LLM provider: %v", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	transport := &http.Transport{Proxy: proxy}
	if proxy == nil {
		transport.Proxy = http.ProxyFromEnvironment
	}
	search, err := NewSearcher(cfg.Search, &http.Client{Timeout: timeout, Transport: transport})
	if err != nil {
		return nil, err
	}

	return New(cfg, provider, search, logger)
}

// Provider exposes the LLM backend so other stages can share it
func (c *Client) Provider() llm.Provider {
	return c.llm
}

// Available reports whether the LLM backend answers
func (c *Client) Available(ctx context.Context) bool {
	return c.llm.IsAvailable(ctx)
}

// Check fact-checks bare text
func (c *Client) Check(ctx context.Context, text string) (*model.FactCheckReport, error) {
	return c.CheckContent(ctx, &model.NormalizedContent{Text: text, Modality: model.ModalityText})
}

// CheckContent fact-checks normalized content, using its title and source as
// prompt context. Backend failures are ORACLE_UNAVAILABLE; an unparseable or
// schema-violating reply is MALFORMED_RESPONSE.
func (c *Client) CheckContent(ctx context.Context, content *model.NormalizedContent) (*model.FactCheckReport, error) {
	const op = "oracle"

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	text := Truncate(content.Text, c.cfg.MaxChars)

	query := searchQuery(content, maxQueryRunes)
	evidence, err := c.search.Search(ctx, query, c.cfg.Search.Results)
	if err != nil {
		return nil, model.NewError(model.KindOracleUnavailable, op, "evidence search failed", err)
	}
	c.logger.Printf("%s returned %d results for %q", c.search.Name(), len(evidence), query)
	evidence = c.ranker.Rank(evidence)

	start := time.Now()
	resp, err := c.llm.Complete(ctx, llm.CompletionRequest{
		System: systemPrompt,
		Prompt: buildPrompt(content, text, evidence, c.cfg.MinClaims, c.cfg.MaxClaims),
		JSON:   true,
	})
	if err != nil {
		return nil, model.NewError(model.KindOracleUnavailable, op, fmt.Sprintf("%s request failed", c.llm.Name()), err)
	}
	c.logger.Printf("%s answered in %s (%d tokens)", c.llm.Name(), time.Since(start).Round(time.Millisecond), resp.TokensUsed)

	report, err := DecodeReport(resp.Text, c.cfg.MaxClaims)
	if err != nil {
		return nil, model.NewError(model.KindMalformedResponse, op, "backend returned a malformed report", err)
	}
	return report, nil
}
