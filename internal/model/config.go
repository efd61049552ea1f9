package model

import (
	"fmt"
	"strings"
	"time"
)

// Config is the complete certa configuration.
// Loaded from defaults, then ~/.certa/config.yaml, then CERTA_* env vars, then flags.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http" mapstructure:"http"`
	Content     ContentConfig     `yaml:"content" mapstructure:"content"`
	Audio       AudioConfig       `yaml:"audio" mapstructure:"audio"`
	Oracle      OracleConfig      `yaml:"oracle" mapstructure:"oracle"`
	Explain     ExplainConfig     `yaml:"explain" mapstructure:"explain"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// HTTPConfig controls outbound fetches (reachability probe, article fetch)
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	HTTPProxy    string        `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy" mapstructure:"https_proxy"`
	NoProxy      string        `yaml:"no_proxy" mapstructure:"no_proxy"`
}

// ContentConfig controls article extraction
type ContentConfig struct {
	MinChars         int    `yaml:"min_chars" mapstructure:"min_chars"`
	Renderer         string `yaml:"renderer" mapstructure:"renderer"` // "http" or "chromedp"
	RespectRobots    bool   `yaml:"respect_robots" mapstructure:"respect_robots"`
	SummarySentences int    `yaml:"summary_sentences" mapstructure:"summary_sentences"`
	Keywords         int    `yaml:"keywords" mapstructure:"keywords"`
}

// AudioConfig controls the audio adapter and its recognizer
type AudioConfig struct {
	Recognizer    string        `yaml:"recognizer" mapstructure:"recognizer"` // "whisper" or "google"
	Model         string        `yaml:"model" mapstructure:"model"`
	Language      string        `yaml:"language" mapstructure:"language"`
	APIKey        string        `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL       string        `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxBytes      int64         `yaml:"max_bytes" mapstructure:"max_bytes"`
	MinConfidence float64       `yaml:"min_confidence" mapstructure:"min_confidence"`
	Transcode     bool          `yaml:"transcode" mapstructure:"transcode"`
	TempDir       string        `yaml:"temp_dir,omitempty" mapstructure:"temp_dir"`
}

// OracleConfig controls the fact-check oracle backend
type OracleConfig struct {
	MaxChars  int             `yaml:"max_chars" mapstructure:"max_chars"`
	MinClaims int             `yaml:"min_claims" mapstructure:"min_claims"`
	MaxClaims int             `yaml:"max_claims" mapstructure:"max_claims"`
	Timeout   time.Duration   `yaml:"timeout" mapstructure:"timeout"`
	LLM       LLMConfig       `yaml:"llm" mapstructure:"llm"`
	Search    SearchConfig    `yaml:"search" mapstructure:"search"`
	Authority AuthorityConfig `yaml:"authority" mapstructure:"authority"`
}

// LLMConfig selects and authenticates an LLM provider
type LLMConfig struct {
	Provider    string  `yaml:"provider" mapstructure:"provider"` // groq, openai, anthropic, ollama
	Model       string  `yaml:"model" mapstructure:"model"`
	APIKey      string  `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL     string  `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout     int     `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float32 `yaml:"temperature" mapstructure:"temperature"`
}

// SearchConfig authenticates the search-evidence provider
type SearchConfig struct {
	Provider string `yaml:"provider" mapstructure:"provider"` // serper
	APIKey   string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL  string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Results  int    `yaml:"results" mapstructure:"results"`
}

// AuthorityConfig ranks search evidence by source tier.
// DomainMap entries ("host": "primary|secondary|tertiary") win over the lists.
type AuthorityConfig struct {
	PrimaryDomains   []string          `yaml:"primary_domains" mapstructure:"primary_domains"`
	SecondaryDomains []string          `yaml:"secondary_domains" mapstructure:"secondary_domains"`
	DomainMap        map[string]string `yaml:"domain_map,omitempty" mapstructure:"domain_map"`
}

// ExplainConfig controls narrative generation
type ExplainConfig struct {
	Narrative bool `yaml:"narrative" mapstructure:"narrative"`
	Visual    bool `yaml:"visual" mapstructure:"visual"`
}

// ServerConfig controls the HTTP transport
type ServerConfig struct {
	Address         string        `yaml:"address" mapstructure:"address"`
	AllowOrigins    []string      `yaml:"allow_origins" mapstructure:"allow_origins"`
	JWTSecret       string        `yaml:"jwt_secret,omitempty" mapstructure:"jwt_secret"`
	RequestsPerSec  float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize       int           `yaml:"burst_size" mapstructure:"burst_size"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" mapstructure:"max_upload_bytes"`
	RequestTimeout  time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// ConcurrencyConfig controls the batch worker pool
type ConcurrencyConfig struct {
	Workers           int     `yaml:"workers" mapstructure:"workers"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// OutputConfig controls CLI rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:      10 * time.Second,
			UserAgent:    "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
			MaxBodyBytes: 5_000_000,
		},
		Content: ContentConfig{
			MinChars:         DefaultMinContentChars,
			Renderer:         "http",
			SummarySentences: 3,
			Keywords:         8,
		},
		Audio: AudioConfig{
			Recognizer:    "whisper",
			Model:         "whisper-large-v3",
			Language:      "en",
			Timeout:       60 * time.Second,
			MaxBytes:      25 << 20,
			MinConfidence: 0.5,
		},
		Oracle: OracleConfig{
			MaxChars:  8000,
			MinClaims: 3,
			MaxClaims: 5,
			Timeout:   60 * time.Second,
			LLM: LLMConfig{
				Provider:    "groq",
				Model:       "llama-3.3-70b-versatile",
				Timeout:     60,
				MaxTokens:   2048,
				Temperature: 0.2,
			},
			Search: SearchConfig{
				Provider: "serper",
				Results:  5,
			},
			Authority: AuthorityConfig{
				PrimaryDomains: []string{
					"gov", "mil", "edu", "ac.uk", "gov.uk", "gc.ca", "gov.au",
					"europa.eu", "who.int", "un.org", "worldbank.org", "imf.org",
				},
				SecondaryDomains: []string{
					"wikipedia.org", "britannica.com", "reuters.com", "apnews.com",
					"bbc.com", "bbc.co.uk", "npr.org", "nature.com", "science.org",
					"snopes.com", "politifact.com", "factcheck.org", "fullfact.org",
				},
			},
		},
		Explain: ExplainConfig{
			Narrative: true,
			Visual:    true,
		},
		Server: ServerConfig{
			Address:         ":8000",
			AllowOrigins:    []string{"*"},
			RequestsPerSec:  2,
			BurstSize:       5,
			MaxUploadBytes:  25 << 20,
			RequestTimeout:  2 * time.Minute,
			ShutdownTimeout: 10 * time.Second,
		},
		Concurrency: ConcurrencyConfig{
			Workers:           4,
			RequestsPerSecond: 1,
			BurstSize:         2,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
	}
}

// Validate checks values that would make the pipeline misbehave.
// Missing credentials are not checked here; the oracle reports those at construction.
func (c *Config) Validate() error {
	var problems []string

	if c.HTTP.Timeout <= 0 {
		problems = append(problems, "http.timeout must be > 0")
	}
	if c.Content.MinChars < 0 {
		problems = append(problems, "content.min_chars must be >= 0")
	}
	switch c.Content.Renderer {
	case "", "http", "chromedp":
	default:
		problems = append(problems, fmt.Sprintf("content.renderer %q is not one of http, chromedp", c.Content.Renderer))
	}
	switch c.Audio.Recognizer {
	case "whisper", "google":
	default:
		problems = append(problems, fmt.Sprintf("audio.recognizer %q is not one of whisper, google", c.Audio.Recognizer))
	}
	if c.Oracle.MaxChars <= 0 {
		problems = append(problems, "oracle.max_chars must be > 0")
	}
	if c.Oracle.MaxClaims < 1 || c.Oracle.MaxClaims > MaxReportClaims {
		problems = append(problems, fmt.Sprintf("oracle.max_claims must be between 1 and %d", MaxReportClaims))
	}
	if c.Oracle.MinClaims < 1 || c.Oracle.MinClaims > c.Oracle.MaxClaims {
		problems = append(problems, "oracle.min_claims must be between 1 and oracle.max_claims")
	}

	if len(problems) > 0 {
		return ConfigError("config", "invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
