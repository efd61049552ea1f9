package model

// Modality identifies the input form a claim arrived in
type Modality string

const (
	ModalityURL   Modality = "url"
	ModalityText  Modality = "text"
	ModalityAudio Modality = "audio"
)

// NormalizedContent is the canonical text representation handed to the oracle
type NormalizedContent struct {
	Text      string   `json:"text"`
	Title     string   `json:"title,omitempty"`
	SourceURL string   `json:"source_url,omitempty"`
	Modality  Modality `json:"modality"`

	// Summary and Keywords come from the best-effort summarization step (URL input only).
	// Both are empty when that step degraded.
	Summary  string   `json:"summary,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
}

// DefaultMinContentChars is the sufficiency threshold for extracted content
const DefaultMinContentChars = 100
