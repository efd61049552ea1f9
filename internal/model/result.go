package model

// Status is the terminal outcome of a pipeline run
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Stage names the pipeline stage a failure originated in
type Stage string

const (
	StageAdapter Stage = "ADAPTER"
	StageOracle  Stage = "ORACLE"
	StageExplain Stage = "EXPLAIN"
)

// PipelineResult is the envelope returned for every request
type PipelineResult struct {
	Status    Status `json:"status"`
	RequestID string `json:"request_id,omitempty"`

	// Success fields
	TranscribedText string             `json:"transcribed_text,omitempty"`
	Content         *NormalizedContent `json:"-"`
	Report          *FactCheckReport   `json:"fact_check_result,omitempty"`
	Explanation     *Explanation       `json:"explanation,omitempty"`

	// Error fields
	Stage   Stage     `json:"stage,omitempty"`
	Kind    ErrorKind `json:"kind,omitempty"`
	Message string    `json:"message,omitempty"`
}

// OK reports whether the run succeeded
func (r *PipelineResult) OK() bool {
	return r.Status == StatusSuccess
}

// Envelope is the transport-facing response shape
type Envelope struct {
	Status    Status           `json:"status"`
	Content   *EnvelopeContent `json:"content"`
	Message   string           `json:"message,omitempty"`
	Stage     Stage            `json:"stage,omitempty"`
	Kind      ErrorKind        `json:"kind,omitempty"`
	RequestID string           `json:"request_id,omitempty"`
}

// EnvelopeContent is the success payload of an Envelope
type EnvelopeContent struct {
	FactCheckResult *FactCheckReport `json:"fact_check_result"`
	Explanation     string           `json:"explanation"`
	Visual          *VisualPayload   `json:"visual,omitempty"`
	TranscribedText string           `json:"transcribed_text,omitempty"`
	Title           string           `json:"title,omitempty"`
	SourceURL       string           `json:"source_url,omitempty"`
}

// Envelope converts the result into its transport shape
func (r *PipelineResult) Envelope() Envelope {
	env := Envelope{
		Status:    r.Status,
		RequestID: r.RequestID,
	}
	if !r.OK() {
		env.Message = r.Message
		env.Stage = r.Stage
		env.Kind = r.Kind
		return env
	}

	content := &EnvelopeContent{
		FactCheckResult: r.Report,
		TranscribedText: r.TranscribedText,
	}
	if r.Explanation != nil {
		content.Explanation = r.Explanation.Narrative
		content.Visual = r.Explanation.Visual
	}
	if r.Content != nil {
		content.Title = r.Content.Title
		content.SourceURL = r.Content.SourceURL
	}
	env.Content = content
	return env
}
