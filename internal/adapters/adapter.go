// Package adapters normalizes URL, text and audio inputs into plain text
// ready for fact-checking.
//
// Policy: best-effort enrichment (article summary and keywords) degrades to
// empty values when it fails, while transcription failure aborts the request.
// A transcript is the only text an audio request has, so there is nothing to
// degrade to; a summary is an extra on top of text we already hold.
package adapters

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/bot80-alt/certa/internal/model"
	"github.com/bot80-alt/certa/internal/textutil"
)

// Input is one request's raw input. Only the fields of its modality are read.
type Input struct {
	Modality model.Modality

	// URL modality
	URL string

	// Text modality; Title and Source are optional caller-supplied context
	Text   string
	Title  string
	Source string

	// Audio modality
	Audio     []byte
	MediaType string
	Filename  string
}

// Adapter normalizes one modality
type Adapter interface {
	// Name returns the adapter name
	Name() string

	// CanHandle checks if this adapter can handle the given input
	CanHandle(in Input) bool

	// Normalize turns raw input into NormalizedContent or a typed *model.Error
	Normalize(ctx context.Context, in Input) (*model.NormalizedContent, error)
}

// Registry manages content adapters
type Registry struct {
	adapters []Adapter
}

// NewRegistry creates a registry with the given adapters, checked in order
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make([]Adapter, 0, len(adapters))}
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

// Register registers a new adapter
func (r *Registry) Register(adapter Adapter) {
	if adapter == nil {
		return
	}
	r.adapters = append(r.adapters, adapter)
}

// FindAdapter returns the first adapter that can handle the input
func (r *Registry) FindAdapter(in Input) (Adapter, error) {
	for _, adapter := range r.adapters {
		if adapter.CanHandle(in) {
			return adapter, nil
		}
	}
	return nil, model.NewError(model.KindInputValidation, "registry",
		fmt.Sprintf("no adapter for %q input", in.Modality), nil)
}

// Normalize finds the adapter for in and runs it
func (r *Registry) Normalize(ctx context.Context, in Input) (*model.NormalizedContent, error) {
	adapter, err := r.FindAdapter(in)
	if err != nil {
		return nil, err
	}
	return adapter.Normalize(ctx, in)
}

// CheckSufficient enforces the minimum extractable-text length
func CheckSufficient(op, text string, minChars int) error {
	if n := textutil.CharCount(text); n < minChars {
		return model.NewError(model.KindInsufficientContent, op,
			fmt.Sprintf("not enough readable text (%d characters, need at least %d)", n, minChars), nil)
	}
	return nil
}

func orDiscard(logger *log.Logger) *log.Logger {
	if logger == nil {
		return log.New(io.Discard, "", 0)
	}
	return logger
}
