package adapters

import (
	"context"
	"strings"

	"github.com/bot80-alt/certa/internal/model"
)

// TextAdapter passes raw text through, rejecting empty input
type TextAdapter struct{}

// NewTextAdapter creates a text adapter
func NewTextAdapter() *TextAdapter {
	return &TextAdapter{}
}

// Name returns the adapter name
func (a *TextAdapter) Name() string {
	return "text"
}

// CanHandle matches the text modality
func (a *TextAdapter) CanHandle(in Input) bool {
	return in.Modality == model.ModalityText
}

// Normalize trims the text and carries caller metadata through
func (a *TextAdapter) Normalize(_ context.Context, in Input) (*model.NormalizedContent, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, model.NewError(model.KindInputValidation, "text-adapter", "text is empty", nil)
	}

	return &model.NormalizedContent{
		Text:      text,
		Title:     strings.TrimSpace(in.Title),
		SourceURL: strings.TrimSpace(in.Source),
		Modality:  model.ModalityText,
	}, nil
}
