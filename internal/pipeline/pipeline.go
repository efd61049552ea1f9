// Package pipeline runs one fact-check request through normalization,
// checking, and explanation, converting stage failures into a typed result.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/bot80-alt/certa/internal/adapters"
	"github.com/bot80-alt/certa/internal/explain"
	"github.com/bot80-alt/certa/internal/model"
)

// Stable user-facing message prefixes
const (
	SourceFailurePrefix = "Could not retrieve or understand the source content: "
	OracleFailurePrefix = "Fact-checking service unavailable: "
)

// Normalizer turns raw input into NormalizedContent (an *adapters.Registry)
type Normalizer interface {
	Normalize(ctx context.Context, in adapters.Input) (*model.NormalizedContent, error)
}

// Oracle scores the claims in normalized content (an *oracle.Client)
type Oracle interface {
	CheckContent(ctx context.Context, content *model.NormalizedContent) (*model.FactCheckReport, error)
}

// Explainer renders a report for humans; it must not fail (an *explain.Generator)
type Explainer interface {
	Explain(ctx context.Context, report *model.FactCheckReport) model.Explanation
}

// Observer is notified when each stage finishes (metrics hook)
type Observer interface {
	StageDone(stage model.Stage, modality model.Modality, elapsed time.Duration, err error)
	RunDone(result *model.PipelineResult, elapsed time.Duration)
}

// Deps are the collaborators injected into a Pipeline
type Deps struct {
	Adapters  Normalizer
	Oracle    Oracle
	Explainer Explainer

	// Optional
	Logger   *log.Logger
	Observer Observer
	NewID    func() string
	Now      func() time.Time
}

// Pipeline orchestrates the complete check process. It holds no per-request
// state and is safe for concurrent use.
type Pipeline struct {
	adapters  Normalizer
	oracle    Oracle
	explainer Explainer
	observer  Observer
	logger    *log.Logger
	newID     func() string
	now       func() time.Time
}

// New creates a pipeline. Configuration problems are reported here, before
// any request runs.
func New(cfg *model.Config, deps Deps) (*Pipeline, error) {
	if cfg == nil {
		return nil, model.ConfigError("pipeline", "configuration is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Oracle == nil {
		return nil, model.ConfigError("pipeline", "oracle is required")
	}
	if deps.Adapters == nil {
		return nil, model.ConfigError("pipeline", "content adapters are required")
	}
	if deps.Explainer == nil {
		return nil, model.ConfigError("pipeline", "explainer is required")
	}

	p := &Pipeline{
		adapters:  deps.Adapters,
		oracle:    deps.Oracle,
		explainer: deps.Explainer,
		observer:  deps.Observer,
		logger:    deps.Logger,
		newID:     deps.NewID,
		now:       deps.Now,
	}
	if p.logger == nil {
		p.logger = log.New(io.Discard, "", 0)
	}
	if p.newID == nil {
		p.newID = func() string { return uuid.NewString() }
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p, nil
}

// CheckFromURL fact-checks the article at rawURL
func (p *Pipeline) CheckFromURL(ctx context.Context, rawURL string) *model.PipelineResult {
	return p.Check(ctx, adapters.Input{Modality: model.ModalityURL, URL: rawURL})
}

// CheckFromText fact-checks raw text
func (p *Pipeline) CheckFromText(ctx context.Context, text string) *model.PipelineResult {
	return p.Check(ctx, adapters.Input{Modality: model.ModalityText, Text: text})
}

// CheckFromAudio transcribes and fact-checks an audio recording
func (p *Pipeline) CheckFromAudio(ctx context.Context, data []byte, mediaType, filename string) *model.PipelineResult {
	return p.Check(ctx, adapters.Input{
		Modality:  model.ModalityAudio,
		Audio:     data,
		MediaType: mediaType,
		Filename:  filename,
	})
}

// Check runs any input through the pipeline
func (p *Pipeline) Check(ctx context.Context, in adapters.Input) *model.PipelineResult {
	result, _ := p.CheckTraced(ctx, in)
	return result
}

// CheckTraced runs the pipeline and also returns the state trace
func (p *Pipeline) CheckTraced(ctx context.Context, in adapters.Input) (*model.PipelineResult, *Trace) {
	start := p.now()
	trace := newTrace(p.newID(), p.now)
	result := p.run(ctx, in, trace)

	if p.observer != nil {
		p.observer.RunDone(result, p.now().Sub(start))
	}
	return result, trace
}

func (p *Pipeline) run(ctx context.Context, in adapters.Input, trace *Trace) *model.PipelineResult {
	id := trace.RequestID

	// NORMALIZING
	stageStart := p.now()
	content, err := p.normalize(ctx, in)
	p.stageDone(model.StageAdapter, in.Modality, stageStart, err)
	if err != nil {
		return p.fail(trace, model.StageAdapter, err, adapterMessage(err))
	}
	p.transition(trace, StateChecking, "")

	// CHECKING
	stageStart = p.now()
	report, err := p.checkContent(ctx, content)
	p.stageDone(model.StageOracle, in.Modality, stageStart, err)
	if err != nil {
		return p.fail(trace, model.StageOracle, err, OracleFailurePrefix+model.MessageOf(err))
	}
	p.transition(trace, StateExplaining, "")

	// EXPLAINING
	stageStart = p.now()
	explanation := p.explain(ctx, report)
	p.stageDone(model.StageExplain, in.Modality, stageStart, nil)
	p.transition(trace, StateDone, "")

	result := &model.PipelineResult{
		Status:      model.StatusSuccess,
		RequestID:   id,
		Content:     content,
		Report:      report,
		Explanation: &explanation,
	}
	if content.Modality == model.ModalityAudio {
		result.TranscribedText = content.Text
	}
	return result
}

// A panic inside a stage fails that stage like any other error; it never
// reaches the caller.

func (p *Pipeline) normalize(ctx context.Context, in adapters.Input) (content *model.NormalizedContent, err error) {
	defer recoverStage(model.StageAdapter, &err)
	return p.adapters.Normalize(ctx, in)
}

func (p *Pipeline) checkContent(ctx context.Context, content *model.NormalizedContent) (report *model.FactCheckReport, err error) {
	defer recoverStage(model.StageOracle, &err)
	return p.oracle.CheckContent(ctx, content)
}

func (p *Pipeline) explain(ctx context.Context, report *model.FactCheckReport) (explanation model.Explanation) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Printf("Warning: explanation panicked, using template: %v", r)
			explanation = model.Explanation{Narrative: explain.Template(report), Source: model.NarrativeTemplate}
		}
	}()
	return p.explainer.Explain(ctx, report)
}

func recoverStage(stage model.Stage, err *error) {
	if r := recover(); r != nil {
		*err = model.NewError(model.KindInternal, string(stage), "unexpected internal error", fmt.Errorf("panic: %v", r))
	}
}

func (p *Pipeline) fail(trace *Trace, stage model.Stage, err error, message string) *model.PipelineResult {
	p.transition(trace, StateFailed, stage)
	p.logger.Printf("[%s] %s failed: %v", trace.RequestID, stage, err)
	return &model.PipelineResult{
		Status:    model.StatusError,
		RequestID: trace.RequestID,
		Stage:     stage,
		Kind:      model.KindOf(err),
		Message:   message,
	}
}

func (p *Pipeline) transition(trace *Trace, to State, stage model.Stage) {
	tr, err := trace.advance(to, stage)
	if err != nil {
		p.logger.Printf("[%s] %v", trace.RequestID, err)
		return
	}
	p.logger.Printf("[%s] %s -> %s (%s)", trace.RequestID, tr.From, tr.To, tr.Elapsed.Round(time.Millisecond))
}

// Ready reports whether the oracle backend is reachable. Oracles that cannot
// tell are assumed ready.
func (p *Pipeline) Ready(ctx context.Context) bool {
	if a, ok := p.oracle.(interface{ Available(context.Context) bool }); ok {
		return a.Available(ctx)
	}
	return true
}

func (p *Pipeline) stageDone(stage model.Stage, modality model.Modality, start time.Time, err error) {
	if p.observer != nil {
		p.observer.StageDone(stage, modality, p.now().Sub(start), err)
	}
}

func adapterMessage(err error) string {
	if model.IsKind(err, model.KindTranscriptionFailed) {
		return adapters.TranscriptionFailedMessage
	}
	return SourceFailurePrefix + model.MessageOf(err)
}
