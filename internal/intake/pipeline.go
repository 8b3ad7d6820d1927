// Package intake chains audio transcription into case intake.
package intake

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/casedesk/cli/internal/api"
)

// ErrBusy is returned when a run is already in progress
var ErrBusy = errors.New("intake already in progress")

// Stage is the single step the pipeline is in
type Stage int

const (
	Idle Stage = iota
	Transcribing
	ProcessingIntake
)

func (s Stage) String() string {
	switch s {
	case Transcribing:
		return "transcribing"
	case ProcessingIntake:
		return "processing intake"
	default:
		return "idle"
	}
}

// Backend is the subset of the API the pipeline needs
type Backend interface {
	TranscribeAudio(ctx context.Context, file api.FilePart) (string, error)
	CaseIntake(ctx context.Context, text string) (*api.IntakeResult, error)
}

// Result is the outcome of one run. Transcript survives an intake failure.
type Result struct {
	Transcript string
	Intake     *api.CaseIntake
	Raw        json.RawMessage
	// Failed is the stage that failed, Idle on success
	Failed Stage
	Err    error
}

// OK reports whether both steps succeeded
func (r Result) OK() bool {
	return r.Err == nil
}

// StatusText is the line shown under the intake form
func (r Result) StatusText() string {
	if r.Err != nil {
		return "Error: " + r.Err.Error()
	}
	return "Case processed successfully!"
}

// IntakeJSON returns the intake body indented for display
func (r Result) IntakeJSON() string {
	if len(r.Raw) == 0 {
		return ""
	}
	var v any
	if err := json.Unmarshal(r.Raw, &v); err != nil {
		return string(r.Raw)
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return string(r.Raw)
	}
	return string(out)
}

// View is what the intake page renders
type View struct {
	Stage  Stage
	Busy   bool
	Status string
	Last   *Result
}

// Pipeline runs transcribe then intake, never both at once
type Pipeline struct {
	backend   Backend
	logger    *zap.Logger
	onSuccess func()

	mu    sync.Mutex
	stage Stage
	busy  bool
	last  *Result
}

// NewPipeline creates a pipeline. onSuccess runs after every fully successful
// run, typically to refresh the case list.
func NewPipeline(backend Backend, logger *zap.Logger, onSuccess func()) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if onSuccess == nil {
		onSuccess = func() {}
	}
	return &Pipeline{backend: backend, logger: logger, onSuccess: onSuccess}
}

func (p *Pipeline) begin(stage Stage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.busy {
		return ErrBusy
	}
	p.busy = true
	p.stage = stage
	return nil
}

func (p *Pipeline) setStage(stage Stage) {
	p.mu.Lock()
	p.stage = stage
	p.mu.Unlock()
}

func (p *Pipeline) finish(r Result) Result {
	p.mu.Lock()
	p.busy = false
	p.stage = Idle
	p.last = &r
	p.mu.Unlock()

	if r.OK() {
		p.onSuccess()
	}
	return r
}

// Run transcribes the audio file and feeds the transcript to case intake. A
// transcription failure stops the run before any intake request.
func (p *Pipeline) Run(ctx context.Context, audioPath string) (Result, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return Result{}, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	if err := p.begin(Transcribing); err != nil {
		return Result{}, err
	}

	name := filepath.Base(audioPath)
	p.logger.Info("transcribing audio", zap.String("file", name))
	transcript, err := p.backend.TranscribeAudio(ctx, api.FilePart{Name: name, Reader: f})
	if err != nil {
		p.logger.Warn("transcription failed", zap.String("file", name), zap.Error(err))
		return p.finish(Result{Failed: Transcribing, Err: err}), nil
	}

	p.setStage(ProcessingIntake)
	r := p.intake(ctx, transcript)
	r.Transcript = transcript
	return p.finish(r), nil
}

// SubmitManual sends a hand-filled form straight to case intake
func (p *Pipeline) SubmitManual(ctx context.Context, form ManualForm) (Result, error) {
	if err := form.Validate(); err != nil {
		return Result{}, err
	}
	if err := p.begin(ProcessingIntake); err != nil {
		return Result{}, err
	}
	return p.finish(p.intake(ctx, form.Text())), nil
}

func (p *Pipeline) intake(ctx context.Context, text string) Result {
	res, err := p.backend.CaseIntake(ctx, text)
	if err != nil {
		p.logger.Warn("case intake failed", zap.Error(err))
		return Result{Failed: ProcessingIntake, Err: err}
	}
	p.logger.Info("case intake done", zap.String("client", res.ClientName), zap.String("case_type", res.CaseType))
	intake := res.CaseIntake
	return Result{Intake: &intake, Raw: res.Raw}
}

// Snapshot returns the current stage and the last result
func (p *Pipeline) Snapshot() View {
	p.mu.Lock()
	defer p.mu.Unlock()
	v := View{Stage: p.stage, Busy: p.busy, Last: p.last}
	switch {
	case p.stage == Transcribing:
		v.Status = "Uploading and transcribing audio..."
	case p.stage == ProcessingIntake:
		v.Status = "Audio transcribed. Processing for case intake..."
	case p.last != nil:
		v.Status = p.last.StatusText()
	}
	return v
}
