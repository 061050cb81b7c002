package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/Lin-Jiong-HDU/nlsh/internal/core"
	"github.com/Lin-Jiong-HDU/nlsh/internal/session"
)

// ErrUserExit is returned by ProcessInput when the user asked to leave.
var ErrUserExit = errors.New("user requested exit")

// Processor runs one request through the pipeline. *core.Engine
// implements it.
type Processor interface {
	Process(ctx context.Context, input string, mode session.Mode) (*core.Report, error)
}

// Tutor answers "explain" and "teach me" requests. *interpret.Assistant
// implements it.
type Tutor interface {
	Explain(ctx context.Context, topic string) string
	Teach(ctx context.Context, topic string) string
}

var teachPrefixes = []string{"teach me", "learn", "how to"}

// REPL is the interactive read-eval-print loop.
type REPL struct {
	engine  Processor
	tutor   Tutor
	console *Console
	mode    session.Mode
	onMode  func(session.Mode) error
	log     *zap.Logger
}

// NewREPL creates a REPL starting in mode. tutor may be nil.
func NewREPL(engine Processor, tutor Tutor, console *Console, mode session.Mode, log *zap.Logger) *REPL {
	if log == nil {
		log = zap.NewNop()
	}
	return &REPL{
		engine:  engine,
		tutor:   tutor,
		console: console,
		mode:    mode,
		log:     log,
	}
}

// OnModeChange registers fn to persist a mode switch.
func (r *REPL) OnModeChange(fn func(session.Mode) error) {
	r.onMode = fn
}

// Mode returns the current mode.
func (r *REPL) Mode() session.Mode {
	return r.mode
}

// Run reads lines until exit, Ctrl+C, end of input or ctx is done.
func (r *REPL) Run(ctx context.Context) error {
	for ctx.Err() == nil {
		line, err := r.console.Lines().ReadLine(r.console.Prompt(r.mode))
		switch {
		case errors.Is(err, ErrInterrupted):
			r.console.Info("User terminated session.")
			return nil
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return fmt.Errorf("failed to read input: %w", err)
		}

		if err := r.ProcessInput(ctx, line); errors.Is(err, ErrUserExit) {
			return nil
		}
	}
	return nil
}

// ProcessInput handles one line. It returns ErrUserExit on exit/quit and
// nil otherwise; failures, including panics, are reported on the console
// and logged.
func (r *REPL) ProcessInput(ctx context.Context, input string) (err error) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Error("crash in main loop",
				zap.String("input", input),
				zap.Any("panic", p),
				zap.Stack("stack"))
			r.unexpected(fmt.Errorf("%v", p))
			err = nil
		}
	}()

	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}
	lower := strings.ToLower(input)

	switch lower {
	case "exit", "quit":
		r.console.Info("Goodbye!")
		return ErrUserExit
	case "help":
		r.console.Help()
		return nil
	}

	if sw := session.DetectSwitch(input); sw.Requested {
		r.switchMode(sw)
		return nil
	}

	if strings.HasPrefix(lower, "explain") {
		topic := strings.TrimSpace(input[len("explain"):])
		r.console.Thinking()
		r.console.Explanation(r.explain(ctx, topic))
		return nil
	}

	for _, prefix := range teachPrefixes {
		if strings.HasPrefix(lower, prefix) {
			topic := strings.TrimSpace(input[len(prefix):])
			r.console.Thinking()
			r.console.Lesson(r.teach(ctx, topic))
			return nil
		}
	}

	report, err := r.engine.Process(ctx, input, r.mode)
	if errors.Is(err, core.ErrEmptyInput) {
		return nil
	}
	if err != nil {
		r.log.Error("request failed", zap.String("input", input), zap.Error(err))
		r.unexpected(err)
		return nil
	}
	r.console.Show(report, r.mode)
	return nil
}

func (r *REPL) switchMode(sw session.Switch) {
	if sw.Mode == "" {
		r.console.Warning("Specify mode: beginner | expert | safe")
		return
	}

	r.mode = sw.Mode
	r.console.Success(fmt.Sprintf("Switched to %s mode", r.mode))
	if r.onMode == nil {
		return
	}
	if err := r.onMode(r.mode); err != nil {
		r.log.Warn("failed to save mode", zap.String("mode", r.mode.String()), zap.Error(err))
		r.console.Warning("Mode changed for this session only; the config could not be saved.")
	}
}

func (r *REPL) explain(ctx context.Context, topic string) string {
	if r.tutor == nil {
		return ""
	}
	return r.tutor.Explain(ctx, topic)
}

func (r *REPL) teach(ctx context.Context, topic string) string {
	if r.tutor == nil {
		return ""
	}
	return r.tutor.Teach(ctx, topic)
}

func (r *REPL) unexpected(err error) {
	r.console.Error(fmt.Sprintf("An unexpected error occurred: %v", err))
	r.console.Info("The error has been logged. The terminal will not crash.")
}
