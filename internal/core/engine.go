package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Lin-Jiong-HDU/nlsh/internal/command"
	"github.com/Lin-Jiong-HDU/nlsh/internal/core/backup"
	"github.com/Lin-Jiong-HDU/nlsh/internal/core/security"
	"github.com/Lin-Jiong-HDU/nlsh/internal/intent"
	"github.com/Lin-Jiong-HDU/nlsh/internal/interpret"
	"github.com/Lin-Jiong-HDU/nlsh/internal/logging"
	"github.com/Lin-Jiong-HDU/nlsh/internal/session"
)

// ErrEmptyInput is returned for blank input lines.
var ErrEmptyInput = errors.New("empty input")

// RawIntent is the action-log intent of text run as a shell command.
const RawIntent = "RAW_COMMAND"

// Runner executes shell commands. *Executor implements it.
type Runner interface {
	Run(ctx context.Context, cmd string) Result
	IsInteractive(cmd string) bool
	RunInteractive(ctx context.Context, cmd string) error
}

// Reporter receives progress while a request is processed. The final
// outcome is the returned Report.
type Reporter interface {
	Thinking()
	Executing(cmd string)
}

type nopReporter struct{}

func (nopReporter) Thinking()        {}
func (nopReporter) Executing(string) {}

// Options wires an Engine. Resolver, Synthesizer, Gate and Runner are
// required; the rest may be nil.
type Options struct {
	Resolver    *intent.Resolver
	Extractor   *intent.Extractor
	Interpreter *interpret.Interpreter
	Assistant   *interpret.Assistant
	Synthesizer *command.Synthesizer
	Gate        *security.Gate
	Ledger      *backup.Ledger
	Runner      Runner
	Dialect     command.Dialect
	Chooser     interpret.Chooser
	Reporter    Reporter
	// PluginPhrases lets plugin phrases through the natural-language gate.
	PluginPhrases []intent.Table
	Actions       *logging.ActionLog
	Logger        *zap.Logger
}

// Engine orchestrates one request from text to outcome.
type Engine struct {
	opts     Options
	plugins  *intent.Resolver
	rollback map[string]bool
	log      *zap.Logger
}

// NewEngine creates a new engine
func NewEngine(opts Options) *Engine {
	if opts.Extractor == nil {
		opts.Extractor = intent.NewExtractor()
	}
	if opts.Reporter == nil {
		opts.Reporter = nopReporter{}
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		opts:     opts,
		plugins:  intent.NewResolver(nil, opts.PluginPhrases...),
		rollback: rollbackPhrases(),
		log:      log,
	}
}

// rollbackPhrases are the inputs that mean undo on their own, without a
// natural-language keyword.
func rollbackPhrases() map[string]bool {
	out := make(map[string]bool)
	for _, ps := range intent.BaseTable() {
		if ps.Intent != intent.Rollback {
			continue
		}
		for _, p := range ps.Phrases {
			out[p] = true
		}
	}
	return out
}

func (e *Engine) isNaturalLanguage(input string) bool {
	if intent.LooksLikeNL(input) || e.rollback[strings.ToLower(input)] {
		return true
	}
	return e.plugins.Resolve(input) != intent.Unknown
}

// Process handles a user request from input to outcome. Every pipeline
// failure is a Report status; the error is reserved for blank input.
func (e *Engine) Process(ctx context.Context, input string, mode session.Mode) (*Report, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmptyInput
	}

	if e.opts.Runner.IsInteractive(input) {
		return e.interactive(ctx, input), nil
	}
	if !e.isNaturalLanguage(input) {
		return e.raw(ctx, input), nil
	}

	r := &Report{
		Input:    input,
		Intent:   e.opts.Resolver.Resolve(input),
		Entities: e.opts.Extractor.Extract(input),
	}
	if r.Intent == intent.Unknown {
		if e.interpret(ctx, r) {
			return r, nil
		}
	}

	if r.Intent == intent.Rollback {
		e.restore(r)
		return r, nil
	}

	if r.Intent.Destructive() {
		if !e.guard(r, mode) {
			return r, nil
		}
	}

	e.synthesize(ctx, r)
	return r, nil
}

func (e *Engine) interactive(ctx context.Context, input string) *Report {
	r := &Report{Input: input, Status: StatusInteractive, Raw: true, Command: input}
	e.opts.Reporter.Executing(input)
	if err := e.opts.Runner.RunInteractive(ctx, input); err != nil {
		r.Status = StatusFailed
		r.Stderr = err.Error()
		e.log.Warn("interactive session failed", zap.String("command", input), zap.Error(err))
		e.record(r, input, logging.StatusError, r.Stderr)
		return r
	}
	e.record(r, input, logging.StatusSuccess, "OK")
	return r
}

func (e *Engine) raw(ctx context.Context, input string) *Report {
	r := &Report{Input: input, Raw: true, Command: input}
	e.execute(ctx, r)
	return r
}

// interpret runs the AI fallback. It reports true when the request ended
// there.
func (e *Engine) interpret(ctx context.Context, r *Report) bool {
	if e.opts.Interpreter == nil {
		r.Status = StatusRejected
		r.Message = "Could not understand the request. Please rephrase."
		e.record(r, "", logging.StatusFail, r.Message)
		return true
	}

	e.opts.Reporter.Thinking()
	res := e.opts.Interpreter.Resolve(ctx, r.Input, e.opts.Chooser)
	r.Confidence = res.Result.Confidence

	switch res.Outcome {
	case interpret.Accepted, interpret.Selected:
		r.Intent = res.Intent
		r.Entities = res.Entities
		r.FromAI = true
		r.Choice = res.Choice
		return false
	case interpret.Rejected:
		r.Status = StatusRejected
		r.Message = fmt.Sprintf("Too ambiguous (Confidence: %.2f). Please rephrase.", r.Confidence)
	case interpret.NoSuggestions:
		r.Status = StatusAmbiguous
		r.Message = "AI was unsure and could not suggest options."
	default:
		r.Status = StatusAborted
		r.Message = "No option selected."
		r.Suggestions = len(res.Suggestions)
		e.record(r, "", logging.StatusCancel, r.Message)
		return true
	}
	e.record(r, "", logging.StatusFail, r.Message)
	return true
}

func (e *Engine) restore(r *Report) {
	r.Status = StatusRolledBack
	if e.opts.Ledger == nil {
		r.Restore = &backup.Outcome{Status: backup.StatusEmpty, Message: "No backups found."}
	} else {
		out := e.opts.Ledger.RestoreLast()
		r.Restore = &out
	}
	r.Message = r.Restore.Message

	status := logging.StatusSuccess
	if r.Restore.Status == backup.StatusFailed {
		status = logging.StatusFail
	}
	e.record(r, "ROLLBACK", status, r.Message)
}

// guard applies the safety gate and takes the pre-delete backup. It
// reports whether the action may proceed.
func (e *Engine) guard(r *Report, mode session.Mode) bool {
	check := e.opts.Gate.Check(r.Intent, r.Entities)
	if !check.Allowed {
		r.Status = StatusBlocked
		r.Message = check.Reason
		e.log.Info("action blocked", zap.String("intent", r.Intent.String()), zap.String("reason", check.Reason))
		e.record(r, "BLOCKED", logging.StatusFail, "Strict safety block")
		return false
	}

	if check.RequiresAuth {
		ok, err := e.opts.Gate.Confirm(check.Warning, mode)
		if err != nil {
			e.log.Warn("confirmation failed", zap.Error(err))
		}
		if !ok {
			r.Status = StatusDeclined
			r.Message = "Action aborted by user."
			e.record(r, "ABORTED", logging.StatusCancel, "User denied confirmation")
			return false
		}
	}

	if r.Intent == intent.DeleteFile && r.Entities.Has(intent.FieldName) && e.opts.Ledger != nil {
		name, _ := r.Entities.Get(intent.FieldName)
		if e.opts.Ledger.Backup(intent.Unquote(name)) {
			r.BackedUp = true
		} else {
			r.BackupFailed = true
		}
	}
	return true
}

func (e *Engine) synthesize(ctx context.Context, r *Report) {
	res, ok, err := e.opts.Synthesizer.Synthesize(r.Intent, e.opts.Dialect, r.Entities)
	r.Plugin = res.Plugin
	if err != nil {
		r.Status = StatusFailed
		r.Stderr = err.Error()
		e.log.Warn("plugin failed", zap.String("intent", r.Intent.String()), zap.Error(err))
		e.record(r, "PLUGIN_EXEC", logging.StatusError, r.Stderr)
		return
	}
	if !ok {
		r.Status = StatusUnmapped
		r.Message = fmt.Sprintf("Could not map command for intent: %s", r.Intent)
		e.record(r, "", logging.StatusFail, r.Message)
		return
	}
	if res.Final {
		r.Status = StatusFinal
		r.Message = res.Output
		e.record(r, "PLUGIN_EXEC", logging.StatusSuccess, res.Output)
		return
	}

	r.Command = res.Command
	e.execute(ctx, r)
}

func (e *Engine) execute(ctx context.Context, r *Report) {
	e.opts.Reporter.Executing(r.Command)
	res := e.opts.Runner.Run(ctx, r.Command)
	r.Stdout = res.Stdout
	r.Stderr = res.Stderr
	r.ExitCode = res.ExitCode

	if !res.Failed() {
		r.Status = StatusExecuted
		e.record(r, r.Command, logging.StatusSuccess, "OK")
		return
	}

	r.Status = StatusFailed
	e.record(r, r.Command, logging.StatusError, res.Stderr)
	if e.opts.Assistant != nil {
		r.Explanation = e.opts.Assistant.ExplainError(ctx, r.Command, res.Stderr)
	} else {
		r.Explanation = interpret.NoAnalysis
	}
}

func (e *Engine) record(r *Report, cmd, status, msg string) {
	in := r.Intent.String()
	if r.Raw {
		in = RawIntent
	}
	e.opts.Actions.Record(logging.Action{
		Input:   r.Input,
		Intent:  in,
		Command: cmd,
		Status:  status,
		Message: msg,
	})
}
