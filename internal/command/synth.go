package command

import (
	"fmt"
	"strings"

	"github.com/Lin-Jiong-HDU/nlsh/internal/intent"
)

// FinalPrefix marks a handler result as finished output that must not be
// executed.
const FinalPrefix = "INTERNAL:"

// Handler executes an intent it owns and returns a shell command, or a
// FinalPrefix-marked message.
type Handler interface {
	Name() string
	Execute(in intent.Intent, entities intent.EntitySet, d Dialect) (string, error)
}

// Lookup finds the handler that owns an intent.
type Lookup interface {
	Handler(in intent.Intent) (Handler, bool)
}

// Result is the outcome of a successful synthesis.
type Result struct {
	// Command is the shell command to execute. Empty when Final is set.
	Command string
	// Output is the finalized message when Final is set.
	Output string
	Final  bool
	// Plugin is the name of the handler that produced the result, if any.
	Plugin string
}

// Synthesizer turns an (intent, dialect, entities) triple into a command.
type Synthesizer struct {
	handlers Lookup
}

// NewSynthesizer creates a synthesizer. handlers may be nil.
func NewSynthesizer(handlers Lookup) *Synthesizer {
	return &Synthesizer{handlers: handlers}
}

// Synthesize consults the plugin handlers first and the static table
// second. It reports false when nothing maps the triple. A handler that
// owns the intent is authoritative: the static table is not consulted
// even if the handler returns nothing.
func (s *Synthesizer) Synthesize(in intent.Intent, d Dialect, e intent.EntitySet) (Result, bool, error) {
	if s.handlers != nil {
		if h, ok := s.handlers.Handler(in); ok {
			out, err := h.Execute(in, e, d)
			if err != nil {
				return Result{Plugin: h.Name()}, false, fmt.Errorf("plugin %s: %w", h.Name(), err)
			}
			if out == "" {
				return Result{Plugin: h.Name()}, false, nil
			}
			if msg, final := strings.CutPrefix(out, FinalPrefix); final {
				return Result{Output: msg, Final: true, Plugin: h.Name()}, true, nil
			}
			return Result{Command: out, Plugin: h.Name()}, true, nil
		}
	}

	cmd, ok := Render(in, d, e)
	if !ok {
		return Result{}, false, nil
	}
	return Result{Command: cmd}, true, nil
}
