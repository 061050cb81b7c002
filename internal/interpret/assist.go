package interpret

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Lin-Jiong-HDU/nlsh/internal/ai"
)

// NoAnalysis is shown when the backend cannot explain a failure.
const NoAnalysis = "AI could not analyze the error."

// Assistant answers free-form questions with the generative backend.
type Assistant struct {
	backend ai.Backend
	timeout time.Duration
	log     *zap.Logger
}

// NewAssistant creates an assistant. A timeout <= 0 uses DefaultTimeout.
func NewAssistant(backend ai.Backend, timeout time.Duration, log *zap.Logger) *Assistant {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Assistant{backend: backend, timeout: timeout, log: log}
}

// ExplainError explains why cmd failed with stderr. It never returns "".
func (a *Assistant) ExplainError(ctx context.Context, cmd, stderr string) string {
	out := a.ask(ctx, fmt.Sprintf(explainErrorPrompt, cmd, strings.TrimSpace(stderr)))
	if out == "" {
		return NoAnalysis
	}
	return out
}

// Explain describes a terminal command briefly. "" means no answer.
func (a *Assistant) Explain(ctx context.Context, topic string) string {
	return a.ask(ctx, fmt.Sprintf(explainPrompt, topic))
}

// Teach gives a beginner lesson with examples. "" means no answer.
func (a *Assistant) Teach(ctx context.Context, topic string) string {
	return a.ask(ctx, fmt.Sprintf(teachPrompt, topic))
}

func (a *Assistant) ask(ctx context.Context, prompt string) string {
	return strings.TrimSpace(ai.Invoke(ctx, a.backend, prompt, a.timeout, a.log))
}
