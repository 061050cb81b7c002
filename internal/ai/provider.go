// Package ai defines the boundary to the generative model. Every reply is
// untrusted text; callers get "" when the backend is absent, slow or broken.
package ai

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"` // "system" | "user" | "assistant"
	Content string `json:"content"`
}

// Backend turns a prompt into raw model output.
type Backend interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// BackendFunc adapts a function to Backend.
type BackendFunc func(ctx context.Context, prompt string) (string, error)

// Generate calls f.
func (f BackendFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Invoke calls b with a bounded timeout. A nil backend, an error or an
// expired deadline all yield "". A timeout <= 0 leaves ctx unchanged.
func Invoke(ctx context.Context, b Backend, prompt string, timeout time.Duration, log *zap.Logger) string {
	if b == nil {
		return ""
	}
	if log == nil {
		log = zap.NewNop()
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := b.Generate(ctx, prompt)
	if err != nil {
		log.Warn("ai backend call failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Duration("timeout", timeout),
			zap.Error(err))
		return ""
	}
	if ctx.Err() != nil {
		log.Warn("ai backend reply arrived after deadline", zap.Duration("timeout", timeout))
		return ""
	}
	log.Debug("ai backend replied",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("bytes", len(out)))
	return out
}
