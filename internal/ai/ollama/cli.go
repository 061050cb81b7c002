package ollama

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os/exec"
	"strings"
)

// CLI runs `ollama run <model>` with the prompt on stdin.
type CLI struct {
	// Binary is the executable to run. Defaults to "ollama".
	Binary string
	Model  string
}

// NewCLI creates a command-line backend for model.
func NewCLI(model string) *CLI {
	return &CLI{Binary: "ollama", Model: model}
}

// Generate returns the trimmed stdout of the model run.
func (c *CLI) Generate(ctx context.Context, prompt string) (string, error) {
	bin := c.Binary
	if bin == "" {
		bin = "ollama"
	}

	cmd := exec.CommandContext(ctx, bin, "run", c.Model)
	cmd.Stdin = strings.NewReader(prompt)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", &ClientError{Type: ErrTypeTimeout, Message: "request timed out", Cause: ctx.Err()}
		}
		var execErr *exec.Error
		if errors.As(err, &execErr) || errors.Is(err, fs.ErrNotExist) {
			return "", &ClientError{Type: ErrTypeNotRunning, Message: "ollama executable not found", Cause: err}
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = "ollama run failed"
		}
		return "", &ClientError{Type: ErrTypeUnknown, Message: msg, Cause: err}
	}
	return strings.TrimSpace(stdout.String()), nil
}
