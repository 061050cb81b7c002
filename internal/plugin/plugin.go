// Package plugin holds the extension objects that own intents beyond the
// built-in command table. Plugins are discovered once at startup; the
// registry is immutable afterwards.
package plugin

import (
	"github.com/Lin-Jiong-HDU/nlsh/internal/command"
	"github.com/Lin-Jiong-HDU/nlsh/internal/intent"
)

// Plugin owns a set of intents and renders them into commands or
// finished output.
type Plugin interface {
	Name() string
	Description() string
	Intents() []intent.Intent
	// Phrases contributes trigger phrases to the resolver. May be empty.
	Phrases() intent.Table
	// Execute returns a shell command, a command.FinalPrefix-marked
	// message, or "" when the intent cannot be rendered.
	Execute(in intent.Intent, entities intent.EntitySet, d command.Dialect) (string, error)
}

// Final marks msg as finished output.
func Final(msg string) string {
	return command.FinalPrefix + msg
}
