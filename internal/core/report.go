package core

import (
	"github.com/Lin-Jiong-HDU/nlsh/internal/core/backup"
	"github.com/Lin-Jiong-HDU/nlsh/internal/intent"
)

// Status is how a request ended.
type Status string

const (
	StatusExecuted    Status = "executed"
	StatusFailed      Status = "failed"
	StatusFinal       Status = "final"
	StatusRejected    Status = "rejected"
	StatusAmbiguous   Status = "ambiguous"
	StatusAborted     Status = "aborted"
	StatusUnmapped    Status = "unmapped"
	StatusBlocked     Status = "blocked"
	StatusDeclined    Status = "declined"
	StatusRolledBack  Status = "rolled_back"
	StatusInteractive Status = "interactive"
)

// Report describes the outcome of one Engine.Process call.
type Report struct {
	Input    string
	Status   Status
	Intent   intent.Intent
	Entities intent.EntitySet
	// Raw is set when the input ran as a shell command without
	// interpretation.
	Raw bool

	// FromAI is set when the intent came from the generative backend.
	FromAI     bool
	Confidence float64
	// Choice is the 1-based menu entry picked during disambiguation.
	Choice      int
	Suggestions int

	Command  string
	Plugin   string
	Stdout   string
	Stderr   string
	ExitCode int
	// Explanation is the backend's reading of Stderr.
	Explanation string

	// Message is user-facing text: finished plugin output, the restore
	// result, or why nothing ran.
	Message string

	BackedUp     bool
	BackupFailed bool
	Restore      *backup.Outcome
}

// OK reports whether the request did what was asked.
func (r *Report) OK() bool {
	switch r.Status {
	case StatusExecuted, StatusFinal, StatusInteractive:
		return true
	case StatusRolledBack:
		return r.Restore != nil && r.Restore.OK()
	}
	return false
}
