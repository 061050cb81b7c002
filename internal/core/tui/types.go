package tui

import (
	"github.com/Lin-Jiong-HDU/nlsh/internal/core/backup"
)

// Ledger is the part of the backup ledger the browser needs.
type Ledger interface {
	Entries() []backup.Entry
	RestoreLast() backup.Outcome
}

// RestoredMsg is sent when a restore completes
type RestoredMsg struct {
	Outcome backup.Outcome
}
