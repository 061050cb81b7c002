package backup

import "time"

// Entry is one reversible snapshot in the ledger.
type Entry struct {
	ID           string    `json:"id"`
	OriginalPath string    `json:"original_path"`
	Timestamp    time.Time `json:"timestamp"`
	Filename     string    `json:"filename"`
}

// Status is the result class of a restore.
type Status string

const (
	StatusEmpty       Status = "empty"
	StatusBlobMissing Status = "blob_missing"
	StatusRestored    Status = "restored"
	StatusFailed      Status = "failed"
)

// Outcome describes what RestoreLast did. Entry is nil when the ledger
// was empty.
type Outcome struct {
	Status  Status
	Entry   *Entry
	Message string
}

// OK reports whether the file was put back.
func (o Outcome) OK() bool {
	return o.Status == StatusRestored
}
