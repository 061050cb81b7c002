// Package backup keeps pre-deletion snapshots of files in a LIFO ledger
// and restores the most recent one on demand.
package backup

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// IndexFile is the name of the ledger index inside the backup directory.
const IndexFile = "index.json"

// Ledger is the backup/rollback ledger. Blobs live in dir under their
// entry id; the index is the single source of truth for what can be undone.
type Ledger struct {
	dir     string
	store   *Store
	entries []*Entry
	log     *zap.Logger
	mu      sync.Mutex
}

// Open loads the ledger in dir, creating the directory if needed. A corrupt
// index is moved aside and the ledger starts empty.
func Open(dir string, log *zap.Logger) (*Ledger, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	store := NewStore(filepath.Join(dir, IndexFile))
	entries, err := store.Load()
	if errors.Is(err, ErrCorruptIndex) {
		aside := fmt.Sprintf("%s.corrupt-%d", store.Path(), time.Now().Unix())
		log.Warn("backup index unreadable, starting empty",
			zap.String("index", store.Path()),
			zap.String("moved_to", aside),
			zap.Error(err))
		if rerr := os.Rename(store.Path(), aside); rerr != nil {
			return nil, fmt.Errorf("failed to move corrupt index aside: %w", rerr)
		}
		entries, err = []*Entry{}, nil
	}
	if err != nil {
		return nil, err
	}

	return &Ledger{
		dir:     dir,
		store:   store,
		entries: entries,
		log:     log,
	}, nil
}

// Dir returns the backup directory.
func (l *Ledger) Dir() string {
	return l.dir
}

// Backup snapshots the regular file at path. It returns false on any
// failure; the cause goes to the diagnostic log.
func (l *Ledger) Backup(path string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	abs, err := filepath.Abs(path)
	if err != nil {
		l.log.Warn("backup: cannot resolve path", zap.String("path", path), zap.Error(err))
		return false
	}
	info, err := os.Stat(abs)
	if err != nil {
		l.log.Warn("backup: source unavailable", zap.String("path", abs), zap.Error(err))
		return false
	}
	if !info.Mode().IsRegular() {
		l.log.Warn("backup: not a regular file", zap.String("path", abs))
		return false
	}

	entry := &Entry{
		ID:           uuid.New().String(),
		OriginalPath: abs,
		Timestamp:    time.Now(),
		Filename:     filepath.Base(abs),
	}
	blob := l.blobPath(entry.ID)

	if err := copyFile(abs, blob); err != nil {
		os.Remove(blob)
		l.log.Warn("backup: copy failed", zap.String("path", abs), zap.Error(err))
		return false
	}

	l.entries = append(l.entries, entry)
	if err := l.store.Save(l.entries); err != nil {
		l.entries = l.entries[:len(l.entries)-1]
		os.Remove(blob)
		l.log.Warn("backup: index write failed", zap.String("path", abs), zap.Error(err))
		return false
	}

	l.log.Debug("backup: stored", zap.String("id", entry.ID), zap.String("path", abs))
	return true
}

// RestoreLast pops the newest entry and copies its blob back. The entry is
// consumed whether or not the copy succeeds.
func (l *Ledger) RestoreLast() Outcome {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) == 0 {
		return Outcome{Status: StatusEmpty, Message: "No backups found."}
	}

	entry := l.entries[len(l.entries)-1]
	l.entries = l.entries[:len(l.entries)-1]
	if err := l.store.Save(l.entries); err != nil {
		l.log.Error("restore: index write failed", zap.String("id", entry.ID), zap.Error(err))
	}

	blob := l.blobPath(entry.ID)
	if _, err := os.Stat(blob); err != nil {
		l.log.Warn("restore: blob missing", zap.String("id", entry.ID), zap.Error(err))
		return Outcome{Status: StatusBlobMissing, Entry: entry, Message: "Backup file missing from storage."}
	}

	if err := restore(blob, entry.OriginalPath); err != nil {
		l.log.Error("restore: copy failed",
			zap.String("id", entry.ID),
			zap.String("blob", blob),
			zap.String("target", entry.OriginalPath),
			zap.Error(err))
		return Outcome{Status: StatusFailed, Entry: entry, Message: fmt.Sprintf("Restore failed: %v", err)}
	}

	if err := os.Remove(blob); err != nil {
		l.log.Warn("restore: blob cleanup failed", zap.String("blob", blob), zap.Error(err))
	}
	return Outcome{
		Status:  StatusRestored,
		Entry:   entry,
		Message: fmt.Sprintf("Restored %s", filepath.Base(entry.OriginalPath)),
	}
}

// Entries returns a copy of the ledger, oldest first.
func (l *Ledger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Entry, len(l.entries))
	for i, e := range l.entries {
		out[i] = *e
	}
	return out
}

// Len returns the number of restorable entries.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *Ledger) blobPath(id string) string {
	return filepath.Join(l.dir, id)
}

func restore(blob, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}
	return copyFile(blob, target)
}

// copyFile copies bytes, permission bits and modification time.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
