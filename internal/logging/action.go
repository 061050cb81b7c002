package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ActionFile is the name of the action log inside the log directory.
const ActionFile = "command_log.jsonl"

// maxMessage is the longest message kept in an action record, in runes.
const maxMessage = 100

// Action statuses.
const (
	StatusSuccess = "SUCCESS"
	StatusError   = "ERROR"
	StatusBlocked = "BLOCKED"
	StatusCancel  = "CANCEL"
	StatusFail    = "FAIL"
)

// Action is one pipeline outcome.
type Action struct {
	Input   string
	Intent  string
	Command string
	Status  string
	Message string
}

// ActionLog appends one JSON line per Action. A nil *ActionLog discards.
type ActionLog struct {
	logger *zap.Logger
	file   *os.File
}

// OpenActionLog opens dir/command_log.jsonl for appending.
func OpenActionLog(dir string) (*ActionLog, error) {
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		return nil, fmt.Errorf("log path %s is not a directory", dir)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(dir, ActionFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open action log: %w", err)
	}

	enc := zapcore.NewJSONEncoder(zapcore.EncoderConfig{
		TimeKey:        "time",
		EncodeTime:     zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05"),
		EncodeDuration: zapcore.StringDurationEncoder,
		LineEnding:     zapcore.DefaultLineEnding,
	})
	core := zapcore.NewCore(enc, zapcore.AddSync(f), zapcore.InfoLevel)
	return &ActionLog{logger: zap.New(core), file: f}, nil
}

// Record appends a.
func (l *ActionLog) Record(a Action) {
	if l == nil {
		return
	}
	l.logger.Info("",
		zap.String("input", a.Input),
		zap.String("intent", a.Intent),
		zap.String("command", a.Command),
		zap.String("status", a.Status),
		zap.String("message", truncate(a.Message, maxMessage)),
	)
}

// Close flushes and closes the file.
func (l *ActionLog) Close() error {
	if l == nil {
		return nil
	}
	_ = l.logger.Sync()
	return l.file.Close()
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
