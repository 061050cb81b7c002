package terminal

import (
	"io"
	"strings"
	"testing"

	"github.com/Lin-Jiong-HDU/nlsh/internal/command"
	"github.com/Lin-Jiong-HDU/nlsh/internal/core"
	"github.com/Lin-Jiong-HDU/nlsh/internal/core/backup"
	"github.com/Lin-Jiong-HDU/nlsh/internal/intent"
	"github.com/Lin-Jiong-HDU/nlsh/internal/session"
)

func newTestConsole(input string) (*Console, *strings.Builder) {
	out := &strings.Builder{}
	return NewConsole(out, NewPlainReader(strings.NewReader(input), io.Discard), nil, command.Linux), out
}

func TestConsole_Show(t *testing.T) {
	tests := []struct {
		name   string
		report *core.Report
		want   []string
		absent []string
	}{
		{
			name:   "executed",
			report: &core.Report{Status: core.StatusExecuted, Intent: intent.ListFiles, Stdout: "a.txt\nb.txt\n"},
			want:   []string{"a.txt\nb.txt\n"},
			absent: []string{"Error"},
		},
		{
			name: "failed with insight",
			report: &core.Report{
				Status:      core.StatusFailed,
				Command:     "ls nope",
				Stderr:      "ls: cannot access 'nope'",
				Explanation: "The folder does not exist.",
			},
			want: []string{"✖ Error: ls: cannot access 'nope'", "🧠 AI Insight", "The folder does not exist."},
		},
		{
			name:   "formatted output",
			report: &core.Report{Status: core.StatusExecuted, Intent: intent.CheckRAM, Stdout: linuxFree},
			want:   []string{"Memory Status"},
		},
		{
			name:   "raw output is never formatted",
			report: &core.Report{Status: core.StatusExecuted, Raw: true, Intent: intent.CheckRAM, Stdout: linuxFree},
			absent: []string{"Memory Status"},
		},
		{
			name:   "final",
			report: &core.Report{Status: core.StatusFinal, Message: "The current time is 10:00:00."},
			want:   []string{"✔ Success: The current time is 10:00:00."},
		},
		{
			name:   "declined",
			report: &core.Report{Status: core.StatusDeclined, Message: "Action aborted by user."},
			want:   []string{"⚠ Warning: Action aborted by user."},
		},
		{
			name:   "blocked",
			report: &core.Report{Status: core.StatusBlocked, Message: "Access denied: /etc is a protected system path"},
			want:   []string{BlockedMessage, "/etc is a protected"},
		},
		{
			name:   "unmapped",
			report: &core.Report{Status: core.StatusUnmapped, Message: "Could not map command for intent: FLY"},
			want:   []string{"✖ Error: Could not map command for intent: FLY"},
		},
		{
			name: "restored",
			report: &core.Report{Status: core.StatusRolledBack, Restore: &backup.Outcome{
				Status: backup.StatusRestored, Message: "Restored a.txt",
			}},
			want: []string{"✔ Success: Restored a.txt"},
		},
		{
			name: "nothing to restore",
			report: &core.Report{Status: core.StatusRolledBack, Restore: &backup.Outcome{
				Status: backup.StatusEmpty, Message: "No backups found.",
			}},
			want: []string{"⚠ Warning: No backups found."},
		},
		{
			name: "restore failed",
			report: &core.Report{Status: core.StatusRolledBack, Restore: &backup.Outcome{
				Status: backup.StatusFailed, Message: "Restore failed: denied",
			}},
			want: []string{"✖ Error: Restore failed: denied"},
		},
		{
			name: "backup notice",
			report: &core.Report{
				Status:   core.StatusExecuted,
				Intent:   intent.DeleteFile,
				Entities: intent.EntitySet{Name: intent.Str("notes.txt")},
				BackedUp: true,
			},
			want: []string{"📦 Backup created for notes.txt"},
		},
		{
			name:   "backup failure",
			report: &core.Report{Status: core.StatusExecuted, Intent: intent.DeleteFile, BackupFailed: true},
			want:   []string{"proceeding without a backup"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, out := newTestConsole("")
			c.Show(tt.report, session.Beginner)
			for _, w := range tt.want {
				if !strings.Contains(out.String(), w) {
					t.Errorf("Expected %q in:\n%s", w, out.String())
				}
			}
			for _, a := range tt.absent {
				if strings.Contains(out.String(), a) {
					t.Errorf("Did not expect %q in:\n%s", a, out.String())
				}
			}
		})
	}
}

func TestConsole_ShowInsightByMode(t *testing.T) {
	report := &core.Report{Status: core.StatusExecuted, Intent: intent.ListFiles, FromAI: true, Confidence: 0.82}

	c, out := newTestConsole("")
	c.Show(report, session.Beginner)
	if !strings.Contains(out.String(), "AI read this as LIST_FILES (confidence 0.82)") {
		t.Errorf("Expected AI reading in beginner mode, got %q", out.String())
	}

	c, out = newTestConsole("")
	c.Show(report, session.Expert)
	if strings.Contains(out.String(), "AI read this") {
		t.Errorf("Expected no AI reading in expert mode, got %q", out.String())
	}

	report.Choice = 2
	c, out = newTestConsole("")
	c.Show(report, session.Safe)
	if !strings.Contains(out.String(), "You picked option 2: LIST_FILES") {
		t.Errorf("Expected picked option, got %q", out.String())
	}
}

func TestConsole_Reporter(t *testing.T) {
	c, out := newTestConsole("")
	var r core.Reporter = c
	r.Thinking()
	r.Executing("ls -la")

	if !strings.Contains(out.String(), "AI is thinking...") {
		t.Errorf("Expected thinking notice, got %q", out.String())
	}
	if !strings.Contains(out.String(), "Executing: ls -la") {
		t.Errorf("Expected command echo, got %q", out.String())
	}
}

func TestConsole_EmptyAnswer(t *testing.T) {
	c, out := newTestConsole("")
	c.Explanation("  ")
	if !strings.Contains(out.String(), "AI returned no answer") {
		t.Errorf("Expected no-answer warning, got %q", out.String())
	}

	c, out = newTestConsole("")
	c.Lesson("Use `ls` to list files.")
	if !strings.Contains(out.String(), "🎓 AI Tutor") || !strings.Contains(out.String(), "ls") {
		t.Errorf("Expected lesson panel, got %q", out.String())
	}
}

func TestConsole_Prompt(t *testing.T) {
	c, _ := newTestConsole("")
	if !strings.Contains(c.Prompt(session.Expert), "➜ EXPERT") {
		t.Errorf("Unexpected prompt %q", c.Prompt(session.Expert))
	}
}
