package security

import (
	"errors"
	"strings"
	"testing"

	"github.com/Lin-Jiong-HDU/nlsh/internal/intent"
	"github.com/Lin-Jiong-HDU/nlsh/internal/session"
)

type recordingPrompter struct {
	answer    bool
	err       error
	questions []string
	danger    []bool
}

func (p *recordingPrompter) Confirm(question string, danger bool) (bool, error) {
	p.questions = append(p.questions, question)
	p.danger = append(p.danger, danger)
	return p.answer, p.err
}

func TestGate_Check(t *testing.T) {
	gate := NewGate(nil, nil)

	t.Run("non destructive allowed", func(t *testing.T) {
		result := gate.Check(intent.ListFiles, intent.EntitySet{Name: intent.Str("/")})
		if !result.Allowed || result.RequiresAuth {
			t.Errorf("Expected list files to pass without auth, got %+v", result)
		}
	})

	t.Run("destructive on user file requires auth", func(t *testing.T) {
		result := gate.Check(intent.DeleteFile, intent.EntitySet{Name: intent.Str("notes.txt")})
		if !result.Allowed {
			t.Fatalf("Expected delete of notes.txt to be allowed, got %+v", result)
		}
		if !result.RequiresAuth {
			t.Error("Expected delete to require auth")
		}
	})

	t.Run("destructive on protected path rejected", func(t *testing.T) {
		result := gate.Check(intent.DeleteFolder, intent.EntitySet{Name: intent.Str(`C:\Windows`)})
		if result.Allowed {
			t.Error("Expected delete of C:\\Windows to be rejected")
		}
		if !strings.Contains(result.Reason, "protected") {
			t.Errorf("Reason = %q, want mention of protected path", result.Reason)
		}
	})

	t.Run("absent target is safe", func(t *testing.T) {
		result := gate.Check(intent.KillProcess, intent.EntitySet{})
		if !result.Allowed {
			t.Errorf("Expected absent target to pass the denylist, got %+v", result)
		}
	})

	t.Run("policy protected path rejected", func(t *testing.T) {
		g := NewGate(&Policy{ProtectedPaths: []string{"/srv/data"}}, nil)
		result := g.Check(intent.DeleteFile, intent.EntitySet{Name: intent.Str("/srv/data/db.sqlite")})
		if result.Allowed {
			t.Error("Expected policy-protected path to be rejected")
		}
	})
}

func TestGate_Confirm(t *testing.T) {
	tests := []struct {
		name       string
		mode       session.Mode
		answer     bool
		want       bool
		wantPrompt string
		wantDanger bool
	}{
		{"safe asks with warning", session.Safe, true, true, "SAFETY CHECK: Are you sure you want to DELETE_FILE on a.txt?", true},
		{"beginner asks", session.Beginner, false, false, "Confirm: Do you want to DELETE_FILE on a.txt?", false},
		{"unknown mode treated as beginner", session.Mode("guru"), true, true, "Confirm: Do you want to DELETE_FILE on a.txt?", false},
		{"expert never asks", session.Expert, false, true, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &recordingPrompter{answer: tt.answer}
			gate := NewGate(nil, p)

			got, err := gate.Confirm("DELETE_FILE on a.txt", tt.mode)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Confirm() = %v, want %v", got, tt.want)
			}

			if tt.wantPrompt == "" {
				if len(p.questions) != 0 {
					t.Errorf("Expected no prompt, got %v", p.questions)
				}
				return
			}
			if len(p.questions) != 1 || p.questions[0] != tt.wantPrompt {
				t.Errorf("questions = %v, want [%q]", p.questions, tt.wantPrompt)
			}
			if p.danger[0] != tt.wantDanger {
				t.Errorf("danger = %v, want %v", p.danger[0], tt.wantDanger)
			}
		})
	}
}

func TestGate_ConfirmError(t *testing.T) {
	p := &recordingPrompter{err: errors.New("eof")}
	gate := NewGate(nil, p)

	ok, err := gate.Confirm("x", session.Safe)
	if err == nil {
		t.Fatal("Expected prompter error to surface")
	}
	if ok {
		t.Error("Expected a failed prompt to decline")
	}
}
