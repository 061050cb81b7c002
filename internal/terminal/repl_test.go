package terminal

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Lin-Jiong-HDU/nlsh/internal/command"
	"github.com/Lin-Jiong-HDU/nlsh/internal/core"
	"github.com/Lin-Jiong-HDU/nlsh/internal/session"
)

type fakeEngine struct {
	inputs []string
	modes  []session.Mode
	report *core.Report
	err    error
	panic  bool
}

func (f *fakeEngine) Process(_ context.Context, input string, mode session.Mode) (*core.Report, error) {
	if f.panic {
		panic("boom")
	}
	f.inputs = append(f.inputs, input)
	f.modes = append(f.modes, mode)
	if f.report == nil {
		return &core.Report{Input: input, Status: core.StatusFinal, Message: "done: " + input}, f.err
	}
	return f.report, f.err
}

type fakeTutor struct {
	explained []string
	taught    []string
}

func (f *fakeTutor) Explain(_ context.Context, topic string) string {
	f.explained = append(f.explained, topic)
	return "explained " + topic
}

func (f *fakeTutor) Teach(_ context.Context, topic string) string {
	f.taught = append(f.taught, topic)
	return "lesson on " + topic
}

func newTestREPL(input string) (*REPL, *fakeEngine, *fakeTutor, *strings.Builder) {
	out := &strings.Builder{}
	console := NewConsole(out, NewPlainReader(strings.NewReader(input), io.Discard), nil, command.Linux)
	engine := &fakeEngine{}
	tutor := &fakeTutor{}
	return NewREPL(engine, tutor, console, session.Beginner, nil), engine, tutor, out
}

func TestREPL_ProcessInput_Exit(t *testing.T) {
	for _, in := range []string{"exit", "QUIT", "  exit  "} {
		r, engine, _, out := newTestREPL("")
		if err := r.ProcessInput(context.Background(), in); !errors.Is(err, ErrUserExit) {
			t.Errorf("ProcessInput(%q) = %v, want ErrUserExit", in, err)
		}
		if !strings.Contains(out.String(), "Goodbye!") {
			t.Errorf("Expected goodbye, got %q", out.String())
		}
		if len(engine.inputs) != 0 {
			t.Errorf("exit must not reach the engine")
		}
	}
}

func TestREPL_ProcessInput_Empty(t *testing.T) {
	r, engine, _, out := newTestREPL("")
	if err := r.ProcessInput(context.Background(), "   "); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(engine.inputs) != 0 || out.Len() != 0 {
		t.Error("blank input should do nothing")
	}
}

func TestREPL_ProcessInput_ModeSwitch(t *testing.T) {
	r, engine, _, out := newTestREPL("")
	var saved []session.Mode
	r.OnModeChange(func(m session.Mode) error {
		saved = append(saved, m)
		return nil
	})

	if err := r.ProcessInput(context.Background(), "switch to expert mode"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if r.Mode() != session.Expert {
		t.Errorf("Expected expert mode, got %s", r.Mode())
	}
	if !strings.Contains(out.String(), "Switched to expert mode") {
		t.Errorf("Expected switch notice, got %q", out.String())
	}
	if len(saved) != 1 || saved[0] != session.Expert {
		t.Errorf("Expected mode to be saved, got %v", saved)
	}

	if err := r.ProcessInput(context.Background(), "list files"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if engine.modes[0] != session.Expert {
		t.Errorf("Engine got mode %s, want expert", engine.modes[0])
	}
}

func TestREPL_ProcessInput_ModeSwitchWithoutMode(t *testing.T) {
	r, engine, _, out := newTestREPL("")
	if err := r.ProcessInput(context.Background(), "change mode"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.Contains(out.String(), "Specify mode: beginner | expert | safe") {
		t.Errorf("Expected hint, got %q", out.String())
	}
	if r.Mode() != session.Beginner || len(engine.inputs) != 0 {
		t.Error("mode must be unchanged and engine untouched")
	}
}

func TestREPL_ProcessInput_ModeSaveFailure(t *testing.T) {
	r, _, _, out := newTestREPL("")
	r.OnModeChange(func(session.Mode) error { return errors.New("read-only") })

	if err := r.ProcessInput(context.Background(), "mode safe"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if r.Mode() != session.Safe {
		t.Errorf("Expected safe mode, got %s", r.Mode())
	}
	if !strings.Contains(out.String(), "could not be saved") {
		t.Errorf("Expected save warning, got %q", out.String())
	}
}

func TestREPL_ProcessInput_ExplainAndTeach(t *testing.T) {
	tests := []struct {
		input     string
		explained string
		taught    string
		want      string
	}{
		{"explain grep -r", "grep -r", "", "explained grep -r"},
		{"Teach me pipes", "", "pipes", "lesson on pipes"},
		{"learn chmod", "", "chmod", "lesson on chmod"},
		{"how to find big files", "", "find big files", "lesson on find big files"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			r, engine, tutor, out := newTestREPL("")
			if err := r.ProcessInput(context.Background(), tt.input); err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if tt.explained != "" && (len(tutor.explained) != 1 || tutor.explained[0] != tt.explained) {
				t.Errorf("explained = %v, want %q", tutor.explained, tt.explained)
			}
			if tt.taught != "" && (len(tutor.taught) != 1 || tutor.taught[0] != tt.taught) {
				t.Errorf("taught = %v, want %q", tutor.taught, tt.taught)
			}
			if !strings.Contains(out.String(), tt.want) {
				t.Errorf("Expected %q in %q", tt.want, out.String())
			}
			if len(engine.inputs) != 0 {
				t.Error("explain/teach must not reach the engine")
			}
		})
	}
}

func TestREPL_ProcessInput_DelegatesToEngine(t *testing.T) {
	r, engine, _, out := newTestREPL("")
	if err := r.ProcessInput(context.Background(), " what time is it "); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(engine.inputs) != 1 || engine.inputs[0] != "what time is it" {
		t.Errorf("Engine inputs = %v", engine.inputs)
	}
	if !strings.Contains(out.String(), "done: what time is it") {
		t.Errorf("Expected report to be shown, got %q", out.String())
	}
}

func TestREPL_ProcessInput_EngineError(t *testing.T) {
	r, engine, _, out := newTestREPL("")
	engine.err = errors.New("backend exploded")
	engine.report = &core.Report{}

	if err := r.ProcessInput(context.Background(), "list files"); err != nil {
		t.Fatalf("Expected errors to be reported, not returned: %v", err)
	}
	if !strings.Contains(out.String(), "An unexpected error occurred: backend exploded") {
		t.Errorf("Expected error report, got %q", out.String())
	}
}

func TestREPL_ProcessInput_RecoversPanic(t *testing.T) {
	obs, logs := observer.New(zap.ErrorLevel)
	out := &strings.Builder{}
	console := NewConsole(out, NewPlainReader(strings.NewReader(""), io.Discard), nil, command.Linux)
	r := NewREPL(&fakeEngine{panic: true}, nil, console, session.Beginner, zap.New(obs))

	if err := r.ProcessInput(context.Background(), "list files"); err != nil {
		t.Fatalf("Expected panic to be recovered, got %v", err)
	}
	if !strings.Contains(out.String(), "An unexpected error occurred: boom") {
		t.Errorf("Expected crash notice, got %q", out.String())
	}
	if !strings.Contains(out.String(), "The terminal will not crash.") {
		t.Errorf("Expected reassurance, got %q", out.String())
	}

	entries := logs.FilterMessage("crash in main loop").All()
	if len(entries) != 1 {
		t.Fatalf("Expected one crash log entry, got %d", len(entries))
	}
	if _, ok := entries[0].ContextMap()["stack"]; !ok {
		t.Error("Expected crash log to carry a stack")
	}
}

func TestREPL_Run(t *testing.T) {
	r, engine, _, out := newTestREPL("list files\n\nmode safe\ncheck ram\nexit\nnever reached\n")
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{"list files", "check ram"}
	if len(engine.inputs) != len(want) {
		t.Fatalf("Engine inputs = %v, want %v", engine.inputs, want)
	}
	for i := range want {
		if engine.inputs[i] != want[i] {
			t.Errorf("input %d = %q, want %q", i, engine.inputs[i], want[i])
		}
	}
	if engine.modes[1] != session.Safe {
		t.Errorf("Expected second request in safe mode, got %s", engine.modes[1])
	}
	if !strings.Contains(out.String(), "Goodbye!") {
		t.Error("Expected goodbye")
	}
}

func TestREPL_RunStopsAtEOF(t *testing.T) {
	r, engine, _, _ := newTestREPL("list files")
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(engine.inputs) != 1 {
		t.Errorf("Expected the final unterminated line to run, got %v", engine.inputs)
	}
}
