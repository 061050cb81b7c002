package terminal

import (
	"io"
	"strings"
	"testing"
)

// promptConsole builds a console that reads answers from input.
func promptConsole(input string, output io.Writer) *Console {
	return NewConsole(output, NewPlainReader(strings.NewReader(input), output), nil, "")
}

func TestConfirm_YesInput(t *testing.T) {
	output := &strings.Builder{}

	result, err := promptConsole("y\n", output).Confirm("Confirm: Do you want to DELETE_FILE on a.txt?", false)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !result {
		t.Error("Expected confirmation to succeed")
	}
	if !strings.Contains(output.String(), "DELETE_FILE on a.txt") {
		t.Errorf("Expected question in output, got %q", output.String())
	}
}

func TestConfirm_Answers(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"yes", "yes\n", true},
		{"upper", "Y\n", true},
		{"no", "n\n", false},
		{"empty declines", "\n", false},
		{"eof declines", "", false},
		{"no trailing newline", "y", true},
		{"retry after invalid", "maybe\ny\n", true},
		{"crlf", "y\r\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := promptConsole(tt.input, io.Discard).Confirm("Proceed?", true)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if got != tt.want {
				t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestConfirm_InvalidInputAsksAgain(t *testing.T) {
	output := &strings.Builder{}
	if _, err := promptConsole("x\nn\n", output).Confirm("Proceed?", false); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if strings.Count(output.String(), "[y/n]") != 2 {
		t.Errorf("Expected two prompts, got %q", output.String())
	}
	if !strings.Contains(output.String(), "Please enter y or n.") {
		t.Errorf("Expected retry hint, got %q", output.String())
	}
}

func TestChoose(t *testing.T) {
	output := &strings.Builder{}
	got, err := promptConsole("2\n", output).Choose([]string{"List files", "Show current folder"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got != "2" {
		t.Errorf("Expected raw line %q, got %q", "2", got)
	}

	out := output.String()
	for _, want := range []string{"Did you mean:", "1) List files", "2) Show current folder"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output, got %q", want, out)
		}
	}
}

func TestChoose_EOF(t *testing.T) {
	got, err := promptConsole("", io.Discard).Choose([]string{"a"})
	if err != nil || got != "" {
		t.Errorf("Expected empty choice on EOF, got %q, %v", got, err)
	}
}

func TestPlainReader_Lines(t *testing.T) {
	output := &strings.Builder{}
	r := NewPlainReader(strings.NewReader("one\ntwo"), output)

	for _, want := range []string{"one", "two"} {
		got, err := r.ReadLine("> ")
		if err != nil {
			t.Fatalf("ReadLine: %v", err)
		}
		if got != want {
			t.Errorf("ReadLine = %q, want %q", got, want)
		}
	}
	if _, err := r.ReadLine("> "); err != io.EOF {
		t.Errorf("Expected io.EOF, got %v", err)
	}
	if output.String() != "> > > " {
		t.Errorf("Expected prompts echoed, got %q", output.String())
	}
}
