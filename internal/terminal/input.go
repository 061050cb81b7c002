package terminal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/term"
)

// ErrInterrupted is returned by a LineReader when the user pressed Ctrl+C.
var ErrInterrupted = errors.New("input interrupted")

// LineReader reads one line of input after showing a prompt.
type LineReader interface {
	ReadLine(prompt string) (string, error)
	Close() error
}

// NewLineReader returns a line editor with history when in is a terminal
// and a plain buffered reader otherwise. history may be empty.
func NewLineReader(in *os.File, out io.Writer, history string) LineReader {
	if in != nil && term.IsTerminal(int(in.Fd())) {
		return newEditor(history)
	}
	var r io.Reader = in
	if in == nil {
		r = os.Stdin
	}
	return NewPlainReader(r, out)
}

// editor wraps liner for interactive sessions.
type editor struct {
	line    *liner.State
	history string
}

func newEditor(history string) *editor {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	e := &editor{line: line, history: history}
	if history != "" {
		if f, err := os.Open(history); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}
	return e
}

func (e *editor) ReadLine(prompt string) (string, error) {
	input, err := e.line.Prompt(prompt)
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", ErrInterrupted
		}
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		e.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves history with owner-only permissions and restores the
// terminal.
func (e *editor) Close() error {
	defer e.line.Close()
	if e.history == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(e.history), 0700); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}
	f, err := os.OpenFile(e.history, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open history file: %w", err)
	}
	defer f.Close()
	if _, err := e.line.WriteHistory(f); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return nil
}

// PlainReader reads lines from any reader, echoing the prompt to out.
type PlainReader struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPlainReader creates a PlainReader. A nil out discards prompts.
func NewPlainReader(in io.Reader, out io.Writer) *PlainReader {
	if out == nil {
		out = io.Discard
	}
	return &PlainReader{in: bufio.NewReader(in), out: out}
}

// ReadLine returns the next line without its line ending. A final line
// without a newline is returned before io.EOF.
func (p *PlainReader) ReadLine(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Close is a no-op.
func (p *PlainReader) Close() error {
	return nil
}
