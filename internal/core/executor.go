package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"mvdan.cc/sh/v3/shell"
	"mvdan.cc/sh/v3/syntax"

	"github.com/Lin-Jiong-HDU/nlsh/internal/command"
)

// DefaultTimeout bounds a non-interactive command.
const DefaultTimeout = 60 * time.Second

// interactiveCommands take over the terminal and run with inherited stdio.
var interactiveCommands = map[string]bool{
	"vim": true, "nano": true, "top": true, "htop": true,
	"less": true, "more": true,
	"python": true, "python3": true,
	"bash": true, "sh": true, "zsh": true,
	"cmd": true, "powershell": true,
}

var winEnvVar = regexp.MustCompile(`%([A-Za-z_][A-Za-z0-9_]*)%`)

// Result represents command execution result
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Failed reports whether the command wrote to stderr.
func (r Result) Failed() bool {
	return r.Stderr != ""
}

// Executor runs synthesized commands through the dialect's shell. A bare
// cd is applied to the process itself so later commands see it.
type Executor struct {
	dialect command.Dialect
	timeout time.Duration

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	mu      sync.Mutex
	prevDir string
}

// NewExecutor creates a new executor
func NewExecutor(d command.Dialect, timeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Executor{
		dialect: d,
		timeout: timeout,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

// Dialect returns the shell dialect commands are run with.
func (e *Executor) Dialect() command.Dialect {
	return e.dialect
}

// Run executes cmd and captures its output. Launch failures and timeouts
// are reported as stderr text.
func (e *Executor) Run(ctx context.Context, cmd string) Result {
	cmd = strings.TrimSpace(cmd)
	if cmd == "" {
		return Result{}
	}
	if res, ok := e.changeDir(cmd); ok {
		return res
	}
	if e.dialect == command.Linux {
		if err := checkSyntax(cmd); err != nil {
			return Result{Stderr: fmt.Sprintf("nlsh: %v", err), ExitCode: 2}
		}
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	execCmd := e.shellCommand(ctx, cmd)
	var stdout, stderr bytes.Buffer
	execCmd.Stdout = &stdout
	execCmd.Stderr = &stderr

	err := execCmd.Run()

	result := Result{
		Stdout: strings.ToValidUTF8(stdout.String(), ""),
		Stderr: strings.ToValidUTF8(stderr.String(), ""),
	}
	if err == nil {
		return result
	}

	var exitErr *exec.ExitError
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		result.ExitCode = -1
		result.Stderr = appendLine(result.Stderr, fmt.Sprintf("command timed out after %s", e.timeout))
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	default:
		result.ExitCode = -1
		result.Stderr = appendLine(result.Stderr, err.Error())
	}
	return result
}

func (e *Executor) shellCommand(ctx context.Context, cmd string) *exec.Cmd {
	if e.dialect == command.Windows {
		return exec.CommandContext(ctx, "cmd", "/C", cmd)
	}
	return exec.CommandContext(ctx, "sh", "-c", cmd)
}

// IsInteractive reports whether cmd starts a full-screen or REPL program.
func (e *Executor) IsInteractive(cmd string) bool {
	return IsInteractive(cmd)
}

// IsInteractive reports whether the first word of cmd names an
// interactive program. Unparseable input is not interactive.
func IsInteractive(cmd string) bool {
	fields, err := shell.Fields(cmd, func(string) string { return "" })
	if err != nil || len(fields) == 0 {
		return false
	}
	name := strings.ToLower(filepath.Base(fields[0]))
	name = strings.TrimSuffix(name, ".exe")
	return interactiveCommands[name]
}

// RunInteractive runs cmd attached to the executor's stdio. It is not
// bounded by the command timeout.
func (e *Executor) RunInteractive(ctx context.Context, cmd string) error {
	var execCmd *exec.Cmd
	if e.dialect == command.Windows {
		execCmd = exec.CommandContext(ctx, "cmd", "/C", cmd)
	} else {
		argv, err := shell.Fields(cmd, os.Getenv)
		if err != nil {
			return fmt.Errorf("failed to parse command: %w", err)
		}
		if len(argv) == 0 {
			return errors.New("empty command")
		}
		execCmd = exec.CommandContext(ctx, argv[0], argv[1:]...)
	}
	execCmd.Stdin = e.Stdin
	execCmd.Stdout = e.Stdout
	execCmd.Stderr = e.Stderr

	if err := execCmd.Run(); err != nil {
		return fmt.Errorf("interactive session failed: %w", err)
	}
	return nil
}

// changeDir handles a lone cd. It reports false when cmd is anything
// else, including a cd chained with other commands.
func (e *Executor) changeDir(cmd string) (Result, bool) {
	var (
		args []string
		ok   bool
	)
	if e.dialect == command.Windows {
		args, ok = windowsCdArgs(cmd)
	} else {
		args, ok = posixCdArgs(cmd)
	}
	if !ok {
		return Result{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if len(args) == 0 {
		if e.dialect == command.Windows {
			wd, err := os.Getwd()
			if err != nil {
				return Result{Stderr: err.Error(), ExitCode: 1}, true
			}
			return Result{Stdout: wd + "\n"}, true
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return Result{Stderr: err.Error(), ExitCode: 1}, true
		}
		args = []string{home}
	}
	if len(args) > 1 {
		return Result{Stderr: "cd: too many arguments", ExitCode: 1}, true
	}

	target := args[0]
	if target == "-" {
		if e.prevDir == "" {
			return Result{Stderr: "cd: no previous directory", ExitCode: 1}, true
		}
		target = e.prevDir
	}
	target = expandHome(target)

	prev, _ := os.Getwd()
	if err := os.Chdir(target); err != nil {
		return Result{Stderr: fmt.Sprintf("cd: %s: %v", args[0], unwrapPathError(err)), ExitCode: 1}, true
	}
	e.prevDir = prev
	return Result{}, true
}

func posixCdArgs(cmd string) ([]string, bool) {
	prog, err := syntax.NewParser().Parse(strings.NewReader(cmd), "")
	if err != nil || len(prog.Stmts) != 1 {
		return nil, false
	}
	stmt := prog.Stmts[0]
	call, isCall := stmt.Cmd.(*syntax.CallExpr)
	if !isCall || len(stmt.Redirs) > 0 || stmt.Background || stmt.Negated || len(call.Assigns) > 0 || len(call.Args) == 0 {
		return nil, false
	}
	if lit := call.Args[0].Lit(); lit != "cd" {
		return nil, false
	}

	fields, err := shell.Fields(cmd, os.Getenv)
	if err != nil || len(fields) == 0 {
		return nil, false
	}
	return fields[1:], true
}

func windowsCdArgs(cmd string) ([]string, bool) {
	if strings.ContainsAny(cmd, "&|<>") {
		return nil, false
	}
	lower := strings.ToLower(cmd)
	var rest string
	switch {
	case lower == "cd" || lower == "chdir":
		return nil, true
	case strings.HasPrefix(lower, "cd ") || strings.HasPrefix(lower, "cd.") || strings.HasPrefix(lower, `cd\`):
		rest = cmd[2:]
	case strings.HasPrefix(lower, "chdir "):
		rest = cmd[5:]
	default:
		return nil, false
	}

	rest = strings.TrimSpace(rest)
	if len(rest) >= 2 && strings.EqualFold(rest[:2], "/d") {
		rest = strings.TrimSpace(rest[2:])
	}
	rest = strings.Trim(rest, `"`)
	rest = winEnvVar.ReplaceAllStringFunc(rest, func(m string) string {
		if v, ok := os.LookupEnv(m[1 : len(m)-1]); ok {
			return v
		}
		if strings.EqualFold(m, "%USERPROFILE%") {
			if home, err := os.UserHomeDir(); err == nil {
				return home
			}
		}
		return m
	})
	if rest == "" {
		return nil, true
	}
	return []string{rest}, true
}

func checkSyntax(cmd string) error {
	_, err := syntax.NewParser(syntax.Variant(syntax.LangBash)).Parse(strings.NewReader(cmd), "")
	return err
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

func unwrapPathError(err error) error {
	var pe *os.PathError
	if errors.As(err, &pe) {
		return pe.Err
	}
	return err
}

func appendLine(s, line string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s + line
	}
	return s + "\n" + line
}
