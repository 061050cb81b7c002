package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/Lin-Jiong-HDU/nlsh/internal/core"
	"github.com/Lin-Jiong-HDU/nlsh/internal/core/backup"
	"github.com/Lin-Jiong-HDU/nlsh/internal/core/tui"
	"github.com/Lin-Jiong-HDU/nlsh/internal/logging"
	"github.com/Lin-Jiong-HDU/nlsh/internal/plugin"
	"github.com/Lin-Jiong-HDU/nlsh/internal/terminal"
)

// newConsole builds a console over the command's streams. history is the
// REPL history file; empty keeps no history.
func (c *cli) newConsole(cmd *cobra.Command, history string) *terminal.Console {
	out := cmd.OutOrStdout()

	var lines terminal.LineReader
	if f, ok := cmd.InOrStdin().(*os.File); ok {
		lines = terminal.NewLineReader(f, out, history)
	} else {
		lines = terminal.NewPlainReader(cmd.InOrStdin(), out)
	}

	renderer, err := terminal.NewRenderer(terminal.DefaultWidth)
	if err != nil {
		c.app.log.Debug("markdown rendering disabled", zap.Error(err))
	}
	return terminal.NewConsole(out, lines, renderer, c.app.dialect)
}

func (c *cli) closeConsole(console *terminal.Console) {
	if err := console.Lines().Close(); err != nil {
		c.app.log.Warn("failed to close input", zap.Error(err))
	}
}

// runShell starts the interactive shell.
func (c *cli) runShell(cmd *cobra.Command, args []string) error {
	a := c.app
	console := c.newConsole(cmd, a.cfg.HistoryFile())
	defer c.closeConsole(console)

	console.Welcome(a.mode)
	if err := a.checkBackend(cmd.Context()); err != nil {
		a.log.Warn("ollama unavailable", zap.Error(err))
		console.Warning("Ollama is not running. AI features will fail.")
		console.Info("Please start Ollama in another terminal.")
	}

	repl := terminal.NewREPL(a.newEngine(console), a.assistant, console, a.mode, a.log)
	repl.OnModeChange(a.saveMode)
	return repl.Run(cmd.Context())
}

// getRunCommand returns the run command
func (c *cli) getRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run <request...>",
		Short: "Process one request and exit",
		Long: `Process a single request, natural language or shell, and exit.

Confirmations are read from stdin. The exit status is non-zero when the
request did not complete.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.process(cmd, strings.Join(args, " "))
		},
	}
}

// getUndoCommand returns the undo command
func (c *cli) getUndoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Restore the most recently deleted file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.process(cmd, "undo")
		},
	}
}

func (c *cli) process(cmd *cobra.Command, input string) error {
	a := c.app
	console := c.newConsole(cmd, "")
	defer c.closeConsole(console)

	report, err := a.newEngine(console).Process(cmd.Context(), input, a.mode)
	if err != nil {
		return err
	}
	console.Show(report, a.mode)

	if report.OK() {
		return nil
	}
	if report.Status == core.StatusRolledBack && report.Restore.Status == backup.StatusEmpty {
		return nil
	}
	return fmt.Errorf("request %s", report.Status)
}

// getBackupsCommand returns the backups command
func (c *cli) getBackupsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "backups",
		Short: "Browse and restore pre-deletion backups",
		Long: `Browse the backup ledger, newest first.

On a terminal this opens an interactive browser where 'u' restores the
newest backup. Otherwise the ledger is printed.`,
		Args: cobra.NoArgs,
		RunE: c.runBackups,
	}
}

func (c *cli) runBackups(cmd *cobra.Command, args []string) error {
	a := c.app
	out := cmd.OutOrStdout()

	if f, ok := out.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		printBackups(out, a.ledger.Entries())
		return nil
	}

	outcomes, err := tui.Run(a.ledger)
	for _, o := range outcomes {
		status := logging.StatusSuccess
		if o.Status == backup.StatusFailed {
			status = logging.StatusFail
		}
		a.actions.Record(logging.Action{
			Input:   "backups",
			Intent:  "ROLLBACK",
			Command: "ROLLBACK",
			Status:  status,
			Message: o.Message,
		})
		fmt.Fprintln(out, o.Message)
	}
	if err != nil {
		return fmt.Errorf("backup browser failed: %w", err)
	}
	return nil
}

func printBackups(w io.Writer, entries []backup.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No backups found.")
		return
	}
	fmt.Fprintf(w, "%d backup(s), newest first:\n", len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		fmt.Fprintf(w, "  %s  %-24s %s\n", e.Timestamp.Format("2006-01-02 15:04:05"), e.Filename, e.OriginalPath)
	}
}

// getPluginsCommand returns the plugins command
func (c *cli) getPluginsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "plugins",
		Short: "List loaded plugins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := c.app
			out := cmd.OutOrStdout()

			for _, p := range a.registry.Plugins() {
				names := make([]string, 0, len(p.Intents()))
				for _, in := range p.Intents() {
					names = append(names, in.String())
				}
				fmt.Fprintf(out, "%s - %s\n    intents: %s\n", p.Name(), p.Description(), strings.Join(names, ", "))
			}
			for _, cf := range a.registry.Conflicts() {
				fmt.Fprintf(out, "conflict: %s kept by %s, ignored from %s\n", cf.Intent, cf.Kept, cf.Lost)
			}

			if !a.cfg.Plugins.Enabled {
				fmt.Fprintln(out, "Plugin directory disabled; builtins only.")
				return nil
			}
			_, errs := plugin.Discover(a.cfg.Plugins.Dir)
			for _, e := range errs {
				fmt.Fprintf(out, "skipped: %v\n", e)
			}
			return nil
		},
	}
}
