package terminal

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Lin-Jiong-HDU/nlsh/internal/command"
	"github.com/Lin-Jiong-HDU/nlsh/internal/core"
	"github.com/Lin-Jiong-HDU/nlsh/internal/core/backup"
	"github.com/Lin-Jiong-HDU/nlsh/internal/intent"
	"github.com/Lin-Jiong-HDU/nlsh/internal/session"
)

// BlockedMessage is shown when the safety gate refuses a target.
const BlockedMessage = "Action blocked by strict safety rules (system path protections)."

// Console is the terminal side of the engine: it asks the questions the
// pipeline needs answered and prints the outcome of each request.
type Console struct {
	out      io.Writer
	lines    LineReader
	markdown *Renderer
	dialect  command.Dialect
}

// NewConsole creates a console writing to out and reading answers from
// lines. markdown may be nil, in which case AI answers are shown as-is.
func NewConsole(out io.Writer, lines LineReader, markdown *Renderer, d command.Dialect) *Console {
	if out == nil {
		out = os.Stdout
	}
	return &Console{out: out, lines: lines, markdown: markdown, dialect: d}
}

// Lines returns the console's line reader.
func (c *Console) Lines() LineReader {
	return c.lines
}

func (c *Console) Info(msg string) {
	fmt.Fprintf(c.out, "%s %s\n", infoStyle.Render("ℹ Info:"), msg)
}

func (c *Console) Success(msg string) {
	fmt.Fprintf(c.out, "%s %s\n", successStyle.Render("✔ Success:"), msg)
}

func (c *Console) Warning(msg string) {
	fmt.Fprintf(c.out, "%s %s\n", warningStyle.Render("⚠ Warning:"), msg)
}

func (c *Console) Error(msg string) {
	fmt.Fprintf(c.out, "%s %s\n", errorStyle.Render("✖ Error:"), msg)
}

// Thinking implements core.Reporter.
func (c *Console) Thinking() {
	fmt.Fprintln(c.out, thinkingStyle.Render("AI is thinking..."))
}

// Executing implements core.Reporter.
func (c *Console) Executing(cmd string) {
	fmt.Fprintf(c.out, "%s %s\n", commentStyle.Render("Executing:"), commandStyle.Render(cmd))
}

// Welcome prints the session banner.
func (c *Console) Welcome(mode session.Mode) {
	body := strings.Join([]string{
		infoStyle.Render("Welcome to nlsh, the natural-language shell."),
		outputStyle.Render("Type 'help' or anything in natural language to get started."),
		commentStyle.Render(fmt.Sprintf("Mode: %s  |  OS: %s", strings.ToUpper(mode.String()), strings.ToUpper(c.dialect.String()))),
	}, "\n")
	fmt.Fprintln(c.out, panel(" nlsh ", body, colorPurple))
	fmt.Fprintln(c.out)
}

// Help prints what the shell understands.
func (c *Console) Help() {
	body := strings.Join([]string{
		"Ask in plain words, or type any shell command.",
		"",
		optionStyle.Render("  create folder named reports") + "   make a directory",
		optionStyle.Render("  delete file notes.txt") + "         remove a file (backed up first)",
		optionStyle.Render("  undo") + "                          restore the last deleted file",
		optionStyle.Render("  check ram") + "                     memory, cpu, disk and ip reports",
		optionStyle.Render("  explain grep") + "                  describe a command",
		optionStyle.Render("  teach me pipes") + "                a short lesson",
		optionStyle.Render("  mode expert") + "                   beginner | expert | safe",
		optionStyle.Render("  exit") + "                          leave the shell",
	}, "\n")
	fmt.Fprintln(c.out, panel("Help", body, colorCyan))
}

// Prompt returns the REPL prompt for mode.
func (c *Console) Prompt(mode session.Mode) string {
	return promptStyle(mode).Render("➜ "+strings.ToUpper(mode.String())) + " "
}

// Explanation prints an answer to "explain ...".
func (c *Console) Explanation(text string) {
	c.answer("📖 Explanation", text, colorCyan)
}

// Lesson prints an answer to "teach me ...".
func (c *Console) Lesson(text string) {
	c.answer("🎓 AI Tutor", text, colorYellow)
}

func (c *Console) answer(title, text string, border lipgloss.Color) {
	if strings.TrimSpace(text) == "" {
		c.Warning("AI returned no answer. Is the backend running?")
		return
	}
	fmt.Fprintln(c.out, panel(title, c.markdown.Render(text), border))
}

// Confirm implements security.Prompter. Anything but y/yes declines;
// unrecognised answers are asked again.
func (c *Console) Confirm(question string, danger bool) (bool, error) {
	style := warningStyle
	if danger {
		style = errorStyle
	}
	fmt.Fprintln(c.out, style.Render(question))

	for {
		answer, err := c.lines.ReadLine("[y/n]: ")
		if err == io.EOF {
			return false, nil
		}
		if err != nil {
			return false, err
		}

		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true, nil
		case "n", "no", "":
			return false, nil
		default:
			fmt.Fprintln(c.out, "Please enter y or n.")
		}
	}
}

// Choose implements interpret.Chooser.
func (c *Console) Choose(options []string) (string, error) {
	c.Info("Did you mean:")
	for i, opt := range options {
		fmt.Fprintf(c.out, "%s %s\n", optionStyle.Render(fmt.Sprintf("%d)", i+1)), opt)
	}
	line, err := c.lines.ReadLine("> ")
	if err == io.EOF {
		return "", nil
	}
	return line, err
}

// Show prints the outcome of one request.
func (c *Console) Show(r *core.Report, mode session.Mode) {
	if r == nil {
		return
	}
	if r.FromAI && mode.ShowInsight() {
		c.reading(r)
	}
	if r.BackedUp {
		name, _ := r.Entities.Get(intent.FieldName)
		c.Success(fmt.Sprintf("📦 Backup created for %s", name))
	}
	if r.BackupFailed {
		c.Warning("Backup failed; proceeding without a backup.")
	}

	switch r.Status {
	case core.StatusExecuted, core.StatusFailed:
		c.output(r)
	case core.StatusFinal:
		c.Success(r.Message)
	case core.StatusRejected, core.StatusAmbiguous, core.StatusAborted, core.StatusDeclined:
		c.Warning(r.Message)
	case core.StatusBlocked:
		c.Error(BlockedMessage)
		if r.Message != "" {
			fmt.Fprintln(c.out, commentStyle.Render(r.Message))
		}
	case core.StatusUnmapped:
		c.Error(r.Message)
	case core.StatusRolledBack:
		c.restored(r.Restore)
	}
}

func (c *Console) reading(r *core.Report) {
	line := fmt.Sprintf("AI read this as %s (confidence %.2f)", r.Intent, r.Confidence)
	if r.Choice > 0 {
		line = fmt.Sprintf("You picked option %d: %s", r.Choice, r.Intent)
	}
	fmt.Fprintln(c.out, thinkingStyle.Render(line))
}

func (c *Console) output(r *core.Report) {
	if r.Stdout != "" {
		if formatted, ok := FormatOutput(r.Intent, r.Stdout, c.dialect); ok && !r.Raw {
			fmt.Fprintln(c.out, formatted)
		} else {
			fmt.Fprintln(c.out, strings.TrimRight(r.Stdout, "\n"))
		}
	}
	if r.Stderr == "" {
		return
	}
	c.Error(strings.TrimRight(r.Stderr, "\n"))
	if r.Explanation != "" {
		fmt.Fprintln(c.out, panel("🧠 AI Insight", c.markdown.Render(r.Explanation), colorPink))
	}
}

func (c *Console) restored(out *backup.Outcome) {
	switch {
	case out == nil:
		c.Warning("No backups found.")
	case out.OK():
		c.Success(out.Message)
	case out.Status == backup.StatusEmpty:
		c.Warning(out.Message)
	default:
		c.Error(out.Message)
	}
}
