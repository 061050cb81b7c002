package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// cli carries the flags and the lazily built app across commands.
type cli struct {
	flags flags
	app   *app
}

func newRootCommand(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "nlsh",
		Short: "Natural-language shell",
		Long: `nlsh - a shell that understands plain English.

Type what you want ("create folder named reports", "check ram", "undo")
or any shell command. Unrecognized requests are interpreted by a local
or remote language model.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(c.flags)
			if err != nil {
				return err
			}
			c.app = a
			return nil
		},
		RunE: c.runShell,
	}

	root.PersistentFlags().StringVarP(&c.flags.mode, "mode", "m", "", "session mode: beginner, expert or safe")
	root.PersistentFlags().StringVarP(&c.flags.dialect, "dialect", "d", "", "shell dialect: auto, linux or windows")
	root.PersistentFlags().BoolVarP(&c.flags.verbose, "verbose", "v", false, "debug-level diagnostic log")

	root.AddCommand(
		c.getRunCommand(),
		c.getUndoCommand(),
		c.getBackupsCommand(),
		c.getPluginsCommand(),
	)
	return root
}

// execute runs nlsh with args and releases everything it opened.
func execute(args []string, stdin io.Reader, stdout io.Writer) error {
	c := &cli{}
	root := newRootCommand(c)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stdout)

	err := root.Execute()
	c.app.Close()
	return err
}

func main() {
	if err := execute(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
