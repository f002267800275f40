package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
)

// Command is a single crmctl verb.
type Command struct {
	Name        string
	Description string
	Usage       string
	Examples    []string
	Run         func(args []string) error
}

func (c *Command) PrintUsage(w io.Writer) {
	fmt.Fprintf(w, "%s\n\n", c.Description)
	fmt.Fprintf(w, "USAGE:\n    %s\n\n", c.Usage)
	if len(c.Examples) > 0 {
		fmt.Fprintf(w, "EXAMPLES:\n")
		for _, example := range c.Examples {
			fmt.Fprintf(w, "    %s\n", example)
		}
	}
}

type CommandRegistry struct {
	commands map[string]*Command
	order    []string
}

func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{commands: make(map[string]*Command)}
}

func (r *CommandRegistry) Register(cmd *Command) {
	if _, exists := r.commands[cmd.Name]; !exists {
		r.order = append(r.order, cmd.Name)
	}
	r.commands[cmd.Name] = cmd
}

// Execute runs the command named by args[0].
func (r *CommandRegistry) Execute(args []string) error {
	if len(args) < 1 {
		r.PrintHelp(os.Stdout)
		return fmt.Errorf("no command specified")
	}

	switch args[0] {
	case "help", "-h", "--help":
		r.PrintHelp(os.Stdout)
		return nil
	}

	cmd, ok := r.commands[args[0]]
	if !ok {
		r.PrintHelp(os.Stderr)
		return fmt.Errorf("unknown command: %s", args[0])
	}
	if len(args) > 1 && (args[1] == "-h" || args[1] == "--help" || args[1] == "help") {
		cmd.PrintUsage(os.Stdout)
		return nil
	}
	return cmd.Run(args[1:])
}

func (r *CommandRegistry) PrintHelp(w io.Writer) {
	fmt.Fprintln(w, "crmctl - command-line client for the CRM API")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "USAGE:")
	fmt.Fprintln(w, "    crmctl [--server URL] [--idle 30m] <command> [arguments]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "COMMANDS:")
	for _, name := range r.order {
		fmt.Fprintf(w, "    %-12s %s\n", name, r.commands[name].Description)
	}
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'crmctl <command> --help' for more information on a command.")
}

// newFlagSet creates a flag set that reports parse errors instead of exiting.
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

// newTable returns a tab-aligned writer; callers must Flush.
func newTable(w io.Writer, headers ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, h := range headers {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, h)
	}
	fmt.Fprintln(tw)
	return tw
}
