// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"
)

// Command is one node of a command tree. A node either dispatches to
// Subcommands by the first positional argument or runs Run with its
// own flags parsed.
type Command struct {
	// Name is what the user types to select the command.
	Name string
	// Summary is the one-line description in the parent's listing.
	Summary string
	// Description is the longer text of the command's own help.
	Description string
	// Usage overrides the synthesized usage line.
	Usage string
	// Examples follow the flags in help output.
	Examples []Example

	// Flags builds the command's flag set. It is called on every parse
	// so each parse starts from fresh defaults; nil means no flags.
	Flags func() *pflag.FlagSet

	Subcommands []*Command

	// Run receives the positional arguments left after flag parsing.
	Run func(args []string) error

	// HelpOutput receives help text. Subcommands inherit it; the
	// default is stderr.
	HelpOutput io.Writer

	parent *Command
}

// Example is one annotated command line in help output.
type Example struct {
	Description string
	Command     string
}

// Execute runs the command tree against args (without the program
// name).
func (c *Command) Execute(args []string) error {
	if len(args) > 0 && isHelpFlag(args[0]) {
		c.PrintHelp(c.helpOutput())
		return nil
	}
	if len(c.Subcommands) == 0 {
		return c.invoke(args)
	}

	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		if c.Run != nil {
			return c.invoke(args)
		}
		c.PrintHelp(c.helpOutput())
		if len(args) == 0 {
			return errors.New("subcommand required")
		}
		return fmt.Errorf("subcommand required before flag %q", args[0])
	}

	for _, sub := range c.Subcommands {
		if sub.Name == args[0] {
			sub.parent = c
			return sub.Execute(args[1:])
		}
	}
	return c.unknownCommand(args[0])
}

// invoke parses the command's flags and calls Run.
func (c *Command) invoke(args []string) error {
	if c.Flags != nil {
		flagSet := c.Flags()
		// Errors are reported by flagError, not by pflag's printer.
		flagSet.SetOutput(io.Discard)
		if err := flagSet.Parse(args); err != nil {
			if errors.Is(err, pflag.ErrHelp) {
				c.PrintHelp(c.helpOutput())
				return nil
			}
			return c.flagError(err, args)
		}
		args = flagSet.Args()
	}
	if c.Run == nil {
		c.PrintHelp(c.helpOutput())
		return fmt.Errorf("%s: nothing to run", c.fullName())
	}
	return c.Run(args)
}

func (c *Command) unknownCommand(name string) error {
	names := make([]string, len(c.Subcommands))
	for index, sub := range c.Subcommands {
		names[index] = sub.Name
	}
	if suggestion, ok := closest(name, names); ok {
		return fmt.Errorf("unknown command %q (did you mean %q?)\n\nRun '%s --help' for usage.",
			name, suggestion, c.fullName())
	}
	return fmt.Errorf("unknown command %q\n\nRun '%s --help' for usage.", name, c.fullName())
}

func (c *Command) flagError(err error, args []string) error {
	message := err.Error()
	if strings.Contains(message, "unknown") {
		// The failed parse may have consumed state; suggest against a
		// fresh set.
		if suggestion, ok := closestFlag(args, c.Flags()); ok {
			message += " (did you mean " + suggestion + "?)"
		}
	}
	return fmt.Errorf("%s\n\nRun '%s --help' for usage.", message, c.fullName())
}

// PrintHelp writes the command's help to w.
func (c *Command) PrintHelp(w io.Writer) {
	name := c.fullName()

	switch {
	case c.Description != "":
		fmt.Fprintf(w, "%s\n\n", c.Description)
	case c.Summary != "":
		fmt.Fprintf(w, "%s\n\n", c.Summary)
	}

	usage := c.Usage
	if usage == "" {
		usage = name + " [flags]"
		if len(c.Subcommands) > 0 {
			usage = name + " <command> [flags]"
		}
	}
	fmt.Fprintf(w, "Usage:\n  %s\n", usage)

	if len(c.Subcommands) > 0 {
		fmt.Fprint(w, "\nCommands:\n")
		table := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
		for _, sub := range c.Subcommands {
			fmt.Fprintf(table, "  %s\t%s\n", sub.Name, sub.Summary)
		}
		table.Flush()
	}

	if c.Flags != nil {
		if defaults := c.Flags().FlagUsages(); defaults != "" {
			fmt.Fprintf(w, "\nFlags:\n%s", defaults)
		}
	}

	if len(c.Examples) > 0 {
		fmt.Fprint(w, "\nExamples:\n")
		for index, example := range c.Examples {
			if index > 0 {
				fmt.Fprintln(w)
			}
			if example.Description != "" {
				fmt.Fprintf(w, "  # %s\n", example.Description)
			}
			fmt.Fprintf(w, "  %s\n", example.Command)
		}
	}

	if len(c.Subcommands) > 0 {
		fmt.Fprintf(w, "\nRun '%s <command> --help' for more information on a command.\n", name)
	}
}

// fullName is the command path from the root, e.g. "masa-relayctl users".
func (c *Command) fullName() string {
	if c.parent == nil {
		return c.Name
	}
	return c.parent.fullName() + " " + c.Name
}

func (c *Command) helpOutput() io.Writer {
	for command := c; command != nil; command = command.parent {
		if command.HelpOutput != nil {
			return command.HelpOutput
		}
	}
	return os.Stderr
}

func isHelpFlag(arg string) bool {
	switch arg {
	case "-h", "--help", "help":
		return true
	}
	return false
}
