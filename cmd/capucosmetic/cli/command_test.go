// Copyright 2026 The Capucosmetic Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestCommand_Execute_DispatchesToSubcommand(t *testing.T) {
	var called string
	var receivedArgs []string

	root := &Command{
		Name: "capucosmetic",
		Subcommands: []*Command{
			{Name: "version", Run: func(_ context.Context, args []string) error { called = "version"; return nil }},
			{
				Name: "metadata",
				Subcommands: []*Command{
					{
						Name: "init",
						Run: func(_ context.Context, args []string) error {
							called = "metadata init"
							receivedArgs = args
							return nil
						},
					},
				},
			},
		},
	}

	if err := root.Execute(context.Background(), []string{"metadata", "init", "hat.jsonc"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "metadata init" {
		t.Errorf("dispatched to %q, want %q", called, "metadata init")
	}
	if len(receivedArgs) != 1 || receivedArgs[0] != "hat.jsonc" {
		t.Errorf("args = %v, want [hat.jsonc]", receivedArgs)
	}
}

func TestCommand_Execute_FlagParsing(t *testing.T) {
	var output string
	var archive string

	command := &Command{
		Name: "build",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("build", pflag.ContinueOnError)
			flagSet.StringVar(&output, "output", "Builds/Capucosmetics", "output directory")
			return flagSet
		},
		Run: func(_ context.Context, args []string) error {
			if len(args) > 0 {
				archive = args[0]
			}
			return nil
		},
	}

	if err := command.Execute(context.Background(), []string{"--output", "/tmp/out", "hat"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if output != "/tmp/out" {
		t.Errorf("output = %q, want %q", output, "/tmp/out")
	}
	if archive != "hat" {
		t.Errorf("positional = %q, want %q", archive, "hat")
	}
}

func TestCommand_FlagChanged(t *testing.T) {
	var name, author string
	var changed []string

	command := &Command{Name: "build"}
	command.Flags = func() *pflag.FlagSet {
		flagSet := pflag.NewFlagSet("build", pflag.ContinueOnError)
		flagSet.StringVar(&name, "name", "default", "")
		flagSet.StringVar(&author, "author", "default", "")
		return flagSet
	}
	command.Run = func(context.Context, []string) error {
		for _, flag := range []string{"name", "author"} {
			if command.FlagChanged(flag) {
				changed = append(changed, flag)
			}
		}
		return nil
	}

	if err := command.Execute(context.Background(), []string{"--author=default"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if len(changed) != 1 || changed[0] != "author" {
		t.Errorf("changed = %v, want [author] even when set to its default", changed)
	}
}

func TestCommand_Execute_UnknownFlagSuggestion(t *testing.T) {
	command := &Command{
		Name: "build",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("build", pflag.ContinueOnError)
			flagSet.String("metadata", "", "metadata file")
			flagSet.String("output", "", "output directory")
			return flagSet
		},
		Run: func(context.Context, []string) error { return nil },
	}

	err := command.Execute(context.Background(), []string{"--metdata", "hat.jsonc"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown flag")
	}
	for _, want := range []string{"metdata", "did you mean --metadata", "--help"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error = %q, want it to contain %q", err, want)
		}
	}

	err = command.Execute(context.Background(), []string{"--zzzzzzzzzz"})
	if err == nil || strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error = %v, want no suggestion for a distant flag", err)
	}
}

func TestCommand_Execute_UnknownSubcommand(t *testing.T) {
	root := &Command{
		Name:        "capucosmetic",
		Subcommands: []*Command{{Name: "build"}, {Name: "inspect"}, {Name: "version"}},
	}

	err := root.Execute(context.Background(), []string{"biuld"})
	if err == nil || !strings.Contains(err.Error(), `did you mean "build"`) {
		t.Errorf("error = %v, want suggestion for build", err)
	}

	err = root.Execute(context.Background(), []string{"zzzzzzz"})
	if err == nil || strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error = %v, want no suggestion for distant input", err)
	}
}

func TestCommand_Execute_HelpAndMissingSubcommand(t *testing.T) {
	root := &Command{
		Name:        "capucosmetic",
		Subcommands: []*Command{{Name: "build", Summary: "Package a cosmetic"}},
	}
	for _, helpArg := range []string{"-h", "--help", "help"} {
		if err := root.Execute(context.Background(), []string{helpArg}); err != nil {
			t.Errorf("Execute(%q) error: %v", helpArg, err)
		}
	}
	if err := root.Execute(context.Background(), nil); err == nil || !strings.Contains(err.Error(), "subcommand required") {
		t.Errorf("Execute() = %v, want subcommand required", err)
	}
}

func TestCommand_PrintHelp(t *testing.T) {
	var verbose bool
	root := &Command{Name: "capucosmetic"}
	command := &Command{
		Name:        "inspect",
		Description: "Inspect an archive.",
		Usage:       "capucosmetic inspect <archive>",
		Examples:    []Example{{Description: "Show entries", Command: "capucosmetic inspect hat.capucosmetic"}},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("inspect", pflag.ContinueOnError)
			flagSet.BoolVar(&verbose, "verbose", false, "print more")
			return flagSet
		},
		parent: root,
	}

	var buffer bytes.Buffer
	command.PrintHelp(&buffer)
	help := buffer.String()
	for _, want := range []string{"Inspect an archive.", "Usage:\n  capucosmetic inspect <archive>", "--verbose", "# Show entries"} {
		if !strings.Contains(help, want) {
			t.Errorf("help missing %q:\n%s", want, help)
		}
	}
}

func TestExitError(t *testing.T) {
	var err error = &ExitError{Code: 3}
	coder, ok := err.(interface{ ExitCode() int })
	if !ok || coder.ExitCode() != 3 {
		t.Errorf("ExitError does not report its code")
	}
	if err.Error() != "exit code 3" {
		t.Errorf("Error() = %q", err.Error())
	}
}
