// Copyright 2026 The Capucosmetic Authors
// SPDX-License-Identifier: Apache-2.0

// Capucosmetic packages custom cosmetics into .capucosmetic archives.
//
// See "capucosmetic --help" for the command list.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/capucosmetics/capucosmetic/cmd/capucosmetic/commands"
)

func main() {
	if err := run(); err != nil {
		code, quiet := exitStatus(err)
		if !quiet {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(code)
	}
}

// exitStatus maps an error to the process exit code. Errors carrying
// their own exit code are quiet: a failed build has already printed
// its report, so no "error:" line is added under it.
func exitStatus(err error) (code int, quiet bool) {
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		return coder.ExitCode(), true
	}
	return 1, false
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return commands.Root(os.Stdout, os.Stderr).Execute(ctx, os.Args[1:])
}
