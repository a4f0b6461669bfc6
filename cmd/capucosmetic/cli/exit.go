// Copyright 2026 The Capucosmetic Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// ExitError makes the process exit with Code without printing an
// "error:" line. Commands return it after they have already reported
// the outcome themselves, such as a failed build whose report is on
// screen.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode returns the exit code. main checks for this method on
// returned errors.
func (e *ExitError) ExitCode() int {
	return e.Code
}
