// Copyright 2026 The Capucosmetic Authors
// SPDX-License-Identifier: Apache-2.0

package build

import (
	"time"

	"github.com/capucosmetics/capucosmetic/lib/archive"
	"github.com/capucosmetics/capucosmetic/lib/builderr"
)

// Result is the terminal report of one build. It is JSON-serializable
// for machine consumers.
type Result struct {
	// State is StateSucceeded or StateFailed.
	State State `json:"state"`

	// ArchivePath is the written archive. Set only on success.
	ArchivePath string `json:"archive_path,omitempty"`

	// Manifest describes the verified archive. Set only on success.
	Manifest *archive.Manifest `json:"manifest,omitempty"`

	// Kind classifies the failure.
	Kind builderr.Kind `json:"kind,omitempty"`

	// Error is the failure message.
	Error string `json:"error,omitempty"`

	// Stage is the state the build was in when it failed.
	Stage State `json:"stage,omitempty"`

	// Diagnostics holds the bundle output listing and compiler output
	// for compilation failures.
	Diagnostics []string `json:"diagnostics,omitempty"`

	// Warnings collects problems that did not change the verdict,
	// such as a staging directory that could not be removed.
	Warnings []string `json:"warnings,omitempty"`

	// Trace lists every state the build passed through, in order.
	Trace []State `json:"trace"`

	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`

	// Err is the originating error, for callers that want errors.Is
	// or errors.As against it.
	Err error `json:"-"`
}

// Succeeded reports whether the build produced a verified archive.
func (r *Result) Succeeded() bool {
	return r.State == StateSucceeded
}

// Duration is the wall time of the build.
func (r *Result) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}
