// Copyright 2026 The Capucosmetic Authors
// SPDX-License-Identifier: Apache-2.0

package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/capucosmetics/capucosmetic/lib/archive"
	"github.com/capucosmetics/capucosmetic/lib/builderr"
	"github.com/capucosmetics/capucosmetic/lib/bundler"
	"github.com/capucosmetics/capucosmetic/lib/clock"
	"github.com/capucosmetics/capucosmetic/lib/cosmetic"
	"github.com/capucosmetics/capucosmetic/lib/staging"
)

// diagnoser is implemented by errors that carry extra report lines,
// such as [*bundler.Failure].
type diagnoser interface {
	Diagnostics() []string
}

// Builder runs one packaging build. Create it with [New]; it cannot be
// reused once [Builder.Run] has been called.
type Builder struct {
	options Options
	adapter *bundler.Adapter
	logger  *slog.Logger
	clock   clock.Clock

	used   atomic.Bool
	state  State
	result *Result
}

// New returns a Builder that compiles with compiler. A nil logger
// discards log output; a nil clock uses the real clock.
func New(options Options, compiler bundler.Compiler, logger *slog.Logger, clk clock.Clock) *Builder {
	if compiler == nil {
		panic("build.New: compiler is nil")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if clk == nil {
		clk = clock.Real()
	}
	return &Builder{
		options: options,
		adapter: bundler.NewAdapter(compiler, logger),
		logger:  logger,
		clock:   clk,
	}
}

// State returns the builder's current state.
func (b *Builder) State() State {
	return b.state
}

// Run packages asset and metadata into <OutputDir>/<name>.capucosmetic
// and returns the terminal report. Failures are reported through the
// Result, never as a panic; calling Run a second time panics.
func (b *Builder) Run(ctx context.Context, asset bundler.Asset, metadata cosmetic.Metadata) *Result {
	if !b.used.CompareAndSwap(false, true) {
		panic("build: Builder.Run called more than once")
	}
	b.result = &Result{Started: b.clock.Now(), Trace: []State{StateIdle}}

	if err := b.validate(asset, metadata); err != nil {
		b.logger.Warn("build rejected", "error", err)
		b.recordFailure(err)
		b.transition(StateFailed)
		return b.finish()
	}

	b.logger.Info("build started",
		"name", metadata.Name,
		"bundle", b.options.BundleName,
		"target", string(b.options.Target),
	)

	b.transition(StateStaging)
	lock, err := staging.Acquire(b.options.StagingDir)
	if err != nil {
		return b.cleanup(nil, nil, err)
	}
	area, err := staging.Prepare(b.options.StagingDir)
	if err != nil {
		return b.cleanup(nil, lock, err)
	}
	return b.cleanup(area, lock, b.pipeline(ctx, area, asset, metadata))
}

func (b *Builder) validate(asset bundler.Asset, metadata cosmetic.Metadata) error {
	if asset == nil {
		return builderr.Validation("no source asset given")
	}
	if err := metadata.Validate(); err != nil {
		return err
	}
	if err := b.options.Validate(); err != nil {
		return err
	}
	if located, ok := asset.(interface{ Path() string }); ok {
		assetPath, err := filepath.Abs(located.Path())
		if err != nil {
			return builderr.Validation("resolving source asset %q: %v", located.Path(), err)
		}
		stagingDir, err := filepath.Abs(b.options.StagingDir)
		if err != nil {
			return builderr.Validation("resolving staging directory %q: %v", b.options.StagingDir, err)
		}
		if isWithin(stagingDir, assetPath) {
			return builderr.Validation("source asset %q is inside staging directory %q", assetPath, stagingDir)
		}
	}
	return nil
}

// pipeline runs the stages between Staging and CleaningUp. It returns
// the first error; the caller owns cleanup.
func (b *Builder) pipeline(ctx context.Context, area *staging.Area, asset bundler.Asset, metadata cosmetic.Metadata) error {
	sourcePath := area.SourcePath(b.options.BundleName)
	size, err := bundler.Stage(asset, sourcePath)
	if err != nil {
		return err
	}
	b.logger.Debug("source asset staged", "asset", asset.Name(), "path", sourcePath, "bytes", size)

	b.transition(StateCompiling)
	artifactPath, err := b.adapter.Compile(ctx, sourcePath, b.options.BundleName, area.BundleDir(), b.options.Target)
	if err != nil {
		return err
	}

	b.transition(StateSerializingMetadata)
	encoded, err := cosmetic.Marshal(metadata)
	if err != nil {
		return err
	}
	if err := os.WriteFile(area.MetadataPath(), encoded, 0o644); err != nil {
		return builderr.Wrap(builderr.KindIO, err, "writing metadata")
	}

	b.transition(StateAssembling)
	if err := os.MkdirAll(b.options.OutputDir, 0o755); err != nil {
		return builderr.Wrap(builderr.KindIO, err, "creating output directory")
	}
	archivePath := filepath.Join(b.options.OutputDir, metadata.FileName())
	entries := []archive.Entry{
		{Name: b.options.BundleName, Path: artifactPath},
		{Name: cosmetic.MetadataEntryName, Path: area.MetadataPath()},
	}
	if err := archive.Assemble(entries, archivePath); err != nil {
		return err
	}

	b.transition(StateVerifying)
	manifest, err := archive.Verify(archivePath, entries)
	if err != nil {
		// An archive that failed verification must not be mistaken
		// for a good one.
		if removeErr := os.Remove(archivePath); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
			b.warn("removing unverified archive", removeErr)
		}
		return err
	}

	b.result.ArchivePath = archivePath
	b.result.Manifest = &manifest
	return nil
}

// cleanup moves to CleaningUp, tears down whatever was set up and
// settles the verdict from failure.
func (b *Builder) cleanup(area *staging.Area, lock *staging.Lock, failure error) *Result {
	if failure != nil {
		b.recordFailure(failure)
	}
	b.transition(StateCleaningUp)

	if area != nil {
		if err := area.Teardown(); err != nil {
			b.warn("removing staging area", err)
		}
	}
	if lock != nil {
		if err := lock.Release(); err != nil {
			b.warn("releasing staging lock", err)
		}
	}

	if failure != nil {
		b.transition(StateFailed)
		b.logger.Error("build failed",
			"kind", b.result.Kind.String(),
			"stage", b.result.Stage.String(),
			"error", failure,
		)
	} else {
		b.transition(StateSucceeded)
		b.logger.Info("build succeeded", "archive", b.result.ArchivePath)
	}
	return b.finish()
}

func (b *Builder) recordFailure(err error) {
	b.result.Err = err
	b.result.Kind = builderr.KindOf(err)
	b.result.Error = err.Error()
	b.result.Stage = b.state
	if b.result.Kind != builderr.KindCompilation {
		return
	}
	var withDiagnostics diagnoser
	if errors.As(err, &withDiagnostics) {
		b.result.Diagnostics = withDiagnostics.Diagnostics()
	}
}

func (b *Builder) warn(action string, err error) {
	message := fmt.Sprintf("%s: %v", action, err)
	b.logger.Warn("cleanup problem", "action", action, "error", err)
	b.result.Warnings = append(b.result.Warnings, message)
}

func (b *Builder) transition(to State) {
	if !isAllowedTransition(b.state, to) {
		panic(fmt.Sprintf("build: disallowed transition %s -> %s", b.state, to))
	}
	b.logger.Debug("build state", "from", b.state.String(), "to", to.String())
	b.state = to
	b.result.Trace = append(b.result.Trace, to)
}

func (b *Builder) finish() *Result {
	b.result.State = b.state
	b.result.Finished = b.clock.Now()
	return b.result
}
