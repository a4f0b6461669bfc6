// Copyright 2026 The Capucosmetic Authors
// SPDX-License-Identifier: Apache-2.0

package build

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/capucosmetics/capucosmetic/lib/archive"
	"github.com/capucosmetics/capucosmetic/lib/builderr"
	"github.com/capucosmetics/capucosmetic/lib/bundler"
	"github.com/capucosmetics/capucosmetic/lib/clock"
	"github.com/capucosmetics/capucosmetic/lib/cosmetic"
	"github.com/capucosmetics/capucosmetic/lib/staging"
	"github.com/capucosmetics/capucosmetic/lib/testutil"
)

func topHat() cosmetic.Metadata {
	return cosmetic.Metadata{
		Name:            "Top Hat",
		Author:          "monke",
		Version:         1,
		Description:     "A fancy hat",
		SyncToLeftHand:  false,
		SyncToRightHand: false,
	}
}

// testOptions places staging and output under a fresh temp directory.
func testOptions(t *testing.T) Options {
	t.Helper()
	root := t.TempDir()
	options := DefaultOptions()
	options.StagingDir = filepath.Join(root, "Temp", "capucosmetic")
	options.OutputDir = filepath.Join(root, "Builds", "Capucosmetics")
	return options
}

func run(t *testing.T, options Options, compiler bundler.Compiler, metadata cosmetic.Metadata) *Result {
	t.Helper()
	builder := New(options, compiler, nil, nil)
	return builder.Run(context.Background(), bundler.BytesAsset("Top Hat", []byte("hierarchy")), metadata)
}

func requireAbsent(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("%s exists after the build (stat error %v)", path, err)
	}
}

func TestRunTopHat(t *testing.T) {
	options := testOptions(t)
	compiler := &bundler.FakeCompiler{ArtifactSize: 4096}

	result := run(t, options, compiler, topHat())
	if !result.Succeeded() {
		t.Fatalf("build failed: %s %s", result.Kind, result.Error)
	}

	wantPath := filepath.Join(options.OutputDir, "Top Hat.capucosmetic")
	if result.ArchivePath != wantPath {
		t.Errorf("ArchivePath = %q, want %q", result.ArchivePath, wantPath)
	}
	manifest, err := archive.Inspect(wantPath)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if got, want := manifest.Names(), []string{"capucosmetic", "metadata.json"}; !slices.Equal(got, want) {
		t.Errorf("entries = %q, want %q", got, want)
	}
	if manifest.Entries[0].Size != 4096 {
		t.Errorf("bundle entry size = %d, want 4096", manifest.Entries[0].Size)
	}

	metadata, err := archive.ReadEntry(wantPath, "metadata.json")
	if err != nil {
		t.Fatalf("ReadEntry: %v", err)
	}
	want := "{\n" +
		"    \"name\": \"Top Hat\",\n" +
		"    \"author\": \"monke\",\n" +
		"    \"version\": 1,\n" +
		"    \"description\": \"A fancy hat\",\n" +
		"    \"syncToLeftHand\": false,\n" +
		"    \"syncToRightHand\": false\n" +
		"}"
	if string(metadata) != want {
		t.Errorf("metadata.json =\n%s\nwant\n%s", metadata, want)
	}

	bundle, err := archive.ReadEntry(wantPath, "capucosmetic")
	if err != nil {
		t.Fatalf("ReadEntry: %v", err)
	}
	if !bytes.Equal(bundle, bundler.FakeArtifact(4096)) {
		t.Error("bundle entry differs from the compiled artifact")
	}

	if result.Manifest == nil || len(result.Manifest.Entries) != 2 {
		t.Errorf("Manifest = %+v, want two verified entries", result.Manifest)
	}
	if result.Kind != builderr.KindNone || result.Error != "" || len(result.Warnings) != 0 {
		t.Errorf("unexpected failure fields: kind %q error %q warnings %q", result.Kind, result.Error, result.Warnings)
	}
	requireAbsent(t, options.StagingDir)
}

func TestRunTrace(t *testing.T) {
	result := run(t, testOptions(t), &bundler.FakeCompiler{ArtifactSize: 10}, topHat())
	want := []State{
		StateIdle, StateStaging, StateCompiling, StateSerializingMetadata,
		StateAssembling, StateVerifying, StateCleaningUp, StateSucceeded,
	}
	if !slices.Equal(result.Trace, want) {
		t.Errorf("Trace = %v, want %v", result.Trace, want)
	}
}

func TestRunSendsCompilerRequest(t *testing.T) {
	options := testOptions(t)
	options.BundleName = "tophat"
	options.Target = bundler.Android
	compiler := &bundler.FakeCompiler{ArtifactSize: 10}

	result := run(t, options, compiler, topHat())
	if !result.Succeeded() {
		t.Fatalf("build failed: %s", result.Error)
	}

	requests := compiler.Requests()
	if len(requests) != 1 {
		t.Fatalf("compiler called %d times, want 1", len(requests))
	}
	request := requests[0]
	if request.BundleName != "tophat" || request.Target != bundler.Android {
		t.Errorf("request = %+v", request)
	}
	if filepath.Base(request.Source) != "tophat.prefab" {
		t.Errorf("source = %q, want tophat.prefab", request.Source)
	}
	if request.OutputDir != filepath.Join(options.StagingDir, "bundle") {
		t.Errorf("output dir = %q", request.OutputDir)
	}
	if result.Manifest.Names()[0] != "tophat" {
		t.Errorf("bundle entry = %q, want tophat", result.Manifest.Names()[0])
	}
}

func TestRunValidationTouchesNothing(t *testing.T) {
	tests := []struct {
		name     string
		metadata func() cosmetic.Metadata
		options  func(*Options)
	}{
		{"empty name", func() cosmetic.Metadata { m := topHat(); m.Name = ""; return m }, nil},
		{"slash in name", func() cosmetic.Metadata { m := topHat(); m.Name = "hats/top"; return m }, nil},
		{"version zero", func() cosmetic.Metadata { m := topHat(); m.Version = 0; return m }, nil},
		{"name not utf-8", func() cosmetic.Metadata { m := topHat(); m.Name = "Hat\xff"; return m }, nil},
		{"bad bundle name", topHat, func(o *Options) { o.BundleName = ".." }},
		{"unknown target", topHat, func(o *Options) { o.Target = "Dreamcast" }},
		{"output inside staging", topHat, func(o *Options) { o.OutputDir = filepath.Join(o.StagingDir, "out") }},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			options := testOptions(t)
			if test.options != nil {
				test.options(&options)
			}
			compiler := &bundler.FakeCompiler{ArtifactSize: 10}

			result := run(t, options, compiler, test.metadata())
			if result.State != StateFailed || result.Kind != builderr.KindValidation {
				t.Fatalf("result = %s %s, want Failed validation", result.State, result.Kind)
			}
			if !slices.Equal(result.Trace, []State{StateIdle, StateFailed}) {
				t.Errorf("Trace = %v, want [Idle Failed]", result.Trace)
			}
			if len(compiler.Requests()) != 0 {
				t.Error("compiler was invoked for an invalid build")
			}
			requireAbsent(t, options.StagingDir)
			requireAbsent(t, options.StagingDir+staging.LockSuffix)
			requireAbsent(t, options.OutputDir)
		})
	}
}

func TestRunRefusesAssetInsideStaging(t *testing.T) {
	options := testOptions(t)
	assetPath := testutil.WriteFile(t, filepath.Join(options.StagingDir, "source", "Top Hat.prefab"), []byte("hierarchy"))
	compiler := &bundler.FakeCompiler{ArtifactSize: 10}
	builder := New(options, compiler, nil, nil)

	result := builder.Run(context.Background(), bundler.FileAsset(assetPath), topHat())
	if result.State != StateFailed || result.Kind != builderr.KindValidation {
		t.Fatalf("result = %s %s, want Failed validation", result.State, result.Kind)
	}
	if !strings.Contains(result.Error, "inside staging directory") {
		t.Errorf("Error = %q, want it to name the staging directory", result.Error)
	}
	if len(compiler.Requests()) != 0 {
		t.Error("compiler was invoked for an invalid build")
	}
	if !bytes.Equal(testutil.ReadFile(t, assetPath), []byte("hierarchy")) {
		t.Error("source asset was modified")
	}
}

func TestRunMissingArtifact(t *testing.T) {
	options := testOptions(t)
	compiler := &bundler.FakeCompiler{Omit: true, Extra: []string{"bundle.manifest"}}

	result := run(t, options, compiler, topHat())
	if result.State != StateFailed || result.Kind != builderr.KindCompilation {
		t.Fatalf("result = %s %s, want Failed compilation", result.State, result.Kind)
	}
	if result.Stage != StateCompiling {
		t.Errorf("Stage = %s, want Compiling", result.Stage)
	}
	if !slices.Contains(result.Diagnostics, "- bundle.manifest (9 bytes)") {
		t.Errorf("Diagnostics = %q, want the bundle output listing", result.Diagnostics)
	}
	if !strings.Contains(result.Error, "no artifact") {
		t.Errorf("Error = %q, want it to name the missing artifact", result.Error)
	}
	requireAbsent(t, options.StagingDir)
	requireAbsent(t, filepath.Join(options.OutputDir, "Top Hat.capucosmetic"))

	last := result.Trace[len(result.Trace)-2:]
	if !slices.Equal(last, []State{StateCleaningUp, StateFailed}) {
		t.Errorf("trace ends with %v, want [CleaningUp Failed]", last)
	}
}

func TestRunCompilerFailure(t *testing.T) {
	boom := errors.New("shader compiler crashed")
	compiler := &bundler.FakeCompiler{Err: boom, Output: "error CS1002: ; expected"}

	result := run(t, testOptions(t), compiler, topHat())
	if result.Kind != builderr.KindCompilation {
		t.Fatalf("Kind = %s, want compilation", result.Kind)
	}
	if !errors.Is(result.Err, boom) {
		t.Errorf("Err = %v, want it to wrap the compiler error", result.Err)
	}
	if !slices.Contains(result.Diagnostics, "error CS1002: ; expected") {
		t.Errorf("Diagnostics = %q, want compiler output", result.Diagnostics)
	}
}

func TestRunMissingAsset(t *testing.T) {
	options := testOptions(t)
	builder := New(options, &bundler.FakeCompiler{ArtifactSize: 10}, nil, nil)

	result := builder.Run(context.Background(), bundler.FileAsset(filepath.Join(t.TempDir(), "gone.prefab")), topHat())
	if result.Kind != builderr.KindIO || result.Stage != StateStaging {
		t.Errorf("result = %s at %s, want io at Staging", result.Kind, result.Stage)
	}
	if len(result.Diagnostics) != 0 {
		t.Errorf("Diagnostics = %q, want none outside compilation failures", result.Diagnostics)
	}
	requireAbsent(t, options.StagingDir)
}

func TestRunOutputDirectoryUnusable(t *testing.T) {
	options := testOptions(t)
	options.OutputDir = testutil.WriteFile(t, filepath.Join(t.TempDir(), "not-a-dir"), []byte("x"))

	result := run(t, options, &bundler.FakeCompiler{ArtifactSize: 10}, topHat())
	if result.Kind != builderr.KindIO || result.Stage != StateAssembling {
		t.Errorf("result = %s at %s, want io at Assembling", result.Kind, result.Stage)
	}
	requireAbsent(t, options.StagingDir)
}

// lockedOutput returns a compiler hook that leaves a file inside a
// read-only directory in the bundle output, so removing the staging
// area fails.
func lockedOutput(t *testing.T) func(bundler.Request) error {
	t.Helper()
	if os.Geteuid() == 0 {
		t.Skip("directory permissions do not restrict root")
	}
	return func(request bundler.Request) error {
		locked := filepath.Join(request.OutputDir, "locked")
		testutil.WriteFile(t, filepath.Join(locked, "shader.cache"), []byte("cache"))
		if err := os.Chmod(locked, 0o555); err != nil {
			return err
		}
		t.Cleanup(func() { os.Chmod(locked, 0o755) })
		return nil
	}
}

func TestRunTeardownFailureKeepsSuccess(t *testing.T) {
	options := testOptions(t)
	compiler := &bundler.FakeCompiler{ArtifactSize: 10, OnCompile: lockedOutput(t)}

	result := run(t, options, compiler, topHat())
	if result.State != StateSucceeded {
		t.Fatalf("State = %s (%s %s), want Succeeded", result.State, result.Kind, result.Error)
	}
	if result.Kind != builderr.KindNone || result.Error != "" {
		t.Errorf("failure fields set: kind %q error %q", result.Kind, result.Error)
	}
	if len(result.Warnings) != 1 || !strings.HasPrefix(result.Warnings[0], "removing staging area: ") {
		t.Errorf("Warnings = %q, want one staging removal warning", result.Warnings)
	}
	if _, err := archive.Inspect(result.ArchivePath); err != nil {
		t.Errorf("archive unreadable after a teardown failure: %v", err)
	}
}

func TestRunTeardownFailureKeepsOriginalError(t *testing.T) {
	boom := errors.New("shader compiler crashed")
	hook := lockedOutput(t)
	compiler := &bundler.FakeCompiler{OnCompile: func(request bundler.Request) error {
		if err := hook(request); err != nil {
			return err
		}
		return boom
	}}

	result := run(t, testOptions(t), compiler, topHat())
	if result.State != StateFailed || result.Kind != builderr.KindCompilation {
		t.Fatalf("result = %s %s, want Failed compilation", result.State, result.Kind)
	}
	if !errors.Is(result.Err, boom) || result.Stage != StateCompiling {
		t.Errorf("Err = %v at %s, want the compiler error at Compiling", result.Err, result.Stage)
	}
	if len(result.Warnings) != 1 || !strings.HasPrefix(result.Warnings[0], "removing staging area: ") {
		t.Errorf("Warnings = %q, want one staging removal warning", result.Warnings)
	}
}

func TestRunReplacesPreviousArchive(t *testing.T) {
	options := testOptions(t)

	first := run(t, options, &bundler.FakeCompiler{ArtifactSize: 4096}, topHat())
	if !first.Succeeded() {
		t.Fatalf("first build failed: %s", first.Error)
	}
	second := run(t, options, &bundler.FakeCompiler{ArtifactSize: 100}, topHat())
	if !second.Succeeded() {
		t.Fatalf("second build failed: %s", second.Error)
	}

	manifest, err := archive.Inspect(second.ArchivePath)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if manifest.Entries[0].Size != 100 {
		t.Errorf("bundle size = %d, want 100 from the second build", manifest.Entries[0].Size)
	}
}

func TestRunClearsStaleStaging(t *testing.T) {
	options := testOptions(t)
	stale := testutil.WriteFile(t, filepath.Join(options.StagingDir, "bundle", "capucosmetic"), []byte("stale"))

	// A compiler that reports success without output must not pick up
	// the stale artifact from an earlier build.
	result := run(t, options, &bundler.FakeCompiler{Omit: true}, topHat())
	if result.Kind != builderr.KindCompilation {
		t.Errorf("Kind = %s, want compilation", result.Kind)
	}
	requireAbsent(t, stale)
}

func TestRunReleasesLock(t *testing.T) {
	options := testOptions(t)
	run(t, options, &bundler.FakeCompiler{Omit: true}, topHat())

	acquired := make(chan *staging.Lock, 1)
	go func() {
		lock, err := staging.Acquire(options.StagingDir)
		if err != nil {
			t.Error(err)
		}
		acquired <- lock
	}()
	lock := testutil.RequireReceive(t, acquired, 5*time.Second, "staging lock still held after the build")
	lock.Release()
}

func TestRunTiming(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fake := clock.Fake(start)
	fake.AutoAdvance(1500 * time.Millisecond)

	builder := New(testOptions(t), &bundler.FakeCompiler{ArtifactSize: 10}, nil, fake)
	result := builder.Run(context.Background(), bundler.BytesAsset("hat", []byte("x")), topHat())

	if !result.Started.Equal(start) {
		t.Errorf("Started = %v, want %v", result.Started, start)
	}
	if result.Duration() != 1500*time.Millisecond {
		t.Errorf("Duration = %v, want 1.5s", result.Duration())
	}
}

func TestRunTwicePanics(t *testing.T) {
	builder := New(testOptions(t), &bundler.FakeCompiler{ArtifactSize: 10}, nil, nil)
	builder.Run(context.Background(), bundler.BytesAsset("hat", []byte("x")), topHat())
	if builder.State() != StateSucceeded {
		t.Fatalf("State = %s, want Succeeded", builder.State())
	}

	defer func() {
		if recover() == nil {
			t.Error("second Run did not panic")
		}
	}()
	builder.Run(context.Background(), bundler.BytesAsset("hat", []byte("x")), topHat())
}

func TestResultJSON(t *testing.T) {
	result := run(t, testOptions(t), &bundler.FakeCompiler{Omit: true}, topHat())

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded["state"] != "Failed" || decoded["stage"] != "Compiling" || decoded["kind"] != "compilation" {
		t.Errorf("report = %s", data)
	}

	var roundTrip Result
	if err := json.Unmarshal(data, &roundTrip); err != nil {
		t.Fatalf("Unmarshal into Result: %v", err)
	}
	if !slices.Equal(roundTrip.Trace, result.Trace) {
		t.Errorf("decoded trace = %v, want %v", roundTrip.Trace, result.Trace)
	}
}
