// Copyright 2026 The Capucosmetic Authors
// SPDX-License-Identifier: Apache-2.0

package builderr

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindNone},
		{"validation", Validation("name is empty"), KindValidation},
		{"compilation", Compilation("no artifact"), KindCompilation},
		{"archive", Archive("short entry"), KindArchive},
		{"wrapped further", fmt.Errorf("stage: %w", Archive("bad")), KindArchive},
		{"unclassified", errors.New("boom"), KindIO},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := KindOf(test.err); got != test.want {
				t.Errorf("KindOf() = %q, want %q", got, test.want)
			}
		})
	}
}

func TestWrapPreservesChain(t *testing.T) {
	err := Wrap(KindIO, fs.ErrPermission, "creating %s", "/tmp/staging")
	if err.Error() != "creating /tmp/staging: permission denied" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, fs.ErrPermission) {
		t.Error("errors.Is(err, fs.ErrPermission) = false, want true")
	}
	if !Is(err, KindIO) {
		t.Error("Is(err, KindIO) = false, want true")
	}
}

func TestWrapNil(t *testing.T) {
	if err := Wrap(KindArchive, nil, "ignored"); err != nil {
		t.Errorf("Wrap(nil) = %v, want nil", err)
	}
}

func TestKindString(t *testing.T) {
	if got := KindCompilation.String(); got != "CompilationError" {
		t.Errorf("String() = %q, want CompilationError", got)
	}
	if got := Kind("bogus").String(); got != "unknown(bogus)" {
		t.Errorf("String() = %q, want unknown(bogus)", got)
	}
}
