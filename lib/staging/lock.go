// Copyright 2026 The Capucosmetic Authors
// SPDX-License-Identifier: Apache-2.0

package staging

import (
	"errors"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/capucosmetics/capucosmetic/lib/builderr"
)

// LockSuffix is appended to the staging root to form the lock file path.
const LockSuffix = ".lock"

// Lock is an exclusive hold on a staging path.
type Lock struct {
	file *os.File
}

// Acquire blocks until it holds the exclusive lock for the staging
// path, then returns it. flock(2) locks belong to the open file
// description, so two Acquire calls in the same process exclude each
// other just like calls from different processes.
//
// The lock file is created if needed and never removed: unlinking it
// while another builder waits on the old inode would let two builders
// proceed at once.
func Acquire(path string) (*Lock, error) {
	root, err := cleanRoot(path)
	if err != nil {
		return nil, err
	}
	lockPath := root + LockSuffix

	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return nil, builderr.Wrap(builderr.KindIO, err, "creating staging lock directory")
	}
	file, err := os.OpenFile(lockPath, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, builderr.Wrap(builderr.KindIO, err, "opening staging lock")
	}

	for {
		err = unix.Flock(int(file.Fd()), unix.LOCK_EX)
		if !errors.Is(err, unix.EINTR) {
			break
		}
	}
	if err != nil {
		file.Close()
		return nil, builderr.Wrap(builderr.KindIO, err, "locking %s", lockPath)
	}
	return &Lock{file: file}, nil
}

// Release drops the lock. Calling Release more than once is a no-op.
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	file := l.file
	l.file = nil

	unlockErr := unix.Flock(int(file.Fd()), unix.LOCK_UN)
	closeErr := file.Close()
	if unlockErr != nil {
		return builderr.Wrap(builderr.KindIO, unlockErr, "unlocking staging lock")
	}
	if closeErr != nil {
		return builderr.Wrap(builderr.KindIO, closeErr, "closing staging lock")
	}
	return nil
}
