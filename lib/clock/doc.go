// Copyright 2026 The Capucosmetic Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts the wall clock so build timings are testable.
//
// Production code injects [Real]; tests inject [Fake] and move time
// with [FakeClock.Advance]. Builds only read the time (start, finish,
// per-stage durations), so the interface is limited to that.
package clock
