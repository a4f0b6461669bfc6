// Copyright 2026 The Capucosmetic Authors
// SPDX-License-Identifier: Apache-2.0

package build

import "fmt"

// State is a point in the build state machine.
type State int

const (
	StateIdle State = iota
	StateStaging
	StateCompiling
	StateSerializingMetadata
	StateAssembling
	StateVerifying
	StateCleaningUp
	StateSucceeded
	StateFailed
)

var stateNames = [...]string{
	StateIdle:                "Idle",
	StateStaging:             "Staging",
	StateCompiling:           "Compiling",
	StateSerializingMetadata: "SerializingMetadata",
	StateAssembling:          "Assembling",
	StateVerifying:           "Verifying",
	StateCleaningUp:          "CleaningUp",
	StateSucceeded:           "Succeeded",
	StateFailed:              "Failed",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// MarshalText encodes the state by name for JSON reports.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a state name produced by MarshalText.
func (s *State) UnmarshalText(text []byte) error {
	for value, name := range stateNames {
		if name == string(text) {
			*s = State(value)
			return nil
		}
	}
	return fmt.Errorf("unknown build state %q", text)
}

// IsTerminal reports whether the build has finished.
func (s State) IsTerminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// isAllowedTransition encodes the pipeline order. Working stages
// advance one step or bail out to CleaningUp; Idle may fail directly
// because validation has nothing to clean up.
func isAllowedTransition(from, to State) bool {
	switch from {
	case StateIdle:
		return to == StateStaging || to == StateFailed
	case StateStaging, StateCompiling, StateSerializingMetadata, StateAssembling:
		return to == from+1 || to == StateCleaningUp
	case StateVerifying:
		return to == StateCleaningUp
	case StateCleaningUp:
		return to == StateSucceeded || to == StateFailed
	default:
		return false
	}
}
