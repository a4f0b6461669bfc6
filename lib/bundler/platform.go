// Copyright 2026 The Capucosmetic Authors
// SPDX-License-Identifier: Apache-2.0

package bundler

import (
	"strings"

	"github.com/capucosmetics/capucosmetic/lib/builderr"
)

// Platform names the build target the compiler produces bundles for.
// Values use the engine's target names so they can be passed through
// to the compiler unchanged.
type Platform string

const (
	StandaloneWindows64 Platform = "StandaloneWindows64"
	StandaloneLinux64   Platform = "StandaloneLinux64"
	StandaloneOSX       Platform = "StandaloneOSX"
	Android             Platform = "Android"
	IOS                 Platform = "iOS"
	WebGL               Platform = "WebGL"
)

// DefaultPlatform is the target cosmetics are built for unless
// configured otherwise: the game client runs on 64-bit Windows.
const DefaultPlatform = StandaloneWindows64

// Platforms lists every supported target in display order.
var Platforms = []Platform{StandaloneWindows64, StandaloneLinux64, StandaloneOSX, Android, IOS, WebGL}

// ParsePlatform resolves a target name case-insensitively.
func ParsePlatform(name string) (Platform, error) {
	for _, platform := range Platforms {
		if strings.EqualFold(name, string(platform)) {
			return platform, nil
		}
	}
	names := make([]string, len(Platforms))
	for i, platform := range Platforms {
		names[i] = string(platform)
	}
	return "", builderr.Validation("unknown target platform %q (valid: %s)", name, strings.Join(names, ", "))
}

func (p Platform) String() string { return string(p) }
