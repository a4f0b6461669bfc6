// Copyright 2026 The Capucosmetic Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/capucosmetics/capucosmetic/lib/build"
	"github.com/capucosmetics/capucosmetic/lib/bundler"
	"github.com/capucosmetics/capucosmetic/lib/cosmetic"
)

// EnvVar names the environment variable holding the config file path.
const EnvVar = "CAPUCOSMETIC_CONFIG"

// Config is the packager configuration.
type Config struct {
	// Paths configures the staging and output directories.
	Paths PathsConfig `yaml:"paths"`

	// Bundle configures what the compiler produces.
	Bundle BundleConfig `yaml:"bundle"`

	// Compiler configures the external bundle compiler.
	Compiler CompilerConfig `yaml:"compiler"`

	// Log configures diagnostic logging.
	Log LogConfig `yaml:"log"`

	// dir is the directory holding the loaded file; empty for
	// Default.
	dir string
}

// PathsConfig configures directory locations.
type PathsConfig struct {
	// Staging is the scratch directory, wiped at the start of every
	// build. Default: Temp/capucosmetic
	Staging string `yaml:"staging"`

	// Output receives finished archives.
	// Default: Builds/Capucosmetics
	Output string `yaml:"output"`
}

// BundleConfig configures the compiled bundle.
type BundleConfig struct {
	// Name is the bundle name and archive entry name.
	// Default: capucosmetic
	Name string `yaml:"name"`

	// Target is the build target platform.
	// Default: StandaloneWindows64
	Target string `yaml:"target"`
}

// CompilerConfig configures the external compiler process.
type CompilerConfig struct {
	// Command is the compiler executable. A bare name is looked up in
	// PATH; a relative path is resolved against the config file's
	// directory.
	Command string `yaml:"command"`

	// Args are passed to Command before anything else.
	Args []string `yaml:"args"`

	// Timeout bounds one compilation, as a Go duration string.
	// Empty means no limit.
	Timeout string `yaml:"timeout"`

	// Env adds variables to the compiler's environment.
	Env map[string]string `yaml:"env"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error. Default: info
	Level string `yaml:"level"`

	// Format is text, json, or auto (text on a terminal, JSON
	// otherwise). Default: auto
	Format string `yaml:"format"`
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"auto", "text", "json"}
)

// Default returns the configuration used when no file is given.
func Default() *Config {
	options := build.DefaultOptions()
	return &Config{
		Paths: PathsConfig{
			Staging: options.StagingDir,
			Output:  options.OutputDir,
		},
		Bundle: BundleConfig{
			Name:   options.BundleName,
			Target: string(options.Target),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// Resolve loads the file named by flagPath, or by CAPUCOSMETIC_CONFIG
// when flagPath is empty. With neither set it returns [Default].
func Resolve(flagPath string) (*Config, error) {
	path := flagPath
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads configuration from path on top of [Default] and
// expands variables. It does not validate; call [Config.Validate].
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	absolute, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving config path: %w", err)
	}
	cfg.dir = filepath.Dir(absolute)
	cfg.expandVariables()
	return cfg, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in the
// fields that hold paths or commands.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"CONFIG_DIR": c.dir,
		"HOME":       os.Getenv("HOME"),
	}

	c.Paths.Staging = expandVars(c.Paths.Staging, vars)
	c.Paths.Output = expandVars(c.Paths.Output, vars)
	c.Compiler.Command = expandVars(c.Compiler.Command, vars)
	for i, arg := range c.Compiler.Args {
		c.Compiler.Args[i] = expandVars(arg, vars)
	}
	for key, value := range c.Compiler.Env {
		c.Compiler.Env[key] = expandVars(value, vars)
	}
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default}. Names in vars win
// over the process environment.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		name := parts[1]
		defaultValue := parts[2]

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Paths.Staging == "" {
		errs = append(errs, fmt.Errorf("paths.staging is required"))
	}
	if c.Paths.Output == "" {
		errs = append(errs, fmt.Errorf("paths.output is required"))
	}

	if err := cosmetic.ValidateName("bundle.name", c.Bundle.Name); err != nil {
		errs = append(errs, err)
	}
	if _, err := bundler.ParsePlatform(c.Bundle.Target); err != nil {
		errs = append(errs, fmt.Errorf("bundle.target: %w", err))
	}

	if _, err := c.CompilerTimeout(); err != nil {
		errs = append(errs, err)
	}

	if !slices.Contains(logLevels, c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level must be one of: %v", logLevels))
	}
	if !slices.Contains(logFormats, c.Log.Format) {
		errs = append(errs, fmt.Errorf("log.format must be one of: %v", logFormats))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// CompilerTimeout parses compiler.timeout. Empty means zero (no
// limit).
func (c *Config) CompilerTimeout() (time.Duration, error) {
	if c.Compiler.Timeout == "" {
		return 0, nil
	}
	timeout, err := time.ParseDuration(c.Compiler.Timeout)
	if err != nil {
		return 0, fmt.Errorf("compiler.timeout: %w", err)
	}
	if timeout < 0 {
		return 0, fmt.Errorf("compiler.timeout must not be negative")
	}
	return timeout, nil
}

// OverrideCompiler replaces compiler.command with a value given on the
// command line. A relative path is taken from the working directory,
// not from the config file's directory.
func (c *Config) OverrideCompiler(command string) error {
	if strings.ContainsRune(command, filepath.Separator) && !filepath.IsAbs(command) {
		absolute, err := filepath.Abs(command)
		if err != nil {
			return fmt.Errorf("resolving compiler %s: %w", command, err)
		}
		command = absolute
	}
	c.Compiler.Command = command
	return nil
}

// CompilerCommand returns the compiler argv with the executable
// resolved: bare names through PATH, relative paths from the config
// file against the config file's directory.
func (c *Config) CompilerCommand() ([]string, error) {
	command := c.Compiler.Command
	if command == "" {
		return nil, fmt.Errorf("no compiler configured; set compiler.command or pass --compiler")
	}

	var path string
	if strings.ContainsRune(command, filepath.Separator) {
		path = command
		if !filepath.IsAbs(path) && c.dir != "" {
			path = filepath.Join(c.dir, path)
		}
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("compiler %s not found: %w", path, err)
		}
	} else {
		resolved, err := exec.LookPath(command)
		if err != nil {
			return nil, fmt.Errorf("%s not found in PATH", command)
		}
		path = resolved
	}
	return append([]string{path}, c.Compiler.Args...), nil
}

// BuildOptions converts the configuration into build options. The
// target must already have passed [Config.Validate].
func (c *Config) BuildOptions() build.Options {
	target, err := bundler.ParsePlatform(c.Bundle.Target)
	if err != nil {
		target = bundler.Platform(c.Bundle.Target)
	}
	return build.Options{
		StagingDir: c.Paths.Staging,
		OutputDir:  c.Paths.Output,
		BundleName: c.Bundle.Name,
		Target:     target,
	}
}
