// Copyright 2026 The Capucosmetic Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/capucosmetics/capucosmetic/cmd/capucosmetic/cli"
	"github.com/capucosmetics/capucosmetic/lib/build"
	"github.com/capucosmetics/capucosmetic/lib/bundler"
	"github.com/capucosmetics/capucosmetic/lib/clock"
	"github.com/capucosmetics/capucosmetic/lib/config"
	"github.com/capucosmetics/capucosmetic/lib/cosmetic"
)

type buildParams struct {
	cli.JSONOutput

	Asset    string `flag:"asset,a" desc:"source asset to package (required)"`
	Metadata string `flag:"metadata,m" desc:"JSONC metadata file; fields not in the file keep their defaults"`

	Name          string `flag:"name" desc:"cosmetic name, also the archive file name"`
	Author        string `flag:"author" desc:"author name"`
	Version       int    `flag:"version" desc:"cosmetic version (at least 1)"`
	Description   string `flag:"description" desc:"cosmetic description"`
	SyncLeftHand  bool   `flag:"sync-left-hand" desc:"sync the cosmetic to the left hand"`
	SyncRightHand bool   `flag:"sync-right-hand" desc:"sync the cosmetic to the right hand"`

	Output     string `flag:"output,o" desc:"output directory (default Builds/Capucosmetics)"`
	Staging    string `flag:"staging" desc:"staging directory, wiped at build start (default Temp/capucosmetic)"`
	BundleName string `flag:"bundle-name" desc:"bundle name and archive entry name (default capucosmetic)"`
	Target     string `flag:"target" desc:"target platform (default StandaloneWindows64)"`

	Compiler        string        `flag:"compiler" desc:"bundle compiler executable"`
	CompilerArgs    []string      `flag:"compiler-arg" desc:"argument for the compiler (repeatable)"`
	CompilerTimeout time.Duration `flag:"compiler-timeout" desc:"abort the compiler after this long (0 = no limit)"`

	Config    string `flag:"config" desc:"config file (default $CAPUCOSMETIC_CONFIG)"`
	LogLevel  string `flag:"log-level" desc:"log level: debug, info, warn, error"`
	LogFormat string `flag:"log-format" desc:"log format: auto, text, json"`
	NoColor   bool   `flag:"no-color" desc:"disable colored output"`
}

func buildCommand(out streams) *cli.Command {
	var params buildParams
	command := &cli.Command{
		Name:    "build",
		Summary: "Build a .capucosmetic archive",
		Description: `Build a .capucosmetic archive from a source asset.

Metadata comes from --metadata (a JSONC file, see "capucosmetic metadata
init"), and individual fields can be overridden with --name, --author
and friends. Paths, bundle settings and the compiler come from the
config file, overridden by flags.

The compiler is run once with the request on stdin (CBOR) and in
CAPUCOSMETIC_* environment variables. It must write the bundle to
$CAPUCOSMETIC_OUTPUT_DIR/$CAPUCOSMETIC_BUNDLE_NAME and exit 0.

Exits 1 when the build fails; the report names the failing stage.`,
		Usage: "capucosmetic build --asset <file> [flags]",
		Examples: []cli.Example{
			{
				Description: "Build with metadata from a file",
				Command:     "capucosmetic build --asset tophat.prefab --metadata tophat.jsonc --compiler ./compile.sh",
			},
			{
				Description: "Override the name and emit a JSON report",
				Command:     `capucosmetic build -a tophat.prefab --name "Top Hat" --json`,
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("build", &params)
		},
	}
	command.Run = func(ctx context.Context, args []string) error {
		if len(args) > 0 {
			return fmt.Errorf("unexpected argument %q; pass the asset with --asset", args[0])
		}
		return runBuild(ctx, out, command, &params)
	}
	return command
}

func runBuild(ctx context.Context, out streams, command *cli.Command, params *buildParams) error {
	if params.Asset == "" {
		return fmt.Errorf("--asset is required")
	}

	cfg, err := config.Resolve(params.Config)
	if err != nil {
		return err
	}
	if err := applyConfigFlags(cfg, command, params); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration:\n%w", err)
	}

	logger, err := cli.NewLogger(out.stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	metadata, err := loadMetadata(command, params)
	if err != nil {
		return err
	}

	argv, err := cfg.CompilerCommand()
	if err != nil {
		return err
	}
	timeout, err := cfg.CompilerTimeout()
	if err != nil {
		return err
	}
	compiler := &bundler.ExecCompiler{
		Command: argv,
		Env:     cfg.Compiler.Env,
		Timeout: timeout,
	}

	builder := build.New(cfg.BuildOptions(), compiler, logger.With("command", "build"), clock.Real())
	result := builder.Run(ctx, bundler.FileAsset(params.Asset), metadata)

	if done, err := params.EmitJSON(out.stdout, result); done {
		if err != nil {
			return err
		}
	} else {
		newReportStyles(out.stdout, params.NoColor).renderBuild(out.stdout, result)
	}

	if !result.Succeeded() {
		return &cli.ExitError{Code: 1}
	}
	return nil
}

// applyConfigFlags layers explicitly set flags over the config file.
func applyConfigFlags(cfg *config.Config, command *cli.Command, params *buildParams) error {
	if command.FlagChanged("output") {
		cfg.Paths.Output = params.Output
	}
	if command.FlagChanged("staging") {
		cfg.Paths.Staging = params.Staging
	}
	if command.FlagChanged("bundle-name") {
		cfg.Bundle.Name = params.BundleName
	}
	if command.FlagChanged("target") {
		cfg.Bundle.Target = params.Target
	}
	if command.FlagChanged("compiler") {
		if err := cfg.OverrideCompiler(params.Compiler); err != nil {
			return err
		}
	}
	if command.FlagChanged("compiler-arg") {
		cfg.Compiler.Args = params.CompilerArgs
	}
	if command.FlagChanged("compiler-timeout") {
		cfg.Compiler.Timeout = params.CompilerTimeout.String()
	}
	if command.FlagChanged("log-level") {
		cfg.Log.Level = params.LogLevel
	}
	if command.FlagChanged("log-format") {
		cfg.Log.Format = params.LogFormat
	}
	return nil
}

// loadMetadata decodes --metadata (or starts from the defaults) and
// applies the per-field flags. Validation is left to the build so an
// invalid record is reported like any other build failure, and a bad
// field in the file can be corrected with its flag.
func loadMetadata(command *cli.Command, params *buildParams) (cosmetic.Metadata, error) {
	metadata := cosmetic.Default()
	if params.Metadata != "" {
		var err error
		metadata, err = cosmetic.LoadFile(params.Metadata)
		if err != nil {
			return cosmetic.Metadata{}, err
		}
	}

	if command.FlagChanged("name") {
		metadata.Name = params.Name
	}
	if command.FlagChanged("author") {
		metadata.Author = params.Author
	}
	if command.FlagChanged("version") {
		metadata.Version = params.Version
	}
	if command.FlagChanged("description") {
		metadata.Description = params.Description
	}
	if command.FlagChanged("sync-left-hand") {
		metadata.SyncToLeftHand = params.SyncLeftHand
	}
	if command.FlagChanged("sync-right-hand") {
		metadata.SyncToRightHand = params.SyncRightHand
	}
	return metadata, nil
}
