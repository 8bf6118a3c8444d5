// SPDX-License-Identifier: Apache-2.0

// movec checks and builds Move sources written in any supported address
// dialect.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	"github.com/urfave/cli/v2"

	"github.com/dfinance/move-tools/internal/config"
	"github.com/dfinance/move-tools/internal/dialects"
)

var (
	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
	dialectFlag = &cli.StringFlag{
		Name:  "dialect",
		Usage: "address dialect (" + dialectNames() + ")",
	}
	senderFlag = &cli.StringFlag{
		Name:  "sender",
		Usage: "account address substituted for {{sender}} and used for modules without an address",
	}
	modulesFlag = &cli.StringSliceFlag{
		Name:  "modules",
		Usage: "dependency file or directory, may be repeated",
	}
	stdlibFlag = &cli.StringFlag{
		Name:  "stdlib",
		Usage: "directory of files already written with canonical addresses",
	}
	malformedFlag = &cli.StringFlag{
		Name:  "malformed-addresses",
		Usage: "what to do with address-looking literals that fail validation (ignore, report)",
	}
	parallelismFlag = &cli.IntFlag{
		Name:  "parallelism",
		Usage: "number of files normalized concurrently",
	}
	outFlag = &cli.StringFlag{
		Name:  "out",
		Usage: "directory the compiled units are written to",
	}
	verbosity   int
	verboseFlag = &cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "log verbosity, repeat for more",
		Count:   &verbosity,
	}
)

var sharedFlags = []cli.Flag{
	configFlag,
	dialectFlag,
	senderFlag,
	modulesFlag,
	stdlibFlag,
	malformedFlag,
	parallelismFlag,
}

var app = &cli.App{
	Name:  "movec",
	Usage: "check and build Move sources",
	Flags: []cli.Flag{verboseFlag},
	Before: func(ctx *cli.Context) error {
		commonlog.Configure(ctx.Count(verboseFlag.Name), nil)
		useColor := (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
		color.NoColor = !useColor
		return nil
	},
	Commands: []*cli.Command{
		{
			Name:      "check",
			Usage:     "parse and check the given files against the dependencies",
			ArgsUsage: "<file or directory>...",
			Flags:     sharedFlags,
			Action:    check,
		},
		{
			Name:      "build",
			Usage:     "compile the given files into units",
			ArgsUsage: "<file or directory>...",
			Flags:     append(append([]cli.Flag{}, sharedFlags...), outFlag),
			Action:    build,
		},
	},
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func dialectNames() string {
	names := make([]string, len(dialects.Names))
	for i, n := range dialects.Names {
		names[i] = string(n)
	}
	return strings.Join(names, ", ")
}

// loadSettings layers the defaults, the config file, the environment and
// the command line flags, in that order.
func loadSettings(ctx *cli.Context) (config.Config, error) {
	cfg := config.Defaults
	if path := ctx.String(configFlag.Name); path != "" {
		if err := config.Load(path, &cfg); err != nil {
			return cfg, err
		}
	}
	if err := config.ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	if ctx.IsSet(dialectFlag.Name) {
		cfg.Dialect = ctx.String(dialectFlag.Name)
	}
	if ctx.IsSet(senderFlag.Name) {
		cfg.Sender = ctx.String(senderFlag.Name)
	}
	if ctx.IsSet(modulesFlag.Name) {
		cfg.Modules = append(cfg.Modules, ctx.StringSlice(modulesFlag.Name)...)
	}
	if ctx.IsSet(stdlibFlag.Name) {
		cfg.StdlibDir = ctx.String(stdlibFlag.Name)
	}
	if ctx.IsSet(malformedFlag.Name) {
		cfg.MalformedAddresses = ctx.String(malformedFlag.Name)
	}
	if ctx.IsSet(parallelismFlag.Name) {
		cfg.Parallelism = ctx.Int(parallelismFlag.Name)
	}
	return cfg, cfg.Validate()
}
