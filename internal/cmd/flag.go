// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"flag"
	"fmt"
	"io"
	"log/slog"

	"github.com/aibor/pagerun/internal/pagerun"
	"github.com/aibor/pagerun/internal/sys"
)

const (
	name = "pagerun"

	stackSizeDefault = pagerun.DefaultStackSize >> 10
	stackSizeMin     = 4
	stackSizeMax     = 1 << 20

	usageMessage = `Usage of 'pagerun':
    pagerun [flags...] executable [args...]

The executable must be a static RISC-V 32 bit ELF executable. Its pages are
loaded on first access only.

Using it directly:
	pagerun -dumpPages=pages.cpio ./hello world

All pagerun flags can also be provided via environment variable PAGERUN_ARGS:
	PAGERUN_ARGS="-debug -maxSteps=100000" pagerun ./hello

All pagerun flags can also be provided via file ./.pagerun-args, with one
argument per line.
`
)

type flags struct {
	flagSet *flag.FlagSet

	ExecutablePath string
	Args           []string
	Env            EnvList
	PageSize       uint64
	StackSizeKiB   uint64
	MaxSteps       uint64
	Trace          bool
	PageDumpPath   FilePath
	MetricsPath    FilePath
	Debug          bool
	Version        bool
}

// parseArgs parses the given arguments. The first element is the program
// name and is skipped.
func parseArgs(args []string, output io.Writer) (*flags, error) {
	f := &flags{
		StackSizeKiB: stackSizeDefault,
	}

	f.initFlagset(output)

	if len(args) > 0 {
		args = args[1:]
	}

	// Parses arguments up to the first one that is not prefixed with a "-" or
	// is "--".
	err := f.flagSet.Parse(args)
	if err != nil {
		return nil, &ParseArgsError{msg: "flag parse", err: err}
	}

	// With version flag no executable is required.
	if f.Version {
		return f, nil
	}

	positionalArgs := f.flagSet.Args()

	// First positional argument is supposed to be the executable.
	if len(positionalArgs) < 1 {
		return nil, f.fail("no executable given", nil)
	}

	executable, err := sys.AbsolutePath(positionalArgs[0])
	if err != nil {
		return nil, f.fail("executable path", err)
	}

	f.ExecutablePath = executable

	// All further positional arguments are passed to the program.
	f.Args = positionalArgs[1:]

	return f, nil
}

func (f *flags) initFlagset(output io.Writer) {
	flagSet := flag.NewFlagSet(name, flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = f.usage

	flagSet.Uint64Var(
		&f.PageSize,
		"pageSize",
		f.PageSize,
		"page size in bytes, must be a power of two (default host page size)",
	)

	flagSet.Var(
		&LimitedUintValue{
			Value: &f.StackSizeKiB,
			Lower: stackSizeMin,
			Upper: stackSizeMax,
		},
		"stackSize",
		"size (in KiB) of the program's stack",
	)

	flagSet.Uint64Var(
		&f.MaxSteps,
		"maxSteps",
		f.MaxSteps,
		"stop the program after this many instructions (default unlimited)",
	)

	flagSet.BoolVar(
		&f.Trace,
		"trace",
		f.Trace,
		"log every executed instruction, requires -debug",
	)

	flagSet.Var(
		&f.Env,
		"env",
		"environment variable key=value for the program. Flag may be used "+
			"more than once. Empty value clears the list.",
	)

	flagSet.Var(
		&f.PageDumpPath,
		"dumpPages",
		"write all loaded pages as cpio archive to this file after the run",
	)

	flagSet.Var(
		&f.MetricsPath,
		"metricsFile",
		"write loader metrics in Prometheus text format to this file "+
			"after the run",
	)

	flagSet.BoolVar(
		&f.Debug,
		"debug",
		f.Debug,
		"enable debug output",
	)

	flagSet.BoolVar(
		&f.Version,
		"version",
		f.Version,
		"show version and exit",
	)

	f.flagSet = flagSet
}

// fail fails like flag does. It prints the error first and then usage.
func (f *flags) fail(msg string, err error) error {
	err = &ParseArgsError{msg: msg, err: err}
	fmt.Fprintln(f.flagSet.Output(), err.Error())

	f.flagSet.Usage()

	return err
}

func (f *flags) usage() {
	fmt.Fprint(f.flagSet.Output(), usageMessage)
	fmt.Fprintln(f.flagSet.Output(), "\nFlags:")
	f.flagSet.PrintDefaults()
}

func (f *flags) logLevel() slog.Level {
	if f.Debug {
		return slog.LevelDebug
	}

	return slog.LevelWarn
}

func (f *flags) spec() *pagerun.Spec {
	return &pagerun.Spec{
		Executable:  f.ExecutablePath,
		Args:        f.Args,
		Env:         f.Env,
		PageSize:    f.PageSize,
		StackSize:   f.StackSizeKiB << 10,
		MaxSteps:    f.MaxSteps,
		Trace:       f.Trace,
		PageDump:    string(f.PageDumpPath),
		MetricsFile: string(f.MetricsPath),
	}
}
