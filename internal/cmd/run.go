// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"

	"github.com/aibor/pagerun/internal/exitcode"
	"github.com/aibor/pagerun/internal/loader"
	"github.com/aibor/pagerun/internal/pagerun"
	"github.com/aibor/pagerun/internal/trap"
)

const localConfigFile = ".pagerun-args"

// IO provides input and output details for the command.
type IO struct {
	Stdout io.Writer
	Stderr io.Writer
}

func newFlags(args []string, cfg IO) (*flags, error) {
	args, err := MergedArgs(args, os.DirFS("."), localConfigFile)
	if err != nil {
		return nil, err
	}

	flags, err := parseArgs(args, cfg.Stderr)
	if err != nil {
		return nil, fmt.Errorf("parse args: %w", err)
	}

	return flags, nil
}

func handleParseArgsError(err error) int {
	// [ErrHelp] is returned when help is requested. So exit without error
	// in this case.
	if errors.Is(err, ErrHelp) {
		return 0
	}

	// ParseArgs already prints errors, so we just exit without an error.
	if !errors.Is(err, &ParseArgsError{}) {
		slog.Error(err.Error())
	}

	return -1
}

func handleRunError(err error) int {
	exitCode, _ := exitcode.From(err)

	var fatalErr *loader.FatalError

	switch {
	case errors.As(err, &fatalErr):
		slog.Error("Loader failed",
			slog.String("op", fatalErr.Op),
			slog.Any("error", err),
		)
	case errors.Is(err, &trap.Termination{}):
		slog.Warn(err.Error())
	case errors.Is(err, exitcode.Error(0)):
		// The program ran and communicated a non-zero exit code on its own.
	default:
		slog.Error(err.Error())
	}

	return exitCode
}

// Run is the main entry point for the CLI command.
func Run(ctx context.Context, args []string, cfg IO) int {
	setupLogging(cfg.Stderr, slog.LevelWarn)

	flags, err := newFlags(args, cfg)
	if err != nil {
		return handleParseArgsError(err)
	}

	setupLogging(cfg.Stderr, flags.logLevel())

	if flags.Version {
		buildInfo, err := getBuildInfo()
		if err != nil {
			slog.Error(err.Error())
			return -1
		}

		fmt.Fprintf(cfg.Stdout, "Version: %s\n", buildInfo.Main.Version)

		return 0
	}

	err = pagerun.Run(ctx, flags.spec(), cfg.Stdout, cfg.Stderr)
	if err != nil {
		return handleRunError(err)
	}

	return 0
}

func getBuildInfo() (*debug.BuildInfo, error) {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return nil, ErrReadBuildInfo
	}

	return buildInfo, nil
}
