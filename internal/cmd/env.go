// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

const envArgsVar = "PAGERUN_ARGS"

// EnvArgs returns pagerun arguments from the environment.
func EnvArgs() []string {
	return strings.Fields(os.Getenv(envArgsVar))
}

// LocalConfigArgs returns pagerun arguments from a local config file.
//
// The file's format is one argument per line. Environment variables may be used
// and are expanded with [os.ExpandEnv]. A missing file is not an error.
func LocalConfigArgs(fsys fs.FS, file string) ([]string, error) {
	conf, err := fs.ReadFile(fsys, file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("read file: %w", err)
	}

	args := []string{}

	expandedConf := os.ExpandEnv(string(conf))
	for line := range strings.SplitSeq(expandedConf, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			args = append(args, line)
		}
	}

	return args, nil
}

// MergedArgs returns the arguments from the local config file, followed by
// the ones from the environment and then the given command line arguments.
//
// The first element of args is the program name and is kept in front. Since
// later flags override earlier ones, the command line wins.
func MergedArgs(args []string, fsys fs.FS, file string) ([]string, error) {
	localArgs, err := LocalConfigArgs(fsys, file)
	if err != nil {
		return nil, fmt.Errorf("local config args: %w", err)
	}

	envArgs := EnvArgs()

	merged := make([]string, 0, len(args)+len(localArgs)+len(envArgs))

	if len(args) > 0 {
		merged = append(merged, args[0])
		args = args[1:]
	}

	merged = append(merged, localArgs...)
	merged = append(merged, envArgs...)
	merged = append(merged, args...)

	return merged, nil
}
