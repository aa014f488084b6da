// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/aibor/pagerun/internal/exitcode"
	"github.com/aibor/pagerun/internal/loader"
	"github.com/aibor/pagerun/internal/mem"
	"github.com/aibor/pagerun/internal/trap"
	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()

	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer

	setupLogging(&buf, slog.LevelWarn)

	return &buf
}

func TestHandleParseArgsError(t *testing.T) {
	tests := []struct {
		name             string
		err              error
		expectedExitCode int
		expectedOutput   string
	}{
		{
			name: "help",
			err:  &ParseArgsError{msg: "flag parse", err: ErrHelp},
		},
		{
			name:             "parse args error",
			err:              &ParseArgsError{msg: "no executable given"},
			expectedExitCode: -1,
		},
		{
			name:             "other error",
			err:              assert.AnError,
			expectedExitCode: -1,
			expectedOutput:   "level=ERROR msg=\"assert.AnError general error for testing\"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := captureLogs(t)

			assert.Equal(t, tt.expectedExitCode, handleParseArgsError(tt.err))

			if tt.expectedOutput == "" {
				assert.Empty(t, logs.String())
			} else {
				assert.Contains(t, logs.String(), tt.expectedOutput)
			}
		})
	}
}

func TestHandleRunError(t *testing.T) {
	fault := &mem.Fault{Addr: 0x10, Access: mem.AccessRead, Code: mem.CodeMapErr}

	tests := []struct {
		name             string
		err              error
		expectedExitCode int
		expectedOutput   string
	}{
		{
			name:             "non-zero exit code",
			err:              exitcode.Error(3),
			expectedExitCode: 3,
		},
		{
			name:             "non-zero exit code with pipe error",
			err:              errors.Join(exitcode.Error(4), assert.AnError),
			expectedExitCode: 4,
		},
		{
			name: "termination",
			err: &trap.Termination{
				Signal: unix.SIGSEGV,
				Fault:  fault,
			},
			expectedExitCode: 139,
			expectedOutput:   "level=WARN msg=\"terminated by SIGSEGV",
		},
		{
			name: "loader failure",
			err: &loader.FatalError{
				Addr: 0x10000,
				Op:   "read file",
				Err:  assert.AnError,
			},
			expectedExitCode: -1,
			expectedOutput:   "level=ERROR msg=\"Loader failed\" op=\"read file\"",
		},
		{
			name:             "start failure",
			err:              fmt.Errorf("wrapped: %w", assert.AnError),
			expectedExitCode: -1,
			expectedOutput:   "level=ERROR msg=\"wrapped: assert.AnError",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := captureLogs(t)

			assert.Equal(t, tt.expectedExitCode, handleRunError(tt.err))

			if tt.expectedOutput == "" {
				assert.Empty(t, logs.String())
			} else {
				assert.Contains(t, logs.String(), tt.expectedOutput)
			}
		})
	}
}
