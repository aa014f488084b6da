// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package trap

import (
	"errors"
	"fmt"

	"github.com/aibor/pagerun/internal/mem"
	"golang.org/x/sys/unix"
)

var (
	// ErrNoTable is returned if a handler is installed into a nil table.
	ErrNoTable = errors.New("no trap table")

	// ErrNilHandler is returned if a nil handler is installed.
	ErrNilHandler = errors.New("nil handler")
)

// Termination is returned if the program is terminated by a signal.
type Termination struct {
	Signal unix.Signal
	// Fault is the memory fault that caused the termination, if any.
	Fault *mem.Fault
	// Addr is the program counter for terminations not caused by a memory
	// fault.
	Addr uint64
}

func (e *Termination) Error() string {
	name := unix.SignalName(e.Signal)
	if name == "" {
		name = e.Signal.String()
	}

	if e.Fault != nil {
		return fmt.Sprintf("terminated by %s: %v", name, e.Fault)
	}

	return fmt.Sprintf("terminated by %s at %#x", name, e.Addr)
}

func (*Termination) Is(other error) bool {
	_, ok := other.(*Termination)
	return ok
}

func (e *Termination) Unwrap() error {
	if e.Fault == nil {
		return nil
	}

	return e.Fault
}

// ExitCode returns the exit code a shell reports for a process terminated by
// the signal.
func (e *Termination) ExitCode() int {
	return 128 + int(e.Signal)
}
