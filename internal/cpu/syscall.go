// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cpu

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/aibor/pagerun/internal/mem"
	"github.com/aibor/pagerun/internal/trap"
	"golang.org/x/sys/unix"
)

// Linux RISC-V system call numbers.
const (
	sysWrite     = 64
	sysExit      = 93
	sysExitGroup = 94
)

// Upper limit of bytes written by a single write call.
const maxWriteSize = 64 << 10

// syscall executes the system call with the number in A7 and arguments in A0
// to A5. The result is returned in A0.
func (m *Machine) syscall() error {
	switch nr := m.Reg(A7); nr {
	case sysWrite:
		return m.sysWrite()
	case sysExit, sysExitGroup:
		m.exited = true
		m.status = int(m.Reg(A0) & 0xff)

		slog.Debug("Program exited",
			slog.Int("status", m.status),
			slog.Uint64("steps", m.steps+1),
		)
	default:
		slog.Debug("Unsupported syscall", slog.Uint64("nr", uint64(nr)))
		m.SetReg(A0, errno(unix.ENOSYS))
	}

	return nil
}

func (m *Machine) sysWrite() error {
	fd := int(int32(m.Reg(A0)))

	w, exists := m.files[fd]
	if !exists {
		m.SetReg(A0, errno(unix.EBADF))
		return nil
	}

	buf := make([]byte, min(m.Reg(A2), maxWriteSize))

	ok, err := m.copyIn(uint64(m.Reg(A1)), buf)
	if err != nil {
		return err
	}

	if !ok {
		m.SetReg(A0, errno(unix.EFAULT))
		return nil
	}

	written, err := w.Write(buf)
	if err != nil && written == 0 {
		slog.Debug("Write failed", slog.Int("fd", fd), slog.Any("error", err))
		m.SetReg(A0, errno(unix.EIO))

		return nil
	}

	m.SetReg(A0, uint32(written))

	return nil
}

// copyIn reads a system call argument buffer from guest memory. Faults are
// delivered to the trap table like instruction faults, so lazily loaded
// pages are resolved. If the disposition terminates the program instead, it
// returns false and the system call fails with EFAULT.
func (m *Machine) copyIn(addr uint64, buf []byte) (bool, error) {
	var lastFault *mem.Fault

	for {
		err := m.memory.Read(addr, buf)
		if err == nil {
			return true, nil
		}

		var fault *mem.Fault
		if !errors.As(err, &fault) {
			return false, err //nolint:wrapcheck
		}

		if lastFault != nil && *lastFault == *fault {
			return false, fmt.Errorf("%w: %w", ErrFaultLoop, fault)
		}

		lastFault = fault

		err = m.table.Deliver(fault)
		if errors.Is(err, &trap.Termination{}) {
			slog.Debug("Bad system call buffer", slog.Any("fault", fault))
			return false, nil
		}

		if err != nil {
			return false, err //nolint:wrapcheck
		}
	}
}

func errno(e unix.Errno) uint32 {
	return uint32(-int32(e))
}
