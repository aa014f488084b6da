// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cpu

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"

	"github.com/aibor/pagerun/internal/mem"
	"github.com/aibor/pagerun/internal/trap"
)

// Number of instructions between context checks.
const ctxCheckInterval = 1024

// Memory is the guest memory as seen by the machine.
type Memory interface {
	// Fetch reads instruction bytes. The memory must be executable.
	Fetch(addr uint64, buf []byte) error
	// Read reads data bytes.
	Read(addr uint64, buf []byte) error
	// Write writes data bytes. Either all bytes are written or none.
	Write(addr uint64, buf []byte) error
}

// Machine is a single hart RV32IM machine.
type Machine struct {
	regs     [32]uint32
	pc       uint32
	memory   Memory
	table    *trap.Table
	files    map[int]io.Writer
	maxSteps uint64
	trace    bool

	steps  uint64
	exited bool
	status int
}

// Option configures a [Machine].
type Option func(*Machine)

// WithMaxSteps limits the number of executed instructions. 0 means no limit.
func WithMaxSteps(steps uint64) Option {
	return func(m *Machine) {
		m.maxSteps = steps
	}
}

// WithTrace enables logging of each executed instruction at debug level.
func WithTrace(enabled bool) Option {
	return func(m *Machine) {
		m.trace = enabled
	}
}

// WithFile makes the writer available to the program as file descriptor fd.
func WithFile(fd int, w io.Writer) Option {
	return func(m *Machine) {
		m.files[fd] = w
	}
}

// New creates a machine that starts execution at entry. Faults are
// delivered to the given table.
func New(memory Memory, table *trap.Table, entry uint64, opts ...Option) (*Machine, error) {
	if entry > math.MaxUint32 {
		return nil, fmt.Errorf("%w: entry %#x", ErrAddressRange, entry)
	}

	if entry%instSize != 0 {
		return nil, fmt.Errorf("%w: entry %#x", ErrMisalignedPC, entry)
	}

	machine := &Machine{
		pc:     uint32(entry),
		memory: memory,
		table:  table,
		files:  make(map[int]io.Writer),
	}

	for _, opt := range opts {
		opt(machine)
	}

	return machine, nil
}

// Reg returns the value of the register.
func (m *Machine) Reg(r Reg) uint32 {
	if r == Zero {
		return 0
	}

	return m.regs[r]
}

// SetReg sets the value of the register. Writes to [Zero] are ignored.
func (m *Machine) SetReg(r Reg, value uint32) {
	if r != Zero {
		m.regs[r] = value
	}
}

// PC returns the program counter.
func (m *Machine) PC() uint64 {
	return uint64(m.pc)
}

// Steps returns the number of executed instructions.
func (m *Machine) Steps() uint64 {
	return m.steps
}

// Exited reports whether the program called exit, and its exit status.
func (m *Machine) Exited() (bool, int) {
	return m.exited, m.status
}

// Step executes a single instruction.
//
// If a memory access fails, the [*mem.Fault] is returned and the machine
// state is unchanged.
func (m *Machine) Step() error {
	var buf [instSize]byte

	err := m.memory.Fetch(uint64(m.pc), buf[:])
	if err != nil {
		return err //nolint:wrapcheck
	}

	inst := decode(binary.LittleEndian.Uint32(buf[:]))

	if m.trace {
		slog.Debug("Execute",
			slog.String("pc", hex(m.pc)),
			slog.String("inst", fmt.Sprintf("%08x", inst.raw)),
		)
	}

	nextPC, err := m.execute(inst)
	if err != nil {
		return err
	}

	m.pc = nextPC
	m.steps++

	return nil
}

// Run executes instructions until the program exits, an instruction fails or
// the context is cancelled. Memory faults are delivered to the trap table.
// If the disposition returns nil, the faulting instruction is executed
// again. Otherwise, its error is returned.
//
// It returns the exit status of the program.
func (m *Machine) Run(ctx context.Context) (int, error) {
	var lastFault *mem.Fault

	for !m.exited {
		if m.maxSteps > 0 && m.steps >= m.maxSteps {
			return 0, fmt.Errorf("%w: %d", ErrStepLimit, m.maxSteps)
		}

		if m.steps%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return 0, err //nolint:wrapcheck
			}
		}

		err := m.Step()
		if err == nil {
			lastFault = nil
			continue
		}

		var fault *mem.Fault
		if !errors.As(err, &fault) {
			return 0, err
		}

		if lastFault != nil && *lastFault == *fault {
			return 0, fmt.Errorf("%w: %w", ErrFaultLoop, fault)
		}

		lastFault = fault

		err = m.table.Deliver(fault)
		if err != nil {
			return 0, err //nolint:wrapcheck
		}
	}

	return m.status, nil
}

func hex(v uint32) string {
	return "0x" + strconv.FormatUint(uint64(v), 16)
}
