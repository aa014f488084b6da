// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cpu_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/aibor/pagerun/internal/cpu"
	"github.com/aibor/pagerun/internal/mem"
	"github.com/aibor/pagerun/internal/trap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

const (
	pageSize = 0x100
	textAddr = 0x10000
	dataAddr = 0x20000
)

type env struct {
	space   *mem.Space
	table   *trap.Table
	machine *cpu.Machine
	stdout  *bytes.Buffer
}

func newEnv(t *testing.T, code []byte, opts ...cpu.Option) *env {
	t.Helper()

	space, err := mem.NewSpace(mem.WithPageSize(pageSize), mem.WithMapper(&mem.HeapMapper{}))
	require.NoError(t, err)

	textLen := (uint64(len(code)) + pageSize - 1) &^ (pageSize - 1)
	require.NoError(t, space.MapRange(textAddr, textLen, mem.ProtRead|mem.ProtWrite))
	require.NoError(t, space.Write(textAddr, code))

	for addr := uint64(textAddr); addr < textAddr+textLen; addr += pageSize {
		require.NoError(t, space.Protect(addr, mem.ProtRead|mem.ProtExec))
	}

	require.NoError(t, space.MapRange(dataAddr, pageSize, mem.ProtRead|mem.ProtWrite))

	stdout := &bytes.Buffer{}
	table := trap.NewTable()

	opts = append([]cpu.Option{cpu.WithFile(1, stdout)}, opts...)

	machine, err := cpu.New(space, table, textAddr, opts...)
	require.NoError(t, err)

	return &env{
		space:   space,
		table:   table,
		machine: machine,
		stdout:  stdout,
	}
}

func exit(status uint32) []uint32 {
	return append(cpu.LI(cpu.A0, status), cpu.ADDI(cpu.A7, cpu.Zero, 93), cpu.ECALL())
}

func TestMachine_Run(t *testing.T) {
	tests := []struct {
		name     string
		code     []byte
		expected int
	}{
		{
			name:     "exit status",
			code:     cpu.Program(exit(42)),
			expected: 42,
		},
		{
			name: "exit status is truncated",
			code: cpu.Program(
				cpu.LI(cpu.A0, 0x1ff),
				cpu.Ops(cpu.ADDI(cpu.A7, cpu.Zero, 94), cpu.ECALL()),
			),
			expected: 0xff,
		},
		{
			name: "loop sum",
			// a0 = 1 + 2 + ... + 10
			code: cpu.Program(
				cpu.Ops(
					cpu.ADDI(cpu.A0, cpu.Zero, 0),
					cpu.ADDI(cpu.T0, cpu.Zero, 10),
					cpu.ADD(cpu.A0, cpu.A0, cpu.T0),
					cpu.ADDI(cpu.T0, cpu.T0, -1),
					cpu.BNE(cpu.T0, cpu.Zero, -8),
					cpu.ADDI(cpu.A7, cpu.Zero, 93),
					cpu.ECALL(),
				),
			),
			expected: 55,
		},
		{
			name: "store and load",
			code: cpu.Program(
				cpu.LI(cpu.T0, dataAddr),
				cpu.LI(cpu.T1, 0xfffffff9),
				cpu.Ops(
					cpu.SW(cpu.T1, cpu.T0, 8),
					cpu.LB(cpu.T2, cpu.T0, 8),
					cpu.LBU(cpu.A0, cpu.T0, 8),
					cpu.ADD(cpu.A0, cpu.A0, cpu.T2),
					cpu.ADDI(cpu.A7, cpu.Zero, 93),
					cpu.ECALL(),
				),
			),
			// 0xf9 + -7
			expected: 242,
		},
		{
			name: "call and return",
			code: cpu.Program(
				cpu.Ops(
					cpu.ADDI(cpu.A0, cpu.Zero, 6),
					cpu.JAL(cpu.RA, 16),
					cpu.ADDI(cpu.A7, cpu.Zero, 93),
					cpu.ECALL(),
					cpu.EBREAK(),
					cpu.ADDI(cpu.T0, cpu.Zero, 7),
					cpu.MUL(cpu.A0, cpu.A0, cpu.T0),
					cpu.JALR(cpu.Zero, cpu.RA, 0),
				),
			),
			expected: 42,
		},
		{
			name: "auipc",
			code: cpu.Program(
				cpu.Ops(
					cpu.AUIPC(cpu.T0, 0),
					cpu.LI(cpu.T1, textAddr)[0],
					cpu.SUB(cpu.A0, cpu.T0, cpu.T1),
					cpu.ADDI(cpu.A0, cpu.A0, 3),
					cpu.ADDI(cpu.A7, cpu.Zero, 93),
					cpu.ECALL(),
				),
			),
			expected: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newEnv(t, tt.code)

			status, err := env.machine.Run(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.expected, status)

			exited, exitStatus := env.machine.Exited()
			assert.True(t, exited)
			assert.Equal(t, tt.expected, exitStatus)
		})
	}
}

func TestMachine_Syscalls(t *testing.T) {
	message := []byte("hello\n")

	code := cpu.Program(
		// Store message in data page.
		cpu.LI(cpu.T0, dataAddr),
		storeBytes(message),
		// write(1, data, len)
		cpu.Ops(
			cpu.ADDI(cpu.A0, cpu.Zero, 1),
			cpu.ADDI(cpu.A1, cpu.T0, 0),
			cpu.ADDI(cpu.A2, cpu.Zero, int32(len(message))),
			cpu.ADDI(cpu.A7, cpu.Zero, 64),
			cpu.ECALL(),
			cpu.ADDI(cpu.S0, cpu.A0, 0),
		),
		// write(5, data, len)
		cpu.Ops(
			cpu.ADDI(cpu.A0, cpu.Zero, 5),
			cpu.ADDI(cpu.A7, cpu.Zero, 64),
			cpu.ECALL(),
			cpu.ADDI(cpu.S1, cpu.A0, 0),
		),
		// getpid
		cpu.Ops(
			cpu.ADDI(cpu.A7, cpu.Zero, 172),
			cpu.ECALL(),
			cpu.ADDI(cpu.A3, cpu.A0, 0),
			cpu.EBREAK(),
		),
	)

	env := newEnv(t, code)

	_, err := env.machine.Run(context.Background())

	var termination *trap.Termination
	require.ErrorAs(t, err, &termination)
	assert.Equal(t, unix.SIGTRAP, termination.Signal)

	assert.Equal(t, message, env.stdout.Bytes())
	assert.Equal(t, uint32(len(message)), env.machine.Reg(cpu.S0))
	assert.Equal(t, uint32(0xffffffff)-uint32(unix.EBADF)+1, env.machine.Reg(cpu.S1))
	assert.Equal(t, uint32(0xffffffff)-uint32(unix.ENOSYS)+1, env.machine.Reg(cpu.A3))
}

func storeBytes(data []byte) []uint32 {
	var insts []uint32

	for idx, b := range data {
		insts = append(insts,
			cpu.ADDI(cpu.T1, cpu.Zero, int32(b)),
			cpu.SB(cpu.T1, cpu.T0, int32(idx)),
		)
	}

	return insts
}

func TestMachine_StepFaultCommitsNothing(t *testing.T) {
	const unmapped = 0x30000

	tests := []struct {
		name string
		code []uint32
	}{
		{
			name: "load",
			code: cpu.LI(cpu.T0, unmapped),
		},
		{
			name: "store",
			code: cpu.LI(cpu.T0, unmapped),
		},
	}

	tests[0].code = append(tests[0].code, cpu.LW(cpu.T0, cpu.T0, 4))
	tests[1].code = append(tests[1].code, cpu.SW(cpu.T0, cpu.T0, 4))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newEnv(t, cpu.Program(tt.code))

			for range len(tt.code) - 1 {
				require.NoError(t, env.machine.Step())
			}

			pc := env.machine.PC()
			err := env.machine.Step()

			var fault *mem.Fault
			require.ErrorAs(t, err, &fault)
			assert.Equal(t, mem.CodeMapErr, fault.Code)
			assert.Equal(t, uint64(unmapped+4), fault.Addr)

			assert.Equal(t, pc, env.machine.PC())
			assert.Equal(t, uint32(unmapped), env.machine.Reg(cpu.T0))
			assert.Equal(t, uint64(len(tt.code)-1), env.machine.Steps())
		})
	}
}

func TestMachine_RunResumesAfterResolvedFault(t *testing.T) {
	const lazyAddr = 0x40000

	code := cpu.Program(
		cpu.LI(cpu.T0, lazyAddr),
		cpu.Ops(
			cpu.ADDI(cpu.T1, cpu.Zero, 21),
			// Store across the page boundary.
			cpu.SW(cpu.T1, cpu.T0, pageSize-2),
			cpu.LW(cpu.A0, cpu.T0, pageSize-2),
			cpu.ADD(cpu.A0, cpu.A0, cpu.A0),
			cpu.ADDI(cpu.A7, cpu.Zero, 93),
			cpu.ECALL(),
		),
	)

	env := newEnv(t, code)

	var faults []mem.Fault

	_, err := env.table.Install(trap.HandlerFunc(func(fault *mem.Fault) error {
		faults = append(faults, *fault)

		_, err := env.space.Map(env.space.AlignDown(fault.Addr))

		return err
	}))
	require.NoError(t, err)

	status, err := env.machine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, status)

	expected := []mem.Fault{
		{Addr: lazyAddr + pageSize - 2, Access: mem.AccessWrite, Code: mem.CodeMapErr},
		{Addr: lazyAddr + pageSize, Access: mem.AccessWrite, Code: mem.CodeMapErr},
	}
	assert.Equal(t, expected, faults)
}

func TestMachine_RunErrors(t *testing.T) {
	loop := cpu.Program(cpu.Ops(cpu.JAL(cpu.Zero, 0)))
	unmappedLoad := cpu.Program(cpu.LI(cpu.T0, 0x30000), cpu.Ops(cpu.LW(cpu.A0, cpu.T0, 0)))

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name        string
		code        []byte
		ctx         context.Context
		opts        []cpu.Option
		handler     trap.Handler
		expectedErr error
		signal      unix.Signal
	}{
		{
			name:        "step limit",
			code:        loop,
			opts:        []cpu.Option{cpu.WithMaxSteps(100)},
			expectedErr: cpu.ErrStepLimit,
		},
		{
			name:        "context cancelled",
			code:        loop,
			ctx:         cancelled,
			expectedErr: context.Canceled,
		},
		{
			name:   "unresolved fault",
			code:   unmappedLoad,
			signal: unix.SIGSEGV,
		},
		{
			name: "fault reported resolved but still faulting",
			code: unmappedLoad,
			handler: trap.HandlerFunc(func(*mem.Fault) error {
				return nil
			}),
			expectedErr: cpu.ErrFaultLoop,
		},
		{
			name: "disposition error",
			code: unmappedLoad,
			handler: trap.HandlerFunc(func(*mem.Fault) error {
				return assert.AnError
			}),
			expectedErr: assert.AnError,
		},
		{
			name:   "illegal instruction",
			code:   cpu.Program(cpu.Ops(0xffffffff)),
			signal: unix.SIGILL,
		},
		{
			name:   "misaligned jump",
			code:   cpu.Program(cpu.Ops(cpu.JAL(cpu.Zero, 6))),
			signal: unix.SIGBUS,
		},
		{
			name:   "execute data",
			code:   cpu.Program(cpu.LI(cpu.T0, dataAddr), cpu.Ops(cpu.JALR(cpu.Zero, cpu.T0, 0))),
			signal: unix.SIGSEGV,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newEnv(t, tt.code, tt.opts...)

			if tt.handler != nil {
				_, err := env.table.Install(tt.handler)
				require.NoError(t, err)
			}

			ctx := tt.ctx
			if ctx == nil {
				ctx = context.Background()
			}

			_, err := env.machine.Run(ctx)
			require.Error(t, err)

			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
			}

			if tt.signal != 0 {
				var termination *trap.Termination
				require.ErrorAs(t, err, &termination)
				assert.Equal(t, tt.signal, termination.Signal)
			}
		})
	}
}

func TestNew(t *testing.T) {
	space, err := mem.NewSpace(mem.WithMapper(&mem.HeapMapper{}))
	require.NoError(t, err)

	_, err = cpu.New(space, trap.NewTable(), 0x1_0000_0000)
	require.ErrorIs(t, err, cpu.ErrAddressRange)

	_, err = cpu.New(space, trap.NewTable(), 0x10002)
	require.ErrorIs(t, err, cpu.ErrMisalignedPC)

	machine, err := cpu.New(space, trap.NewTable(), 0x10000)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x10000), machine.PC())

	machine.SetReg(cpu.Zero, 5)
	assert.Zero(t, machine.Reg(cpu.Zero))
}

func TestMachine_WriteBufferFaults(t *testing.T) {
	const (
		lazyAddr    = 0x40000
		invalidAddr = 0x50000
	)

	message := []byte("lazy")

	code := cpu.Program(
		// write(1, lazyAddr, len) resolves the page on the way.
		cpu.LI(cpu.A1, lazyAddr),
		cpu.Ops(
			cpu.ADDI(cpu.A0, cpu.Zero, 1),
			cpu.ADDI(cpu.A2, cpu.Zero, int32(len(message))),
			cpu.ADDI(cpu.A7, cpu.Zero, 64),
			cpu.ECALL(),
			cpu.ADDI(cpu.S0, cpu.A0, 0),
		),
		// write(1, invalidAddr, len) fails, the program keeps running.
		cpu.LI(cpu.A1, invalidAddr),
		cpu.Ops(
			cpu.ADDI(cpu.A0, cpu.Zero, 1),
			cpu.ADDI(cpu.A7, cpu.Zero, 64),
			cpu.ECALL(),
			cpu.ADDI(cpu.S1, cpu.A0, 0),
		),
		exit(3),
	)

	env := newEnv(t, code)

	var faults []uint64

	_, err := env.table.Install(trap.HandlerFunc(func(fault *mem.Fault) error {
		faults = append(faults, fault.Addr)

		if fault.Addr != lazyAddr {
			return trap.Default.HandleFault(fault)
		}

		_, err := env.space.Map(lazyAddr)
		if err != nil {
			return err
		}

		return env.space.Write(lazyAddr, message)
	}))
	require.NoError(t, err)

	status, err := env.machine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, status)

	assert.Equal(t, message, env.stdout.Bytes())
	assert.Equal(t, uint32(len(message)), env.machine.Reg(cpu.S0))
	assert.Equal(t, uint32(0xffffffff)-uint32(unix.EFAULT)+1, env.machine.Reg(cpu.S1))
	assert.Equal(t, []uint64{lazyAddr, invalidAddr}, faults)
}

func TestMachine_WriteBufferFatalFault(t *testing.T) {
	code := cpu.Program(
		cpu.LI(cpu.A1, 0x40000),
		cpu.Ops(
			cpu.ADDI(cpu.A0, cpu.Zero, 1),
			cpu.ADDI(cpu.A2, cpu.Zero, 4),
			cpu.ADDI(cpu.A7, cpu.Zero, 64),
			cpu.ECALL(),
		),
		exit(0),
	)

	tests := []struct {
		name        string
		handler     trap.HandlerFunc
		expectedErr error
	}{
		{
			name: "handler error",
			handler: func(*mem.Fault) error {
				return assert.AnError
			},
			expectedErr: assert.AnError,
		},
		{
			name: "fault not resolved",
			handler: func(*mem.Fault) error {
				return nil
			},
			expectedErr: cpu.ErrFaultLoop,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newEnv(t, code)

			_, err := env.table.Install(tt.handler)
			require.NoError(t, err)

			_, err = env.machine.Run(context.Background())
			require.ErrorIs(t, err, tt.expectedErr)
			assert.Empty(t, env.stdout.Bytes())
		})
	}
}
