// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cpu

import (
	"encoding/binary"
	"math"

	"github.com/aibor/pagerun/internal/trap"
	"golang.org/x/sys/unix"
)

// execute runs a decoded instruction and returns the next program counter.
// Registers are only written after all memory accesses succeeded.
func (m *Machine) execute(inst decoded) (uint32, error) {
	nextPC := m.pc + instSize

	switch inst.opcode {
	case opLUI:
		m.SetReg(inst.rd, uint32(immU(inst.raw)))
	case opAUIPC:
		m.SetReg(inst.rd, m.pc+uint32(immU(inst.raw)))
	case opJAL:
		target := m.pc + uint32(immJ(inst.raw))
		if err := m.checkTarget(target); err != nil {
			return 0, err
		}

		m.SetReg(inst.rd, nextPC)
		nextPC = target
	case opJALR:
		if inst.funct3 != 0 {
			return 0, m.illegal()
		}

		target := (m.Reg(inst.rs1) + uint32(immI(inst.raw))) &^ 1
		if err := m.checkTarget(target); err != nil {
			return 0, err
		}

		m.SetReg(inst.rd, nextPC)
		nextPC = target
	case opBranch:
		taken, ok := branch(inst.funct3, m.Reg(inst.rs1), m.Reg(inst.rs2))
		if !ok {
			return 0, m.illegal()
		}

		if taken {
			target := m.pc + uint32(immB(inst.raw))
			if err := m.checkTarget(target); err != nil {
				return 0, err
			}

			nextPC = target
		}
	case opLoad:
		return nextPC, m.load(inst)
	case opStore:
		return nextPC, m.store(inst)
	case opImm:
		value, ok := aluImm(inst.funct3, inst.raw, m.Reg(inst.rs1))
		if !ok {
			return 0, m.illegal()
		}

		m.SetReg(inst.rd, value)
	case opReg:
		value, ok := alu(inst.funct7, inst.funct3, m.Reg(inst.rs1), m.Reg(inst.rs2))
		if !ok {
			return 0, m.illegal()
		}

		m.SetReg(inst.rd, value)
	case opFence:
		// Single hart, nothing to order.
	case opSystem:
		switch inst.raw {
		case instECALL:
			return nextPC, m.syscall()
		case instEBREAK:
			return 0, &trap.Termination{Signal: unix.SIGTRAP, Addr: uint64(m.pc)}
		default:
			return 0, m.illegal()
		}
	default:
		return 0, m.illegal()
	}

	return nextPC, nil
}

func (m *Machine) illegal() error {
	return &trap.Termination{Signal: unix.SIGILL, Addr: uint64(m.pc)}
}

func (m *Machine) checkTarget(target uint32) error {
	if target%instSize != 0 {
		return &trap.Termination{Signal: unix.SIGBUS, Addr: uint64(m.pc)}
	}

	return nil
}

func (m *Machine) load(inst decoded) error {
	addr := m.Reg(inst.rs1) + uint32(immI(inst.raw))

	var size int

	switch inst.funct3 {
	case 0x0, 0x4: // LB, LBU
		size = 1
	case 0x1, 0x5: // LH, LHU
		size = 2
	case 0x2: // LW
		size = 4
	default:
		return m.illegal()
	}

	var buf [4]byte

	err := m.memory.Read(uint64(addr), buf[:size])
	if err != nil {
		return err //nolint:wrapcheck
	}

	raw := binary.LittleEndian.Uint32(buf[:])

	var value uint32

	switch inst.funct3 {
	case 0x0:
		value = uint32(int32(int8(raw)))
	case 0x1:
		value = uint32(int32(int16(raw)))
	case 0x2, 0x4, 0x5:
		value = raw
	}

	m.SetReg(inst.rd, value)

	return nil
}

func (m *Machine) store(inst decoded) error {
	addr := m.Reg(inst.rs1) + uint32(immS(inst.raw))

	var size int

	switch inst.funct3 {
	case 0x0: // SB
		size = 1
	case 0x1: // SH
		size = 2
	case 0x2: // SW
		size = 4
	default:
		return m.illegal()
	}

	var buf [4]byte

	binary.LittleEndian.PutUint32(buf[:], m.Reg(inst.rs2))

	return m.memory.Write(uint64(addr), buf[:size]) //nolint:wrapcheck
}

func branch(funct3, a, b uint32) (bool, bool) {
	switch funct3 {
	case 0x0: // BEQ
		return a == b, true
	case 0x1: // BNE
		return a != b, true
	case 0x4: // BLT
		return int32(a) < int32(b), true
	case 0x5: // BGE
		return int32(a) >= int32(b), true
	case 0x6: // BLTU
		return a < b, true
	case 0x7: // BGEU
		return a >= b, true
	default:
		return false, false
	}
}

func aluImm(funct3, raw, a uint32) (uint32, bool) {
	imm := uint32(immI(raw))
	shamt := imm & 0x1f
	funct7 := raw >> 25

	switch funct3 {
	case 0x0: // ADDI
		return a + imm, true
	case 0x2: // SLTI
		return boolToUint(int32(a) < int32(imm)), true
	case 0x3: // SLTIU
		return boolToUint(a < imm), true
	case 0x4: // XORI
		return a ^ imm, true
	case 0x6: // ORI
		return a | imm, true
	case 0x7: // ANDI
		return a & imm, true
	case 0x1: // SLLI
		if funct7 == funct7Base {
			return a << shamt, true
		}
	case 0x5:
		switch funct7 {
		case funct7Base: // SRLI
			return a >> shamt, true
		case funct7Alt: // SRAI
			return uint32(int32(a) >> shamt), true
		}
	}

	return 0, false
}

func alu(funct7, funct3, a, b uint32) (uint32, bool) {
	switch funct7 {
	case funct7Base:
		switch funct3 {
		case 0x0: // ADD
			return a + b, true
		case 0x1: // SLL
			return a << (b & 0x1f), true
		case 0x2: // SLT
			return boolToUint(int32(a) < int32(b)), true
		case 0x3: // SLTU
			return boolToUint(a < b), true
		case 0x4: // XOR
			return a ^ b, true
		case 0x5: // SRL
			return a >> (b & 0x1f), true
		case 0x6: // OR
			return a | b, true
		case 0x7: // AND
			return a & b, true
		}
	case funct7Alt:
		switch funct3 {
		case 0x0: // SUB
			return a - b, true
		case 0x5: // SRA
			return uint32(int32(a) >> (b & 0x1f)), true
		}
	case funct7Mul:
		return mul(funct3, a, b), true
	}

	return 0, false
}

// mul implements the M extension. Division by zero and overflow do not trap.
func mul(funct3, a, b uint32) uint32 {
	switch funct3 {
	case 0x0: // MUL
		return a * b
	case 0x1: // MULH
		return uint32(uint64(int64(int32(a))*int64(int32(b))) >> 32)
	case 0x2: // MULHSU
		return uint32(uint64(int64(int32(a))*int64(b)) >> 32)
	case 0x3: // MULHU
		return uint32((uint64(a) * uint64(b)) >> 32)
	case 0x4: // DIV
		switch {
		case b == 0:
			return math.MaxUint32
		case int32(a) == math.MinInt32 && int32(b) == -1:
			return a
		default:
			return uint32(int32(a) / int32(b))
		}
	case 0x5: // DIVU
		if b == 0 {
			return math.MaxUint32
		}

		return a / b
	case 0x6: // REM
		switch {
		case b == 0:
			return a
		case int32(a) == math.MinInt32 && int32(b) == -1:
			return 0
		default:
			return uint32(int32(a) % int32(b))
		}
	default: // REMU
		if b == 0 {
			return a
		}

		return a % b
	}
}

func boolToUint(b bool) uint32 {
	if b {
		return 1
	}

	return 0
}
