// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cpu

// Reg is an integer register number.
type Reg uint32

// ABI register names.
const (
	Zero Reg = iota
	RA
	SP
	GP
	TP
	T0
	T1
	T2
	S0
	S1
	A0
	A1
	A2
	A3
	A4
	A5
	A6
	A7
)

const instSize = 4

// Major opcodes.
const (
	opLoad   = 0x03
	opFence  = 0x0f
	opImm    = 0x13
	opAUIPC  = 0x17
	opStore  = 0x23
	opReg    = 0x33
	opLUI    = 0x37
	opBranch = 0x63
	opJALR   = 0x67
	opJAL    = 0x6f
	opSystem = 0x73
)

const (
	instECALL  = 0x00000073
	instEBREAK = 0x00100073
)

const (
	funct7Base = 0x00
	funct7Alt  = 0x20
	funct7Mul  = 0x01
)

func signExtend(v uint32, bits uint) int32 {
	shift := 32 - bits
	return int32(v<<shift) >> shift //nolint:gosec
}

func immI(inst uint32) int32 {
	return signExtend(inst>>20, 12)
}

func immS(inst uint32) int32 {
	low := (inst >> 7) & 0x1f
	high := (inst >> 25) & 0x7f

	return signExtend((high<<5)|low, 12)
}

// immB decodes imm[12|10:5|4:1|11].
func immB(inst uint32) int32 {
	imm := ((inst>>31)&1)<<12 |
		((inst>>25)&0x3f)<<5 |
		((inst>>8)&0xf)<<1 |
		((inst>>7)&1)<<11

	return signExtend(imm, 13)
}

func immU(inst uint32) int32 {
	return int32(inst & 0xfffff000) //nolint:gosec
}

// immJ decodes imm[20|10:1|11|19:12].
func immJ(inst uint32) int32 {
	imm := ((inst>>31)&1)<<20 |
		((inst>>21)&0x3ff)<<1 |
		((inst>>20)&1)<<11 |
		((inst>>12)&0xff)<<12

	return signExtend(imm, 21)
}

type decoded struct {
	raw    uint32
	opcode uint32
	rd     Reg
	funct3 uint32
	rs1    Reg
	rs2    Reg
	funct7 uint32
}

func decode(inst uint32) decoded {
	return decoded{
		raw:    inst,
		opcode: inst & 0x7f,
		rd:     Reg((inst >> 7) & 0x1f),
		funct3: (inst >> 12) & 0x7,
		rs1:    Reg((inst >> 15) & 0x1f),
		rs2:    Reg((inst >> 20) & 0x1f),
		funct7: (inst >> 25) & 0x7f,
	}
}
