// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cpu

import "encoding/binary"

// Instruction encoders for building test programs.

// EncR encodes an R-type instruction.
func EncR(opcode, funct3, funct7 uint32, rd, rs1, rs2 Reg) uint32 {
	return funct7<<25 | uint32(rs2)<<20 | uint32(rs1)<<15 | funct3<<12 | uint32(rd)<<7 | opcode
}

// EncI encodes an I-type instruction with a 12 bit signed immediate.
func EncI(opcode, funct3 uint32, rd, rs1 Reg, imm int32) uint32 {
	return (uint32(imm)&0xfff)<<20 | uint32(rs1)<<15 | funct3<<12 | uint32(rd)<<7 | opcode
}

// EncS encodes an S-type instruction with a 12 bit signed immediate.
func EncS(opcode, funct3 uint32, rs1, rs2 Reg, imm int32) uint32 {
	u := uint32(imm) & 0xfff

	return (u>>5)<<25 | uint32(rs2)<<20 | uint32(rs1)<<15 | funct3<<12 | (u&0x1f)<<7 | opcode
}

// EncB encodes a B-type instruction with a 13 bit signed, even immediate.
func EncB(opcode, funct3 uint32, rs1, rs2 Reg, imm int32) uint32 {
	u := uint32(imm)

	return ((u>>12)&1)<<31 | ((u>>5)&0x3f)<<25 | uint32(rs2)<<20 | uint32(rs1)<<15 |
		funct3<<12 | ((u>>1)&0xf)<<8 | ((u>>11)&1)<<7 | opcode
}

// EncU encodes a U-type instruction. imm20 are the upper 20 bits.
func EncU(opcode uint32, rd Reg, imm20 uint32) uint32 {
	return (imm20&0xfffff)<<12 | uint32(rd)<<7 | opcode
}

// EncJ encodes a J-type instruction with a 21 bit signed, even immediate.
func EncJ(opcode uint32, rd Reg, imm int32) uint32 {
	u := uint32(imm)

	return ((u>>20)&1)<<31 | ((u>>1)&0x3ff)<<21 | ((u>>11)&1)<<20 |
		((u>>12)&0xff)<<12 | uint32(rd)<<7 | opcode
}

// Assembler helpers for the instructions used by test programs. Operands
// follow assembly order.

func LUI(rd Reg, imm20 uint32) uint32 { return EncU(opLUI, rd, imm20) }
func AUIPC(rd Reg, imm20 uint32) uint32 { return EncU(opAUIPC, rd, imm20) }
func ADDI(rd, rs1 Reg, imm int32) uint32 { return EncI(opImm, 0x0, rd, rs1, imm) }
func ANDI(rd, rs1 Reg, imm int32) uint32 { return EncI(opImm, 0x7, rd, rs1, imm) }
func SLLI(rd, rs1 Reg, shamt int32) uint32 { return EncI(opImm, 0x1, rd, rs1, shamt) }
func SRAI(rd, rs1 Reg, shamt int32) uint32 { return EncI(opImm, 0x5, rd, rs1, shamt|0x400) }
func ADD(rd, rs1, rs2 Reg) uint32 { return EncR(opReg, 0x0, funct7Base, rd, rs1, rs2) }
func SUB(rd, rs1, rs2 Reg) uint32 { return EncR(opReg, 0x0, funct7Alt, rd, rs1, rs2) }
func MUL(rd, rs1, rs2 Reg) uint32 { return EncR(opReg, 0x0, funct7Mul, rd, rs1, rs2) }
func DIV(rd, rs1, rs2 Reg) uint32 { return EncR(opReg, 0x4, funct7Mul, rd, rs1, rs2) }
func REMU(rd, rs1, rs2 Reg) uint32 { return EncR(opReg, 0x7, funct7Mul, rd, rs1, rs2) }
func LB(rd, rs1 Reg, imm int32) uint32 { return EncI(opLoad, 0x0, rd, rs1, imm) }
func LBU(rd, rs1 Reg, imm int32) uint32 { return EncI(opLoad, 0x4, rd, rs1, imm) }
func LH(rd, rs1 Reg, imm int32) uint32 { return EncI(opLoad, 0x1, rd, rs1, imm) }
func LW(rd, rs1 Reg, imm int32) uint32 { return EncI(opLoad, 0x2, rd, rs1, imm) }
func SB(rs2, rs1 Reg, imm int32) uint32 { return EncS(opStore, 0x0, rs1, rs2, imm) }
func SW(rs2, rs1 Reg, imm int32) uint32 { return EncS(opStore, 0x2, rs1, rs2, imm) }
func BEQ(rs1, rs2 Reg, imm int32) uint32 { return EncB(opBranch, 0x0, rs1, rs2, imm) }
func BNE(rs1, rs2 Reg, imm int32) uint32 { return EncB(opBranch, 0x1, rs1, rs2, imm) }
func BLT(rs1, rs2 Reg, imm int32) uint32 { return EncB(opBranch, 0x4, rs1, rs2, imm) }
func JAL(rd Reg, imm int32) uint32 { return EncJ(opJAL, rd, imm) }
func JALR(rd, rs1 Reg, imm int32) uint32 { return EncI(opJALR, 0x0, rd, rs1, imm) }
func ECALL() uint32 { return instECALL }
func EBREAK() uint32 { return instEBREAK }

// LI returns the instructions loading the 32 bit value into rd.
func LI(rd Reg, value uint32) []uint32 {
	low := signExtend(value&0xfff, 12)
	high := (value - uint32(low)) >> 12

	if high == 0 {
		return []uint32{ADDI(rd, Zero, low)}
	}

	return []uint32{LUI(rd, high), ADDI(rd, rd, low)}
}

// Program returns the little endian encoding of the instructions.
func Program(insts ...[]uint32) []byte {
	var code []byte

	for _, group := range insts {
		for _, inst := range group {
			code = binary.LittleEndian.AppendUint32(code, inst)
		}
	}

	return code
}

// Ops groups single instructions for [Program].
func Ops(insts ...uint32) []uint32 {
	return insts
}
