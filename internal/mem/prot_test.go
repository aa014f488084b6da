// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package mem_test

import (
	"testing"

	"github.com/aibor/pagerun/internal/mem"
	"github.com/stretchr/testify/assert"
)

func TestProt_String(t *testing.T) {
	tests := []struct {
		prot     mem.Prot
		expected string
	}{
		{mem.ProtNone, "---"},
		{mem.ProtRead, "r--"},
		{mem.ProtRead | mem.ProtExec, "r-x"},
		{mem.ProtRead | mem.ProtWrite, "rw-"},
		{mem.ProtRead | mem.ProtWrite | mem.ProtExec, "rwx"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.prot.String())
	}
}

func TestProt_Allows(t *testing.T) {
	rx := mem.ProtRead | mem.ProtExec

	assert.True(t, rx.Allows(mem.AccessRead))
	assert.True(t, rx.Allows(mem.AccessExec))
	assert.False(t, rx.Allows(mem.AccessWrite))
	assert.False(t, mem.ProtNone.Allows(mem.AccessRead))
	assert.False(t, rx.Allows(mem.Access(0)))
}

func TestFault_Error(t *testing.T) {
	fault := &mem.Fault{
		Addr:   0x401800,
		Access: mem.AccessWrite,
		Code:   mem.CodeAccErr,
	}

	assert.Equal(t, "write fault at 0x401800: invalid permissions", fault.Error())
	assert.ErrorIs(t, fault, &mem.Fault{})
	assert.NotErrorIs(t, assert.AnError, &mem.Fault{})
}
