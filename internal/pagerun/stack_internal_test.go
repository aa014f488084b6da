// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package pagerun

import (
	"encoding/binary"
	"testing"

	"github.com/aibor/pagerun/internal/exe"
	"github.com/aibor/pagerun/internal/mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readWord(t *testing.T, space *mem.Space, addr uint64) uint32 {
	t.Helper()

	buf := make([]byte, wordSize)
	require.NoError(t, space.Read(addr, buf))

	return binary.LittleEndian.Uint32(buf)
}

func readString(t *testing.T, space *mem.Space, addr uint64) string {
	t.Helper()

	var str []byte

	char := make([]byte, 1)
	for ; ; addr++ {
		require.NoError(t, space.Read(addr, char))

		if char[0] == 0 {
			return string(str)
		}

		str = append(str, char[0])
	}
}

func TestSetupStack(t *testing.T) {
	space, err := mem.NewSpace(mem.WithPageSize(0x100), mem.WithMapper(&mem.HeapMapper{}))
	require.NoError(t, err)

	layout := stackLayout{
		Args:     []string{"/bin/prog", "-v"},
		Env:      []string{"A=1"},
		Entry:    0x10074,
		Size:     0x180,
		Top:      0x80000,
		PageSize: 0x100,
	}

	sp, err := setupStack(space, &exe.Descriptor{}, layout)
	require.NoError(t, err)

	assert.Zero(t, sp%stackAlign, "aligned")
	assert.Equal(t, 2, space.Len(), "size rounded up to pages")

	page, exists := space.Page(0x80000 - 0x200)
	require.True(t, exists)
	assert.Equal(t, mem.ProtRead|mem.ProtWrite, page.Prot())

	assert.Equal(t, uint32(2), readWord(t, space, sp), "argc")
	assert.Equal(t, "/bin/prog", readString(t, space, uint64(readWord(t, space, sp+4))))
	assert.Equal(t, "-v", readString(t, space, uint64(readWord(t, space, sp+8))))
	assert.Zero(t, readWord(t, space, sp+12), "argv end")
	assert.Equal(t, "A=1", readString(t, space, uint64(readWord(t, space, sp+16))))
	assert.Zero(t, readWord(t, space, sp+20), "envp end")

	auxv := []uint32{atPageSz, 0x100, atEntry, 0x10074, atNull, 0}
	for idx, expected := range auxv {
		assert.Equal(t, expected, readWord(t, space, sp+24+uint64(idx)*wordSize), "auxv %d", idx)
	}
}

func TestSetupStack_Errors(t *testing.T) {
	tests := []struct {
		name        string
		desc        *exe.Descriptor
		layout      stackLayout
		expectedErr error
	}{
		{
			name: "overlap",
			desc: &exe.Descriptor{
				Segments: []exe.Segment{{Base: 0x7ff00, MemSize: 0x200}},
			},
			layout: stackLayout{
				Size: 0x100,
				Top:  0x80000,
			},
			expectedErr: ErrStackOverlap,
		},
		{
			name: "arguments too large",
			desc: &exe.Descriptor{},
			layout: stackLayout{
				Args: []string{string(make([]byte, 0x100))},
				Size: 0x100,
				Top:  0x80000,
			},
			expectedErr: ErrStackOverflow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			space, err := mem.NewSpace(mem.WithPageSize(0x100), mem.WithMapper(&mem.HeapMapper{}))
			require.NoError(t, err)

			_, err = setupStack(space, tt.desc, tt.layout)
			require.ErrorIs(t, err, tt.expectedErr)
			assert.Zero(t, space.Len())
		})
	}
}
