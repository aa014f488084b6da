// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package mem

// HeapMapper is a [Mapper] backed by Go heap memory. The errors, if set, are
// returned by the respective methods. It is intended for tests.
type HeapMapper struct {
	MapErr     error
	ProtectErr error
	UnmapErr   error
}

var _ Mapper = (*HeapMapper)(nil)

// Map implements [Mapper].
func (m *HeapMapper) Map(length int) ([]byte, error) {
	if m.MapErr != nil {
		return nil, m.MapErr
	}

	return make([]byte, length), nil
}

// Protect implements [Mapper].
func (m *HeapMapper) Protect(_ []byte, _ Prot) error {
	return m.ProtectErr
}

// Unmap implements [Mapper].
func (m *HeapMapper) Unmap(_ []byte) error {
	return m.UnmapErr
}
