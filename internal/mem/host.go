// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package mem

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Mapper provides the host memory pages are backed by.
type Mapper interface {
	// Map returns a fresh zero initialized writable mapping of the given
	// length.
	Map(length int) ([]byte, error)
	// Protect changes the protection of the given mapping.
	Protect(b []byte, prot Prot) error
	// Unmap releases the given mapping.
	Unmap(b []byte) error
}

// HostMapper is a [Mapper] using anonymous private mappings of the host.
type HostMapper struct{}

var _ Mapper = HostMapper{}

// Map implements [Mapper].
func (HostMapper) Map(length int) ([]byte, error) {
	b, err := unix.Mmap(
		-1,
		0,
		length,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_ANON|unix.MAP_PRIVATE,
	)
	if err != nil {
		return nil, fmt.Errorf("mmap: %w", err)
	}

	return b, nil
}

// Protect implements [Mapper].
//
// The host mapping keeps read access in any case.
func (HostMapper) Protect(b []byte, prot Prot) error {
	hostProt := unix.PROT_READ
	if prot&ProtWrite != 0 {
		hostProt |= unix.PROT_WRITE
	}

	err := unix.Mprotect(b, hostProt)
	if err != nil {
		return fmt.Errorf("mprotect: %w", err)
	}

	return nil
}

// Unmap implements [Mapper].
func (HostMapper) Unmap(b []byte) error {
	err := unix.Munmap(b)
	if err != nil {
		return fmt.Errorf("munmap: %w", err)
	}

	return nil
}

// HostPageSize returns the page size of the host.
func HostPageSize() uint64 {
	return uint64(unix.Getpagesize())
}
