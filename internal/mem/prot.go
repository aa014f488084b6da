// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package mem

// Prot is the protection of a page. It is a bit set of read, write and
// execute permission.
type Prot uint8

// Page protection bits.
const (
	ProtRead Prot = 1 << iota
	ProtWrite
	ProtExec

	ProtNone Prot = 0
)

// String returns the protection in the format used by /proc/self/maps.
func (p Prot) String() string {
	perm := []byte("---")

	if p&ProtRead != 0 {
		perm[0] = 'r'
	}

	if p&ProtWrite != 0 {
		perm[1] = 'w'
	}

	if p&ProtExec != 0 {
		perm[2] = 'x'
	}

	return string(perm)
}

// Allows returns true if the protection permits the given access.
func (p Prot) Allows(access Access) bool {
	switch access {
	case AccessRead:
		return p&ProtRead != 0
	case AccessWrite:
		return p&ProtWrite != 0
	case AccessExec:
		return p&ProtExec != 0
	default:
		return false
	}
}

// Access is the kind of a guest memory access.
type Access uint8

// Guest memory access kinds.
const (
	AccessRead Access = iota + 1
	AccessWrite
	AccessExec
)

func (a Access) String() string {
	switch a {
	case AccessRead:
		return "read"
	case AccessWrite:
		return "write"
	case AccessExec:
		return "exec"
	default:
		return "unknown"
	}
}
