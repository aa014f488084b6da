// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package mem

import "fmt"

// Code is the reason of a [Fault]. The values match the si_code values of a
// SIGSEGV on Linux.
type Code int

const (
	// CodeMapErr is set if the faulting address has no page.
	CodeMapErr Code = 1
	// CodeAccErr is set if the faulting address has a page, but its
	// protection does not allow the access.
	CodeAccErr Code = 2
)

func (c Code) String() string {
	switch c {
	case CodeMapErr:
		return "address not mapped"
	case CodeAccErr:
		return "invalid permissions"
	default:
		return fmt.Sprintf("code %d", int(c))
	}
}

// Fault is an invalid guest memory access.
type Fault struct {
	Addr   uint64
	Access Access
	Code   Code
}

// Error implements the [error] interface.
func (f *Fault) Error() string {
	return fmt.Sprintf("%s fault at %#x: %s", f.Access, f.Addr, f.Code)
}

// Is implements the [errors.Is] interface.
func (*Fault) Is(other error) bool {
	_, ok := other.(*Fault)
	return ok
}
