// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package exe

// Parser produces a [Descriptor] for the executable at the given path.
type Parser interface {
	Parse(path string) (*Descriptor, error)
}

// ParserFunc is a function implementing [Parser].
type ParserFunc func(path string) (*Descriptor, error)

// Parse implements [Parser].
func (f ParserFunc) Parse(path string) (*Descriptor, error) {
	return f(path)
}
