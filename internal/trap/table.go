// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package trap

import "github.com/aibor/pagerun/internal/mem"

// Table holds the active fault disposition.
type Table struct {
	active Handler
}

// NewTable returns a table with [Default] as active disposition.
func NewTable() *Table {
	return &Table{
		active: Default,
	}
}

// Install makes the given handler the active disposition and returns the
// previously active one.
func (t *Table) Install(handler Handler) (Handler, error) {
	if t == nil {
		return nil, ErrNoTable
	}

	if handler == nil {
		return nil, ErrNilHandler
	}

	prev := t.Active()
	t.active = handler

	return prev, nil
}

// Active returns the active disposition.
func (t *Table) Active() Handler {
	if t.active == nil {
		return Default
	}

	return t.active
}

// Deliver passes the fault to the active disposition.
func (t *Table) Deliver(fault *mem.Fault) error {
	return t.Active().HandleFault(fault)
}
