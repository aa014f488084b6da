// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package trap

import (
	"log/slog"

	"github.com/aibor/pagerun/internal/mem"
	"golang.org/x/sys/unix"
)

// Handler handles memory faults.
//
// A nil return value resumes the program at the faulting instruction. Any
// error stops the program.
type Handler interface {
	HandleFault(fault *mem.Fault) error
}

// HandlerFunc is a function implementing [Handler].
type HandlerFunc func(fault *mem.Fault) error

// HandleFault implements [Handler].
func (f HandlerFunc) HandleFault(fault *mem.Fault) error {
	return f(fault)
}

// Default is the disposition of a fresh [Table]. It terminates the program
// with SIGSEGV.
var Default Handler = defaultHandler{}

type defaultHandler struct{}

func (defaultHandler) HandleFault(fault *mem.Fault) error {
	slog.Debug("Terminate on fault",
		slog.String("fault", fault.Error()),
	)

	return &Termination{
		Signal: unix.SIGSEGV,
		Fault:  fault,
	}
}
