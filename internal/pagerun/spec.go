// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package pagerun

import (
	"github.com/aibor/pagerun/internal/exe"
	"github.com/aibor/pagerun/internal/mem"
)

// DefaultStackSize is the stack size used if [Spec.StackSize] is 0.
const DefaultStackSize = 64 << 10

// Spec describes a single [Run].
type Spec struct {
	// Executable is the path of the program. It is passed as argv[0].
	Executable string
	// Args are the program arguments following argv[0].
	Args []string
	// Env is the program environment in "key=value" form.
	Env []string
	// PageSize is the paging granularity. 0 means host page size.
	PageSize uint64
	// StackSize is the size of the initial stack in bytes.
	StackSize uint64
	// MaxSteps limits the number of executed instructions. 0 means no limit.
	MaxSteps uint64
	// Trace logs each executed instruction at debug level.
	Trace bool
	// PageDump is the path of the cpio archive of all resolved pages written
	// after the program stopped. Empty disables it.
	PageDump string
	// MetricsFile is the path the loader metrics are written to in
	// Prometheus text format after the program stopped. Empty disables it.
	MetricsFile string

	// Parser defaults to [exe.ELFParser].
	Parser exe.Parser
	// Mapper defaults to [mem.HostMapper].
	Mapper mem.Mapper
}

func (s *Spec) parser() exe.Parser {
	if s.Parser == nil {
		return exe.ELFParser{}
	}

	return s.Parser
}

func (s *Spec) spaceOptions() []mem.Option {
	var opts []mem.Option

	if s.PageSize != 0 {
		opts = append(opts, mem.WithPageSize(s.PageSize))
	}

	if s.Mapper != nil {
		opts = append(opts, mem.WithMapper(s.Mapper))
	}

	return opts
}

func (s *Spec) stackSize() uint64 {
	if s.StackSize == 0 {
		return DefaultStackSize
	}

	return s.StackSize
}
