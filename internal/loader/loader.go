// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package loader

import (
	"io"

	"github.com/aibor/pagerun/internal/exe"
	"github.com/aibor/pagerun/internal/mem"
	"github.com/aibor/pagerun/internal/trap"
	"github.com/bits-and-blooms/bitset"
	"github.com/prometheus/client_golang/prometheus"
)

// Loader holds the state of a single program execution.
type Loader struct {
	desc     *exe.Descriptor
	file     io.ReaderAt
	space    *mem.Space
	table    *trap.Table
	fallback trap.Handler

	// installed stays set after Uninstall. A loader is installed only once.
	installed bool

	resolved []*bitset.BitSet
	metrics  *metrics
}

// Option configures a [Loader].
type Option func(*options)

type options struct {
	registerer prometheus.Registerer
}

// WithRegisterer registers the loader's metrics with the given registerer.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// New creates a loader for the given descriptor. Segment bytes are read from
// file and pages are mapped into space. The loader takes ownership of the
// descriptor. It is not active before [Loader.Install] is called.
func New(desc *exe.Descriptor, file io.ReaderAt, space *mem.Space, opts ...Option) *Loader {
	var opt options
	for _, fn := range opts {
		fn(&opt)
	}

	resolved := make([]*bitset.BitSet, len(desc.Segments))
	for idx, segment := range desc.Segments {
		resolved[idx] = bitset.New(uint(pageCount(segment, space.PageSize())))
	}

	return &Loader{
		desc:     desc,
		file:     file,
		space:    space,
		resolved: resolved,
		metrics:  newMetrics(opt.registerer),
	}
}

// Install registers the loader as fault disposition of the given table. The
// disposition active before becomes the fallback for all faults the loader
// does not resolve. It must be called once before the program is started.
// Any further call fails with [ErrAlreadyInstalled], even after
// [Loader.Uninstall].
func (l *Loader) Install(table *trap.Table) error {
	if l.installed {
		return &InstallError{Err: ErrAlreadyInstalled}
	}

	prev, err := table.Install(trap.HandlerFunc(l.resolve))
	if err != nil {
		return &InstallError{Err: err}
	}

	l.table = table
	l.fallback = prev
	l.installed = true

	return nil
}

// Uninstall restores the disposition that was active when the loader was
// installed.
func (l *Loader) Uninstall() error {
	if l.table == nil {
		return ErrNotInstalled
	}

	_, err := l.table.Install(l.fallback)
	if err != nil {
		return err //nolint:wrapcheck
	}

	l.table = nil

	return nil
}

// Descriptor returns the descriptor of the loaded program.
func (l *Loader) Descriptor() *exe.Descriptor {
	return l.desc
}

// Resolved returns the indices of the resolved pages of the segment with
// the given index, in ascending order.
func (l *Loader) Resolved(segment int) []uint64 {
	if segment < 0 || segment >= len(l.resolved) {
		return nil
	}

	var indices []uint64

	set := l.resolved[segment]
	for idx, ok := set.NextSet(0); ok; idx, ok = set.NextSet(idx + 1) {
		indices = append(indices, uint64(idx))
	}

	return indices
}

// ResolvedCount returns the number of resolved pages of all segments.
func (l *Loader) ResolvedCount() int {
	var count uint
	for _, set := range l.resolved {
		count += set.Count()
	}

	return int(count)
}

// pageCount returns the number of pages touched by the segment.
func pageCount(segment exe.Segment, pageSize uint64) uint64 {
	first := segment.Base &^ (pageSize - 1)
	end := (segment.End() + pageSize - 1) &^ (pageSize - 1)

	return (end - first) / pageSize
}
