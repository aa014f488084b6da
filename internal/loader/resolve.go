// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package loader

import (
	"log/slog"
	"strconv"

	"github.com/aibor/pagerun/internal/mem"
	"github.com/aibor/pagerun/internal/trap"
	"github.com/dustin/go-humanize"
)

// resolve is the fault disposition of the loader.
//
// Faults outside of all segments, access violations and faults on pages
// already resolved are passed to the fallback. Otherwise, the page is mapped,
// populated and protected. A nil return resumes the program.
func (l *Loader) resolve(fault *mem.Fault) error {
	segIdx, found := l.desc.Lookup(fault.Addr)
	if !found {
		return l.delegate(fault, "outside of segments")
	}

	if fault.Code == mem.CodeAccErr {
		return l.delegate(fault, "access violation")
	}

	segment := l.desc.Segments[segIdx]
	pageSize := l.space.PageSize()
	pageAddr := l.space.AlignDown(fault.Addr)
	pageIdx := (pageAddr - l.space.AlignDown(segment.Base)) / pageSize

	if l.resolved[segIdx].Test(uint(pageIdx)) {
		return l.delegate(fault, "page already resolved")
	}

	page, err := l.space.Map(pageAddr)
	if err != nil {
		return l.fatal(fault, "map page", err)
	}

	// File backed bytes of the page. Only the first and last page of a
	// segment may be partially file backed.
	fileStart := max(pageAddr, segment.Base)
	fileEnd := min(pageAddr+pageSize, segment.Base+segment.FileSize)

	var fileLen uint64
	if fileEnd > fileStart {
		fileLen = fileEnd - fileStart
		fileOff := segment.Offset + (fileStart - segment.Base)

		err := page.Fill(int(fileStart-pageAddr), l.file, int64(fileOff), int(fileLen))
		if err != nil {
			return l.fatal(fault, "read file", err)
		}
	}

	err = l.space.Protect(pageAddr, segment.Perm)
	if err != nil {
		return l.fatal(fault, "protect page", err)
	}

	l.resolved[segIdx].Set(uint(pageIdx))

	l.metrics.faults.WithLabelValues(resultResolved).Inc()
	l.metrics.fileBytesRead.Add(float64(fileLen))

	if fileLen == 0 {
		l.metrics.zeroFilledPages.Inc()
	}

	slog.Debug("Resolved page",
		slog.String("addr", hex(pageAddr)),
		slog.String("segment", segment.String()),
		slog.Uint64("page", pageIdx),
		slog.String("file_bytes", humanize.IBytes(fileLen)),
	)

	return nil
}

func (l *Loader) delegate(fault *mem.Fault, reason string) error {
	l.metrics.faults.WithLabelValues(resultDelegated).Inc()

	slog.Debug("Delegate fault",
		slog.String("addr", hex(fault.Addr)),
		slog.String("access", fault.Access.String()),
		slog.String("reason", reason),
	)

	fallback := l.fallback
	if fallback == nil {
		fallback = trap.Default
	}

	return fallback.HandleFault(fault)
}

func (l *Loader) fatal(fault *mem.Fault, op string, err error) error {
	l.metrics.faults.WithLabelValues(resultFatal).Inc()

	return &FatalError{
		Addr: fault.Addr,
		Op:   op,
		Err:  err,
	}
}

func hex(addr uint64) string {
	return "0x" + strconv.FormatUint(addr, 16)
}
