// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package mem

import (
	"errors"
	"fmt"
	"iter"
	"maps"
	"math/bits"
	"slices"
)

// MinPageSize is the smallest supported page size.
const MinPageSize = 64

// Space is a page indexed guest address space.
//
// It is not safe for concurrent use.
type Space struct {
	pageSize uint64
	mapper   Mapper
	pages    map[uint64]*Page
}

// Option configures a [Space].
type Option func(*Space)

// WithPageSize sets the page size. Default is the host page size.
func WithPageSize(size uint64) Option {
	return func(s *Space) {
		s.pageSize = size
	}
}

// WithMapper sets the [Mapper] pages are backed by. Default is
// [HostMapper].
func WithMapper(mapper Mapper) Option {
	return func(s *Space) {
		s.mapper = mapper
	}
}

// NewSpace creates a new empty address space.
func NewSpace(opts ...Option) (*Space, error) {
	space := &Space{
		pageSize: HostPageSize(),
		mapper:   HostMapper{},
		pages:    make(map[uint64]*Page),
	}

	for _, opt := range opts {
		opt(space)
	}

	if space.pageSize < MinPageSize || bits.OnesCount64(space.pageSize) != 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPageSize, space.pageSize)
	}

	return space, nil
}

// PageSize returns the page size of the address space.
func (s *Space) PageSize() uint64 {
	return s.pageSize
}

// AlignDown returns the address of the page the given address belongs to.
func (s *Space) AlignDown(addr uint64) uint64 {
	return addr &^ (s.pageSize - 1)
}

// Map creates a fresh zero initialized writable page at the given page
// aligned address.
func (s *Space) Map(addr uint64) (*Page, error) {
	if s.AlignDown(addr) != addr {
		return nil, fmt.Errorf("%w: %#x", ErrUnaligned, addr)
	}

	if _, exists := s.pages[addr]; exists {
		return nil, fmt.Errorf("%w: %#x", ErrAlreadyMapped, addr)
	}

	data, err := s.mapper.Map(int(s.pageSize))
	if err != nil {
		return nil, fmt.Errorf("map %#x: %w", addr, err)
	}

	page := &Page{
		addr: addr,
		prot: ProtRead | ProtWrite,
		data: data,
	}
	s.pages[addr] = page

	return page, nil
}

// MapRange eagerly maps all pages of the given range with the given
// protection. The start address must be page aligned.
func (s *Space) MapRange(addr, length uint64, prot Prot) error {
	end := addr + length
	for pageAddr := addr; pageAddr < end; pageAddr += s.pageSize {
		if _, err := s.Map(pageAddr); err != nil {
			return err
		}

		if err := s.Protect(pageAddr, prot); err != nil {
			return err
		}
	}

	return nil
}

// Protect sets the protection of the page at the given page aligned address.
func (s *Space) Protect(addr uint64, prot Prot) error {
	page, exists := s.pages[addr]
	if !exists {
		return fmt.Errorf("%w: %#x", ErrNotMapped, addr)
	}

	err := s.mapper.Protect(page.data, prot)
	if err != nil {
		return fmt.Errorf("protect %#x: %w", addr, err)
	}

	page.prot = prot

	return nil
}

// Page returns the page the given address belongs to, if any.
func (s *Space) Page(addr uint64) (*Page, bool) {
	page, exists := s.pages[s.AlignDown(addr)]
	return page, exists
}

// Len returns the number of mapped pages.
func (s *Space) Len() int {
	return len(s.pages)
}

// Pages returns an iterator over all pages sorted by address.
func (s *Space) Pages() iter.Seq[*Page] {
	return func(yield func(*Page) bool) {
		for _, addr := range slices.Sorted(maps.Keys(s.pages)) {
			if !yield(s.pages[addr]) {
				return
			}
		}
	}
}

// Read copies guest memory starting at addr into buf.
//
// If any byte of the range is not readable, a [Fault] for the first such
// byte is returned and buf is left untouched.
func (s *Space) Read(addr uint64, buf []byte) error {
	return s.copyOut(addr, buf, AccessRead)
}

// Fetch is like [Space.Read], but requires execute permission.
func (s *Space) Fetch(addr uint64, buf []byte) error {
	return s.copyOut(addr, buf, AccessExec)
}

// Write copies buf into guest memory starting at addr.
//
// If any byte of the range is not writable, a [Fault] for the first such
// byte is returned and no memory is modified.
func (s *Space) Write(addr uint64, buf []byte) error {
	err := s.check(addr, uint64(len(buf)), AccessWrite)
	if err != nil {
		return err
	}

	s.walk(addr, uint64(len(buf)), func(data []byte, pos uint64) {
		copy(data, buf[pos:])
	})

	return nil
}

// Close unmaps all pages.
func (s *Space) Close() error {
	var errs []error

	for addr, page := range s.pages {
		if err := s.mapper.Unmap(page.data); err != nil {
			errs = append(errs, fmt.Errorf("unmap %#x: %w", addr, err))
		}

		delete(s.pages, addr)
	}

	return errors.Join(errs...)
}

func (s *Space) copyOut(addr uint64, buf []byte, access Access) error {
	err := s.check(addr, uint64(len(buf)), access)
	if err != nil {
		return err
	}

	s.walk(addr, uint64(len(buf)), func(data []byte, pos uint64) {
		copy(buf[pos:], data)
	})

	return nil
}

// check verifies that all bytes of the range are accessible.
func (s *Space) check(addr, length uint64, access Access) error {
	end := addr + length
	for cur := addr; cur < end; cur = s.AlignDown(cur) + s.pageSize {
		page, exists := s.pages[s.AlignDown(cur)]
		if !exists {
			return &Fault{Addr: cur, Access: access, Code: CodeMapErr}
		}

		if !page.prot.Allows(access) {
			return &Fault{Addr: cur, Access: access, Code: CodeAccErr}
		}
	}

	return nil
}

// walk calls fn with the page data of each chunk of the range and the
// position of the chunk within the range. The range must be checked before.
func (s *Space) walk(addr, length uint64, fn func(data []byte, pos uint64)) {
	end := addr + length
	for cur := addr; cur < end; {
		pageAddr := s.AlignDown(cur)
		page := s.pages[pageAddr]
		off := cur - pageAddr
		n := min(s.pageSize-off, end-cur)

		fn(page.data[off:off+n], cur-addr)

		cur += n
	}
}
