// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package mem

import (
	"fmt"
	"io"
)

// Page is a single page of the address space.
type Page struct {
	addr uint64
	prot Prot
	data []byte
}

// Addr returns the page aligned guest address of the page.
func (p *Page) Addr() uint64 {
	return p.addr
}

// Prot returns the current protection of the page.
func (p *Page) Prot() Prot {
	return p.prot
}

// Size returns the size of the page in bytes.
func (p *Page) Size() int {
	return len(p.data)
}

// Bytes returns a copy of the page content.
func (p *Page) Bytes() []byte {
	return append([]byte(nil), p.data...)
}

// Fill reads exactly n bytes from r at offset srcOff into the page at page
// offset off.
//
// The page must still be writable. The range must lie within the page. A
// short read returns an error wrapping [io.ErrUnexpectedEOF] or [io.EOF].
func (p *Page) Fill(off int, r io.ReaderAt, srcOff int64, n int) error {
	if !p.prot.Allows(AccessWrite) {
		return ErrPageReadOnly
	}

	if off < 0 || n < 0 || off+n > len(p.data) {
		return fmt.Errorf("%w: %d+%d > %d", ErrOutOfBounds, off, n, len(p.data))
	}

	src := io.NewSectionReader(r, srcOff, int64(n))

	_, err := io.ReadFull(src, p.data[off:off+n])
	if err != nil {
		return fmt.Errorf("read %d bytes at %d: %w", n, srcOff, err)
	}

	return nil
}
