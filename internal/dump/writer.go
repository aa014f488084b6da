// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package dump

import (
	"fmt"
	"io"

	"github.com/cavaliergopher/cpio"
)

const numLinks = 2

// Writer writes cpio archive entries.
type Writer struct {
	cpioWriter *cpio.Writer
}

// NewWriter creates a new archive writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{cpio.NewWriter(w)}
}

// Close writes the archive trailer. Flush is called by the underlying closer.
func (w *Writer) Close() error {
	err := w.cpioWriter.Close()
	if err != nil {
		return fmt.Errorf("close: %w", err)
	}

	return nil
}

func (w *Writer) writeHeader(hdr *cpio.Header) error {
	if err := w.cpioWriter.WriteHeader(hdr); err != nil {
		return fmt.Errorf("write header for %s: %w", hdr.Name, err)
	}

	return nil
}

// WriteDirectory adds a directory entry for the given path to the archive.
func (w *Writer) WriteDirectory(path string) error {
	header := &cpio.Header{
		Name:  path,
		Mode:  cpio.TypeDir | 0o755,
		Links: numLinks,
	}

	return w.writeHeader(header)
}

// WriteRegular adds a regular file with the given body to the archive.
func (w *Writer) WriteRegular(path string, body []byte, perm cpio.FileMode) error {
	header := &cpio.Header{
		Name:  path,
		Mode:  cpio.TypeReg | perm&cpio.ModePerm,
		Size:  int64(len(body)),
		Links: 1,
	}

	if err := w.writeHeader(header); err != nil {
		return err
	}

	if _, err := w.cpioWriter.Write(body); err != nil {
		return fmt.Errorf("write body for %s: %w", path, err)
	}

	return nil
}
