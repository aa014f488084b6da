// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package dump

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"
	"path"

	"github.com/aibor/pagerun/internal/mem"
	"github.com/cavaliergopher/cpio"
	"github.com/dustin/go-humanize"
)

// Dir is the archive directory holding the page entries.
const Dir = "pages"

// PageName returns the archive path of the page with the given address.
func PageName(addr uint64) string {
	return path.Join(Dir, fmt.Sprintf("%08x", addr))
}

// PageMode returns the archive file mode for the page protection.
func PageMode(prot mem.Prot) cpio.FileMode {
	var mode cpio.FileMode

	if prot&mem.ProtRead != 0 {
		mode |= 0o400
	}

	if prot&mem.ProtWrite != 0 {
		mode |= 0o200
	}

	if prot&mem.ProtExec != 0 {
		mode |= 0o100
	}

	return mode
}

// WritePages writes an archive with all given pages to w. It returns the
// number of pages written.
func WritePages(w io.Writer, pages iter.Seq[*mem.Page]) (int, error) {
	archive := NewWriter(w)

	err := archive.WriteDirectory(Dir)
	if err != nil {
		return 0, err
	}

	var count int

	for page := range pages {
		err := archive.WriteRegular(PageName(page.Addr()), page.Bytes(), PageMode(page.Prot()))
		if err != nil {
			return count, err
		}

		count++
	}

	return count, archive.Close()
}

// WriteFile writes an archive with all given pages to a new file at the
// given path.
func WriteFile(filePath string, pages iter.Seq[*mem.Page]) (err error) {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("create dump file: %w", err)
	}

	defer func() {
		err = errors.Join(err, file.Close())
	}()

	count, err := WritePages(file, pages)
	if err != nil {
		return fmt.Errorf("write %s: %w", filePath, err)
	}

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", filePath, err)
	}

	slog.Debug("Page dump written",
		slog.String("path", filePath),
		slog.Int("pages", count),
		slog.String("size", humanize.IBytes(uint64(info.Size()))),
	)

	return nil
}
