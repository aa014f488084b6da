// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package dump writes the pages of a program's address space into a cpio
// archive for offline inspection.
//
// The archive has a single directory "pages" with one regular file per page.
// The file name is the page address in hex, the file mode reflects the page
// protection and the file body is the page content.
package dump
