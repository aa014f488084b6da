// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package mem provides the guest address space of the emulated machine.
//
// The address space is page indexed. Each page is backed by its own anonymous
// private host mapping and carries a protection. Every guest access is checked
// against the page table before any host memory is touched. Accesses to
// addresses without a page or with insufficient protection are reported as
// [Fault], which is the emulated counterpart of a SIGSEGV with its si_code.
//
// Host mappings always stay readable, so resolved pages can be inspected
// regardless of their guest protection. Write access is removed on the host
// as well if the guest protection does not allow writes.
package mem
