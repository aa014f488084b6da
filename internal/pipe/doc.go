// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package pipe copies program output from the emulated machine's file
// descriptors to the host's writers.
//
// Each [Pipe] is copied in its own goroutine, so a program can write to
// multiple descriptors without blocking on a slow reader of another one.
package pipe
