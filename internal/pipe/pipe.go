// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package pipe

import (
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"
)

// Pipe is a single stream of program output.
type Pipe struct {
	Name string
	// InputReader is the read end the program output is read from.
	InputReader io.Reader
	// InputCloser is closed if copying fails or the pipe does not terminate
	// in time. Closing it must unblock reads from InputReader.
	InputCloser io.Closer
	Output      io.Writer

	bytesWritten atomic.Int64
}

func (p *Pipe) copy() error {
	written, err := io.Copy(p.Output, p.InputReader)
	p.bytesWritten.Store(written)

	slog.Debug("Pipe done",
		slog.String("name", p.Name),
		slog.String("written", humanize.IBytes(uint64(written))),
	)

	if err != nil {
		// Unblock the writing side.
		if p.InputCloser != nil {
			_ = p.InputCloser.Close()
		}

		return &Error{Name: p.Name, Err: err}
	}

	return nil
}

// Pipes runs a set of [Pipe]s concurrently.
type Pipes struct {
	pipes []*Pipe
	group errgroup.Group
}

// Run starts copying the given pipe in a new goroutine.
func (p *Pipes) Run(pipe *Pipe) {
	p.pipes = append(p.pipes, pipe)
	p.group.Go(pipe.copy)
}

// Wait waits for all pipes to finish and returns the first error. If the
// pipes do not finish within the given timeout, all inputs are closed and
// [ErrWaitTimeout] is returned once the pipes terminated.
func (p *Pipes) Wait(timeout time.Duration) error {
	done := make(chan error, 1)

	go func() {
		done <- p.group.Wait()
	}()

	select {
	case err := <-done:
		return err //nolint:wrapcheck
	case <-time.After(timeout):
	}

	for _, pipe := range p.pipes {
		if pipe.InputCloser != nil {
			_ = pipe.InputCloser.Close()
		}
	}

	<-done

	return ErrWaitTimeout
}

// BytesWritten returns the number of bytes written by each pipe.
func (p *Pipes) BytesWritten() map[string]int64 {
	written := make(map[string]int64, len(p.pipes))

	for _, pipe := range p.pipes {
		written[pipe.Name] = pipe.bytesWritten.Load()
	}

	return written
}
