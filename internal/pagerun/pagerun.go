// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package pagerun

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"
	"time"

	"github.com/aibor/pagerun/internal/cpu"
	"github.com/aibor/pagerun/internal/dump"
	"github.com/aibor/pagerun/internal/exe"
	"github.com/aibor/pagerun/internal/exitcode"
	"github.com/aibor/pagerun/internal/loader"
	"github.com/aibor/pagerun/internal/mem"
	"github.com/aibor/pagerun/internal/pipe"
	"github.com/aibor/pagerun/internal/trap"
	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
)

const pipeWaitTimeout = time.Second

// Run executes the program described by the given [Spec].
//
// Program output to file descriptor 1 and 2 is copied to stdout and stderr.
// It returns nil if the program exits with status 0 and an [exitcode.Error]
// for any other exit status. A program terminated by a fault it can not
// handle results in a [*trap.Termination]. Errors of the loader are returned
// as [*loader.FatalError]. Errors before the program is started are returned
// as is, [exe.ParseError] and [loader.InstallError] among them.
func Run(ctx context.Context, spec *Spec, stdout, stderr io.Writer) (err error) {
	desc, err := spec.parser().Parse(spec.Executable)
	if err != nil {
		return err //nolint:wrapcheck
	}

	file, err := os.Open(spec.Executable)
	if err != nil {
		return fmt.Errorf("open executable: %w", err)
	}
	defer file.Close()

	space, err := mem.NewSpace(spec.spaceOptions()...)
	if err != nil {
		return fmt.Errorf("create address space: %w", err)
	}

	defer func() {
		err = errors.Join(err, space.Close())
	}()

	registry := prometheus.NewRegistry()
	table := trap.NewTable()
	ldr := loader.New(desc, file, space, loader.WithRegisterer(registry))

	err = ldr.Install(table)
	if err != nil {
		return err //nolint:wrapcheck
	}
	defer ldr.Uninstall() //nolint:errcheck

	stdoutReader, stdoutWriter := io.Pipe()
	stderrReader, stderrWriter := io.Pipe()

	machine, err := start(spec, desc, space, table,
		cpu.WithFile(1, stdoutWriter),
		cpu.WithFile(2, stderrWriter),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStartFailed, err)
	}

	var pipes pipe.Pipes

	pipes.Run(&pipe.Pipe{
		Name:        "stdout",
		InputReader: stdoutReader,
		InputCloser: stdoutReader,
		Output:      stdout,
	})
	pipes.Run(&pipe.Pipe{
		Name:        "stderr",
		InputReader: stderrReader,
		InputCloser: stderrReader,
		Output:      stderr,
	})

	status, runErr := machine.Run(ctx)

	_ = stdoutWriter.Close()
	_ = stderrWriter.Close()

	pipeErr := pipes.Wait(pipeWaitTimeout)

	slog.Debug("Program stopped",
		slog.Uint64("steps", machine.Steps()),
		slog.Int("resolved_pages", ldr.ResolvedCount()),
		slog.String("resident", humanize.IBytes(uint64(space.Len())*space.PageSize())),
		slog.Any("written", pipes.BytesWritten()),
	)

	outErr := writeOutputs(spec, registry, resolvedPages(space, ldr.Descriptor()))

	switch {
	case runErr != nil:
		err = runErr
	case status != 0:
		err = exitcode.Error(status)
	}

	return errors.Join(err, pipeErr, outErr)
}

func start(
	spec *Spec,
	desc *exe.Descriptor,
	space *mem.Space,
	table *trap.Table,
	opts ...cpu.Option,
) (*cpu.Machine, error) {
	err := desc.CheckPageSize(space.PageSize())
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	sp, err := setupStack(space, desc, stackLayout{
		Args:     append([]string{spec.Executable}, spec.Args...),
		Env:      spec.Env,
		Entry:    desc.Entry,
		Size:     spec.stackSize(),
		Top:      StackTop,
		PageSize: space.PageSize(),
	})
	if err != nil {
		return nil, err
	}

	opts = append(opts,
		cpu.WithMaxSteps(spec.MaxSteps),
		cpu.WithTrace(spec.Trace),
	)

	machine, err := cpu.New(space, table, desc.Entry, opts...)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	machine.SetReg(cpu.SP, uint32(sp))

	slog.Debug("Start program",
		slog.String("path", spec.Executable),
		slog.String("entry", fmt.Sprintf("%#x", desc.Entry)),
		slog.String("sp", fmt.Sprintf("%#x", sp)),
		slog.Int("segments", len(desc.Segments)),
		slog.Uint64("page_size", space.PageSize()),
	)

	return machine, nil
}

func writeOutputs(spec *Spec, registry prometheus.Gatherer, pages iter.Seq[*mem.Page]) error {
	var errs []error

	if spec.PageDump != "" {
		errs = append(errs, dump.WriteFile(spec.PageDump, pages))
	}

	if spec.MetricsFile != "" {
		err := prometheus.WriteToTextfile(spec.MetricsFile, registry)
		if err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}

	return errors.Join(errs...)
}

// resolvedPages returns the pages of the address space that belong to a
// segment. Those are exactly the pages resolved by the loader.
func resolvedPages(space *mem.Space, desc *exe.Descriptor) iter.Seq[*mem.Page] {
	return func(yield func(*mem.Page) bool) {
		for page := range space.Pages() {
			start, end := page.Addr(), page.Addr()+space.PageSize()

			for _, segment := range desc.Segments {
				if segment.Base < end && start < segment.End() {
					if !yield(page) {
						return
					}

					break
				}
			}
		}
	}
}
