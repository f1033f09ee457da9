// Package pipeline runs one locate → normalize → reconcile → persist pass
// per source against the master file.
package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/mjavadshamsi/harmonize-joe-ejm/internal/domain"
	"github.com/mjavadshamsi/harmonize-joe-ejm/internal/ingest"
	"github.com/mjavadshamsi/harmonize-joe-ejm/internal/reconcile"
	"github.com/mjavadshamsi/harmonize-joe-ejm/internal/store"
)

type Runner struct {
	Connectors []ingest.Connector
	Engine     reconcile.Engine
	MasterPath string

	// History is optional; when nil passes are not recorded.
	History *sql.DB

	// Out receives the operator status lines.
	Out io.Writer
	Log zerolog.Logger
	Now func() time.Time
}

type PassResult struct {
	Source     domain.Source
	File       string
	BatchDate  string
	Status     string // store.RunOK | store.RunSkipped | store.RunFailed
	Listings   int
	Deleted    int
	Duplicates int
	Err        error
}

type Summary struct {
	Passes []PassResult
}

// Failed reports whether any pass ended in an error. Passes that found no
// input are not failures.
func (s Summary) Failed() bool {
	for _, p := range s.Passes {
		if p.Status == store.RunFailed {
			return true
		}
	}
	return false
}

// Run executes every connector's pass in order. A failing or empty pass
// never stops the ones after it.
func (r *Runner) Run(ctx context.Context) Summary {
	var sum Summary
	for _, c := range r.Connectors {
		started := r.now()
		res := r.RunOne(ctx, c)
		sum.Passes = append(sum.Passes, res)
		r.record(ctx, started, res)
	}
	return sum
}

// RunOne executes a single source pass.
func (r *Runner) RunOne(ctx context.Context, c ingest.Connector) PassResult {
	src := c.Source()
	log := r.Log.With().Str("source", string(src)).Logger()
	res := PassResult{Source: src}

	path, _, ok, err := ingest.FindLatest(c.Dir(), c.Pattern())
	if err != nil {
		return r.fail(log, res, fmt.Errorf("locate input: %w", err))
	}
	if !ok {
		r.status(src, "No latest file found. Skipping %s processing.", src)
		log.Info().Str("dir", c.Dir()).Msg("no input file")
		res.Status = store.RunSkipped
		return res
	}
	res.File = path
	r.status(src, "Latest file: %s", path)

	batch, err := c.Load(ctx, path)
	if err != nil {
		return r.fail(log, res, fmt.Errorf("load %s: %w", path, err))
	}
	res.BatchDate = batch.BatchDate
	log.Debug().Str("file", path).Str("batch", batch.BatchDate).Int("records", len(batch.Records)).Msg("batch normalized")

	out, err := r.apply(batch)
	if err != nil {
		return r.fail(log, res, err)
	}

	for _, d := range out.Decisions {
		if !d.Keep {
			log.Debug().
				Str("id", d.Record.Identifier()).
				Str("reason", d.Reason).
				Str("country", d.Record.Country).
				Msg("routed to Deleted")
		}
	}

	res.Status = store.RunOK
	res.Listings = len(out.Listings)
	res.Deleted = len(out.Deleted)
	res.Duplicates = out.Duplicates
	log.Info().
		Str("batch", batch.BatchDate).
		Int("listings", res.Listings).
		Int("deleted", res.Deleted).
		Int("duplicates", res.Duplicates).
		Msg("master file updated")
	r.status(src, "Applications file updated successfully.")
	return res
}

// apply holds the lock and the open workbook only for the reconcile and
// save; any error before Save leaves the file on disk as it was.
func (r *Runner) apply(batch domain.Batch) (res reconcile.Result, err error) {
	unlock, err := store.Lock(r.MasterPath)
	if err != nil {
		return res, err
	}
	defer func() {
		if uerr := unlock(); uerr != nil && err == nil {
			err = fmt.Errorf("unlock master file: %w", uerr)
		}
	}()

	wb, err := store.Open(r.MasterPath)
	if err != nil {
		return res, err
	}
	defer wb.Close()

	res = r.Engine.Reconcile(batch, wb.Listings(), wb.Deleted())

	if err := wb.Append(store.SheetListings, res.Listings); err != nil {
		return res, err
	}
	if err := wb.Append(store.SheetDeleted, res.Deleted); err != nil {
		return res, err
	}
	if err := wb.Save(); err != nil {
		return res, err
	}
	return res, nil
}

func (r *Runner) fail(log zerolog.Logger, res PassResult, err error) PassResult {
	res.Status = store.RunFailed
	res.Err = err
	log.Error().Err(err).Str("file", res.File).Msg("pass failed")
	r.status(res.Source, "Processing failed: %v", err)
	return res
}

func (r *Runner) record(ctx context.Context, started time.Time, res PassResult) {
	if r.History == nil {
		return
	}
	run := store.Run{
		Source:     string(res.Source),
		File:       res.File,
		BatchDate:  res.BatchDate,
		Listings:   res.Listings,
		Deleted:    res.Deleted,
		Duplicates: res.Duplicates,
		Status:     res.Status,
		StartedAt:  started,
		FinishedAt: r.now(),
	}
	if res.Err != nil {
		run.Error = res.Err.Error()
	}
	if _, err := store.RecordRun(ctx, r.History, run); err != nil {
		r.Log.Warn().Err(err).Str("source", run.Source).Msg("run not recorded")
	}
}

func (r *Runner) status(src domain.Source, format string, args ...any) {
	if r.Out == nil {
		return
	}
	fmt.Fprintf(r.Out, "[%s] %s\n", src, fmt.Sprintf(format, args...))
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now().UTC()
}

// IsLocked reports whether err came from another process holding the
// master file.
func IsLocked(err error) bool {
	return errors.Is(err, store.ErrLocked)
}
