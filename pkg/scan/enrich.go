// Zaparoo Indexer
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Zaparoo Indexer.
//
// Zaparoo Indexer is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Zaparoo Indexer is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Zaparoo Indexer.  If not, see <http://www.gnu.org/licenses/>.

package scan

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ZaparooProject/zaparoo-indexer/pkg/catalog"
	"github.com/ZaparooProject/zaparoo-indexer/pkg/classifier"
	"github.com/ZaparooProject/zaparoo-indexer/pkg/helpers/syncutil"
	"github.com/ZaparooProject/zaparoo-indexer/pkg/metadata"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

var (
	ErrQueueClosed = errors.New("job queue is closed")
	ErrQueueFull   = errors.New("job queue is full")
)

// Job is one classified file waiting for a metadata lookup.
type Job struct {
	Item classifier.Item
}

// JobQueue is a bounded queue of enrichment jobs. Enqueue and Close must be
// called from a single goroutine.
type JobQueue struct {
	queue  chan *Job
	ctx    context.Context
	closed bool
}

func NewJobQueue(ctx context.Context, capacity int) *JobQueue {
	return &JobQueue{
		queue: make(chan *Job, max(capacity, 1)),
		ctx:   ctx,
	}
}

// Enqueue adds a job without blocking.
func (jq *JobQueue) Enqueue(job *Job) error {
	if jq.closed {
		return ErrQueueClosed
	}
	// A ready send would otherwise race the cancelled context.
	if err := jq.ctx.Err(); err != nil {
		return err //nolint:wrapcheck // callers check for context.Canceled
	}

	select {
	case <-jq.ctx.Done():
		return jq.ctx.Err() //nolint:wrapcheck // callers check for context.Canceled
	case jq.queue <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

func (jq *JobQueue) Channel() <-chan *Job {
	return jq.queue
}

func (jq *JobQueue) Close() {
	if !jq.closed {
		jq.closed = true
		close(jq.queue)
	}
}

func (jq *JobQueue) Size() int {
	return len(jq.queue)
}

// JobProcessor handles one enrichment job.
type JobProcessor interface {
	ProcessJob(ctx context.Context, job *Job) error
}

// WorkerPool drains a job channel with a fixed number of goroutines until
// the channel is closed or the context is cancelled.
type WorkerPool struct {
	ctx         context.Context
	jobs        <-chan *Job
	processor   JobProcessor
	workerWG    sync.WaitGroup
	workerCount int
}

func NewWorkerPool(ctx context.Context, workerCount int, jobs <-chan *Job, processor JobProcessor) *WorkerPool {
	return &WorkerPool{
		ctx:         ctx,
		jobs:        jobs,
		processor:   processor,
		workerCount: max(workerCount, 1),
	}
}

func (wp *WorkerPool) Start() {
	log.Debug().Int("workers", wp.workerCount).Msg("starting enrichment workers")
	for i := range wp.workerCount {
		wp.workerWG.Add(1)
		go wp.worker(i)
	}
}

// Wait blocks until every worker has exited.
func (wp *WorkerPool) Wait() {
	wp.workerWG.Wait()
}

func (wp *WorkerPool) worker(id int) {
	defer wp.workerWG.Done()

	for {
		select {
		case <-wp.ctx.Done():
			log.Debug().Int("worker_id", id).Msg("enrichment worker stopped by cancellation")
			return
		case job, ok := <-wp.jobs:
			if !ok {
				return
			}
			// Both cases may be ready at once; cancellation wins.
			if wp.ctx.Err() != nil {
				return
			}
			if err := wp.processor.ProcessJob(wp.ctx, job); err != nil {
				log.Warn().Err(err).
					Int("worker_id", id).
					Str("path", job.Item.Path).
					Msg("failed to enrich file")
			}
		}
	}
}

type lookupKey struct {
	kind  catalog.Kind
	title string
	year  int
}

type lookupResult struct {
	res *metadata.Result
	err error
}

// enricher looks files up and merges the answers into the scan's catalog.
// Lookups for the same title within a scan are made once.
type enricher struct {
	provider  metadata.Provider
	catalog   *catalog.Catalog
	tracker   *ProgressTracker
	cache     map[lookupKey]lookupResult
	profileID string
	flights   singleflight.Group
	total     int
	processed int
	added     int
	missed    int
	mu        syncutil.Mutex
}

func newEnricher(
	provider metadata.Provider,
	c *catalog.Catalog,
	profileID string,
	total int,
	tracker *ProgressTracker,
) *enricher {
	return &enricher{
		provider:  provider,
		catalog:   c,
		tracker:   tracker,
		cache:     make(map[lookupKey]lookupResult),
		profileID: profileID,
		total:     total,
	}
}

func catalogKind(k classifier.Kind) catalog.Kind {
	if k == classifier.KindTVShow {
		return catalog.KindTVShow
	}
	return catalog.KindMovie
}

func (e *enricher) lookup(ctx context.Context, item classifier.Item) (*metadata.Result, error) {
	key := lookupKey{kind: catalogKind(item.Kind), title: item.Title, year: item.Year}

	e.mu.Lock()
	cached, ok := e.cache[key]
	e.mu.Unlock()
	if ok {
		return cached.res, cached.err
	}

	v, _, _ := e.flights.Do(fmt.Sprintf("%s|%d|%s", key.kind, key.year, key.title), func() (any, error) {
		// A flight for this key may have finished since the check above.
		e.mu.Lock()
		cached, ok := e.cache[key]
		e.mu.Unlock()
		if ok {
			return cached, nil
		}

		res, err := e.provider.Lookup(ctx, key.title, key.year, key.kind)
		out := lookupResult{res: res, err: err}
		if ctx.Err() == nil {
			e.mu.Lock()
			e.cache[key] = out
			e.mu.Unlock()
		}
		return out, nil
	})
	out, _ := v.(lookupResult)
	return out.res, out.err
}

func (e *enricher) ProcessJob(ctx context.Context, job *Job) error {
	item := job.Item

	e.mu.Lock()
	e.tracker.SetEnrich(e.processed, e.total, item.Path)
	e.mu.Unlock()

	res, err := e.lookup(ctx, item)
	if err != nil && ctx.Err() != nil {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.processed++
	e.tracker.SetEnrich(e.processed, e.total, "")

	switch {
	case metadata.IsMiss(err):
		e.missed++
		log.Debug().Str("path", item.Path).Str("title", item.Title).Msg("no metadata match, skipping")
		return nil
	case err != nil:
		e.missed++
		return fmt.Errorf("lookup %q: %w", item.Title, err)
	case res == nil:
		e.missed++
		return nil
	}

	var merged bool
	if item.Kind == classifier.KindTVShow {
		merged = e.catalog.MergeEpisode(res.ProviderID, res.Info, res.Art, item.Season, item.Path, e.profileID)
	} else {
		merged = e.catalog.MergeMovie(res.ProviderID, res.Info, res.Art, catalog.Source{
			Path:      item.Path,
			Filename:  item.Filename,
			ProfileID: e.profileID,
		})
	}
	if merged {
		e.added++
	}
	return nil
}

func (e *enricher) counts() (processed, added, missed int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.processed, e.added, e.missed
}
