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
	"fmt"
	"sync"
	"time"

	"github.com/ZaparooProject/zaparoo-indexer/pkg/catalog"
	"github.com/ZaparooProject/zaparoo-indexer/pkg/classifier"
	"github.com/ZaparooProject/zaparoo-indexer/pkg/crawler"
	"github.com/ZaparooProject/zaparoo-indexer/pkg/helpers/syncutil"
	"github.com/ZaparooProject/zaparoo-indexer/pkg/remote"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Session is one running or finished scan.
type Session struct {
	StartedAt  time.Time
	err        error
	tracker    *ProgressTracker
	cancelReq  chan struct{}
	done       chan struct{}
	ID         string
	ProfileID  string
	Mode       Mode
	result     Result
	cancelOnce sync.Once
}

// Cancel asks the scan to stop. It returns immediately; use Wait to see
// how the scan ended.
func (s *Session) Cancel() {
	s.cancelOnce.Do(func() { close(s.cancelReq) })
}

func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the scan ends. A cancelled scan is not an error.
func (s *Session) Wait() (Result, error) {
	<-s.done
	return s.result, s.err
}

// Progress returns the latest progress snapshot.
func (s *Session) Progress() Event {
	return s.tracker.Get()
}

type Option func(*Manager)

func WithClock(clock clockwork.Clock) Option {
	return func(m *Manager) { m.clock = clock }
}

// WithPollInterval sets how often the supervisor publishes progress.
func WithPollInterval(d time.Duration) Option {
	return func(m *Manager) { m.poll = d }
}

func WithSink(sink Sink) Option {
	return func(m *Manager) { m.sink = sink }
}

// Manager starts scans and allows at most one scan per profile at a time.
type Manager struct {
	clock    clockwork.Clock
	catalogs *catalog.Store
	sink     Sink
	sessions map[string]*Session
	wg       sync.WaitGroup
	poll     time.Duration
	mu       syncutil.Mutex
}

func NewManager(catalogs *catalog.Store, opts ...Option) *Manager {
	m := &Manager{
		clock:    clockwork.NewRealClock(),
		catalogs: catalogs,
		sessions: make(map[string]*Session),
		poll:     DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start begins a scan in the background. Cancelling ctx cancels the scan
// the same way Session.Cancel does.
func (m *Manager) Start(ctx context.Context, cfg Config) (*Session, error) {
	if cfg.Provider == nil {
		return nil, ErrNoProvider
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeFull
	}
	if _, err := ParseMode(string(cfg.Mode)); err != nil {
		return nil, fmt.Errorf("%w: %q", err, cfg.Mode)
	}
	opener, err := cfg.opener()
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, running := m.sessions[cfg.Profile.ID]; running {
		return nil, fmt.Errorf("%w: %s", ErrScanInProgress, cfg.Profile.ID)
	}
	if cfg.Precheck != nil {
		if err := cfg.Precheck(); err != nil {
			return nil, err
		}
	}

	s := &Session{
		ID:        uuid.NewString(),
		ProfileID: cfg.Profile.ID,
		Mode:      cfg.Mode,
		StartedAt: m.clock.Now(),
		cancelReq: make(chan struct{}),
		done:      make(chan struct{}),
	}
	s.tracker = NewProgressTracker(s.ID, s.ProfileID)
	m.sessions[s.ProfileID] = s

	workCtx, workCancel := context.WithCancel(ctx)
	results := make(chan outcome, 1)

	m.wg.Add(2)
	go func() {
		defer m.wg.Done()
		res, err := m.execute(workCtx, &cfg, opener, s.tracker)
		results <- outcome{res: res, err: err}
	}()
	go func() {
		defer m.wg.Done()
		m.supervise(s, workCancel, results)
	}()

	log.Info().
		Str("session", s.ID).
		Str("profile", s.ProfileID).
		Str("mode", string(s.Mode)).
		Msg("scan started")
	return s, nil
}

// Run starts a scan and waits for it to end.
func (m *Manager) Run(ctx context.Context, cfg Config) (Result, error) {
	s, err := m.Start(ctx, cfg)
	if err != nil {
		return Result{}, err
	}
	return s.Wait()
}

// Session returns the running scan for a profile.
func (m *Manager) Session(profileID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[profileID]
	return s, ok
}

// Exclusive runs fn while no scan of the profile is running, and keeps
// one from starting until fn returns.
func (m *Manager) Exclusive(profileID string, fn func() error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, running := m.sessions[profileID]; running {
		return fmt.Errorf("%w: %s", ErrScanInProgress, profileID)
	}
	return fn()
}

// Cancel cancels the running scan for a profile and reports whether there
// was one.
func (m *Manager) Cancel(profileID string) bool {
	s, ok := m.Session(profileID)
	if ok {
		s.Cancel()
	}
	return ok
}

// CancelAll cancels every running scan and waits for them to end.
func (m *Manager) CancelAll() {
	m.mu.Lock()
	for _, s := range m.sessions {
		s.Cancel()
	}
	m.mu.Unlock()
	m.wg.Wait()
}

type outcome struct {
	err error
	res Result
}

func (m *Manager) emit(ev Event) {
	if m.sink != nil {
		m.sink(ev)
	}
}

// supervise publishes progress on every tick, turns a cancel request into
// context cancellation and reports the final event. It never does I/O
// itself besides calling the sink.
func (m *Manager) supervise(s *Session, workCancel context.CancelFunc, results <-chan outcome) {
	ticker := m.clock.NewTicker(m.poll)
	defer ticker.Stop()

	m.emit(Event{Status: StatusStarted, SessionID: s.ID, ProfileID: s.ProfileID, Phase: PhaseCrawl})

	cancelReq := s.cancelReq
	for {
		select {
		case <-cancelReq:
			log.Info().Str("session", s.ID).Msg("scan cancel requested")
			workCancel()
			cancelReq = nil
		case <-ticker.Chan():
			if ev, ok := s.tracker.Pending(); ok {
				m.emit(ev)
			}
		case out := <-results:
			workCancel()
			m.finish(s, out)
			return
		}
	}
}

func (m *Manager) finish(s *Session, out outcome) {
	s.result, s.err = out.res, out.err

	m.mu.Lock()
	delete(m.sessions, s.ProfileID)
	m.mu.Unlock()

	last := s.tracker.Get()
	ev := Event{
		Status:    out.res.Status,
		SessionID: s.ID,
		ProfileID: s.ProfileID,
		Phase:     last.Phase,
		Percent:   last.Percent,
		Found:     out.res.Found,
		Added:     out.res.Added,
	}
	switch out.res.Status {
	case StatusFinished:
		ev.Percent = 100
		ev.Heading = fmt.Sprintf("Added %d files", out.res.Added)
	case StatusCancelled:
		ev.Heading = "Scan cancelled"
	case StatusFailed:
		ev.Heading = "Scan failed"
		if out.err != nil {
			ev.Error = out.err.Error()
		}
	}
	m.emit(ev)

	logEvent := log.Info()
	if out.err != nil {
		logEvent = log.Error().Err(out.err)
	}
	logEvent.
		Str("session", s.ID).
		Str("status", string(out.res.Status)).
		Int("found", out.res.Found).
		Int("net_new", out.res.NetNew).
		Int("added", out.res.Added).
		Int("missed", out.res.Missed).
		Bool("saved", out.res.Saved).
		Dur("took", m.clock.Since(s.StartedAt)).
		Msg("scan ended")

	close(s.done)
}

// execute runs both phases. The catalog is loaded once here and saved at
// most once.
func (m *Manager) execute(
	ctx context.Context,
	cfg *Config,
	opener remote.Opener,
	tracker *ProgressTracker,
) (Result, error) {
	profileID := cfg.Profile.ID
	existing := m.catalogs.Load(profileID)

	paths, err := crawler.Run(ctx, opener, crawler.Options{
		OnProgress: tracker.SetCrawl,
		Workers:    workerCount(cfg.CrawlWorkers),
	})
	if ctx.Err() != nil {
		// Nothing has been merged yet, so the catalog is left as it was.
		return Result{Status: StatusCancelled}, nil
	}
	if err != nil {
		return Result{Status: StatusFailed}, fmt.Errorf("crawl failed: %w", err)
	}

	res := Result{Found: len(paths)}
	target := existing
	netNew := paths
	if cfg.Mode == ModeFull {
		target = catalog.New()
	} else {
		netNew = catalog.Diff(paths, existing.ExistingPaths())
	}
	res.NetNew = len(netNew)

	items := classifyAll(netNew)
	log.Info().
		Int("found", res.Found).
		Int("net_new", res.NetNew).
		Int("classified", len(items)).
		Msg("crawl complete, enriching")

	enr := newEnricher(cfg.Provider, target, profileID, len(items), tracker)
	tracker.SetEnrich(0, len(items), "")

	queue := NewJobQueue(ctx, len(items))
	for i := range items {
		if err := queue.Enqueue(&Job{Item: items[i]}); err != nil {
			break
		}
	}
	queue.Close()

	pool := NewWorkerPool(ctx, workerCount(cfg.EnrichWorkers), queue.Channel(), enr)
	pool.Start()
	pool.Wait()

	_, res.Added, res.Missed = enr.counts()
	res.Status = StatusFinished
	if ctx.Err() != nil {
		res.Status = StatusCancelled
	}

	if err := m.catalogs.Save(profileID, target); err != nil {
		res.Status = StatusFailed
		return res, err //nolint:wrapcheck // already wrapped by the store
	}
	res.Saved = true
	return res, nil
}

func classifyAll(paths []string) []classifier.Item {
	items := make([]classifier.Item, 0, len(paths))
	for _, p := range paths {
		item, ok := classifier.Classify(p)
		if !ok {
			log.Debug().Str("path", p).Msg("could not derive a title, skipping")
			continue
		}
		items = append(items, item)
	}
	return items
}

func workerCount(n int) int {
	if n < 1 {
		return DefaultWorkers
	}
	return n
}
