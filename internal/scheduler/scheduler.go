// Package scheduler re-runs inventory consolidation in the background.
//
// A run is triggered:
//  1. once, immediately on Start
//  2. on every tick of the cron schedule
//  3. when Watch is enabled, after tabular files in the data directory change
//     and then stay quiet for the debounce window
//
// All runs execute on a single goroutine, so they never overlap. Triggers that
// arrive while a run is in progress collapse into one follow-up run. A failed
// run is logged and does not stop the scheduler.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"

	"github.com/JonMunkholm/inventory/internal/logging"
)

// Job is one consolidation run.
type Job func(ctx context.Context) error

// Config holds scheduler settings. Zero values fall back to defaults.
type Config struct {
	Cron      string        // cron spec or descriptor (default "@every 1h")
	Watch     bool          // also run on data directory changes
	Dir       string        // directory to watch
	Extension string        // only changes to these files count (default ".csv")
	Debounce  time.Duration // quiet period before a watch-triggered run (default 500ms)
}

func (c Config) withDefaults() Config {
	if c.Cron == "" {
		c.Cron = "@every 1h"
	}
	if c.Extension == "" {
		c.Extension = ".csv"
	}
	if c.Debounce <= 0 {
		c.Debounce = 500 * time.Millisecond
	}
	return c
}

// Scheduler triggers a Job on a schedule and on file changes.
type Scheduler struct {
	cfg    Config
	job    Job
	logger *slog.Logger

	triggers chan string
	cron     *cron.Cron
	watcher  *fsnotify.Watcher

	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started atomic.Bool

	runs     atomic.Int64
	failures atomic.Int64
}

// New creates a scheduler. Call Start to begin.
func New(cfg Config, job Job, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cfg:      cfg.withDefaults(),
		job:      job,
		logger:   logger,
		triggers: make(chan string, 1),
	}
}

// Start schedules the first run immediately and returns. The scheduler stops
// when ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return errors.New("scheduler already started")
	}

	ctx, s.cancel = context.WithCancel(ctx)

	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.cfg.Cron, func() { s.Trigger("cron") }); err != nil {
		s.cancel()
		return fmt.Errorf("invalid schedule %q: %w", s.cfg.Cron, err)
	}

	if s.cfg.Watch {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			s.cancel()
			return fmt.Errorf("create watcher: %w", err)
		}
		if err := w.Add(s.cfg.Dir); err != nil {
			w.Close()
			s.cancel()
			return fmt.Errorf("watch %s: %w", s.cfg.Dir, err)
		}
		s.watcher = w

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.watchLoop(ctx)
		}()
	}

	s.logger.Info("scheduler started",
		"cron", s.cfg.Cron,
		"watch", s.cfg.Watch,
		"dir", s.cfg.Dir,
	)

	s.Trigger("startup")
	s.cron.Start()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runLoop(ctx)
	}()
	return nil
}

// Stop cancels pending triggers, waits for a running job to finish and
// releases the cron and watcher resources.
func (s *Scheduler) Stop() {
	if !s.started.Load() || s.cancel == nil {
		return
	}
	s.cancel()
	<-s.cron.Stop().Done()
	if s.watcher != nil {
		s.watcher.Close()
	}
	s.wg.Wait()
	s.logger.Info("scheduler stopped", "runs", s.Runs(), "failures", s.failures.Load())
}

// Trigger requests a run. If one is already pending the request is merged
// into it.
func (s *Scheduler) Trigger(reason string) {
	select {
	case s.triggers <- reason:
	default:
	}
}

// Runs returns the number of completed runs, failed or not.
func (s *Scheduler) Runs() int64 {
	return s.runs.Load()
}

func (s *Scheduler) runLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case reason := <-s.triggers:
			s.runOnce(ctx, reason)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, reason string) {
	ctx = logging.WithRunID(ctx)
	logger := logging.FromContext(ctx, s.logger)
	start := time.Now()

	logger.Debug("scheduled run started", "trigger", reason)
	err := s.job(ctx)
	s.runs.Add(1)

	if err != nil {
		s.failures.Add(1)
		logger.Error("scheduled run failed",
			"trigger", reason,
			"error", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return
	}
	logger.Info("scheduled run completed",
		"trigger", reason,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// watchLoop turns bursts of file events into one trigger after the debounce
// window passes without further events.
func (s *Scheduler) watchLoop(ctx context.Context) {
	var timer *time.Timer
	var timerC <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if !s.relevant(event) {
				continue
			}
			s.logger.Debug("data directory changed", "file", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(s.cfg.Debounce)
				timerC = timer.C
			} else {
				timer.Reset(s.cfg.Debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			s.Trigger("watch")

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("watcher error", "error", err)
		}
	}
}

func (s *Scheduler) relevant(event fsnotify.Event) bool {
	if !strings.EqualFold(filepath.Ext(event.Name), s.cfg.Extension) {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}
