package project

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/broady/routegen"
	"github.com/broady/routegen/internal/discover"
	"github.com/broady/routegen/internal/runner"
	"github.com/broady/routegen/internal/watch"
	"github.com/broady/routegen/ir"
	"github.com/broady/routegen/typescript"
)

// Run states reported by Status.
const (
	StateIdle    = "idle"
	StateRunning = "running"
	StateOK      = "ok"
	StateError   = "error"
)

// Status summarizes the most recent generation.
type Status struct {
	State       string          `json:"state"`
	Runs        int             `json:"runs"`
	Source      string          `json:"source"`
	Output      string          `json:"output"`
	Reason      string          `json:"reason,omitempty"`
	Candidates  int             `json:"candidates"`
	Endpoints   int             `json:"endpoints"`
	Diagnostics []ir.Diagnostic `json:"diagnostics"`
	Error       string          `json:"error,omitempty"`
	StartedAt   time.Time       `json:"startedAt,omitzero"`
	FinishedAt  time.Time       `json:"finishedAt,omitzero"`
}

// Session regenerates a project on demand. Runs are serialized: a new
// trigger cancels the one in flight.
type Session struct {
	proj *Project
	gen  *routegen.Generator
	log  *zap.Logger
	run  runner.Runner

	mu        sync.Mutex
	status    Status
	accessors []typescript.Accessor
}

// NewSession creates an idle session.
func NewSession(proj *Project, log *zap.Logger) *Session {
	return &Session{
		proj: proj,
		gen:  proj.Generator(),
		log:  log,
		status: Status{
			State:       StateIdle,
			Source:      proj.Source(),
			Output:      proj.Output(),
			Diagnostics: []ir.Diagnostic{},
		},
	}
}

// Regenerate runs one generation and blocks until it finishes or is
// superseded.
func (s *Session) Regenerate(ctx context.Context, reason string) error {
	return s.run.Run(ctx, s.proj.Output(), func(ctx context.Context) error {
		return s.generate(ctx, reason)
	})
}

func (s *Session) generate(ctx context.Context, reason string) error {
	start := time.Now()
	s.mu.Lock()
	s.status.State = StateRunning
	s.status.Reason = reason
	s.status.StartedAt = start
	s.mu.Unlock()

	res, err := s.gen.ToFileContext(ctx, s.proj.Output())
	if errors.Is(err, context.Canceled) {
		s.log.Debug("generation superseded", zap.String("reason", reason))
		return err
	}
	if err == nil {
		err = Report(s.log, res)
	}
	s.record(res, err, start)

	if err != nil {
		s.log.Error("generation failed", zap.String("output", s.proj.Output()), zap.Error(err))
		return err
	}
	s.log.Info("generated",
		zap.String("output", s.proj.Output()),
		zap.Int("endpoints", res.Endpoints()),
		zap.Duration("took", time.Since(start)))
	return nil
}

func (s *Session) record(res *routegen.Result, err error, start time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status.Runs++
	s.status.StartedAt = start
	s.status.FinishedAt = time.Now()
	s.status.Error = ""
	s.status.State = StateOK
	if err != nil {
		s.status.State = StateError
		s.status.Error = err.Error()
	}
	s.status.Candidates, s.status.Endpoints = 0, 0
	s.status.Diagnostics = []ir.Diagnostic{}
	if res == nil {
		return
	}
	s.status.Candidates = res.Candidates
	s.status.Endpoints = res.Endpoints()
	s.status.Diagnostics = append(s.status.Diagnostics, res.Diagnostics...)
	if res.Output != nil {
		s.accessors = res.Accessors
	}
}

// Status returns a snapshot of the last run.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.status
	st.Diagnostics = append([]ir.Diagnostic(nil), s.status.Diagnostics...)
	return st
}

// Endpoints returns the accessors of the last run that produced output.
func (s *Session) Endpoints() []typescript.Accessor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessors
}

// Watch regenerates once and then after every batch of changes to
// candidate files until ctx is done.
func (s *Session) Watch(ctx context.Context, debounce time.Duration) error {
	opts := s.proj.Discover()
	w, err := watch.New(s.proj.Source(), watch.Options{
		Debounce: debounce,
		Filter:   func(rel string) bool { return discover.Match(rel, opts) },
		SkipDir:  func(rel string) bool { return discover.SkipDir(rel, opts) },
		Logger:   s.log,
	}, func(changes []watch.Change) {
		if len(changes) == 0 {
			return
		}
		for _, c := range changes {
			s.log.Debug("change", zap.String("path", c.Path), zap.String("action", c.Action))
		}
		s.trigger(ctx, "change: "+changes[0].Path)
	})
	if err != nil {
		return err
	}

	s.log.Info("watching", zap.String("source", s.proj.Source()))
	s.trigger(ctx, "initial")
	// Run returns only after any batch delivery has finished, so no trigger
	// can start a run once Wait is reached.
	err = w.Run(ctx)
	s.run.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// trigger starts a run in the background. Failures are already logged and
// recorded in Status.
func (s *Session) trigger(ctx context.Context, reason string) {
	s.run.Go(ctx, s.proj.Output(), func(ctx context.Context) error {
		return s.generate(ctx, reason)
	}, nil)
}
