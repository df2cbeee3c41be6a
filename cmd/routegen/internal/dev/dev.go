// Package dev runs watch mode together with a small local status server.
package dev

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/broady/routegen/cmd/routegen/internal/project"
)

type Cmd struct {
	project.Flags `embed:""`
	Port          int           `help:"Port to listen on." default:"9000" short:"p"`
	Debounce      time.Duration `help:"Quiet period before regenerating." default:"200ms"`
	AllowOrigin   []string      `help:"Origins allowed to read the status endpoints (repeatable)." default:"*" name:"allow-origin"`
}

func (c *Cmd) Run(ctx context.Context, log *zap.Logger) error {
	p, err := c.Load()
	if err != nil {
		return err
	}
	session := project.NewSession(p, log)

	// Mount under /__routegen to stay clear of the app's own routes.
	mux := http.NewServeMux()
	mux.Handle("/__routegen/", http.StripPrefix("/__routegen", NewHandler(session)))
	handler := logRequests(log)(allowOrigins(c.AllowOrigin)(mux))

	srv := &http.Server{
		Addr:              fmt.Sprintf("localhost:%d", c.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("routegen dev listening", zap.String("url", "http://"+srv.Addr+"/__routegen/status"))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "serve")
		}
		return nil
	})
	g.Go(func() error {
		return session.Watch(ctx, c.Debounce)
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
