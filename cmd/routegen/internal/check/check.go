package check

import (
	"context"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/broady/routegen"
	"github.com/broady/routegen/cmd/routegen/internal/project"
)

// Cmd regenerates in memory and fails when the output on disk is stale.
type Cmd struct {
	project.Flags `embed:""`
}

func (c *Cmd) Run(ctx context.Context, log *zap.Logger) error {
	p, err := c.Load()
	if err != nil {
		return err
	}

	res, err := p.Generator().Check(ctx, p.Output())
	if errors.Is(err, routegen.ErrStale) {
		return errors.WithHint(err, "run `routegen gen` to update it")
	}
	if err != nil {
		_ = project.Report(log, res)
		return err
	}
	log.Info("output is up to date",
		zap.String("output", p.Output()),
		zap.Int("endpoints", res.Endpoints()))
	return project.Report(log, res)
}
