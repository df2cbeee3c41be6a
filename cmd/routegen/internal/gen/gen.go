package gen

import (
	"context"

	"go.uber.org/zap"

	"github.com/broady/routegen/cmd/routegen/internal/project"
)

type Cmd struct {
	project.Flags `embed:""`
}

func (c *Cmd) Run(ctx context.Context, log *zap.Logger) error {
	p, err := c.Load()
	if err != nil {
		return err
	}
	if p.ConfigPath != "" {
		log.Debug("loaded project file", zap.String("path", p.ConfigPath))
	}

	res, err := p.Generator().ToFileContext(ctx, p.Output())
	if err != nil {
		// A duplicate route still carries diagnostics worth showing.
		_ = project.Report(log, res)
		return err
	}
	log.Info("generated",
		zap.String("output", p.Output()),
		zap.Int("candidates", res.Candidates),
		zap.Int("endpoints", res.Endpoints()))
	return project.Report(log, res)
}
