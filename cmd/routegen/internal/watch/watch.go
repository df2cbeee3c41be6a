package watch

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/broady/routegen/cmd/routegen/internal/project"
)

type Cmd struct {
	project.Flags `embed:""`
	Debounce time.Duration `help:"Quiet period before regenerating." default:"200ms"`
}

func (c *Cmd) Run(ctx context.Context, log *zap.Logger) error {
	p, err := c.Load()
	if err != nil {
		return err
	}
	return project.NewSession(p, log).Watch(ctx, c.Debounce)
}
