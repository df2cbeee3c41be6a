package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/cockroachdb/errors"

	"github.com/broady/routegen/cmd/routegen/internal/check"
	"github.com/broady/routegen/cmd/routegen/internal/dev"
	"github.com/broady/routegen/cmd/routegen/internal/gen"
	"github.com/broady/routegen/cmd/routegen/internal/watch"
	"github.com/broady/routegen/internal/logging"
)

type CLI struct {
	LogFormat string `help:"Log output format." enum:"console,json" default:"console" name:"log-format"`
	LogLevel  string `help:"Minimum log level." enum:"debug,info,warn,error" default:"info" name:"log-level"`

	Version VersionCmd `cmd:"" help:"Print version information."`
	Gen     gen.Cmd    `cmd:"" help:"Generate the TypeScript client module."`
	Check   check.Cmd  `cmd:"" help:"Fail when the generated module is out of date."`
	Watch   watch.Cmd  `cmd:"" help:"Regenerate whenever endpoint files change."`
	Dev     dev.Cmd    `cmd:"" help:"Watch and serve generation status on a local port."`
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(Version())
	return nil
}

func main() {
	cli := &CLI{}
	kctx := kong.Parse(cli,
		kong.Name("routegen"),
		kong.Description("Generate a typed TypeScript client from server endpoint files."),
		kong.UsageOnError(),
	)

	log, err := logging.New(os.Stderr, cli.LogFormat, cli.LogLevel)
	kctx.FatalIfErrorf(err)
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kctx.BindTo(ctx, (*context.Context)(nil))
	if err := kctx.Run(log); err != nil {
		log.Sync() //nolint:errcheck
		if hint := errors.FlattenHints(err); hint != "" {
			fmt.Fprintln(os.Stderr, "hint:", hint)
		}
		kctx.FatalIfErrorf(err)
	}
}
