package cli

import (
	"context"
	"fmt"

	"github.com/julianstephens/cadence/internal/mcpserver"
	"github.com/julianstephens/cadence/internal/sweep"
)

type ServeCmd struct {
	NoSweep bool `help:"Do not run the periodic sweep in the background."`
}

func (c *ServeCmd) Run(ctx *Context) error {
	service, err := ctx.Predictions()
	if err != nil {
		return err
	}
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	var runner *sweep.Runner
	if !c.NoSweep {
		runner, err = ctx.sweepRunner()
		if err != nil {
			return err
		}
	}

	return mcpserver.Serve(context.Background(), mcpserver.New(ctx.Store, service), runner, settings.SweepInterval())
}
