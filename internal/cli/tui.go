package cli

import "github.com/julianstephens/cadence/internal/tui"

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *Context) error {
	service, err := ctx.Predictions()
	if err != nil {
		return err
	}
	tracker, err := ctx.Tracker()
	if err != nil {
		return err
	}
	return tui.Run(ctx.Store, service, tracker)
}
