package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/cadence/internal/storage"
	"github.com/julianstephens/cadence/internal/utils"
)

type EventCmd struct {
	Record EventRecordCmd `cmd:"" help:"Record an occurrence of a category."`
	List   EventListCmd   `cmd:"" help:"List a category's recent events."`
	Delete EventDeleteCmd `cmd:"" help:"Delete an event."`
}

type EventRecordCmd struct {
	Category string `arg:"" help:"Category id or label."`
	At       string `help:"When it happened: RFC3339, 'YYYY-MM-DD HH:MM' or 'HH:MM' for today (default: now)."`
}

func (c *EventRecordCmd) Run(ctx *Context) error {
	tracker, err := ctx.Tracker()
	if err != nil {
		return err
	}
	service, err := ctx.Predictions()
	if err != nil {
		return err
	}

	var at time.Time
	if c.At != "" {
		at, err = utils.ParseOccurredAt(c.At, service.Now(), service.Location())
		if err != nil {
			return err
		}
	}

	ev, category, err := tracker.Record(c.Category, at)
	if err != nil {
		return err
	}

	fmt.Printf("✓ Recorded %s at %s\n", category.DisplayName(), ev.OccurredAt.In(service.Location()).Format("2006-01-02 15:04"))
	return nil
}

type EventListCmd struct {
	Category string `arg:"" help:"Category id or label."`
	Days     int    `help:"How many days back to list." default:"7"`
}

func (c *EventListCmd) Run(ctx *Context) error {
	if c.Days < 1 {
		return fmt.Errorf("--days must be at least 1")
	}
	category, err := storage.ResolveCategory(ctx.Store, c.Category)
	if err != nil {
		return err
	}
	service, err := ctx.Predictions()
	if err != nil {
		return err
	}

	now := service.Now()
	events, err := ctx.Store.QueryEvents(context.Background(), category.ID, now.AddDate(0, 0, -c.Days), now)
	if err != nil {
		return err
	}

	if len(events) == 0 {
		fmt.Printf("No events for %s in the last %d day(s).\n", category.DisplayName(), c.Days)
		return nil
	}

	fmt.Printf("%s: %d event(s) in the last %d day(s)\n\n", category.DisplayName(), len(events), c.Days)
	for _, ev := range events {
		fmt.Printf("  %s  %s\n", ev.OccurredAt.In(service.Location()).Format("Mon 2006-01-02 15:04"), dimStyle.Render(ev.ID))
	}
	return nil
}

type EventDeleteCmd struct {
	ID string `arg:"" help:"Event id."`
}

func (c *EventDeleteCmd) Run(ctx *Context) error {
	tracker, err := ctx.Tracker()
	if err != nil {
		return err
	}
	if _, err := tracker.DeleteEvent(c.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted event: %s\n", c.ID)
	return nil
}
