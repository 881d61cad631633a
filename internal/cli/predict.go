package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/julianstephens/cadence/internal/circular"
	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/logger"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/predict"
	"github.com/julianstephens/cadence/internal/storage"
	"github.com/julianstephens/cadence/internal/utils"
)

type PredictCmd struct {
	Category string `arg:"" optional:"" help:"Category id or label (default: all categories)."`
}

func (c *PredictCmd) Run(ctx *Context) error {
	service, err := ctx.Predictions()
	if err != nil {
		return err
	}

	var categories []models.Category
	if c.Category != "" {
		category, err := storage.ResolveCategory(ctx.Store, c.Category)
		if err != nil {
			return err
		}
		categories = []models.Category{category}
	} else {
		categories, err = ctx.Store.GetAllCategories()
		if err != nil {
			return err
		}
	}

	if len(categories) == 0 {
		fmt.Println("No categories found. Add one with 'cadence category add <label>'.")
		return nil
	}

	now := service.Now()
	for _, category := range categories {
		res, err := service.GetPrediction(context.Background(), category.ID)
		writePrediction(os.Stdout, category, res, err, now, service.Location())
	}
	return nil
}

// writePrediction prints one category's prediction line. A failed
// computation is logged and shown as "no prediction yet" unless a stale
// result is available.
func writePrediction(w io.Writer, category models.Category, res predict.Result, err error, now time.Time, loc *time.Location) {
	name := fmt.Sprintf("%-24s", category.DisplayName())

	if err != nil {
		logger.Warn("Prediction failed", "category", category.ID, "stale", res.Stale, "error", err)
		if !res.Stale {
			res = predict.Result{CategoryID: category.ID}
		}
	}

	switch res.State {
	case predict.StateReady:
		target := res.Prediction.Target.In(loc)
		day := "today"
		if y, m, d := target.Date(); y != now.In(loc).Year() || m != now.In(loc).Month() || d != now.In(loc).Day() {
			day = "tomorrow"
		}
		hours, minutes := predict.Countdown(res.Prediction.Target, now)
		fmt.Fprintf(w, "%s %s %s %s %s\n",
			titleStyle.Render(name),
			target.Format(constants.TimeFormat),
			day,
			dimStyle.Render("(in "+utils.FormatCountdown(hours, minutes)+")"),
			confidenceBadge(res.Prediction.Confidence))
	default:
		fmt.Fprintf(w, "%s %s\n", titleStyle.Render(name), dimStyle.Render("no prediction yet"))
	}

	if res.Stale {
		fmt.Fprintf(w, "%-24s %s\n", "", warnStyle.Render("⚠ showing last result from "+res.ComputedAt.In(loc).Format("2006-01-02 15:04")))
	}
}

type ClustersCmd struct {
	Category string `arg:"" help:"Category id or label."`
}

func (c *ClustersCmd) Run(ctx *Context) error {
	category, err := storage.ResolveCategory(ctx.Store, c.Category)
	if err != nil {
		return err
	}
	service, err := ctx.Predictions()
	if err != nil {
		return err
	}

	res, err := service.GetPrediction(context.Background(), category.ID)
	if err != nil && !res.Stale {
		return err
	}
	if res.Stale {
		fmt.Println(warnStyle.Render("⚠ showing the last successful computation: " + err.Error()))
	}

	fmt.Printf("%s\n\n", titleStyle.Render("Clusters for "+category.DisplayName()))
	if len(res.Clusters) == 0 {
		fmt.Println("No clusters found. Record more events to reveal a daily pattern.")
		return nil
	}

	fmt.Printf("  %-6s  %-8s  %-7s  %s\n", "TIME", "SPREAD", "EVENTS", "CONFIDENCE")
	for _, cl := range res.Clusters {
		fmt.Printf("  %-6s  %-8s  %-7d  %s\n",
			circular.FormatClock(cl.CentroidMin), utils.FormatSpread(cl.SpreadMin), cl.Size(), confidenceBadge(cl.Confidence))
	}
	return nil
}
