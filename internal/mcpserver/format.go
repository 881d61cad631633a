package mcpserver

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/cadence/internal/circular"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/predict"
	"github.com/julianstephens/cadence/internal/utils"
)

const displayLayout = "2006-01-02 15:04 MST"

func writePrediction(sb *strings.Builder, c models.Category, res predict.Result, now time.Time, loc *time.Location) {
	fmt.Fprintf(sb, "## %s\n\n", c.DisplayName())
	fmt.Fprintf(sb, "- **ID**: %s\n", c.ID)

	switch res.State {
	case predict.StateReady:
		hours, minutes := predict.Countdown(res.Prediction.Target, now)
		fmt.Fprintf(sb, "- **Next**: %s (in %s)\n", res.Prediction.Target.In(loc).Format(displayLayout), utils.FormatCountdown(hours, minutes))
		fmt.Fprintf(sb, "- **Confidence**: %s\n", res.Prediction.Confidence)
		fmt.Fprintf(sb, "- **Habit time**: %s\n", circular.FormatClock(res.Prediction.CentroidMin))
	case predict.StateInsufficientData:
		sb.WriteString("- **Next**: no prediction yet (not enough recent events)\n")
	default:
		sb.WriteString("- **Next**: unavailable\n")
	}

	if res.Stale {
		fmt.Fprintf(sb, "- **Warning**: showing the last result, computed %s\n", res.ComputedAt.In(loc).Format(displayLayout))
	}
}

func writeClusters(sb *strings.Builder, c models.Category, clusters []models.Cluster) {
	fmt.Fprintf(sb, "## Clusters for %s\n\n", c.DisplayName())
	if len(clusters) == 0 {
		sb.WriteString("No clusters found. Record more events to reveal a daily pattern.\n")
		return
	}

	sb.WriteString("| Time | Spread | Events | Confidence |\n")
	sb.WriteString("|------|--------|--------|------------|\n")
	for _, cl := range clusters {
		fmt.Fprintf(sb, "| %s | %s | %d | %s |\n",
			circular.FormatClock(cl.CentroidMin), utils.FormatSpread(cl.SpreadMin), cl.Size(), cl.Confidence)
	}
}
