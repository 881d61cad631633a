package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/predict"
	"github.com/julianstephens/cadence/internal/utils"
)

// Item is one category row of the dashboard.
type Item struct {
	Category models.Category
	Result   predict.Result
	Err      error
	Now      time.Time
	Location *time.Location
}

func (i Item) Title() string { return i.Category.DisplayName() }

func (i Item) Description() string {
	// failures are logged when the row is loaded
	if i.Err != nil && !i.Result.Stale {
		return "no prediction yet"
	}

	var desc string
	switch i.Result.State {
	case predict.StateReady:
		pred := i.Result.Prediction
		target := pred.Target.In(i.Location)
		hours, minutes := predict.Countdown(pred.Target, i.Now)
		desc = fmt.Sprintf("next %s %s (in %s) · %s",
			target.Format(constants.TimeFormat),
			dayLabel(target, i.Now.In(i.Location)),
			utils.FormatCountdown(hours, minutes),
			strings.ToLower(string(pred.Confidence)))
	default:
		desc = "no prediction yet"
	}
	if i.Result.Stale {
		desc += " · stale"
	}
	return desc
}

func (i Item) FilterValue() string { return i.Category.Label }

func dayLabel(target, now time.Time) string {
	ty, tm, td := target.Date()
	ny, nm, nd := now.Date()
	if ty == ny && tm == nm && td == nd {
		return "today"
	}
	return "tomorrow"
}
