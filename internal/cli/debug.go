package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/predict"
	"github.com/julianstephens/cadence/internal/storage"
)

type DebugCmd struct {
	DBPath       *DebugDBPathCmd       `cmd:"" help:"Show database path."`
	DumpCategory *DebugDumpCategoryCmd `cmd:"" help:"Dump a category with its events and clusters as JSON."`
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *Context) error {
	output := map[string]string{
		"path": ctx.Store.GetConfigPath(),
	}

	jsonBytes, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}

	fmt.Println(string(jsonBytes))
	return nil
}

type DebugDumpCategoryCmd struct {
	Category string `arg:"" help:"Category id or label."`
}

type categoryDump struct {
	Category   models.Category    `json:"category"`
	Events     []models.Event     `json:"events"`
	Clusters   []clusterDump      `json:"clusters"`
	Prediction *models.Prediction `json:"prediction,omitempty"`
	State      string             `json:"state"`
	Stale      bool               `json:"stale,omitempty"`
}

// clusterDump mirrors models.Cluster with an undefined spread as null,
// since JSON has no infinity.
type clusterDump struct {
	CentroidMin float64           `json:"centroid_min"`
	SpreadMin   *float64          `json:"spread_min"`
	MemberIDs   []string          `json:"member_ids"`
	Confidence  models.Confidence `json:"confidence"`
}

func dumpClusters(clusters []models.Cluster) []clusterDump {
	out := make([]clusterDump, len(clusters))
	for i, cl := range clusters {
		out[i] = clusterDump{
			CentroidMin: cl.CentroidMin,
			MemberIDs:   cl.MemberIDs,
			Confidence:  cl.Confidence,
		}
		if !math.IsInf(cl.SpreadMin, 0) {
			spread := cl.SpreadMin
			out[i].SpreadMin = &spread
		}
	}
	return out
}

func (cmd *DebugDumpCategoryCmd) Run(ctx *Context) error {
	category, err := storage.ResolveCategory(ctx.Store, cmd.Category)
	if err != nil {
		return err
	}
	service, err := ctx.Predictions()
	if err != nil {
		return err
	}

	now := service.Now()
	events, err := ctx.Store.QueryEvents(context.Background(), category.ID, now.Add(-service.Retention()), now)
	if err != nil {
		return fmt.Errorf("failed to query events: %w", err)
	}

	res, err := service.GetPrediction(context.Background(), category.ID)
	if err != nil && !res.Stale {
		return err
	}

	dump := categoryDump{
		Category: category,
		Events:   events,
		Clusters: dumpClusters(res.Clusters),
		State:    res.State.String(),
		Stale:    res.Stale,
	}
	if dump.Events == nil {
		dump.Events = []models.Event{}
	}
	if res.State == predict.StateReady {
		pred := res.Prediction
		dump.Prediction = &pred
	}

	jsonBytes, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}

	fmt.Println(string(jsonBytes))
	return nil
}
