package mcpserver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/predict"
	"github.com/julianstephens/cadence/internal/storage"
	"github.com/julianstephens/cadence/internal/tracking"
	"github.com/julianstephens/cadence/internal/utils"
)

// ListCategoriesTool handles the list_categories MCP tool.
type ListCategoriesTool struct {
	store storage.Provider
	loc   *time.Location
}

func NewListCategoriesTool(store storage.Provider, loc *time.Location) *ListCategoriesTool {
	return &ListCategoriesTool{store: store, loc: loc}
}

func (t *ListCategoriesTool) Definition() mcp.Tool {
	return mcp.NewTool("list_categories",
		mcp.WithDescription("List every tracked category with its id and when it was last used."),
	)
}

func (t *ListCategoriesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	categories, err := t.store.GetAllCategories()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list categories: %v", err)), nil
	}
	if len(categories) == 0 {
		return mcp.NewToolResultText("No categories yet. Create one with `cadence category add <label>`."), nil
	}

	var sb strings.Builder
	sb.WriteString("## Categories\n\n")
	for _, c := range categories {
		lastUsed := "never"
		if c.LastUsedAt != nil {
			lastUsed = c.LastUsedAt.In(t.loc).Format(displayLayout)
		}
		fmt.Fprintf(&sb, "- **%s** (`%s`), last used %s\n", c.DisplayName(), c.ID, lastUsed)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// RecordEventTool handles the record_event MCP tool.
type RecordEventTool struct {
	tracker *tracking.Tracker
	service *predict.Service
}

func NewRecordEventTool(tracker *tracking.Tracker, service *predict.Service) *RecordEventTool {
	return &RecordEventTool{tracker: tracker, service: service}
}

func (t *RecordEventTool) Definition() mcp.Tool {
	return mcp.NewTool("record_event",
		mcp.WithDescription("Record one occurrence of a category, now or at a past time."),
		mcp.WithString("category",
			mcp.Required(),
			mcp.Description("Category id or label (case-insensitive)"),
		),
		mcp.WithString("at",
			mcp.Description("When it happened: RFC3339, 'YYYY-MM-DD HH:MM' or 'HH:MM' for today (default: now)"),
		),
	)
}

func (t *RecordEventTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref := strings.TrimSpace(req.GetString("category", ""))
	if ref == "" {
		return mcp.NewToolResultError("'category' is required"), nil
	}

	var at time.Time
	if raw := strings.TrimSpace(req.GetString("at", "")); raw != "" {
		parsed, err := utils.ParseOccurredAt(raw, t.service.Now(), t.service.Location())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		at = parsed
	}

	ev, category, err := t.tracker.Record(ref, at)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Recorded %s at %s (event `%s`).",
		category.DisplayName(), ev.OccurredAt.In(t.service.Location()).Format(displayLayout), ev.ID)), nil
}

// GetPredictionTool handles the get_prediction MCP tool.
type GetPredictionTool struct {
	store   storage.Provider
	service *predict.Service
}

func NewGetPredictionTool(store storage.Provider, service *predict.Service) *GetPredictionTool {
	return &GetPredictionTool{store: store, service: service}
}

func (t *GetPredictionTool) Definition() mcp.Tool {
	return mcp.NewTool("get_prediction",
		mcp.WithDescription("Predict when each category will next happen, based on its recent daily pattern."),
		mcp.WithString("category",
			mcp.Description("Category id or label (default: all categories)"),
		),
	)
}

func (t *GetPredictionTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	categories, errResult := selectCategories(t.store, req.GetString("category", ""))
	if errResult != nil {
		return errResult, nil
	}

	now := t.service.Now()
	var sb strings.Builder
	for i, c := range categories {
		if i > 0 {
			sb.WriteString("\n")
		}
		res, err := t.service.GetPrediction(ctx, c.ID)
		if err != nil && !res.Stale {
			fmt.Fprintf(&sb, "## %s\n\n- **Error**: %v\n", c.DisplayName(), err)
			continue
		}
		writePrediction(&sb, c, res, now, t.service.Location())
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// GetClustersTool handles the get_clusters MCP tool.
type GetClustersTool struct {
	store   storage.Provider
	service *predict.Service
}

func NewGetClustersTool(store storage.Provider, service *predict.Service) *GetClustersTool {
	return &GetClustersTool{store: store, service: service}
}

func (t *GetClustersTool) Definition() mcp.Tool {
	return mcp.NewTool("get_clusters",
		mcp.WithDescription("Show the recurring times of day found in a category's recent events."),
		mcp.WithString("category",
			mcp.Required(),
			mcp.Description("Category id or label"),
		),
	)
}

func (t *GetClustersTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref := strings.TrimSpace(req.GetString("category", ""))
	if ref == "" {
		return mcp.NewToolResultError("'category' is required"), nil
	}
	category, err := storage.ResolveCategory(t.store, ref)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := t.service.GetPrediction(ctx, category.ID)
	if err != nil && !res.Stale {
		return mcp.NewToolResultError(fmt.Sprintf("failed to compute clusters: %v", err)), nil
	}

	var sb strings.Builder
	writeClusters(&sb, category, res.Clusters)
	if res.Stale {
		sb.WriteString("\nThese clusters are from the last successful computation.\n")
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// selectCategories resolves an optional category reference. An empty ref
// selects every category.
func selectCategories(store storage.Provider, ref string) ([]models.Category, *mcp.CallToolResult) {
	ref = strings.TrimSpace(ref)
	if ref != "" {
		c, err := storage.ResolveCategory(store, ref)
		if err != nil {
			return nil, mcp.NewToolResultError(err.Error())
		}
		return []models.Category{c}, nil
	}

	categories, err := store.GetAllCategories()
	if err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("failed to list categories: %v", err))
	}
	if len(categories) == 0 {
		return nil, mcp.NewToolResultError("no categories yet")
	}
	return categories, nil
}
