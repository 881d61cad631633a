// Package mcpserver exposes cadence predictions as MCP tools over stdio.
package mcpserver

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/logger"
	"github.com/julianstephens/cadence/internal/predict"
	"github.com/julianstephens/cadence/internal/storage"
	"github.com/julianstephens/cadence/internal/sweep"
	"github.com/julianstephens/cadence/internal/tracking"
)

// New creates the MCP server with every cadence tool registered.
func New(store storage.Provider, service *predict.Service) *server.MCPServer {
	s := server.NewMCPServer(
		constants.AppName,
		constants.Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	tracker := tracking.New(store, service)

	listTool := NewListCategoriesTool(store, service.Location())
	s.AddTool(listTool.Definition(), listTool.Handle)

	recordTool := NewRecordEventTool(tracker, service)
	s.AddTool(recordTool.Definition(), recordTool.Handle)

	predictionTool := NewGetPredictionTool(store, service)
	s.AddTool(predictionTool.Definition(), predictionTool.Handle)

	clustersTool := NewGetClustersTool(store, service)
	s.AddTool(clustersTool.Definition(), clustersTool.Handle)

	return s
}

const instructions = `cadence learns the times of day a person usually does things.
Call list_categories to discover categories, record_event when something just happened,
get_prediction to see when each category is expected next, and get_clusters to inspect
the recurring times behind a prediction.`

// Serve runs s on stdio until the client disconnects. When runner is set, a
// background sweep runs every interval for the lifetime of the server.
func Serve(ctx context.Context, s *server.MCPServer, runner *sweep.Runner, interval time.Duration) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	if runner != nil {
		go func() {
			defer close(done)
			if err := runner.Run(ctx, interval, nil); err != nil {
				logger.Error("Background sweep stopped", "error", err)
			}
		}()
	} else {
		close(done)
	}

	logger.Info("MCP server starting", "transport", "stdio", "sweep_interval", interval)
	err := server.ServeStdio(s)
	cancel()

	select {
	case <-done:
	case <-time.After(constants.ShutdownGrace):
		logger.Warn("Background sweep did not stop in time")
	}

	if err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
