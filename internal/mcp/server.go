package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("DoOneMore", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("DoOneMore workout tracker. Browse the exercise catalog and routines, read workout history per exercise, and share or import routines as doonemorefitness:// links."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolListExercises, Handler: h.listExercises},
		server.ServerTool{Tool: toolListRoutines, Handler: h.listRoutines},
		server.ServerTool{Tool: toolGetWorkouts, Handler: h.getWorkouts},
		server.ServerTool{Tool: toolGetExerciseHistory, Handler: h.getExerciseHistory},
		server.ServerTool{Tool: toolShareRoutine, Handler: h.shareRoutine},
		server.ServerTool{Tool: toolImportRoutine, Handler: h.importRoutine},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resCatalog, Handler: h.catalog},
		server.ServerResource{Resource: resRecentWorkouts, Handler: h.recentWorkouts},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resCatalog = mcp.NewResource(
	"doonemore://catalog",
	"Exercise Catalog",
	mcp.WithResourceDescription("Every exercise grouped by category, with the metrics each one is logged with"),
	mcp.WithMIMEType("application/json"),
)

var resRecentWorkouts = mcp.NewResource(
	"doonemore://recent_workouts",
	"Recent Workouts",
	mcp.WithResourceDescription("Workouts from the last 14 days, newest first"),
	mcp.WithMIMEType("application/json"),
)
