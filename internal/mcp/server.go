package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/careops/careops/internal/domain/task"
)

const (
	serverName    = "careops"
	serverVersion = "0.1.0"
)

// NewServer exposes the task service as MCP tools.
func NewServer(svc *task.Service) *server.MCPServer {
	s := server.NewMCPServer(serverName, serverVersion)

	s.AddTool(mcp.NewTool("list_tasks",
		mcp.WithDescription("List care tasks matching the given filters, soonest due first."),
		withQueryParams(),
		mcp.WithNumber("limit", mcp.Description("Maximum number of tasks to return (default 50)")),
	), listTasksHandler(svc))

	s.AddTool(mcp.NewTool("task_summary",
		mcp.WithDescription("Count tasks by state, category and priority."),
		withQueryParams(),
	), taskSummaryHandler(svc))

	s.AddTool(mcp.NewTool("patient_task_summary",
		mcp.WithDescription("Roll tasks up per patient, patients with the most pending work first."),
		withQueryParams(),
	), patientSummaryHandler(svc))

	s.AddTool(mcp.NewTool("task_dashboard",
		mcp.WithDescription("Tasks, summary, per-patient roll-up and urgency counts in one call."),
		withQueryParams(),
	), dashboardHandler(svc))

	s.AddTool(mcp.NewTool("update_task_status",
		mcp.WithDescription("Set the status of a task."),
		mcp.WithString("id", mcp.Description("Task id (UUID)"), mcp.Required()),
		mcp.WithString("status", mcp.Description("New status, e.g. pending, in-progress, completed, no-show"), mcp.Required()),
	), updateStatusHandler(svc))

	s.AddTool(mcp.NewTool("resolve_date_range",
		mcp.WithDescription("Resolve a time-window token to concrete start and end dates."),
		mcp.WithString("window", mcp.Description("One of 1week, 2weeks, 1month, 2months, 3months"), mcp.Required()),
	), resolveDateRangeHandler(svc))

	return s
}

// withQueryParams declares the filter arguments shared by the read tools.
func withQueryParams() mcp.ToolOption {
	return func(t *mcp.Tool) {
		for _, opt := range []mcp.ToolOption{
			mcp.WithString("window", mcp.Description("Creation window token: 1week, 2weeks, 1month, 2months, 3months")),
			mcp.WithString("status", mcp.Description("Exact status, or \"all\"")),
			mcp.WithString("patient_id", mcp.Description("Patient id (UUID), or \"all\"")),
			mcp.WithString("category", mcp.Description("provider-level, patient-level, system-level, community-level, or \"all\"")),
			mcp.WithString("priority", mcp.Description("high, medium, low, or \"all\"")),
			mcp.WithString("search", mcp.Description("Case-insensitive text matched against title, description and patient name")),
			mcp.WithString("due_from", mcp.Description("Earliest due date (YYYY-MM-DD)")),
			mcp.WithString("due_to", mcp.Description("Latest due date (YYYY-MM-DD)")),
		} {
			opt(t)
		}
	}
}

func queryFromRequest(request mcp.CallToolRequest) task.Query {
	q := task.Query{
		Window: mcp.ParseString(request, "window", ""),
		Criteria: task.Criteria{
			Status:      mcp.ParseString(request, "status", ""),
			PatientID:   mcp.ParseString(request, "patient_id", ""),
			Category:    mcp.ParseString(request, "category", ""),
			Priority:    mcp.ParseString(request, "priority", ""),
			SearchQuery: mcp.ParseString(request, "search", ""),
		},
	}
	from := mcp.ParseString(request, "due_from", "")
	to := mcp.ParseString(request, "due_to", "")
	if from != "" || to != "" {
		if from == "" {
			from = "0001-01-01"
		}
		if to == "" {
			to = "9999-12-31"
		}
		r := task.ParseDateRange(from, to)
		q.Criteria.DateRange = &r
	}
	return q
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func listTasksHandler(svc *task.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tasks, err := svc.ListTasks(ctx, queryFromRequest(request))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		total := len(tasks)
		if limit := mcp.ParseInt(request, "limit", 50); limit > 0 && limit < len(tasks) {
			tasks = tasks[:limit]
		}
		return jsonResult(map[string]interface{}{"tasks": tasks, "total": total})
	}
}

func taskSummaryHandler(svc *task.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		s, err := svc.Summary(ctx, queryFromRequest(request))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(s)
	}
}

func patientSummaryHandler(svc *task.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		items, err := svc.PatientSummaries(ctx, queryFromRequest(request))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if items == nil {
			items = []task.PatientTaskSummary{}
		}
		return jsonResult(map[string]interface{}{"patients": items})
	}
}

func dashboardHandler(svc *task.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		d, err := svc.Dashboard(ctx, queryFromRequest(request))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(d)
	}
}

func updateStatusHandler(svc *task.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		rawID := mcp.ParseString(request, "id", "")
		id, err := uuid.Parse(rawID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid task id %q", rawID)), nil
		}
		status := mcp.ParseString(request, "status", "")
		ok, err := svc.UpdateStatus(ctx, id, status)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("task %s was not updated", id)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Task %s set to %s", id, status)), nil
	}
}

func resolveDateRangeHandler(svc *task.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		r, err := svc.ResolveWindow(mcp.ParseString(request, "window", ""))
		if errors.Is(err, task.ErrInvalidArgument) {
			return mcp.NewToolResultError(fmt.Sprintf("%v (valid: %v)", err, task.DateRangeTokens())), nil
		}
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(r)
	}
}
