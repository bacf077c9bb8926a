package task

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/careops/careops/internal/platform/auth"
	"github.com/careops/careops/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	role := auth.RequireRole(auth.CareTeamRoles...)

	read := api.Group("", role)
	read.GET("/tasks", h.ListTasks)
	read.GET("/tasks/summary", h.Summary)
	read.GET("/tasks/patients", h.PatientSummaries)
	read.GET("/tasks/dashboard", h.Dashboard)
	read.GET("/tasks/:id", h.GetTask)
	read.GET("/date-ranges", h.ListDateRanges)
	read.GET("/date-ranges/:token", h.ResolveDateRange)
	read.GET("/task-categories/:category/statuses", h.CategoryStatuses)

	write := api.Group("", role)
	write.PATCH("/tasks/:id/status", h.UpdateStatus)
}

func (h *Handler) ListTasks(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, err := h.svc.ListTasks(c.Request().Context(), queryFromContext(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(pagination.Page(items, pg), len(items), pg.Limit, pg.Offset))
}

func (h *Handler) Summary(c echo.Context) error {
	s, err := h.svc.Summary(c.Request().Context(), queryFromContext(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *Handler) PatientSummaries(c echo.Context) error {
	items, err := h.svc.PatientSummaries(c.Request().Context(), queryFromContext(c))
	if err != nil {
		return httpError(err)
	}
	if items == nil {
		items = []PatientTaskSummary{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Dashboard(c echo.Context) error {
	d, err := h.svc.Dashboard(c.Request().Context(), queryFromContext(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) GetTask(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	t, err := h.svc.GetTask(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, t)
}

type statusUpdateRequest struct {
	Status string `json:"status"`
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req statusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Status == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "status is required")
	}
	ok, err := h.svc.UpdateStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"updated": ok})
}

func (h *Handler) ListDateRanges(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string][]string{"tokens": DateRangeTokens()})
}

func (h *Handler) ResolveDateRange(c echo.Context) error {
	r, err := h.svc.ResolveWindow(c.Param("token"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) CategoryStatuses(c echo.Context) error {
	statuses, err := StatusesFor(Category(c.Param("category")))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"category": c.Param("category"),
		"statuses": statuses,
	})
}

// queryFromContext reads view filters from query parameters. due_from and
// due_to bound the due date; either may be omitted.
func queryFromContext(c echo.Context) Query {
	return Query{
		Window: c.QueryParam("window"),
		Criteria: Criteria{
			Status:      c.QueryParam("status"),
			PatientID:   c.QueryParam("patient_id"),
			Category:    c.QueryParam("category"),
			Priority:    c.QueryParam("priority"),
			SearchQuery: c.QueryParam("q"),
			DateRange:   dueRange(c.QueryParam("due_from"), c.QueryParam("due_to")),
		},
	}
}

func dueRange(from, to string) *DateRange {
	if from == "" && to == "" {
		return nil
	}
	if from == "" {
		from = "0001-01-01"
	}
	if to == "" {
		to = "9999-12-31"
	}
	r := ParseDateRange(from, to)
	return &r
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidArgument):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "task not found")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
