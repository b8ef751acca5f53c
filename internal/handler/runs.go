package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/tagship/tagship/internal/event"
	"github.com/tagship/tagship/internal/service"
	"github.com/tagship/tagship/internal/store"
)

const maxRunsPerPage int64 = 10

type RunServicer interface {
	CreateRun(ctx context.Context, rawRef string) (*store.Run, error)
	GetRunByID(ctx context.Context, runID int64) (*store.Run, error)
	ListRunsPaginated(ctx context.Context, limit, offset int64) ([]store.Run, error)
	GetRunCount(ctx context.Context) (int64, error)
}

func SetupRunRoutes(e *echo.Echo, runService RunServicer, webhookKey string) {
	h := NewRunHandler(runService)
	e.POST("/hooks/push", h.PostPushWebhook, WebhookKeyAuth(webhookKey))
	e.GET("/runs", h.GetRuns)
	e.GET("/runs/:run_id", h.GetRun)
}

type RunHandler struct {
	runService RunServicer
}

func NewRunHandler(runService RunServicer) *RunHandler {
	return &RunHandler{runService: runService}
}

type runResponse struct {
	RunID        int64      `json:"run_id"`
	Ref          string     `json:"ref"`
	RefKind      string     `json:"ref_kind"`
	StageReached *string    `json:"stage_reached"`
	Outcome      *string    `json:"outcome"`
	ArtifactPath *string    `json:"artifact_path"`
	Output       *string    `json:"output,omitempty"`
	Status       string     `json:"status"`
	CreatedOn    time.Time  `json:"created_on"`
	StartedOn    *time.Time `json:"started_on"`
	EndedOn      *time.Time `json:"ended_on"`
}

func toRunResponse(r *store.Run, withOutput bool) runResponse {
	res := runResponse{
		RunID:        r.RunID,
		Ref:          r.Ref,
		RefKind:      r.RefKind,
		StageReached: r.StageReached,
		Outcome:      r.Outcome,
		ArtifactPath: r.ArtifactPath,
		Status:       string(r.Status),
		CreatedOn:    r.CreatedOn,
		StartedOn:    r.StartedOn,
		EndedOn:      r.EndedOn,
	}
	if withOutput {
		res.Output = r.Output
	}
	return res
}

// PostPushWebhook records and enqueues a run for a pushed ref. Only push
// events carry a ref, so anything without one is rejected up front.
func (h *RunHandler) PostPushWebhook(c echo.Context) error {
	pp := new(PushParams)
	if err := c.Bind(pp); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid push payload")
	}

	r, err := h.runService.CreateRun(c.Request().Context(), pp.Ref)
	if err != nil {
		var ce event.ClassifyError
		if errors.As(err, &ce) {
			return echo.NewHTTPError(http.StatusBadRequest, ce.Error())
		}
		if errors.As(err, new(*service.ErrRunQueueFull)) ||
			errors.As(err, new(*service.ErrRunQueueClosed)) {
			return echo.NewHTTPError(
				http.StatusServiceUnavailable, "run queue is not accepting runs",
			).WithInternal(err)
		}
		return newError(err, http.StatusInternalServerError, "unable to create run")
	}

	return c.JSON(http.StatusAccepted, toRunResponse(r, false))
}

func (h *RunHandler) GetRun(c echo.Context) error {
	rp := new(RunParams)
	if err := c.Bind(rp); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid run id")
	}

	r, err := h.runService.GetRunByID(c.Request().Context(), rp.RunID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return echo.NewHTTPError(http.StatusNotFound, "run not found")
		}
		return newError(err, http.StatusInternalServerError, "unable to read run")
	}

	return c.JSON(http.StatusOK, toRunResponse(r, true))
}

func (h *RunHandler) GetRuns(c echo.Context) error {
	lp := new(ListRunsParams)
	if err := c.Bind(lp); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if lp.Page < 1 {
		lp.Page = 1
	}

	count, err := h.runService.GetRunCount(c.Request().Context())
	if err != nil {
		return newError(err, http.StatusInternalServerError, "unable to count runs")
	}

	runs, err := h.runService.ListRunsPaginated(
		c.Request().Context(), maxRunsPerPage, (lp.Page-1)*maxRunsPerPage,
	)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return newError(err, http.StatusInternalServerError, "unable to list runs")
	}

	res := make([]runResponse, 0, len(runs))
	for i := range runs {
		res = append(res, toRunResponse(&runs[i], false))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"runs":  res,
		"page":  lp.Page,
		"total": count,
	})
}
