package labtest

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicore/clinicore/internal/platform/auth"
	"github.com/clinicore/clinicore/pkg/pagination"
	"github.com/clinicore/clinicore/pkg/respond"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	doctors := api.Group("", auth.RequireRole("doctor"))
	doctors.POST("/lab-tests", h.Order)

	techs := api.Group("", auth.RequireRole("lab_technician"))
	techs.POST("/lab-tests/:id/start", h.Start)
	techs.POST("/lab-tests/:id/complete", h.Complete)
	techs.GET("/lab-tests", h.ListByStatus)

	staff := api.Group("", auth.RequireRole("doctor", "lab_technician"))
	staff.POST("/lab-tests/:id/cancel", h.Cancel)

	authed := api.Group("", auth.RequireAuth())
	authed.GET("/lab-tests/:id", h.Get)
	authed.GET("/lab-tests/mine", h.ListMine)
}

type orderRequest struct {
	PatientID uuid.UUID `json:"patient_id"`
	TestType  string    `json:"test_type"`
}

func (h *Handler) Order(c echo.Context) error {
	var req orderRequest
	if err := c.Bind(&req); err != nil {
		return respond.Fail(c, http.StatusBadRequest, "invalid request body")
	}
	ctx := c.Request().Context()
	t, err := h.svc.OrderTest(ctx, req.PatientID, auth.UserIDFromContext(ctx), req.TestType)
	if err != nil {
		return respond.Fail(c, http.StatusBadRequest, err.Error())
	}
	return respond.OK(c, http.StatusCreated, t)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.Fail(c, http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	t, err := h.svc.Get(ctx, id)
	if err != nil {
		return respond.Fail(c, http.StatusNotFound, "lab test not found")
	}
	callerID := auth.UserIDFromContext(ctx)
	if auth.RoleFromContext(ctx) == "patient" && t.PatientID != callerID {
		return respond.Fail(c, http.StatusNotFound, "lab test not found")
	}
	return respond.OK(c, http.StatusOK, t)
}

func (h *Handler) Start(c echo.Context) error {
	return h.transition(c, func(c echo.Context, id uuid.UUID) (*LabTest, error) {
		return h.svc.Start(c.Request().Context(), id)
	})
}

type completeRequest struct {
	Result string `json:"result"`
}

func (h *Handler) Complete(c echo.Context) error {
	var req completeRequest
	if err := c.Bind(&req); err != nil {
		return respond.Fail(c, http.StatusBadRequest, "invalid request body")
	}
	return h.transition(c, func(c echo.Context, id uuid.UUID) (*LabTest, error) {
		return h.svc.Complete(c.Request().Context(), id, req.Result)
	})
}

func (h *Handler) Cancel(c echo.Context) error {
	return h.transition(c, func(c echo.Context, id uuid.UUID) (*LabTest, error) {
		return h.svc.Cancel(c.Request().Context(), id)
	})
}

func (h *Handler) transition(c echo.Context, fn func(echo.Context, uuid.UUID) (*LabTest, error)) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.Fail(c, http.StatusBadRequest, "invalid id")
	}
	t, err := fn(c, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return respond.Fail(c, http.StatusNotFound, "lab test not found")
		}
		return respond.Fail(c, http.StatusBadRequest, err.Error())
	}
	return respond.OK(c, http.StatusOK, t)
}

func (h *Handler) ListMine(c echo.Context) error {
	ctx := c.Request().Context()
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByPatient(ctx, auth.UserIDFromContext(ctx), pg.Limit, pg.Offset())
	if err != nil {
		return respond.Fail(c, http.StatusInternalServerError, "failed to list lab tests")
	}
	if items == nil {
		items = []*LabTest{}
	}
	return respond.OK(c, http.StatusOK, map[string]interface{}{
		"lab_tests":  items,
		"pagination": pagination.NewMeta(pg, total),
	})
}

func (h *Handler) ListByStatus(c echo.Context) error {
	status := c.QueryParam("status")
	if status == "" {
		status = StatusOrdered
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByStatus(c.Request().Context(), status, pg.Limit, pg.Offset())
	if err != nil {
		return respond.Fail(c, http.StatusBadRequest, err.Error())
	}
	if items == nil {
		items = []*LabTest{}
	}
	return respond.OK(c, http.StatusOK, map[string]interface{}{
		"lab_tests":  items,
		"pagination": pagination.NewMeta(pg, total),
	})
}
