package appointment

import (
	"errors"
	"net/http"
	"time"

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
	authed := api.Group("", auth.RequireAuth())
	authed.POST("/appointments", h.Book)
	authed.GET("/appointments/:id", h.Get)
	authed.GET("/appointments", h.ListMine)
	authed.POST("/appointments/:id/cancel", h.Cancel)

	staff := api.Group("", auth.RequireRole("doctor", "receptionist"))
	staff.POST("/appointments/:id/confirm", h.Confirm)

	doctors := api.Group("", auth.RequireRole("doctor"))
	doctors.POST("/appointments/:id/complete", h.Complete)
}

type bookRequest struct {
	PatientID   uuid.UUID `json:"patient_id"`
	DoctorID    uuid.UUID `json:"doctor_id" validate:"required"`
	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
	Reason      string    `json:"reason"`
}

func (h *Handler) Book(c echo.Context) error {
	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return respond.Fail(c, http.StatusBadRequest, "invalid request body")
	}
	ctx := c.Request().Context()
	callerID := auth.UserIDFromContext(ctx)
	role := auth.RoleFromContext(ctx)

	a := &Appointment{
		PatientID:   req.PatientID,
		DoctorID:    req.DoctorID,
		ScheduledAt: req.ScheduledAt,
		Reason:      req.Reason,
	}
	var bookedBy *uuid.UUID
	switch role {
	case "receptionist":
		// Receptionists book on a patient's behalf.
		id := callerID
		bookedBy = &id
	default:
		a.PatientID = callerID
	}

	if err := h.svc.Book(ctx, a, bookedBy); err != nil {
		return respond.Fail(c, http.StatusBadRequest, err.Error())
	}
	return respond.OK(c, http.StatusCreated, a)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.Fail(c, http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	a, err := h.svc.Get(ctx, id)
	if err != nil {
		return respond.Fail(c, http.StatusNotFound, "appointment not found")
	}
	// Patients only see their own appointments; a foreign one reads as
	// missing, same as orders.
	callerID := auth.UserIDFromContext(ctx)
	role := auth.RoleFromContext(ctx)
	if role == "patient" && a.PatientID != callerID {
		return respond.Fail(c, http.StatusNotFound, "appointment not found")
	}
	return respond.OK(c, http.StatusOK, a)
}

func (h *Handler) ListMine(c echo.Context) error {
	ctx := c.Request().Context()
	callerID := auth.UserIDFromContext(ctx)
	pg := pagination.FromContext(c)

	var (
		items []*Appointment
		total int
		err   error
	)
	if auth.RoleFromContext(ctx) == "doctor" {
		items, total, err = h.svc.ListByDoctor(ctx, callerID, pg.Limit, pg.Offset())
	} else {
		items, total, err = h.svc.ListByPatient(ctx, callerID, pg.Limit, pg.Offset())
	}
	if err != nil {
		return respond.Fail(c, http.StatusInternalServerError, "failed to list appointments")
	}
	if items == nil {
		items = []*Appointment{}
	}
	return respond.OK(c, http.StatusOK, map[string]interface{}{
		"appointments": items,
		"pagination":   pagination.NewMeta(pg, total),
	})
}

func (h *Handler) transition(c echo.Context, fn func(echo.Context, uuid.UUID) (*Appointment, error)) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.Fail(c, http.StatusBadRequest, "invalid id")
	}
	a, err := fn(c, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return respond.Fail(c, http.StatusNotFound, "appointment not found")
		}
		return respond.Fail(c, http.StatusBadRequest, err.Error())
	}
	return respond.OK(c, http.StatusOK, a)
}

func (h *Handler) Confirm(c echo.Context) error {
	return h.transition(c, func(c echo.Context, id uuid.UUID) (*Appointment, error) {
		return h.svc.Confirm(c.Request().Context(), id)
	})
}

type completeRequest struct {
	Notes string `json:"notes"`
}

func (h *Handler) Complete(c echo.Context) error {
	var req completeRequest
	if err := c.Bind(&req); err != nil {
		return respond.Fail(c, http.StatusBadRequest, "invalid request body")
	}
	return h.transition(c, func(c echo.Context, id uuid.UUID) (*Appointment, error) {
		return h.svc.Complete(c.Request().Context(), id, req.Notes)
	})
}

func (h *Handler) Cancel(c echo.Context) error {
	return h.transition(c, func(c echo.Context, id uuid.UUID) (*Appointment, error) {
		return h.svc.Cancel(c.Request().Context(), id)
	})
}
