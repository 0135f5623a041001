package reception

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicore/clinicore/internal/platform/auth"
	"github.com/clinicore/clinicore/pkg/respond"
)

type Handler struct {
	workload *Workload
}

func NewHandler(workload *Workload) *Handler {
	return &Handler{workload: workload}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	staff := api.Group("", auth.RequireRole("receptionist"))
	staff.GET("/reception/workload", h.MyWorkload)

	admin := api.Group("", auth.RequireRole("admin"))
	admin.GET("/reception/workload/:id", h.WorkloadByID)
}

// MyWorkload returns how many appointments the calling receptionist
// booked today.
func (h *Handler) MyWorkload(c echo.Context) error {
	ctx := c.Request().Context()
	n, err := h.workload.Count(ctx, auth.UserIDFromContext(ctx), time.Now())
	if err != nil {
		return respond.Fail(c, http.StatusInternalServerError, "workload store unavailable")
	}
	return respond.OK(c, http.StatusOK, map[string]int64{"booked_today": n})
}

func (h *Handler) WorkloadByID(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.Fail(c, http.StatusBadRequest, "invalid id")
	}
	n, err := h.workload.Count(c.Request().Context(), id, time.Now())
	if err != nil {
		return respond.Fail(c, http.StatusInternalServerError, "workload store unavailable")
	}
	return respond.OK(c, http.StatusOK, map[string]int64{"booked_today": n})
}
