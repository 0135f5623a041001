package product

import (
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
	// Catalog reads are public so the storefront works for guests.
	api.GET("/products", h.List)
	api.GET("/products/:id", h.Get)

	writeGroup := api.Group("", auth.RequireRole("pharmacist"))
	writeGroup.POST("/products", h.Create)
	writeGroup.PUT("/products/:id", h.Update)
	writeGroup.DELETE("/products/:id", h.Delete)
	writeGroup.POST("/products/:id/restock", h.Restock)
}

func (h *Handler) Create(c echo.Context) error {
	var p Product
	if err := c.Bind(&p); err != nil {
		return respond.Fail(c, http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Create(c.Request().Context(), &p); err != nil {
		return respond.Fail(c, http.StatusBadRequest, err.Error())
	}
	return respond.OK(c, http.StatusCreated, p)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.Fail(c, http.StatusBadRequest, "invalid id")
	}
	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return respond.Fail(c, http.StatusNotFound, "product not found")
	}
	return respond.OK(c, http.StatusOK, p)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), c.QueryParam("category"), pg.Limit, pg.Offset())
	if err != nil {
		return respond.Fail(c, http.StatusInternalServerError, "failed to list products")
	}
	return respond.OK(c, http.StatusOK, map[string]interface{}{
		"products":   items,
		"pagination": pagination.NewMeta(pg, total),
	})
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.Fail(c, http.StatusBadRequest, "invalid id")
	}
	var p Product
	if err := c.Bind(&p); err != nil {
		return respond.Fail(c, http.StatusBadRequest, err.Error())
	}
	p.ID = id
	if err := h.svc.Update(c.Request().Context(), &p); err != nil {
		return respond.Fail(c, http.StatusBadRequest, err.Error())
	}
	return respond.OK(c, http.StatusOK, p)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.Fail(c, http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return respond.Fail(c, http.StatusInternalServerError, "failed to delete product")
	}
	return c.NoContent(http.StatusNoContent)
}

type restockRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

func (h *Handler) Restock(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.Fail(c, http.StatusBadRequest, "invalid id")
	}
	var req restockRequest
	if err := c.Bind(&req); err != nil {
		return respond.Fail(c, http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return respond.Fail(c, http.StatusBadRequest, "quantity must be a positive integer")
	}
	p, err := h.svc.Restock(c.Request().Context(), id, req.Quantity)
	if err != nil {
		return respond.Fail(c, http.StatusBadRequest, err.Error())
	}
	return respond.OK(c, http.StatusOK, p)
}
