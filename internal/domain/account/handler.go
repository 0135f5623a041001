package account

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

// RegisterRoutes wires the public auth endpoints and the
// authenticated profile surface.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)
	api.GET("/me", h.Me, auth.RequireAuth())
	api.PUT("/me", h.UpdateMe, auth.RequireAuth())

	admin := api.Group("", auth.RequireRole("admin"))
	admin.GET("/users", h.ListByRole)
	admin.PUT("/users/:id/role", h.SetRole)
}

type authResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

func (h *Handler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return respond.Fail(c, http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return respond.Fail(c, http.StatusBadRequest, "email, password (min 8 chars), first_name and last_name are required")
	}
	u, token, err := h.svc.Register(c.Request().Context(), &req)
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return respond.Fail(c, http.StatusConflict, "email already registered")
		}
		return respond.Fail(c, http.StatusBadRequest, err.Error())
	}
	return respond.OK(c, http.StatusCreated, authResponse{User: u, Token: token})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return respond.Fail(c, http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return respond.Fail(c, http.StatusBadRequest, "email and password are required")
	}
	u, token, err := h.svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return respond.Fail(c, http.StatusUnauthorized, "invalid credentials")
	}
	return respond.OK(c, http.StatusOK, authResponse{User: u, Token: token})
}

func (h *Handler) Me(c echo.Context) error {
	ctx := c.Request().Context()
	u, err := h.svc.Get(ctx, auth.UserIDFromContext(ctx))
	if err != nil {
		return respond.Fail(c, http.StatusNotFound, "user not found")
	}
	return respond.OK(c, http.StatusOK, u)
}

type updateProfileRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Phone     string `json:"phone"`
}

func (h *Handler) UpdateMe(c echo.Context) error {
	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return respond.Fail(c, http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return respond.Fail(c, http.StatusBadRequest, "first_name and last_name are required")
	}
	ctx := c.Request().Context()
	u, err := h.svc.Get(ctx, auth.UserIDFromContext(ctx))
	if err != nil {
		return respond.Fail(c, http.StatusNotFound, "user not found")
	}
	u.FirstName = req.FirstName
	u.LastName = req.LastName
	if req.Phone != "" {
		u.Phone = &req.Phone
	}
	if err := h.svc.UpdateProfile(ctx, u); err != nil {
		return respond.Fail(c, http.StatusBadRequest, err.Error())
	}
	return respond.OK(c, http.StatusOK, u)
}

func (h *Handler) ListByRole(c echo.Context) error {
	role := c.QueryParam("role")
	pg := pagination.FromContext(c)
	users, total, err := h.svc.ListByRole(c.Request().Context(), role, pg.Limit, pg.Offset())
	if err != nil {
		return respond.Fail(c, http.StatusBadRequest, err.Error())
	}
	return respond.OK(c, http.StatusOK, map[string]interface{}{
		"users":      users,
		"pagination": pagination.NewMeta(pg, total),
	})
}

type setRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

func (h *Handler) SetRole(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.Fail(c, http.StatusBadRequest, "invalid id")
	}
	var req setRoleRequest
	if err := c.Bind(&req); err != nil {
		return respond.Fail(c, http.StatusBadRequest, "invalid request body")
	}
	u, err := h.svc.SetRole(c.Request().Context(), id, req.Role)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return respond.Fail(c, http.StatusNotFound, "user not found")
		}
		return respond.Fail(c, http.StatusBadRequest, err.Error())
	}
	return respond.OK(c, http.StatusOK, u)
}
