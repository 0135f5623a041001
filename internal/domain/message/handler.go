package message

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
	authed := api.Group("", auth.RequireAuth())
	authed.POST("/messages", h.Send)
	authed.GET("/messages/thread/:userId", h.Thread)
	authed.GET("/messages/unread", h.Unread)
	authed.POST("/messages/:id/read", h.MarkRead)
	authed.POST("/messages/thread/:userId/read", h.MarkThreadRead)
}

type sendRequest struct {
	RecipientID uuid.UUID `json:"recipient_id"`
	Body        string    `json:"body"`
}

func (h *Handler) Send(c echo.Context) error {
	var req sendRequest
	if err := c.Bind(&req); err != nil {
		return respond.Fail(c, http.StatusBadRequest, "invalid request body")
	}
	ctx := c.Request().Context()
	m, err := h.svc.Send(ctx, auth.UserIDFromContext(ctx), req.RecipientID, req.Body)
	if err != nil {
		return respond.Fail(c, http.StatusBadRequest, err.Error())
	}
	return respond.OK(c, http.StatusCreated, m)
}

func (h *Handler) Thread(c echo.Context) error {
	otherID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		return respond.Fail(c, http.StatusBadRequest, "invalid user id")
	}
	ctx := c.Request().Context()
	pg := pagination.FromContext(c)
	msgs, total, err := h.svc.Thread(ctx, auth.UserIDFromContext(ctx), otherID, pg.Limit, pg.Offset())
	if err != nil {
		return respond.Fail(c, http.StatusInternalServerError, "failed to load thread")
	}
	if msgs == nil {
		msgs = []*Message{}
	}
	return respond.OK(c, http.StatusOK, map[string]interface{}{
		"messages":   msgs,
		"pagination": pagination.NewMeta(pg, total),
	})
}

func (h *Handler) Unread(c echo.Context) error {
	ctx := c.Request().Context()
	counts, err := h.svc.UnreadBySender(ctx, auth.UserIDFromContext(ctx))
	if err != nil {
		return respond.Fail(c, http.StatusInternalServerError, "failed to load unread counts")
	}
	if counts == nil {
		counts = []*UnreadCount{}
	}
	total := 0
	for _, uc := range counts {
		total += uc.Count
	}
	return respond.OK(c, http.StatusOK, map[string]interface{}{
		"total":     total,
		"by_sender": counts,
	})
}

func (h *Handler) MarkRead(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.Fail(c, http.StatusBadRequest, "invalid message id")
	}
	ctx := c.Request().Context()
	if err := h.svc.MarkRead(ctx, id, auth.UserIDFromContext(ctx)); err != nil {
		if errors.Is(err, ErrNotFound) {
			return respond.Fail(c, http.StatusNotFound, "message not found")
		}
		return respond.Fail(c, http.StatusInternalServerError, "failed to mark read")
	}
	return respond.OK(c, http.StatusOK, map[string]bool{"read": true})
}

func (h *Handler) MarkThreadRead(c echo.Context) error {
	senderID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		return respond.Fail(c, http.StatusBadRequest, "invalid user id")
	}
	ctx := c.Request().Context()
	n, err := h.svc.MarkThreadRead(ctx, auth.UserIDFromContext(ctx), senderID)
	if err != nil {
		return respond.Fail(c, http.StatusInternalServerError, "failed to mark thread read")
	}
	return respond.OK(c, http.StatusOK, map[string]int{"marked": n})
}
