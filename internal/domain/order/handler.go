package order

import (
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/clinicore/clinicore/internal/platform/auth"
	"github.com/clinicore/clinicore/internal/platform/payment"
	"github.com/clinicore/clinicore/pkg/pagination"
	"github.com/clinicore/clinicore/pkg/respond"
)

type Handler struct {
	svc           *Service
	webhookSecret string
}

func NewHandler(svc *Service, webhookSecret string) *Handler {
	return &Handler{svc: svc, webhookSecret: webhookSecret}
}

// RegisterRoutes wires the checkout surface. Only Create works for
// guests; everything that reads or mutates an existing order requires
// an identity.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/orders", h.Create)
	api.GET("/orders", h.ListMine, auth.RequireAuth())
	api.GET("/orders/:id", h.Get, auth.RequireAuth())
	api.POST("/orders/:id/payment", h.RetryPayment, auth.RequireAuth())
	api.POST("/orders/:id/cancel", h.Cancel, auth.RequireAuth())

	admin := api.Group("", auth.RequireRole("admin"))
	admin.PUT("/orders/:id/status", h.UpdateStatus)
}

// RegisterWebhook mounts the provider callback outside the
// authenticated API group; the signature header is its authentication.
func (h *Handler) RegisterWebhook(e *echo.Echo) {
	e.POST("/webhooks/stripe", h.Webhook)
}

type createResponse struct {
	OrderID         uuid.UUID `json:"orderId"`
	OrderNumber     string    `json:"orderNumber"`
	Total           string    `json:"total"`
	Items           int       `json:"items"`
	StripeSessionID string    `json:"stripeSessionId,omitempty"`
	PaymentURL      string    `json:"paymentUrl,omitempty"`
	Status          string    `json:"status"`
}

func newCreateResponse(o *Order, session *payment.Session) createResponse {
	resp := createResponse{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		Total:       o.TotalAmount.String(),
		Items:       len(o.Items),
		Status:      o.Status,
	}
	if session != nil {
		resp.StripeSessionID = session.ID
		resp.PaymentURL = session.URL
	}
	return resp
}

func (h *Handler) Create(c echo.Context) error {
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return respond.Fail(c, http.StatusBadRequest, "invalid request body")
	}

	ctx := c.Request().Context()
	callerID := auth.UserIDFromContext(ctx)
	callerEmail := auth.UserEmailFromContext(ctx)

	result, err := h.svc.Create(ctx, &req, callerID, callerEmail)
	if err != nil {
		var provErr *PaymentProviderError
		if errors.As(err, &provErr) && result != nil {
			// The order is persisted; return it so the client can retry
			// payment instead of resubmitting the cart.
			return respond.OK(c, http.StatusCreated, newCreateResponse(result.Order, nil))
		}
		return h.fail(c, err)
	}
	return respond.OK(c, http.StatusCreated, newCreateResponse(result.Order, result.Session))
}

// requester resolves the ownership scope for order reads. Admins get
// uuid.Nil, the service's skip-ownership sentinel; a caller with no
// identity gets ok=false so an anonymous request can never reach that
// sentinel.
func requester(c echo.Context) (uuid.UUID, bool) {
	ctx := c.Request().Context()
	if auth.RoleFromContext(ctx) == "admin" {
		return uuid.Nil, true
	}
	id := auth.UserIDFromContext(ctx)
	if id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.Fail(c, http.StatusBadRequest, "invalid order id")
	}
	requesterID, ok := requester(c)
	if !ok {
		return respond.Fail(c, http.StatusUnauthorized, "authentication required")
	}
	ctx := c.Request().Context()
	o, err := h.svc.Get(ctx, id, requesterID)
	if err != nil {
		return h.fail(c, err)
	}
	return respond.OK(c, http.StatusOK, o)
}

func (h *Handler) ListMine(c echo.Context) error {
	ctx := c.Request().Context()
	customerID := auth.UserIDFromContext(ctx)
	pg := pagination.FromContext(c)

	orders, total, err := h.svc.ListByCustomer(ctx, customerID, pg.Limit, pg.Offset())
	if err != nil {
		return h.fail(c, err)
	}
	if orders == nil {
		orders = []*Order{}
	}
	return respond.OK(c, http.StatusOK, map[string]interface{}{
		"orders":     orders,
		"pagination": pagination.NewMeta(pg, total),
	})
}

func (h *Handler) RetryPayment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.Fail(c, http.StatusBadRequest, "invalid order id")
	}
	requesterID, ok := requester(c)
	if !ok {
		return respond.Fail(c, http.StatusUnauthorized, "authentication required")
	}
	ctx := c.Request().Context()
	o, session, err := h.svc.RetryPayment(ctx, id, requesterID)
	if err != nil {
		return h.fail(c, err)
	}
	return respond.OK(c, http.StatusOK, newCreateResponse(o, session))
}

func (h *Handler) Cancel(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.Fail(c, http.StatusBadRequest, "invalid order id")
	}
	requesterID, ok := requester(c)
	if !ok {
		return respond.Fail(c, http.StatusUnauthorized, "authentication required")
	}
	ctx := c.Request().Context()
	o, err := h.svc.Cancel(ctx, id, requesterID)
	if err != nil {
		return h.fail(c, err)
	}
	return respond.OK(c, http.StatusOK, o)
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.Fail(c, http.StatusBadRequest, "invalid order id")
	}
	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return respond.Fail(c, http.StatusBadRequest, "invalid request body")
	}
	o, err := h.svc.UpdateStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return h.fail(c, err)
	}
	return respond.OK(c, http.StatusOK, o)
}

func (h *Handler) Webhook(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return respond.Fail(c, http.StatusBadRequest, "unreadable payload")
	}
	event, err := payment.ParseWebhook(payload, c.Request().Header.Get("Stripe-Signature"), h.webhookSecret)
	if err != nil {
		return respond.Fail(c, http.StatusBadRequest, "invalid signature")
	}

	ctx := c.Request().Context()
	switch {
	case event.Completed():
		if _, err := h.svc.MarkPaymentStatus(ctx, event.SessionID, PaymentPaid); err != nil {
			log.Error().Err(err).Str("session_id", event.SessionID).Msg("failed to mark order paid")
			return h.fail(c, err)
		}
	case event.Expired():
		if _, err := h.svc.MarkPaymentStatus(ctx, event.SessionID, PaymentFailed); err != nil {
			log.Error().Err(err).Str("session_id", event.SessionID).Msg("failed to mark order failed")
			return h.fail(c, err)
		}
	}
	return respond.OK(c, http.StatusOK, map[string]bool{"received": true})
}

// fail maps the service error taxonomy onto HTTP statuses. Upstream
// failures log their detail and return a generic message.
func (h *Handler) fail(c echo.Context, err error) error {
	var (
		valErr   *ValidationError
		nfErr    *NotFoundError
		stockErr *InsufficientStockError
		provErr  *PaymentProviderError
		persErr  *PersistenceError
	)
	switch {
	case errors.As(err, &valErr):
		return respond.Fail(c, http.StatusBadRequest, valErr.Msg)
	case errors.As(err, &nfErr):
		return respond.Fail(c, http.StatusNotFound, nfErr.Error())
	case errors.As(err, &stockErr):
		return respond.Fail(c, http.StatusBadRequest, stockErr.Error())
	case errors.As(err, &provErr):
		log.Error().Err(provErr.Err).Msg("payment provider error")
		return respond.Fail(c, http.StatusInternalServerError, "payment session creation failed")
	case errors.As(err, &persErr):
		log.Error().Err(persErr.Err).Msg("order persistence error")
		return respond.Fail(c, http.StatusInternalServerError, "order store unavailable")
	default:
		log.Error().Err(err).Msg("unexpected order error")
		return respond.Fail(c, http.StatusInternalServerError, "internal error")
	}
}
