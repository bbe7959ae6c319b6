package audithandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"leavedesk/internal/domain/audit"
	"leavedesk/internal/domain/auth"
	"leavedesk/internal/transport/http/api"
	"leavedesk/internal/transport/http/middleware"
	"leavedesk/internal/transport/http/shared"
)

type EventStore interface {
	List(ctx context.Context, tenantID, action string, limit, offset int) ([]audit.Event, error)
}

type Handler struct {
	Store EventStore
	Perms middleware.PermissionStore
}

func NewHandler(store EventStore, perms middleware.PermissionStore) *Handler {
	return &Handler{Store: store, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequirePermission(auth.PermLeaveConfigure, h.Perms)).Get("/audit", h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	page := shared.ParsePagination(r, 50, 200)
	events, err := h.Store.List(r.Context(), user.TenantID, r.URL.Query().Get("action"), page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "internal_error", "failed to list audit events", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, events, middleware.GetRequestID(r.Context()))
}
