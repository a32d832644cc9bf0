package capacityhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"practicehub/internal/domain/audit"
	"practicehub/internal/domain/auth"
	"practicehub/internal/domain/capacity"
	"practicehub/internal/transport/http/api"
	"practicehub/internal/transport/http/middleware"
	"practicehub/internal/transport/http/shared"
)

type Handler struct {
	Service *capacity.Service
	Audit   *audit.Service
}

func NewHandler(service *capacity.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/capacity", func(r chi.Router) {
		r.With(middleware.RequireRole(auth.RoleAdmin)).Post("/records", h.handleSetCapacity)
		r.With(middleware.RequireAuth).Get("/records", h.handleHistory)
		r.With(middleware.RequireAuth).Get("/effective", h.handleEffective)
	})
}

type setCapacityRequest struct {
	UserID        string `json:"userId"`
	WeeklyHours   string `json:"weeklyHours"`
	EffectiveFrom string `json:"effectiveFrom"`
}

func (h *Handler) handleSetCapacity(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload setCapacityRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("userId", payload.UserID, "userId is required")
	v.Required("weeklyHours", payload.WeeklyHours, "weeklyHours is required")
	effectiveFrom, okDate := v.Date("effectiveFrom", payload.EffectiveFrom)
	if v.Reject(w, middleware.GetRequestID(r.Context())) || !okDate {
		return
	}

	hours, err := decimal.NewFromString(payload.WeeklyHours)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "weeklyHours must be a decimal number", middleware.GetRequestID(r.Context()))
		return
	}

	record, err := h.Service.SetCapacity(r.Context(), user.TenantID, payload.UserID, hours, effectiveFrom)
	if err != nil {
		if errors.Is(err, capacity.ErrInvalidHours) {
			api.Fail(w, http.StatusBadRequest, "invalid_hours", err.Error(), middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "capacity_set_failed", "failed to set capacity", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, audit.ActionCapacitySet, "staff_capacity", record.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, record); err != nil {
		slog.Warn("audit capacity.set failed", "err", err)
	}
	api.Created(w, record, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	targetID := r.URL.Query().Get("userId")
	if targetID == "" {
		targetID = user.UserID
	}
	if targetID != user.UserID && !user.CanReview() {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot view another user's capacity", middleware.GetRequestID(r.Context()))
		return
	}

	records, err := h.Service.History(r.Context(), user.TenantID, targetID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "capacity_list_failed", "failed to list capacity records", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, records, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleEffective(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	targetID := r.URL.Query().Get("userId")
	if targetID == "" {
		targetID = user.UserID
	}
	if targetID != user.UserID && !user.CanReview() {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot view another user's capacity", middleware.GetRequestID(r.Context()))
		return
	}

	weekStart, err := shared.ParseDate(r.URL.Query().Get("weekStartDate"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_date", "weekStartDate must be YYYY-MM-DD", middleware.GetRequestID(r.Context()))
		return
	}

	record, err := h.Service.EffectiveForWeek(r.Context(), user.TenantID, targetID, weekStart)
	if err != nil {
		if errors.Is(err, capacity.ErrNoCapacityRecord) {
			api.Fail(w, http.StatusNotFound, "no_capacity_record", err.Error(), middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "capacity_lookup_failed", "failed to look up capacity", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, record, middleware.GetRequestID(r.Context()))
}
