package leavehandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"practicehub/internal/domain/audit"
	"practicehub/internal/domain/auth"
	"practicehub/internal/domain/leave"
	"practicehub/internal/platform/metrics"
	"practicehub/internal/transport/http/api"
	"practicehub/internal/transport/http/middleware"
	"practicehub/internal/transport/http/shared"
)

type Handler struct {
	Service   *leave.Service
	Users     *auth.Store
	Audit     *audit.Service
	Collector *metrics.Collector
}

func NewHandler(service *leave.Service, users *auth.Store, auditSvc *audit.Service, collector *metrics.Collector) *Handler {
	return &Handler{Service: service, Users: users, Audit: auditSvc, Collector: collector}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leave", func(r chi.Router) {
		r.With(middleware.RequireAuth).Post("/requests", h.handleCreateRequest)
		r.With(middleware.RequireAuth).Get("/requests", h.handleListRequests)
		r.With(middleware.RequireAuth).Get("/requests/{requestID}", h.handleGetRequest)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Post("/requests/{requestID}/approve", h.handleApprove)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Post("/requests/{requestID}/reject", h.handleReject)
		r.With(middleware.RequireAuth).Post("/requests/{requestID}/cancel", h.handleCancel)
		r.With(middleware.RequireAuth).Get("/balance", h.handleBalance)
		r.With(middleware.RequireAuth).Get("/calendar", h.handleCalendar)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Put("/entitlements", h.handleSetEntitlement)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Put("/carryover", h.handleSetCarryover)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Post("/carryover/run", h.handleRunCarryover)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Get("/balances", h.handleListBalances)
	})
}

type createRequestPayload struct {
	LeaveType string `json:"leaveType"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Reason    string `json:"reason"`
}

func (h *Handler) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload createRequestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("leaveType", payload.LeaveType, "leaveType is required")
	start, okStart := v.Date("startDate", payload.StartDate)
	end, okEnd := v.Date("endDate", payload.EndDate)
	if v.Reject(w, middleware.GetRequestID(r.Context())) || !okStart || !okEnd {
		return
	}

	req, err := h.Service.CreateRequest(r.Context(), user.TenantID, user.UserID, leave.RequestInput{
		LeaveType: payload.LeaveType,
		StartDate: start,
		EndDate:   end,
		Reason:    payload.Reason,
	}, time.Now().UTC())
	if err != nil {
		h.failRequestError(w, r, err, "leave_request_failed", "failed to create leave request")
		return
	}

	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, audit.ActionLeaveRequest, "leave_request", req.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, req); err != nil {
		slog.Warn("audit leave.request failed", "err", err)
	}
	api.Created(w, req, middleware.GetRequestID(r.Context()))
}

// failRequestError maps the service's sentinel and balance errors onto
// status codes. Balance insufficiency keeps the service's message verbatim
// so clients can show it directly.
func (h *Handler) failRequestError(w http.ResponseWriter, r *http.Request, err error, fallbackCode, fallbackMessage string) {
	requestID := middleware.GetRequestID(r.Context())
	var toilErr *leave.InsufficientToilError
	var annualErr *leave.InsufficientAnnualError
	switch {
	case errors.Is(err, leave.ErrInvalidType),
		errors.Is(err, leave.ErrPastStartDate),
		errors.Is(err, leave.ErrEndBeforeStart),
		errors.Is(err, leave.ErrNoWorkingDays):
		api.Fail(w, http.StatusBadRequest, "invalid_request", err.Error(), requestID)
	case errors.Is(err, leave.ErrOverlap):
		api.Fail(w, http.StatusConflict, "overlapping_request", err.Error(), requestID)
	case errors.Is(err, leave.ErrNoToilBalance):
		api.Fail(w, http.StatusUnprocessableEntity, "no_toil_balance", err.Error(), requestID)
	case errors.As(err, &toilErr):
		api.Fail(w, http.StatusUnprocessableEntity, "insufficient_toil_balance", err.Error(), requestID)
	case errors.As(err, &annualErr):
		api.Fail(w, http.StatusUnprocessableEntity, "insufficient_annual_balance", err.Error(), requestID)
	case errors.Is(err, leave.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "leave request not found", requestID)
	case errors.Is(err, leave.ErrInvalidState):
		api.Fail(w, http.StatusConflict, "invalid_state", err.Error(), requestID)
	case errors.Is(err, leave.ErrNotOwner):
		api.Fail(w, http.StatusForbidden, "forbidden", err.Error(), requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, fallbackCode, fallbackMessage, requestID)
	}
}

func (h *Handler) handleListRequests(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	page := shared.ParsePagination(r, 25, 100)

	filter := leave.RequestFilter{Status: r.URL.Query().Get("status")}
	if raw := r.URL.Query().Get("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_request", "year must be a number", middleware.GetRequestID(r.Context()))
			return
		}
		filter.Year = year
	}
	if raw := r.URL.Query().Get("from"); raw != "" {
		from, ok := shared.NewValidator().Date("from", raw)
		if !ok {
			api.Fail(w, http.StatusBadRequest, "invalid_request", "from must be YYYY-MM-DD", middleware.GetRequestID(r.Context()))
			return
		}
		filter.From = from
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		to, ok := shared.NewValidator().Date("to", raw)
		if !ok {
			api.Fail(w, http.StatusBadRequest, "invalid_request", "to must be YYYY-MM-DD", middleware.GetRequestID(r.Context()))
			return
		}
		filter.To = to
	}

	if r.URL.Query().Get("scope") == "team" {
		if !user.CanReview() {
			api.Fail(w, http.StatusForbidden, "forbidden", "team scope requires a reviewer role", middleware.GetRequestID(r.Context()))
			return
		}
		memberIDs, err := h.Users.TeamMemberIDs(r.Context(), user.TenantID, user.UserID)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "leave_list_failed", "failed to list team requests", middleware.GetRequestID(r.Context()))
			return
		}
		requests, total, err := h.Service.TeamRequests(r.Context(), user.TenantID, memberIDs, filter, page.Limit, page.Offset)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "leave_list_failed", "failed to list team requests", middleware.GetRequestID(r.Context()))
			return
		}
		api.Success(w, map[string]any{"items": requests, "total": total}, middleware.GetRequestID(r.Context()))
		return
	}

	targetID := r.URL.Query().Get("userId")
	if targetID == "" {
		targetID = user.UserID
	}
	if targetID != user.UserID && !user.CanReview() {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot view another user's requests", middleware.GetRequestID(r.Context()))
		return
	}

	requests, total, err := h.Service.History(r.Context(), user.TenantID, targetID, filter, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_list_failed", "failed to list leave requests", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"items": requests, "total": total}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	req, err := h.Service.Get(r.Context(), user.TenantID, chi.URLParam(r, "requestID"))
	if err != nil {
		if errors.Is(err, leave.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "leave request not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "leave_get_failed", "failed to load leave request", middleware.GetRequestID(r.Context()))
		return
	}
	if req.UserID != user.UserID && !user.CanReview() {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot view another user's request", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, req, middleware.GetRequestID(r.Context()))
}

type reviewPayload struct {
	Comments string `json:"comments"`
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload reviewPayload
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&payload)
	}

	requestID := chi.URLParam(r, "requestID")
	req, err := h.Service.Approve(r.Context(), user.TenantID, requestID, user.UserID, payload.Comments, time.Now().UTC())
	if err != nil {
		h.failRequestError(w, r, err, "leave_approve_failed", "failed to approve leave request")
		return
	}

	h.Collector.RecordLeaveDecision()
	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, audit.ActionLeaveApprove, "leave_request", requestID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, req); err != nil {
		slog.Warn("audit leave.approve failed", "err", err)
	}
	api.Success(w, req, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload reviewPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.Comments == "" {
		api.Fail(w, http.StatusBadRequest, "comments_required", "rejection requires reviewer comments", middleware.GetRequestID(r.Context()))
		return
	}

	requestID := chi.URLParam(r, "requestID")
	req, err := h.Service.Reject(r.Context(), user.TenantID, requestID, user.UserID, payload.Comments)
	if err != nil {
		h.failRequestError(w, r, err, "leave_reject_failed", "failed to reject leave request")
		return
	}

	h.Collector.RecordLeaveDecision()
	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, audit.ActionLeaveReject, "leave_request", requestID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, req); err != nil {
		slog.Warn("audit leave.reject failed", "err", err)
	}
	api.Success(w, req, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	requestID := chi.URLParam(r, "requestID")
	req, err := h.Service.Cancel(r.Context(), user.TenantID, requestID, user.UserID, user.IsAdmin(), time.Now().UTC())
	if err != nil {
		h.failRequestError(w, r, err, "leave_cancel_failed", "failed to cancel leave request")
		return
	}

	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, audit.ActionLeaveCancel, "leave_request", requestID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, req); err != nil {
		slog.Warn("audit leave.cancel failed", "err", err)
	}
	api.Success(w, req, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleBalance(w http.ResponseWriter, r *http.Request) {
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
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot view another user's balance", middleware.GetRequestID(r.Context()))
		return
	}

	year := time.Now().UTC().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 2000 && v < 2200 {
			year = v
		}
	}

	balance, err := h.Service.Balance(r.Context(), user.TenantID, targetID, year)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_balance_failed", "failed to look up leave balance", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, balance, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCalendar(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	from, okFrom := v.Date("from", r.URL.Query().Get("from"))
	to, okTo := v.Date("to", r.URL.Query().Get("to"))
	if okFrom && okTo {
		v.DateOrder("from", from, "to", to)
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) || !okFrom || !okTo {
		return
	}

	entries, err := h.Service.Calendar(r.Context(), user.TenantID, from, to)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_calendar_failed", "failed to load leave calendar", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, entries, middleware.GetRequestID(r.Context()))
}

type entitlementPayload struct {
	UserID string `json:"userId"`
	Year   int    `json:"year"`
	Days   string `json:"days"`
}

func (h *Handler) handleSetEntitlement(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload entitlementPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	days, err := decimal.NewFromString(payload.Days)
	if err != nil || payload.UserID == "" || payload.Year == 0 {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "userId, year and days are required", middleware.GetRequestID(r.Context()))
		return
	}

	balance, err := h.Service.UpdateEntitlement(r.Context(), user.TenantID, payload.UserID, payload.Year, days)
	if err != nil {
		if errors.Is(err, leave.ErrInvalidEntitlement) {
			api.Fail(w, http.StatusBadRequest, "invalid_entitlement", err.Error(), middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "entitlement_set_failed", "failed to set entitlement", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, audit.ActionEntitlementSet, "leave_balance", balance.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, balance); err != nil {
		slog.Warn("audit leave.entitlement failed", "err", err)
	}
	api.Success(w, balance, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSetCarryover(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload entitlementPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	days, err := decimal.NewFromString(payload.Days)
	if err != nil || payload.UserID == "" || payload.Year == 0 {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "userId, year and days are required", middleware.GetRequestID(r.Context()))
		return
	}

	balance, err := h.Service.SetCarryover(r.Context(), user.TenantID, payload.UserID, payload.Year, days)
	if err != nil {
		if errors.Is(err, leave.ErrInvalidCarryover) {
			api.Fail(w, http.StatusBadRequest, "invalid_carryover", err.Error(), middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "carryover_set_failed", "failed to set carryover", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, audit.ActionCarryoverSet, "leave_balance", balance.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, balance); err != nil {
		slog.Warn("audit leave.carryover failed", "err", err)
	}
	api.Success(w, balance, middleware.GetRequestID(r.Context()))
}

type carryoverRunPayload struct {
	FromYear int `json:"fromYear"`
}

func (h *Handler) handleRunCarryover(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload carryoverRunPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.FromYear < 2000 || payload.FromYear > 2200 {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "fromYear must be a valid year", middleware.GetRequestID(r.Context()))
		return
	}

	summary, err := h.Service.RunCarryover(r.Context(), user.TenantID, payload.FromYear)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "carryover_run_failed", "failed to run carryover", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, audit.ActionCarryoverSet, "leave_balance", "bulk", middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, summary); err != nil {
		slog.Warn("audit leave.carryover-run failed", "err", err)
	}
	api.Success(w, summary, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListBalances(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	year := time.Now().UTC().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 2000 && v < 2200 {
			year = v
		}
	}

	balances, err := h.Service.BalancesForYear(r.Context(), user.TenantID, year)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_balances_failed", "failed to list balances", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, balances, middleware.GetRequestID(r.Context()))
}
