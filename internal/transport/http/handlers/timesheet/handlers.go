package timesheethandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"practicehub/internal/domain/audit"
	"practicehub/internal/domain/auth"
	"practicehub/internal/domain/capacity"
	"practicehub/internal/domain/timesheet"
	"practicehub/internal/domain/toil"
	"practicehub/internal/platform/metrics"
	"practicehub/internal/transport/http/api"
	"practicehub/internal/transport/http/middleware"
	"practicehub/internal/transport/http/shared"
)

type Handler struct {
	Service   *timesheet.Service
	Engine    *toil.Engine
	Audit     *audit.Service
	Collector *metrics.Collector
}

func NewHandler(service *timesheet.Service, engine *toil.Engine, auditSvc *audit.Service, collector *metrics.Collector) *Handler {
	return &Handler{Service: service, Engine: engine, Audit: auditSvc, Collector: collector}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/timesheets", func(r chi.Router) {
		r.With(middleware.RequireAuth).Post("/submissions", h.handleSubmit)
		r.With(middleware.RequireAuth).Get("/submissions", h.handleHistory)
		r.With(middleware.RequireAuth).Get("/submissions/status", h.handleStatus)
		r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleManager)).Get("/submissions/pending", h.handlePending)
		r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleManager)).Post("/submissions/bulk-approve", h.handleBulkApprove)
		r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleManager)).Post("/submissions/bulk-reject", h.handleBulkReject)
		r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleManager)).Post("/submissions/{submissionID}/approve", h.handleApprove)
		r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleManager)).Post("/submissions/{submissionID}/reject", h.handleReject)
	})
}

type submitRequest struct {
	WeekStartDate string `json:"weekStartDate"`
	TotalHours    string `json:"totalHours"`
	Notes         string `json:"notes"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload submitRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("totalHours", payload.TotalHours, "totalHours is required")
	weekStart, okDate := v.Date("weekStartDate", payload.WeekStartDate)
	if v.Reject(w, middleware.GetRequestID(r.Context())) || !okDate {
		return
	}

	hours, err := decimal.NewFromString(payload.TotalHours)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "totalHours must be a decimal number", middleware.GetRequestID(r.Context()))
		return
	}

	sub, err := h.Service.Submit(r.Context(), user.TenantID, user.UserID, timesheet.SubmitInput{
		WeekStartDate: weekStart,
		TotalHours:    hours,
		Notes:         payload.Notes,
	})
	if err != nil {
		var minErr *timesheet.MinHoursError
		switch {
		case errors.Is(err, timesheet.ErrInvalidWeek):
			api.Fail(w, http.StatusBadRequest, "invalid_week", err.Error(), middleware.GetRequestID(r.Context()))
		case errors.As(err, &minErr):
			api.Fail(w, http.StatusUnprocessableEntity, "below_minimum_hours", err.Error(), middleware.GetRequestID(r.Context()))
		case errors.Is(err, timesheet.ErrDuplicatePending):
			api.Fail(w, http.StatusConflict, "duplicate_submission", err.Error(), middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusInternalServerError, "timesheet_submit_failed", "failed to submit timesheet", middleware.GetRequestID(r.Context()))
		}
		return
	}

	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, audit.ActionTimesheetSubmit, "timesheet_submission", sub.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, sub); err != nil {
		slog.Warn("audit timesheet.submit failed", "err", err)
	}
	api.Created(w, sub, middleware.GetRequestID(r.Context()))
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
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot view another user's timesheets", middleware.GetRequestID(r.Context()))
		return
	}

	page := shared.ParsePagination(r, 25, 100)
	subs, total, err := h.Service.History(r.Context(), user.TenantID, targetID, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "timesheet_list_failed", "failed to list timesheets", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"items": subs, "total": total}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	weekStart, err := shared.ParseDate(r.URL.Query().Get("weekStartDate"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_date", "weekStartDate must be YYYY-MM-DD", middleware.GetRequestID(r.Context()))
		return
	}

	sub, err := h.Service.Status(r.Context(), user.TenantID, user.UserID, weekStart)
	if err != nil {
		if errors.Is(err, timesheet.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "no submission for that week", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "timesheet_status_failed", "failed to look up submission", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, sub, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePending(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	page := shared.ParsePagination(r, 25, 100)
	subs, total, err := h.Service.PendingReview(r.Context(), user.TenantID, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "timesheet_pending_failed", "failed to list pending submissions", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"items": subs, "total": total}, middleware.GetRequestID(r.Context()))
}

type reviewRequest struct {
	Comments string `json:"comments"`
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload reviewRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&payload)
	}

	submissionID := chi.URLParam(r, "submissionID")
	result, err := h.Engine.ApproveTimesheet(r.Context(), user.TenantID, submissionID, user.UserID, payload.Comments, time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, timesheet.ErrNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "submission not found", middleware.GetRequestID(r.Context()))
		case errors.Is(err, timesheet.ErrInvalidState):
			api.Fail(w, http.StatusConflict, "invalid_state", err.Error(), middleware.GetRequestID(r.Context()))
		case errors.Is(err, capacity.ErrNoCapacityRecord):
			api.Fail(w, http.StatusUnprocessableEntity, "no_capacity_record", err.Error(), middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusInternalServerError, "timesheet_approve_failed", "failed to approve submission", middleware.GetRequestID(r.Context()))
		}
		return
	}

	if result.Accrual != nil {
		h.Collector.RecordToilAccrual()
	}
	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, audit.ActionTimesheetApprove, "timesheet_submission", submissionID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, result); err != nil {
		slog.Warn("audit timesheet.approve failed", "err", err)
	}
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.Comments == "" {
		api.Fail(w, http.StatusBadRequest, "comments_required", "rejection requires reviewer comments", middleware.GetRequestID(r.Context()))
		return
	}

	submissionID := chi.URLParam(r, "submissionID")
	sub, err := h.Service.Reject(r.Context(), user.TenantID, submissionID, user.UserID, payload.Comments)
	if err != nil {
		switch {
		case errors.Is(err, timesheet.ErrNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "submission not found", middleware.GetRequestID(r.Context()))
		case errors.Is(err, timesheet.ErrInvalidState):
			api.Fail(w, http.StatusConflict, "invalid_state", err.Error(), middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusInternalServerError, "timesheet_reject_failed", "failed to reject submission", middleware.GetRequestID(r.Context()))
		}
		return
	}

	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, audit.ActionTimesheetReject, "timesheet_submission", submissionID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, sub); err != nil {
		slog.Warn("audit timesheet.reject failed", "err", err)
	}
	api.Success(w, sub, middleware.GetRequestID(r.Context()))
}

type bulkRequest struct {
	SubmissionIDs []string `json:"submissionIds"`
	Comments      string   `json:"comments"`
}

func (h *Handler) handleBulkApprove(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload bulkRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if len(payload.SubmissionIDs) == 0 {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "submissionIds must not be empty", middleware.GetRequestID(r.Context()))
		return
	}

	result := h.Engine.BulkApprove(r.Context(), user.TenantID, payload.SubmissionIDs, user.UserID, payload.Comments, time.Now().UTC())
	for i := 0; i < result.Accrued; i++ {
		h.Collector.RecordToilAccrual()
	}
	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, audit.ActionTimesheetApprove, "timesheet_submission", "bulk", middleware.GetRequestID(r.Context()), shared.ClientIP(r), payload.SubmissionIDs, result); err != nil {
		slog.Warn("audit timesheet.bulk-approve failed", "err", err)
	}
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleBulkReject(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload bulkRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if len(payload.SubmissionIDs) == 0 {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "submissionIds must not be empty", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.Comments == "" {
		api.Fail(w, http.StatusBadRequest, "comments_required", "rejection requires reviewer comments", middleware.GetRequestID(r.Context()))
		return
	}

	result := h.Service.BulkReject(r.Context(), user.TenantID, payload.SubmissionIDs, user.UserID, payload.Comments)
	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, audit.ActionTimesheetReject, "timesheet_submission", "bulk", middleware.GetRequestID(r.Context()), shared.ClientIP(r), payload.SubmissionIDs, result); err != nil {
		slog.Warn("audit timesheet.bulk-reject failed", "err", err)
	}
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}
