package toilhandler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"practicehub/internal/domain/audit"
	"practicehub/internal/domain/auth"
	"practicehub/internal/domain/toil"
	"practicehub/internal/platform/jobs"
	"practicehub/internal/platform/metrics"
	"practicehub/internal/transport/http/api"
	"practicehub/internal/transport/http/middleware"
	"practicehub/internal/transport/http/shared"
)

type Handler struct {
	Engine      *toil.Engine
	Users       *auth.Store
	Audit       *audit.Service
	Jobs        *jobs.Service
	Collector   *metrics.Collector
	WarningDays int
}

func NewHandler(engine *toil.Engine, users *auth.Store, auditSvc *audit.Service, jobsSvc *jobs.Service, collector *metrics.Collector, warningDays int) *Handler {
	return &Handler{Engine: engine, Users: users, Audit: auditSvc, Jobs: jobsSvc, Collector: collector, WarningDays: warningDays}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/toil", func(r chi.Router) {
		r.With(middleware.RequireAuth).Get("/balance", h.handleBalance)
		r.With(middleware.RequireAuth).Get("/history", h.handleHistory)
		r.With(middleware.RequireAuth).Get("/expiring", h.handleExpiring)
		r.With(middleware.RequireAuth).Get("/statement", h.handleStatement)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Post("/expiry/run", h.handleRunExpiry)
	})
}

// resolveTarget lets reviewers query another user's TOIL via ?userId=.
func (h *Handler) resolveTarget(w http.ResponseWriter, r *http.Request) (auth.UserContext, string, bool) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return auth.UserContext{}, "", false
	}
	targetID := r.URL.Query().Get("userId")
	if targetID == "" {
		targetID = user.UserID
	}
	if targetID != user.UserID && !user.CanReview() {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot view another user's TOIL", middleware.GetRequestID(r.Context()))
		return auth.UserContext{}, "", false
	}
	return user, targetID, true
}

func yearParam(r *http.Request, now time.Time) int {
	if raw := r.URL.Query().Get("year"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 2000 && v < 2200 {
			return v
		}
	}
	return now.Year()
}

func (h *Handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	user, targetID, ok := h.resolveTarget(w, r)
	if !ok {
		return
	}

	summary, err := h.Engine.Balance(r.Context(), user.TenantID, targetID, yearParam(r, time.Now().UTC()))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "toil_balance_failed", "failed to look up TOIL balance", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, summary, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	user, targetID, ok := h.resolveTarget(w, r)
	if !ok {
		return
	}

	page := shared.ParsePagination(r, 25, 100)
	accruals, total, err := h.Engine.History(r.Context(), user.TenantID, targetID, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "toil_history_failed", "failed to list TOIL accruals", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"items": accruals, "total": total}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleExpiring(w http.ResponseWriter, r *http.Request) {
	user, targetID, ok := h.resolveTarget(w, r)
	if !ok {
		return
	}

	window := h.WarningDays
	if raw := r.URL.Query().Get("windowDays"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 365 {
			window = v
		}
	}

	accruals, err := h.Engine.ExpiringSoon(r.Context(), user.TenantID, targetID, time.Now().UTC(), window)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "toil_expiring_failed", "failed to list expiring TOIL", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, accruals, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleStatement(w http.ResponseWriter, r *http.Request) {
	user, targetID, ok := h.resolveTarget(w, r)
	if !ok {
		return
	}
	year := yearParam(r, time.Now().UTC())

	target, err := h.Users.GetUser(r.Context(), user.TenantID, targetID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "user not found", middleware.GetRequestID(r.Context()))
		return
	}
	summary, err := h.Engine.Balance(r.Context(), user.TenantID, targetID, year)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "toil_statement_failed", "failed to build statement", middleware.GetRequestID(r.Context()))
		return
	}
	accruals, _, err := h.Engine.History(r.Context(), user.TenantID, targetID, 500, 0)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "toil_statement_failed", "failed to build statement", middleware.GetRequestID(r.Context()))
		return
	}

	pdfBytes, err := toil.RenderStatement(toil.StatementData{
		FirstName: target.FirstName,
		LastName:  target.LastName,
		Email:     target.Email,
		Year:      year,
		Balance:   summary,
		Accruals:  accruals,
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "toil_statement_failed", "failed to render statement", middleware.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("toil-statement-%d.pdf", year)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdfBytes)
}

func (h *Handler) handleRunExpiry(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	result, err := h.Jobs.RunNow(r.Context(), jobs.JobToilExpiry, user.TenantID, func(ctx context.Context) (any, error) {
		return h.Engine.MarkExpired(ctx, user.TenantID, time.Now().UTC())
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "toil_expiry_failed", "failed to run expiry sweep", middleware.GetRequestID(r.Context()))
		return
	}

	if summary, ok := result.(toil.ExpirySummary); ok && summary.EntriesExpired > 0 {
		h.Collector.RecordToilExpiry()
	}
	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, audit.ActionToilExpire, "toil_accrual", "sweep", middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, result); err != nil {
		slog.Warn("audit toil.expire failed", "err", err)
	}
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}
