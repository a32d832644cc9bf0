package leave

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"practicehub/internal/platform/querier"
)

type Store struct {
	DB querier.Beginner
}

func NewStore(db querier.Beginner) *Store {
	return &Store{DB: db}
}

// InTx opens a transaction and hands fn a store bound to it. When the store
// is already transaction-scoped the inner call runs on a savepoint.
func (s *Store) InTx(ctx context.Context, fn func(StoreAPI) error) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(&Store{DB: tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

const requestColumns = `
    id, tenant_id, user_id, leave_type, start_date, end_date, days_count::text,
    status, reason, reviewed_by, reviewed_at, reviewer_comments, created_at, updated_at`

func scanRequest(row pgx.Row) (Request, error) {
	var req Request
	var daysText string
	err := row.Scan(&req.ID, &req.TenantID, &req.UserID, &req.LeaveType, &req.StartDate,
		&req.EndDate, &daysText, &req.Status, &req.Reason, &req.ReviewedBy, &req.ReviewedAt,
		&req.ReviewerComments, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return Request{}, err
	}
	if req.DaysCount, err = decimal.NewFromString(daysText); err != nil {
		return Request{}, err
	}
	return req, nil
}

func (s *Store) InsertRequest(ctx context.Context, req Request) (Request, error) {
	row := s.DB.QueryRow(ctx, `
    INSERT INTO leave_requests (tenant_id, user_id, leave_type, start_date, end_date, days_count, status, reason)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    RETURNING`+requestColumns,
		req.TenantID, req.UserID, req.LeaveType, req.StartDate, req.EndDate,
		req.DaysCount.String(), req.Status, req.Reason)
	return scanRequest(row)
}

func (s *Store) GetRequest(ctx context.Context, tenantID, requestID string) (Request, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT`+requestColumns+`
    FROM leave_requests
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, requestID)
	req, err := scanRequest(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Request{}, ErrNotFound
	}
	return req, err
}

func (s *Store) GetRequestForUpdate(ctx context.Context, tenantID, requestID string) (Request, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT`+requestColumns+`
    FROM leave_requests
    WHERE tenant_id = $1 AND id = $2
    FOR UPDATE
  `, tenantID, requestID)
	req, err := scanRequest(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Request{}, ErrNotFound
	}
	return req, err
}

func (s *Store) ReviewRequest(ctx context.Context, tenantID, requestID, status, reviewerID, comments string) error {
	var commentsArg any
	if comments != "" {
		commentsArg = comments
	}
	_, err := s.DB.Exec(ctx, `
    UPDATE leave_requests
    SET status = $3, reviewed_by = $4, reviewed_at = now(), reviewer_comments = $5, updated_at = now()
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, requestID, status, reviewerID, commentsArg)
	return err
}

func (s *Store) CancelRequest(ctx context.Context, tenantID, requestID string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE leave_requests
    SET status = $3, updated_at = now()
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, requestID, StatusCancelled)
	return err
}

// HasOverlappingRequest reports whether the user already has a pending or
// approved request touching the given date range.
func (s *Store) HasOverlappingRequest(ctx context.Context, tenantID, userID string, start, end time.Time) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM leave_requests
    WHERE tenant_id = $1 AND user_id = $2
      AND status IN ('pending', 'approved')
      AND start_date <= $4 AND end_date >= $3
  `, tenantID, userID, start, end).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) ListRequests(ctx context.Context, tenantID, userID string, filter RequestFilter, limit, offset int) ([]Request, int, error) {
	where := " FROM leave_requests WHERE tenant_id = $1 AND user_id = $2"
	args := []any{tenantID, userID}
	where, args = appendRequestFilter(where, args, filter)

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1)"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT%s%s ORDER BY start_date DESC LIMIT $%d OFFSET $%d",
		requestColumns, where, len(args)+1, len(args)+2)
	rows, err := s.DB.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out, err := collectRequests(rows)
	return out, total, err
}

func (s *Store) ListRequestsForUsers(ctx context.Context, tenantID string, userIDs []string, filter RequestFilter, limit, offset int) ([]Request, int, error) {
	if len(userIDs) == 0 {
		return nil, 0, nil
	}

	where := " FROM leave_requests WHERE tenant_id = $1 AND user_id = ANY($2::uuid[])"
	args := []any{tenantID, userIDs}
	where, args = appendRequestFilter(where, args, filter)

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1)"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT%s%s ORDER BY start_date DESC LIMIT $%d OFFSET $%d",
		requestColumns, where, len(args)+1, len(args)+2)
	rows, err := s.DB.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out, err := collectRequests(rows)
	return out, total, err
}

func appendRequestFilter(where string, args []any, filter RequestFilter) (string, []any) {
	if filter.Year != 0 {
		where += fmt.Sprintf(" AND EXTRACT(YEAR FROM start_date) = $%d", len(args)+1)
		args = append(args, filter.Year)
	}
	if filter.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", len(args)+1)
		args = append(args, filter.Status)
	}
	if !filter.From.IsZero() {
		where += fmt.Sprintf(" AND end_date >= $%d", len(args)+1)
		args = append(args, filter.From)
	}
	if !filter.To.IsZero() {
		where += fmt.Sprintf(" AND start_date <= $%d", len(args)+1)
		args = append(args, filter.To)
	}
	return where, args
}

func (s *Store) CalendarEntries(ctx context.Context, tenantID string, from, to time.Time) ([]CalendarEntry, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT r.id, r.user_id, u.first_name, u.last_name, r.leave_type,
           r.start_date, r.end_date, r.days_count::text, r.status
    FROM leave_requests r
    JOIN users u ON r.user_id = u.id
    WHERE r.tenant_id = $1
      AND r.status IN ('pending', 'approved')
      AND r.start_date <= $3 AND r.end_date >= $2
    ORDER BY r.start_date
  `, tenantID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CalendarEntry
	for rows.Next() {
		var entry CalendarEntry
		var daysText string
		if err := rows.Scan(&entry.RequestID, &entry.UserID, &entry.FirstName, &entry.LastName,
			&entry.LeaveType, &entry.StartDate, &entry.EndDate, &daysText, &entry.Status); err != nil {
			return nil, err
		}
		if entry.DaysCount, err = decimal.NewFromString(daysText); err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func collectRequests(rows pgx.Rows) ([]Request, error) {
	var out []Request
	for rows.Next() {
		var req Request
		var daysText string
		if err := rows.Scan(&req.ID, &req.TenantID, &req.UserID, &req.LeaveType, &req.StartDate,
			&req.EndDate, &daysText, &req.Status, &req.Reason, &req.ReviewedBy, &req.ReviewedAt,
			&req.ReviewerComments, &req.CreatedAt, &req.UpdatedAt); err != nil {
			return nil, err
		}
		var err error
		if req.DaysCount, err = decimal.NewFromString(daysText); err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}
