package timesheet

import (
	"context"
	"errors"
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

const submissionColumns = `
    id, tenant_id, user_id, week_start_date, week_end_date, total_hours::text,
    status, notes, reviewed_by, reviewed_at, reviewer_comments, submitted_at, updated_at`

func scanSubmission(row pgx.Row) (Submission, error) {
	var sub Submission
	var hoursText string
	err := row.Scan(&sub.ID, &sub.TenantID, &sub.UserID, &sub.WeekStartDate, &sub.WeekEndDate,
		&hoursText, &sub.Status, &sub.Notes, &sub.ReviewedBy, &sub.ReviewedAt,
		&sub.ReviewerComments, &sub.SubmittedAt, &sub.UpdatedAt)
	if err != nil {
		return Submission{}, err
	}
	if sub.TotalHours, err = decimal.NewFromString(hoursText); err != nil {
		return Submission{}, err
	}
	return sub, nil
}

func (s *Store) Insert(ctx context.Context, sub Submission) (Submission, error) {
	row := s.DB.QueryRow(ctx, `
    INSERT INTO timesheet_submissions (tenant_id, user_id, week_start_date, week_end_date, total_hours, status, notes)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING`+submissionColumns,
		sub.TenantID, sub.UserID, sub.WeekStartDate, sub.WeekEndDate,
		sub.TotalHours.String(), sub.Status, sub.Notes)
	return scanSubmission(row)
}

func (s *Store) Get(ctx context.Context, tenantID, submissionID string) (Submission, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT`+submissionColumns+`
    FROM timesheet_submissions
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, submissionID)
	sub, err := scanSubmission(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Submission{}, ErrNotFound
	}
	return sub, err
}

func (s *Store) GetForUpdate(ctx context.Context, tenantID, submissionID string) (Submission, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT`+submissionColumns+`
    FROM timesheet_submissions
    WHERE tenant_id = $1 AND id = $2
    FOR UPDATE
  `, tenantID, submissionID)
	sub, err := scanSubmission(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Submission{}, ErrNotFound
	}
	return sub, err
}

func (s *Store) Review(ctx context.Context, tenantID, submissionID, status, reviewerID, comments string) error {
	var commentsArg any
	if comments != "" {
		commentsArg = comments
	}
	_, err := s.DB.Exec(ctx, `
    UPDATE timesheet_submissions
    SET status = $3, reviewed_by = $4, reviewed_at = now(), reviewer_comments = $5, updated_at = now()
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, submissionID, status, reviewerID, commentsArg)
	return err
}

func (s *Store) LatestForWeek(ctx context.Context, tenantID, userID string, weekStart time.Time) (Submission, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT`+submissionColumns+`
    FROM timesheet_submissions
    WHERE tenant_id = $1 AND user_id = $2 AND week_start_date = $3
    ORDER BY submitted_at DESC
    LIMIT 1
  `, tenantID, userID, weekStart)
	sub, err := scanSubmission(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Submission{}, ErrNotFound
	}
	return sub, err
}

func (s *Store) HasAwaitingForWeek(ctx context.Context, tenantID, userID string, weekStart time.Time) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM timesheet_submissions
    WHERE tenant_id = $1 AND user_id = $2 AND week_start_date = $3
      AND status IN ('pending', 'resubmitted')
  `, tenantID, userID, weekStart).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) HasRejectedForWeek(ctx context.Context, tenantID, userID string, weekStart time.Time) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM timesheet_submissions
    WHERE tenant_id = $1 AND user_id = $2 AND week_start_date = $3 AND status = 'rejected'
  `, tenantID, userID, weekStart).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) ListAwaiting(ctx context.Context, tenantID string, limit, offset int) ([]Submission, int, error) {
	var total int
	if err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM timesheet_submissions
    WHERE tenant_id = $1 AND status IN ('pending', 'resubmitted')
  `, tenantID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.DB.Query(ctx, `
    SELECT`+submissionColumns+`
    FROM timesheet_submissions
    WHERE tenant_id = $1 AND status IN ('pending', 'resubmitted')
    ORDER BY submitted_at
    LIMIT $2 OFFSET $3
  `, tenantID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out, err := collectSubmissions(rows)
	return out, total, err
}

func (s *Store) ListForUser(ctx context.Context, tenantID, userID string, limit, offset int) ([]Submission, int, error) {
	var total int
	if err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM timesheet_submissions WHERE tenant_id = $1 AND user_id = $2
  `, tenantID, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.DB.Query(ctx, `
    SELECT`+submissionColumns+`
    FROM timesheet_submissions
    WHERE tenant_id = $1 AND user_id = $2
    ORDER BY week_start_date DESC
    LIMIT $3 OFFSET $4
  `, tenantID, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out, err := collectSubmissions(rows)
	return out, total, err
}

func collectSubmissions(rows pgx.Rows) ([]Submission, error) {
	var out []Submission
	for rows.Next() {
		var sub Submission
		var hoursText string
		if err := rows.Scan(&sub.ID, &sub.TenantID, &sub.UserID, &sub.WeekStartDate, &sub.WeekEndDate,
			&hoursText, &sub.Status, &sub.Notes, &sub.ReviewedBy, &sub.ReviewedAt,
			&sub.ReviewerComments, &sub.SubmittedAt, &sub.UpdatedAt); err != nil {
			return nil, err
		}
		var err error
		if sub.TotalHours, err = decimal.NewFromString(hoursText); err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}
