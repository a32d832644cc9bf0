package toil

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"practicehub/internal/domain/capacity"
	"practicehub/internal/domain/timesheet"
	"practicehub/internal/platform/querier"
)

type Store struct {
	DB querier.Beginner
}

func NewStore(db querier.Beginner) *Store {
	return &Store{DB: db}
}

func (s *Store) InTx(ctx context.Context, fn func(AccrualStore) error) error {
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

func (s *Store) SubmissionForUpdate(ctx context.Context, tenantID, submissionID string) (timesheet.Submission, error) {
	var sub timesheet.Submission
	var hoursText string
	err := s.DB.QueryRow(ctx, `
    SELECT id, tenant_id, user_id, week_start_date, week_end_date, total_hours::text,
           status, notes, reviewed_by, reviewed_at, reviewer_comments, submitted_at, updated_at
    FROM timesheet_submissions
    WHERE tenant_id = $1 AND id = $2
    FOR UPDATE
  `, tenantID, submissionID).Scan(&sub.ID, &sub.TenantID, &sub.UserID, &sub.WeekStartDate,
		&sub.WeekEndDate, &hoursText, &sub.Status, &sub.Notes, &sub.ReviewedBy, &sub.ReviewedAt,
		&sub.ReviewerComments, &sub.SubmittedAt, &sub.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return timesheet.Submission{}, timesheet.ErrNotFound
		}
		return timesheet.Submission{}, err
	}
	if sub.TotalHours, err = decimal.NewFromString(hoursText); err != nil {
		return timesheet.Submission{}, err
	}
	return sub, nil
}

func (s *Store) MarkSubmissionApproved(ctx context.Context, tenantID, submissionID, reviewerID, comments string) error {
	var commentsArg any
	if comments != "" {
		commentsArg = comments
	}
	_, err := s.DB.Exec(ctx, `
    UPDATE timesheet_submissions
    SET status = 'approved', reviewed_by = $3, reviewed_at = now(), reviewer_comments = $4, updated_at = now()
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, submissionID, reviewerID, commentsArg)
	return err
}

func (s *Store) ContractedHoursForWeek(ctx context.Context, tenantID, userID string, weekStart time.Time) (decimal.Decimal, error) {
	rec, err := capacity.NewStore(s.DB).EffectiveForWeek(ctx, tenantID, userID, weekStart)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return rec.WeeklyHours, nil
}

const accrualColumns = `
    id, tenant_id, user_id, timesheet_id, week_ending, hours_accrued::text,
    logged_hours::text, contracted_hours::text, accrual_date, expiry_date, expired`

func scanAccrual(row pgx.Row) (Accrual, error) {
	var rec Accrual
	var accrued, logged, contracted string
	err := row.Scan(&rec.ID, &rec.TenantID, &rec.UserID, &rec.TimesheetID, &rec.WeekEnding,
		&accrued, &logged, &contracted, &rec.AccrualDate, &rec.ExpiryDate, &rec.Expired)
	if err != nil {
		return Accrual{}, err
	}
	if rec.HoursAccrued, err = decimal.NewFromString(accrued); err != nil {
		return Accrual{}, err
	}
	if rec.LoggedHours, err = decimal.NewFromString(logged); err != nil {
		return Accrual{}, err
	}
	if rec.ContractedHours, err = decimal.NewFromString(contracted); err != nil {
		return Accrual{}, err
	}
	return rec, nil
}

func (s *Store) InsertAccrual(ctx context.Context, rec Accrual) (Accrual, error) {
	row := s.DB.QueryRow(ctx, `
    INSERT INTO toil_accrual_history
      (tenant_id, user_id, timesheet_id, week_ending, hours_accrued, logged_hours, contracted_hours, expiry_date)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    RETURNING`+accrualColumns,
		rec.TenantID, rec.UserID, rec.TimesheetID, rec.WeekEnding,
		rec.HoursAccrued.String(), rec.LoggedHours.String(), rec.ContractedHours.String(), rec.ExpiryDate)
	return scanAccrual(row)
}

func (s *Store) AddToilBalance(ctx context.Context, tenantID, userID string, year int, hours, defaultEntitlement decimal.Decimal) error {
	if _, err := s.DB.Exec(ctx, `
    INSERT INTO leave_balances (tenant_id, user_id, year, annual_entitlement)
    VALUES ($1,$2,$3,$4)
    ON CONFLICT (tenant_id, user_id, year) DO NOTHING
  `, tenantID, userID, year, defaultEntitlement.String()); err != nil {
		return err
	}
	_, err := s.DB.Exec(ctx, `
    UPDATE leave_balances
    SET toil_balance = toil_balance + $4, updated_at = now()
    WHERE tenant_id = $1 AND user_id = $2 AND year = $3
  `, tenantID, userID, year, hours.String())
	return err
}

func (s *Store) ExpireAccruals(ctx context.Context, tenantID string, asOf time.Time) ([]Accrual, error) {
	rows, err := s.DB.Query(ctx, `
    UPDATE toil_accrual_history
    SET expired = true
    WHERE tenant_id = $1 AND expired = false AND expiry_date IS NOT NULL AND expiry_date <= $2
    RETURNING`+accrualColumns,
		tenantID, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAccruals(rows)
}

// DeductExpiredToil clamps at zero: hours already spent cannot push the
// balance negative when their accrual expires.
func (s *Store) DeductExpiredToil(ctx context.Context, tenantID, userID string, year int, hours decimal.Decimal) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE leave_balances
    SET toil_balance = GREATEST(toil_balance - $4, 0), updated_at = now()
    WHERE tenant_id = $1 AND user_id = $2 AND year = $3
  `, tenantID, userID, year, hours.String())
	return err
}

func (s *Store) ToilBalance(ctx context.Context, tenantID, userID string, year int) (decimal.Decimal, error) {
	var text string
	err := s.DB.QueryRow(ctx, `
    SELECT toil_balance::text
    FROM leave_balances
    WHERE tenant_id = $1 AND user_id = $2 AND year = $3
  `, tenantID, userID, year).Scan(&text)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Decimal{}, err
	}
	return decimal.NewFromString(text)
}

func (s *Store) ListAccruals(ctx context.Context, tenantID, userID string, limit, offset int) ([]Accrual, int, error) {
	var total int
	if err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM toil_accrual_history WHERE tenant_id = $1 AND user_id = $2
  `, tenantID, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.DB.Query(ctx, `
    SELECT`+accrualColumns+`
    FROM toil_accrual_history
    WHERE tenant_id = $1 AND user_id = $2
    ORDER BY accrual_date DESC
    LIMIT $3 OFFSET $4
  `, tenantID, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out, err := collectAccruals(rows)
	return out, total, err
}

func (s *Store) ExpiringBetween(ctx context.Context, tenantID, userID string, from, to time.Time) ([]Accrual, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT`+accrualColumns+`
    FROM toil_accrual_history
    WHERE tenant_id = $1 AND user_id = $2 AND expired = false
      AND expiry_date IS NOT NULL AND expiry_date > $3 AND expiry_date <= $4
    ORDER BY expiry_date
  `, tenantID, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAccruals(rows)
}

func collectAccruals(rows pgx.Rows) ([]Accrual, error) {
	var out []Accrual
	for rows.Next() {
		var rec Accrual
		var accrued, logged, contracted string
		if err := rows.Scan(&rec.ID, &rec.TenantID, &rec.UserID, &rec.TimesheetID, &rec.WeekEnding,
			&accrued, &logged, &contracted, &rec.AccrualDate, &rec.ExpiryDate, &rec.Expired); err != nil {
			return nil, err
		}
		var err error
		if rec.HoursAccrued, err = decimal.NewFromString(accrued); err != nil {
			return nil, err
		}
		if rec.LoggedHours, err = decimal.NewFromString(logged); err != nil {
			return nil, err
		}
		if rec.ContractedHours, err = decimal.NewFromString(contracted); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
