package capacity

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"practicehub/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) Upsert(ctx context.Context, tenantID, userID string, weeklyHours decimal.Decimal, effectiveFrom time.Time) (Record, error) {
	var rec Record
	var hoursText string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO staff_capacity (tenant_id, user_id, weekly_hours, effective_from)
    VALUES ($1,$2,$3,$4)
    ON CONFLICT (tenant_id, user_id, effective_from)
    DO UPDATE SET weekly_hours = EXCLUDED.weekly_hours, updated_at = now()
    RETURNING id, tenant_id, user_id, weekly_hours::text, effective_from, created_at, updated_at
  `, tenantID, userID, weeklyHours.String(), effectiveFrom).Scan(
		&rec.ID, &rec.TenantID, &rec.UserID, &hoursText, &rec.EffectiveFrom, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return Record{}, err
	}
	rec.WeeklyHours, err = decimal.NewFromString(hoursText)
	return rec, err
}

// EffectiveForWeek resolves the contracted hours in force for the week
// starting at weekStart: the record with the greatest effective_from that is
// on or before that date.
func (s *Store) EffectiveForWeek(ctx context.Context, tenantID, userID string, weekStart time.Time) (Record, error) {
	var rec Record
	var hoursText string
	err := s.DB.QueryRow(ctx, `
    SELECT id, tenant_id, user_id, weekly_hours::text, effective_from, created_at, updated_at
    FROM staff_capacity
    WHERE tenant_id = $1 AND user_id = $2 AND effective_from <= $3
    ORDER BY effective_from DESC
    LIMIT 1
  `, tenantID, userID, weekStart).Scan(
		&rec.ID, &rec.TenantID, &rec.UserID, &hoursText, &rec.EffectiveFrom, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNoCapacityRecord
		}
		return Record{}, err
	}
	rec.WeeklyHours, err = decimal.NewFromString(hoursText)
	return rec, err
}

func (s *Store) ListForUser(ctx context.Context, tenantID, userID string) ([]Record, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, tenant_id, user_id, weekly_hours::text, effective_from, created_at, updated_at
    FROM staff_capacity
    WHERE tenant_id = $1 AND user_id = $2
    ORDER BY effective_from DESC
  `, tenantID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var hoursText string
		if err := rows.Scan(&rec.ID, &rec.TenantID, &rec.UserID, &hoursText, &rec.EffectiveFrom, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		if rec.WeeklyHours, err = decimal.NewFromString(hoursText); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
