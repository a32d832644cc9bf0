package leave

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const balanceColumns = `
    id, tenant_id, user_id, year, annual_entitlement::text, days_used::text,
    sick_days_used::text, toil_balance::text, toil_used::text, carried_over::text, updated_at`

func scanBalance(row pgx.Row) (Balance, error) {
	var bal Balance
	var entitlement, daysUsed, sickUsed, toilBal, toilUsed, carried string
	err := row.Scan(&bal.ID, &bal.TenantID, &bal.UserID, &bal.Year, &entitlement,
		&daysUsed, &sickUsed, &toilBal, &toilUsed, &carried, &bal.UpdatedAt)
	if err != nil {
		return Balance{}, err
	}
	for _, field := range []struct {
		dst *decimal.Decimal
		src string
	}{
		{&bal.AnnualEntitlement, entitlement},
		{&bal.DaysUsed, daysUsed},
		{&bal.SickDaysUsed, sickUsed},
		{&bal.ToilBalance, toilBal},
		{&bal.ToilUsed, toilUsed},
		{&bal.CarriedOver, carried},
	} {
		if *field.dst, err = decimal.NewFromString(field.src); err != nil {
			return Balance{}, err
		}
	}
	return bal, nil
}

func (s *Store) ensureBalance(ctx context.Context, tenantID, userID string, year int, defaultEntitlement decimal.Decimal) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO leave_balances (tenant_id, user_id, year, annual_entitlement)
    VALUES ($1,$2,$3,$4)
    ON CONFLICT (tenant_id, user_id, year) DO NOTHING
  `, tenantID, userID, year, defaultEntitlement.String())
	return err
}

func (s *Store) GetOrCreateBalance(ctx context.Context, tenantID, userID string, year int, defaultEntitlement decimal.Decimal) (Balance, error) {
	if err := s.ensureBalance(ctx, tenantID, userID, year, defaultEntitlement); err != nil {
		return Balance{}, err
	}
	row := s.DB.QueryRow(ctx, `
    SELECT`+balanceColumns+`
    FROM leave_balances
    WHERE tenant_id = $1 AND user_id = $2 AND year = $3
  `, tenantID, userID, year)
	return scanBalance(row)
}

// GetBalanceForUpdate locks the balance row for the rest of the enclosing
// transaction, creating it first if the user has no row for the year.
func (s *Store) GetBalanceForUpdate(ctx context.Context, tenantID, userID string, year int, defaultEntitlement decimal.Decimal) (Balance, error) {
	if err := s.ensureBalance(ctx, tenantID, userID, year, defaultEntitlement); err != nil {
		return Balance{}, err
	}
	row := s.DB.QueryRow(ctx, `
    SELECT`+balanceColumns+`
    FROM leave_balances
    WHERE tenant_id = $1 AND user_id = $2 AND year = $3
    FOR UPDATE
  `, tenantID, userID, year)
	return scanBalance(row)
}

func (s *Store) AddDaysUsed(ctx context.Context, tenantID, userID string, year int, days decimal.Decimal) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE leave_balances
    SET days_used = days_used + $4, updated_at = now()
    WHERE tenant_id = $1 AND user_id = $2 AND year = $3
  `, tenantID, userID, year, days.String())
	return err
}

func (s *Store) AddSickDaysUsed(ctx context.Context, tenantID, userID string, year int, days decimal.Decimal) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE leave_balances
    SET sick_days_used = sick_days_used + $4, updated_at = now()
    WHERE tenant_id = $1 AND user_id = $2 AND year = $3
  `, tenantID, userID, year, days.String())
	return err
}

// DeductToil relies on the non-negative check constraint as the final guard
// against concurrent overdraw.
func (s *Store) DeductToil(ctx context.Context, tenantID, userID string, year int, hours decimal.Decimal) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE leave_balances
    SET toil_balance = toil_balance - $4, toil_used = toil_used + $4, updated_at = now()
    WHERE tenant_id = $1 AND user_id = $2 AND year = $3
  `, tenantID, userID, year, hours.String())
	return err
}

func (s *Store) RestoreToil(ctx context.Context, tenantID, userID string, year int, hours decimal.Decimal) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE leave_balances
    SET toil_balance = toil_balance + $4, toil_used = toil_used - $4, updated_at = now()
    WHERE tenant_id = $1 AND user_id = $2 AND year = $3
  `, tenantID, userID, year, hours.String())
	return err
}

func (s *Store) SetEntitlement(ctx context.Context, tenantID, userID string, year int, days, defaultEntitlement decimal.Decimal) (Balance, error) {
	if err := s.ensureBalance(ctx, tenantID, userID, year, defaultEntitlement); err != nil {
		return Balance{}, err
	}
	row := s.DB.QueryRow(ctx, `
    UPDATE leave_balances
    SET annual_entitlement = $4, updated_at = now()
    WHERE tenant_id = $1 AND user_id = $2 AND year = $3
    RETURNING`+balanceColumns,
		tenantID, userID, year, days.String())
	return scanBalance(row)
}

func (s *Store) SetCarryover(ctx context.Context, tenantID, userID string, year int, days, defaultEntitlement decimal.Decimal) (Balance, error) {
	if err := s.ensureBalance(ctx, tenantID, userID, year, defaultEntitlement); err != nil {
		return Balance{}, err
	}
	row := s.DB.QueryRow(ctx, `
    UPDATE leave_balances
    SET carried_over = $4, updated_at = now()
    WHERE tenant_id = $1 AND user_id = $2 AND year = $3
    RETURNING`+balanceColumns,
		tenantID, userID, year, days.String())
	return scanBalance(row)
}

func (s *Store) ListBalancesForYear(ctx context.Context, tenantID string, year int) ([]Balance, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT`+balanceColumns+`
    FROM leave_balances
    WHERE tenant_id = $1 AND year = $2
  `, tenantID, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Balance
	for rows.Next() {
		var bal Balance
		var entitlement, daysUsed, sickUsed, toilBal, toilUsed, carried string
		if err := rows.Scan(&bal.ID, &bal.TenantID, &bal.UserID, &bal.Year, &entitlement,
			&daysUsed, &sickUsed, &toilBal, &toilUsed, &carried, &bal.UpdatedAt); err != nil {
			return nil, err
		}
		for _, field := range []struct {
			dst *decimal.Decimal
			src string
		}{
			{&bal.AnnualEntitlement, entitlement},
			{&bal.DaysUsed, daysUsed},
			{&bal.SickDaysUsed, sickUsed},
			{&bal.ToilBalance, toilBal},
			{&bal.ToilUsed, toilUsed},
			{&bal.CarriedOver, carried},
		} {
			if *field.dst, err = decimal.NewFromString(field.src); err != nil {
				return nil, err
			}
		}
		out = append(out, bal)
	}
	return out, rows.Err()
}
