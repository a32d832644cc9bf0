package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"practicehub/internal/domain/auth"
	"practicehub/internal/platform/config"
)

// Seed ensures the default tenant and, when configured, an initial admin
// account exist. It is safe to run on every boot.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	tenantID, err := ensureTenant(ctx, pool, cfg.SeedTenantName)
	if err != nil {
		return err
	}

	if strings.TrimSpace(cfg.SeedAdminEmail) != "" && strings.TrimSpace(cfg.SeedAdminPassword) != "" {
		if err := ensureAdminUser(ctx, pool, tenantID, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
			return err
		}
	}
	return nil
}

func ensureTenant(ctx context.Context, pool *pgxpool.Pool, name string) (string, error) {
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM tenants WHERE name = $1", name).Scan(&id)
	if err == nil {
		return id, nil
	}

	err = pool.QueryRow(ctx, "INSERT INTO tenants (name) VALUES ($1) RETURNING id", name).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func ensureAdminUser(ctx context.Context, pool *pgxpool.Pool, tenantID, email, password string) error {
	var existing string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE tenant_id = $1 AND email = $2", tenantID, email).Scan(&existing)
	if err == nil {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, `
    INSERT INTO users (tenant_id, email, password_hash, first_name, last_name, role)
    VALUES ($1,$2,$3,'System','Admin',$4)
  `, tenantID, email, hash, auth.RoleAdmin)
	return err
}
