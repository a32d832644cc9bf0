package auth

import (
	"context"

	"practicehub/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) FindActiveUserByEmail(ctx context.Context, email string) (User, error) {
	var out User
	err := s.DB.QueryRow(ctx, `
    SELECT id, tenant_id, email, first_name, last_name, role, manager_id, status, password_hash
    FROM users
    WHERE email = $1 AND status = 'active'
  `, email).Scan(&out.ID, &out.TenantID, &out.Email, &out.FirstName, &out.LastName, &out.Role, &out.ManagerID, &out.Status, &out.PasswordHash)
	return out, err
}

func (s *Store) GetUser(ctx context.Context, tenantID, userID string) (User, error) {
	var out User
	err := s.DB.QueryRow(ctx, `
    SELECT id, tenant_id, email, first_name, last_name, role, manager_id, status
    FROM users
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, userID).Scan(&out.ID, &out.TenantID, &out.Email, &out.FirstName, &out.LastName, &out.Role, &out.ManagerID, &out.Status)
	return out, err
}

func (s *Store) UpdateLastLogin(ctx context.Context, userID string) error {
	_, err := s.DB.Exec(ctx, "UPDATE users SET last_login = now() WHERE id = $1", userID)
	return err
}

// TeamMemberIDs returns the ids of active users reporting to the given
// manager.
func (s *Store) TeamMemberIDs(ctx context.Context, tenantID, managerID string) ([]string, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id FROM users
    WHERE tenant_id = $1 AND manager_id = $2 AND status = 'active'
  `, tenantID, managerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
