package auth

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type AuthUser struct {
	ID           string
	TenantID     string
	Email        string
	PasswordHash string
	RoleID       string
	RoleName     string
	Status       string
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) FindActiveUserByEmail(ctx context.Context, email string) (AuthUser, error) {
	var user AuthUser
	err := s.DB.QueryRow(ctx, `
    SELECT u.id, u.tenant_id, u.email, u.password_hash, u.role_id, r.name
    FROM users u
    JOIN roles r ON u.role_id = r.id
    WHERE lower(u.email) = lower($1) AND u.status = 'active'
  `, email).Scan(&user.ID, &user.TenantID, &user.Email, &user.PasswordHash, &user.RoleID, &user.RoleName)
	if err != nil {
		return AuthUser{}, err
	}
	user.Status = "active"
	return user, nil
}

func (s *Store) UpdateLastLogin(ctx context.Context, userID string) error {
	_, err := s.DB.Exec(ctx, "UPDATE users SET last_login_at = now() WHERE id = $1", userID)
	return err
}

// HasPermission resolves a role capability once at the authorization
// boundary; business operations never re-check role names themselves.
func (s *Store) HasPermission(ctx context.Context, roleID, permission string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM role_permissions rp
    JOIN permissions p ON rp.permission_id = p.id
    WHERE rp.role_id = $1 AND p.key = $2
  `, roleID, permission).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
