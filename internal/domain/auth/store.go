package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) FindActiveUserByUsername(ctx context.Context, username string) (AuthUser, error) {
	var out AuthUser
	err := s.DB.QueryRow(ctx, `
    SELECT u.id, u.username, u.role_id, r.name, COALESCE(u.department_id::text, ''), u.password_hash
    FROM users u
    JOIN roles r ON u.role_id = r.id
    WHERE lower(u.username) = lower($1) AND u.is_active = true
  `, username).Scan(&out.ID, &out.Username, &out.RoleID, &out.RoleName, &out.DepartmentID, &out.Password)
	if errors.Is(err, pgx.ErrNoRows) {
		return AuthUser{}, ErrUserNotFound
	}
	return out, err
}

func (s *Store) UpdateLastLogin(ctx context.Context, userID string) error {
	_, err := s.DB.Exec(ctx, "UPDATE users SET last_login = now() WHERE id = $1", userID)
	return err
}

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

func (s *Store) Profile(ctx context.Context, userID string) (Profile, error) {
	var out Profile
	err := s.DB.QueryRow(ctx, `
    SELECT u.id, u.username, u.name, COALESCE(u.email, ''), r.name, COALESCE(u.department_id::text, ''), u.last_login
    FROM users u
    JOIN roles r ON u.role_id = r.id
    WHERE u.id = $1
  `, userID).Scan(&out.ID, &out.Username, &out.Name, &out.Email, &out.Role, &out.DepartmentID, &out.LastLogin)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, ErrUserNotFound
	}
	if err != nil {
		return Profile{}, err
	}

	rows, err := s.DB.Query(ctx, `
    SELECT p.key
    FROM users u
    JOIN role_permissions rp ON rp.role_id = u.role_id
    JOIN permissions p ON rp.permission_id = p.id
    WHERE u.id = $1
    ORDER BY p.key
  `, userID)
	if err != nil {
		return Profile{}, err
	}
	defer rows.Close()
	out.Permissions = []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return Profile{}, err
		}
		out.Permissions = append(out.Permissions, key)
	}
	out.RoleLabel = RoleDisplayNames[out.Role]
	return out, rows.Err()
}
