package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"hotelperf/internal/domain/auth"
	"hotelperf/internal/domain/evaluation"
	"hotelperf/internal/platform/config"
)

func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if err := ensurePermissions(ctx, pool); err != nil {
		return err
	}

	roleIDs, err := ensureRoles(ctx, pool)
	if err != nil {
		return err
	}

	if err := ensureRolePermissions(ctx, pool, roleIDs); err != nil {
		return err
	}

	if err := ensureAdminUser(ctx, pool, roleIDs[auth.RoleAdmin], cfg.SeedAdminUsername, cfg.SeedAdminName, cfg.SeedAdminPassword); err != nil {
		return err
	}

	criteria, err := loadCriteriaCatalog(cfg.CriteriaCatalog)
	if err != nil {
		return err
	}
	return ensureCriteria(ctx, pool, criteria)
}

func ensurePermissions(ctx context.Context, pool *pgxpool.Pool) error {
	for _, perm := range auth.DefaultPermissions {
		_, err := pool.Exec(ctx, "INSERT INTO permissions (key) VALUES ($1) ON CONFLICT (key) DO NOTHING", perm)
		if err != nil {
			return err
		}
	}
	return nil
}

func ensureRoles(ctx context.Context, pool *pgxpool.Pool) (map[string]string, error) {
	roleIDs := map[string]string{}
	for roleName := range auth.RolePermissions {
		var id string
		err := pool.QueryRow(ctx, `
    INSERT INTO roles (name, display_name) VALUES ($1, $2)
    ON CONFLICT (name) DO UPDATE SET display_name = EXCLUDED.display_name
    RETURNING id
  `, roleName, auth.RoleDisplayNames[roleName]).Scan(&id)
		if err != nil {
			return nil, err
		}
		roleIDs[roleName] = id
	}
	return roleIDs, nil
}

func ensureRolePermissions(ctx context.Context, pool *pgxpool.Pool, roleIDs map[string]string) error {
	permMap := map[string]string{}
	rows, err := pool.Query(ctx, "SELECT id, key FROM permissions")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id, key string
		if err := rows.Scan(&id, &key); err != nil {
			return err
		}
		permMap[key] = id
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for roleName, perms := range auth.RolePermissions {
		roleID := roleIDs[roleName]
		for _, permKey := range perms {
			permID, ok := permMap[permKey]
			if !ok {
				return errors.New("permission not found: " + permKey)
			}
			_, err := pool.Exec(ctx, "INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2) ON CONFLICT DO NOTHING", roleID, permID)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

func ensureAdminUser(ctx context.Context, pool *pgxpool.Pool, roleID, username, name, password string) error {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || strings.TrimSpace(password) == "" {
		slog.Info("seed admin skipped", "reason", "SEED_ADMIN_PASSWORD not set")
		return nil
	}

	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE lower(username) = $1", username).Scan(&id)
	if err == nil {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	err = pool.QueryRow(ctx, `
    INSERT INTO users (username, name, password_hash, role_id)
    VALUES ($1, $2, $3, $4)
    RETURNING id
  `, username, name, hash, roleID).Scan(&id)
	if err != nil {
		return err
	}
	slog.Info("seed admin created", "username", username)
	return nil
}

func loadCriteriaCatalog(path string) ([]evaluation.Criterion, error) {
	if strings.TrimSpace(path) == "" {
		return evaluation.DefaultCatalog()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open criteria catalog: %w", err)
	}
	defer f.Close()
	return evaluation.LoadCatalog(f)
}

// ensureCriteria inserts the catalog only into an empty criteria table so admin edits survive restarts.
func ensureCriteria(ctx context.Context, pool *pgxpool.Pool, criteria []evaluation.Criterion) error {
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM evaluation_criteria").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	store := evaluation.NewStore(pool)
	for _, criterion := range criteria {
		if _, err := store.CreateCriterion(ctx, criterion); err != nil {
			return fmt.Errorf("seed criterion %q: %w", criterion.Name.EN, err)
		}
	}
	slog.Info("seeded evaluation criteria", "count", len(criteria))
	return nil
}
