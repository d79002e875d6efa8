// internal/repository/postgres/tenant_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"dird-service/internal/domain/tenant"
	xerrors "dird-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TenantRepository struct {
	db *pgxpool.Pool
}

func NewTenantRepository(db *pgxpool.Pool) *TenantRepository {
	return &TenantRepository{db: db}
}

// Ensure inserts the tenant if it is unknown, updating the country otherwise.
func (r *TenantRepository) Ensure(ctx context.Context, t *tenant.Tenant) error {
	query := `
		INSERT INTO tenants (uuid, country)
		VALUES ($1, NULLIF($2, ''))
		ON CONFLICT (uuid) DO UPDATE SET country = COALESCE(NULLIF($2, ''), tenants.country)
	`
	if _, err := r.db.Exec(ctx, query, t.UUID, t.Country); err != nil {
		return fmt.Errorf("failed to ensure tenant: %w", err)
	}
	return nil
}

// Country returns the tenant's configured country, "" when unset.
func (r *TenantRepository) Country(ctx context.Context, tenantUUID string) (string, error) {
	var country *string
	err := r.db.QueryRow(ctx, `SELECT country FROM tenants WHERE uuid = $1`, tenantUUID).Scan(&country)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", xerrors.ErrNoSuchTenant
	}
	if err != nil {
		return "", fmt.Errorf("failed to load tenant: %w", err)
	}
	if country == nil {
		return "", nil
	}
	return *country, nil
}

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Ensure(ctx context.Context, u *tenant.User) error {
	query := `
		INSERT INTO dird_users (user_uuid, tenant_uuid)
		VALUES ($1, $2)
		ON CONFLICT (user_uuid) DO NOTHING
	`
	if _, err := r.db.Exec(ctx, query, u.UserUUID, u.TenantUUID); err != nil {
		return fmt.Errorf("failed to ensure user: %w", err)
	}
	return nil
}

// Exists reports whether the tenant owns a tracked user with this uuid.
func (r *UserRepository) Exists(ctx context.Context, tenantUUID, userUUID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM dird_users WHERE user_uuid = $1 AND tenant_uuid = $2)`
	if err := r.db.QueryRow(ctx, query, userUUID, tenantUUID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return exists, nil
}

// Delete removes the user row; favorites and personal contacts cascade.
func (r *UserRepository) Delete(ctx context.Context, userUUID string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM dird_users WHERE user_uuid = $1`, userUUID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
