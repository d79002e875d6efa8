// internal/repository/postgres/favorite_repo.go
package postgres

import (
	"context"
	"fmt"

	"dird-service/internal/domain/favorite"
	xerrors "dird-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

type FavoriteRepository struct {
	db *pgxpool.Pool
}

func NewFavoriteRepository(db *pgxpool.Pool) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// Add inserts one favorite triple.
func (r *FavoriteRepository) Add(ctx context.Context, f *favorite.Favorite) error {
	query := `INSERT INTO favorites (source_uuid, source_entry_id, user_uuid) VALUES ($1, $2, $3)`
	if _, err := r.db.Exec(ctx, query, f.SourceUUID, f.SourceEntryID, f.UserUUID); err != nil {
		if isUniqueViolation(err) {
			return xerrors.ErrDuplicatedFavorite
		}
		if isForeignKeyViolation(err) {
			return xerrors.ErrNoSuchSource
		}
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	return nil
}

// Remove deletes one favorite triple.
func (r *FavoriteRepository) Remove(ctx context.Context, f *favorite.Favorite) error {
	query := `DELETE FROM favorites WHERE source_uuid = $1 AND source_entry_id = $2 AND user_uuid = $3`
	tag, err := r.db.Exec(ctx, query, f.SourceUUID, f.SourceEntryID, f.UserUUID)
	if err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNoSuchFavorite
	}
	return nil
}

// ListByUser returns the user's favorites restricted to the given sources.
func (r *FavoriteRepository) ListByUser(ctx context.Context, userUUID string, sourceUUIDs []string) ([]favorite.Favorite, error) {
	if len(sourceUUIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT source_uuid, source_entry_id, user_uuid
		FROM favorites
		WHERE user_uuid = $1 AND source_uuid = ANY($2)
	`
	rows, err := r.db.Query(ctx, query, userUUID, sourceUUIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	var out []favorite.Favorite
	for rows.Next() {
		var f favorite.Favorite
		if err := rows.Scan(&f.SourceUUID, &f.SourceEntryID, &f.UserUUID); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Purge deletes every favorite owned by the user.
func (r *FavoriteRepository) Purge(ctx context.Context, userUUID string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM favorites WHERE user_uuid = $1`, userUUID); err != nil {
		return fmt.Errorf("failed to purge favorites: %w", err)
	}
	return nil
}
