package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/newsline/engage/internal/core/domain"
	"github.com/newsline/engage/internal/core/ports"
)

type presenceRepository struct {
	db *sql.DB
}

func NewPresenceRepository(db *sql.DB) ports.PresenceRepository {
	return &presenceRepository{
		db: db,
	}
}

// Insert is insert-or-noop: the unique constraint on the triple absorbs
// racing duplicates and the affected-row count reports which case happened.
func (r *presenceRepository) Insert(ctx context.Context, rec *domain.PresenceRecord) (bool, error) {
	query := `
		INSERT INTO presence_records (user_id, target_kind, target_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, target_kind, target_id) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query, rec.UserID, rec.TargetKind, rec.TargetID)
	if err != nil {
		return false, fmt.Errorf("failed to insert presence record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

func (r *presenceRepository) Delete(ctx context.Context, userID uuid.UUID, kind domain.TargetKind, targetID string) (bool, error) {
	query := `
		DELETE FROM presence_records
		WHERE user_id = $1 AND target_kind = $2 AND target_id = $3
	`
	res, err := r.db.ExecContext(ctx, query, userID, kind, targetID)
	if err != nil {
		return false, fmt.Errorf("failed to delete presence record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

func (r *presenceRepository) Exists(ctx context.Context, userID uuid.UUID, kind domain.TargetKind, targetID string) (bool, error) {
	query := `
		SELECT 1 FROM presence_records
		WHERE user_id = $1 AND target_kind = $2 AND target_id = $3
		LIMIT 1
	`
	var exists int
	err := r.db.QueryRowContext(ctx, query, userID, kind, targetID).Scan(&exists)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("failed to check presence record: %w", err)
	}
	return true, nil
}

func (r *presenceRepository) Count(ctx context.Context, kind domain.TargetKind, targetID string) (int64, error) {
	query := `
		SELECT COUNT(*) FROM presence_records
		WHERE target_kind = $1 AND target_id = $2
	`
	var count int64
	if err := r.db.QueryRowContext(ctx, query, kind, targetID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count presence records: %w", err)
	}
	return count, nil
}

func (r *presenceRepository) Followers(ctx context.Context, kind domain.TargetKind, targetID string) ([]uuid.UUID, error) {
	query := `
		SELECT user_id FROM presence_records
		WHERE target_kind = $1 AND target_id = $2
		ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, query, kind, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch followers: %w", err)
	}
	defer rows.Close()

	var followers []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan follower: %w", err)
		}
		followers = append(followers, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating followers: %w", err)
	}
	return followers, nil
}
