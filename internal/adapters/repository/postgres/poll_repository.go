package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/newsline/engage/internal/core/domain"
	"github.com/newsline/engage/internal/core/ports"
)

type pollRepository struct {
	db *sql.DB
}

func NewPollRepository(db *sql.DB) ports.PollRepository {
	return &pollRepository{
		db: db,
	}
}

func (r *pollRepository) EnsurePoll(ctx context.Context, poll *domain.Poll) error {
	query := `
		INSERT INTO polls (article_uid, question, locale)
		VALUES ($1, $2, $3)
		ON CONFLICT (article_uid) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query, poll.ArticleUID, poll.Question, poll.Locale)
	if err != nil {
		return fmt.Errorf("failed to ensure poll: %w", err)
	}
	return nil
}

func (r *pollRepository) GetPoll(ctx context.Context, articleUID string) (*domain.Poll, error) {
	query := `
		SELECT article_uid, question, locale, created_at
		FROM polls
		WHERE article_uid = $1
	`
	poll := &domain.Poll{}
	err := r.db.QueryRowContext(ctx, query, articleUID).Scan(
		&poll.ArticleUID, &poll.Question, &poll.Locale, &poll.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get poll: %w", err)
	}
	return poll, nil
}
