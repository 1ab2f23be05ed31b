package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/newsline/engage/internal/core/domain"
	"github.com/newsline/engage/internal/core/ports"
)

type voteRepository struct {
	db *sql.DB
}

func NewVoteRepository(db *sql.DB) ports.VoteRepository {
	return &voteRepository{
		db: db,
	}
}

// CastVote inserts the ledger entry and bumps the count projection in one
// transaction. A concurrent first vote by the same user trips the unique
// constraint on (user_id, article_uid) and is reported as ErrAlreadyVoted.
func (r *voteRepository) CastVote(ctx context.Context, vote *domain.Vote) ([]domain.VoteCount, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	queryVote := `
		INSERT INTO poll_votes (user_id, article_uid, option_index, option_text)
		VALUES ($1, $2, $3, $4)
	`
	_, err = tx.ExecContext(ctx, queryVote, vote.UserID, vote.ArticleUID, vote.OptionIndex, vote.OptionText)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, domain.ErrAlreadyVoted
		}
		return nil, fmt.Errorf("failed to insert vote: %w", err)
	}

	if err := incrementCount(ctx, tx, vote.ArticleUID, vote.OptionIndex, vote.OptionText); err != nil {
		return nil, err
	}

	counts, err := fetchCounts(ctx, tx, vote.ArticleUID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPartialUpdate, err)
	}
	return counts, nil
}

// ChangeVote moves the user's vote to a new option: ledger update, floored
// decrement of the old option and increment of the new one, all in one
// transaction so the projection total is conserved.
func (r *voteRepository) ChangeVote(ctx context.Context, vote *domain.Vote) ([]domain.VoteCount, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	queryCurrent := `
		SELECT option_index FROM poll_votes
		WHERE user_id = $1 AND article_uid = $2
		FOR UPDATE
	`
	var oldOption int
	err = tx.QueryRowContext(ctx, queryCurrent, vote.UserID, vote.ArticleUID).Scan(&oldOption)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrVoteNotFound
		}
		return nil, fmt.Errorf("failed to lock current vote: %w", err)
	}

	if oldOption != vote.OptionIndex {
		queryUpdate := `
			UPDATE poll_votes
			SET option_index = $3, option_text = $4, updated_at = NOW()
			WHERE user_id = $1 AND article_uid = $2
		`
		_, err = tx.ExecContext(ctx, queryUpdate, vote.UserID, vote.ArticleUID, vote.OptionIndex, vote.OptionText)
		if err != nil {
			return nil, fmt.Errorf("failed to update vote: %w", err)
		}

		queryDecrement := `
			UPDATE poll_counts
			SET vote_count = GREATEST(vote_count - 1, 0), last_updated_at = NOW()
			WHERE article_uid = $1 AND option_index = $2
		`
		_, err = tx.ExecContext(ctx, queryDecrement, vote.ArticleUID, oldOption)
		if err != nil {
			return nil, fmt.Errorf("failed to decrement old option: %w", err)
		}

		if err := incrementCount(ctx, tx, vote.ArticleUID, vote.OptionIndex, vote.OptionText); err != nil {
			return nil, err
		}
	}

	counts, err := fetchCounts(ctx, tx, vote.ArticleUID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPartialUpdate, err)
	}
	return counts, nil
}

func (r *voteRepository) GetUserVote(ctx context.Context, userID uuid.UUID, articleUID string) (*domain.Vote, error) {
	query := `
		SELECT user_id, article_uid, option_index, option_text, created_at, updated_at
		FROM poll_votes
		WHERE user_id = $1 AND article_uid = $2
	`
	vote := &domain.Vote{}
	err := r.db.QueryRowContext(ctx, query, userID, articleUID).Scan(
		&vote.UserID, &vote.ArticleUID, &vote.OptionIndex, &vote.OptionText,
		&vote.CreatedAt, &vote.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user vote: %w", err)
	}
	return vote, nil
}

func (r *voteRepository) GetCounts(ctx context.Context, articleUID string) ([]domain.VoteCount, error) {
	return fetchCounts(ctx, r.db, articleUID)
}

// RebuildCounts recomputes the projection from the ledger: zero every row
// for the poll, then upsert the group-by counts back in. Used by the
// reconcile job when the projection is suspected to have drifted.
func (r *voteRepository) RebuildCounts(ctx context.Context, articleUID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	queryZero := `
		UPDATE poll_counts
		SET vote_count = 0, last_updated_at = NOW()
		WHERE article_uid = $1
	`
	if _, err := tx.ExecContext(ctx, queryZero, articleUID); err != nil {
		return fmt.Errorf("failed to zero counts for poll %s: %w", articleUID, err)
	}

	querySummarize := `
		INSERT INTO poll_counts (article_uid, option_index, option_text, vote_count, last_updated_at)
		SELECT article_uid, option_index, MIN(option_text), COUNT(*), NOW()
		FROM poll_votes
		WHERE article_uid = $1
		GROUP BY article_uid, option_index
		ON CONFLICT (article_uid, option_index) DO UPDATE
		SET vote_count = EXCLUDED.vote_count,
		    last_updated_at = NOW();
	`
	if _, err := tx.ExecContext(ctx, querySummarize, articleUID); err != nil {
		return fmt.Errorf("failed to rebuild counts for poll %s: %w", articleUID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rebuild for poll %s: %w", articleUID, err)
	}
	return nil
}

func (r *voteRepository) ListPollUIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT article_uid FROM polls`)
	if err != nil {
		return nil, fmt.Errorf("failed to list polls: %w", err)
	}
	defer rows.Close()

	var uids []string
	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			return nil, fmt.Errorf("failed to scan poll uid: %w", err)
		}
		uids = append(uids, uid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating polls: %w", err)
	}
	return uids, nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func incrementCount(ctx context.Context, q querier, articleUID string, optionIndex int, optionText string) error {
	query := `
		INSERT INTO poll_counts (article_uid, option_index, option_text, vote_count)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (article_uid, option_index) DO UPDATE
		SET vote_count = poll_counts.vote_count + 1,
		    last_updated_at = NOW()
	`
	if _, err := q.ExecContext(ctx, query, articleUID, optionIndex, optionText); err != nil {
		return fmt.Errorf("failed to increment option count: %w", err)
	}
	return nil
}

func fetchCounts(ctx context.Context, q querier, articleUID string) ([]domain.VoteCount, error) {
	query := `
		SELECT article_uid, option_index, option_text, vote_count, last_updated_at
		FROM poll_counts
		WHERE article_uid = $1
		ORDER BY option_index
	`
	rows, err := q.QueryContext(ctx, query, articleUID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch counts: %w", err)
	}
	defer rows.Close()

	var counts []domain.VoteCount
	for rows.Next() {
		var c domain.VoteCount
		if err := rows.Scan(&c.ArticleUID, &c.OptionIndex, &c.OptionText, &c.VoteCount, &c.LastUpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating counts: %w", err)
	}
	return counts, nil
}
