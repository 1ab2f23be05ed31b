package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/newsline/engage/internal/core/domain"
)

type PollRepository interface {
	// EnsurePoll registers the poll row on first contact; a repeat call for
	// the same article is a no-op.
	EnsurePoll(ctx context.Context, poll *domain.Poll) error
	GetPoll(ctx context.Context, articleUID string) (*domain.Poll, error)
}

// VoteRepository owns the ledger and the count projection together. Cast and
// Change run the ledger write and the projection increments in a single
// transaction so the projection sum can never drift from the ledger under
// partial failure.
type VoteRepository interface {
	CastVote(ctx context.Context, vote *domain.Vote) ([]domain.VoteCount, error)
	ChangeVote(ctx context.Context, vote *domain.Vote) ([]domain.VoteCount, error)
	GetUserVote(ctx context.Context, userID uuid.UUID, articleUID string) (*domain.Vote, error)
	GetCounts(ctx context.Context, articleUID string) ([]domain.VoteCount, error)
	RebuildCounts(ctx context.Context, articleUID string) error
	ListPollUIDs(ctx context.Context) ([]string, error)
}

type CastVoteInput struct {
	ArticleUID  string
	OptionIndex int
	OptionText  string
	Question    string
	Locale      string
}

type ChangeVoteInput struct {
	ArticleUID  string
	OptionIndex int
	OptionText  string
}

type VoteService interface {
	CastVote(ctx context.Context, userID uuid.UUID, in CastVoteInput) (*domain.PollResults, error)
	ChangeVote(ctx context.Context, userID uuid.UUID, in ChangeVoteInput) (*domain.PollResults, error)
	Results(ctx context.Context, articleUID string) (*domain.PollResults, error)
	ResultsBatch(ctx context.Context, userID *uuid.UUID, articleUIDs []string) (*BatchResults, error)
	UserVote(ctx context.Context, userID uuid.UUID, articleUID string) (*domain.Vote, error)
}

// ReconcileService rebuilds the count projection from the ledger, the
// recovery path for a projection suspected to have drifted.
type ReconcileService interface {
	RebuildAllCounts(ctx context.Context) error
}

type BatchResults struct {
	Results   map[string]*domain.PollResults `json:"poll_results"`
	UserVotes map[string]*domain.Vote        `json:"user_votes,omitempty"`
}
