package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/newsline/engage/internal/core/domain"
)

// PresenceRepository is the durable record of (user, target) pairs.
// Insert must be insert-or-noop: the store enforces uniqueness on the
// (user, kind, target) triple and reports whether a row was actually
// created, so a racing duplicate insert never produces two records.
type PresenceRepository interface {
	Insert(ctx context.Context, rec *domain.PresenceRecord) (inserted bool, err error)
	Delete(ctx context.Context, userID uuid.UUID, kind domain.TargetKind, targetID string) (deleted bool, err error)
	Exists(ctx context.Context, userID uuid.UUID, kind domain.TargetKind, targetID string) (bool, error)
	Count(ctx context.Context, kind domain.TargetKind, targetID string) (int64, error)
	Followers(ctx context.Context, kind domain.TargetKind, targetID string) ([]uuid.UUID, error)
}

type EngagementService interface {
	Toggle(ctx context.Context, userID uuid.UUID, kind domain.TargetKind, targetID string) (active bool, err error)
	Deactivate(ctx context.Context, userID uuid.UUID, kind domain.TargetKind, targetID string) error
	Count(ctx context.Context, kind domain.TargetKind, targetID string) int64
	IsActive(ctx context.Context, userID uuid.UUID, kind domain.TargetKind, targetID string) (bool, error)
}
