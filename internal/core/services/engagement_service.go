package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/newsline/engage/internal/core/domain"
	"github.com/newsline/engage/internal/core/ports"
)

type engagementService struct {
	presenceRepo ports.PresenceRepository
}

func NewEngagementService(presenceRepo ports.PresenceRepository) ports.EngagementService {
	return &engagementService{
		presenceRepo: presenceRepo,
	}
}

// Toggle flips the presence record for (user, kind, target) and returns the
// new state. Two concurrent toggles can both miss the existence check; the
// store's uniqueness constraint turns the losing insert into a no-op, which
// is resolved here as active=true so exactly one record remains.
func (s *engagementService) Toggle(ctx context.Context, userID uuid.UUID, kind domain.TargetKind, targetID string) (bool, error) {
	if userID == uuid.Nil {
		return false, domain.ErrUnauthenticated
	}

	exists, err := s.presenceRepo.Exists(ctx, userID, kind, targetID)
	if err != nil {
		return false, err
	}

	if exists {
		if _, err := s.presenceRepo.Delete(ctx, userID, kind, targetID); err != nil {
			return false, err
		}
		return false, nil
	}

	rec := &domain.PresenceRecord{
		UserID:     userID,
		TargetKind: kind,
		TargetID:   targetID,
		CreatedAt:  time.Now(),
	}
	inserted, err := s.presenceRepo.Insert(ctx, rec)
	if err != nil {
		return false, err
	}
	if !inserted {
		// Lost a race against a concurrent toggle; the record is there.
		return true, nil
	}
	return true, nil
}

// Deactivate is the explicit "unfollow" variant: removing an absent record
// is a no-op, not an error.
func (s *engagementService) Deactivate(ctx context.Context, userID uuid.UUID, kind domain.TargetKind, targetID string) error {
	if userID == uuid.Nil {
		return domain.ErrUnauthenticated
	}
	_, err := s.presenceRepo.Delete(ctx, userID, kind, targetID)
	return err
}

// Count is a presentation-only read: a store failure yields zero rather
// than a broken page.
func (s *engagementService) Count(ctx context.Context, kind domain.TargetKind, targetID string) int64 {
	count, err := s.presenceRepo.Count(ctx, kind, targetID)
	if err != nil {
		return 0
	}
	return count
}

func (s *engagementService) IsActive(ctx context.Context, userID uuid.UUID, kind domain.TargetKind, targetID string) (bool, error) {
	if userID == uuid.Nil {
		return false, domain.ErrUnauthenticated
	}
	return s.presenceRepo.Exists(ctx, userID, kind, targetID)
}
