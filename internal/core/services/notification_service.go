package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/newsline/engage/internal/core/domain"
	"github.com/newsline/engage/internal/core/ports"
)

type notificationService struct {
	presenceRepo     ports.PresenceRepository
	notificationRepo ports.NotificationRepository
}

func NewNotificationService(presenceRepo ports.PresenceRepository, notificationRepo ports.NotificationRepository) ports.NotificationService {
	return &notificationService{
		presenceRepo:     presenceRepo,
		notificationRepo: notificationRepo,
	}
}

// NotifyFollowers inserts one notification row per follower of the target,
// skipping the actor. The batch insert is a single statement so either
// every follower gets a row or none does.
func (s *notificationService) NotifyFollowers(ctx context.Context, in ports.NotifyFollowersInput) (int, error) {
	followers, err := s.presenceRepo.Followers(ctx, in.TargetKind, in.TargetID)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch followers: %w", err)
	}

	now := time.Now()
	notifications := make([]domain.Notification, 0, len(followers))
	for _, recipientID := range followers {
		if recipientID == in.ActorID {
			continue
		}
		notifications = append(notifications, domain.Notification{
			ID:          uuid.New(),
			RecipientID: recipientID,
			ActorID:     in.ActorID,
			TargetKind:  in.TargetKind,
			TargetID:    in.TargetID,
			Message:     in.Message,
			CreatedAt:   now,
		})
	}

	if len(notifications) == 0 {
		return 0, nil
	}

	if err := s.notificationRepo.InsertBatch(ctx, notifications); err != nil {
		return 0, fmt.Errorf("failed to insert notifications: %w", err)
	}

	return len(notifications), nil
}

func (s *notificationService) List(ctx context.Context, userID uuid.UUID) ([]domain.Notification, error) {
	if userID == uuid.Nil {
		return nil, domain.ErrUnauthenticated
	}
	return s.notificationRepo.ListForUser(ctx, userID, 50)
}

func (s *notificationService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	if userID == uuid.Nil {
		return domain.ErrUnauthenticated
	}
	return s.notificationRepo.MarkRead(ctx, userID, notificationID)
}
