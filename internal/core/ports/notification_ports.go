package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/newsline/engage/internal/core/domain"
)

type NotificationRepository interface {
	InsertBatch(ctx context.Context, notifications []domain.Notification) error
	ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
}

type NotifyFollowersInput struct {
	ActorID    uuid.UUID
	TargetKind domain.TargetKind
	TargetID   string
	Message    string
}

type NotificationService interface {
	NotifyFollowers(ctx context.Context, in NotifyFollowersInput) (int, error)
	List(ctx context.Context, userID uuid.UUID) ([]domain.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
}
