package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/newsline/engage/internal/core/domain"
	"github.com/newsline/engage/internal/core/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotificationRepo struct {
	inserted []domain.Notification
	batches  int
}

func (f *fakeNotificationRepo) InsertBatch(ctx context.Context, notifications []domain.Notification) error {
	f.inserted = append(f.inserted, notifications...)
	f.batches++
	return nil
}

func (f *fakeNotificationRepo) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Notification, error) {
	var out []domain.Notification
	for _, n := range f.inserted {
		if n.RecipientID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	for i, n := range f.inserted {
		if n.ID == notificationID && n.RecipientID == userID {
			f.inserted[i].IsRead = true
		}
	}
	return nil
}

func TestNotifyFollowers_OneRowPerFollower(t *testing.T) {
	presenceRepo := newFakePresenceRepo()
	notificationRepo := &fakeNotificationRepo{}
	svc := NewNotificationService(presenceRepo, notificationRepo)
	ctx := context.Background()

	author := "author-1"
	follower1 := uuid.New()
	follower2 := uuid.New()
	for _, f := range []uuid.UUID{follower1, follower2} {
		_, err := presenceRepo.Insert(ctx, &domain.PresenceRecord{
			UserID: f, TargetKind: domain.KindFollowAuthor, TargetID: author,
		})
		require.NoError(t, err)
	}

	actor := uuid.New()
	notified, err := svc.NotifyFollowers(ctx, ports.NotifyFollowersInput{
		ActorID:    actor,
		TargetKind: domain.KindFollowAuthor,
		TargetID:   author,
		Message:    "New article published",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, notified)
	assert.Equal(t, 1, notificationRepo.batches, "fan-out must be one batch insert")
	require.Len(t, notificationRepo.inserted, 2)
	for _, n := range notificationRepo.inserted {
		assert.Equal(t, actor, n.ActorID)
		assert.Equal(t, "New article published", n.Message)
		assert.False(t, n.IsRead)
	}
}

func TestNotifyFollowers_SkipsActor(t *testing.T) {
	presenceRepo := newFakePresenceRepo()
	notificationRepo := &fakeNotificationRepo{}
	svc := NewNotificationService(presenceRepo, notificationRepo)
	ctx := context.Background()

	actor := uuid.New()
	other := uuid.New()
	for _, f := range []uuid.UUID{actor, other} {
		_, err := presenceRepo.Insert(ctx, &domain.PresenceRecord{
			UserID: f, TargetKind: domain.KindFollowCategory, TargetID: "world",
		})
		require.NoError(t, err)
	}

	notified, err := svc.NotifyFollowers(ctx, ports.NotifyFollowersInput{
		ActorID:    actor,
		TargetKind: domain.KindFollowCategory,
		TargetID:   "world",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, notified)
	require.Len(t, notificationRepo.inserted, 1)
	assert.Equal(t, other, notificationRepo.inserted[0].RecipientID)
}

func TestNotifyFollowers_NoFollowers(t *testing.T) {
	presenceRepo := newFakePresenceRepo()
	notificationRepo := &fakeNotificationRepo{}
	svc := NewNotificationService(presenceRepo, notificationRepo)

	notified, err := svc.NotifyFollowers(context.Background(), ports.NotifyFollowersInput{
		ActorID:    uuid.New(),
		TargetKind: domain.KindFollowAuthor,
		TargetID:   "nobody",
	})
	require.NoError(t, err)
	assert.Zero(t, notified)
	assert.Zero(t, notificationRepo.batches)
}

func TestNotificationList_Unauthenticated(t *testing.T) {
	svc := NewNotificationService(newFakePresenceRepo(), &fakeNotificationRepo{})

	_, err := svc.List(context.Background(), uuid.Nil)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}
