package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/newsline/engage/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePresenceRepo struct {
	records map[string]domain.PresenceRecord

	insertConflict bool
	countErr       error
}

func newFakePresenceRepo() *fakePresenceRepo {
	return &fakePresenceRepo{records: make(map[string]domain.PresenceRecord)}
}

func presenceKey(userID uuid.UUID, kind domain.TargetKind, targetID string) string {
	return fmt.Sprintf("%s|%s|%s", userID, kind, targetID)
}

func (f *fakePresenceRepo) Insert(ctx context.Context, rec *domain.PresenceRecord) (bool, error) {
	key := presenceKey(rec.UserID, rec.TargetKind, rec.TargetID)
	if f.insertConflict {
		return false, nil
	}
	if _, ok := f.records[key]; ok {
		return false, nil
	}
	f.records[key] = *rec
	return true, nil
}

func (f *fakePresenceRepo) Delete(ctx context.Context, userID uuid.UUID, kind domain.TargetKind, targetID string) (bool, error) {
	key := presenceKey(userID, kind, targetID)
	if _, ok := f.records[key]; !ok {
		return false, nil
	}
	delete(f.records, key)
	return true, nil
}

func (f *fakePresenceRepo) Exists(ctx context.Context, userID uuid.UUID, kind domain.TargetKind, targetID string) (bool, error) {
	_, ok := f.records[presenceKey(userID, kind, targetID)]
	return ok, nil
}

func (f *fakePresenceRepo) Count(ctx context.Context, kind domain.TargetKind, targetID string) (int64, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	var count int64
	for _, rec := range f.records {
		if rec.TargetKind == kind && rec.TargetID == targetID {
			count++
		}
	}
	return count, nil
}

func (f *fakePresenceRepo) Followers(ctx context.Context, kind domain.TargetKind, targetID string) ([]uuid.UUID, error) {
	var followers []uuid.UUID
	for _, rec := range f.records {
		if rec.TargetKind == kind && rec.TargetID == targetID {
			followers = append(followers, rec.UserID)
		}
	}
	return followers, nil
}

func TestToggle_DoubleToggleRoundTrip(t *testing.T) {
	repo := newFakePresenceRepo()
	svc := NewEngagementService(repo)
	ctx := context.Background()
	userID := uuid.New()

	active, err := svc.Toggle(ctx, userID, domain.KindLike, "article-1")
	require.NoError(t, err)
	assert.True(t, active)

	active, err = svc.Toggle(ctx, userID, domain.KindLike, "article-1")
	require.NoError(t, err)
	assert.False(t, active)

	assert.Empty(t, repo.records, "double toggle should leave zero records")
}

func TestToggle_Unauthenticated(t *testing.T) {
	repo := newFakePresenceRepo()
	svc := NewEngagementService(repo)

	_, err := svc.Toggle(context.Background(), uuid.Nil, domain.KindSave, "article-1")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.Empty(t, repo.records)
}

func TestToggle_DuplicateInsertRaceResolvesActive(t *testing.T) {
	repo := newFakePresenceRepo()
	repo.insertConflict = true
	svc := NewEngagementService(repo)

	// Existence check misses, insert loses the race against a concurrent
	// toggle. Must resolve as active rather than erroring.
	active, err := svc.Toggle(context.Background(), uuid.New(), domain.KindLike, "article-1")
	require.NoError(t, err)
	assert.True(t, active)
}

func TestToggle_KindsAreIndependent(t *testing.T) {
	repo := newFakePresenceRepo()
	svc := NewEngagementService(repo)
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.Toggle(ctx, userID, domain.KindLike, "article-1")
	require.NoError(t, err)
	_, err = svc.Toggle(ctx, userID, domain.KindSave, "article-1")
	require.NoError(t, err)

	assert.Equal(t, int64(1), svc.Count(ctx, domain.KindLike, "article-1"))
	assert.Equal(t, int64(1), svc.Count(ctx, domain.KindSave, "article-1"))
	assert.Equal(t, int64(0), svc.Count(ctx, domain.KindFollowAuthor, "article-1"))
}

func TestDeactivate_AbsentRecordIsNoop(t *testing.T) {
	repo := newFakePresenceRepo()
	svc := NewEngagementService(repo)

	err := svc.Deactivate(context.Background(), uuid.New(), domain.KindFollowAuthor, "author-1")
	assert.NoError(t, err)
}

func TestCount_StoreFailureDefaultsToZero(t *testing.T) {
	repo := newFakePresenceRepo()
	repo.countErr = errors.New("connection refused")
	svc := NewEngagementService(repo)

	assert.Equal(t, int64(0), svc.Count(context.Background(), domain.KindLike, "article-1"))
}

func TestIsActive(t *testing.T) {
	repo := newFakePresenceRepo()
	svc := NewEngagementService(repo)
	ctx := context.Background()
	userID := uuid.New()

	saved, err := svc.IsActive(ctx, userID, domain.KindSave, "article-1")
	require.NoError(t, err)
	assert.False(t, saved)

	_, err = svc.Toggle(ctx, userID, domain.KindSave, "article-1")
	require.NoError(t, err)

	saved, err = svc.IsActive(ctx, userID, domain.KindSave, "article-1")
	require.NoError(t, err)
	assert.True(t, saved)
}
