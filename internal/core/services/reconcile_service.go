package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/newsline/engage/internal/core/ports"
)

type reconcileService struct {
	voteRepo ports.VoteRepository
}

func NewReconcileService(voteRepo ports.VoteRepository) ports.ReconcileService {
	return &reconcileService{
		voteRepo: voteRepo,
	}
}

func (s *reconcileService) RebuildAllCounts(ctx context.Context) error {
	uids, err := s.voteRepo.ListPollUIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list polls: %w", err)
	}

	var wg sync.WaitGroup
	errChan := make(chan error, len(uids))

	for _, uid := range uids {
		wg.Add(1)
		go func(articleUID string) {
			defer wg.Done()
			if err := s.voteRepo.RebuildCounts(ctx, articleUID); err != nil {
				errChan <- fmt.Errorf("failed to rebuild poll %s: %w", articleUID, err)
			}
		}(uid)
	}

	wg.Wait()
	close(errChan)

	for err := range errChan {
		if err != nil {
			return err
		}
	}

	return nil
}
