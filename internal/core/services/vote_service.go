package services

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/newsline/engage/internal/core/domain"
	"github.com/newsline/engage/internal/core/ports"
)

type voteService struct {
	pollRepo ports.PollRepository
	voteRepo ports.VoteRepository
}

func NewVoteService(pollRepo ports.PollRepository, voteRepo ports.VoteRepository) ports.VoteService {
	return &voteService{
		pollRepo: pollRepo,
		voteRepo: voteRepo,
	}
}

// CastVote handles the NoVote -> Voted transition. A repeat cast for the
// option the user already holds is a no-op; a cast for a different option
// is rejected, switching requires the explicit change operation.
func (s *voteService) CastVote(ctx context.Context, userID uuid.UUID, in ports.CastVoteInput) (*domain.PollResults, error) {
	if userID == uuid.Nil {
		return nil, domain.ErrUnauthenticated
	}
	if in.OptionIndex < 0 {
		return nil, domain.ErrInvalidOption
	}

	poll := &domain.Poll{
		ArticleUID: in.ArticleUID,
		Question:   in.Question,
		Locale:     in.Locale,
	}
	if err := s.pollRepo.EnsurePoll(ctx, poll); err != nil {
		return nil, err
	}

	existing, err := s.voteRepo.GetUserVote(ctx, userID, in.ArticleUID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.OptionIndex == in.OptionIndex {
			return s.Results(ctx, in.ArticleUID)
		}
		return nil, domain.ErrAlreadyVoted
	}

	vote := &domain.Vote{
		UserID:      userID,
		ArticleUID:  in.ArticleUID,
		OptionIndex: in.OptionIndex,
		OptionText:  in.OptionText,
		CreatedAt:   time.Now(),
	}
	counts, err := s.voteRepo.CastVote(ctx, vote)
	if err != nil {
		return nil, err
	}

	return buildResults(in.ArticleUID, counts), nil
}

// ChangeVote handles Voted(old) -> Voted(new): the ledger update and the
// decrement/increment pair run in one store transaction, so the projection
// total is conserved even under failure.
func (s *voteService) ChangeVote(ctx context.Context, userID uuid.UUID, in ports.ChangeVoteInput) (*domain.PollResults, error) {
	if userID == uuid.Nil {
		return nil, domain.ErrUnauthenticated
	}
	if in.OptionIndex < 0 {
		return nil, domain.ErrInvalidOption
	}

	existing, err := s.voteRepo.GetUserVote(ctx, userID, in.ArticleUID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, domain.ErrVoteNotFound
	}
	if existing.OptionIndex == in.OptionIndex {
		return s.Results(ctx, in.ArticleUID)
	}

	vote := &domain.Vote{
		UserID:      userID,
		ArticleUID:  in.ArticleUID,
		OptionIndex: in.OptionIndex,
		OptionText:  in.OptionText,
	}
	counts, err := s.voteRepo.ChangeVote(ctx, vote)
	if err != nil {
		return nil, err
	}

	return buildResults(in.ArticleUID, counts), nil
}

func (s *voteService) Results(ctx context.Context, articleUID string) (*domain.PollResults, error) {
	poll, err := s.pollRepo.GetPoll(ctx, articleUID)
	if err != nil {
		return nil, err
	}
	if poll == nil {
		return nil, domain.ErrPollNotFound
	}

	counts, err := s.voteRepo.GetCounts(ctx, articleUID)
	if err != nil {
		return nil, err
	}

	return buildResults(articleUID, counts), nil
}

// ResultsBatch fans the single-poll read out over every requested article.
// Unknown polls are skipped rather than failing the whole page.
func (s *voteService) ResultsBatch(ctx context.Context, userID *uuid.UUID, articleUIDs []string) (*ports.BatchResults, error) {
	batch := &ports.BatchResults{
		Results: make(map[string]*domain.PollResults),
	}
	if userID != nil {
		batch.UserVotes = make(map[string]*domain.Vote)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		errChan = make(chan error, len(articleUIDs))
	)

	for _, uid := range articleUIDs {
		wg.Add(1)
		go func(articleUID string) {
			defer wg.Done()

			results, err := s.Results(ctx, articleUID)
			if err != nil {
				if !errors.Is(err, domain.ErrPollNotFound) {
					errChan <- err
				}
				return
			}

			var vote *domain.Vote
			if userID != nil {
				vote, err = s.voteRepo.GetUserVote(ctx, *userID, articleUID)
				if err != nil {
					errChan <- err
					return
				}
			}

			mu.Lock()
			batch.Results[articleUID] = results
			if userID != nil && vote != nil {
				batch.UserVotes[articleUID] = vote
			}
			mu.Unlock()
		}(uid)
	}

	wg.Wait()
	close(errChan)

	for err := range errChan {
		if err != nil {
			return nil, err
		}
	}

	return batch, nil
}

func (s *voteService) UserVote(ctx context.Context, userID uuid.UUID, articleUID string) (*domain.Vote, error) {
	if userID == uuid.Nil {
		return nil, domain.ErrUnauthenticated
	}
	vote, err := s.voteRepo.GetUserVote(ctx, userID, articleUID)
	if err != nil {
		return nil, err
	}
	if vote == nil {
		return nil, domain.ErrVoteNotFound
	}
	return vote, nil
}

func buildResults(articleUID string, counts []domain.VoteCount) *domain.PollResults {
	results := &domain.PollResults{
		ArticleUID: articleUID,
		Options:    make([]domain.OptionResult, 0, len(counts)),
	}

	for _, c := range counts {
		results.TotalVotes += c.VoteCount
	}

	for _, c := range counts {
		percentage := 0
		if results.TotalVotes > 0 {
			percentage = int(math.Round(float64(c.VoteCount) / float64(results.TotalVotes) * 100))
		}
		results.Options = append(results.Options, domain.OptionResult{
			OptionIndex: c.OptionIndex,
			OptionText:  c.OptionText,
			VoteCount:   c.VoteCount,
			Percentage:  percentage,
		})
	}

	return results
}
