package domain

import "errors"

var (
	ErrUnauthenticated   = errors.New("authentication required")
	ErrPollNotFound      = errors.New("poll not found")
	ErrVoteNotFound      = errors.New("no existing vote found")
	ErrAlreadyVoted      = errors.New("user has already voted")
	ErrInvalidOption     = errors.New("invalid option for this poll")
	ErrInvalidTargetKind = errors.New("invalid target kind")
	ErrPartialUpdate     = errors.New("vote update did not complete")
	ErrInternal          = errors.New("internal server error")
)
