package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/newsline/engage/internal/core/domain"
	"github.com/newsline/engage/internal/core/ports"
)

type PollHandler struct {
	service ports.VoteService
}

func NewPollHandler(service ports.VoteService) *PollHandler {
	return &PollHandler{
		service: service,
	}
}

type castVoteRequest struct {
	OptionIndex  int    `json:"option_index"`
	OptionText   string `json:"option_text"`
	PollQuestion string `json:"poll_question"`
	Locale       string `json:"locale"`
}

type changeVoteRequest struct {
	OptionIndex int    `json:"option_index"`
	OptionText  string `json:"option_text"`
}

type voteResponse struct {
	Success     bool                `json:"success"`
	VotedOption *int                `json:"voted_option,omitempty"`
	PollResults *domain.PollResults `json:"poll_results"`
}

func (h *PollHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	articleUID := chi.URLParam(r, "articleUID")

	var req castVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	userID, ok := r.Context().Value(UserIDKey).(uuid.UUID)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	input := ports.CastVoteInput{
		ArticleUID:  articleUID,
		OptionIndex: req.OptionIndex,
		OptionText:  req.OptionText,
		Question:    req.PollQuestion,
		Locale:      req.Locale,
	}

	results, err := h.service.CastVote(r.Context(), userID, input)
	if err != nil {
		writeVoteError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, voteResponse{
		Success:     true,
		VotedOption: &req.OptionIndex,
		PollResults: results,
	})
}

func (h *PollHandler) ChangeVote(w http.ResponseWriter, r *http.Request) {
	articleUID := chi.URLParam(r, "articleUID")

	var req changeVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	userID, ok := r.Context().Value(UserIDKey).(uuid.UUID)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	input := ports.ChangeVoteInput{
		ArticleUID:  articleUID,
		OptionIndex: req.OptionIndex,
		OptionText:  req.OptionText,
	}

	results, err := h.service.ChangeVote(r.Context(), userID, input)
	if err != nil {
		writeVoteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, voteResponse{
		Success:     true,
		VotedOption: &req.OptionIndex,
		PollResults: results,
	})
}

type resultsResponse struct {
	PollResults     *domain.PollResults `json:"poll_results"`
	UserVote        *domain.Vote        `json:"user_vote,omitempty"`
	IsAuthenticated bool                `json:"is_authenticated"`
}

func (h *PollHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	articleUID := chi.URLParam(r, "articleUID")

	results, err := h.service.Results(r.Context(), articleUID)
	if err != nil {
		writeVoteError(w, err)
		return
	}

	resp := resultsResponse{PollResults: results}
	if userID, ok := r.Context().Value(UserIDKey).(uuid.UUID); ok {
		resp.IsAuthenticated = true
		vote, err := h.service.UserVote(r.Context(), userID, articleUID)
		if err == nil {
			resp.UserVote = vote
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

type batchRequest struct {
	ArticleUIDs []string `json:"article_uids"`
}

type batchResponse struct {
	PollResults     map[string]*domain.PollResults `json:"poll_results"`
	UserVotes       map[string]*domain.Vote        `json:"user_votes,omitempty"`
	IsAuthenticated bool                           `json:"is_authenticated"`
}

func (h *PollHandler) GetResultsBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	var callerID *uuid.UUID
	if userID, ok := r.Context().Value(UserIDKey).(uuid.UUID); ok {
		callerID = &userID
	}

	batch, err := h.service.ResultsBatch(r.Context(), callerID, req.ArticleUIDs)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, batchResponse{
		PollResults:     batch.Results,
		UserVotes:       batch.UserVotes,
		IsAuthenticated: callerID != nil,
	})
}

func writeVoteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, domain.ErrInvalidOption):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrAlreadyVoted):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrPollNotFound), errors.Is(err, domain.ErrVoteNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
