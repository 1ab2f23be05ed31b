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

type EngagementHandler struct {
	service ports.EngagementService
}

func NewEngagementHandler(service ports.EngagementService) *EngagementHandler {
	return &EngagementHandler{
		service: service,
	}
}

type toggleRequest struct {
	TargetID string `json:"target_id"`
}

// Toggle godoc
// @Summary      Toggles an engagement relation on or off
// @Description  First call creates the like/save/follow, second call removes it. Returns the resulting state.
// @Tags         engagement
// @Accept       json
// @Success      200
// @Failure      401
// @Router       /engagement/{kind} [post]
func (h *EngagementHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	kind, err := domain.ParseTargetKind(chi.URLParam(r, "kind"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TargetID == "" {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	userID, ok := r.Context().Value(UserIDKey).(uuid.UUID)
	if !ok {
		http.Error(w, "Unauthorized: missing user context", http.StatusUnauthorized)
		return
	}

	active, err := h.service.Toggle(r.Context(), userID, kind, req.TargetID)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{stateKey(kind): active})
}

func (h *EngagementHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	kind, err := domain.ParseTargetKind(chi.URLParam(r, "kind"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	targetID := r.URL.Query().Get("target_id")
	if targetID == "" {
		http.Error(w, "missing target_id", http.StatusBadRequest)
		return
	}

	userID, ok := r.Context().Value(UserIDKey).(uuid.UUID)
	if !ok {
		http.Error(w, "Unauthorized: missing user context", http.StatusUnauthorized)
		return
	}

	if err := h.service.Deactivate(r.Context(), userID, kind, targetID); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{stateKey(kind): false})
}

func (h *EngagementHandler) Count(w http.ResponseWriter, r *http.Request) {
	kind, err := domain.ParseTargetKind(chi.URLParam(r, "kind"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	targetID := r.URL.Query().Get("target_id")
	if targetID == "" {
		http.Error(w, "missing target_id", http.StatusBadRequest)
		return
	}

	count := h.service.Count(r.Context(), kind, targetID)
	writeJSON(w, http.StatusOK, map[string]int64{"count": count})
}

func (h *EngagementHandler) State(w http.ResponseWriter, r *http.Request) {
	kind, err := domain.ParseTargetKind(chi.URLParam(r, "kind"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	targetID := r.URL.Query().Get("target_id")
	if targetID == "" {
		http.Error(w, "missing target_id", http.StatusBadRequest)
		return
	}

	userID, ok := r.Context().Value(UserIDKey).(uuid.UUID)
	if !ok {
		http.Error(w, "Unauthorized: missing user context", http.StatusUnauthorized)
		return
	}

	active, err := h.service.IsActive(r.Context(), userID, kind, targetID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{stateKey(kind): active})
}

func stateKey(kind domain.TargetKind) string {
	switch kind {
	case domain.KindLike:
		return "liked"
	case domain.KindSave:
		return "saved"
	default:
		return "followed"
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
