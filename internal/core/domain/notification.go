package domain

import (
	"time"

	"github.com/google/uuid"
)

// Notification is one per-recipient row produced by the follower fan-out.
type Notification struct {
	ID          uuid.UUID  `json:"id"`
	RecipientID uuid.UUID  `json:"recipient_id"`
	ActorID     uuid.UUID  `json:"actor_id"`
	TargetKind  TargetKind `json:"target_kind"`
	TargetID    string     `json:"target_id"`
	Message     string     `json:"message"`
	IsRead      bool       `json:"is_read"`
	CreatedAt   time.Time  `json:"created_at"`
}
