package domain

import (
	"time"

	"github.com/google/uuid"
)

// TargetKind is the closed set of engagement relations a reader can hold
// with a target. Follows carry their own kind per target family so that
// follower counts stay per-kind.
type TargetKind string

const (
	KindLike           TargetKind = "like"
	KindSave           TargetKind = "save"
	KindFollowAuthor   TargetKind = "follow-author"
	KindFollowCategory TargetKind = "follow-category"
)

func ParseTargetKind(s string) (TargetKind, error) {
	switch TargetKind(s) {
	case KindLike, KindSave, KindFollowAuthor, KindFollowCategory:
		return TargetKind(s), nil
	}
	return "", ErrInvalidTargetKind
}

// PresenceRecord encodes a boolean relationship by its mere existence:
// at most one record per (user, kind, target) at any time.
type PresenceRecord struct {
	UserID     uuid.UUID  `json:"user_id"`
	TargetKind TargetKind `json:"target_kind"`
	TargetID   string     `json:"target_id"`
	CreatedAt  time.Time  `json:"created_at"`
}
