package domain

import (
	"time"

	"github.com/google/uuid"
)

// Poll is a single-question vote attached to one article. The option schema
// lives with the article in the CMS; the row here is bootstrapped on first
// cast so results and votes have something to hang off.
type Poll struct {
	ArticleUID string    `json:"article_uid"`
	Question   string    `json:"question,omitempty"`
	Locale     string    `json:"locale,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Vote is the ledger entry: one user's current choice in one poll.
// Changing a vote mutates the entry in place, it never creates a second one.
type Vote struct {
	UserID      uuid.UUID `json:"user_id"`
	ArticleUID  string    `json:"article_uid"`
	OptionIndex int       `json:"option_index"`
	OptionText  string    `json:"option_text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// VoteCount is one projection row per (poll, option). Rows are created
// lazily when an option first receives a vote and are never deleted.
type VoteCount struct {
	ArticleUID    string    `json:"article_uid"`
	OptionIndex   int       `json:"option_index"`
	OptionText    string    `json:"option_text"`
	VoteCount     int64     `json:"vote_count"`
	LastUpdatedAt time.Time `json:"last_updated_at"`
}

type OptionResult struct {
	OptionIndex int    `json:"option_index"`
	OptionText  string `json:"option_text"`
	VoteCount   int64  `json:"vote_count"`
	Percentage  int    `json:"percentage"`
}

type PollResults struct {
	ArticleUID string         `json:"article_uid"`
	Options    []OptionResult `json:"options"`
	TotalVotes int64          `json:"total_votes"`
}
