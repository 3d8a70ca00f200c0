package model

import "time"

type CommunityPost struct {
	ID          int64     `json:"id"`
	AuthorID    int64     `json:"author_id"`
	AuthorName  string    `json:"author_name,omitempty"`
	CountryCode string    `json:"country_code"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Status      string    `json:"status"`
	Likes       int       `json:"likes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Moderation states for community posts.
const (
	PostPending  = "pending"
	PostApproved = "approved"
	PostRejected = "rejected"
)

func ValidPostStatus(s string) bool {
	switch s {
	case PostPending, PostApproved, PostRejected:
		return true
	}
	return false
}
