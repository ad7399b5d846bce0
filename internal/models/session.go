package models

import "time"

// Session groups a user's interactions about one listing for conversational
// continuity. The key is deterministic over (user, listing); the entry only
// records when the pair was first and last seen.
type Session struct {
	Key          string    `json:"key" db:"key"`
	UserID       string    `json:"userId" db:"user_id"`
	ListingID    string    `json:"listingId" db:"listing_id"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	LastActivity time.Time `json:"lastActivity" db:"last_activity"`
}

// Touch updates the last activity timestamp.
func (s *Session) Touch() {
	s.LastActivity = time.Now().UTC()
}
