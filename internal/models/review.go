package models

import "time"

// Review represents a guest review left for a listing.
type Review struct {
	ID         string    `json:"id" db:"id"`
	BookingID  string    `json:"bookingId" db:"booking_id"`
	ReviewerID string    `json:"reviewerId" db:"reviewer_id"`
	Rating     int       `json:"rating" db:"rating"`
	Comment    string    `json:"comment" db:"comment"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	Flagged    bool      `json:"flagged" db:"flagged"`
}
