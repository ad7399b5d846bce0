package models

// User represents a marketplace account; owners carry their listings inline
// in the backend's user payload.
type User struct {
	ID       string    `json:"id" db:"id"`
	Username string    `json:"username" db:"username"`
	Email    string    `json:"email" db:"email"`
	Role     string    `json:"role,omitempty" db:"role"`
	Listings []Listing `json:"listings,omitempty"`
}
