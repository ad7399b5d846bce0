package models

import "time"

// Booking statuses as the marketplace backend reports them.
const (
	BookingStatusConfirmed = "CONFIRMED"
	BookingStatusCompleted = "COMPLETED"
	BookingStatusCancelled = "CANCELLED"
)

// Booking represents one rental period for a listing.
type Booking struct {
	ID         string    `json:"id" db:"id"`
	ListingID  string    `json:"listingId" db:"listing_id"`
	RenterID   string    `json:"renterId" db:"renter_id"`
	StartDate  time.Time `json:"startDate" db:"start_date"`
	EndDate    time.Time `json:"endDate" db:"end_date"`
	TotalPrice float64   `json:"totalPrice" db:"total_price"`
	Status     string    `json:"status" db:"status"`
}

// Days returns the booking duration in whole days, never negative.
func (b *Booking) Days() int {
	days := int(b.EndDate.Sub(b.StartDate).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// Revenue returns the booking's price when it counts toward revenue
// (confirmed or completed), zero otherwise.
func (b *Booking) Revenue() float64 {
	if b.Status == BookingStatusConfirmed || b.Status == BookingStatusCompleted {
		return b.TotalPrice
	}
	return 0
}
