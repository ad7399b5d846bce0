// internal/agents/booking/models.go
package booking

// Analysis reports booking utilisation for one listing and whether a
// longer-stay discount is worth offering.
type Analysis struct {
	ListingID        string   `json:"listing_id"`
	Title            string   `json:"title"`
	TotalBookings    int      `json:"total_bookings"`
	AvgDurationDays  float64  `json:"avg_duration_days"`
	OccupancyRate    float64  `json:"occupancy_rate"`
	NeedsDiscount    bool     `json:"needs_discount"`
	SuggestedPercent float64  `json:"suggested_discount_percent,omitempty"`
	Reasons          []string `json:"reasons"`
	CanTakeAction    bool     `json:"can_take_action"`
	Message          string   `json:"message"`
}

// DiscountResult reports a recorded discount.
type DiscountResult struct {
	Success         bool    `json:"success"`
	ListingID       string  `json:"listing_id"`
	ListingTitle    string  `json:"listing_title"`
	DiscountPercent float64 `json:"discount_percent"`
	Message         string  `json:"message"`
}
