// internal/agents/pricing/models.go
package pricing

// Demand levels derived from occupancy and booking velocity.
const (
	DemandHigh    = "High"
	DemandMedium  = "Medium"
	DemandLow     = "Low"
	DemandVeryLow = "Very Low"
)

// Adjustment directions.
const (
	DirectionIncrease = "increase"
	DirectionDecrease = "decrease"
	DirectionNone     = "none"
)

// Analysis is the pricing recommendation for one listing.
type Analysis struct {
	ListingID           string   `json:"listing_id"`
	Title               string   `json:"title"`
	CurrentPrice        float64  `json:"current_price"`
	SuggestedPrice      float64  `json:"suggested_price"`
	PriceDifference     float64  `json:"price_difference"`
	AdjustmentPercent   float64  `json:"adjustment_percent"`
	AdjustmentDirection string   `json:"adjustment_direction"`
	DemandLevel         string   `json:"demand_level"`
	OccupancyRate       float64  `json:"occupancy_rate"`
	TotalBookings       int      `json:"total_bookings"`
	WeekendBookings     int      `json:"weekend_bookings"`
	HolidayBookings     int      `json:"holiday_bookings"`
	RecentBookings      int      `json:"recent_bookings"`
	Reasons             []string `json:"reasons"`
	Notes               []string `json:"notes"`
	CanTakeAction       bool     `json:"can_take_action"`
	Message             string   `json:"message"`
}

// ApplyResult reports the outcome of a price write.
type ApplyResult struct {
	Success      bool    `json:"success"`
	ListingID    string  `json:"listing_id"`
	ListingTitle string  `json:"listing_title"`
	OldPrice     float64 `json:"old_price"`
	NewPrice     float64 `json:"new_price"`
	Message      string  `json:"message"`
}
