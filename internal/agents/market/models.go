// internal/agents/market/models.go
package market

// Recommendation statuses.
const (
	StatusOnTrack          = "on_track"
	StatusNeedsImprovement = "needs_improvement"
	StatusLowDemand        = "low_demand"
	StatusOpportunity      = "opportunity"
)

// TrendingType aggregates market activity for one listing type.
type TrendingType struct {
	Type          string  `json:"type"`
	ListingCount  int     `json:"listing_count"`
	TotalBookings int     `json:"total_bookings"`
	TotalRevenue  float64 `json:"total_revenue"`
	TrendScore    float64 `json:"trend_score"`
}

// Portfolio summarizes the owner's own listings against the market.
type Portfolio struct {
	TotalListings int      `json:"total_listings"`
	Types         []string `json:"types"`
	TotalBookings int      `json:"total_bookings"`
	TotalRevenue  float64  `json:"total_revenue"`
}

// Recommendation is one prioritized piece of advice for the owner.
type Recommendation struct {
	Type    string `json:"type"`
	Status  string `json:"status"`
	Message string `json:"message"`
	Advice  string `json:"advice"`
}

// Analysis is the market trend report for one owner. It is advisory only;
// nothing in it triggers a write.
type Analysis struct {
	Title           string           `json:"title"`
	Portfolio       Portfolio        `json:"portfolio"`
	TrendingTypes   []TrendingType   `json:"trending_types"`
	Recommendations []Recommendation `json:"recommendations"`
	Message         string           `json:"message"`
}
