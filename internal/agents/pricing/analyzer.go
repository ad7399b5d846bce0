// internal/agents/pricing/analyzer.go
package pricing

import (
	"context"
	"fmt"
	"math"
	"time"

	"insight-service/internal/backend"
	"insight-service/internal/common/errors"
	"insight-service/internal/common/logger"
	"insight-service/internal/models"
)

// Analyzer scores booking demand for a listing and suggests a bounded price
// adjustment. Analyze is read-only; Apply performs the single price write.
type Analyzer struct {
	config  *Config
	backend backend.DataClient
	logger  logger.Logger
}

func NewAnalyzer(config *Config, client backend.DataClient, log logger.Logger) *Analyzer {
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.RecentWindow == 0 {
		config.RecentWindow = 30 * 24 * time.Hour
	}
	return &Analyzer{
		config:  config,
		backend: client,
		logger:  log.WithFields(map[string]interface{}{"agent": "PricingAgent"}),
	}
}

func (a *Analyzer) Analyze(ctx context.Context, listingID string) (*Analysis, error) {
	listing, err := a.backend.GetListing(ctx, listingID)
	if err != nil {
		return nil, err
	}

	bookings, err := a.backend.GetBookings(ctx, listingID)
	if err != nil {
		return nil, err
	}

	stats := a.collectStats(bookings)

	demandLevel, score, indicators := a.scoreDemand(stats)
	direction, percent := a.recommend(demandLevel)

	suggested := round2(listing.BasePrice * (1 + signedPercent(direction, percent)/100))

	analysis := &Analysis{
		ListingID:           listingID,
		Title:               listing.Title,
		CurrentPrice:        listing.BasePrice,
		SuggestedPrice:      suggested,
		PriceDifference:     round2(suggested - listing.BasePrice),
		AdjustmentPercent:   percent,
		AdjustmentDirection: direction,
		DemandLevel:         demandLevel,
		OccupancyRate:       round1(stats.occupancy * 100),
		TotalBookings:       stats.total,
		WeekendBookings:     stats.weekend,
		HolidayBookings:     stats.holiday,
		RecentBookings:      stats.recent,
		Reasons:             a.buildReasons(direction, demandLevel, stats, indicators),
		Notes:               a.buildNotes(stats),
		CanTakeAction:       direction != DirectionNone,
		Message:             fmt.Sprintf("Pricing analysis complete for '%s'.", listing.Title),
	}

	a.logger.Info("pricing analysis complete", map[string]interface{}{
		"listingId":   listingID,
		"demandLevel": demandLevel,
		"demandScore": score,
		"direction":   direction,
		"percent":     percent,
	})

	return analysis, nil
}

// Apply writes a new price for the listing. When expectedPrice is non-nil the
// write only proceeds if the live price still matches it; a mismatch means
// another caller changed the price since the analysis was shown.
func (a *Analyzer) Apply(ctx context.Context, listingID string, newPrice float64, expectedPrice *float64) (*ApplyResult, error) {
	listing, err := a.backend.GetListing(ctx, listingID)
	if err != nil {
		return nil, err
	}

	oldPrice := listing.BasePrice
	if expectedPrice != nil && math.Abs(oldPrice-*expectedPrice) >= 0.01 {
		return nil, errors.NewPriceConflictError(listingID, *expectedPrice, oldPrice)
	}

	if err := a.backend.UpdateListingPrice(ctx, listingID, newPrice); err != nil {
		if stdErr := errors.Normalize(err); stdErr.Code == errors.ErrCodeResourceNotFound {
			return nil, err
		}
		return nil, errors.NewPriceUpdateFailedError(listingID, err)
	}

	a.logger.Info("price change applied", map[string]interface{}{
		"listingId": listingID,
		"oldPrice":  oldPrice,
		"newPrice":  newPrice,
	})

	return &ApplyResult{
		Success:      true,
		ListingID:    listingID,
		ListingTitle: listing.Title,
		OldPrice:     oldPrice,
		NewPrice:     newPrice,
		Message:      fmt.Sprintf("Price updated successfully for '%s' from %.2f to %.2f.", listing.Title, oldPrice, newPrice),
	}, nil
}

type bookingStats struct {
	total        int
	weekend      int
	weekday      int
	holiday      int
	recent       int
	daysBooked   int
	totalRevenue float64
	occupancy    float64
}

func (a *Analyzer) collectStats(bookings []models.Booking) bookingStats {
	var stats bookingStats
	stats.total = len(bookings)

	recentCutoff := a.config.Now().Add(-a.config.RecentWindow)

	for i := range bookings {
		b := &bookings[i]
		stats.daysBooked += b.Days()
		stats.totalRevenue += b.Revenue()

		if wd := b.StartDate.Weekday(); wd == time.Saturday || wd == time.Sunday {
			stats.weekend++
		} else {
			stats.weekday++
		}

		for _, w := range a.config.HolidayWindows {
			if !b.StartDate.Before(w.Start) && !b.StartDate.After(w.End) {
				stats.holiday++
				break
			}
		}

		if !b.StartDate.Before(recentCutoff) {
			stats.recent++
		}
	}

	// Occupancy over a 30-day window, capped at 100%.
	if stats.total > 0 {
		stats.occupancy = math.Min(float64(stats.daysBooked)/30.0, 1.0)
	}

	return stats
}

func (a *Analyzer) scoreDemand(stats bookingStats) (level string, score int, indicators []string) {
	if stats.occupancy >= 0.7 {
		score += 3
		indicators = append(indicators, "High occupancy rate (>=70%)")
	} else if stats.occupancy >= 0.4 {
		score++
		indicators = append(indicators, "Moderate occupancy rate")
	}

	if stats.weekend > stats.weekday {
		score++
		indicators = append(indicators, "Strong weekend demand")
	}

	if stats.holiday > 0 {
		score += 2
		indicators = append(indicators, fmt.Sprintf("%d holiday period bookings", stats.holiday))
	}

	if stats.recent >= 3 {
		score += 2
		indicators = append(indicators, "Strong recent booking activity")
	} else if stats.recent >= 1 {
		score++
		indicators = append(indicators, "Some recent booking activity")
	}

	switch {
	case score >= 5:
		level = DemandHigh
	case score >= 3:
		level = DemandMedium
	case score >= 1:
		level = DemandLow
	default:
		level = DemandVeryLow
	}

	return level, score, indicators
}

func (a *Analyzer) recommend(demandLevel string) (direction string, percent float64) {
	switch demandLevel {
	case DemandHigh:
		return DirectionIncrease, a.clamp(a.config.StrongDemandPercent)
	case DemandMedium:
		return DirectionIncrease, a.clamp(a.config.MildDemandPercent)
	case DemandLow:
		return DirectionNone, 0
	default:
		return DirectionDecrease, a.clamp(a.config.DecreasePercent)
	}
}

// clamp bounds a non-zero adjustment magnitude to the configured range.
func (a *Analyzer) clamp(percent float64) float64 {
	if percent < a.config.MinAdjustPercent {
		return a.config.MinAdjustPercent
	}
	if percent > a.config.MaxAdjustPercent {
		return a.config.MaxAdjustPercent
	}
	return percent
}

func signedPercent(direction string, percent float64) float64 {
	switch direction {
	case DirectionIncrease:
		return percent
	case DirectionDecrease:
		return -percent
	default:
		return 0
	}
}

func (a *Analyzer) buildReasons(direction, demandLevel string, stats bookingStats, indicators []string) []string {
	var reasons []string
	switch direction {
	case DirectionIncrease:
		reasons = append(reasons, fmt.Sprintf("Demand level is %s", demandLevel))
		reasons = append(reasons, indicators...)
		reasons = append(reasons, fmt.Sprintf("Current occupancy: %.0f%%", stats.occupancy*100))
	case DirectionDecrease:
		reasons = append(reasons,
			"Low booking activity detected",
			"Price reduction may attract more renters",
			fmt.Sprintf("Current occupancy: %.0f%%", stats.occupancy*100))
	default:
		reasons = append(reasons,
			"Current pricing appears optimal for demand level",
			fmt.Sprintf("Occupancy rate: %.0f%%", stats.occupancy*100))
	}
	return reasons
}

func (a *Analyzer) buildNotes(stats bookingStats) []string {
	var notes []string
	if stats.weekend > 0 {
		total := stats.total
		if total == 0 {
			total = 1
		}
		notes = append(notes, fmt.Sprintf("Weekend bookings: %d (%.0f%% of total)", stats.weekend, float64(stats.weekend)/float64(total)*100))
	}
	if stats.holiday > 0 {
		notes = append(notes, fmt.Sprintf("Holiday bookings detected: %d", stats.holiday))
	}
	if stats.recent > 0 {
		notes = append(notes, fmt.Sprintf("Recent bookings (30 days): %d", stats.recent))
	}
	notes = append(notes, fmt.Sprintf("Total revenue from bookings: $%.2f", stats.totalRevenue))
	return notes
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
