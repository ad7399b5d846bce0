// internal/agents/booking/analyzer.go
// Package booking measures stay duration and occupancy for a listing and
// suggests a longer-stay discount when utilisation is weak. ApplyDiscount is
// the only write.
package booking

import (
	"context"
	"fmt"
	"math"

	"insight-service/internal/backend"
	"insight-service/internal/common/errors"
	"insight-service/internal/common/logger"
)

type Analyzer struct {
	config  *Config
	backend backend.DataClient
	logger  logger.Logger
}

func NewAnalyzer(config *Config, client backend.DataClient, log logger.Logger) *Analyzer {
	return &Analyzer{
		config:  config,
		backend: client,
		logger:  log.WithFields(map[string]interface{}{"agent": "BookingTrendAgent"}),
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

	if len(bookings) == 0 {
		return &Analysis{
			ListingID:        listingID,
			Title:            listing.Title,
			NeedsDiscount:    true,
			SuggestedPercent: a.config.DefaultDiscountPercent,
			Reasons:          []string{"No bookings recorded for this listing", "Occupancy is 0%"},
			CanTakeAction:    true,
			Message:          fmt.Sprintf("There are no bookings for listing '%s' at the moment. Occupancy is 0%%.", listing.Title),
		}, nil
	}

	var totalDays int
	for i := range bookings {
		totalDays += bookings[i].Days()
	}
	avgDuration := float64(totalDays) / float64(len(bookings))
	// Occupancy over a 30-day window.
	occupancy := float64(totalDays) / 30.0

	needsDiscount := avgDuration < a.config.MinHealthyDuration || occupancy < a.config.MinHealthyOccupancy

	analysis := &Analysis{
		ListingID:       listingID,
		Title:           listing.Title,
		TotalBookings:   len(bookings),
		AvgDurationDays: round1(avgDuration),
		OccupancyRate:   round2(occupancy),
		NeedsDiscount:   needsDiscount,
		CanTakeAction:   needsDiscount,
		Message: fmt.Sprintf("Avg booking duration: %.1f days, occupancy: %.0f%% for listing '%s'.",
			avgDuration, occupancy*100, listing.Title),
	}

	if needsDiscount {
		analysis.SuggestedPercent = a.config.DefaultDiscountPercent
		if avgDuration < a.config.MinHealthyDuration {
			analysis.Reasons = append(analysis.Reasons,
				fmt.Sprintf("Average stay of %.1f days is under the %.0f-day target", avgDuration, a.config.MinHealthyDuration))
		}
		if occupancy < a.config.MinHealthyOccupancy {
			analysis.Reasons = append(analysis.Reasons,
				fmt.Sprintf("Occupancy of %.0f%% is under the %.0f%% target", occupancy*100, a.config.MinHealthyOccupancy*100))
		}
		analysis.Reasons = append(analysis.Reasons, "A longer-stay discount could improve utilisation")
	} else {
		analysis.Reasons = append(analysis.Reasons, "Booking trends are healthy; no discount is needed at this time")
	}

	a.logger.Info("booking analysis complete", map[string]interface{}{
		"listingId":     listingID,
		"totalBookings": len(bookings),
		"avgDuration":   analysis.AvgDurationDays,
		"occupancy":     analysis.OccupancyRate,
		"needsDiscount": needsDiscount,
	})

	return analysis, nil
}

// ApplyDiscount records a discount percentage on the listing. The percentage
// must be positive and within the configured ceiling.
func (a *Analyzer) ApplyDiscount(ctx context.Context, listingID string, discountPercent float64) (*DiscountResult, error) {
	if discountPercent <= 0 || discountPercent > a.config.MaxDiscountPercent {
		return nil, errors.NewInvalidContextError(
			fmt.Sprintf("discount_percent must be between 0 and %.0f", a.config.MaxDiscountPercent))
	}

	listing, err := a.backend.GetListing(ctx, listingID)
	if err != nil {
		return nil, err
	}

	if err := a.backend.ApplyDiscount(ctx, listingID, discountPercent); err != nil {
		return nil, err
	}

	a.logger.Info("discount applied", map[string]interface{}{
		"listingId":       listingID,
		"discountPercent": discountPercent,
	})

	return &DiscountResult{
		Success:         true,
		ListingID:       listingID,
		ListingTitle:    listing.Title,
		DiscountPercent: discountPercent,
		Message:         fmt.Sprintf("A %.0f%% discount has been recorded for '%s'.", discountPercent, listing.Title),
	}, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
