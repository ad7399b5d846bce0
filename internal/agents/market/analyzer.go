// internal/agents/market/analyzer.go
// Package market ranks listing types by market-wide booking activity and
// advises an owner on where their portfolio stands. Read-only.
package market

import (
	"context"
	"fmt"
	"math"
	"sort"

	"insight-service/internal/backend"
	"insight-service/internal/common/errors"
	"insight-service/internal/common/logger"
	"insight-service/internal/models"
)

const defaultType = "Other"

type Analyzer struct {
	config  *Config
	backend backend.DataClient
	logger  logger.Logger
}

func NewAnalyzer(config *Config, client backend.DataClient, log logger.Logger) *Analyzer {
	if config.TopTrendCount <= 0 {
		config.TopTrendCount = 5
	}
	return &Analyzer{
		config:  config,
		backend: client,
		logger:  log.WithFields(map[string]interface{}{"agent": "MarketTrendAgent"}),
	}
}

type typeStats struct {
	count         int
	totalBookings int
	totalRevenue  float64
}

func (a *Analyzer) Analyze(ctx context.Context, ownerID string) (*Analysis, error) {
	allListings, err := a.backend.GetAllListings(ctx)
	if err != nil {
		return nil, err
	}

	ownerListings, err := a.backend.GetListingsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if len(allListings) == 0 {
		if a.config.ZeroOnEmpty {
			return &Analysis{
				Title:           "Market Trend Analysis",
				Portfolio:       Portfolio{Types: []string{}},
				TrendingTypes:   []TrendingType{},
				Recommendations: []Recommendation{},
				Message:         "No market data available for analysis.",
			}, nil
		}
		return nil, errors.NewEmptyDataSetError("market trend analysis", "marketplace listings")
	}

	// An owner without listings has no portfolio to analyze. This is a
	// not-found condition, not an empty-success report.
	if len(ownerListings) == 0 {
		if a.config.ZeroOnEmpty {
			return &Analysis{
				Title:           "Market Trend Analysis",
				Portfolio:       Portfolio{Types: []string{}},
				TrendingTypes:   []TrendingType{},
				Recommendations: []Recommendation{},
				Message:         "No listings found for this owner.",
			}, nil
		}
		return nil, errors.NewResourceNotFoundError("listings for owner", ownerID)
	}

	// One fetch for the whole market instead of a call per listing.
	allBookings, err := a.backend.GetAllBookings(ctx)
	if err != nil {
		return nil, err
	}

	bookingsByListing := make(map[string][]models.Booking)
	for _, b := range allBookings {
		bookingsByListing[b.ListingID] = append(bookingsByListing[b.ListingID], b)
	}

	trending := a.rankTypes(allListings, bookingsByListing)
	portfolio, bookingsByType := a.summarizePortfolio(ownerListings, bookingsByListing)
	recommendations := a.recommend(trending, ownerListings, bookingsByType)

	if len(trending) > a.config.TopTrendCount {
		trending = trending[:a.config.TopTrendCount]
	}

	a.logger.Info("market trend analysis complete", map[string]interface{}{
		"ownerId":         ownerID,
		"marketListings":  len(allListings),
		"ownerListings":   len(ownerListings),
		"trendingTypes":   len(trending),
		"recommendations": len(recommendations),
	})

	return &Analysis{
		Title:           "Market Trend Analysis",
		Portfolio:       portfolio,
		TrendingTypes:   trending,
		Recommendations: recommendations,
		Message:         "Market trend analysis complete.",
	}, nil
}

// rankTypes aggregates every market listing by type and sorts by trend score.
// The score weighs booking frequency double and revenue at one point per $100.
func (a *Analyzer) rankTypes(listings []models.Listing, bookingsByListing map[string][]models.Booking) []TrendingType {
	stats := make(map[string]*typeStats)

	for i := range listings {
		listingType := listingTypeOf(&listings[i])
		s, ok := stats[listingType]
		if !ok {
			s = &typeStats{}
			stats[listingType] = s
		}
		s.count++

		for _, b := range bookingsByListing[listings[i].ID] {
			s.totalBookings++
			s.totalRevenue += b.Revenue()
		}
	}

	trending := make([]TrendingType, 0, len(stats))
	for listingType, s := range stats {
		avgBookings := float64(s.totalBookings) / float64(s.count)
		avgRevenue := s.totalRevenue / float64(s.count)
		trending = append(trending, TrendingType{
			Type:          listingType,
			ListingCount:  s.count,
			TotalBookings: s.totalBookings,
			TotalRevenue:  round2(s.totalRevenue),
			TrendScore:    round2(avgBookings*2 + avgRevenue/100),
		})
	}

	sort.Slice(trending, func(i, j int) bool {
		if trending[i].TrendScore != trending[j].TrendScore {
			return trending[i].TrendScore > trending[j].TrendScore
		}
		return trending[i].Type < trending[j].Type
	})

	return trending
}

// summarizePortfolio totals the owner's effective bookings and revenue.
// Cancelled bookings do not count here.
func (a *Analyzer) summarizePortfolio(ownerListings []models.Listing, bookingsByListing map[string][]models.Booking) (Portfolio, map[string]int) {
	typeSet := make(map[string]struct{})
	bookingsByType := make(map[string]int)
	portfolio := Portfolio{TotalListings: len(ownerListings)}

	for i := range ownerListings {
		listingType := listingTypeOf(&ownerListings[i])
		typeSet[listingType] = struct{}{}

		for _, b := range bookingsByListing[ownerListings[i].ID] {
			if revenue := b.Revenue(); revenue > 0 {
				portfolio.TotalBookings++
				bookingsByType[listingType]++
				portfolio.TotalRevenue += revenue
			}
		}
	}

	portfolio.TotalRevenue = round2(portfolio.TotalRevenue)
	portfolio.Types = make([]string, 0, len(typeSet))
	for listingType := range typeSet {
		portfolio.Types = append(portfolio.Types, listingType)
	}
	sort.Strings(portfolio.Types)

	return portfolio, bookingsByType
}

func (a *Analyzer) recommend(trending []TrendingType, ownerListings []models.Listing, bookingsByType map[string]int) []Recommendation {
	ownerCounts := make(map[string]int)
	for i := range ownerListings {
		ownerCounts[listingTypeOf(&ownerListings[i])]++
	}

	limit := a.config.TopTrendCount
	if limit > len(trending) {
		limit = len(trending)
	}

	recommendations := []Recommendation{}
	for _, trend := range trending[:limit] {
		ownerCount, owns := ownerCounts[trend.Type]
		if !owns {
			if trend.TrendScore > 3 {
				recommendations = append(recommendations, Recommendation{
					Type:    trend.Type,
					Status:  StatusOpportunity,
					Message: fmt.Sprintf("Consider adding %s listings to your portfolio.", trend.Type),
					Advice:  fmt.Sprintf("This category is trending with %d listings in the market and a trend score of %.2f.", trend.ListingCount, trend.TrendScore),
				})
			}
			continue
		}

		typeBookings := bookingsByType[trend.Type]
		switch {
		case trend.TrendScore > 5 && typeBookings > 0:
			recommendations = append(recommendations, Recommendation{
				Type:    trend.Type,
				Status:  StatusOnTrack,
				Message: fmt.Sprintf("Excellent! Your %d %s listing(s) are performing well in a high-demand category.", ownerCount, trend.Type),
				Advice:  "Keep maintaining quality and competitive pricing to maximize bookings.",
			})
		case trend.TrendScore > 0 && typeBookings == 0:
			recommendations = append(recommendations, Recommendation{
				Type:    trend.Type,
				Status:  StatusNeedsImprovement,
				Message: fmt.Sprintf("Your %d %s listing(s) are in a trending category but have no completed bookings yet.", ownerCount, trend.Type),
				Advice:  "Try these improvements: 1) Add high-quality photos, 2) Write detailed descriptions, 3) Set competitive pricing, 4) Respond quickly to inquiries, 5) Offer flexible booking options.",
			})
		case typeBookings > 0:
			recommendations = append(recommendations, Recommendation{
				Type:    trend.Type,
				Status:  StatusOnTrack,
				Message: fmt.Sprintf("Good job! Your %d %s listing(s) are getting bookings.", ownerCount, trend.Type),
				Advice:  "Continue optimizing your listings to capture more bookings.",
			})
		default:
			recommendations = append(recommendations, Recommendation{
				Type:    trend.Type,
				Status:  StatusLowDemand,
				Message: fmt.Sprintf("You have %d %s listing(s). Market activity for this type is currently low.", ownerCount, trend.Type),
				Advice:  "Monitor market trends and consider diversifying your portfolio.",
			})
		}
	}

	return recommendations
}

func listingTypeOf(l *models.Listing) string {
	if l.Type == "" {
		return defaultType
	}
	return l.Type
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
