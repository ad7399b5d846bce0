// internal/agents/market/analyzer_test.go
package market

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insight-service/internal/backend/backendtest"
	"insight-service/internal/common/errors"
	"insight-service/internal/common/logger"
	"insight-service/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestAnalyzer(t *testing.T, fake *backendtest.Fake, zeroOnEmpty bool) *Analyzer {
	cfg := DefaultConfig()
	cfg.ZeroOnEmpty = zeroOnEmpty
	return NewAnalyzer(cfg, fake, logger.NewTestLogger(t))
}

func marketListing(id, ownerID, listingType string, price float64) models.Listing {
	return models.Listing{
		ID:        id,
		OwnerID:   ownerID,
		Title:     "Listing " + id,
		BasePrice: price,
		Status:    "ACTIVE",
		Type:      listingType,
	}
}

func completedBooking(id, listingID string, price float64) models.Booking {
	start := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	return models.Booking{
		ID:         id,
		ListingID:  listingID,
		RenterID:   "renter-1",
		StartDate:  start,
		EndDate:    start.Add(3 * 24 * time.Hour),
		TotalPrice: price,
		Status:     models.BookingStatusCompleted,
	}
}

// seededMarket builds a market where Tools dominates: two Tools listings with
// six completed bookings between them, one quiet Electronics listing.
func seededMarket() *backendtest.Fake {
	fake := backendtest.New().
		AddListing(marketListing("t1", "owner-1", "Tools", 50)).
		AddListing(marketListing("t2", "owner-2", "Tools", 60)).
		AddListing(marketListing("e1", "owner-2", "Electronics", 200))

	for i, listingID := range []string{"t1", "t1", "t1", "t2", "t2", "t2"} {
		fake.AddBookings(listingID, completedBooking(string(rune('a'+i)), listingID, 150))
	}
	return fake
}

// ==========================
// Analyze Tests
// ==========================

func TestAnalyzer_Analyze_RanksTypesByScore(t *testing.T) {
	analyzer := createTestAnalyzer(t, seededMarket(), false)
	analysis, err := analyzer.Analyze(context.Background(), "owner-1")
	require.NoError(t, err)

	require.Len(t, analysis.TrendingTypes, 2)
	tools := analysis.TrendingTypes[0]
	assert.Equal(t, "Tools", tools.Type)
	assert.Equal(t, 2, tools.ListingCount)
	assert.Equal(t, 6, tools.TotalBookings)
	assert.Equal(t, 900.0, tools.TotalRevenue)
	// avg bookings 3 doubled plus avg revenue 450/100.
	assert.Equal(t, 10.5, tools.TrendScore)

	electronics := analysis.TrendingTypes[1]
	assert.Equal(t, "Electronics", electronics.Type)
	assert.Zero(t, electronics.TrendScore)

	assert.Equal(t, "Market trend analysis complete.", analysis.Message)
}

func TestAnalyzer_Analyze_PortfolioSummary(t *testing.T) {
	analyzer := createTestAnalyzer(t, seededMarket(), false)
	analysis, err := analyzer.Analyze(context.Background(), "owner-1")
	require.NoError(t, err)

	assert.Equal(t, 1, analysis.Portfolio.TotalListings)
	assert.Equal(t, []string{"Tools"}, analysis.Portfolio.Types)
	assert.Equal(t, 3, analysis.Portfolio.TotalBookings)
	assert.Equal(t, 450.0, analysis.Portfolio.TotalRevenue)
}

func TestAnalyzer_Analyze_Recommendations(t *testing.T) {
	tests := []struct {
		name           string
		ownerID        string
		setup          func() *backendtest.Fake
		expectedType   string
		expectedStatus string
	}{
		{
			name:           "owner in booming category with bookings is on track",
			ownerID:        "owner-1",
			setup:          seededMarket,
			expectedType:   "Tools",
			expectedStatus: StatusOnTrack,
		},
		{
			name:    "trending type missing from portfolio is an opportunity",
			ownerID: "owner-3",
			setup: func() *backendtest.Fake {
				fake := seededMarket()
				fake.AddListing(marketListing("c1", "owner-3", "Cameras", 80))
				return fake
			},
			expectedType:   "Tools",
			expectedStatus: StatusOpportunity,
		},
		{
			name:    "trending category with no completed bookings needs improvement",
			ownerID: "owner-3",
			setup: func() *backendtest.Fake {
				fake := seededMarket()
				fake.AddListing(marketListing("t3", "owner-3", "Tools", 55))
				return fake
			},
			expectedType:   "Tools",
			expectedStatus: StatusNeedsImprovement,
		},
		{
			name:    "quiet category the owner holds is flagged low demand",
			ownerID: "owner-2",
			setup:   seededMarket,
			// owner-2 holds e1 with zero bookings and score 0.
			expectedType:   "Electronics",
			expectedStatus: StatusLowDemand,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyzer := createTestAnalyzer(t, tt.setup(), false)
			analysis, err := analyzer.Analyze(context.Background(), tt.ownerID)
			require.NoError(t, err)

			var found *Recommendation
			for i := range analysis.Recommendations {
				if analysis.Recommendations[i].Type == tt.expectedType {
					found = &analysis.Recommendations[i]
					break
				}
			}
			require.NotNil(t, found, "no recommendation for type %s", tt.expectedType)
			assert.Equal(t, tt.expectedStatus, found.Status)
			assert.NotEmpty(t, found.Message)
			assert.NotEmpty(t, found.Advice)
		})
	}
}

func TestAnalyzer_Analyze_UntypedListingsGroupAsOther(t *testing.T) {
	fake := backendtest.New().
		AddListing(marketListing("u1", "owner-1", "", 40)).
		AddBookings("u1", completedBooking("b1", "u1", 120))

	analyzer := createTestAnalyzer(t, fake, false)
	analysis, err := analyzer.Analyze(context.Background(), "owner-1")
	require.NoError(t, err)

	require.Len(t, analysis.TrendingTypes, 1)
	assert.Equal(t, "Other", analysis.TrendingTypes[0].Type)
	assert.Equal(t, []string{"Other"}, analysis.Portfolio.Types)
}

func TestAnalyzer_Analyze_EmptyMarket(t *testing.T) {
	t.Run("default policy returns an error", func(t *testing.T) {
		analyzer := createTestAnalyzer(t, backendtest.New(), false)
		_, err := analyzer.Analyze(context.Background(), "owner-1")
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeEmptyDataSet, errors.Normalize(err).Code)
	})

	t.Run("zero policy returns an empty report", func(t *testing.T) {
		analyzer := createTestAnalyzer(t, backendtest.New(), true)
		analysis, err := analyzer.Analyze(context.Background(), "owner-1")
		require.NoError(t, err)
		assert.Zero(t, analysis.Portfolio.TotalListings)
		assert.Empty(t, analysis.TrendingTypes)
		assert.Empty(t, analysis.Recommendations)
		assert.Equal(t, "No market data available for analysis.", analysis.Message)
	})
}

func TestAnalyzer_Analyze_OwnerWithoutListings(t *testing.T) {
	t.Run("default policy surfaces not found", func(t *testing.T) {
		analyzer := createTestAnalyzer(t, seededMarket(), false)
		_, err := analyzer.Analyze(context.Background(), "owner-without-listings")
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeResourceNotFound, errors.Normalize(err).Code)
	})

	t.Run("zero policy returns an empty portfolio", func(t *testing.T) {
		analyzer := createTestAnalyzer(t, seededMarket(), true)
		analysis, err := analyzer.Analyze(context.Background(), "owner-without-listings")
		require.NoError(t, err)
		assert.Zero(t, analysis.Portfolio.TotalListings)
		assert.Empty(t, analysis.Recommendations)
	})
}

func TestAnalyzer_Analyze_CancelledBookingsExcludedFromRevenue(t *testing.T) {
	cancelled := completedBooking("b1", "t1", 999)
	cancelled.Status = models.BookingStatusCancelled

	fake := backendtest.New().
		AddListing(marketListing("t1", "owner-1", "Tools", 50)).
		AddBookings("t1", cancelled)

	analyzer := createTestAnalyzer(t, fake, false)
	analysis, err := analyzer.Analyze(context.Background(), "owner-1")
	require.NoError(t, err)

	require.Len(t, analysis.TrendingTypes, 1)
	// Cancelled bookings count toward activity but not revenue.
	assert.Equal(t, 1, analysis.TrendingTypes[0].TotalBookings)
	assert.Zero(t, analysis.TrendingTypes[0].TotalRevenue)
	assert.Zero(t, analysis.Portfolio.TotalBookings)
}
