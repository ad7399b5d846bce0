// internal/dispatch/dispatcher_test.go
package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insight-service/internal/agents/booking"
	"insight-service/internal/agents/market"
	"insight-service/internal/agents/pricing"
	"insight-service/internal/agents/review"
	"insight-service/internal/backend/backendtest"
	"insight-service/internal/common/config"
	"insight-service/internal/common/errors"
	"insight-service/internal/common/logger"
	"insight-service/internal/common/metrics"
	"insight-service/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

var testNow = time.Date(2025, 11, 15, 12, 0, 0, 0, time.UTC)

func newTestDispatcher(t *testing.T, fake *backendtest.Fake) *Dispatcher {
	log := logger.NewTestLogger(t)

	pricingCfg := pricing.DefaultConfig()
	pricingCfg.Now = func() time.Time { return testNow }

	return NewDispatcher(
		NewRegistry(config.ActionsConfig{}),
		NewMemorySessionStore(),
		pricing.NewAnalyzer(pricingCfg, fake, log),
		market.NewAnalyzer(market.DefaultConfig(), fake, log),
		review.NewAnalyzer(review.DefaultConfig(), fake, log),
		booking.NewAnalyzer(booking.DefaultConfig(), fake, log),
		nil,
		log,
	)
}

func fakeWithListing(price float64) *backendtest.Fake {
	return backendtest.New().AddListing(models.Listing{
		ID:        "listing-1",
		OwnerID:   "owner-1",
		Title:     "Cordless Drill",
		BasePrice: price,
		Status:    "ACTIVE",
		Type:      "Tools",
	})
}

// busyFake has the listing booked solid enough for a High demand reading.
func busyFake() *backendtest.Fake {
	fake := fakeWithListing(100)
	for i, weeksBack := range []int{0, 1, 2} {
		start := time.Date(2025, 11, 12, 12, 0, 0, 0, time.UTC).AddDate(0, 0, -7*weeksBack)
		fake.AddBookings("listing-1", models.Booking{
			ID:         string(rune('a' + i)),
			ListingID:  "listing-1",
			RenterID:   "renter-1",
			StartDate:  start,
			EndDate:    start.Add(8 * 24 * time.Hour),
			TotalPrice: 400,
			Status:     models.BookingStatusConfirmed,
		})
	}
	return fake
}

func assertEnvelopeInvariant(t *testing.T, envelope *Envelope) {
	t.Helper()
	assert.Equal(t, envelope.Error != nil, !envelope.Success, "error presence must mirror failure")
	if !envelope.Success {
		assert.Empty(t, envelope.Data, "failed envelopes carry no data")
	}
}

func floatPtr(v float64) *float64 { return &v }

// ==========================
// Routing and Validation
// ==========================

func TestDispatcher_Handle_UnknownActionCode(t *testing.T) {
	// Any backend call would surface a backend error, so a clean "unknown"
	// message also proves no call happened.
	fake := backendtest.New()
	fake.Err = errors.NewBackendUnavailableError(assert.AnError)

	d := newTestDispatcher(t, fake)
	envelope := d.Handle(context.Background(), &Request{ActionCode: "NOT_A_CODE"})

	assertEnvelopeInvariant(t, envelope)
	assert.False(t, envelope.Success)
	assert.Equal(t, "NOT_A_CODE", envelope.ActionCode)
	assert.Empty(t, envelope.Agent)
	require.NotNil(t, envelope.Error)
	assert.Contains(t, *envelope.Error, "unknown action code")
	assert.Empty(t, fake.PriceWrites)
}

func TestDispatcher_Handle_UnknownCodeCollapsedInMetrics(t *testing.T) {
	d := newTestDispatcher(t, backendtest.New())

	before := testutil.ToFloat64(metrics.ActionsProcessed.WithLabelValues("unknown"))
	d.Handle(context.Background(), &Request{ActionCode: "GARBAGE_CODE_FROM_CLIENT"})
	d.Handle(context.Background(), &Request{ActionCode: "ANOTHER_GARBAGE_CODE"})

	// Client-supplied codes never become metric labels.
	assert.Equal(t, before+2, testutil.ToFloat64(metrics.ActionsProcessed.WithLabelValues("unknown")))
	assert.Zero(t, testutil.ToFloat64(metrics.ActionsProcessed.WithLabelValues("GARBAGE_CODE_FROM_CLIENT")))
}

func TestDispatcher_Handle_MissingFields(t *testing.T) {
	tests := []struct {
		name          string
		request       *Request
		expectedError string
		expectedAgent string
	}{
		{
			name:          "pricing analyze without listing",
			request:       &Request{ActionCode: CodePricingAnalyze},
			expectedError: "listing_id is required for pricing analysis",
			expectedAgent: AgentPricing,
		},
		{
			name:          "pricing apply without price",
			request:       &Request{ActionCode: CodePricingApply, ListingID: "listing-1"},
			expectedError: "new_price is required for price change",
			expectedAgent: AgentPricing,
		},
		{
			name:          "market analyze without owner",
			request:       &Request{ActionCode: CodeMarketAnalyze},
			expectedError: "owner_id is required for market analysis",
			expectedAgent: AgentMarket,
		},
		{
			name:          "booking discount without percent",
			request:       &Request{ActionCode: CodeBookingDiscount, ListingID: "listing-1"},
			expectedError: "discount_percent is required for discount application",
			expectedAgent: AgentBooking,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDispatcher(t, fakeWithListing(100))
			envelope := d.Handle(context.Background(), tt.request)

			assertEnvelopeInvariant(t, envelope)
			assert.False(t, envelope.Success)
			assert.Equal(t, tt.expectedAgent, envelope.Agent)
			require.NotNil(t, envelope.Error)
			assert.Equal(t, tt.expectedError, *envelope.Error)
		})
	}
}

func TestDispatcher_Handle_InvalidAdditionalContext(t *testing.T) {
	d := newTestDispatcher(t, fakeWithListing(100))
	envelope := d.Handle(context.Background(), &Request{
		ActionCode:        CodePricingApply,
		ListingID:         "listing-1",
		NewPrice:          floatPtr(110),
		AdditionalContext: map[string]interface{}{"expected_price": "not a number"},
	})

	assertEnvelopeInvariant(t, envelope)
	assert.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)
	assert.Contains(t, *envelope.Error, "additional_context")
}

// ==========================
// Analysis Actions
// ==========================

func TestDispatcher_Handle_PricingAnalyze(t *testing.T) {
	d := newTestDispatcher(t, busyFake())
	envelope := d.Handle(context.Background(), &Request{
		ActionCode: CodePricingAnalyze,
		ListingID:  "listing-1",
	})

	assertEnvelopeInvariant(t, envelope)
	require.True(t, envelope.Success)
	assert.Equal(t, AgentPricing, envelope.Agent)
	assert.True(t, envelope.ShowActionButton)
	assert.Equal(t, "increase", envelope.Data["adjustment_direction"])
	percent := envelope.Data["adjustment_percent"].(float64)
	assert.GreaterOrEqual(t, percent, 5.0)
	assert.LessOrEqual(t, percent, 20.0)
	assert.Equal(t, true, envelope.Data["can_take_action"])
}

func TestDispatcher_Handle_PricingApply(t *testing.T) {
	fake := fakeWithListing(100)
	d := newTestDispatcher(t, fake)
	envelope := d.Handle(context.Background(), &Request{
		ActionCode: CodePricingApply,
		ListingID:  "listing-1",
		NewPrice:   floatPtr(110),
	})

	assertEnvelopeInvariant(t, envelope)
	require.True(t, envelope.Success)
	assert.False(t, envelope.ShowActionButton)
	assert.Equal(t, 100.0, envelope.Data["old_price"])
	assert.Equal(t, 110.0, envelope.Data["new_price"])
	require.Len(t, fake.PriceWrites, 1)
}

func TestDispatcher_Handle_PricingApply_ExpectedPriceConflict(t *testing.T) {
	fake := fakeWithListing(120)
	d := newTestDispatcher(t, fake)
	envelope := d.Handle(context.Background(), &Request{
		ActionCode:        CodePricingApply,
		ListingID:         "listing-1",
		NewPrice:          floatPtr(110),
		AdditionalContext: map[string]interface{}{"expected_price": 100.0},
	})

	assertEnvelopeInvariant(t, envelope)
	assert.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)
	assert.Contains(t, *envelope.Error, "changed from 100.00 to 120.00")
	assert.Empty(t, fake.PriceWrites)
}

func TestDispatcher_Handle_ReviewAnalyze(t *testing.T) {
	fake := fakeWithListing(100)
	ratings := []int{5, 5, 5, 5, 4, 4, 4, 4, 3, 3} // averages 4.2
	for i, rating := range ratings {
		fake.AddReviews("listing-1", models.Review{
			ID:      string(rune('a' + i)),
			Rating:  rating,
			Comment: "nice stay",
		})
	}

	d := newTestDispatcher(t, fake)
	envelope := d.Handle(context.Background(), &Request{
		ActionCode: CodeReviewAnalyze,
		ListingID:  "listing-1",
	})

	assertEnvelopeInvariant(t, envelope)
	require.True(t, envelope.Success)
	assert.Equal(t, AgentReview, envelope.Agent)
	assert.Equal(t, 10.0, envelope.Data["total_reviews"])

	sentiment := envelope.Data["sentiment_analysis"].(map[string]interface{})
	sum := sentiment["positive_percent"].(float64) +
		sentiment["neutral_percent"].(float64) +
		sentiment["negative_percent"].(float64)
	assert.Equal(t, 100.0, sum)
}

func TestDispatcher_Handle_MarketAnalyze_OwnerWithoutListings(t *testing.T) {
	d := newTestDispatcher(t, fakeWithListing(100))
	envelope := d.Handle(context.Background(), &Request{
		ActionCode: CodeMarketAnalyze,
		OwnerID:    "owner-without-listings",
	})

	assertEnvelopeInvariant(t, envelope)
	assert.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)
	assert.Contains(t, *envelope.Error, "not found")
}

func TestDispatcher_Handle_BookingDiscount(t *testing.T) {
	fake := fakeWithListing(100)
	d := newTestDispatcher(t, fake)
	envelope := d.Handle(context.Background(), &Request{
		ActionCode:      CodeBookingDiscount,
		ListingID:       "listing-1",
		DiscountPercent: floatPtr(15),
	})

	assertEnvelopeInvariant(t, envelope)
	require.True(t, envelope.Success)
	assert.Equal(t, AgentBooking, envelope.Agent)
	require.Len(t, fake.DiscountWrites, 1)
	assert.Equal(t, 15.0, fake.DiscountWrites[0].DiscountPercent)
}

// ==========================
// Sessions, Preview, Recovery
// ==========================

func TestDispatcher_Handle_SessionContinuity(t *testing.T) {
	d := newTestDispatcher(t, busyFake())
	request := &Request{
		ActionCode: CodePricingAnalyze,
		ListingID:  "listing-1",
		UserID:     "user-1",
	}

	first := d.Handle(context.Background(), request)
	second := d.Handle(context.Background(), request)

	require.True(t, first.Success)
	assert.NotEmpty(t, first.SessionID)
	assert.Equal(t, first.SessionID, second.SessionID)
	assert.Equal(t, SessionKey("user-1", "listing-1"), first.SessionID)
}

func TestDispatcher_Handle_NoSessionWithoutUser(t *testing.T) {
	d := newTestDispatcher(t, busyFake())
	envelope := d.Handle(context.Background(), &Request{
		ActionCode: CodePricingAnalyze,
		ListingID:  "listing-1",
	})

	require.True(t, envelope.Success)
	assert.Empty(t, envelope.SessionID)
}

func TestDispatcher_Preview_WriteActionsDoNotWrite(t *testing.T) {
	fake := busyFake()
	d := newTestDispatcher(t, fake)

	envelope := d.Preview(context.Background(), CodePricingApply, "listing-1", "")

	assertEnvelopeInvariant(t, envelope)
	require.True(t, envelope.Success)
	assert.Equal(t, CodePricingApply, envelope.ActionCode)
	// Answered by the pricing analysis, with no backend write.
	assert.Contains(t, envelope.Data, "suggested_price")
	assert.Empty(t, fake.PriceWrites)

	discount := d.Preview(context.Background(), CodeBookingDiscount, "listing-1", "")
	require.True(t, discount.Success)
	assert.Equal(t, CodeBookingDiscount, discount.ActionCode)
	assert.Empty(t, fake.DiscountWrites)
}

func TestDispatcher_Handle_DisabledAction(t *testing.T) {
	log := logger.NewTestLogger(t)
	fake := fakeWithListing(100)
	registry := NewRegistry(config.ActionsConfig{
		Handlers: map[string]config.ActionConfig{
			CodePricingApply: {Enabled: false},
		},
	})
	pricingCfg := pricing.DefaultConfig()
	pricingCfg.Now = func() time.Time { return testNow }
	d := NewDispatcher(registry, NewMemorySessionStore(),
		pricing.NewAnalyzer(pricingCfg, fake, log),
		market.NewAnalyzer(market.DefaultConfig(), fake, log),
		review.NewAnalyzer(review.DefaultConfig(), fake, log),
		booking.NewAnalyzer(booking.DefaultConfig(), fake, log),
		nil, log)

	envelope := d.Handle(context.Background(), &Request{
		ActionCode: CodePricingApply,
		ListingID:  "listing-1",
		NewPrice:   floatPtr(110),
	})

	assertEnvelopeInvariant(t, envelope)
	assert.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)
	assert.Contains(t, *envelope.Error, "disabled")
	assert.Empty(t, fake.PriceWrites)
}

type panickingPricingAgent struct{}

func (panickingPricingAgent) Analyze(ctx context.Context, listingID string) (*pricing.Analysis, error) {
	panic("pricing exploded")
}

func (panickingPricingAgent) Apply(ctx context.Context, listingID string, newPrice float64, expectedPrice *float64) (*pricing.ApplyResult, error) {
	panic("pricing exploded")
}

func TestDispatcher_Handle_HandlerPanicBecomesErrorEnvelope(t *testing.T) {
	log := logger.NewTestLogger(t)
	fake := fakeWithListing(100)
	d := NewDispatcher(NewRegistry(config.ActionsConfig{}), NewMemorySessionStore(),
		panickingPricingAgent{},
		market.NewAnalyzer(market.DefaultConfig(), fake, log),
		review.NewAnalyzer(review.DefaultConfig(), fake, log),
		booking.NewAnalyzer(booking.DefaultConfig(), fake, log),
		nil, log)

	envelope := d.Handle(context.Background(), &Request{
		ActionCode: CodePricingAnalyze,
		ListingID:  "listing-1",
	})

	assertEnvelopeInvariant(t, envelope)
	assert.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)
	assert.Contains(t, *envelope.Error, "pricing exploded")
}
