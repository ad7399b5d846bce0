// internal/backend/rest_test.go
package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insight-service/internal/common/errors"
	"insight-service/internal/common/logger"
)

// ==========================
// Test Helper Functions
// ==========================

func newTestRESTClient(t *testing.T, handler http.Handler) *RESTClient {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewRESTClient(server.URL, 5*time.Second, logger.NewTestLogger(t))
}

func writeJSON(t *testing.T, w http.ResponseWriter, v interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

// ==========================
// Listings
// ==========================

func TestRESTClient_GetListing_CamelCase(t *testing.T) {
	client := newTestRESTClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/listings/listing-1", r.URL.Path)
		writeJSON(t, w, map[string]interface{}{
			"id":        "listing-1",
			"ownerId":   "owner-1",
			"title":     "Cordless Drill",
			"basePrice": 100.0,
			"status":    "ACTIVE",
			"type":      "Tools",
		})
	}))

	listing, err := client.GetListing(context.Background(), "listing-1")
	require.NoError(t, err)
	assert.Equal(t, "owner-1", listing.OwnerID)
	assert.Equal(t, 100.0, listing.BasePrice)
}

func TestRESTClient_GetListing_SnakeCase(t *testing.T) {
	client := newTestRESTClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]interface{}{
			"id":         "listing-1",
			"owner_id":   "owner-1",
			"title":      "Cordless Drill",
			"base_price": 100.0,
			"status":     "ACTIVE",
		})
	}))

	listing, err := client.GetListing(context.Background(), "listing-1")
	require.NoError(t, err)
	assert.Equal(t, "owner-1", listing.OwnerID)
	assert.Equal(t, 100.0, listing.BasePrice)
}

func TestRESTClient_GetListing_OwnerObject(t *testing.T) {
	client := newTestRESTClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]interface{}{
			"id":        "listing-1",
			"owner":     map[string]string{"id": "owner-1"},
			"basePrice": 75.0,
		})
	}))

	listing, err := client.GetListing(context.Background(), "listing-1")
	require.NoError(t, err)
	assert.Equal(t, "owner-1", listing.OwnerID)
}

func TestRESTClient_GetListing_NotFound(t *testing.T) {
	client := newTestRESTClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	_, err := client.GetListing(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeResourceNotFound, errors.Normalize(err).Code)
}

func TestRESTClient_BackendUnavailable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close() // connection refused from here on
	client := NewRESTClient(server.URL, time.Second, logger.NewTestLogger(t))

	_, err := client.GetListing(context.Background(), "listing-1")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeBackendUnavailable, errors.Normalize(err).Code)
}

func TestRESTClient_ServerErrorIsBackendError(t *testing.T) {
	client := newTestRESTClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	_, err := client.GetListing(context.Background(), "listing-1")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeBackendError, errors.Normalize(err).Code)
}

// ==========================
// Bookings & Reviews
// ==========================

func TestRESTClient_GetBookings_MixedCasingAndMalformed(t *testing.T) {
	client := newTestRESTClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "listing-1", r.URL.Query().Get("listing_id"))
		writeJSON(t, w, []map[string]interface{}{
			{
				"id":         "b1",
				"listingId":  "listing-1",
				"startDate":  "2025-11-01T00:00:00Z",
				"endDate":    "2025-11-05T00:00:00Z",
				"totalPrice": 200.0,
				"status":     "CONFIRMED",
			},
			{
				"id":          "b2",
				"listing_id":  "listing-1",
				"start_date":  "2025-11-10",
				"end_date":    "2025-11-12",
				"total_price": 80.0,
			},
			{
				// Missing dates: skipped, not fatal.
				"id": "b3",
			},
		})
	}))

	bookings, err := client.GetBookings(context.Background(), "listing-1")
	require.NoError(t, err)
	require.Len(t, bookings, 2)

	assert.Equal(t, "b1", bookings[0].ID)
	assert.Equal(t, 200.0, bookings[0].TotalPrice)

	assert.Equal(t, "b2", bookings[1].ID)
	assert.Equal(t, "listing-1", bookings[1].ListingID)
	assert.Equal(t, 80.0, bookings[1].TotalPrice)
	// Missing status defaults to confirmed.
	assert.Equal(t, "CONFIRMED", bookings[1].Status)
}

func TestRESTClient_GetReviews(t *testing.T) {
	client := newTestRESTClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []map[string]interface{}{
			{"id": "r1", "bookingId": "b1", "rating": 5, "comment": "great", "createdAt": "2025-10-01T00:00:00Z"},
			{"id": "r2", "booking_id": "b2", "rating": 2, "comment": "dirty", "created_at": "2025-10-02"},
		})
	}))

	reviews, err := client.GetReviews(context.Background(), "listing-1")
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, "b1", reviews[0].BookingID)
	assert.Equal(t, "b2", reviews[1].BookingID)
	assert.Equal(t, 2, reviews[1].Rating)
}

// ==========================
// Users & Owner Listings
// ==========================

func TestRESTClient_GetListingsByOwner_InlinedInUser(t *testing.T) {
	client := newTestRESTClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/owner-1", r.URL.Path)
		writeJSON(t, w, map[string]interface{}{
			"id":       "owner-1",
			"username": "alex",
			"listings": []map[string]interface{}{
				// No ownerId on the inlined listing: inherited from the user.
				{"id": "listing-1", "title": "Drill", "basePrice": 100.0},
			},
		})
	}))

	listings, err := client.GetListingsByOwner(context.Background(), "owner-1")
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "owner-1", listings[0].OwnerID)
}

func TestRESTClient_GetUser_NotFound(t *testing.T) {
	client := newTestRESTClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	_, err := client.GetUser(context.Background(), "missing")
	require.Error(t, err)
	stdErr := errors.Normalize(err)
	assert.Equal(t, errors.ErrCodeResourceNotFound, stdErr.Code)
	assert.Contains(t, stdErr.Message, "missing")
}

// ==========================
// Writes
// ==========================

func TestRESTClient_UpdateListingPrice(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]interface{}

	client := newTestRESTClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusNoContent)
	}))

	err := client.UpdateListingPrice(context.Background(), "listing-1", 110)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "/listings/listing-1", gotPath)
	assert.Equal(t, 110.0, gotBody["basePrice"])
}

func TestRESTClient_UpdateListingPrice_NotFound(t *testing.T) {
	client := newTestRESTClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	err := client.UpdateListingPrice(context.Background(), "missing", 110)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeResourceNotFound, errors.Normalize(err).Code)
}
