// internal/backend/postgres_test.go
package backend

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insight-service/internal/common/errors"
	"insight-service/internal/common/logger"
)

// ==========================
// Test Helper Functions
// ==========================

func newTestPostgresClient(t *testing.T) (*PostgresClient, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresClient(db, logger.NewTestLogger(t)), mock
}

func listingRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "owner_id", "title", "description", "base_price", "status", "type", "images", "discount_percent",
	})
}

// ==========================
// Reads
// ==========================

func TestPostgresClient_GetListing(t *testing.T) {
	client, mock := newTestPostgresClient(t)

	rows := listingRows().
		AddRow("listing-1", "owner-1", "Cordless Drill", "18V drill", 100.0, "ACTIVE", "Tools", "{a.jpg,b.jpg}", 0.0)
	mock.ExpectQuery(`SELECT .+ FROM listings WHERE id = \$1`).
		WithArgs("listing-1").
		WillReturnRows(rows)

	listing, err := client.GetListing(context.Background(), "listing-1")
	require.NoError(t, err)
	assert.Equal(t, "owner-1", listing.OwnerID)
	assert.Equal(t, 100.0, listing.BasePrice)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, listing.Images)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresClient_GetListing_NotFound(t *testing.T) {
	client, mock := newTestPostgresClient(t)

	mock.ExpectQuery(`SELECT .+ FROM listings WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(listingRows())

	_, err := client.GetListing(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeResourceNotFound, errors.Normalize(err).Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresClient_GetListingsByOwner(t *testing.T) {
	client, mock := newTestPostgresClient(t)

	mock.ExpectQuery(`SELECT id FROM users WHERE id = \$1`).
		WithArgs("owner-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("owner-1"))
	mock.ExpectQuery(`SELECT .+ FROM listings WHERE owner_id = \$1`).
		WithArgs("owner-1").
		WillReturnRows(listingRows().
			AddRow("listing-1", "owner-1", "Drill", "", 100.0, "ACTIVE", "Tools", "{}", 0.0).
			AddRow("listing-2", "owner-1", "Saw", "", 60.0, "ACTIVE", "Tools", "{}", 0.0))

	listings, err := client.GetListingsByOwner(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.Len(t, listings, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresClient_GetListingsByOwner_UnknownOwner(t *testing.T) {
	client, mock := newTestPostgresClient(t)

	mock.ExpectQuery(`SELECT id FROM users WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := client.GetListingsByOwner(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeResourceNotFound, errors.Normalize(err).Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresClient_GetBookings(t *testing.T) {
	client, mock := newTestPostgresClient(t)

	start := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT .+ FROM bookings WHERE listing_id = \$1`).
		WithArgs("listing-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "listing_id", "renter_id", "start_date", "end_date", "total_price", "status",
		}).AddRow("b1", "listing-1", "renter-1", start, start.Add(4*24*time.Hour), 200.0, "CONFIRMED"))

	bookings, err := client.GetBookings(context.Background(), "listing-1")
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, start, bookings[0].StartDate)
	assert.Equal(t, 200.0, bookings[0].TotalPrice)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresClient_GetReviews_JoinsThroughBookings(t *testing.T) {
	client, mock := newTestPostgresClient(t)

	created := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM reviews r\s+JOIN bookings b ON b.id = r.booking_id`).
		WithArgs("listing-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "booking_id", "reviewer_id", "rating", "comment", "created_at", "flagged",
		}).AddRow("r1", "b1", "renter-1", 5, "great tool", created, false))

	reviews, err := client.GetReviews(context.Background(), "listing-1")
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, 5, reviews[0].Rating)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresClient_GetUser_WithListings(t *testing.T) {
	client, mock := newTestPostgresClient(t)

	mock.ExpectQuery(`SELECT id, username, email, role FROM users WHERE id = \$1`).
		WithArgs("owner-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "role"}).
			AddRow("owner-1", "alex", "alex@example.com", "OWNER"))
	mock.ExpectQuery(`SELECT .+ FROM listings WHERE owner_id = \$1`).
		WithArgs("owner-1").
		WillReturnRows(listingRows().
			AddRow("listing-1", "owner-1", "Drill", "", 100.0, "ACTIVE", "Tools", "{}", 0.0))

	user, err := client.GetUser(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.Equal(t, "alex", user.Username)
	require.Len(t, user.Listings, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Writes
// ==========================

func TestPostgresClient_UpdateListingPrice(t *testing.T) {
	client, mock := newTestPostgresClient(t)

	mock.ExpectExec(`UPDATE listings SET base_price = \$1 WHERE id = \$2`).
		WithArgs(110.0, "listing-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := client.UpdateListingPrice(context.Background(), "listing-1", 110)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresClient_UpdateListingPrice_NoRowMeansNotFound(t *testing.T) {
	client, mock := newTestPostgresClient(t)

	mock.ExpectExec(`UPDATE listings SET base_price = \$1 WHERE id = \$2`).
		WithArgs(110.0, "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := client.UpdateListingPrice(context.Background(), "missing", 110)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeResourceNotFound, errors.Normalize(err).Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresClient_ApplyDiscount(t *testing.T) {
	client, mock := newTestPostgresClient(t)

	mock.ExpectExec(`UPDATE listings SET discount_percent = \$1 WHERE id = \$2`).
		WithArgs(15.0, "listing-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := client.ApplyDiscount(context.Background(), "listing-1", 15)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
