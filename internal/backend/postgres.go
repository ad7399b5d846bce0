package backend

import (
	"context"
	"database/sql"

	"insight-service/internal/common/errors"
	"insight-service/internal/common/logger"
	"insight-service/internal/common/metrics"
	"insight-service/internal/models"

	"github.com/lib/pq"
)

// PostgresClient reads marketplace data straight from the marketplace
// database. Deployments that co-locate the service with the database use this
// instead of the REST client; the interface and semantics are identical.
type PostgresClient struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPostgresClient(db *sql.DB, log logger.Logger) *PostgresClient {
	return &PostgresClient{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "backend-postgres"}),
	}
}

const listingColumns = `id, owner_id, title, description, base_price, status, type, images, discount_percent`

func scanListing(row interface{ Scan(...interface{}) error }) (models.Listing, error) {
	var l models.Listing
	var images pq.StringArray
	err := row.Scan(&l.ID, &l.OwnerID, &l.Title, &l.Description, &l.BasePrice, &l.Status, &l.Type, &images, &l.DiscountPercent)
	l.Images = []string(images)
	return l, err
}

func (c *PostgresClient) GetListing(ctx context.Context, listingID string) (*models.Listing, error) {
	row := c.db.QueryRowContext(ctx, `SELECT `+listingColumns+` FROM listings WHERE id = $1`, listingID)
	listing, err := scanListing(row)
	if err == sql.ErrNoRows {
		metrics.BackendRequests.WithLabelValues("get-listing", "not_found").Inc()
		return nil, errors.NewResourceNotFoundError("listing", listingID)
	}
	if err != nil {
		metrics.BackendRequests.WithLabelValues("get-listing", "error").Inc()
		return nil, errors.NewBackendError("get-listing", err)
	}
	metrics.BackendRequests.WithLabelValues("get-listing", "ok").Inc()
	return &listing, nil
}

func (c *PostgresClient) GetAllListings(ctx context.Context) ([]models.Listing, error) {
	return c.queryListings(ctx, "get-all-listings", `SELECT `+listingColumns+` FROM listings`)
}

func (c *PostgresClient) GetListingsByOwner(ctx context.Context, ownerID string) ([]models.Listing, error) {
	// Owner existence is checked first so a missing owner surfaces as
	// not-found rather than an empty set.
	var id string
	err := c.db.QueryRowContext(ctx, `SELECT id FROM users WHERE id = $1`, ownerID).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, errors.NewResourceNotFoundError("user", ownerID)
	}
	if err != nil {
		return nil, errors.NewBackendError("get-listings-by-owner", err)
	}
	return c.queryListings(ctx, "get-listings-by-owner",
		`SELECT `+listingColumns+` FROM listings WHERE owner_id = $1`, ownerID)
}

func (c *PostgresClient) queryListings(ctx context.Context, operation, query string, args ...interface{}) ([]models.Listing, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		metrics.BackendRequests.WithLabelValues(operation, "error").Inc()
		return nil, errors.NewBackendError(operation, err)
	}
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			metrics.BackendRequests.WithLabelValues(operation, "error").Inc()
			return nil, errors.NewBackendError(operation, err)
		}
		listings = append(listings, listing)
	}
	if err := rows.Err(); err != nil {
		metrics.BackendRequests.WithLabelValues(operation, "error").Inc()
		return nil, errors.NewBackendError(operation, err)
	}

	metrics.BackendRequests.WithLabelValues(operation, "ok").Inc()
	return listings, nil
}

const bookingColumns = `id, listing_id, renter_id, start_date, end_date, total_price, status`

func (c *PostgresClient) GetBookings(ctx context.Context, listingID string) ([]models.Booking, error) {
	return c.queryBookings(ctx, "get-bookings",
		`SELECT `+bookingColumns+` FROM bookings WHERE listing_id = $1`, listingID)
}

func (c *PostgresClient) GetAllBookings(ctx context.Context) ([]models.Booking, error) {
	return c.queryBookings(ctx, "get-all-bookings", `SELECT `+bookingColumns+` FROM bookings`)
}

func (c *PostgresClient) queryBookings(ctx context.Context, operation, query string, args ...interface{}) ([]models.Booking, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		metrics.BackendRequests.WithLabelValues(operation, "error").Inc()
		return nil, errors.NewBackendError(operation, err)
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		var b models.Booking
		if err := rows.Scan(&b.ID, &b.ListingID, &b.RenterID, &b.StartDate, &b.EndDate, &b.TotalPrice, &b.Status); err != nil {
			metrics.BackendRequests.WithLabelValues(operation, "error").Inc()
			return nil, errors.NewBackendError(operation, err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		metrics.BackendRequests.WithLabelValues(operation, "error").Inc()
		return nil, errors.NewBackendError(operation, err)
	}

	metrics.BackendRequests.WithLabelValues(operation, "ok").Inc()
	return bookings, nil
}

func (c *PostgresClient) GetReviews(ctx context.Context, listingID string) ([]models.Review, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT r.id, r.booking_id, r.reviewer_id, r.rating, r.comment, r.created_at, r.flagged
		FROM reviews r
		JOIN bookings b ON b.id = r.booking_id
		WHERE b.listing_id = $1`, listingID)
	if err != nil {
		metrics.BackendRequests.WithLabelValues("get-reviews", "error").Inc()
		return nil, errors.NewBackendError("get-reviews", err)
	}
	defer rows.Close()

	var reviews []models.Review
	for rows.Next() {
		var r models.Review
		if err := rows.Scan(&r.ID, &r.BookingID, &r.ReviewerID, &r.Rating, &r.Comment, &r.CreatedAt, &r.Flagged); err != nil {
			metrics.BackendRequests.WithLabelValues("get-reviews", "error").Inc()
			return nil, errors.NewBackendError("get-reviews", err)
		}
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		metrics.BackendRequests.WithLabelValues("get-reviews", "error").Inc()
		return nil, errors.NewBackendError("get-reviews", err)
	}

	metrics.BackendRequests.WithLabelValues("get-reviews", "ok").Inc()
	return reviews, nil
}

func (c *PostgresClient) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	row := c.db.QueryRowContext(ctx, `SELECT id, username, email, role FROM users WHERE id = $1`, userID)
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.Role); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewResourceNotFoundError("user", userID)
		}
		return nil, errors.NewBackendError("get-user", err)
	}

	listings, err := c.queryListings(ctx, "get-user",
		`SELECT `+listingColumns+` FROM listings WHERE owner_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	user.Listings = listings

	return &user, nil
}

func (c *PostgresClient) UpdateListingPrice(ctx context.Context, listingID string, newPrice float64) error {
	result, err := c.db.ExecContext(ctx, `UPDATE listings SET base_price = $1 WHERE id = $2`, newPrice, listingID)
	if err != nil {
		metrics.BackendRequests.WithLabelValues("update-listing-price", "error").Inc()
		return errors.NewBackendError("update-listing-price", err)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		metrics.BackendRequests.WithLabelValues("update-listing-price", "not_found").Inc()
		return errors.NewResourceNotFoundError("listing", listingID)
	}

	metrics.BackendRequests.WithLabelValues("update-listing-price", "ok").Inc()
	c.logger.Info("listing price updated", map[string]interface{}{
		"listingId": listingID,
		"newPrice":  newPrice,
	})
	return nil
}

func (c *PostgresClient) ApplyDiscount(ctx context.Context, listingID string, discountPercent float64) error {
	result, err := c.db.ExecContext(ctx, `UPDATE listings SET discount_percent = $1 WHERE id = $2`, discountPercent, listingID)
	if err != nil {
		metrics.BackendRequests.WithLabelValues("apply-discount", "error").Inc()
		return errors.NewBackendError("apply-discount", err)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		metrics.BackendRequests.WithLabelValues("apply-discount", "not_found").Inc()
		return errors.NewResourceNotFoundError("listing", listingID)
	}

	metrics.BackendRequests.WithLabelValues("apply-discount", "ok").Inc()
	return nil
}
