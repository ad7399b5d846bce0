// Package backend provides the data client for the marketplace that owns
// listings, bookings, reviews and users. The service never stores this data
// itself; the backend is the sole source of truth, including for the one
// write operation (the listing price update).
package backend

import (
	"context"

	"insight-service/internal/models"
)

// DataClient is the narrow read/write surface the analysis routines consume.
type DataClient interface {
	GetListing(ctx context.Context, listingID string) (*models.Listing, error)
	GetAllListings(ctx context.Context) ([]models.Listing, error)
	GetListingsByOwner(ctx context.Context, ownerID string) ([]models.Listing, error)
	GetBookings(ctx context.Context, listingID string) ([]models.Booking, error)
	GetAllBookings(ctx context.Context) ([]models.Booking, error)
	GetReviews(ctx context.Context, listingID string) ([]models.Review, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)

	// UpdateListingPrice is the only write. It is not retried and not
	// transactional; a failure surfaces immediately to the caller.
	UpdateListingPrice(ctx context.Context, listingID string, newPrice float64) error

	// ApplyDiscount records a longer-stay discount percentage on a listing.
	ApplyDiscount(ctx context.Context, listingID string, discountPercent float64) error
}
