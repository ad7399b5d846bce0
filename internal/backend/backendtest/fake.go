// internal/backend/backendtest/fake.go
// Package backendtest provides an in-memory DataClient for agent tests.
package backendtest

import (
	"context"

	"insight-service/internal/common/errors"
	"insight-service/internal/models"
)

// Fake is a programmable in-memory backend. Unset maps behave like an empty
// data set; unknown IDs return RESOURCE_NOT_FOUND like the real clients do.
type Fake struct {
	Listings map[string]*models.Listing
	Bookings map[string][]models.Booking // keyed by listing ID
	Reviews  map[string][]models.Review  // keyed by listing ID
	Users    map[string]*models.User

	// Err, when set, is returned by every call. Simulates an unreachable
	// backend.
	Err error

	// PriceUpdateErr fails UpdateListingPrice without affecting reads.
	PriceUpdateErr error

	// PriceWrites records every successful UpdateListingPrice call.
	PriceWrites []PriceWrite

	// DiscountWrites records every successful ApplyDiscount call.
	DiscountWrites []DiscountWrite
}

type PriceWrite struct {
	ListingID string
	NewPrice  float64
}

type DiscountWrite struct {
	ListingID       string
	DiscountPercent float64
}

func New() *Fake {
	return &Fake{
		Listings: make(map[string]*models.Listing),
		Bookings: make(map[string][]models.Booking),
		Reviews:  make(map[string][]models.Review),
		Users:    make(map[string]*models.User),
	}
}

func (f *Fake) AddListing(l models.Listing) *Fake {
	f.Listings[l.ID] = &l
	return f
}

func (f *Fake) AddBookings(listingID string, bookings ...models.Booking) *Fake {
	f.Bookings[listingID] = append(f.Bookings[listingID], bookings...)
	return f
}

func (f *Fake) AddReviews(listingID string, reviews ...models.Review) *Fake {
	f.Reviews[listingID] = append(f.Reviews[listingID], reviews...)
	return f
}

func (f *Fake) AddUser(u models.User) *Fake {
	f.Users[u.ID] = &u
	return f
}

func (f *Fake) GetListing(ctx context.Context, listingID string) (*models.Listing, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	listing, ok := f.Listings[listingID]
	if !ok {
		return nil, errors.NewResourceNotFoundError("listing", listingID)
	}
	copied := *listing
	return &copied, nil
}

func (f *Fake) GetAllListings(ctx context.Context) ([]models.Listing, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	out := make([]models.Listing, 0, len(f.Listings))
	for _, l := range f.Listings {
		out = append(out, *l)
	}
	return out, nil
}

func (f *Fake) GetListingsByOwner(ctx context.Context, ownerID string) ([]models.Listing, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	out := []models.Listing{}
	for _, l := range f.Listings {
		if l.OwnerID == ownerID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (f *Fake) GetBookings(ctx context.Context, listingID string) ([]models.Booking, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return append([]models.Booking(nil), f.Bookings[listingID]...), nil
}

func (f *Fake) GetAllBookings(ctx context.Context) ([]models.Booking, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	var out []models.Booking
	for _, bookings := range f.Bookings {
		out = append(out, bookings...)
	}
	return out, nil
}

func (f *Fake) GetReviews(ctx context.Context, listingID string) ([]models.Review, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return append([]models.Review(nil), f.Reviews[listingID]...), nil
}

func (f *Fake) GetUser(ctx context.Context, userID string) (*models.User, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	user, ok := f.Users[userID]
	if !ok {
		return nil, errors.NewResourceNotFoundError("user", userID)
	}
	copied := *user
	return &copied, nil
}

func (f *Fake) UpdateListingPrice(ctx context.Context, listingID string, newPrice float64) error {
	if f.Err != nil {
		return f.Err
	}
	if f.PriceUpdateErr != nil {
		return f.PriceUpdateErr
	}
	listing, ok := f.Listings[listingID]
	if !ok {
		return errors.NewResourceNotFoundError("listing", listingID)
	}
	listing.BasePrice = newPrice
	f.PriceWrites = append(f.PriceWrites, PriceWrite{ListingID: listingID, NewPrice: newPrice})
	return nil
}

func (f *Fake) ApplyDiscount(ctx context.Context, listingID string, discountPercent float64) error {
	if f.Err != nil {
		return f.Err
	}
	listing, ok := f.Listings[listingID]
	if !ok {
		return errors.NewResourceNotFoundError("listing", listingID)
	}
	listing.DiscountPercent = discountPercent
	f.DiscountWrites = append(f.DiscountWrites, DiscountWrite{ListingID: listingID, DiscountPercent: discountPercent})
	return nil
}
