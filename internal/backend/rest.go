package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"insight-service/internal/common/errors"
	"insight-service/internal/common/logger"
	"insight-service/internal/common/metrics"
	"insight-service/internal/models"
)

// RESTClient fetches marketplace data over the backend's HTTP+JSON API.
type RESTClient struct {
	baseURL    string
	httpClient *http.Client
	logger     logger.Logger
}

func NewRESTClient(baseURL string, timeout time.Duration, log logger.Logger) *RESTClient {
	return &RESTClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: log.WithFields(map[string]interface{}{"component": "backend-rest"}),
	}
}

// --- wire payloads ---
// The backend has shipped both camelCase and snake_case variants of the
// booking and review payloads; both are accepted.

type listingPayload struct {
	ID           string `json:"id"`
	OwnerID      string `json:"ownerId"`
	OwnerIDSnake string `json:"owner_id"`
	Owner        *struct {
		ID string `json:"id"`
	} `json:"owner"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	BasePrice       float64  `json:"basePrice"`
	BasePriceSnake  float64  `json:"base_price"`
	Status          string   `json:"status"`
	Type            string   `json:"type"`
	Images          []string `json:"images"`
	DiscountPercent float64  `json:"discountPercent"`
}

func (p *listingPayload) toModel() models.Listing {
	ownerID := p.OwnerID
	if ownerID == "" && p.Owner != nil {
		ownerID = p.Owner.ID
	}
	if ownerID == "" {
		ownerID = p.OwnerIDSnake
	}
	price := p.BasePrice
	if price == 0 {
		price = p.BasePriceSnake
	}
	return models.Listing{
		ID:              p.ID,
		OwnerID:         ownerID,
		Title:           p.Title,
		Description:     p.Description,
		BasePrice:       price,
		Status:          p.Status,
		Type:            p.Type,
		Images:          p.Images,
		DiscountPercent: p.DiscountPercent,
	}
}

type bookingPayload struct {
	ID              string  `json:"id"`
	ListingID       string  `json:"listingId"`
	ListingIDSnake  string  `json:"listing_id"`
	RenterID        string  `json:"renterId"`
	RenterIDSnake   string  `json:"renter_id"`
	StartDate       string  `json:"startDate"`
	StartDateSnake  string  `json:"start_date"`
	EndDate         string  `json:"endDate"`
	EndDateSnake    string  `json:"end_date"`
	TotalPrice      float64 `json:"totalPrice"`
	TotalPriceSnake float64 `json:"total_price"`
	Status          string  `json:"status"`
}

func (p *bookingPayload) toModel() (models.Booking, error) {
	start, err := parseBackendTime(pick(p.StartDate, p.StartDateSnake))
	if err != nil {
		return models.Booking{}, fmt.Errorf("booking %s: bad start date: %w", p.ID, err)
	}
	end, err := parseBackendTime(pick(p.EndDate, p.EndDateSnake))
	if err != nil {
		return models.Booking{}, fmt.Errorf("booking %s: bad end date: %w", p.ID, err)
	}
	status := p.Status
	if status == "" {
		status = models.BookingStatusConfirmed
	}
	price := p.TotalPrice
	if price == 0 {
		price = p.TotalPriceSnake
	}
	return models.Booking{
		ID:         p.ID,
		ListingID:  pick(p.ListingID, p.ListingIDSnake),
		RenterID:   pick(p.RenterID, p.RenterIDSnake),
		StartDate:  start,
		EndDate:    end,
		TotalPrice: price,
		Status:     status,
	}, nil
}

type reviewPayload struct {
	ID             string `json:"id"`
	BookingID      string `json:"bookingId"`
	BookingIDSnake string `json:"booking_id"`
	ReviewerID     string `json:"reviewerId"`
	Rating         int    `json:"rating"`
	Comment        string `json:"comment"`
	CreatedAt      string `json:"createdAt"`
	CreatedAtSnake string `json:"created_at"`
	Flagged        bool   `json:"flagged"`
}

func (p *reviewPayload) toModel() models.Review {
	createdAt, err := parseBackendTime(pick(p.CreatedAt, p.CreatedAtSnake))
	if err != nil {
		createdAt = time.Now().UTC()
	}
	return models.Review{
		ID:         p.ID,
		BookingID:  pick(p.BookingID, p.BookingIDSnake),
		ReviewerID: p.ReviewerID,
		Rating:     p.Rating,
		Comment:    p.Comment,
		CreatedAt:  createdAt,
		Flagged:    p.Flagged,
	}
}

type userPayload struct {
	ID       string           `json:"id"`
	Username string           `json:"username"`
	Email    string           `json:"email"`
	Role     string           `json:"role"`
	Listings []listingPayload `json:"listings"`
}

func pick(primary, fallback string) string {
	if primary != "" {
		return primary
	}
	return fallback
}

func parseBackendTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// --- transport helpers ---

func (c *RESTClient) get(ctx context.Context, operation, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return errors.NewBackendError(operation, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.BackendRequests.WithLabelValues(operation, "unavailable").Inc()
		return errors.NewBackendUnavailableError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		metrics.BackendRequests.WithLabelValues(operation, "not_found").Inc()
		return errors.NewResourceNotFoundError(operation, path)
	}
	if resp.StatusCode != http.StatusOK {
		metrics.BackendRequests.WithLabelValues(operation, "error").Inc()
		body, _ := io.ReadAll(resp.Body)
		return errors.NewBackendError(operation, fmt.Errorf("status %d: %s", resp.StatusCode, string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		metrics.BackendRequests.WithLabelValues(operation, "error").Inc()
		return errors.NewBackendError(operation, fmt.Errorf("decode response: %w", err))
	}

	metrics.BackendRequests.WithLabelValues(operation, "ok").Inc()
	return nil
}

func (c *RESTClient) patch(ctx context.Context, operation, path string, payload interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return errors.NewBackendError(operation, fmt.Errorf("marshal payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return errors.NewBackendError(operation, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.BackendRequests.WithLabelValues(operation, "unavailable").Inc()
		return errors.NewBackendUnavailableError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		metrics.BackendRequests.WithLabelValues(operation, "not_found").Inc()
		return errors.NewResourceNotFoundError(operation, path)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		metrics.BackendRequests.WithLabelValues(operation, "error").Inc()
		body, _ := io.ReadAll(resp.Body)
		return errors.NewBackendError(operation, fmt.Errorf("status %d: %s", resp.StatusCode, string(body)))
	}

	metrics.BackendRequests.WithLabelValues(operation, "ok").Inc()
	return nil
}

// --- reads ---

func (c *RESTClient) GetListing(ctx context.Context, listingID string) (*models.Listing, error) {
	var payload listingPayload
	if err := c.get(ctx, "get-listing", "/listings/"+url.PathEscape(listingID), &payload); err != nil {
		if stdErr := errors.Normalize(err); stdErr.Code == errors.ErrCodeResourceNotFound {
			return nil, errors.NewResourceNotFoundError("listing", listingID)
		}
		return nil, err
	}
	listing := payload.toModel()
	return &listing, nil
}

func (c *RESTClient) GetAllListings(ctx context.Context) ([]models.Listing, error) {
	var payloads []listingPayload
	if err := c.get(ctx, "get-all-listings", "/listings", &payloads); err != nil {
		return nil, err
	}
	listings := make([]models.Listing, 0, len(payloads))
	for i := range payloads {
		listings = append(listings, payloads[i].toModel())
	}
	return listings, nil
}

func (c *RESTClient) GetListingsByOwner(ctx context.Context, ownerID string) ([]models.Listing, error) {
	// The backend inlines an owner's listings in the user payload.
	user, err := c.GetUser(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return user.Listings, nil
}

func (c *RESTClient) GetBookings(ctx context.Context, listingID string) ([]models.Booking, error) {
	var payloads []bookingPayload
	path := "/bookings?listing_id=" + url.QueryEscape(listingID)
	if err := c.get(ctx, "get-bookings", path, &payloads); err != nil {
		return nil, err
	}
	return c.decodeBookings(payloads), nil
}

func (c *RESTClient) GetAllBookings(ctx context.Context) ([]models.Booking, error) {
	var payloads []bookingPayload
	if err := c.get(ctx, "get-all-bookings", "/bookings", &payloads); err != nil {
		return nil, err
	}
	return c.decodeBookings(payloads), nil
}

func (c *RESTClient) decodeBookings(payloads []bookingPayload) []models.Booking {
	bookings := make([]models.Booking, 0, len(payloads))
	for i := range payloads {
		booking, err := payloads[i].toModel()
		if err != nil {
			// A malformed record is skipped, not fatal: the analyses
			// tolerate partial booking history.
			c.logger.Warn("skipping malformed booking", map[string]interface{}{
				"bookingId": payloads[i].ID,
				"error":     err.Error(),
			})
			continue
		}
		bookings = append(bookings, booking)
	}
	return bookings
}

func (c *RESTClient) GetReviews(ctx context.Context, listingID string) ([]models.Review, error) {
	var payloads []reviewPayload
	path := "/reviews?listing_id=" + url.QueryEscape(listingID)
	if err := c.get(ctx, "get-reviews", path, &payloads); err != nil {
		return nil, err
	}
	reviews := make([]models.Review, 0, len(payloads))
	for i := range payloads {
		reviews = append(reviews, payloads[i].toModel())
	}
	return reviews, nil
}

func (c *RESTClient) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var payload userPayload
	if err := c.get(ctx, "get-user", "/users/"+url.PathEscape(userID), &payload); err != nil {
		if stdErr := errors.Normalize(err); stdErr.Code == errors.ErrCodeResourceNotFound {
			return nil, errors.NewResourceNotFoundError("user", userID)
		}
		return nil, err
	}

	listings := make([]models.Listing, 0, len(payload.Listings))
	for i := range payload.Listings {
		listing := payload.Listings[i].toModel()
		if listing.OwnerID == "" {
			listing.OwnerID = payload.ID
		}
		listings = append(listings, listing)
	}

	return &models.User{
		ID:       payload.ID,
		Username: payload.Username,
		Email:    payload.Email,
		Role:     payload.Role,
		Listings: listings,
	}, nil
}

// --- writes ---

func (c *RESTClient) UpdateListingPrice(ctx context.Context, listingID string, newPrice float64) error {
	err := c.patch(ctx, "update-listing-price", "/listings/"+url.PathEscape(listingID), map[string]interface{}{
		"basePrice": newPrice,
	})
	if err != nil {
		if stdErr := errors.Normalize(err); stdErr.Code == errors.ErrCodeResourceNotFound {
			return errors.NewResourceNotFoundError("listing", listingID)
		}
		return err
	}

	c.logger.Info("listing price updated", map[string]interface{}{
		"listingId": listingID,
		"newPrice":  newPrice,
	})
	return nil
}

func (c *RESTClient) ApplyDiscount(ctx context.Context, listingID string, discountPercent float64) error {
	err := c.patch(ctx, "apply-discount", "/listings/"+url.PathEscape(listingID), map[string]interface{}{
		"discountPercent": discountPercent,
	})
	if err != nil {
		if stdErr := errors.Normalize(err); stdErr.Code == errors.ErrCodeResourceNotFound {
			return errors.NewResourceNotFoundError("listing", listingID)
		}
		return err
	}

	c.logger.Info("listing discount applied", map[string]interface{}{
		"listingId":       listingID,
		"discountPercent": discountPercent,
	})
	return nil
}
