package models

// Listing represents a rentable item or property tracked by the marketplace backend.
type Listing struct {
	ID              string   `json:"id" db:"id"`
	OwnerID         string   `json:"ownerId" db:"owner_id"`
	Title           string   `json:"title" db:"title"`
	Description     string   `json:"description,omitempty" db:"description"`
	BasePrice       float64  `json:"basePrice" db:"base_price"`
	Status          string   `json:"status" db:"status"`
	Type            string   `json:"type" db:"type"`
	Images          []string `json:"images,omitempty" db:"images"`
	DiscountPercent float64  `json:"discountPercent,omitempty" db:"discount_percent"`
}
