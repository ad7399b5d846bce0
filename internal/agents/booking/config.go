// internal/agents/booking/config.go
package booking

type Config struct {
	// A discount is recommended when the average stay falls under
	// MinHealthyDuration days or occupancy falls under MinHealthyOccupancy.
	MinHealthyDuration  float64
	MinHealthyOccupancy float64

	// DefaultDiscountPercent is suggested when no explicit percentage is
	// requested.
	DefaultDiscountPercent float64
	MaxDiscountPercent     float64
}

func DefaultConfig() *Config {
	return &Config{
		MinHealthyDuration:     2.0,
		MinHealthyOccupancy:    0.5,
		DefaultDiscountPercent: 10.0,
		MaxDiscountPercent:     20.0,
	}
}
