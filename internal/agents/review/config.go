// internal/agents/review/config.go
package review

type Config struct {
	// ZeroOnEmpty returns a "No Reviews" success payload instead of an
	// error when the listing has no reviews.
	ZeroOnEmpty bool

	// Average-rating thresholds for the satisfaction levels.
	SatisfiedThreshold float64
	NeutralThreshold   float64

	// TopThemeCount limits the recurring-themes list.
	TopThemeCount int
}

func DefaultConfig() *Config {
	return &Config{
		SatisfiedThreshold: 4.0,
		NeutralThreshold:   3.0,
		TopThemeCount:      5,
	}
}
