// internal/agents/pricing/config.go
package pricing

import "time"

// Window is a date range with elevated expected demand (public holidays).
type Window struct {
	Name  string
	Start time.Time
	End   time.Time
}

type Config struct {
	// Non-zero suggestions are clamped to [MinAdjustPercent, MaxAdjustPercent].
	MinAdjustPercent    float64
	MaxAdjustPercent    float64
	StrongDemandPercent float64
	MildDemandPercent   float64
	DecreasePercent     float64

	HolidayWindows []Window
	RecentWindow   time.Duration

	// Now is overridable in tests.
	Now func() time.Time
}

func DefaultConfig() *Config {
	return &Config{
		MinAdjustPercent:    5.0,
		MaxAdjustPercent:    20.0,
		StrongDemandPercent: 15.0,
		MildDemandPercent:   5.0,
		DecreasePercent:     10.0,
		HolidayWindows: []Window{
			{Name: "Christmas/New Year", Start: date(2025, 12, 20), End: date(2026, 1, 5)},
			{Name: "Chinese New Year", Start: date(2026, 1, 25), End: date(2026, 2, 5)},
			{Name: "Easter", Start: date(2026, 3, 28), End: date(2026, 4, 5)},
		},
		RecentWindow: 30 * 24 * time.Hour,
		Now:          time.Now,
	}
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
