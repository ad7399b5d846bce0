// internal/agents/market/config.go
package market

type Config struct {
	// ZeroOnEmpty returns a zero-valued success payload instead of an error
	// when the owner has no listings.
	ZeroOnEmpty bool

	// TopTrendCount limits the trending-type list.
	TopTrendCount int
}

func DefaultConfig() *Config {
	return &Config{
		TopTrendCount: 5,
	}
}
