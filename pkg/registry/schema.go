// pkg/registry/schema.go
package registry

// ActionRegistry is the versioned, serializable catalogue of card actions the
// service dispatches. The UI consumes it from /action-codes; the
// registry-export tool writes it to disk for frontend builds.
type ActionRegistry struct {
	Version     string   `json:"version"`
	LastUpdated string   `json:"lastUpdated"`
	Actions     []Action `json:"actions"`
}

type Action struct {
	Code            string   `json:"code"`
	Agent           string   `json:"agent"`
	Description     string   `json:"description"`
	CardType        string   `json:"cardType"`
	RequiredParams  []string `json:"requiredParams"`
	HasActionButton bool     `json:"hasActionButton"`
	Write           bool     `json:"write"`
	Enabled         bool     `json:"enabled"`
}
