// internal/dispatch/registry.go
package dispatch

import (
	"time"

	"insight-service/internal/common/config"
	"insight-service/internal/common/errors"
	"insight-service/pkg/registry"
)

// Action codes sent by the dashboard cards.
const (
	CodePricingAnalyze  = "PRICING_ANALYZE"
	CodePricingApply    = "PRICING_APPLY"
	CodeMarketAnalyze   = "MARKET_ANALYZE"
	CodeReviewAnalyze   = "REVIEW_ANALYZE"
	CodeBookingAnalyze  = "BOOKING_ANALYZE"
	CodeBookingDiscount = "BOOKING_DISCOUNT"
)

// Agent names reported in the response envelope.
const (
	AgentPricing = "DemandPricingAgent"
	AgentMarket  = "MarketTrendAgent"
	AgentReview  = "ReviewAnalysisAgent"
	AgentBooking = "BookingTrendAgent"
)

// ActionDescriptor binds one action code to its handler metadata. Descriptors
// are created once at startup and never mutated.
type ActionDescriptor struct {
	Code            string
	Agent           string
	Operation       string // human name used in validation messages
	Description     string
	CardType        string
	RequiredFields  []string
	HasActionButton bool
	Write           bool

	// ContextSchema, when set, is a JSON schema applied to the request's
	// additional_context bag.
	ContextSchema map[string]interface{}
}

// numberContext builds a schema allowing the named optional numeric fields
// and nothing else.
func numberContext(fields ...string) map[string]interface{} {
	properties := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		properties[f] = map[string]interface{}{"type": "number"}
	}
	return map[string]interface{}{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}
}

// actionTable is the closed set of supported actions. Order matters for
// /action-codes output.
var actionTable = []*ActionDescriptor{
	{
		Code:            CodePricingAnalyze,
		Agent:           AgentPricing,
		Operation:       "pricing analysis",
		Description:     "Analyze demand and optimize pricing",
		CardType:        "pricing",
		RequiredFields:  []string{"listing_id"},
		HasActionButton: true,
	},
	{
		Code:           CodePricingApply,
		Agent:          AgentPricing,
		Operation:      "price change",
		Description:    "Apply the suggested price change",
		CardType:       "pricing",
		RequiredFields: []string{"listing_id", "new_price"},
		Write:          true,
		ContextSchema:  numberContext("expected_price"),
	},
	{
		Code:           CodeMarketAnalyze,
		Agent:          AgentMarket,
		Operation:      "market analysis",
		Description:    "Analyze market trends and portfolio fit",
		CardType:       "market",
		RequiredFields: []string{"owner_id"},
	},
	{
		Code:           CodeReviewAnalyze,
		Agent:          AgentReview,
		Operation:      "review analysis",
		Description:    "Analyze review sentiment and themes",
		CardType:       "review",
		RequiredFields: []string{"listing_id"},
	},
	{
		Code:            CodeBookingAnalyze,
		Agent:           AgentBooking,
		Operation:       "booking analysis",
		Description:     "Analyze booking duration and occupancy",
		CardType:        "booking",
		RequiredFields:  []string{"listing_id"},
		HasActionButton: true,
	},
	{
		Code:           CodeBookingDiscount,
		Agent:          AgentBooking,
		Operation:      "discount application",
		Description:    "Record a longer-stay discount",
		CardType:       "booking",
		RequiredFields: []string{"listing_id", "discount_percent"},
		Write:          true,
	},
}

// Registry resolves action codes to descriptors. Population happens once;
// lookups are read-only.
type Registry struct {
	descriptors map[string]*ActionDescriptor
	order       []string
	disabled    map[string]bool
}

// NewRegistry builds the registry from the static action table. Actions
// explicitly disabled in configuration stay listed but refuse dispatch.
func NewRegistry(cfg config.ActionsConfig) *Registry {
	r := &Registry{
		descriptors: make(map[string]*ActionDescriptor, len(actionTable)),
		disabled:    make(map[string]bool),
	}
	for _, desc := range actionTable {
		r.descriptors[desc.Code] = desc
		r.order = append(r.order, desc.Code)
		if hc, ok := cfg.Handlers[desc.Code]; ok && !hc.Enabled {
			r.disabled[desc.Code] = true
		}
	}
	return r
}

// Lookup resolves an action code.
func (r *Registry) Lookup(actionCode string) (*ActionDescriptor, error) {
	desc, ok := r.descriptors[actionCode]
	if !ok {
		return nil, errors.NewUnknownActionCodeError(actionCode)
	}
	if r.disabled[actionCode] {
		return nil, errors.NewActionDisabledError(actionCode)
	}
	return desc, nil
}

// List returns all descriptors in table order, including disabled ones.
func (r *Registry) List() []*ActionDescriptor {
	out := make([]*ActionDescriptor, 0, len(r.order))
	for _, code := range r.order {
		out = append(out, r.descriptors[code])
	}
	return out
}

// Enabled reports whether an action accepts dispatch.
func (r *Registry) Enabled(actionCode string) bool {
	_, known := r.descriptors[actionCode]
	return known && !r.disabled[actionCode]
}

// ExportDocument renders the registry in its serializable catalogue form for
// /action-codes and the registry-export tool.
func (r *Registry) ExportDocument(version string) *registry.ActionRegistry {
	doc := &registry.ActionRegistry{
		Version:     version,
		LastUpdated: time.Now().UTC().Format("2006-01-02"),
	}
	for _, desc := range r.List() {
		doc.Actions = append(doc.Actions, registry.Action{
			Code:            desc.Code,
			Agent:           desc.Agent,
			Description:     desc.Description,
			CardType:        desc.CardType,
			RequiredParams:  desc.RequiredFields,
			HasActionButton: desc.HasActionButton,
			Write:           desc.Write,
			Enabled:         !r.disabled[desc.Code],
		})
	}
	return doc
}

// ApplyDocument overlays enable/disable flags from a registry document, so
// deployments can toggle actions by editing the exported JSON instead of the
// service config. Codes the compiled table does not know are ignored.
func (r *Registry) ApplyDocument(doc *registry.ActionRegistry) {
	for _, action := range doc.Actions {
		if _, known := r.descriptors[action.Code]; !known {
			continue
		}
		if action.Enabled {
			delete(r.disabled, action.Code)
		} else {
			r.disabled[action.Code] = true
		}
	}
}
