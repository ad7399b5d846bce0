// internal/dispatch/dispatcher.go
// Package dispatch is the action-routing core: it resolves inbound action
// codes through the registry, validates inputs, invokes the bound analysis
// routine and assembles the uniform response envelope. No error escapes a
// Handle call unconverted.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"insight-service/internal/agents/booking"
	"insight-service/internal/agents/market"
	"insight-service/internal/agents/pricing"
	"insight-service/internal/agents/review"
	"insight-service/internal/common/errors"
	"insight-service/internal/common/logger"
	"insight-service/internal/common/metrics"
	"insight-service/internal/common/observability"
)

// PricingAgent is the slice of the pricing analyzer the dispatcher consumes.
type PricingAgent interface {
	Analyze(ctx context.Context, listingID string) (*pricing.Analysis, error)
	Apply(ctx context.Context, listingID string, newPrice float64, expectedPrice *float64) (*pricing.ApplyResult, error)
}

type MarketAgent interface {
	Analyze(ctx context.Context, ownerID string) (*market.Analysis, error)
}

type ReviewAgent interface {
	Analyze(ctx context.Context, listingID string) (*review.Analysis, error)
}

type BookingAgent interface {
	Analyze(ctx context.Context, listingID string) (*booking.Analysis, error)
	ApplyDiscount(ctx context.Context, listingID string, discountPercent float64) (*booking.DiscountResult, error)
}

type Dispatcher struct {
	registry *Registry
	sessions SessionStore
	pricing  PricingAgent
	market   MarketAgent
	review   ReviewAgent
	booking  BookingAgent
	obs      *observability.Observability
	logger   logger.Logger
}

func NewDispatcher(
	registry *Registry,
	sessions SessionStore,
	pricingAgent PricingAgent,
	marketAgent MarketAgent,
	reviewAgent ReviewAgent,
	bookingAgent BookingAgent,
	obs *observability.Observability,
	log logger.Logger,
) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		sessions: sessions,
		pricing:  pricingAgent,
		market:   marketAgent,
		review:   reviewAgent,
		booking:  bookingAgent,
		obs:      obs,
		logger:   log.WithFields(map[string]interface{}{"component": "dispatcher"}),
	}
}

// Handle routes one card action and always returns an envelope, never an
// error: every failure is converted at this boundary.
func (d *Dispatcher) Handle(ctx context.Context, req *Request) *Envelope {
	start := time.Now()

	desc, err := d.registry.Lookup(req.ActionCode)
	if err != nil {
		d.logger.Warn("action lookup failed", map[string]interface{}{
			"actionCode": req.ActionCode,
			"error":      err.Error(),
		})
		return d.finish(ctx, start, errorEnvelope(req.ActionCode, "", err), err)
	}

	if err := d.validate(desc, req); err != nil {
		return d.finish(ctx, start, errorEnvelope(req.ActionCode, desc.Agent, err), err)
	}

	result, showActionButton, err := d.invoke(ctx, desc, req)
	if err != nil {
		d.logger.WithError(err).Error("action failed", map[string]interface{}{
			"actionCode": req.ActionCode,
			"agent":      desc.Agent,
		})
		return d.finish(ctx, start, errorEnvelope(req.ActionCode, desc.Agent, err), err)
	}

	envelope := successEnvelope(req.ActionCode, desc.Agent, result, showActionButton)
	d.attachSession(ctx, req, envelope)
	return d.finish(ctx, start, envelope, nil)
}

// Preview answers a dry-run request. Write-class actions are answered by
// their read analogue so previews never touch backend state.
func (d *Dispatcher) Preview(ctx context.Context, actionCode, listingID, ownerID string) *Envelope {
	if _, err := d.registry.Lookup(actionCode); err != nil {
		return errorEnvelope(actionCode, "", err)
	}

	readCode := actionCode
	switch actionCode {
	case CodePricingApply:
		readCode = CodePricingAnalyze
	case CodeBookingDiscount:
		readCode = CodeBookingAnalyze
	}

	envelope := d.Handle(ctx, &Request{
		ActionCode: readCode,
		ListingID:  listingID,
		OwnerID:    ownerID,
	})
	// Report the code the caller asked about, not the analogue.
	envelope.ActionCode = actionCode
	return envelope
}

func (d *Dispatcher) validate(desc *ActionDescriptor, req *Request) error {
	for _, field := range desc.RequiredFields {
		var present bool
		switch field {
		case "listing_id":
			present = req.ListingID != ""
		case "owner_id":
			present = req.OwnerID != ""
		case "user_id":
			present = req.UserID != ""
		case "new_price":
			present = req.NewPrice != nil
		case "discount_percent":
			present = req.DiscountPercent != nil
		default:
			_, present = req.AdditionalContext[field]
		}
		if !present {
			return errors.NewMissingFieldError(field, desc.Operation)
		}
	}

	if desc.ContextSchema != nil && len(req.AdditionalContext) > 0 {
		result, err := gojsonschema.Validate(
			gojsonschema.NewGoLoader(desc.ContextSchema),
			gojsonschema.NewGoLoader(req.AdditionalContext),
		)
		if err != nil {
			return errors.NewInvalidContextError(err.Error())
		}
		if !result.Valid() {
			return errors.NewInvalidContextError(fmt.Sprintf("%v", result.Errors()))
		}
	}

	return nil
}

// invoke runs the bound routine. A panic inside a routine is captured and
// converted, preserving the envelope contract for the caller.
func (d *Dispatcher) invoke(ctx context.Context, desc *ActionDescriptor, req *Request) (result interface{}, showActionButton bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.WithError(fmt.Errorf("%v", r)).Error("action handler panic", map[string]interface{}{
				"actionCode": desc.Code,
			})
			result = nil
			showActionButton = false
			err = errors.NewInternalError(fmt.Errorf("action %s panicked: %v", desc.Code, r))
		}
	}()

	switch desc.Code {
	case CodePricingAnalyze:
		analysis, analyzeErr := d.pricing.Analyze(ctx, req.ListingID)
		if analyzeErr != nil {
			return nil, false, analyzeErr
		}
		return analysis, analysis.CanTakeAction, nil

	case CodePricingApply:
		applied, applyErr := d.pricing.Apply(ctx, req.ListingID, *req.NewPrice, contextFloat(req.AdditionalContext, "expected_price"))
		if applyErr != nil {
			return nil, false, applyErr
		}
		return applied, false, nil

	case CodeMarketAnalyze:
		analysis, analyzeErr := d.market.Analyze(ctx, req.OwnerID)
		if analyzeErr != nil {
			return nil, false, analyzeErr
		}
		return analysis, false, nil

	case CodeReviewAnalyze:
		analysis, analyzeErr := d.review.Analyze(ctx, req.ListingID)
		if analyzeErr != nil {
			return nil, false, analyzeErr
		}
		return analysis, false, nil

	case CodeBookingAnalyze:
		analysis, analyzeErr := d.booking.Analyze(ctx, req.ListingID)
		if analyzeErr != nil {
			return nil, false, analyzeErr
		}
		return analysis, analysis.CanTakeAction, nil

	case CodeBookingDiscount:
		applied, applyErr := d.booking.ApplyDiscount(ctx, req.ListingID, *req.DiscountPercent)
		if applyErr != nil {
			return nil, false, applyErr
		}
		return applied, false, nil
	}

	// The registry and this switch share the same table; a mismatch is a
	// programming error.
	return nil, false, errors.NewInternalError(fmt.Errorf("no handler bound for action %s", desc.Code))
}

func (d *Dispatcher) attachSession(ctx context.Context, req *Request, envelope *Envelope) {
	if req.UserID == "" || req.ListingID == "" || d.sessions == nil {
		return
	}
	session, err := d.sessions.GetOrCreate(ctx, req.UserID, req.ListingID)
	if err != nil {
		// Sessions are best-effort continuity, not correctness.
		d.logger.Warn("session lookup failed", map[string]interface{}{
			"userId":    req.UserID,
			"listingId": req.ListingID,
			"error":     err.Error(),
		})
		return
	}
	envelope.SessionID = session.Key
}

func (d *Dispatcher) finish(ctx context.Context, start time.Time, envelope *Envelope, cause error) *Envelope {
	duration := time.Since(start)

	// Unregistered codes are client input; collapsing them keeps the
	// action_code label set bounded.
	code := envelope.ActionCode
	if _, known := d.registry.descriptors[code]; !known {
		code = "unknown"
	}

	metrics.ActionsProcessed.WithLabelValues(code).Inc()
	metrics.ActionDuration.WithLabelValues(code).Observe(duration.Seconds())

	status := "success"
	if !envelope.Success {
		status = "error"
		metrics.ActionsFailed.WithLabelValues(code, string(errors.Normalize(cause).Code)).Inc()
	}
	if d.obs != nil {
		d.obs.RecordActionProcessed(ctx, code, status)
		d.obs.RecordActionDuration(ctx, code, duration)
	}
	return envelope
}

func contextFloat(contextBag map[string]interface{}, key string) *float64 {
	if contextBag == nil {
		return nil
	}
	switch v := contextBag[key].(type) {
	case float64:
		return &v
	case int:
		f := float64(v)
		return &f
	}
	return nil
}
