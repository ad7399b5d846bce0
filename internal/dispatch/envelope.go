// internal/dispatch/envelope.go
package dispatch

import (
	"encoding/json"
	"fmt"

	"insight-service/internal/common/errors"
)

// Request is the normalized inbound card action. Pointer fields distinguish
// "absent" from zero values. AdditionalContext is an open bag; each handler
// extracts only the typed fields it consumes.
type Request struct {
	ActionCode        string                 `json:"action_code"`
	ListingID         string                 `json:"listing_id,omitempty"`
	OwnerID           string                 `json:"owner_id,omitempty"`
	UserID            string                 `json:"user_id,omitempty"`
	NewPrice          *float64               `json:"new_price,omitempty"`
	DiscountPercent   *float64               `json:"discount_percent,omitempty"`
	TokenID           string                 `json:"token_id,omitempty"`
	AdditionalContext map[string]interface{} `json:"additional_context,omitempty"`
}

// Envelope is the uniform response wrapper. Error is non-nil exactly when
// Success is false, and Data is empty whenever Success is false.
type Envelope struct {
	Success          bool                   `json:"success"`
	ActionCode       string                 `json:"action_code"`
	Agent            string                 `json:"agent"`
	Data             map[string]interface{} `json:"data"`
	ShowActionButton bool                   `json:"show_action_button"`
	SessionID        string                 `json:"session_id,omitempty"`
	Error            *string                `json:"error"`
}

func successEnvelope(actionCode, agent string, result interface{}, showActionButton bool) *Envelope {
	data, err := toDataMap(result)
	if err != nil {
		return errorEnvelope(actionCode, agent, errors.NewInternalError(fmt.Errorf("encode result: %w", err)))
	}
	return &Envelope{
		Success:          true,
		ActionCode:       actionCode,
		Agent:            agent,
		Data:             data,
		ShowActionButton: showActionButton,
	}
}

func errorEnvelope(actionCode, agent string, err error) *Envelope {
	message := errors.Normalize(err).Message
	return &Envelope{
		Success:    false,
		ActionCode: actionCode,
		Agent:      agent,
		Data:       map[string]interface{}{},
		Error:      &message,
	}
}

// toDataMap flattens a typed result into the envelope's generic data mapping
// through its JSON form, so the wire shape matches the struct tags.
func toDataMap(result interface{}) (map[string]interface{}, error) {
	if result == nil {
		return map[string]interface{}{}, nil
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return data, nil
}
