package response

import (
	"encoding/json"
	"errors"

	"taprelay/internal/domain/entities"
	"taprelay/internal/usecase/interfaces"
)

// ChargeEnvelope is the relay's wire format for both charge endpoints.
//
// On success Charge carries the provider body verbatim. On failure Error is
// the provider's structured error body when one exists, otherwise a
// `{message}` object.
type ChargeEnvelope struct {
	Success bool            `json:"success"`
	Charge  json.RawMessage `json:"charge,omitempty"`
	Error   json.RawMessage `json:"error,omitempty"`
}

// ErrorMessage is the fallback error body for failures without a structured
// provider payload.
type ErrorMessage struct {
	Message string `json:"message"`
}

func FromCharge(c entities.Charge) ChargeEnvelope {
	return ChargeEnvelope{Success: true, Charge: c.Raw}
}

func FromError(err error) ChargeEnvelope {
	var provErr *interfaces.ProviderError
	if errors.As(err, &provErr) && provErr.HasBody() {
		return ChargeEnvelope{Success: false, Error: provErr.Body}
	}
	return ChargeEnvelope{Success: false, Error: marshalMessage(err)}
}

func marshalMessage(err error) json.RawMessage {
	b, mErr := json.Marshal(ErrorMessage{Message: err.Error()})
	if mErr != nil {
		return json.RawMessage(`{"message":"internal error"}`)
	}
	return b
}

// HealthResponse is the GET /api/health body.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
