package interfaces

import (
	"context"
	"encoding/json"
	"fmt"
)

// IChargeGateway abstracts the external payment provider's charge API.
//
// Payloads and responses are raw JSON on purpose: the relay's contract is to
// forward the provider body verbatim, never to reinterpret provider semantics.
type IChargeGateway interface {
	CreateCharge(ctx context.Context, payload json.RawMessage) (json.RawMessage, error)
	GetCharge(ctx context.Context, chargeID string) (json.RawMessage, error)
}

// ProviderError is a non-2xx answer from the provider. Body holds the
// provider's structured error payload when one was returned, so callers can
// pass provider-specific reasons through to the client untouched.
type ProviderError struct {
	StatusCode int
	Body       json.RawMessage
}

func (e *ProviderError) Error() string {
	if e.HasBody() {
		return fmt.Sprintf("provider returned status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("provider returned status %d", e.StatusCode)
}

// HasBody reports whether the provider sent a structured (JSON) error body.
func (e *ProviderError) HasBody() bool {
	return len(e.Body) > 0 && json.Valid(e.Body)
}
