package entities

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// ChargeStatus is the provider-reported lifecycle status of a charge.
//
// The provider owns this vocabulary and may introduce values we have never
// seen. Only the terminal values below have meaning here; everything else is
// treated as "still pending" and must keep the polling loop alive.

type ChargeStatus string

const (
	ChargeStatusInitiated ChargeStatus = "INITIATED"
	ChargeStatusCaptured  ChargeStatus = "CAPTURED"
	ChargeStatusFailed    ChargeStatus = "FAILED"
	ChargeStatusDeclined  ChargeStatus = "DECLINED"
)

// Succeeded reports whether the charge settled successfully.
func (s ChargeStatus) Succeeded() bool {
	return s == ChargeStatusCaptured
}

// Failed reports whether the provider rejected the charge for good.
func (s ChargeStatus) Failed() bool {
	return s == ChargeStatusFailed || s == ChargeStatusDeclined
}

// Terminal reports whether the status ends the charge lifecycle. A
// non-terminal status, whatever its value, means the attempt is still in
// flight.
func (s ChargeStatus) Terminal() bool {
	return s.Succeeded() || s.Failed()
}

// ChargeTransaction carries the step-up authentication redirect. The provider
// includes it only when the payer must complete 3-D Secure before the charge
// can settle.
type ChargeTransaction struct {
	URL string `json:"url"`
}

// ChargeProviderResponse is the provider's human-readable outcome detail,
// present on failed/declined charges.
type ChargeProviderResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Charge is a semantically partial view over the provider's charge record.
//
// Only the fields the relay and the checkout coordinator inspect are named;
// the full provider body is kept in Raw and forwarded verbatim, so unknown
// provider fields survive the round trip untouched.
//
// From our side a Charge is immutable except for Status, which the provider
// advances monotonically towards a terminal value.

type Charge struct {
	ID       string          `json:"id"`
	Status   ChargeStatus    `json:"status"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`

	Transaction *ChargeTransaction      `json:"transaction,omitempty"`
	Response    *ChargeProviderResponse `json:"response,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// ParseCharge decodes the named fields out of a raw provider body and keeps
// the body itself for verbatim pass-through.
func ParseCharge(raw json.RawMessage) (Charge, error) {
	var c Charge
	if err := json.Unmarshal(raw, &c); err != nil {
		return Charge{}, err
	}
	c.Raw = append(json.RawMessage(nil), raw...)
	return c, nil
}

// RequiresAuthentication reports whether the payer must visit the provider's
// redirect URL before the charge can settle.
func (c Charge) RequiresAuthentication() bool {
	return c.Transaction != nil && c.Transaction.URL != ""
}

// AuthenticationURL returns the step-up redirect target, or "" when none is
// required.
func (c Charge) AuthenticationURL() string {
	if c.Transaction == nil {
		return ""
	}
	return c.Transaction.URL
}

// FailureMessage returns the provider's failure reason, falling back to the
// raw status when the provider sent no message.
func (c Charge) FailureMessage() string {
	if c.Response != nil && c.Response.Message != "" {
		return c.Response.Message
	}
	return string(c.Status)
}

// ChargeRequest is the domain command for creating one charge attempt.
//
// Token is a single-use opaque reference produced by the capture widget; it is
// consumed by the provider call and never persisted. Amount and Currency are
// required (the legacy page's amount=1/"SAR" placeholders are opt-in, see the
// use case).
type ChargeRequest struct {
	Token    string
	Amount   decimal.Decimal
	Currency string
}
