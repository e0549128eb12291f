package request

import (
	"strings"

	"taprelay/internal/domain/entities"

	"github.com/shopspring/decimal"
)

// ChargeCreateRequest is the untrusted client payload for POST /api/charge.
//
// Only token/amount/currency are honored. Anything else the client sends
// (3-D Secure flags included) is dropped: the server decides those.
type ChargeCreateRequest struct {
	Token    string          `json:"token" binding:"required"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

func (r ChargeCreateRequest) ToChargeRequest() entities.ChargeRequest {
	return entities.ChargeRequest{
		Token:    strings.TrimSpace(r.Token),
		Amount:   r.Amount,
		Currency: strings.TrimSpace(r.Currency),
	}
}
