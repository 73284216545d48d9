// Package gateway talks to the card-payment gateway that hosts the payer's
// checkout (Webpay Plus).
package gateway

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Client is the two-phase handshake billing drives: Create opens a checkout
// and Commit collects its outcome after the payer returns.
type Client interface {
	Create(ctx context.Context, buyOrder, sessionID string, amount decimal.Decimal, returnURL string) (*CreateResult, error)
	Commit(ctx context.Context, token string) (*CommitResult, error)
}

type CreateResult struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

type CommitResult struct {
	// ResponseCode is nil when the gateway omitted it.
	ResponseCode      *int            `json:"response_code"`
	Status            string          `json:"status"`
	Amount            decimal.Decimal `json:"amount"`
	AuthorizationCode string          `json:"authorization_code"`
	BuyOrder          string          `json:"buy_order"`
	SessionID         string          `json:"session_id"`
	// Raw is the undecoded response body, kept for the transaction record.
	Raw json.RawMessage `json:"-"`
}

// Approved reports whether the commit authorized the payment. A missing
// response code only counts when acceptMissing is set.
func (r *CommitResult) Approved(acceptMissing bool) bool {
	if r.ResponseCode == nil {
		return acceptMissing
	}
	return *r.ResponseCode == 0
}
