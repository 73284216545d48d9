package onlinecharge

import (
	"github.com/shopspring/decimal"

	"github.com/cheerclub/billing-api/internal/utils"
)

type chargeRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	ExpiresOn   string          `json:"expiresOn"`
	Category    Category        `json:"category"`
	Active      *bool           `json:"active"`
}

func (r chargeRequest) input() (ChargeInput, error) {
	in := ChargeInput{
		Title:       r.Title,
		Description: r.Description,
		Amount:      r.Amount,
		Category:    r.Category,
		Active:      r.Active,
	}
	d, err := utils.ParseDate("expiresOn", r.ExpiresOn)
	if err != nil {
		return ChargeInput{}, err
	}
	if !d.IsZero() {
		in.ExpiresOn = &d
	}
	return in, nil
}

type createChargeResponse struct {
	Charge     *Charge        `json:"charge"`
	Generation GenerateResult `json:"generation"`
}

type generateResponse struct {
	Created int `json:"created"`
}

type payRequest struct {
	PaymentMethod string `json:"paymentMethod"`
}
