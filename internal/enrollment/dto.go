package enrollment

import (
	"github.com/shopspring/decimal"

	"github.com/cheerclub/billing-api/internal/utils"
)

type periodRequest struct {
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	StartsOn        string          `json:"startsOn"`
	EndsOn          string          `json:"endsOn"`
	Fee             decimal.Decimal `json:"fee"`
	SiblingDiscount decimal.Decimal `json:"siblingDiscount"`
	Status          PeriodStatus    `json:"status"`
}

func (r periodRequest) input() (PeriodInput, error) {
	starts, err := utils.ParseDate("startsOn", r.StartsOn)
	if err != nil {
		return PeriodInput{}, err
	}
	ends, err := utils.ParseDate("endsOn", r.EndsOn)
	if err != nil {
		return PeriodInput{}, err
	}
	return PeriodInput{
		Name:            r.Name,
		Description:     r.Description,
		StartsOn:        starts,
		EndsOn:          ends,
		Fee:             r.Fee,
		SiblingDiscount: r.SiblingDiscount,
		Status:          r.Status,
	}, nil
}

// createRequest deliberately has no amount fields.
type createRequest struct {
	AthleteID     uint   `json:"athleteId"`
	PeriodID      uint   `json:"periodId"`
	PaymentMethod string `json:"paymentMethod"`
	Receipt       string `json:"receipt"`
}

type receiptRequest struct {
	Receipt string `json:"receipt"`
}
