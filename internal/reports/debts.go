package reports

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/cheerclub/billing-api/internal/auth"
	"github.com/cheerclub/billing-api/internal/dues"
	"github.com/cheerclub/billing-api/internal/onlinecharge"
)

// Debt groups one payer's unsettled dues and online obligations.
type Debt struct {
	PayerID    uint                      `json:"payerId"`
	PayerName  string                    `json:"payerName"`
	PayerEmail string                    `json:"payerEmail"`
	Dues       []dues.Due                `json:"dues"`
	Online     []onlinecharge.Obligation `json:"online"`
	Total      decimal.Decimal           `json:"total"`
}

// Debts lists outstanding balances per payer. Non-admins, and admins asking
// for their own, only see the caller's debt.
func (a *Aggregator) Debts(ctx context.Context, p auth.Principal, mine bool) ([]Debt, error) {
	var payer uint
	if mine || !p.IsAdmin() {
		payer = p.UserID
	}
	db := a.db.WithContext(ctx)

	ds, err := a.repo.OutstandingDues(db, payer)
	if err != nil {
		return nil, err
	}
	online, err := a.repo.OutstandingOnline(db, payer)
	if err != nil {
		return nil, err
	}

	byPayer := make(map[uint]*Debt)
	get := func(id uint) *Debt {
		d, ok := byPayer[id]
		if !ok {
			d = &Debt{PayerID: id, Dues: []dues.Due{}, Online: []onlinecharge.Obligation{}, Total: decimal.Zero}
			byPayer[id] = d
		}
		return d
	}
	for _, due := range ds {
		d := get(due.PayerID)
		d.Dues = append(d.Dues, due)
		d.Total = d.Total.Add(due.TotalAmount)
	}
	for _, o := range online {
		d := get(o.PayerID)
		d.Online = append(d.Online, o)
		d.Total = d.Total.Add(o.Amount)
	}

	ids := make([]uint, 0, len(byPayer))
	for id := range byPayer {
		ids = append(ids, id)
	}
	payers, err := a.accounts.FindByIDs(db, ids)
	if err != nil {
		return nil, err
	}
	for _, acc := range payers {
		if d, ok := byPayer[acc.ID]; ok {
			d.PayerName = acc.Name
			d.PayerEmail = acc.Email
		}
	}

	out := make([]Debt, 0, len(byPayer))
	for _, d := range byPayer {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Total.Equal(out[j].Total) {
			return out[i].Total.GreaterThan(out[j].Total)
		}
		return out[i].PayerID < out[j].PayerID
	})
	return out, nil
}
