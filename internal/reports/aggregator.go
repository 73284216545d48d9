// Package reports builds the club's financial summary out of every revenue
// source and the expense book.
package reports

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cheerclub/billing-api/internal/accounts"
	"github.com/cheerclub/billing-api/internal/apperr"
	"github.com/cheerclub/billing-api/internal/billing"
	"github.com/cheerclub/billing-api/internal/dues"
	"github.com/cheerclub/billing-api/internal/enrollment"
	"github.com/cheerclub/billing-api/internal/expenses"
	"github.com/cheerclub/billing-api/internal/onlinecharge"
	"github.com/cheerclub/billing-api/internal/roster"
	"github.com/cheerclub/billing-api/internal/utils"
)

type Category string

const (
	CategoryEnrollment        Category = "enrollment"
	CategoryRecurringDues     Category = "recurring_dues"
	CategoryOnlineMusic       Category = "online_music"
	CategoryOnlineCompetition Category = "online_competition"
	CategoryOnlineOther       Category = "online_other"
	CategoryManualPayments    Category = "manual_payments"
	CategoryExpenses          Category = "expenses"
)

// Categories in display order.
var Categories = []Category{
	CategoryEnrollment,
	CategoryRecurringDues,
	CategoryOnlineMusic,
	CategoryOnlineCompetition,
	CategoryOnlineOther,
	CategoryManualPayments,
	CategoryExpenses,
}

const all = "all"

// Filter selects ledger rows. Zero dates leave that end of the window open.
type Filter struct {
	From     time.Time
	To       time.Time
	Category string
	Method   string
	Status   string
}

func (f Filter) normalize() (Filter, error) {
	f.Category = strings.ToLower(strings.TrimSpace(f.Category))
	f.Method = strings.ToLower(strings.TrimSpace(f.Method))
	f.Status = strings.ToLower(strings.TrimSpace(f.Status))
	if f.Category == "" {
		f.Category = all
	}
	if f.Method == "" {
		f.Method = all
	}
	if f.Status == "" {
		f.Status = "paid"
	}
	if f.Category != all && !knownCategory(Category(f.Category)) {
		return f, apperr.Validation("unknown report category")
	}
	switch f.Status {
	case all, "pending", "paid", "partial", "overdue", "waived":
	default:
		return f, apperr.Validation("unknown status filter")
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return f, apperr.Validation("to must not be before from")
	}
	return f, nil
}

func knownCategory(c Category) bool {
	for _, k := range Categories {
		if k == c {
			return true
		}
	}
	return false
}

// Entry is one movement of the ledger. Expenses carry negative amounts.
type Entry struct {
	ID          uint            `json:"id"`
	Category    Category        `json:"category"`
	Method      string          `json:"method"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
}

type AppliedFilter struct {
	From     *string `json:"from"`
	To       *string `json:"to"`
	Category string  `json:"category"`
	Method   string  `json:"method"`
	Status   string  `json:"status"`
}

type Report struct {
	Totals          map[Category]decimal.Decimal `json:"totals"`
	OnlineTotal     decimal.Decimal              `json:"onlineTotal"`
	TotalIncome     decimal.Decimal              `json:"totalIncome"`
	TotalExpenses   decimal.Decimal              `json:"totalExpenses"`
	Balance         decimal.Decimal              `json:"balance"`
	OutstandingDebt decimal.Decimal              `json:"outstandingDebt"`
	Ledger          []Entry                      `json:"ledger"`
	Filter          AppliedFilter                `json:"filter"`
}

type Aggregator struct {
	db       *gorm.DB
	repo     Repository
	expenses expenses.Repository
	athletes roster.Repository
	accounts accounts.Repository
	log      *zap.Logger
}

func NewAggregator(db *gorm.DB, log *zap.Logger) *Aggregator {
	return &Aggregator{
		db:       db,
		repo:     NewRepository(),
		expenses: expenses.NewRepository(),
		athletes: roster.NewRepository(),
		accounts: accounts.NewRepository(),
		log:      log,
	}
}

// onlineCategory maps a charge category onto its report category. Monthly
// charges are reported together with recurring dues.
func onlineCategory(c *onlinecharge.Charge) Category {
	if c == nil {
		return CategoryOnlineOther
	}
	switch c.Category {
	case onlinecharge.CategoryMonthly:
		return CategoryRecurringDues
	case onlinecharge.CategoryMusic:
		return CategoryOnlineMusic
	case onlinecharge.CategoryCompetition:
		return CategoryOnlineCompetition
	default:
		return CategoryOnlineOther
	}
}

func rowDate(paidAt *time.Time, createdAt time.Time) string {
	if paidAt != nil {
		return paidAt.UTC().Format(utils.DateLayout)
	}
	return createdAt.UTC().Format(utils.DateLayout)
}

func orDefault(method, def string) string {
	if method == "" {
		return def
	}
	return method
}

// collector applies the category, method and window filters to each row.
type collector struct {
	f        Filter
	from, to string
	entries  []Entry
	totals   map[Category]decimal.Decimal
}

func newCollector(f Filter) *collector {
	c := &collector{f: f, totals: make(map[Category]decimal.Decimal, len(Categories))}
	for _, k := range Categories {
		c.totals[k] = decimal.Zero
	}
	if !f.From.IsZero() {
		c.from = f.From.Format(utils.DateLayout)
	}
	if !f.To.IsZero() {
		c.to = f.To.Format(utils.DateLayout)
	}
	return c
}

func (c *collector) add(e Entry) {
	if c.f.Category != all && Category(c.f.Category) != e.Category {
		return
	}
	if c.f.Method != all && strings.ToLower(e.Method) != c.f.Method {
		return
	}
	if c.from != "" && e.Date < c.from {
		return
	}
	if c.to != "" && e.Date > c.to {
		return
	}
	c.entries = append(c.entries, e)
	c.totals[e.Category] = c.totals[e.Category].Add(e.Amount.Abs())
}

// Build scans every source and returns totals, the merged ledger and the
// current outstanding debt.
func (a *Aggregator) Build(ctx context.Context, f Filter) (*Report, error) {
	f, err := f.normalize()
	if err != nil {
		return nil, err
	}
	db := a.db.WithContext(ctx)
	status := f.Status
	if status == all {
		status = ""
	}
	c := newCollector(f)

	enrollments, err := a.repo.Enrollments(db, status)
	if err != nil {
		return nil, err
	}
	dueRows, err := a.repo.Dues(db, status)
	if err != nil {
		return nil, err
	}
	names, err := a.athleteNames(db, enrollments, dueRows)
	if err != nil {
		return nil, err
	}

	for _, o := range enrollments {
		amount := o.AmountPaid
		if amount.IsZero() {
			amount = o.TotalAmount
		}
		c.add(Entry{
			ID:          o.ID,
			Category:    CategoryEnrollment,
			Method:      orDefault(o.PaymentMethod, billing.MethodWebpay),
			Amount:      amount,
			Date:        rowDate(o.PaidAt, o.CreatedAt),
			Description: "Enrollment " + nameOr(names, o.AthleteID),
		})
	}
	for _, d := range dueRows {
		c.add(Entry{
			ID:          d.ID,
			Category:    CategoryRecurringDues,
			Method:      orDefault(d.PaymentMethod, billing.MethodManual),
			Amount:      d.TotalAmount,
			Date:        rowDate(d.PaidAt, d.CreatedAt),
			Description: fmt.Sprintf("Due %02d/%d - %s", d.Month, d.Year, nameOr(names, d.AthleteID)),
		})
	}

	online, err := a.repo.OnlineObligations(db, status)
	if err != nil {
		return nil, err
	}
	for _, o := range online {
		desc := "Online charge"
		if o.Charge != nil {
			desc = o.Charge.Title
		}
		c.add(Entry{
			ID:          o.ID,
			Category:    onlineCategory(o.Charge),
			Method:      orDefault(o.PaymentMethod, billing.MethodWebpay),
			Amount:      o.Amount,
			Date:        rowDate(o.PaidAt, o.CreatedAt),
			Description: desc,
		})
	}

	manual, err := a.repo.UnlinkedManualPayments(db)
	if err != nil {
		return nil, err
	}
	for _, p := range manual {
		c.add(Entry{
			ID:          p.ID,
			Category:    CategoryManualPayments,
			Method:      orDefault(p.Method, billing.MethodManual),
			Amount:      p.Amount,
			Date:        rowDate(nil, p.CreatedAt),
			Description: p.Concept,
		})
	}

	spent, err := a.expenses.List(db, expenses.Filter{From: f.From, To: f.To})
	if err != nil {
		return nil, err
	}
	for _, e := range spent {
		c.add(Entry{
			ID:          e.ID,
			Category:    CategoryExpenses,
			Method:      orDefault(e.Method, billing.MethodCash),
			Amount:      e.Amount.Neg(),
			Date:        e.SpentOn.UTC().Format(utils.DateLayout),
			Description: e.Concept,
		})
	}

	debt, err := a.outstandingDebt(db)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(c.entries, func(i, j int) bool {
		x, y := c.entries[i], c.entries[j]
		if x.Date != y.Date {
			return x.Date > y.Date
		}
		if x.Category != y.Category {
			return x.Category < y.Category
		}
		return x.ID < y.ID
	})

	rep := &Report{
		Totals:          c.totals,
		OnlineTotal:     c.totals[CategoryOnlineMusic].Add(c.totals[CategoryOnlineCompetition]).Add(c.totals[CategoryOnlineOther]),
		TotalIncome:     decimal.Zero,
		TotalExpenses:   c.totals[CategoryExpenses],
		OutstandingDebt: debt,
		Ledger:          c.entries,
		Filter: AppliedFilter{
			Category: f.Category,
			Method:   f.Method,
			Status:   f.Status,
		},
	}
	if rep.Ledger == nil {
		rep.Ledger = []Entry{}
	}
	for _, k := range Categories {
		if k != CategoryExpenses {
			rep.TotalIncome = rep.TotalIncome.Add(c.totals[k])
		}
	}
	rep.Balance = rep.TotalIncome.Sub(rep.TotalExpenses)
	if c.from != "" {
		rep.Filter.From = &c.from
	}
	if c.to != "" {
		rep.Filter.To = &c.to
	}
	a.log.Debug("report built",
		zap.Int("entries", len(rep.Ledger)),
		zap.Stringer("income", rep.TotalIncome),
		zap.Stringer("expenses", rep.TotalExpenses))
	return rep, nil
}

// outstandingDebt is the global unsettled amount; the date window does not
// apply to it.
func (a *Aggregator) outstandingDebt(db *gorm.DB) (decimal.Decimal, error) {
	total := decimal.Zero
	ds, err := a.repo.OutstandingDues(db, 0)
	if err != nil {
		return total, err
	}
	for _, d := range ds {
		total = total.Add(d.TotalAmount)
	}
	online, err := a.repo.OutstandingOnline(db, 0)
	if err != nil {
		return total, err
	}
	for _, o := range online {
		total = total.Add(o.Amount)
	}
	return total, nil
}

func (a *Aggregator) athleteNames(db *gorm.DB, es []enrollment.Obligation, ds []dues.Due) (map[uint]string, error) {
	ids := make([]uint, 0, len(es)+len(ds))
	for _, o := range es {
		ids = append(ids, o.AthleteID)
	}
	for _, d := range ds {
		ids = append(ids, d.AthleteID)
	}
	out := make(map[uint]string)
	if len(ids) == 0 {
		return out, nil
	}
	athletes, err := a.athletes.FindByIDs(db, ids)
	if err != nil {
		return nil, err
	}
	for _, at := range athletes {
		out[at.ID] = at.FullName
	}
	return out, nil
}

func nameOr(names map[uint]string, id uint) string {
	if n, ok := names[id]; ok && n != "" {
		return n
	}
	return fmt.Sprintf("#%d", id)
}
