// Package app wires services and handlers into the HTTP API.
package app

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cheerclub/billing-api/internal/accounts"
	"github.com/cheerclub/billing-api/internal/auth"
	"github.com/cheerclub/billing-api/internal/autopay"
	"github.com/cheerclub/billing-api/internal/cards"
	"github.com/cheerclub/billing-api/internal/dues"
	"github.com/cheerclub/billing-api/internal/enrollment"
	"github.com/cheerclub/billing-api/internal/expenses"
	"github.com/cheerclub/billing-api/internal/gateway"
	"github.com/cheerclub/billing-api/internal/manualpayment"
	"github.com/cheerclub/billing-api/internal/onlinecharge"
	"github.com/cheerclub/billing-api/internal/reports"
	"github.com/cheerclub/billing-api/internal/webpay"
)

type Deps struct {
	DB      *gorm.DB
	Log     *zap.Logger
	Keys    *auth.Keys
	Gateway gateway.Client
	Locker  webpay.Locker
	// Verifiers accept bearer tokens besides the API's own keys.
	Verifiers []auth.Verifier
	Webpay    webpay.Options
}

type App struct {
	deps Deps

	Accounts    *accounts.Service
	Enrollments *enrollment.Service
	DuesConfig  *dues.ConfigService
	Dues        *dues.Service
	Cards       *cards.Service
	Generator   *onlinecharge.Generator
	Charges     *onlinecharge.Service
	Autopay     *autopay.Engine
	Broker      *webpay.Broker
	Manual      *manualpayment.Service
	Expenses    *expenses.Service
	Reports     *reports.Aggregator
}

func New(d Deps) *App {
	a := &App{deps: d}
	a.Accounts = accounts.NewService(d.DB, d.Keys, d.Log)
	a.Enrollments = enrollment.NewService(d.DB, d.Log)
	a.DuesConfig = dues.NewConfigService(d.DB)
	a.Dues = dues.NewService(d.DB, a.DuesConfig, d.Log)
	a.Cards = cards.NewService(d.DB, d.Log)
	a.Generator = onlinecharge.NewGenerator(d.DB, a.Cards, d.Log)
	a.Charges = onlinecharge.NewService(d.DB, a.Generator, d.Log)
	a.Autopay = autopay.NewEngine(d.DB, a.Cards, a.Charges, d.Log)
	a.Broker = webpay.NewBroker(d.DB, d.Gateway, d.Locker, a.Enrollments, a.Charges, a.Accounts, d.Webpay, d.Log)
	a.Manual = manualpayment.NewService(d.DB, a.Enrollments, a.Dues, d.Log)
	a.Expenses = expenses.NewService(d.DB, d.Log)
	a.Reports = reports.NewAggregator(d.DB, d.Log)
	return a
}

func (a *App) DB() *gorm.DB { return a.deps.DB }
