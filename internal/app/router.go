package app

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/cheerclub/billing-api/internal/accounts"
	"github.com/cheerclub/billing-api/internal/auth"
	"github.com/cheerclub/billing-api/internal/autopay"
	"github.com/cheerclub/billing-api/internal/cards"
	"github.com/cheerclub/billing-api/internal/dues"
	"github.com/cheerclub/billing-api/internal/enrollment"
	"github.com/cheerclub/billing-api/internal/expenses"
	"github.com/cheerclub/billing-api/internal/manualpayment"
	"github.com/cheerclub/billing-api/internal/onlinecharge"
	"github.com/cheerclub/billing-api/internal/reports"
	"github.com/cheerclub/billing-api/internal/webpay"
)

func admin(h http.HandlerFunc) http.Handler {
	return auth.RequireAdmin(h)
}

// Router registers the public routes first; everything else needs a bearer
// token.
func (a *App) Router() *mux.Router {
	log := a.deps.Log
	accountH := accounts.NewHandler(a.Accounts, log)
	enrollmentH := enrollment.NewHandler(a.Enrollments, log)
	duesH := dues.NewHandler(a.Dues, a.DuesConfig, log)
	chargeH := onlinecharge.NewHandler(a.Charges, a.Generator, log)
	cardH := cards.NewHandler(a.Cards, log)
	autopayH := autopay.NewHandler(a.Autopay, log)
	webpayH := webpay.NewHandler(a.Broker, log)
	manualH := manualpayment.NewHandler(a.Manual, log)
	expenseH := expenses.NewHandler(a.Expenses, log)
	reportH := reports.NewHandler(a.Reports, log)

	r := mux.NewRouter()

	// Public
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("GET")
	r.HandleFunc("/.well-known/jwks.json", a.deps.Keys.JWKSHandler).Methods("GET")
	r.HandleFunc("/auth/login", accountH.Login).Methods("POST")
	r.HandleFunc("/payments/enrollment-periods", enrollmentH.ListPeriods).Methods("GET")
	r.HandleFunc("/payments/enrollment-periods/{id}", enrollmentH.GetPeriod).Methods("GET")
	// The gateway token is the credential of a confirm.
	r.HandleFunc("/payments/enrollment/confirm", webpayH.ConfirmEnrollment).Methods("POST")
	r.HandleFunc("/payments/online-charges/confirm", webpayH.ConfirmCharge).Methods("POST")
	r.HandleFunc("/payments/webpay/return", webpayH.Return).Methods("GET", "POST")

	verifiers := append([]auth.Verifier{a.deps.Keys}, a.deps.Verifiers...)
	api := r.PathPrefix("/").Subrouter()
	api.Use(auth.Middleware(verifiers...))

	api.HandleFunc("/auth/me", accountH.Me).Methods("GET")

	// Enrollment
	api.Handle("/payments/enrollment-periods", admin(enrollmentH.CreatePeriod)).Methods("POST")
	api.Handle("/payments/enrollment-periods/{id}", admin(enrollmentH.UpdatePeriod)).Methods("PUT")
	api.Handle("/payments/enrollment-periods/{id}", admin(enrollmentH.DeletePeriod)).Methods("DELETE")
	api.HandleFunc("/payments/enrollments", enrollmentH.List).Methods("GET")
	api.HandleFunc("/payments/enrollments", enrollmentH.Create).Methods("POST")
	api.HandleFunc("/payments/enrollments/mine", enrollmentH.Mine).Methods("GET")
	api.HandleFunc("/payments/enrollments/{id}", enrollmentH.Get).Methods("GET")
	api.HandleFunc("/payments/enrollments/{id}/receipt", enrollmentH.UpdateReceipt).Methods("PUT")
	api.HandleFunc("/payments/enrollments/{id}/receipt", enrollmentH.DeleteReceipt).Methods("DELETE")
	api.HandleFunc("/payments/enrollment/init", webpayH.InitEnrollment).Methods("POST")

	// Recurring dues
	api.HandleFunc("/payments/dues-config", duesH.GetConfig).Methods("GET")
	api.Handle("/payments/dues-config", admin(duesH.UpdateConfig)).Methods("PATCH")
	api.HandleFunc("/payments/dues", duesH.List).Methods("GET")
	api.HandleFunc("/payments/dues", duesH.Create).Methods("POST")
	api.HandleFunc("/payments/dues/mine", duesH.Mine).Methods("GET")
	api.HandleFunc("/payments/dues/{id}/waive", duesH.Waive).Methods("POST")

	// Online charges; the literal init path is registered before {id}.
	api.HandleFunc("/payments/online-charges/init", webpayH.InitCharge).Methods("POST")
	api.HandleFunc("/payments/online-charges", chargeH.ListCharges).Methods("GET")
	api.Handle("/payments/online-charges", admin(chargeH.CreateCharge)).Methods("POST")
	api.HandleFunc("/payments/online-charges/{id}", chargeH.GetCharge).Methods("GET")
	api.Handle("/payments/online-charges/{id}", admin(chargeH.UpdateCharge)).Methods("PUT")
	api.Handle("/payments/online-charges/{id}", admin(chargeH.DeleteCharge)).Methods("DELETE")
	api.Handle("/payments/online-charges/{id}/generate-obligations", admin(chargeH.Regenerate)).Methods("POST")
	api.HandleFunc("/payments/online-obligations", chargeH.ListObligations).Methods("GET")
	api.HandleFunc("/payments/online-obligations/autopay", autopayH.Autopay).Methods("POST")
	api.HandleFunc("/payments/online-obligations/{id}/pay", chargeH.Pay).Methods("POST")
	api.HandleFunc("/payments/online-obligations/{id}/pay-with-card", autopayH.PayWithCard).Methods("POST")

	// Stored cards
	api.HandleFunc("/payments/cards", cardH.List).Methods("GET")
	api.HandleFunc("/payments/cards", cardH.Create).Methods("POST")
	api.HandleFunc("/payments/cards/{id}", cardH.Update).Methods("PATCH")
	api.HandleFunc("/payments/cards/{id}", cardH.Delete).Methods("DELETE")
	api.HandleFunc("/payments/cards/{id}/default", cardH.SetDefault).Methods("POST")

	// Back office
	api.Handle("/payments/manual", admin(manualH.Create)).Methods("POST")
	api.Handle("/payments/expenses", admin(expenseH.List)).Methods("GET")
	api.Handle("/payments/expenses", admin(expenseH.Create)).Methods("POST")
	api.Handle("/payments/expenses/{id}", admin(expenseH.Update)).Methods("PUT")
	api.Handle("/payments/expenses/{id}", admin(expenseH.Delete)).Methods("DELETE")
	api.Handle("/payments/reports", admin(reportH.Report)).Methods("GET")
	api.Handle("/payments/reports/export", admin(reportH.Export)).Methods("GET")
	api.Handle("/payments/debts", admin(reportH.Debts)).Methods("GET")
	api.HandleFunc("/payments/debts/mine", reportH.MyDebts).Methods("GET")

	return r
}
