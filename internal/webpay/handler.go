package webpay

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/cheerclub/billing-api/internal/apperr"
	"github.com/cheerclub/billing-api/internal/auth"
	"github.com/cheerclub/billing-api/internal/utils"
)

type Handler struct {
	Broker *Broker
	log    *zap.Logger
}

func NewHandler(b *Broker, log *zap.Logger) *Handler {
	return &Handler{Broker: b, log: log}
}

func (h *Handler) init(w http.ResponseWriter, r *http.Request,
	fn func(context.Context, auth.Principal, InitRequest) (*InitResult, error)) {
	var req initRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	p, _ := auth.PrincipalFrom(r.Context())
	res, err := fn(r.Context(), p, InitRequest(req))
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) confirm(w http.ResponseWriter, r *http.Request,
	fn func(context.Context, string) (*ConfirmResult, error)) {
	var req confirmRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	res, err := fn(r.Context(), req.token())
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, res)
}

// InitEnrollment opens a checkout for an enrollment obligation.
// POST /payments/enrollment/init
func (h *Handler) InitEnrollment(w http.ResponseWriter, r *http.Request) {
	h.init(w, r, h.Broker.InitEnrollment)
}

// ConfirmEnrollment commits an enrollment checkout. The token is the
// credential; no session is required.
// POST /payments/enrollment/confirm
func (h *Handler) ConfirmEnrollment(w http.ResponseWriter, r *http.Request) {
	h.confirm(w, r, h.Broker.ConfirmEnrollment)
}

// POST /payments/online-charges/init
func (h *Handler) InitCharge(w http.ResponseWriter, r *http.Request) {
	h.init(w, r, h.Broker.InitCharge)
}

// POST /payments/online-charges/confirm
func (h *Handler) ConfirmCharge(w http.ResponseWriter, r *http.Request) {
	h.confirm(w, r, h.Broker.ConfirmCharge)
}

// Return sends a payer who landed on the API back to the frontend with
// token_ws, so the frontend can confirm.
// GET|POST /payments/webpay/return
func (h *Handler) Return(w http.ResponseWriter, r *http.Request) {
	target := strings.TrimRight(h.Broker.opts.FrontendURL, "/")
	if token := r.FormValue("token_ws"); token != "" {
		target += "/webpay-return?token_ws=" + url.QueryEscape(token)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
