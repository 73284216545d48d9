package manualpayment

import (
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cheerclub/billing-api/internal/apperr"
	"github.com/cheerclub/billing-api/internal/auth"
	"github.com/cheerclub/billing-api/internal/utils"
)

type request struct {
	PayerID                uint            `json:"payerId"`
	Kind                   Kind            `json:"kind"`
	Amount                 decimal.Decimal `json:"amount"`
	Concept                string          `json:"concept"`
	Method                 string          `json:"method"`
	Receipt                string          `json:"receipt"`
	EnrollmentObligationID *uint           `json:"enrollmentObligationId"`
	DueID                  *uint           `json:"dueId"`
	Notes                  string          `json:"notes"`
}

type Handler struct {
	Service *Service
	log     *zap.Logger
}

func NewHandler(s *Service, log *zap.Logger) *Handler {
	return &Handler{Service: s, log: log}
}

// POST /payments/manual
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req request
	if err := utils.DecodeJSON(r, &req); err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	p, _ := auth.PrincipalFrom(r.Context())
	pay, err := h.Service.Record(r.Context(), p, Input(req))
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, pay)
}
