package reports

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/cheerclub/billing-api/internal/apperr"
	"github.com/cheerclub/billing-api/internal/auth"
	"github.com/cheerclub/billing-api/internal/utils"
)

type Handler struct {
	Aggregator *Aggregator
	log        *zap.Logger
}

func NewHandler(a *Aggregator, log *zap.Logger) *Handler {
	return &Handler{Aggregator: a, log: log}
}

func filterFrom(r *http.Request) (Filter, error) {
	q := r.URL.Query()
	from, err := utils.ParseDate("from", q.Get("from"))
	if err != nil {
		return Filter{}, err
	}
	to, err := utils.ParseDate("to", q.Get("to"))
	if err != nil {
		return Filter{}, err
	}
	return Filter{
		From:     from,
		To:       to,
		Category: q.Get("category"),
		Method:   q.Get("method"),
		Status:   q.Get("status"),
	}, nil
}

// GET /payments/reports?from=&to=&category=&method=&status=
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	f, err := filterFrom(r)
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	rep, err := h.Aggregator.Build(r.Context(), f)
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, rep)
}

// GET /payments/reports/export
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	f, err := filterFrom(r)
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	rep, err := h.Aggregator.Build(r.Context(), f)
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	fileName := fmt.Sprintf("financial_report_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename="+fileName)
	if err := WriteXLSX(w, rep); err != nil {
		h.log.Error("xlsx export failed", zap.Error(err))
	}
}

// GET /payments/debts
func (h *Handler) Debts(w http.ResponseWriter, r *http.Request) {
	h.debts(w, r, false)
}

// GET /payments/debts/mine
func (h *Handler) MyDebts(w http.ResponseWriter, r *http.Request) {
	h.debts(w, r, true)
}

func (h *Handler) debts(w http.ResponseWriter, r *http.Request, mine bool) {
	p, _ := auth.PrincipalFrom(r.Context())
	out, err := h.Aggregator.Debts(r.Context(), p, mine)
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, out)
}
