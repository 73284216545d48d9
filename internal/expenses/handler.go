package expenses

import (
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cheerclub/billing-api/internal/apperr"
	"github.com/cheerclub/billing-api/internal/utils"
)

type request struct {
	Concept     string          `json:"concept"`
	Category    Category        `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	SpentOn     string          `json:"spentOn"`
	Method      string          `json:"method"`
	Responsible string          `json:"responsible"`
	Supplier    string          `json:"supplier"`
	Description string          `json:"description"`
	Receipt     string          `json:"receipt"`
}

func (req request) input() (Input, error) {
	spent, err := utils.ParseDate("spentOn", req.SpentOn)
	if err != nil {
		return Input{}, err
	}
	return Input{
		Concept:     req.Concept,
		Category:    req.Category,
		Amount:      req.Amount,
		SpentOn:     spent,
		Method:      req.Method,
		Responsible: req.Responsible,
		Supplier:    req.Supplier,
		Description: req.Description,
		Receipt:     req.Receipt,
	}, nil
}

type Handler struct {
	Service *Service
	log     *zap.Logger
}

func NewHandler(s *Service, log *zap.Logger) *Handler {
	return &Handler{Service: s, log: log}
}

// GET /payments/expenses?from=&to=&category=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := utils.ParseDate("from", q.Get("from"))
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	to, err := utils.ParseDate("to", q.Get("to"))
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	out, err := h.Service.List(r.Context(), Filter{From: from, To: to, Category: Category(q.Get("category"))})
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, out)
}

// POST /payments/expenses
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	in, err := decode(r)
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	e, err := h.Service.Create(r.Context(), in)
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, e)
}

// PUT /payments/expenses/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := utils.PathID(r, "id")
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	in, err := decode(r)
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	e, err := h.Service.Update(r.Context(), id, in)
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, e)
}

// DELETE /payments/expenses/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := utils.PathID(r, "id")
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decode(r *http.Request) (Input, error) {
	var req request
	if err := utils.DecodeJSON(r, &req); err != nil {
		return Input{}, err
	}
	return req.input()
}
