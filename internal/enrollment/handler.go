package enrollment

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/cheerclub/billing-api/internal/apperr"
	"github.com/cheerclub/billing-api/internal/auth"
	"github.com/cheerclub/billing-api/internal/utils"
)

type Handler struct {
	Service *Service
	log     *zap.Logger
}

func NewHandler(s *Service, log *zap.Logger) *Handler {
	return &Handler{Service: s, log: log}
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	apperr.Write(w, h.log, err)
}

// GET /payments/enrollment-periods
func (h *Handler) ListPeriods(w http.ResponseWriter, r *http.Request) {
	out, err := h.Service.ListPeriods(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, out)
}

// GET /payments/enrollment-periods/{id}
func (h *Handler) GetPeriod(w http.ResponseWriter, r *http.Request) {
	id, err := utils.PathID(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}
	p, err := h.Service.GetPeriod(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, p)
}

// POST /payments/enrollment-periods
func (h *Handler) CreatePeriod(w http.ResponseWriter, r *http.Request) {
	var req periodRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	in, err := req.input()
	if err != nil {
		h.fail(w, err)
		return
	}
	p, err := h.Service.CreatePeriod(r.Context(), in)
	if err != nil {
		h.fail(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, p)
}

// PUT /payments/enrollment-periods/{id}
func (h *Handler) UpdatePeriod(w http.ResponseWriter, r *http.Request) {
	id, err := utils.PathID(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}
	var req periodRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	in, err := req.input()
	if err != nil {
		h.fail(w, err)
		return
	}
	p, err := h.Service.UpdatePeriod(r.Context(), id, in)
	if err != nil {
		h.fail(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, p)
}

// DELETE /payments/enrollment-periods/{id}
func (h *Handler) DeletePeriod(w http.ResponseWriter, r *http.Request) {
	id, err := utils.PathID(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}
	if err := h.Service.DeletePeriod(r.Context(), id); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Create bills the caller for an athlete's enrollment.
// POST /payments/enrollments
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	p, _ := auth.PrincipalFrom(r.Context())
	o, err := h.Service.CreateObligation(r.Context(), p, CreateInput{
		AthleteID:     req.AthleteID,
		PeriodID:      req.PeriodID,
		PaymentMethod: req.PaymentMethod,
		Receipt:       req.Receipt,
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, o)
}

// GET /payments/enrollments
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, false)
}

// GET /payments/enrollments/mine
func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, true)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, mine bool) {
	p, _ := auth.PrincipalFrom(r.Context())
	out, err := h.Service.List(r.Context(), p, mine)
	if err != nil {
		h.fail(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, out)
}

// GET /payments/enrollments/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := utils.PathID(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}
	p, _ := auth.PrincipalFrom(r.Context())
	o, err := h.Service.Get(r.Context(), p, id)
	if err != nil {
		h.fail(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, o)
}

// PUT /payments/enrollments/{id}/receipt
func (h *Handler) UpdateReceipt(w http.ResponseWriter, r *http.Request) {
	id, err := utils.PathID(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}
	var req receiptRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	if req.Receipt == "" {
		h.fail(w, apperr.Validation("receipt is required"))
		return
	}
	h.setReceipt(w, r, id, req.Receipt)
}

// DELETE /payments/enrollments/{id}/receipt
func (h *Handler) DeleteReceipt(w http.ResponseWriter, r *http.Request) {
	id, err := utils.PathID(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}
	h.setReceipt(w, r, id, "")
}

func (h *Handler) setReceipt(w http.ResponseWriter, r *http.Request, id uint, receipt string) {
	p, _ := auth.PrincipalFrom(r.Context())
	o, err := h.Service.SetReceipt(r.Context(), p, id, receipt)
	if err != nil {
		h.fail(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, o)
}
