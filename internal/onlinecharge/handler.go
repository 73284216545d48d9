package onlinecharge

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/cheerclub/billing-api/internal/apperr"
	"github.com/cheerclub/billing-api/internal/auth"
	"github.com/cheerclub/billing-api/internal/utils"
)

type Handler struct {
	Service   *Service
	Generator *Generator
	log       *zap.Logger
}

func NewHandler(s *Service, g *Generator, log *zap.Logger) *Handler {
	return &Handler{Service: s, Generator: g, log: log}
}

// GET /payments/online-charges
func (h *Handler) ListCharges(w http.ResponseWriter, r *http.Request) {
	out, err := h.Service.ListCharges(r.Context())
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, out)
}

// GET /payments/online-charges/{id}
func (h *Handler) GetCharge(w http.ResponseWriter, r *http.Request) {
	id, err := utils.PathID(r, "id")
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	c, err := h.Service.GetCharge(r.Context(), id)
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, c)
}

// CreateCharge stores a charge and bills it right away.
// POST /payments/online-charges
func (h *Handler) CreateCharge(w http.ResponseWriter, r *http.Request) {
	var req chargeRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	in, err := req.input()
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	c, res, err := h.Service.CreateCharge(r.Context(), in)
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, createChargeResponse{Charge: c, Generation: res})
}

// PUT /payments/online-charges/{id}
func (h *Handler) UpdateCharge(w http.ResponseWriter, r *http.Request) {
	id, err := utils.PathID(r, "id")
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	var req chargeRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	in, err := req.input()
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	c, err := h.Service.UpdateCharge(r.Context(), id, in)
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, c)
}

// DELETE /payments/online-charges/{id}
func (h *Handler) DeleteCharge(w http.ResponseWriter, r *http.Request) {
	id, err := utils.PathID(r, "id")
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	if err := h.Service.DeleteCharge(r.Context(), id); err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Regenerate bills athletes that joined after the charge was created.
// POST /payments/online-charges/{id}/generate-obligations
func (h *Handler) Regenerate(w http.ResponseWriter, r *http.Request) {
	id, err := utils.PathID(r, "id")
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	res, err := h.Generator.Generate(r.Context(), id, true)
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, generateResponse{Created: res.Created})
}

// GET /payments/online-obligations?status=&charge=
func (h *Handler) ListObligations(w http.ResponseWriter, r *http.Request) {
	chargeID, err := utils.QueryID(r, "charge")
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	f := ListFilter{ChargeID: chargeID, Status: Status(r.URL.Query().Get("status"))}
	p, _ := auth.PrincipalFrom(r.Context())
	out, err := h.Service.List(r.Context(), p, f)
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, out)
}

// POST /payments/online-obligations/{id}/pay
func (h *Handler) Pay(w http.ResponseWriter, r *http.Request) {
	id, err := utils.PathID(r, "id")
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	var req payRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	p, _ := auth.PrincipalFrom(r.Context())
	o, err := h.Service.MarkPaidManually(r.Context(), p, id, req.PaymentMethod)
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, o)
}
