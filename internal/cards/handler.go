package cards

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

// GET /payments/cards
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFrom(r.Context())
	out, err := h.Service.List(r.Context(), p)
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, out)
}

// POST /payments/cards
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	p, _ := auth.PrincipalFrom(r.Context())
	c, err := h.Service.Create(r.Context(), p, CreateInput(req))
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, c)
}

// PATCH /payments/cards/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := utils.PathID(r, "id")
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	var req updateRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	p, _ := auth.PrincipalFrom(r.Context())
	c, err := h.Service.Update(r.Context(), p, id, UpdateInput(req))
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, c)
}

// POST /payments/cards/{id}/default
func (h *Handler) SetDefault(w http.ResponseWriter, r *http.Request) {
	id, err := utils.PathID(r, "id")
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	p, _ := auth.PrincipalFrom(r.Context())
	c, err := h.Service.SetDefault(r.Context(), p, id)
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, c)
}

// DELETE /payments/cards/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := utils.PathID(r, "id")
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	p, _ := auth.PrincipalFrom(r.Context())
	if err := h.Service.Delete(r.Context(), p, id); err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
