package autopay

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/cheerclub/billing-api/internal/apperr"
	"github.com/cheerclub/billing-api/internal/auth"
	"github.com/cheerclub/billing-api/internal/utils"
)

type cardRequest struct {
	CardID uint `json:"cardId"`
}

type Handler struct {
	Engine *Engine
	log    *zap.Logger
}

func NewHandler(e *Engine, log *zap.Logger) *Handler {
	return &Handler{Engine: e, log: log}
}

// POST /payments/online-obligations/autopay
func (h *Handler) Autopay(w http.ResponseWriter, r *http.Request) {
	var req cardRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	p, _ := auth.PrincipalFrom(r.Context())
	res, err := h.Engine.EnableAndSettle(r.Context(), p, req.CardID)
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, res)
}

// POST /payments/online-obligations/{id}/pay-with-card
func (h *Handler) PayWithCard(w http.ResponseWriter, r *http.Request) {
	id, err := utils.PathID(r, "id")
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	var req cardRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	p, _ := auth.PrincipalFrom(r.Context())
	o, err := h.Engine.SettleOne(r.Context(), p, id, req.CardID)
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, o)
}
