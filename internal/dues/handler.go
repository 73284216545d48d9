package dues

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/cheerclub/billing-api/internal/apperr"
	"github.com/cheerclub/billing-api/internal/auth"
	"github.com/cheerclub/billing-api/internal/utils"
)

type Handler struct {
	Service *Service
	Config  *ConfigService
	log     *zap.Logger
}

func NewHandler(s *Service, cfg *ConfigService, log *zap.Logger) *Handler {
	return &Handler{Service: s, Config: cfg, log: log}
}

// GET /payments/dues-config
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.Config.Get(r.Context())
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, cfg)
}

// PATCH /payments/dues-config
func (h *Handler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var patch ConfigPatch
	if err := utils.DecodeJSON(r, &patch); err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	cfg, err := h.Config.Update(r.Context(), patch)
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, cfg)
}

// POST /payments/dues
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	p, _ := auth.PrincipalFrom(r.Context())
	d, err := h.Service.Create(r.Context(), p, CreateInput(req))
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, d)
}

// GET /payments/dues
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, false)
}

// GET /payments/dues/mine
func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, true)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, mine bool) {
	p, _ := auth.PrincipalFrom(r.Context())
	out, err := h.Service.List(r.Context(), p, mine)
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, out)
}

// POST /payments/dues/{id}/waive
func (h *Handler) Waive(w http.ResponseWriter, r *http.Request) {
	id, err := utils.PathID(r, "id")
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	var req waiveRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	p, _ := auth.PrincipalFrom(r.Context())
	d, err := h.Service.Waive(r.Context(), p, id, req.Notes)
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, d)
}
