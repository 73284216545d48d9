package accounts

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

// Login issues an access token for valid credentials.
// POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		apperr.Write(w, h.log, apperr.Validation("email and password are required"))
		return
	}
	tok, a, err := h.Service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, loginResponse{Token: tok, Account: a})
}

// Me returns the caller's account.
// GET /auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFrom(r.Context())
	a, err := h.Service.Get(r.Context(), p.UserID)
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, a)
}
