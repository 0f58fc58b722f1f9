package rest

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
	"github.com/dmitrijs2005/accountkeeper/internal/server/services"
)

func (h *Handler) writeEnvelope(w http.ResponseWriter, message string, a *models.Account, s *services.Session) {
	writeJSON(w, http.StatusOK, authResponse{
		Success:      true,
		Message:      message,
		Token:        s.AccessToken,
		RefreshToken: s.RefreshToken,
		Account:      a,
		ExpiresIn:    int64(s.ExpiresIn / time.Second),
	})
}

// writeEnvelopeError answers with success=false. The status is the mapped
// one, or 200 in legacy mode.
func (h *Handler) writeEnvelopeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, msg := mapError(err)
	if status >= 500 {
		h.log.Error(r.Context(), "auth request failed", "error", err, "request_id", requestIDFromContext(r.Context()))
	} else {
		h.log.Debug(r.Context(), "auth request rejected", "code", code, "request_id", requestIDFromContext(r.Context()))
	}
	if h.opts.LegacyEnvelopeStatus {
		status = http.StatusOK
	}
	writeJSON(w, status, authResponse{Success: false, Message: msg})
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := h.decodeBody(r, &req, false); err != nil {
		h.writeEnvelopeError(w, r, err)
		return
	}

	a, s, err := h.auth.Register(r.Context(), services.NewAccount{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.writeEnvelopeError(w, r, err)
		return
	}
	h.writeEnvelope(w, "Registration successful", a, s)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := h.decodeBody(r, &req, false); err != nil {
		h.writeEnvelopeError(w, r, err)
		return
	}

	a, s, err := h.auth.Login(r.Context(), req.Email, req.Password, req.RememberMe)
	h.metrics.recordLogin(err)
	if err != nil {
		h.writeEnvelopeError(w, r, err)
		return
	}
	h.writeEnvelope(w, "Login successful", a, s)
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := h.decodeBody(r, &req, false); err != nil {
		h.writeEnvelopeError(w, r, err)
		return
	}

	a, s, err := h.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.writeEnvelopeError(w, r, err)
		return
	}
	h.writeEnvelope(w, "Token refreshed", a, s)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		return
	}

	var req logoutRequest
	if err := h.decodeBody(r, &req, true); err != nil {
		h.writeMappedError(w, r, err)
		return
	}

	if err := h.auth.Logout(r.Context(), claims, req.RefreshToken); err != nil {
		h.writeMappedError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Logout successful")
}
