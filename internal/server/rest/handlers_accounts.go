package rest

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
	"github.com/dmitrijs2005/accountkeeper/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/accountkeeper/internal/server/services"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) writeAccount(w http.ResponseWriter, r *http.Request, a *models.Account, err error) {
	if err != nil {
		h.writeMappedError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *Handler) writeAccounts(w http.ResponseWriter, r *http.Request, list []*models.Account, err error) {
	if err != nil {
		h.writeMappedError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) createAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := h.decodeBody(r, &req, false); err != nil {
		h.writeMappedError(w, r, err)
		return
	}

	a, err := h.accounts.Create(r.Context(), services.NewAccount{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	h.writeAccount(w, r, a, err)
}

func (h *Handler) listAccounts(w http.ResponseWriter, r *http.Request) {
	list, err := h.accounts.List(r.Context())
	h.writeAccounts(w, r, list, err)
}

func (h *Handler) getAccount(w http.ResponseWriter, r *http.Request) {
	a, err := h.accounts.GetByID(r.Context(), chi.URLParam(r, "id"))
	h.writeAccount(w, r, a, err)
}

func (h *Handler) getAccountByEmail(w http.ResponseWriter, r *http.Request) {
	a, err := h.accounts.GetByEmail(r.Context(), chi.URLParam(r, "email"))
	h.writeAccount(w, r, a, err)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := h.decodeBody(r, &req, false); err != nil {
		h.writeMappedError(w, r, err)
		return
	}

	a, err := h.accounts.UpdateProfile(r.Context(), chi.URLParam(r, "id"), services.ProfileUpdate{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
	})
	h.writeAccount(w, r, a, err)
}

func (h *Handler) addLoyaltyPoints(w http.ResponseWriter, r *http.Request) {
	var req addLoyaltyPointsRequest
	if err := h.decodeBody(r, &req, false); err != nil {
		h.writeMappedError(w, r, err)
		return
	}

	a, err := h.accounts.AddLoyaltyPoints(r.Context(), chi.URLParam(r, "id"), *req.Points)
	if err == nil {
		h.metrics.pointsAwarded.Add(float64(*req.Points))
	}
	h.writeAccount(w, r, a, err)
}

func (h *Handler) verifyEmail(w http.ResponseWriter, r *http.Request) {
	a, err := h.accounts.VerifyEmail(r.Context(), chi.URLParam(r, "id"))
	h.writeAccount(w, r, a, err)
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) {
	a, err := h.accounts.Deactivate(r.Context(), chi.URLParam(r, "id"))
	h.writeAccount(w, r, a, err)
}

func (h *Handler) listByTier(w http.ResponseWriter, r *http.Request) {
	tier, err := models.ParseTier(chi.URLParam(r, "tier"))
	if err != nil {
		h.writeMappedError(w, r, fmt.Errorf("%w: %v", common.ErrorValidation, err))
		return
	}
	list, err := h.accounts.ListByTier(r.Context(), tier)
	h.writeAccounts(w, r, list, err)
}

func (h *Handler) listActive(w http.ResponseWriter, r *http.Request) {
	list, err := h.accounts.ListActive(r.Context())
	h.writeAccounts(w, r, list, err)
}

func (h *Handler) listVerified(w http.ResponseWriter, r *http.Request) {
	list, err := h.accounts.ListVerified(r.Context())
	h.writeAccounts(w, r, list, err)
}

// search accepts email (substring), created_after (RFC 3339), min_points,
// tier, active and verified; all optional and combined with AND.
func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	f, err := parseSearchFilter(r)
	if err != nil {
		h.writeMappedError(w, r, err)
		return
	}
	list, err := h.accounts.Search(r.Context(), f)
	h.writeAccounts(w, r, list, err)
}

func parseSearchFilter(r *http.Request) (accounts.Filter, error) {
	q := r.URL.Query()
	f := accounts.Filter{EmailContains: q.Get("email")}

	if v := q.Get("created_after"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, fmt.Errorf("%w: created_after must be RFC 3339", common.ErrorValidation)
		}
		f.CreatedAfter = &t
	}
	if v := q.Get("min_points"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return f, fmt.Errorf("%w: min_points must be an integer", common.ErrorValidation)
		}
		f.MinPoints = &n
	}
	if v := q.Get("tier"); v != "" {
		tier, err := models.ParseTier(v)
		if err != nil {
			return f, fmt.Errorf("%w: %v", common.ErrorValidation, err)
		}
		f.Tier = tier
	}
	for key, dst := range map[string]**bool{"active": &f.Active, "verified": &f.EmailVerified} {
		if v := q.Get(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return f, fmt.Errorf("%w: %s must be a boolean", common.ErrorValidation, key)
			}
			*dst = &b
		}
	}
	return f, nil
}

func (h *Handler) exists(w http.ResponseWriter, r *http.Request) {
	ok, err := h.accounts.Exists(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		h.writeMappedError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, existsResponse{Exists: ok})
}
