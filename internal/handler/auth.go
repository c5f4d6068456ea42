package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/farisali522/birojasaapp/internal/service"
)

type AuthHandler struct {
	Service *service.IdentityService
}

func (h AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/firebase", h.loginFirebase)
	r.Post("/auth/staff", h.loginStaff)
	r.Post("/auth/refresh", h.refresh)
}

// loginFirebase exchanges a verified identity-provider token for session
// tokens. A verified email without an account and without profile data gets
// need_register so the frontend can collect name and phone first.
func (h AuthHandler) loginFirebase(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDToken string `json:"idToken"`
		Name    string `json:"name"`
		Phone   string `json:"phone"`
		Address string `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	res, err := h.Service.LoginWithFirebase(r.Context(), service.FirebaseLoginInput{
		IDToken: req.IDToken,
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		if errors.Is(err, service.ErrRegistrationRequired) {
			writeJSON(w, http.StatusOK, map[string]any{"need_register": true})
			return
		}
		writeServiceError(w, err)
		return
	}
	writeAuthResponse(w, res)
}

// loginStaff is the password fallback for employees.
func (h AuthHandler) loginStaff(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	res, err := h.Service.LoginWithPassword(r.Context(), strings.ToLower(req.Email), req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeAuthResponse(w, res)
}

func (h AuthHandler) refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	res, err := h.Service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeAuthResponse(w, res)
}

func writeAuthResponse(w http.ResponseWriter, res *service.AuthResult) {
	var user map[string]any
	switch {
	case res.Actor.IsEmployee():
		emp := res.Actor.Employee
		user = map[string]any{
			"id":    strconv.FormatInt(emp.ID, 10),
			"code":  emp.Code,
			"name":  emp.Name,
			"email": emp.Email,
			"kind":  "employee",
			"role":  string(emp.Role),
		}
	case res.Actor.IsCustomer():
		cust := res.Actor.Customer
		user = map[string]any{
			"id":      strconv.FormatInt(cust.ID, 10),
			"code":    cust.Code,
			"name":    cust.Name,
			"email":   cust.Email,
			"kind":    "customer",
			"phone":   cust.Phone,
			"address": cust.Address,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token":        res.AccessToken,
		"refreshToken": res.RefreshToken,
		"expiresAt":    res.ExpiresAt.UTC().Format(time.RFC3339),
		"landingRoute": res.LandingRoute,
		"user":         user,
	})
}
