package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/marketplace-api/internal/application/auth"
	"github.com/marketplace-api/internal/application/otp"
	"github.com/marketplace-api/internal/domain"
	"github.com/marketplace-api/internal/pkg/validate"
)

// AuthHandler serves the public role-scoped authentication endpoints. The role
// comes from the URL so each client app talks to its own namespace.
type AuthHandler struct {
	authSvc auth.Service
	otpSvc  otp.Service
}

func NewAuthHandler(authSvc auth.Service, otpSvc otp.Service) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, otpSvc: otpSvc}
}

// roleParam validates the {role} path segment.
func roleParam(r *http.Request) (string, bool) {
	role := chi.URLParam(r, "role")
	return role, domain.ValidRole(role)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	role, ok := roleParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown role")
		return
	}
	// Admin accounts are provisioned by operators, never self-registered.
	if role == domain.RoleAdmin {
		writeError(w, http.StatusForbidden, "admin registration is disabled")
		return
	}
	var req auth.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.authSvc.Register(r.Context(), role, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusCreated, "registered", AuthData{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		Session:      result.Session,
		Account:      result.Session.Account,
	})
}

func (h *AuthHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	role, ok := roleParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown role")
		return
	}
	var req otp.SendInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Role = role
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.otpSvc.Send(r.Context(), req); err != nil {
		writeServiceError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "code sent")
}

// VerifyOTP completes an OTP login. Register and reset-password codes are
// consumed by their own endpoints; accepting them here would burn the code
// before the flow that needs it.
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	role, ok := roleParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown role")
		return
	}
	var req struct {
		Identity   string  `json:"identity" validate:"required"`
		OTP        string  `json:"otp" validate:"required"`
		Purpose    string  `json:"purpose" validate:"required"`
		DeviceUUID *string `json:"device_uuid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Purpose != domain.PurposeLogin {
		writeError(w, http.StatusBadRequest, "purpose must be login; register and reset-password have dedicated endpoints")
		return
	}
	result, err := h.authSvc.LoginWithOTP(r.Context(), role, auth.LoginOTPRequest{
		Identity:   req.Identity,
		OTP:        req.OTP,
		DeviceUUID: req.DeviceUUID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, "logged in", AuthData{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		Session:      result.Session,
		Account:      result.Session.Account,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	role, ok := roleParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown role")
		return
	}
	var req auth.LoginPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.authSvc.LoginWithPassword(r.Context(), role, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, "logged in", AuthData{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		Session:      result.Session,
		Account:      result.Session.Account,
	})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req auth.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.authSvc.ResetPassword(r.Context(), req); err != nil {
		writeServiceError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "password updated")
}
