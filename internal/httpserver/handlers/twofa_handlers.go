package handlers

import (
	"encoding/json"
	"net/http"

	"wiselib/internal/auth"
	"wiselib/internal/models"
	"wiselib/internal/twofactor"
)

// Generate2FA issues a TOTP secret for the caller, preferring the campus
// backend's issuer when one is configured.
func Generate2FA(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := d.Users.ByID(auth.Subject(r.Context()))
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if d.Remote != nil {
			if secret, err := d.Remote.Generate2FA(r.Context(), u.ID); err == nil && secret != "" {
				respondJSON(w, map[string]any{"secret": secret})
				return
			} else if err != nil {
				d.Log.Debugw("remote 2fa generate failed, using local issuer", "error", err)
			}
		}
		secret, url, err := twofactor.GenerateSecret(u.Email)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		respondJSON(w, map[string]any{"secret": secret, "url": url})
	}
}

// Confirm2FA verifies the first code against a pending secret and enables
// 2FA for the account.
func Confirm2FA(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Secret string `json:"secret"`
			Code   string `json:"code"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Secret == "" || !d.verifyTOTP(r, req.Secret, req.Code) {
			http.Error(w, "invalid 2fa code", http.StatusUnauthorized)
			return
		}
		uid := auth.Subject(r.Context())
		if err := d.Users.SetTwoFactor(uid, true, req.Secret); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		d.Activity.Log(uid, models.Action2FAEnable, "")
		respondJSON(w, map[string]any{"ok": true})
	}
}

// Disable2FA turns 2FA off after re-authenticating with the password.
func Disable2FA(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		uid := auth.Subject(r.Context())
		if _, err := d.Users.Authenticate(uid, req.Password); err != nil {
			http.Error(w, "password incorrect", http.StatusUnauthorized)
			return
		}
		if err := d.Users.SetTwoFactor(uid, false, ""); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		d.Activity.Log(uid, models.Action2FADisable, "")
		respondJSON(w, map[string]any{"ok": true})
	}
}
