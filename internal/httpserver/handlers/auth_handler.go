package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"wiselib/internal/auth"
	"wiselib/internal/models"
	"wiselib/internal/qr"
	"wiselib/internal/twofactor"
)

type loginReq struct {
	Identifier string `json:"identifier"` // user id or email
	Password   string `json:"password"`
	TOTP       string `json:"totp,omitempty"`
}

func Login(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		u, err := d.Users.Authenticate(strings.TrimSpace(req.Identifier), req.Password)
		if err != nil {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		if u.TwoFactorEnabled {
			if req.TOTP == "" {
				respondJSON(w, map[string]any{"twoFactorRequired": true})
				return
			}
			if !d.verifyTOTP(r, u.TwoFactorKey, req.TOTP) {
				http.Error(w, "invalid 2fa code", http.StatusUnauthorized)
				return
			}
		}
		d.issueSession(w, u, "")
	}
}

type qrLoginReq struct {
	Payload string `json:"payload"`
	TOTP    string `json:"totp,omitempty"`
}

func QRLogin(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req qrLoginReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		u, res, err := d.Users.AuthenticateQR(req.Payload)
		if err != nil {
			if errors.Is(err, qr.ErrMalformedPayload) {
				http.Error(w, "qr payload is not valid json", http.StatusBadRequest)
				return
			}
			if !res.Valid {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				_ = json.NewEncoder(w).Encode(map[string]any{"errors": res.Errors, "warnings": res.Warnings})
				return
			}
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		if u.TwoFactorEnabled {
			if req.TOTP == "" {
				respondJSON(w, map[string]any{"twoFactorRequired": true, "warnings": res.Warnings})
				return
			}
			if !d.verifyTOTP(r, u.TwoFactorKey, req.TOTP) {
				http.Error(w, "invalid 2fa code", http.StatusUnauthorized)
				return
			}
		}
		d.issueSession(w, u, strings.Join(res.Warnings, "; "))
	}
}

// issueSession signs a token, registers the session, and logs the login.
func (d Deps) issueSession(w http.ResponseWriter, u models.User, details string) {
	tok, jti, expiresAt, err := auth.Sign(u.ID, []string{qr.RoleFor(u.UserType)})
	if err != nil {
		http.Error(w, "token error", http.StatusInternalServerError)
		return
	}
	if err := d.Sessions.Register(jti, u.ID, expiresAt); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	d.Activity.Log(u.ID, models.ActionLogin, details)
	respondJSON(w, map[string]any{
		"token": tok,
		"user": map[string]any{
			"id": u.ID, "fullName": u.FullName, "userType": u.UserType, "email": u.Email,
		},
	})
}

// verifyTOTP prefers the campus backend's verifier and falls back to the
// local one when no backend is configured or the call fails.
func (d Deps) verifyTOTP(r *http.Request, secret, code string) bool {
	if d.Remote != nil {
		if ok, err := d.Remote.Verify2FA(r.Context(), secret, code); err == nil {
			return ok
		}
	}
	return twofactor.Verify(secret, code)
}

func Logout(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := auth.FromContext(r.Context())
		if err := d.Sessions.Revoke(claims.JWTID); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		d.Activity.Log(claims.Subject, models.ActionLogout, "")
		respondJSON(w, map[string]any{"ok": true})
	}
}

func Me(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := d.Users.ByID(auth.Subject(r.Context()))
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		respondJSON(w, map[string]any{
			"id": u.ID, "fullName": u.FullName, "email": u.Email, "userType": u.UserType,
			"twoFactorEnabled": u.TwoFactorEnabled, "qrCodeActive": u.QRCodeActive,
			"department": u.Department, "course": u.Course, "year": u.Year,
		})
	}
}

func ChangePassword(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Current string `json:"current"`
			New     string `json:"new"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		uid := auth.Subject(r.Context())
		if _, err := d.Users.Authenticate(uid, req.Current); err != nil {
			http.Error(w, "current password incorrect", http.StatusUnauthorized)
			return
		}
		if req.New == "" {
			http.Error(w, "new password required", http.StatusBadRequest)
			return
		}
		if err := d.Users.SetPassword(uid, req.New); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		d.Activity.Log(uid, models.ActionPasswordChange, "")
		respondJSON(w, map[string]any{"ok": true})
	}
}
