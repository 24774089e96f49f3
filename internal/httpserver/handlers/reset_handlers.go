package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"wiselib/internal/models"
	"wiselib/internal/services/resetcode"
)

func RequestReset(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email string `json:"email"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		req.Email = strings.TrimSpace(strings.ToLower(req.Email))
		if req.Email == "" {
			http.Error(w, "email required", http.StatusBadRequest)
			return
		}
		// Whether the email is registered stays unobservable from outside.
		if _, ok := d.Users.ByEmail(req.Email); ok {
			code, err := d.Reset.Issue(req.Email)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			d.Log.Debugw("reset code issued", "email", req.Email, "code", code)
		}
		respondJSON(w, map[string]any{"ok": true})
	}
}

func resetStatus(err error) (int, string) {
	switch {
	case errors.Is(err, resetcode.ErrNoCode):
		return http.StatusBadRequest, "no code was sent"
	case errors.Is(err, resetcode.ErrExpired):
		return http.StatusBadRequest, "code expired"
	case errors.Is(err, resetcode.ErrMismatch):
		return http.StatusBadRequest, "invalid code"
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

func VerifyResetCode(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email string `json:"email"`
			Code  string `json:"code"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := d.Reset.Verify(req.Email, req.Code); err != nil {
			code, msg := resetStatus(err)
			http.Error(w, msg, code)
			return
		}
		respondJSON(w, map[string]any{"ok": true})
	}
}

func ResetPassword(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email       string `json:"email"`
			Code        string `json:"code"`
			NewPassword string `json:"newPassword"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := d.Reset.Verify(req.Email, req.Code); err != nil {
			code, msg := resetStatus(err)
			http.Error(w, msg, code)
			return
		}
		u, ok := d.Users.ByEmail(req.Email)
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if req.NewPassword == "" {
			http.Error(w, "new password required", http.StatusBadRequest)
			return
		}
		if err := d.Users.SetPassword(u.ID, req.NewPassword); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		d.Reset.Clear(req.Email)
		d.Activity.Log(u.ID, models.ActionPasswordChange, "reset via email code")
		respondJSON(w, map[string]any{"ok": true})
	}
}
