package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"

	"wiselib/internal/models"
	"wiselib/internal/qr"
	"wiselib/internal/services/users"
)

type registerReq struct {
	models.User
	Password string `json:"password"`
}

// userIDPattern matches the campus ID formats (KC-23-A-00243, KCL-00001).
// Anything else is rejected before the ID can become part of a storage key.
var userIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]{0,63}$`)

// Register creates an account. The multi-step form saves its draft via the
// draft endpoints; this is the final submit.
func Register(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.ID == "" || req.Email == "" || req.Password == "" {
			http.Error(w, "id, email and password are required", http.StatusBadRequest)
			return
		}
		if !userIDPattern.MatchString(req.ID) {
			http.Error(w, "id may only contain letters, digits, and hyphens", http.StatusBadRequest)
			return
		}
		if req.UserType != qr.UserTypeAdmin && req.UserType != qr.UserTypeStudent {
			http.Error(w, "userType must be admin or student", http.StatusBadRequest)
			return
		}
		if err := d.Users.Create(req.User, req.Password); err != nil {
			if errors.Is(err, users.ErrEmailTaken) {
				http.Error(w, err.Error(), http.StatusConflict)
				return
			}
			http.Error(w, err.Error(), storeStatus(err))
			return
		}
		d.Regdraft.Clear()
		respondJSON(w, map[string]any{"id": req.ID})
	}
}

// ListUsers returns the directory with sensitive fields blanked.
func ListUsers(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all := d.Users.List()
		out := make([]models.User, 0, len(all))
		for _, u := range all {
			u.PasswordHash = ""
			u.TwoFactorKey = ""
			out = append(out, u)
		}
		respondJSON(w, out)
	}
}

type userPatch struct {
	Email      *string `json:"email"`
	Phone      *string `json:"phone"`
	Address    *string `json:"address"`
	Department *string `json:"department"`
	Course     *string `json:"course"`
	Year       *string `json:"year"`
	Section    *string `json:"section"`
	IsActive   *bool   `json:"isActive"`
	QRActive   *bool   `json:"qrCodeActive"`
}

// UpdateUser patches one directory entry.
func UpdateUser(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p userPatch
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		id := chi.URLParam(r, "id")
		err := d.Users.Update(id, func(u *models.User) {
			if p.Email != nil {
				u.Email = *p.Email
			}
			if p.Phone != nil {
				u.Phone = *p.Phone
			}
			if p.Address != nil {
				u.Address = *p.Address
			}
			if p.Department != nil {
				u.Department = *p.Department
			}
			if p.Course != nil {
				u.Course = *p.Course
			}
			if p.Year != nil {
				u.Year = *p.Year
			}
			if p.Section != nil {
				u.Section = *p.Section
			}
			if p.IsActive != nil {
				u.IsActive = *p.IsActive
			}
			if p.QRActive != nil {
				u.QRCodeActive = *p.QRActive
			}
		})
		if err != nil {
			http.Error(w, err.Error(), storeStatus(err))
			return
		}
		respondJSON(w, map[string]any{"ok": true})
	}
}

// DeleteUser removes one directory entry.
func DeleteUser(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Users.Remove(chi.URLParam(r, "id")); err != nil {
			http.Error(w, err.Error(), storeStatus(err))
			return
		}
		respondJSON(w, map[string]any{"ok": true})
	}
}
