package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"wiselib/internal/auth"
	"wiselib/internal/services/borrow"
)

func BorrowBook(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			BookID    string `json:"bookId"`
			StudentID string `json:"studentId,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		claims := auth.FromContext(r.Context())
		student := req.StudentID
		if student == "" || !claims.HasRole("Administrator") {
			student = claims.Subject
		}
		rec, err := d.Borrow.Borrow(req.BookID, student)
		if err != nil {
			if errors.Is(err, borrow.ErrUnavailable) {
				http.Error(w, err.Error(), http.StatusConflict)
				return
			}
			http.Error(w, err.Error(), storeStatus(err))
			return
		}
		respondJSON(w, rec)
	}
}

func ReturnBook(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Borrow.Return(chi.URLParam(r, "id")); err != nil {
			http.Error(w, err.Error(), storeStatus(err))
			return
		}
		respondJSON(w, map[string]any{"ok": true})
	}
}

func ListBorrows(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := auth.FromContext(r.Context())
		if r.URL.Query().Get("all") == "1" && claims.HasRole("Administrator") {
			respondJSON(w, d.Borrow.List())
			return
		}
		respondJSON(w, d.Borrow.ByStudent(claims.Subject))
	}
}
