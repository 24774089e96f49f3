package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"wiselib/internal/auth"
)

func ListReservations(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if bookID := r.URL.Query().Get("bookId"); bookID != "" {
			respondJSON(w, d.Reservations.ByBook(bookID))
			return
		}
		respondJSON(w, d.Reservations.List())
	}
}

func CreateReservation(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			BookID string `json:"bookId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		book, ok := d.Books.Get(req.BookID)
		if !ok {
			http.Error(w, "book not found", http.StatusNotFound)
			return
		}
		u, ok := d.Users.ByID(auth.Subject(r.Context()))
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		rec, err := d.Reservations.Add(book.ID, book.Title, u.ID, u.FullName)
		if err != nil {
			http.Error(w, err.Error(), storeStatus(err))
			return
		}
		respondJSON(w, rec)
	}
}

// ClearReservation removes one reservation, typically after fulfilment.
func ClearReservation(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Reservations.Remove(chi.URLParam(r, "id")); err != nil {
			http.Error(w, err.Error(), storeStatus(err))
			return
		}
		respondJSON(w, map[string]any{"ok": true})
	}
}
