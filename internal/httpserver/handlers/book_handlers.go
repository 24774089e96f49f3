package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"wiselib/internal/models"
	"wiselib/internal/qr"
	"wiselib/internal/services/books"
	"wiselib/internal/storage"
)

func ListBooks(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, d.Books.List())
	}
}

func CreateBook(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var b models.BookRecord
		if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if b.ID == "" || b.Title == "" {
			http.Error(w, "id and title required", http.StatusBadRequest)
			return
		}
		if b.Status == "" {
			b.Status = models.BookAvailable
		}
		if err := d.Books.Create(b); err != nil {
			if errors.Is(err, books.ErrAvailabilityRange) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, err.Error(), storeStatus(err))
			return
		}
		respondJSON(w, map[string]any{"id": b.ID})
	}
}

func UpdateBook(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var p books.Patch
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := d.Books.Update(id, p); err != nil {
			if errors.Is(err, books.ErrAvailabilityRange) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, err.Error(), storeStatus(err))
			return
		}
		b, _ := d.Books.Get(id)
		respondJSON(w, b)
	}
}

func DeleteBook(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Books.Remove(chi.URLParam(r, "id")); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		respondJSON(w, map[string]any{"ok": true})
	}
}

// BookQR streams the printable label code as a PNG.
func BookQR(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := d.Books.LabelPayload(chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, err.Error(), storeStatus(err))
			return
		}
		size, _ := strconv.Atoi(r.URL.Query().Get("size"))
		png, err := qr.PNG(payload, size)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
	}
}

func ListColumns(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, d.Books.Columns())
	}
}

func AddColumn(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var c models.CustomColumn
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if c.Key == "" || c.Label == "" {
			http.Error(w, "key and label required", http.StatusBadRequest)
			return
		}
		switch c.Type {
		case models.ColumnText, models.ColumnNumber, models.ColumnDate:
		default:
			http.Error(w, "type must be text, number, or date", http.StatusBadRequest)
			return
		}
		if err := d.Books.AddColumn(c); err != nil {
			if errors.Is(err, storage.ErrDuplicateKey) {
				http.Error(w, "column already exists", http.StatusConflict)
				return
			}
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		respondJSON(w, map[string]any{"ok": true})
	}
}

func RemoveColumn(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Books.RemoveColumn(chi.URLParam(r, "key")); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		respondJSON(w, map[string]any{"ok": true})
	}
}
