package handlers

import (
	"encoding/json"
	"net/http"

	"wiselib/internal/models"
)

// GetDraft returns the saved registration draft, or 204 when there is none.
func GetDraft(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		draft, ok := d.Regdraft.Load()
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		respondJSON(w, draft)
	}
}

// SaveDraft replaces the saved registration draft.
func SaveDraft(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var draft models.RegistrationDraft
		if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		d.Regdraft.Save(draft)
		respondJSON(w, map[string]any{"ok": true})
	}
}

// ClearDraft drops the saved registration draft.
func ClearDraft(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.Regdraft.Clear()
		respondJSON(w, map[string]any{"ok": true})
	}
}
