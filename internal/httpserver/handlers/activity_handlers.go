package handlers

import (
	"net/http"

	"wiselib/internal/auth"
)

// MyActivity returns the caller's log; admins can request everyone's with
// ?all=1.
func MyActivity(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := auth.FromContext(r.Context())
		if r.URL.Query().Get("all") == "1" && claims.HasRole("Administrator") {
			respondJSON(w, d.Activity.List(""))
			return
		}
		respondJSON(w, d.Activity.List(claims.Subject))
	}
}

// SyncActivity mirrors the local log to the campus backend, one record at a
// time, stopping at the first failure.
func SyncActivity(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Remote == nil {
			http.Error(w, "no backend configured", http.StatusServiceUnavailable)
			return
		}
		pushed := 0
		for _, rec := range d.Activity.List("") {
			if err := d.Remote.PushActivity(r.Context(), rec); err != nil {
				d.Log.Warnw("activity sync stopped", "pushed", pushed, "error", err)
				http.Error(w, err.Error(), http.StatusBadGateway)
				return
			}
			pushed++
		}
		respondJSON(w, map[string]any{"pushed": pushed})
	}
}
