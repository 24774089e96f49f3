package handlers

import "net/http"

// GetStats returns the live dashboard numbers.
func GetStats(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, d.Stats.Compute())
	}
}
