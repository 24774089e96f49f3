package handlers

import (
	"encoding/json"
	"net/http"

	"wiselib/internal/auth"
	"wiselib/internal/models"
)

func GetPrefs(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, map[string]any{
			"state":             d.Prefs.Load(auth.Subject(r.Context())),
			"sidebarCollapsed":  d.Prefs.SidebarCollapsed(),
			"sidebarMobileOpen": d.Prefs.SidebarMobileOpen(),
		})
	}
}

func PatchPrefs(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch models.UIState
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		d.Prefs.Save(auth.Subject(r.Context()), patch)
		respondJSON(w, d.Prefs.Load(auth.Subject(r.Context())))
	}
}

func SetSidebar(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Collapsed  *bool `json:"collapsed,omitempty"`
			MobileOpen *bool `json:"mobileOpen,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Collapsed != nil {
			d.Prefs.SetSidebarCollapsed(*req.Collapsed)
		}
		if req.MobileOpen != nil {
			d.Prefs.SetSidebarMobileOpen(*req.MobileOpen)
		}
		respondJSON(w, map[string]any{"ok": true})
	}
}
