package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"wiselib/internal/auth"
	"wiselib/internal/models"
	"wiselib/internal/qr"
)

// ValidateQR checks a scanned envelope without logging anyone in. The campus
// backend gets first say when configured; local validation is the fallback.
func ValidateQR(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Data string `json:"data"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if d.Remote != nil {
			if valid, msg, err := d.Remote.ValidateQR(r.Context(), req.Data); err == nil {
				out := map[string]any{"valid": valid}
				if msg != "" {
					out["errors"] = []string{msg}
				}
				respondJSON(w, out)
				return
			} else {
				d.Log.Debugw("remote qr validate failed, validating locally", "error", err)
			}
		}
		res, err := qr.Validate(req.Data)
		if errors.Is(err, qr.ErrMalformedPayload) {
			respondJSON(w, map[string]any{"valid": false, "errors": []string{"payload is not valid JSON"}})
			return
		}
		respondJSON(w, map[string]any{"valid": res.Valid, "errors": res.Errors, "warnings": res.Warnings})
	}
}

// MyQR returns the caller's stored identity envelope, minting one on first
// use.
func MyQR(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := auth.Subject(r.Context())
		u, ok := d.Users.ByID(uid)
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		payload := u.QRCodeData
		if payload == "" {
			var err error
			payload, err = d.Users.RegenerateQR(uid)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			u, _ = d.Users.ByID(uid)
		}
		respondJSON(w, map[string]any{"payload": payload, "generatedAt": u.QRCodeGeneratedAt})
	}
}

// RegenerateQR mints a fresh envelope, invalidating the previous image.
func RegenerateQR(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := auth.Subject(r.Context())
		payload, err := d.Users.RegenerateQR(uid)
		if err != nil {
			http.Error(w, err.Error(), storeStatus(err))
			return
		}
		d.Activity.Log(uid, models.ActionQRRegenerate, "")
		respondJSON(w, map[string]any{"payload": payload})
	}
}

// MyQRImage streams the caller's envelope rendered as a PNG.
func MyQRImage(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := auth.Subject(r.Context())
		u, ok := d.Users.ByID(uid)
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		payload := u.QRCodeData
		if payload == "" {
			var err error
			payload, err = d.Users.RegenerateQR(uid)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
		}
		size := qr.DefaultImageSize
		if s := r.URL.Query().Get("size"); s != "" {
			if n, err := strconv.Atoi(s); err == nil && n > 0 {
				size = n
			}
		}
		png, err := qr.PNG(payload, size)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		d.Activity.Log(uid, models.ActionQRDownload, "")
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
	}
}
