package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"wiselib/internal/remote"
	"wiselib/internal/services/activity"
	"wiselib/internal/services/books"
	"wiselib/internal/services/borrow"
	"wiselib/internal/services/prefs"
	"wiselib/internal/services/regdraft"
	"wiselib/internal/services/reservations"
	"wiselib/internal/services/resetcode"
	"wiselib/internal/services/sessions"
	"wiselib/internal/services/stats"
	"wiselib/internal/services/users"
	"wiselib/internal/storage"
)

// Deps bundles the station services the handlers close over.
type Deps struct {
	Users        *users.Service
	Sessions     *sessions.Service
	Books        *books.Service
	Borrow       *borrow.Service
	Reservations *reservations.Service
	Activity     *activity.Service
	Prefs        *prefs.Service
	Reset        *resetcode.Service
	Regdraft     *regdraft.Service
	Stats        *stats.Service
	// Remote is nil when no campus backend is configured; handlers that can
	// fall back to local logic do so.
	Remote *remote.Client
	Log    *zap.SugaredLogger
}

// storeStatus maps storage errors onto HTTP codes.
func storeStatus(err error) int {
	switch {
	case errors.Is(err, storage.ErrDuplicateKey):
		return http.StatusConflict
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
