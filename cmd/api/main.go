package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"wiselib/internal/httpserver"
	"wiselib/internal/httpserver/handlers"
	"wiselib/internal/logger"
	"wiselib/internal/models"
	"wiselib/internal/notify"
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

func main() {
	_ = godotenv.Load()
	lg := logger.New()
	defer lg.Sync()

	backend := openBackend(lg)
	notifier := openNotifier(lg)

	activitySvc := activity.New(backend, notifier, lg)
	bookSvc := books.New(backend, lg)
	borrowSvc := borrow.New(backend, bookSvc, lg)
	reservationSvc := reservations.New(backend, lg)
	userSvc := users.New(backend, lg)
	sessionSvc := sessions.New(backend, lg)
	prefSvc := prefs.New(backend, notifier, lg)
	resetSvc := resetcode.New(backend, lg)
	draftSvc := regdraft.New(backend, lg)
	statsSvc := stats.New(bookSvc, borrowSvc, notifier, lg)

	seedDefaultAdmin(userSvc, lg)
	if err := bookSvc.EnsureSeed(); err != nil {
		lg.Warnw("catalog seed failed", "error", err)
	}

	var backendClient *remote.Client
	if base := os.Getenv("BACKEND_URL"); base != "" {
		backendClient = remote.New(base, &http.Client{Timeout: 15 * time.Second}, lg)
		lg.Infow("campus backend configured", "url", base)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stop := statsSvc.Start(ctx, time.Minute)
	defer stop()

	router := httpserver.NewRouter(handlers.Deps{
		Users:        userSvc,
		Sessions:     sessionSvc,
		Books:        bookSvc,
		Borrow:       borrowSvc,
		Reservations: reservationSvc,
		Activity:     activitySvc,
		Prefs:        prefSvc,
		Reset:        resetSvc,
		Regdraft:     draftSvc,
		Stats:        statsSvc,
		Remote:       backendClient,
		Log:          lg,
	})

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}
	lg.Infow("listening", "port", port)
	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatal(err)
	}
}

// openBackend picks the record store per STORE_DRIVER: "sqlite" keeps
// everything in one database file, anything else uses a directory of JSON
// files.
func openBackend(lg *zap.SugaredLogger) storage.Backend {
	if os.Getenv("STORE_DRIVER") == "sqlite" {
		path := os.Getenv("STORE_PATH")
		if path == "" {
			path = "wiselib.db"
		}
		b, err := storage.OpenSQLite(path)
		if err != nil {
			lg.Fatalw("sqlite open failed", "path", path, "error", err)
		}
		lg.Infow("store ready", "driver", "sqlite", "path", path)
		return b
	}
	dir := os.Getenv("STORE_DIR")
	if dir == "" {
		dir = "./data"
	}
	b, err := storage.NewDir(dir)
	if err != nil {
		lg.Fatalw("store dir open failed", "dir", dir, "error", err)
	}
	lg.Infow("store ready", "driver", "dir", "dir", dir)
	return b
}

// openNotifier fans record changes out across stations via Redis when
// REDIS_ADDR is set; a single station runs on the in-process bus.
func openNotifier(lg *zap.SugaredLogger) notify.Notifier {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return notify.NewBus()
	}
	n, err := notify.NewRedis(addr, os.Getenv("REDIS_PASSWORD"), 0, lg)
	if err != nil {
		lg.Warnw("redis unavailable, falling back to in-process bus", "addr", addr, "error", err)
		return notify.NewBus()
	}
	lg.Infow("redis notifier ready", "addr", addr)
	return n
}

func seedDefaultAdmin(svc *users.Service, lg *zap.SugaredLogger) {
	const email = "admin@jrmsu.local"
	if _, ok := svc.ByEmail(email); ok {
		return
	}
	err := svc.Create(models.User{
		ID:        "KCL-00001",
		FirstName: "System",
		LastName:  "Administrator",
		Email:     email,
		UserType:  "admin",
		Role:      "Administrator",
	}, "1234")
	if err != nil {
		lg.Warnw("default admin seed failed", "error", err)
		return
	}
	lg.Infow("seeded default admin", "email", email)
}
