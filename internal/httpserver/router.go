package httpserver

import (
	"net/http"

	"wiselib/internal/auth"
	"wiselib/internal/httpserver/handlers"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(d handlers.Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, middleware.Logger)

	r.Post("/v1/auth/login", handlers.Login(d))
	r.Post("/v1/auth/qr", handlers.QRLogin(d))
	r.Post("/v1/auth/register", handlers.Register(d))
	r.Post("/v1/auth/reset/request", handlers.RequestReset(d))
	r.Post("/v1/auth/reset/verify", handlers.VerifyResetCode(d))
	r.Post("/v1/auth/reset", handlers.ResetPassword(d))
	r.Post("/v1/qr/validate", handlers.ValidateQR(d))
	r.Get("/v1/register/draft", handlers.GetDraft(d))
	r.Put("/v1/register/draft", handlers.SaveDraft(d))
	r.Delete("/v1/register/draft", handlers.ClearDraft(d))

	r.Group(func(protected chi.Router) {
		protected.Use(auth.JWTAuth(d.Sessions))
		protected.Get("/v1/me", handlers.Me(d))
		protected.Post("/v1/auth/logout", handlers.Logout(d))
		protected.Post("/v1/auth/password", handlers.ChangePassword(d))

		protected.Get("/v1/me/qr", handlers.MyQR(d))
		protected.Get("/v1/me/qr.png", handlers.MyQRImage(d))
		protected.Post("/v1/me/qr/regenerate", handlers.RegenerateQR(d))

		protected.Post("/v1/2fa/generate", handlers.Generate2FA(d))
		protected.Post("/v1/2fa/verify", handlers.Confirm2FA(d))
		protected.Post("/v1/2fa/disable", handlers.Disable2FA(d))

		protected.Get("/v1/books", handlers.ListBooks(d))
		protected.Get("/v1/books/{id}/qr", handlers.BookQR(d))
		protected.Get("/v1/books/columns", handlers.ListColumns(d))

		protected.Post("/v1/borrow", handlers.BorrowBook(d))
		protected.Post("/v1/borrow/{id}/return", handlers.ReturnBook(d))
		protected.Get("/v1/borrow", handlers.ListBorrows(d))

		protected.Get("/v1/reservations", handlers.ListReservations(d))
		protected.Post("/v1/reservations", handlers.CreateReservation(d))

		protected.Get("/v1/activity", handlers.MyActivity(d))

		protected.Get("/v1/prefs", handlers.GetPrefs(d))
		protected.Patch("/v1/prefs", handlers.PatchPrefs(d))
		protected.Put("/v1/prefs/sidebar", handlers.SetSidebar(d))

		protected.Get("/v1/stats", handlers.GetStats(d))

		protected.Group(func(admin chi.Router) {
			admin.Use(auth.RequireRole("Administrator"))
			admin.Post("/v1/books", handlers.CreateBook(d))
			admin.Patch("/v1/books/{id}", handlers.UpdateBook(d))
			admin.Delete("/v1/books/{id}", handlers.DeleteBook(d))
			admin.Post("/v1/books/columns", handlers.AddColumn(d))
			admin.Delete("/v1/books/columns/{key}", handlers.RemoveColumn(d))
			admin.Delete("/v1/reservations/{id}", handlers.ClearReservation(d))
			admin.Get("/v1/admin/users", handlers.ListUsers(d))
			admin.Patch("/v1/admin/users/{id}", handlers.UpdateUser(d))
			admin.Delete("/v1/admin/users/{id}", handlers.DeleteUser(d))
			admin.Post("/v1/activity/sync", handlers.SyncActivity(d))
			admin.Get("/v1/reports/books.xlsx", handlers.BooksReport(d))
			admin.Get("/v1/reports/activity.xlsx", handlers.ActivityReport(d))
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	return r
}
