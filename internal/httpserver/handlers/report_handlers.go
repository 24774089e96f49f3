package handlers

import (
	"net/http"

	"github.com/xuri/excelize/v2"

	"wiselib/internal/auth"
	"wiselib/internal/models"
	"wiselib/internal/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func streamSheet(w http.ResponseWriter, f *excelize.File, name string) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	_ = f.Write(w)
	_ = f.Close()
}

// BooksReport exports the catalog as a spreadsheet.
func BooksReport(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := report.Books(d.Books)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		d.Activity.Log(auth.Subject(r.Context()), models.ActionReportExport, "books")
		streamSheet(w, f, "books.xlsx")
	}
}

// ActivityReport exports the activity log, optionally one user's via ?userId=.
func ActivityReport(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := report.Activity(d.Activity, r.URL.Query().Get("userId"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		d.Activity.Log(auth.Subject(r.Context()), models.ActionReportExport, "activity")
		streamSheet(w, f, "activity.xlsx")
	}
}
