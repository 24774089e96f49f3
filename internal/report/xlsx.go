// Package report renders store collections as spreadsheets for the admin
// export screens.
package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"wiselib/internal/services/activity"
	"wiselib/internal/services/books"
)

// Books exports the catalog, core columns first and custom columns after, in
// declaration order.
func Books(svc *books.Service) (*excelize.File, error) {
	f := excelize.NewFile()
	const sheet = "Books"
	f.SetSheetName("Sheet1", sheet)

	headers := []any{"Book Code", "Title", "Author", "Category", "ISBN", "Shelf", "Copies", "Available", "Status"}
	cols := svc.Columns()
	for _, c := range cols {
		headers = append(headers, c.Label)
	}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, err
	}

	for i, b := range svc.List() {
		row := []any{b.ID, b.Title, b.Author, b.Category, b.ISBN, b.Shelf, b.Copies, b.Available, string(b.Status)}
		for _, c := range cols {
			row = append(row, b.Extra[c.Key])
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Activity exports the activity log, newest first, optionally one user's.
func Activity(svc *activity.Service, userID string) (*excelize.File, error) {
	f := excelize.NewFile()
	const sheet = "Activity"
	f.SetSheetName("Sheet1", sheet)

	headers := []any{"ID", "User ID", "Action", "Details", "Timestamp"}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, err
	}
	for i, r := range svc.List(userID) {
		row := []any{r.ID, r.UserID, string(r.Action), r.Details, r.Timestamp}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}
	return f, nil
}
