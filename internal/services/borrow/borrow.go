// Package borrow tracks the lending ledger and keeps catalog availability in
// step with it.
package borrow

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"wiselib/internal/models"
	"wiselib/internal/services/books"
	"wiselib/internal/storage"
)

const (
	Key = "jrmsu_borrow_history"
	// DefaultLoanDays is the business-day loan period.
	DefaultLoanDays = 7
)

var ErrUnavailable = errors.New("book unavailable")

type Service struct {
	col   *storage.Collection[models.BorrowRecord]
	books *books.Service
}

func New(b storage.Backend, bookSvc *books.Service, lg *zap.SugaredLogger) *Service {
	return &Service{
		col: storage.NewCollection(b, Key, storage.CollectionConfig[models.BorrowRecord]{
			KeyOf:    func(r models.BorrowRecord) string { return r.ID },
			Prepend:  true,
			Critical: true,
			Logger:   lg,
		}),
		books: bookSvc,
	}
}

// DueDate adds loan days to start, skipping Saturdays and Sundays.
func DueDate(start time.Time, days int) time.Time {
	added := 0
	d := start
	for added < days {
		d = d.AddDate(0, 0, 1)
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			added++
		}
	}
	return d
}

// Borrow checks the book out to a student, decrementing availability.
func (s *Service) Borrow(bookID, studentID string) (models.BorrowRecord, error) {
	book, ok := s.books.Get(bookID)
	if !ok {
		return models.BorrowRecord{}, fmt.Errorf("%w: %s", storage.ErrNotFound, bookID)
	}
	if book.Available <= 0 || book.Status != models.BookAvailable {
		return models.BorrowRecord{}, ErrUnavailable
	}

	now := time.Now()
	rec := models.BorrowRecord{
		ID:         fmt.Sprintf("BR-%d", now.UnixMilli()),
		BookID:     book.ID,
		BookTitle:  book.Title,
		StudentID:  studentID,
		BorrowDate: now.Format("2006-01-02"),
		DueDate:    DueDate(now, DefaultLoanDays).Format("2006-01-02"),
		Status:     models.BorrowActive,
	}
	if err := s.col.Create(rec); err != nil {
		return models.BorrowRecord{}, err
	}

	avail := book.Available - 1
	status := book.Status
	if avail <= 0 {
		status = models.BookUnavailable
	}
	if err := s.books.Update(book.ID, books.Patch{Available: &avail, Status: &status}); err != nil {
		return models.BorrowRecord{}, err
	}
	return rec, nil
}

// Return marks the record returned and restores availability. Returning an
// already-returned record is a no-op.
func (s *Service) Return(recordID string) error {
	rec, ok := s.col.Get(recordID)
	if !ok {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, recordID)
	}
	if rec.ReturnDate != "" {
		return nil
	}
	err := s.col.Update(recordID, func(r *models.BorrowRecord) {
		r.ReturnDate = time.Now().Format("2006-01-02")
		r.Status = models.BorrowReturned
	})
	if err != nil {
		return err
	}

	if book, ok := s.books.Get(rec.BookID); ok {
		avail := book.Available + 1
		if avail > book.Copies {
			avail = book.Copies
		}
		status := book.Status
		if avail > 0 {
			status = models.BookAvailable
		}
		return s.books.Update(book.ID, books.Patch{Available: &avail, Status: &status})
	}
	return nil
}

// List returns the ledger newest first with overdue status normalized
// against today's date.
func (s *Service) List() []models.BorrowRecord {
	today := time.Now().Format("2006-01-02")
	all := s.col.List()
	for i := range all {
		if all[i].ReturnDate == "" && all[i].DueDate < today {
			all[i].Status = models.BorrowOverdue
		}
	}
	return all
}

// ByStudent filters the ledger to one borrower.
func (s *Service) ByStudent(studentID string) []models.BorrowRecord {
	all := s.List()
	out := all[:0:0]
	for _, r := range all {
		if r.StudentID == studentID {
			out = append(out, r)
		}
	}
	return out
}
