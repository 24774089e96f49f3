// Package reservations keeps the kiosk's reservation queue, newest first.
package reservations

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"wiselib/internal/models"
	"wiselib/internal/storage"
)

const Key = "jrmsu_reservations"

type Service struct {
	col *storage.Collection[models.ReservationRecord]
}

func New(b storage.Backend, lg *zap.SugaredLogger) *Service {
	return &Service{
		col: storage.NewCollection(b, Key, storage.CollectionConfig[models.ReservationRecord]{
			KeyOf:    func(r models.ReservationRecord) string { return r.ID },
			Prepend:  true,
			Critical: true,
			Logger:   lg,
		}),
	}
}

// Add inserts a reservation at the head of the queue.
func (s *Service) Add(bookID, bookTitle, studentID, studentName string) (models.ReservationRecord, error) {
	now := time.Now()
	rec := models.ReservationRecord{
		ID:          fmt.Sprintf("RV-%d", now.UnixMilli()),
		BookID:      bookID,
		BookTitle:   bookTitle,
		StudentID:   studentID,
		StudentName: studentName,
		CreatedAt:   now.UTC().Format(time.RFC3339),
	}
	if err := s.col.Create(rec); err != nil {
		return models.ReservationRecord{}, err
	}
	return rec, nil
}

// List returns reservations newest first.
func (s *Service) List() []models.ReservationRecord { return s.col.List() }

// ByBook filters reservations for one book.
func (s *Service) ByBook(bookID string) []models.ReservationRecord {
	all := s.col.List()
	out := all[:0:0]
	for _, r := range all {
		if r.BookID == bookID {
			out = append(out, r)
		}
	}
	return out
}

// Remove drops one reservation, a no-op when the id is unknown.
func (s *Service) Remove(id string) error { return s.col.Remove(id) }

// Clear empties the queue.
func (s *Service) Clear() error { return s.col.Replace([]models.ReservationRecord{}) }
