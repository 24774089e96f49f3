// Package books manages the catalog: fixed-schema records plus admin-defined
// custom columns tracked as explicit schema, not ad hoc keys.
package books

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"wiselib/internal/models"
	"wiselib/internal/qr"
	"wiselib/internal/storage"
)

const (
	Key        = "jrmsu_books"
	ColumnsKey = "jrmsu_book_custom_columns"
)

var ErrAvailabilityRange = errors.New("available must be between 0 and copies")

type Service struct {
	col  *storage.Collection[models.BookRecord]
	cols *storage.Collection[models.CustomColumn]
}

// New builds the service. The catalog is business-critical: write failures
// propagate to callers.
func New(b storage.Backend, lg *zap.SugaredLogger) *Service {
	return &Service{
		col: storage.NewCollection(b, Key, storage.CollectionConfig[models.BookRecord]{
			KeyOf:    func(r models.BookRecord) string { return r.ID },
			Critical: true,
			Logger:   lg,
		}),
		cols: storage.NewCollection(b, ColumnsKey, storage.CollectionConfig[models.CustomColumn]{
			KeyOf:    func(c models.CustomColumn) string { return c.Key },
			Critical: true,
			Logger:   lg,
		}),
	}
}

func (s *Service) List() []models.BookRecord { return s.col.List() }

func (s *Service) Get(id string) (models.BookRecord, bool) { return s.col.Get(id) }

func (s *Service) Create(b models.BookRecord) error {
	if b.Available < 0 || b.Available > b.Copies {
		return ErrAvailabilityRange
	}
	return s.col.Create(b)
}

// Patch carries the fields an update may change. Nil means leave alone;
// Extra entries are merged key by key.
type Patch struct {
	Title     *string            `json:"title,omitempty"`
	Author    *string            `json:"author,omitempty"`
	Category  *string            `json:"category,omitempty"`
	ISBN      *string            `json:"isbn,omitempty"`
	Shelf     *string            `json:"shelf,omitempty"`
	Copies    *int               `json:"copies,omitempty"`
	Available *int               `json:"available,omitempty"`
	Status    *models.BookStatus `json:"status,omitempty"`
	Extra     map[string]any     `json:"extra,omitempty"`
}

func (p Patch) apply(b *models.BookRecord) {
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Author != nil {
		b.Author = *p.Author
	}
	if p.Category != nil {
		b.Category = *p.Category
	}
	if p.ISBN != nil {
		b.ISBN = *p.ISBN
	}
	if p.Shelf != nil {
		b.Shelf = *p.Shelf
	}
	if p.Copies != nil {
		b.Copies = *p.Copies
	}
	if p.Available != nil {
		b.Available = *p.Available
	}
	if p.Status != nil {
		b.Status = *p.Status
	}
	for k, v := range p.Extra {
		if b.Extra == nil {
			b.Extra = make(map[string]any)
		}
		b.Extra[k] = v
	}
}

// Update applies the patch after checking the merged record still satisfies
// 0 <= available <= copies.
func (s *Service) Update(id string, p Patch) error {
	b, ok := s.col.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	p.apply(&b)
	if b.Available < 0 || b.Available > b.Copies {
		return ErrAvailabilityRange
	}
	return s.col.Update(id, func(rec *models.BookRecord) { p.apply(rec) })
}

func (s *Service) Remove(id string) error { return s.col.Remove(id) }

// Columns returns the declared custom columns.
func (s *Service) Columns() []models.CustomColumn { return s.cols.List() }

// AddColumn declares a new column and back-fills its default value onto every
// existing book that does not already carry the key.
func (s *Service) AddColumn(c models.CustomColumn) error {
	for _, core := range []string{"id", "title", "author", "category", "isbn", "shelf", "copies", "available", "status"} {
		if c.Key == core {
			return fmt.Errorf("column key %q conflicts with a core field", c.Key)
		}
	}
	if err := s.cols.Create(c); err != nil {
		return err
	}
	all := s.col.List()
	def := c.DefaultValue()
	for i := range all {
		if all[i].Extra == nil {
			all[i].Extra = make(map[string]any)
		}
		if _, ok := all[i].Extra[c.Key]; !ok {
			all[i].Extra[c.Key] = def
		}
	}
	return s.col.Replace(all)
}

// RemoveColumn drops the declaration and strips the key from every book.
func (s *Service) RemoveColumn(key string) error {
	if err := s.cols.Remove(key); err != nil {
		return err
	}
	all := s.col.List()
	for i := range all {
		delete(all[i].Extra, key)
	}
	return s.col.Replace(all)
}

// LabelPayload builds the QR text for a book's physical label.
func (s *Service) LabelPayload(id string) (string, error) {
	b, ok := s.col.Get(id)
	if !ok {
		return "", fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	return qr.NewBookLabel(b.ID, b.Title, b.Author, b.Category, b.ISBN).Marshal()
}

// EnsureSeed writes the starter catalog when the store is empty.
func (s *Service) EnsureSeed() error {
	if len(s.col.List()) > 0 {
		return nil
	}
	return s.col.Create(models.BookRecord{
		ID:        "CS-AI-001",
		Title:     "Introduction to Artificial Intelligence",
		Author:    "Stuart Russell, Peter Norvig",
		Category:  "Computer Science",
		ISBN:      "978-0134610993",
		Shelf:     "A1-05",
		Copies:    5,
		Available: 3,
		Status:    models.BookAvailable,
	})
}
