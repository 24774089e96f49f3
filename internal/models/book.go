package models

import "encoding/json"

type BookStatus string

const (
	BookAvailable   BookStatus = "available"
	BookBorrowed    BookStatus = "borrowed"
	BookUnavailable BookStatus = "unavailable"
)

type ColumnType string

const (
	ColumnText   ColumnType = "text"
	ColumnNumber ColumnType = "number"
	ColumnDate   ColumnType = "date"
)

// CustomColumn declares one admin-defined catalog column. Adding a column
// back-fills its default value onto every book; removing it strips the key.
type CustomColumn struct {
	Key   string     `json:"key"`
	Label string     `json:"label"`
	Type  ColumnType `json:"type"`
}

// DefaultValue is what a new column back-fills onto existing books.
func (c CustomColumn) DefaultValue() any {
	if c.Type == ColumnNumber {
		return float64(0)
	}
	return ""
}

// BookRecord is one catalog entry. The fixed schema covers what the system
// itself needs; Extra holds admin-defined column values and is flattened into
// the record's JSON next to the core fields, so stored data stays compatible
// with front-ends that read the columns as plain properties.
type BookRecord struct {
	ID        string     `json:"id"` // book code, unique
	Title     string     `json:"title"`
	Author    string     `json:"author"`
	Category  string     `json:"category"`
	ISBN      string     `json:"isbn,omitempty"`
	Shelf     string     `json:"shelf,omitempty"`
	Copies    int        `json:"copies"`
	Available int        `json:"available"`
	Status    BookStatus `json:"status"`

	Extra map[string]any `json:"-"`
}

// bookAlias carries the core fields without BookRecord's marshal methods.
type bookAlias BookRecord

var bookCoreKeys = []string{"id", "title", "author", "category", "isbn", "shelf", "copies", "available", "status"}

func (b BookRecord) MarshalJSON() ([]byte, error) {
	core, err := json.Marshal(bookAlias(b))
	if err != nil {
		return nil, err
	}
	if len(b.Extra) == 0 {
		return core, nil
	}
	var m map[string]any
	if err := json.Unmarshal(core, &m); err != nil {
		return nil, err
	}
	for k, v := range b.Extra {
		if _, taken := m[k]; !taken {
			m[k] = v
		}
	}
	return json.Marshal(m)
}

func (b *BookRecord) UnmarshalJSON(data []byte) error {
	var a bookAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	for _, k := range bookCoreKeys {
		delete(m, k)
	}
	if len(m) > 0 {
		a.Extra = m
	}
	*b = BookRecord(a)
	return nil
}
