package qr

import (
	"encoding/json"
	"fmt"
)

// BookLabelType discriminates book label payloads from identity envelopes.
const BookLabelType = "BOOK"

// BookLabel is the payload printed on physical book labels. It carries no
// authentication fields.
type BookLabel struct {
	T        string `json:"t"`
	ID       string `json:"id"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	Category string `json:"category"`
	ISBN     string `json:"isbn,omitempty"`
}

// NewBookLabel builds a label payload for one catalog record.
func NewBookLabel(id, title, author, category, isbn string) BookLabel {
	return BookLabel{T: BookLabelType, ID: id, Title: title, Author: author, Category: category, ISBN: isbn}
}

func (l BookLabel) Marshal() (string, error) {
	raw, err := json.Marshal(l)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// DecodeBookLabel parses a scanned book label.
func DecodeBookLabel(payload string) (BookLabel, error) {
	var l BookLabel
	if err := json.Unmarshal([]byte(payload), &l); err != nil {
		return BookLabel{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if l.T != BookLabelType {
		return BookLabel{}, fmt.Errorf("not a book label: t=%q", l.T)
	}
	if l.ID == "" {
		return BookLabel{}, fmt.Errorf("book label missing id")
	}
	return l, nil
}
