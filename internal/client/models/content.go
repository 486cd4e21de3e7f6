package models

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ContentKind selects one of the three content collections.
type ContentKind string

const (
	KindBooks ContentKind = "books"
	KindNotes ContentKind = "notes"
	KindPYQs  ContentKind = "pyqs"
)

var ErrUnknownKind = errors.New("unknown content kind")

// ParseContentKind accepts the collection name in singular or plural form.
func ParseContentKind(s string) (ContentKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "books", "book":
		return KindBooks, nil
	case "notes", "note":
		return KindNotes, nil
	case "pyqs", "pyq":
		return KindPYQs, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Item is a book, note or past-year question paper.
type Item struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	Category     string    `json:"category"`
	Department   string    `json:"department,omitempty"`
	Year         string    `json:"year,omitempty"`
	UploaderName string    `json:"uploaderName,omitempty"`
	FileName     string    `json:"fileName,omitempty"`
	MimeType     string    `json:"mimeType,omitempty"`
	FileData     string    `json:"fileData,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

var ErrNoFileData = errors.New("item has no file data")

// Payload decodes FileData, which is either a data URL
// ("data:<mime>;base64,<payload>") or bare base64.
func (i *Item) Payload() ([]byte, error) {
	data := i.FileData
	if data == "" {
		return nil, ErrNoFileData
	}
	if strings.HasPrefix(data, "data:") {
		_, encoded, ok := strings.Cut(data, ",")
		if !ok {
			return nil, fmt.Errorf("malformed data URL for %s", i.ID)
		}
		data = encoded
	}
	b, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("decode file data for %s: %w", i.ID, err)
	}
	return b, nil
}

// Filter narrows a content listing. Empty fields are omitted from the query.
type Filter struct {
	Department string `url:"department,omitempty"`
	Year       string `url:"year,omitempty"`
	Category   string `url:"category,omitempty"`
	Search     string `url:"search,omitempty"`
}

// Upload describes a multipart content upload.
type Upload struct {
	Name       string
	Category   string
	Department string
	Year       string
	FileName   string
	Content    []byte
}

var ErrIncompleteUpload = errors.New("upload needs a file, name and category")

// Validate enforces the fields the server requires.
func (u *Upload) Validate() error {
	if len(u.Content) == 0 || strings.TrimSpace(u.Name) == "" || strings.TrimSpace(u.Category) == "" {
		return ErrIncompleteUpload
	}
	return nil
}
