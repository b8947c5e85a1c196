package models

import "time"

// Document is a server copy of a client document. ImageKey is the object
// storage key of its image, if any.
type Document struct {
	ID          string
	UserID      string
	Title       string
	ImageKey    *string
	Icon        string
	Color       string
	Description *string
	IsFavorite  bool
	FolderID    *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Deleted     bool
	Fields      []Field
}

// Field is a named value of a document. Position keeps the client order.
type Field struct {
	ID       string
	Name     string
	Value    string
	Position int
}
