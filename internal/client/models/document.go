package models

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	ID          string
	Title       string
	Description *string
	Icon        Icon
	Color       Color
	IsFavorite  bool
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// ImagePath is the local file of the materialized image.
	ImagePath *string
	// RemoteImageURL is where the image can be downloaded from.
	RemoteImageURL *string
	// RemoteImageKey is the server storage key once the image was uploaded.
	RemoteImageKey *string

	FolderID *string

	IsDirty bool
	IsNew   bool
	Deleted bool

	Fields []Field
}

// NewDocument holds user input for a document created on the device.
type NewDocument struct {
	Title       string
	Description *string
	Icon        Icon
	Color       Color
	IsFavorite  bool
	FolderID    *string
	Fields      []Field
}

func (n NewDocument) Build() *Document {
	now := Now()
	d := &Document{
		ID:          uuid.NewString(),
		Title:       n.Title,
		Description: CloneString(n.Description),
		Icon:        n.Icon,
		Color:       n.Color,
		IsFavorite:  n.IsFavorite,
		CreatedAt:   now,
		UpdatedAt:   now,
		FolderID:    CloneString(n.FolderID),
		IsDirty:     true,
		IsNew:       true,
	}
	if d.Icon == "" {
		d.Icon = IconTag
	}
	if d.Color == "" {
		d.Color = ColorNone
	}
	d.SetFields(n.Fields)
	return d
}

// SetFields replaces the field set, re-parenting and re-numbering every field.
func (d *Document) SetFields(fields []Field) {
	d.Fields = make([]Field, len(fields))
	for i, f := range fields {
		if f.ID == "" {
			f.ID = uuid.NewString()
		}
		f.DocumentID = d.ID
		f.Position = i
		d.Fields[i] = f
	}
}

func (d *Document) Touch() {
	d.UpdatedAt = Now()
	d.IsDirty = true
}

func (d *Document) MarkDeleted() {
	d.Deleted = true
	d.Touch()
}

// NeedsImageUpload is true when a local image exists that the server does
// not know about yet.
func (d *Document) NeedsImageUpload() bool {
	return d.ImagePath != nil && *d.ImagePath != "" && d.RemoteImageKey == nil
}
