package models

import (
	"time"

	"github.com/google/uuid"
)

type Folder struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
	// ParentID is nil for top-level folders.
	ParentID *string

	IsDirty bool
	IsNew   bool
	Deleted bool
}

// NewFolder returns a folder that was never created remotely.
func NewFolder(name string, parentID *string) *Folder {
	now := Now()
	return &Folder{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
		ParentID:  CloneString(parentID),
		IsDirty:   true,
		IsNew:     true,
	}
}

// Touch marks a local mutation.
func (f *Folder) Touch() {
	f.UpdatedAt = Now()
	f.IsDirty = true
}

// MarkDeleted turns f into a tombstone awaiting remote confirmation.
func (f *Folder) MarkDeleted() {
	f.Deleted = true
	f.Touch()
}

// Now is the timestamp used for created/updated stamps. It is truncated to
// microseconds, the precision the server stores.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func CloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// SameRef reports whether two optional references point to the same id.
func SameRef(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
