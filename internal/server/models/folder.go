package models

import "time"

// Folder is a server copy of a client folder. IDs are client generated.
// Deleted rows are kept as tombstones so other devices learn about them.
type Folder struct {
	ID        string
	UserID    string
	Name      string
	ParentID  *string
	CreatedAt time.Time
	UpdatedAt time.Time
	Deleted   bool
}
