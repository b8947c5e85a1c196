// Package folders persists folders in the local SQLite store.
//
// Reads exclude tombstones unless the method name says otherwise. Delete is
// a soft delete; rows disappear only through Purge, which the sync engine
// calls once the remote side has confirmed the deletion.
package folders

import (
	"context"
	"time"

	"github.com/dmitrijs2005/docme/internal/client/models"
)

type Repository interface {
	Create(ctx context.Context, f *models.Folder) error
	// Update persists an in-place mutation of a live folder. is_new is left
	// alone; only MarkSynced clears it.
	Update(ctx context.Context, f *models.Folder) error
	// Delete turns the folder into a dirty tombstone.
	Delete(ctx context.Context, id string) error
	FetchAll(ctx context.Context) ([]models.Folder, error)
	FetchByID(ctx context.Context, id string) (*models.Folder, error)
	// FetchChildren lists folders directly under parentID (nil = top level).
	FetchChildren(ctx context.Context, parentID *string) ([]models.Folder, error)
	Count(ctx context.Context, parentID *string) (int, error)

	FetchAllIncludingDeleted(ctx context.Context) ([]models.Folder, error)
	FetchAnyByID(ctx context.Context, id string) (*models.Folder, error)
	// Upsert writes a remote record verbatim, flags included.
	Upsert(ctx context.Context, f *models.Folder) error
	// MarkSynced clears is_new, and clears is_dirty only when updated_at
	// still equals observed. It reports whether the row came out clean.
	MarkSynced(ctx context.Context, id string, observed time.Time) (bool, error)
	// PurgeTombstone physically removes the row if it is still deleted.
	PurgeTombstone(ctx context.Context, id string) error
	Purge(ctx context.Context, id string) error
}
