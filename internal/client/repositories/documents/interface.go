// Package documents persists documents, together with their fields, in the
// local SQLite store. Reads return documents with their fields loaded.
package documents

import (
	"context"
	"time"

	"github.com/dmitrijs2005/docme/internal/client/models"
)

type Repository interface {
	// Create inserts the document and its fields in one transaction.
	Create(ctx context.Context, d *models.Document) error
	// Update persists a live document and replaces its field set. is_new is
	// left alone.
	Update(ctx context.Context, d *models.Document) error
	Delete(ctx context.Context, id string) error
	FetchAll(ctx context.Context) ([]models.Document, error)
	FetchByID(ctx context.Context, id string) (*models.Document, error)
	// FetchChildren lists documents in folderID (nil = not in any folder).
	FetchChildren(ctx context.Context, folderID *string) ([]models.Document, error)
	Count(ctx context.Context, folderID *string) (int, error)

	Search(ctx context.Context, query string) ([]models.Document, error)
	FetchByColor(ctx context.Context, color models.Color) ([]models.Document, error)
	FetchFavorites(ctx context.Context) ([]models.Document, error)

	FetchAllIncludingDeleted(ctx context.Context) ([]models.Document, error)
	FetchAnyByID(ctx context.Context, id string) (*models.Document, error)
	// Upsert writes a remote record and its fields verbatim.
	Upsert(ctx context.Context, d *models.Document) error
	MarkSynced(ctx context.Context, id string, observed time.Time) (bool, error)
	// SetRemoteImageKey records an uploaded image without touching sync flags.
	SetRemoteImageKey(ctx context.Context, id string, key string) error
	PurgeTombstone(ctx context.Context, id string) error
	Purge(ctx context.Context, id string) error
}
