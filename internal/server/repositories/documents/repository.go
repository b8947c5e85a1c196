// Package documents persists the server copy of user documents and their
// fields.
package documents

import (
	"context"
	"time"

	"github.com/dmitrijs2005/docme/internal/server/models"
)

type Repository interface {
	// Upsert inserts d or overwrites the same user's row with that id. A
	// row owned by someone else is common.ErrConflict. Fields are not
	// touched; see ReplaceFields.
	Upsert(ctx context.Context, d *models.Document) error
	// Update overwrites a live document; otherwise common.ErrNotFound.
	Update(ctx context.Context, d *models.Document) error
	// ReplaceFields drops every field of the document and inserts fields in order.
	ReplaceFields(ctx context.Context, documentID string, fields []models.Field) error
	SelectAll(ctx context.Context, userID string) ([]models.Document, error)
	MarkDeleted(ctx context.Context, userID, id string, at time.Time) error
	// MarkDeletedInTree tombstones the user's live documents filed in the
	// folder or any of its descendants and reports how many rows changed.
	MarkDeletedInTree(ctx context.Context, userID, folderID string, at time.Time) (int64, error)
}
