// Package folders persists the server copy of user folders.
package folders

import (
	"context"
	"time"

	"github.com/dmitrijs2005/docme/internal/server/models"
)

type Repository interface {
	// Upsert inserts f or overwrites the row with the same id owned by the
	// same user. A row owned by someone else is common.ErrConflict.
	Upsert(ctx context.Context, f *models.Folder) error
	// Update overwrites a live folder of f.UserID; otherwise common.ErrNotFound.
	Update(ctx context.Context, f *models.Folder) error
	SelectAll(ctx context.Context, userID string) ([]models.Folder, error)
	// MarkDeletedTree tombstones the folder and all its descendants and
	// returns their ids, root first.
	MarkDeletedTree(ctx context.Context, userID, id string, at time.Time) ([]string, error)
}
