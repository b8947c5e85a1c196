package folders

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/docme/internal/common"
	"github.com/dmitrijs2005/docme/internal/dbx"
	"github.com/dmitrijs2005/docme/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert keeps an existing tombstone deleted, so a retried create cannot
// resurrect a folder another device removed.
func (r *PostgresRepository) Upsert(ctx context.Context, f *models.Folder) error {
	query :=
		`INSERT INTO folders (id, user_id, name, parent_id, created_at, updated_at, deleted)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE SET
		   name = EXCLUDED.name,
		   parent_id = EXCLUDED.parent_id,
		   updated_at = EXCLUDED.updated_at,
		   deleted = folders.deleted OR EXCLUDED.deleted
		 WHERE folders.user_id = EXCLUDED.user_id`

	res, err := r.db.ExecContext(ctx, query,
		f.ID, f.UserID, f.Name, f.ParentID, f.CreatedAt, f.UpdatedAt, f.Deleted)
	if err != nil {
		return fmt.Errorf("failed to upsert folder: %w", err)
	}
	if err := dbx.ExpectAffected(res); err != nil {
		return common.ErrConflict
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, f *models.Folder) error {
	query :=
		`UPDATE folders SET name = $3, parent_id = $4, updated_at = $5, deleted = $6
		 WHERE id = $1 AND user_id = $2 AND NOT deleted`

	res, err := r.db.ExecContext(ctx, query,
		f.ID, f.UserID, f.Name, f.ParentID, f.UpdatedAt, f.Deleted)
	if err != nil {
		return fmt.Errorf("failed to update folder: %w", err)
	}
	return dbx.ExpectAffected(res)
}

// SelectAll returns every folder of the user, tombstones included.
func (r *PostgresRepository) SelectAll(ctx context.Context, userID string) ([]models.Folder, error) {
	query :=
		`SELECT id, user_id, name, parent_id, created_at, updated_at, deleted
		 FROM folders WHERE user_id = $1
		 ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select folders: %w", err)
	}
	defer rows.Close()

	var result []models.Folder
	for rows.Next() {
		var f models.Folder
		if err := rows.Scan(&f.ID, &f.UserID, &f.Name, &f.ParentID, &f.CreatedAt, &f.UpdatedAt, &f.Deleted); err != nil {
			return nil, fmt.Errorf("failed to scan folder: %w", err)
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate folders: %w", err)
	}
	return result, nil
}

// MarkDeletedTree walks parent_id links with UNION so a corrupt cycle still
// terminates. The root id is returned first. An unknown root is
// common.ErrNotFound; an already deleted root is tombstoned again, which
// keeps DELETE idempotent.
func (r *PostgresRepository) MarkDeletedTree(ctx context.Context, userID, id string, at time.Time) ([]string, error) {
	query :=
		`WITH RECURSIVE tree(id) AS (
		   SELECT id FROM folders WHERE id = $1 AND user_id = $2
		   UNION
		   SELECT f.id FROM folders f JOIN tree t ON f.parent_id = t.id
		   WHERE f.user_id = $2
		 )
		 UPDATE folders SET deleted = TRUE, updated_at = $3
		 WHERE id IN (SELECT id FROM tree)
		 RETURNING id`

	rows, err := r.db.QueryContext(ctx, query, id, userID, at)
	if err != nil {
		return nil, fmt.Errorf("failed to delete folder tree: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var fid string
		if err := rows.Scan(&fid); err != nil {
			return nil, fmt.Errorf("failed to scan folder id: %w", err)
		}
		ids = append(ids, fid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate folder tree: %w", err)
	}
	if len(ids) == 0 {
		return nil, common.ErrNotFound
	}
	for i := range ids {
		if ids[i] == id {
			ids[0], ids[i] = ids[i], ids[0]
			break
		}
	}
	return ids, nil
}
