package documents

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

func (r *PostgresRepository) Upsert(ctx context.Context, d *models.Document) error {
	query :=
		`INSERT INTO documents (id, user_id, title, image_key, icon, color, description,
		   is_favorite, folder_id, created_at, updated_at, deleted)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 ON CONFLICT (id) DO UPDATE SET
		   title = EXCLUDED.title,
		   image_key = EXCLUDED.image_key,
		   icon = EXCLUDED.icon,
		   color = EXCLUDED.color,
		   description = EXCLUDED.description,
		   is_favorite = EXCLUDED.is_favorite,
		   folder_id = EXCLUDED.folder_id,
		   updated_at = EXCLUDED.updated_at,
		   deleted = documents.deleted OR EXCLUDED.deleted
		 WHERE documents.user_id = EXCLUDED.user_id`

	res, err := r.db.ExecContext(ctx, query,
		d.ID, d.UserID, d.Title, d.ImageKey, d.Icon, d.Color, d.Description,
		d.IsFavorite, d.FolderID, d.CreatedAt, d.UpdatedAt, d.Deleted)
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}
	if err := dbx.ExpectAffected(res); err != nil {
		return common.ErrConflict
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, d *models.Document) error {
	query :=
		`UPDATE documents SET title = $3, image_key = $4, icon = $5, color = $6,
		   description = $7, is_favorite = $8, folder_id = $9, updated_at = $10, deleted = $11
		 WHERE id = $1 AND user_id = $2 AND NOT deleted`

	res, err := r.db.ExecContext(ctx, query,
		d.ID, d.UserID, d.Title, d.ImageKey, d.Icon, d.Color,
		d.Description, d.IsFavorite, d.FolderID, d.UpdatedAt, d.Deleted)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	return dbx.ExpectAffected(res)
}

func (r *PostgresRepository) ReplaceFields(ctx context.Context, documentID string, fields []models.Field) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM document_fields WHERE document_id = $1`, documentID); err != nil {
		return fmt.Errorf("failed to delete fields: %w", err)
	}

	query :=
		`INSERT INTO document_fields (id, document_id, name, value, position)
		 VALUES ($1, $2, $3, $4, $5)`

	for i, f := range fields {
		if _, err := r.db.ExecContext(ctx, query, f.ID, documentID, f.Name, f.Value, i); err != nil {
			return fmt.Errorf("failed to insert field: %w", err)
		}
	}
	return nil
}

// SelectAll returns every document of the user, tombstones included, each
// with its fields in position order.
func (r *PostgresRepository) SelectAll(ctx context.Context, userID string) ([]models.Document, error) {
	query :=
		`SELECT id, user_id, title, image_key, icon, color, description,
		   is_favorite, folder_id, created_at, updated_at, deleted
		 FROM documents WHERE user_id = $1
		 ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select documents: %w", err)
	}
	defer rows.Close()

	var result []models.Document
	index := make(map[string]int)
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(&d.ID, &d.UserID, &d.Title, &d.ImageKey, &d.Icon, &d.Color, &d.Description,
			&d.IsFavorite, &d.FolderID, &d.CreatedAt, &d.UpdatedAt, &d.Deleted); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		d.Fields = []models.Field{}
		index[d.ID] = len(result)
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}
	if len(result) == 0 {
		return result, nil
	}

	if err := r.attachFields(ctx, userID, result, index); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) attachFields(ctx context.Context, userID string, docs []models.Document, index map[string]int) error {
	query :=
		`SELECT f.document_id, f.id, f.name, f.value, f.position
		 FROM document_fields f JOIN documents d ON d.id = f.document_id
		 WHERE d.user_id = $1
		 ORDER BY f.document_id, f.position`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to select fields: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var docID string
		var f models.Field
		if err := rows.Scan(&docID, &f.ID, &f.Name, &f.Value, &f.Position); err != nil {
			return fmt.Errorf("failed to scan field: %w", err)
		}
		if i, ok := index[docID]; ok {
			docs[i].Fields = append(docs[i].Fields, f)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate fields: %w", err)
	}
	return nil
}

func (r *PostgresRepository) MarkDeleted(ctx context.Context, userID, id string, at time.Time) error {
	query :=
		`UPDATE documents SET deleted = TRUE, updated_at = $3
		 WHERE id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, query, id, userID, at)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return dbx.ExpectAffected(res)
}

// MarkDeletedInTree reuses the folder walk of folders.MarkDeletedTree.
func (r *PostgresRepository) MarkDeletedInTree(ctx context.Context, userID, folderID string, at time.Time) (int64, error) {
	query :=
		`WITH RECURSIVE tree(id) AS (
		   SELECT id FROM folders WHERE id = $1 AND user_id = $2
		   UNION
		   SELECT f.id FROM folders f JOIN tree t ON f.parent_id = t.id
		   WHERE f.user_id = $2
		 )
		 UPDATE documents SET deleted = TRUE, updated_at = $3
		 WHERE user_id = $2 AND NOT deleted AND folder_id IN (SELECT id FROM tree)`

	res, err := r.db.ExecContext(ctx, query, folderID, userID, at)
	if err != nil {
		return 0, fmt.Errorf("failed to delete folder documents: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
