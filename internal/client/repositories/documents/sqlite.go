package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/docme/internal/client/models"
	"github.com/dmitrijs2005/docme/internal/client/repositories/fields"
	"github.com/dmitrijs2005/docme/internal/common"
	"github.com/dmitrijs2005/docme/internal/dbx"
)

const columns = `id, title, description, icon, color, is_favorite, created_at, updated_at,
	image_path, remote_image_url, remote_image_key, folder_id, is_dirty, is_new, deleted`

const placeholders = `?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?`

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, d *models.Document) error {
	return dbx.InTx(ctx, r.db, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO documents (`+columns+`) VALUES (`+placeholders+`)`, args(d)...); err != nil {
			return dbx.StorageErr("insert document", err)
		}
		return fields.NewReconciler(tx).ReplaceFields(ctx, d.ID, d.Fields)
	})
}

func (r *SQLiteRepository) Update(ctx context.Context, d *models.Document) error {
	return dbx.InTx(ctx, r.db, func(ctx context.Context, tx dbx.DBTX) error {
		query := `UPDATE documents SET
				title = ?, description = ?, icon = ?, color = ?, is_favorite = ?, updated_at = ?,
				image_path = ?, remote_image_url = ?, remote_image_key = ?, folder_id = ?,
				is_dirty = ?
			WHERE id = ? AND deleted = 0`
		res, err := tx.ExecContext(ctx, query,
			d.Title, dbx.NullString(d.Description), string(d.Icon), string(d.Color), d.IsFavorite,
			dbx.UnixNano(d.UpdatedAt), dbx.NullString(d.ImagePath), dbx.NullString(d.RemoteImageURL),
			dbx.NullString(d.RemoteImageKey), dbx.NullString(d.FolderID), d.IsDirty, d.ID)
		if err != nil {
			return dbx.StorageErr("update document", err)
		}
		if err := dbx.ExpectAffected(res); err != nil {
			return fmt.Errorf("update document %s: %w", d.ID, err)
		}
		return fields.NewReconciler(tx).ReplaceFields(ctx, d.ID, d.Fields)
	})
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	query := `UPDATE documents SET deleted = 1, is_dirty = 1, updated_at = ? WHERE id = ? AND deleted = 0`
	res, err := r.db.ExecContext(ctx, query, dbx.UnixNano(models.Now()), id)
	if err != nil {
		return dbx.StorageErr("delete document", err)
	}
	if err := dbx.ExpectAffected(res); err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) FetchAll(ctx context.Context) ([]models.Document, error) {
	return r.query(ctx, `SELECT `+columns+` FROM documents WHERE deleted = 0 ORDER BY title, id`)
}

func (r *SQLiteRepository) FetchAllIncludingDeleted(ctx context.Context) ([]models.Document, error) {
	return r.query(ctx, `SELECT `+columns+` FROM documents ORDER BY created_at, id`)
}

func (r *SQLiteRepository) FetchChildren(ctx context.Context, folderID *string) ([]models.Document, error) {
	if folderID == nil {
		return r.query(ctx, `SELECT `+columns+` FROM documents WHERE deleted = 0 AND folder_id IS NULL ORDER BY title, id`)
	}
	return r.query(ctx, `SELECT `+columns+` FROM documents WHERE deleted = 0 AND folder_id = ? ORDER BY title, id`, *folderID)
}

func (r *SQLiteRepository) Count(ctx context.Context, folderID *string) (int, error) {
	var n int
	var err error
	if folderID == nil {
		err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE deleted = 0 AND folder_id IS NULL`).Scan(&n)
	} else {
		err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE deleted = 0 AND folder_id = ?`, *folderID).Scan(&n)
	}
	if err != nil {
		return 0, dbx.StorageErr("count documents", err)
	}
	return n, nil
}

// Search matches title, description, field names and field values,
// case-insensitively.
func (r *SQLiteRepository) Search(ctx context.Context, q string) ([]models.Document, error) {
	pattern := "%" + escapeLike(strings.ToLower(strings.TrimSpace(q))) + "%"
	query := `SELECT ` + columns + ` FROM documents
		WHERE deleted = 0 AND (
			lower(title) LIKE ?1 ESCAPE '\'
			OR lower(coalesce(description, '')) LIKE ?1 ESCAPE '\'
			OR id IN (SELECT document_id FROM fields
				WHERE lower(name) LIKE ?1 ESCAPE '\' OR lower(value) LIKE ?1 ESCAPE '\')
		)
		ORDER BY title, id`
	return r.query(ctx, query, pattern)
}

func (r *SQLiteRepository) FetchByColor(ctx context.Context, color models.Color) ([]models.Document, error) {
	return r.query(ctx, `SELECT `+columns+` FROM documents WHERE deleted = 0 AND color = ? ORDER BY title, id`, string(color))
}

func (r *SQLiteRepository) FetchFavorites(ctx context.Context) ([]models.Document, error) {
	return r.query(ctx, `SELECT `+columns+` FROM documents WHERE deleted = 0 AND is_favorite = 1 ORDER BY title, id`)
}

func (r *SQLiteRepository) FetchByID(ctx context.Context, id string) (*models.Document, error) {
	return r.one(ctx, `SELECT `+columns+` FROM documents WHERE id = ? AND deleted = 0`, id)
}

func (r *SQLiteRepository) FetchAnyByID(ctx context.Context, id string) (*models.Document, error) {
	return r.one(ctx, `SELECT `+columns+` FROM documents WHERE id = ?`, id)
}

func (r *SQLiteRepository) Upsert(ctx context.Context, d *models.Document) error {
	return dbx.InTx(ctx, r.db, func(ctx context.Context, tx dbx.DBTX) error {
		query := `INSERT INTO documents (` + columns + `) VALUES (` + placeholders + `)
			ON CONFLICT(id) DO UPDATE SET
				title = excluded.title,
				description = excluded.description,
				icon = excluded.icon,
				color = excluded.color,
				is_favorite = excluded.is_favorite,
				created_at = excluded.created_at,
				updated_at = excluded.updated_at,
				image_path = excluded.image_path,
				remote_image_url = excluded.remote_image_url,
				remote_image_key = excluded.remote_image_key,
				folder_id = excluded.folder_id,
				is_dirty = excluded.is_dirty,
				is_new = excluded.is_new,
				deleted = excluded.deleted`
		if _, err := tx.ExecContext(ctx, query, args(d)...); err != nil {
			return dbx.StorageErr("upsert document", err)
		}
		return fields.NewReconciler(tx).ReplaceFields(ctx, d.ID, d.Fields)
	})
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string, observed time.Time) (bool, error) {
	query := `UPDATE documents
		SET is_new = 0,
		    is_dirty = CASE WHEN updated_at = ? THEN 0 ELSE is_dirty END
		WHERE id = ?
		RETURNING is_dirty`
	var dirty bool
	err := r.db.QueryRowContext(ctx, query, dbx.UnixNano(observed), id).Scan(&dirty)
	if errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("mark document %s synced: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return false, dbx.StorageErr("mark document synced", err)
	}
	return !dirty, nil
}

func (r *SQLiteRepository) SetRemoteImageKey(ctx context.Context, id string, key string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE documents SET remote_image_key = ? WHERE id = ?`, key, id)
	if err != nil {
		return dbx.StorageErr("set image key", err)
	}
	if err := dbx.ExpectAffected(res); err != nil {
		return fmt.Errorf("set image key of %s: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) PurgeTombstone(ctx context.Context, id string) error {
	return dbx.InTx(ctx, r.db, func(ctx context.Context, tx dbx.DBTX) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id = ? AND deleted = 1`, id)
		if err != nil {
			return dbx.StorageErr("purge document", err)
		}
		if err := dbx.ExpectAffected(res); err != nil {
			return fmt.Errorf("purge document %s: %w", id, err)
		}
		return fields.DeleteByDocument(ctx, tx, id)
	})
}

func (r *SQLiteRepository) Purge(ctx context.Context, id string) error {
	return dbx.InTx(ctx, r.db, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id); err != nil {
			return dbx.StorageErr("purge document", err)
		}
		return fields.DeleteByDocument(ctx, tx, id)
	})
}

func args(d *models.Document) []any {
	return []any{
		d.ID, d.Title, dbx.NullString(d.Description), string(d.Icon), string(d.Color), d.IsFavorite,
		dbx.UnixNano(d.CreatedAt), dbx.UnixNano(d.UpdatedAt),
		dbx.NullString(d.ImagePath), dbx.NullString(d.RemoteImageURL), dbx.NullString(d.RemoteImageKey),
		dbx.NullString(d.FolderID), d.IsDirty, d.IsNew, d.Deleted,
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (models.Document, error) {
	var (
		d                                    models.Document
		icon, color                          string
		created, updated                     int64
		description, imagePath, url, key, fk sql.NullString
	)
	err := s.Scan(&d.ID, &d.Title, &description, &icon, &color, &d.IsFavorite, &created, &updated,
		&imagePath, &url, &key, &fk, &d.IsDirty, &d.IsNew, &d.Deleted)
	if err != nil {
		return models.Document{}, err
	}
	d.Icon = models.Icon(icon)
	d.Color = models.Color(color)
	d.CreatedAt = dbx.FromUnixNano(created)
	d.UpdatedAt = dbx.FromUnixNano(updated)
	d.Description = dbx.StringPtr(description)
	d.ImagePath = dbx.StringPtr(imagePath)
	d.RemoteImageURL = dbx.StringPtr(url)
	d.RemoteImageKey = dbx.StringPtr(key)
	d.FolderID = dbx.StringPtr(fk)
	return d, nil
}

func (r *SQLiteRepository) one(ctx context.Context, query string, id string) (*models.Document, error) {
	d, err := scan(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, dbx.StorageErr("select document", err)
	}
	if d.Fields, err = fields.FetchByDocument(ctx, r.db, d.ID); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *SQLiteRepository) query(ctx context.Context, query string, params ...any) ([]models.Document, error) {
	docs, err := r.scanAll(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	// rows are closed by now, so the single-connection pool is free again
	for i := range docs {
		if docs[i].Fields, err = fields.FetchByDocument(ctx, r.db, docs[i].ID); err != nil {
			return nil, err
		}
	}
	return docs, nil
}

func (r *SQLiteRepository) scanAll(ctx context.Context, query string, params ...any) ([]models.Document, error) {
	rows, err := r.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, dbx.StorageErr("select documents", err)
	}
	defer rows.Close()

	result := make([]models.Document, 0)
	for rows.Next() {
		d, err := scan(rows)
		if err != nil {
			return nil, dbx.StorageErr("scan document", err)
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, dbx.StorageErr("iterate documents", err)
	}
	return result, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
