package folders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/docme/internal/client/models"
	"github.com/dmitrijs2005/docme/internal/common"
	"github.com/dmitrijs2005/docme/internal/dbx"
)

const columns = `id, name, created_at, updated_at, parent_id, is_dirty, is_new, deleted`

// SQLiteRepository implements Repository over a DBTX (*sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, f *models.Folder) error {
	query := `INSERT INTO folders (` + columns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, args(f)...)
	if err != nil {
		return dbx.StorageErr("insert folder", err)
	}
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, f *models.Folder) error {
	query := `UPDATE folders
		SET name = ?, updated_at = ?, parent_id = ?, is_dirty = ?
		WHERE id = ? AND deleted = 0`
	res, err := r.db.ExecContext(ctx, query,
		f.Name, dbx.UnixNano(f.UpdatedAt), dbx.NullString(f.ParentID), f.IsDirty, f.ID)
	if err != nil {
		return dbx.StorageErr("update folder", err)
	}
	if err := dbx.ExpectAffected(res); err != nil {
		return fmt.Errorf("update folder %s: %w", f.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	query := `UPDATE folders SET deleted = 1, is_dirty = 1, updated_at = ? WHERE id = ? AND deleted = 0`
	res, err := r.db.ExecContext(ctx, query, dbx.UnixNano(models.Now()), id)
	if err != nil {
		return dbx.StorageErr("delete folder", err)
	}
	if err := dbx.ExpectAffected(res); err != nil {
		return fmt.Errorf("delete folder %s: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) FetchAll(ctx context.Context) ([]models.Folder, error) {
	return r.query(ctx, `SELECT `+columns+` FROM folders WHERE deleted = 0 ORDER BY name, id`)
}

func (r *SQLiteRepository) FetchAllIncludingDeleted(ctx context.Context) ([]models.Folder, error) {
	return r.query(ctx, `SELECT `+columns+` FROM folders ORDER BY created_at, id`)
}

func (r *SQLiteRepository) FetchChildren(ctx context.Context, parentID *string) ([]models.Folder, error) {
	if parentID == nil {
		return r.query(ctx, `SELECT `+columns+` FROM folders WHERE deleted = 0 AND parent_id IS NULL ORDER BY name, id`)
	}
	return r.query(ctx, `SELECT `+columns+` FROM folders WHERE deleted = 0 AND parent_id = ? ORDER BY name, id`, *parentID)
}

func (r *SQLiteRepository) Count(ctx context.Context, parentID *string) (int, error) {
	var n int
	var err error
	if parentID == nil {
		err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM folders WHERE deleted = 0 AND parent_id IS NULL`).Scan(&n)
	} else {
		err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM folders WHERE deleted = 0 AND parent_id = ?`, *parentID).Scan(&n)
	}
	if err != nil {
		return 0, dbx.StorageErr("count folders", err)
	}
	return n, nil
}

func (r *SQLiteRepository) FetchByID(ctx context.Context, id string) (*models.Folder, error) {
	return r.one(ctx, `SELECT `+columns+` FROM folders WHERE id = ? AND deleted = 0`, id)
}

func (r *SQLiteRepository) FetchAnyByID(ctx context.Context, id string) (*models.Folder, error) {
	return r.one(ctx, `SELECT `+columns+` FROM folders WHERE id = ?`, id)
}

func (r *SQLiteRepository) Upsert(ctx context.Context, f *models.Folder) error {
	query := `INSERT INTO folders (` + columns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			parent_id = excluded.parent_id,
			is_dirty = excluded.is_dirty,
			is_new = excluded.is_new,
			deleted = excluded.deleted`
	_, err := r.db.ExecContext(ctx, query, args(f)...)
	if err != nil {
		return dbx.StorageErr("upsert folder", err)
	}
	return nil
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string, observed time.Time) (bool, error) {
	query := `UPDATE folders
		SET is_new = 0,
		    is_dirty = CASE WHEN updated_at = ? THEN 0 ELSE is_dirty END
		WHERE id = ?
		RETURNING is_dirty`
	var dirty bool
	err := r.db.QueryRowContext(ctx, query, dbx.UnixNano(observed), id).Scan(&dirty)
	if errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("mark folder %s synced: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return false, dbx.StorageErr("mark folder synced", err)
	}
	return !dirty, nil
}

func (r *SQLiteRepository) PurgeTombstone(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM folders WHERE id = ? AND deleted = 1`, id)
	if err != nil {
		return dbx.StorageErr("purge folder", err)
	}
	if err := dbx.ExpectAffected(res); err != nil {
		return fmt.Errorf("purge folder %s: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) Purge(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM folders WHERE id = ?`, id); err != nil {
		return dbx.StorageErr("purge folder", err)
	}
	return nil
}

func args(f *models.Folder) []any {
	return []any{
		f.ID, f.Name, dbx.UnixNano(f.CreatedAt), dbx.UnixNano(f.UpdatedAt),
		dbx.NullString(f.ParentID), f.IsDirty, f.IsNew, f.Deleted,
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (models.Folder, error) {
	var (
		f                models.Folder
		created, updated int64
		parent           sql.NullString
	)
	err := s.Scan(&f.ID, &f.Name, &created, &updated, &parent, &f.IsDirty, &f.IsNew, &f.Deleted)
	if err != nil {
		return models.Folder{}, err
	}
	f.CreatedAt = dbx.FromUnixNano(created)
	f.UpdatedAt = dbx.FromUnixNano(updated)
	f.ParentID = dbx.StringPtr(parent)
	return f, nil
}

func (r *SQLiteRepository) one(ctx context.Context, query string, id string) (*models.Folder, error) {
	f, err := scan(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("folder %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, dbx.StorageErr("select folder", err)
	}
	return &f, nil
}

func (r *SQLiteRepository) query(ctx context.Context, query string, params ...any) ([]models.Folder, error) {
	rows, err := r.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, dbx.StorageErr("select folders", err)
	}
	defer rows.Close()

	result := make([]models.Folder, 0)
	for rows.Next() {
		f, err := scan(rows)
		if err != nil {
			return nil, dbx.StorageErr("scan folder", err)
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, dbx.StorageErr("iterate folders", err)
	}
	return result, nil
}
