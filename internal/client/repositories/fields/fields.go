// Package fields stores the ordered key/value fields owned by documents and
// provides the reconciler that swaps a document's whole field set at once.
package fields

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/docme/internal/client/models"
	"github.com/dmitrijs2005/docme/internal/dbx"
)

// Reconciler replaces field sets. On a *sql.DB each call runs in its own
// transaction, so a failure leaves the previous set intact; on a *sql.Tx it
// joins the caller's transaction.
type Reconciler struct {
	db dbx.DBTX
}

func NewReconciler(db dbx.DBTX) *Reconciler {
	return &Reconciler{db: db}
}

// ReplaceFields makes the stored field set of documentID equal to fields.
// Every field is re-parented to documentID and numbered by slice order.
func (r *Reconciler) ReplaceFields(ctx context.Context, documentID string, fields []models.Field) error {
	return dbx.InTx(ctx, r.db, func(ctx context.Context, tx dbx.DBTX) error {
		return replace(ctx, tx, documentID, fields)
	})
}

// ReplaceAsEdit is ReplaceFields for a user edit: the owning live document
// is stamped with updatedAt and marked dirty in the same transaction.
func (r *Reconciler) ReplaceAsEdit(ctx context.Context, documentID string, fields []models.Field, updatedAt time.Time) error {
	return dbx.InTx(ctx, r.db, func(ctx context.Context, tx dbx.DBTX) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE documents SET updated_at = ?, is_dirty = 1 WHERE id = ? AND deleted = 0`,
			dbx.UnixNano(updatedAt), documentID)
		if err != nil {
			return dbx.StorageErr("touch document", err)
		}
		if err := dbx.ExpectAffected(res); err != nil {
			return fmt.Errorf("document %s: %w", documentID, err)
		}
		return replace(ctx, tx, documentID, fields)
	})
}

func replace(ctx context.Context, tx dbx.DBTX, documentID string, fields []models.Field) error {
	if err := DeleteByDocument(ctx, tx, documentID); err != nil {
		return err
	}
	for i, f := range fields {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO fields (id, document_id, name, value, position) VALUES (?, ?, ?, ?, ?)`,
			f.ID, documentID, f.Name, f.Value, i)
		if err != nil {
			return dbx.StorageErr("insert field", err)
		}
	}
	return nil
}

func DeleteByDocument(ctx context.Context, db dbx.DBTX, documentID string) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM fields WHERE document_id = ?`, documentID); err != nil {
		return dbx.StorageErr("delete fields", err)
	}
	return nil
}

// FetchByDocument returns the fields of documentID in their stored order.
func FetchByDocument(ctx context.Context, db dbx.DBTX, documentID string) ([]models.Field, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, document_id, name, value, position FROM fields WHERE document_id = ? ORDER BY position`,
		documentID)
	if err != nil {
		return nil, dbx.StorageErr("select fields", err)
	}
	defer rows.Close()

	result := make([]models.Field, 0)
	for rows.Next() {
		var f models.Field
		if err := rows.Scan(&f.ID, &f.DocumentID, &f.Name, &f.Value, &f.Position); err != nil {
			return nil, dbx.StorageErr("scan field", err)
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, dbx.StorageErr("iterate fields", err)
	}
	return result, nil
}
