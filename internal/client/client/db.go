package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/docme/internal/client/migrations"
	"github.com/dmitrijs2005/docme/internal/client/repositories/documents"
	"github.com/dmitrijs2005/docme/internal/client/repositories/fields"
	"github.com/dmitrijs2005/docme/internal/client/repositories/folders"
	"github.com/dmitrijs2005/docme/internal/client/repositories/metadata"

	_ "modernc.org/sqlite"
)

type Repositories struct {
	DB        *sql.DB
	Metadata  metadata.Repository
	Folders   folders.Repository
	Documents documents.Repository
	Fields    *fields.Reconciler
}

// Close closes the underlying database.
func (r *Repositories) Close() error {
	return r.DB.Close()
}

// OpenDatabase opens the SQLite file at dsn and applies pending migrations.
// A single connection serializes writers, which SQLite requires anyway.
func OpenDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := migrations.Up(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// InitDatabase opens the local store and wires its repositories.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := OpenDatabase(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return NewRepositories(db), nil
}

func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		DB:        db,
		Metadata:  metadata.NewSQLiteRepository(db),
		Folders:   folders.NewSQLiteRepository(db),
		Documents: documents.NewSQLiteRepository(db),
		Fields:    fields.NewReconciler(db),
	}
}
