// Package repomanager vends the PostgreSQL repositories bound to a database
// handle or transaction, and runs the embedded goose migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/docme/internal/dbx"
	"github.com/dmitrijs2005/docme/internal/server/repositories/documents"
	"github.com/dmitrijs2005/docme/internal/server/repositories/folders"
	"github.com/dmitrijs2005/docme/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Folders(db dbx.DBTX) folders.Repository
	Documents(db dbx.DBTX) documents.Repository
}
