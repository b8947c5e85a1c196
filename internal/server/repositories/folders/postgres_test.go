package folders

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/docme/internal/common"
	"github.com/dmitrijs2005/docme/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock, db
}

const (
	upsertQ = `(?s)^INSERT\s+INTO\s+folders\s*\(id,\s*user_id,\s*name,\s*parent_id,\s*created_at,\s*updated_at,\s*deleted\).*ON\s+CONFLICT\s+\(id\)\s+DO\s+UPDATE.*WHERE\s+folders\.user_id\s*=\s*EXCLUDED\.user_id$`
	updateQ = `(?s)^UPDATE\s+folders\s+SET\s+name\s*=\s*\$3.*WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2\s+AND\s+NOT\s+deleted$`
	selectQ = `(?s)^SELECT\s+id,\s*user_id,\s*name,\s*parent_id,\s*created_at,\s*updated_at,\s*deleted\s+FROM\s+folders\s+WHERE\s+user_id\s*=\s*\$1`
	treeQ   = `(?s)^WITH\s+RECURSIVE\s+tree\(id\).*UPDATE\s+folders\s+SET\s+deleted\s*=\s*TRUE.*RETURNING\s+id$`
)

func ptr(s string) *string { return &s }

func sampleFolder() *models.Folder {
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return &models.Folder{ID: "f-1", UserID: "u-1", Name: "Invoices", ParentID: ptr("f-0"), CreatedAt: ts, UpdatedAt: ts}
}

func TestUpsert(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)
	f := sampleFolder()

	mock.ExpectExec(upsertQ).
		WithArgs(f.ID, f.UserID, f.Name, f.ParentID, f.CreatedAt, f.UpdatedAt, false).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Upsert(context.Background(), f))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_ForeignOwner(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectExec(upsertQ).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Upsert(context.Background(), sampleFolder())
	require.ErrorIs(t, err, common.ErrConflict)
}

func TestUpsert_DBError(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectExec(upsertQ).WillReturnError(errors.New("db down"))

	err := repo.Upsert(context.Background(), sampleFolder())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to upsert folder")
}

func TestUpdate(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)
	f := sampleFolder()

	mock.ExpectExec(updateQ).
		WithArgs(f.ID, f.UserID, f.Name, f.ParentID, f.UpdatedAt, false).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(updateQ).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Update(context.Background(), f))
	require.ErrorIs(t, repo.Update(context.Background(), f), common.ErrNotFound)
}

func TestSelectAll(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)
	ts := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "user_id", "name", "parent_id", "created_at", "updated_at", "deleted"}).
		AddRow("f-1", "u-1", "Root", nil, ts, ts, false).
		AddRow("f-2", "u-1", "Child", "f-1", ts, ts, true)
	mock.ExpectQuery(selectQ).WithArgs("u-1").WillReturnRows(rows)

	got, err := repo.SelectAll(context.Background(), "u-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Nil(t, got[0].ParentID)
	require.NotNil(t, got[1].ParentID)
	assert.Equal(t, "f-1", *got[1].ParentID)
	assert.True(t, got[1].Deleted)
}

func TestSelectAll_DBError(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(selectQ).WillReturnError(errors.New("boom"))

	_, err := repo.SelectAll(context.Background(), "u-1")
	require.Error(t, err)
}

func TestMarkDeletedTree_RootFirst(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)
	at := time.Now()

	rows := sqlmock.NewRows([]string{"id"}).AddRow("child").AddRow("root").AddRow("grandchild")
	mock.ExpectQuery(treeQ).WithArgs("root", "u-1", at).WillReturnRows(rows)

	ids, err := repo.MarkDeletedTree(context.Background(), "u-1", "root", at)
	require.NoError(t, err)
	assert.Equal(t, "root", ids[0])
	assert.ElementsMatch(t, []string{"root", "child", "grandchild"}, ids)
}

func TestMarkDeletedTree_NotFound(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(treeQ).WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.MarkDeletedTree(context.Background(), "u-1", "ghost", time.Now())
	require.ErrorIs(t, err, common.ErrNotFound)
}
