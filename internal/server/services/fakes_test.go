package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/docme/internal/common"
	"github.com/dmitrijs2005/docme/internal/dbx"
	"github.com/dmitrijs2005/docme/internal/server/models"
	"github.com/dmitrijs2005/docme/internal/server/repositories/documents"
	"github.com/dmitrijs2005/docme/internal/server/repositories/folders"
	"github.com/dmitrijs2005/docme/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/docme/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

type fakeRepoManager struct {
	repomanager.RepositoryManager
	users     *fakeUsersRepo
	folders   *fakeFoldersRepo
	documents *fakeDocumentsRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		users:     &fakeUsersRepo{byName: map[string]*models.User{}},
		folders:   &fakeFoldersRepo{},
		documents: &fakeDocumentsRepo{},
	}
}

func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository         { return m.users }
func (m *fakeRepoManager) Folders(dbx.DBTX) folders.Repository     { return m.folders }
func (m *fakeRepoManager) Documents(dbx.DBTX) documents.Repository { return m.documents }

type fakeUsersRepo struct {
	byName    map[string]*models.User
	createErr error
	getErr    error
}

func (r *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	if _, ok := r.byName[u.UserName]; ok {
		return nil, common.ErrConflict
	}
	u.ID = "id-" + u.UserName
	u.CreatedAt = time.Now()
	r.byName[u.UserName] = u
	return u, nil
}

func (r *fakeUsersRepo) GetUserByLogin(_ context.Context, login string) (*models.User, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	u, ok := r.byName[login]
	if !ok {
		return nil, common.ErrNotFound
	}
	return u, nil
}

func (r *fakeUsersRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	for _, u := range r.byName {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, common.ErrNotFound
}

type fakeFoldersRepo struct {
	folders.Repository
	upserted  []*models.Folder
	updated   []*models.Folder
	rows      []models.Folder
	treeIDs   []string
	err       error
	deletedAt time.Time
}

func (r *fakeFoldersRepo) Upsert(_ context.Context, f *models.Folder) error {
	r.upserted = append(r.upserted, f)
	return r.err
}

func (r *fakeFoldersRepo) Update(_ context.Context, f *models.Folder) error {
	r.updated = append(r.updated, f)
	return r.err
}

func (r *fakeFoldersRepo) SelectAll(context.Context, string) ([]models.Folder, error) {
	return r.rows, r.err
}

func (r *fakeFoldersRepo) MarkDeletedTree(_ context.Context, _, _ string, at time.Time) ([]string, error) {
	r.deletedAt = at
	if r.err != nil {
		return nil, r.err
	}
	return r.treeIDs, nil
}

type fakeDocumentsRepo struct {
	documents.Repository
	upserted    []*models.Document
	updated     []*models.Document
	fields      map[string][]models.Field
	rows        []models.Document
	err         error
	fieldsErr   error
	deleted     []string
	treeDeleted []string
}

func (r *fakeDocumentsRepo) Upsert(_ context.Context, d *models.Document) error {
	r.upserted = append(r.upserted, d)
	return r.err
}

func (r *fakeDocumentsRepo) Update(_ context.Context, d *models.Document) error {
	r.updated = append(r.updated, d)
	return r.err
}

func (r *fakeDocumentsRepo) ReplaceFields(_ context.Context, id string, fields []models.Field) error {
	if r.fieldsErr != nil {
		return r.fieldsErr
	}
	if r.fields == nil {
		r.fields = map[string][]models.Field{}
	}
	r.fields[id] = fields
	return nil
}

func (r *fakeDocumentsRepo) SelectAll(context.Context, string) ([]models.Document, error) {
	return r.rows, r.err
}

func (r *fakeDocumentsRepo) MarkDeleted(_ context.Context, _, id string, _ time.Time) error {
	r.deleted = append(r.deleted, id)
	return r.err
}

func (r *fakeDocumentsRepo) MarkDeletedInTree(_ context.Context, _, id string, _ time.Time) (int64, error) {
	r.treeDeleted = append(r.treeDeleted, id)
	return int64(len(r.treeDeleted)), r.err
}

type fakeStore struct {
	putKeys []string
	getKeys []string
	err     error
}

func (s *fakeStore) PresignPut(_ context.Context, key string) (string, error) {
	s.putKeys = append(s.putKeys, key)
	if s.err != nil {
		return "", s.err
	}
	return "https://s3.test/put/" + key, nil
}

func (s *fakeStore) PresignGet(_ context.Context, key string) (string, error) {
	s.getKeys = append(s.getKeys, key)
	if s.err != nil {
		return "", s.err
	}
	return "https://s3.test/get/" + key, nil
}

var errBoom = errors.New("boom")

func ptr(s string) *string { return &s }
