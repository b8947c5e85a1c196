package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/docme/internal/api"
	"github.com/dmitrijs2005/docme/internal/common"
	"github.com/dmitrijs2005/docme/internal/logging"
	"github.com/dmitrijs2005/docme/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	folderUUID = "7b3f5e1c-2d4a-4c8e-9f10-0a1b2c3d4e5f"
	parentUUID = "1c2d3e4f-5a6b-4c7d-8e9f-0a1b2c3d4e5f"
)

func sampleAPIFolder() api.Folder {
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.FixedZone("CET", 3600))
	return api.Folder{UUID: folderUUID, Name: "Invoices", CreatedAt: ts, UpdatedAt: ts, ParentFolderUUID: ptr(parentUUID)}
}

func TestFolderService_Changes(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := newFakeRepoManager()
	ts := time.Now()
	rm.folders.rows = []models.Folder{
		{ID: "a", Name: "Root", CreatedAt: ts, UpdatedAt: ts},
		{ID: "b", Name: "Gone", ParentID: ptr("a"), CreatedAt: ts, UpdatedAt: ts, Deleted: true},
	}
	svc := NewFolderService(db, rm, logging.NopLogger{})

	got, err := svc.Changes(context.Background(), "u-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Root", got[0].Name)
	assert.True(t, got[1].Deleted)
	assert.Equal(t, "a", *got[1].ParentFolderUUID)
}

func TestFolderService_Create(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := newFakeRepoManager()
	svc := NewFolderService(db, rm, logging.NopLogger{})

	require.NoError(t, svc.Create(context.Background(), "u-1", sampleAPIFolder()))
	require.Len(t, rm.folders.upserted, 1)
	f := rm.folders.upserted[0]
	assert.Equal(t, "u-1", f.UserID)
	assert.Equal(t, parentUUID, *f.ParentID)
	assert.Equal(t, time.UTC, f.CreatedAt.Location())

	bad := sampleAPIFolder()
	bad.Name = ""
	require.ErrorIs(t, svc.Create(context.Background(), "u-1", bad), common.ErrValidation)
	assert.Len(t, rm.folders.upserted, 1)
}

func TestFolderService_Update(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := newFakeRepoManager()
	svc := NewFolderService(db, rm, logging.NopLogger{})

	require.NoError(t, svc.Update(context.Background(), "u-1", folderUUID, sampleAPIFolder()))
	require.Len(t, rm.folders.updated, 1)

	err := svc.Update(context.Background(), "u-1", parentUUID, sampleAPIFolder())
	require.ErrorIs(t, err, common.ErrValidation)

	rm.folders.err = common.ErrNotFound
	err = svc.Update(context.Background(), "u-1", folderUUID, sampleAPIFolder())
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestFolderService_Delete_CascadesInOneTx(t *testing.T) {
	db, mock := newSQLMockDB(t)
	rm := newFakeRepoManager()
	rm.folders.treeIDs = []string{"root", "child"}
	svc := NewFolderService(db, rm, logging.NopLogger{})
	fixed := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	mock.ExpectBegin()
	mock.ExpectCommit()

	require.NoError(t, svc.Delete(context.Background(), "u-1", "root"))
	assert.Equal(t, fixed, rm.folders.deletedAt)
	assert.Equal(t, []string{"root"}, rm.documents.treeDeleted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFolderService_Delete_NotFoundRollsBack(t *testing.T) {
	db, mock := newSQLMockDB(t)
	rm := newFakeRepoManager()
	rm.folders.err = common.ErrNotFound
	svc := NewFolderService(db, rm, logging.NopLogger{})

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := svc.Delete(context.Background(), "u-1", "ghost")
	require.ErrorIs(t, err, common.ErrNotFound)
	assert.Empty(t, rm.documents.treeDeleted)
	require.NoError(t, mock.ExpectationsWereMet())
}
