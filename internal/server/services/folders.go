package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/docme/internal/api"
	"github.com/dmitrijs2005/docme/internal/common"
	"github.com/dmitrijs2005/docme/internal/dbx"
	"github.com/dmitrijs2005/docme/internal/logging"
	"github.com/dmitrijs2005/docme/internal/server/repositories/repomanager"
)

type FolderService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	now         func() time.Time
}

func NewFolderService(db *sql.DB, m repomanager.RepositoryManager, l logging.Logger) *FolderService {
	return &FolderService{
		db:          db,
		repomanager: m,
		logger:      l.With("module", "folder_service"),
		now:         time.Now,
	}
}

// Changes returns every folder of the user, tombstones included.
func (s *FolderService) Changes(ctx context.Context, userID string) ([]api.Folder, error) {
	rows, err := s.repomanager.Folders(s.db).SelectAll(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]api.Folder, 0, len(rows))
	for _, f := range rows {
		out = append(out, folderToAPI(f))
	}
	return out, nil
}

// Create stores a client created folder. Replaying the same create is
// harmless; the id belongs to the first user that sent it.
func (s *FolderService) Create(ctx context.Context, userID string, f api.Folder) error {
	if err := validatePayload(f); err != nil {
		return err
	}
	return s.repomanager.Folders(s.db).Upsert(ctx, folderFromAPI(userID, f))
}

// Update overwrites a live folder. The payload id must match id.
func (s *FolderService) Update(ctx context.Context, userID, id string, f api.Folder) error {
	if f.UUID != id {
		return fmt.Errorf("%w: uuid does not match path", common.ErrValidation)
	}
	if err := validatePayload(f); err != nil {
		return err
	}
	return s.repomanager.Folders(s.db).Update(ctx, folderFromAPI(userID, f))
}

// Delete tombstones the folder, its descendants and every document filed
// in them in one transaction.
func (s *FolderService) Delete(ctx context.Context, userID, id string) error {
	at := s.now().UTC()

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		ids, err := s.repomanager.Folders(tx).MarkDeletedTree(ctx, userID, id, at)
		if err != nil {
			return err
		}
		n, err := s.repomanager.Documents(tx).MarkDeletedInTree(ctx, userID, id, at)
		if err != nil {
			return err
		}
		s.logger.Info(ctx, "folder tree deleted", "id", id, "folders", len(ids), "documents", n)
		return nil
	})
}

type validatable interface{ Validate() error }

func validatePayload(v validatable) error {
	if err := v.Validate(); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	return nil
}
