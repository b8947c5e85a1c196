package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/docme/internal/api"
	"github.com/dmitrijs2005/docme/internal/common"
	"github.com/dmitrijs2005/docme/internal/dbx"
	"github.com/dmitrijs2005/docme/internal/logging"
	"github.com/dmitrijs2005/docme/internal/server/repositories/repomanager"
)

type DocumentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       ObjectStore
	logger      logging.Logger
	now         func() time.Time
}

func NewDocumentService(db *sql.DB, m repomanager.RepositoryManager, store ObjectStore, l logging.Logger) *DocumentService {
	return &DocumentService{
		db:          db,
		repomanager: m,
		store:       store,
		logger:      l.With("module", "document_service"),
		now:         time.Now,
	}
}

// Changes returns every document of the user. Live documents with an image
// carry a presigned download URL; a presign failure only drops the URL.
func (s *DocumentService) Changes(ctx context.Context, userID string) ([]api.Document, error) {
	rows, err := s.repomanager.Documents(s.db).SelectAll(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]api.Document, 0, len(rows))
	for _, d := range rows {
		doc := documentToAPI(d)
		if d.ImageKey != nil && !d.Deleted {
			url, err := s.store.PresignGet(ctx, *d.ImageKey)
			if err != nil {
				s.logger.Warn(ctx, "presign get failed", "id", d.ID, "error", err)
			} else {
				doc.RemoteImageURL = &url
			}
		}
		out = append(out, doc)
	}
	return out, nil
}

// Create stores a client created document and its fields. A replayed
// create overwrites the row with the same content.
func (s *DocumentService) Create(ctx context.Context, userID string, d api.Document) error {
	if err := s.check(userID, d); err != nil {
		return err
	}

	m := documentFromAPI(userID, d)
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Documents(tx)
		if err := repo.Upsert(ctx, m); err != nil {
			return err
		}
		return repo.ReplaceFields(ctx, m.ID, m.Fields)
	})
}

// Update overwrites a live document and replaces its fields wholesale.
func (s *DocumentService) Update(ctx context.Context, userID, id string, d api.Document) error {
	if d.UUID != id {
		return fmt.Errorf("%w: uuid does not match path", common.ErrValidation)
	}
	if err := s.check(userID, d); err != nil {
		return err
	}

	m := documentFromAPI(userID, d)
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Documents(tx)
		if err := repo.Update(ctx, m); err != nil {
			return err
		}
		return repo.ReplaceFields(ctx, m.ID, m.Fields)
	})
}

// Delete tombstones the document. Deleting a tombstone succeeds again.
func (s *DocumentService) Delete(ctx context.Context, userID, id string) error {
	return s.repomanager.Documents(s.db).MarkDeleted(ctx, userID, id, s.now().UTC())
}

// check validates the payload and keeps image keys inside the user's prefix.
func (s *DocumentService) check(userID string, d api.Document) error {
	if err := validatePayload(d); err != nil {
		return err
	}
	if d.ImagePath != nil && !strings.HasPrefix(*d.ImagePath, UserKeyPrefix(userID)) {
		return fmt.Errorf("%w: image key outside user prefix", common.ErrValidation)
	}
	return nil
}
