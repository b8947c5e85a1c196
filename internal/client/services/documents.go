package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/docme/internal/client/models"
	"github.com/dmitrijs2005/docme/internal/client/repositories/documents"
	"github.com/dmitrijs2005/docme/internal/client/repositories/fields"
	"github.com/dmitrijs2005/docme/internal/client/repositories/folders"
	"github.com/dmitrijs2005/docme/internal/client/syncer"
)

// DocumentService is the surface the UI works with. Reads and writes hit
// the local store only; SyncAll reconciles with the server.
//
// Writes take the collection lock shared with the sync engine, so they
// never interleave with a sync step on the same collection.
type DocumentService interface {
	SyncAll(ctx context.Context) (*syncer.Report, error)

	FetchLocalFolders(ctx context.Context) ([]models.Folder, error)
	FetchLocalDocuments(ctx context.Context, parentFolder *string) ([]models.Document, error)
	CreateLocalFolder(ctx context.Context, name string, parent *string) (*models.Folder, error)
	CreateLocalDocument(ctx context.Context, nd models.NewDocument) (*models.Document, error)
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	SaveDocument(ctx context.Context, d *models.Document) error
	DeleteDocument(ctx context.Context, id string) error
	// DeleteFolder deletes the folder, its descendant folders and every
	// document in them.
	DeleteFolder(ctx context.Context, id string) error

	GetFolder(ctx context.Context, id string) (*models.Folder, error)
	RenameFolder(ctx context.Context, id, name string) error
	MoveFolder(ctx context.Context, id string, parent *string) error
	MoveDocument(ctx context.Context, id string, folder *string) error
	ToggleFavorite(ctx context.Context, id string) (bool, error)
	SetFields(ctx context.Context, id string, fields []models.Field) error
	SetImage(ctx context.Context, id, srcPath string) error
	RemoveImage(ctx context.Context, id string) error

	Search(ctx context.Context, query string) ([]models.Document, error)
	FilterByColor(ctx context.Context, color models.Color) ([]models.Document, error)
	Favorites(ctx context.Context) ([]models.Document, error)
}

// Images is the part of the asset store used for local edits.
type Images interface {
	Import(src, entityID string) (string, error)
	Download(ctx context.Context, url, entityID string) (string, error)
	Remove(entityID string) error
}

type documentService struct {
	folders   folders.Repository
	documents documents.Repository
	fields    *fields.Reconciler
	images    Images
	syncer    syncer.Syncer
	locks     *syncer.Locks
}

func NewDocumentService(f folders.Repository, d documents.Repository, r *fields.Reconciler,
	images Images, s syncer.Syncer, locks *syncer.Locks) DocumentService {
	return &documentService{folders: f, documents: d, fields: r, images: images, syncer: s, locks: locks}
}

func (s *documentService) SyncAll(ctx context.Context) (*syncer.Report, error) {
	return s.syncer.SyncAll(ctx)
}

func (s *documentService) FetchLocalFolders(ctx context.Context) ([]models.Folder, error) {
	s.locks.Folders.Lock()
	defer s.locks.Folders.Unlock()
	return s.folders.FetchAll(ctx)
}

func (s *documentService) FetchLocalDocuments(ctx context.Context, parentFolder *string) ([]models.Document, error) {
	s.locks.Documents.Lock()
	defer s.locks.Documents.Unlock()
	return s.documents.FetchChildren(ctx, parentFolder)
}

func (s *documentService) GetFolder(ctx context.Context, id string) (*models.Folder, error) {
	s.locks.Folders.Lock()
	defer s.locks.Folders.Unlock()
	return s.folders.FetchByID(ctx, id)
}

func (s *documentService) CreateLocalFolder(ctx context.Context, name string, parent *string) (*models.Folder, error) {
	f := models.NewFolder(name, parent)
	if err := f.Validate(); err != nil {
		return nil, err
	}

	s.locks.Folders.Lock()
	defer s.locks.Folders.Unlock()

	if parent != nil {
		if _, err := s.folders.FetchByID(ctx, *parent); err != nil {
			return nil, fmt.Errorf("parent folder: %w", err)
		}
	}
	if err := s.folders.Create(ctx, f); err != nil {
		return nil, fmt.Errorf("could not create folder: %w", err)
	}
	return f, nil
}

func (s *documentService) CreateLocalDocument(ctx context.Context, nd models.NewDocument) (*models.Document, error) {
	d := nd.Build()
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkFolder(ctx, d.FolderID); err != nil {
		return nil, err
	}

	s.locks.Documents.Lock()
	defer s.locks.Documents.Unlock()

	if err := s.documents.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("could not create document: %w", err)
	}
	return d, nil
}

func (s *documentService) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	s.locks.Documents.Lock()
	defer s.locks.Documents.Unlock()
	return s.documents.FetchByID(ctx, id)
}

// SaveDocument stores user edits of d. Sync bookkeeping (creation time,
// remote image key and URL) is taken from the stored row, not from d.
func (s *documentService) SaveDocument(ctx context.Context, d *models.Document) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if err := s.checkFolder(ctx, d.FolderID); err != nil {
		return err
	}

	s.locks.Documents.Lock()
	defer s.locks.Documents.Unlock()

	cur, err := s.documents.FetchByID(ctx, d.ID)
	if err != nil {
		return err
	}

	d.CreatedAt = cur.CreatedAt
	d.RemoteImageURL = cur.RemoteImageURL
	if models.SameRef(d.ImagePath, cur.ImagePath) {
		d.RemoteImageKey = cur.RemoteImageKey
	} else {
		d.RemoteImageKey = nil
	}
	d.SetFields(d.Fields)
	d.Touch()

	if err := s.documents.Update(ctx, d); err != nil {
		return fmt.Errorf("could not save document: %w", err)
	}
	return nil
}

func (s *documentService) DeleteDocument(ctx context.Context, id string) error {
	s.locks.Documents.Lock()
	defer s.locks.Documents.Unlock()
	return s.documents.Delete(ctx, id)
}

func (s *documentService) DeleteFolder(ctx context.Context, id string) error {
	s.locks.Folders.Lock()
	defer s.locks.Folders.Unlock()
	s.locks.Documents.Lock()
	defer s.locks.Documents.Unlock()

	if _, err := s.folders.FetchByID(ctx, id); err != nil {
		return err
	}
	all, err := s.folders.FetchAll(ctx)
	if err != nil {
		return err
	}

	// Children before parents.
	ids := append(models.Descendants(id, all), id)
	for i := len(ids) - 1; i >= 0; i-- {
		fid := ids[i]
		docs, err := s.documents.FetchChildren(ctx, &fid)
		if err != nil {
			return err
		}
		for _, d := range docs {
			if err := s.documents.Delete(ctx, d.ID); err != nil {
				return fmt.Errorf("could not delete document %s: %w", d.ID, err)
			}
		}
	}
	for i := len(ids) - 1; i >= 0; i-- {
		if err := s.folders.Delete(ctx, ids[i]); err != nil {
			return fmt.Errorf("could not delete folder %s: %w", ids[i], err)
		}
	}
	return nil
}

func (s *documentService) RenameFolder(ctx context.Context, id, name string) error {
	s.locks.Folders.Lock()
	defer s.locks.Folders.Unlock()

	f, err := s.folders.FetchByID(ctx, id)
	if err != nil {
		return err
	}
	f.Name = name
	if err := f.Validate(); err != nil {
		return err
	}
	f.Touch()
	return s.folders.Update(ctx, f)
}

// MoveFolder re-parents a folder. A nil parent moves it to the top level.
func (s *documentService) MoveFolder(ctx context.Context, id string, parent *string) error {
	s.locks.Folders.Lock()
	defer s.locks.Folders.Unlock()

	f, err := s.folders.FetchByID(ctx, id)
	if err != nil {
		return err
	}
	if parent != nil {
		if _, err := s.folders.FetchByID(ctx, *parent); err != nil {
			return fmt.Errorf("parent folder: %w", err)
		}
	}
	all, err := s.folders.FetchAll(ctx)
	if err != nil {
		return err
	}
	if err := models.CheckAcyclic(id, parent, models.FolderParents(all)); err != nil {
		return err
	}

	f.ParentID = models.CloneString(parent)
	f.Touch()
	return s.folders.Update(ctx, f)
}

func (s *documentService) MoveDocument(ctx context.Context, id string, folder *string) error {
	if err := s.checkFolder(ctx, folder); err != nil {
		return err
	}
	return s.edit(ctx, id, func(d *models.Document) error {
		d.FolderID = models.CloneString(folder)
		return nil
	})
}

func (s *documentService) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	var fav bool
	err := s.edit(ctx, id, func(d *models.Document) error {
		d.IsFavorite = !d.IsFavorite
		fav = d.IsFavorite
		return nil
	})
	return fav, err
}

// SetFields replaces the field set of a document as one local edit.
func (s *documentService) SetFields(ctx context.Context, id string, fields []models.Field) error {
	s.locks.Documents.Lock()
	defer s.locks.Documents.Unlock()

	d, err := s.documents.FetchByID(ctx, id)
	if err != nil {
		return err
	}
	d.SetFields(fields)
	if err := d.Validate(); err != nil {
		return err
	}
	return s.fields.ReplaceAsEdit(ctx, id, d.Fields, models.Now())
}

// SetImage imports the PNG at srcPath as the document image. The new image
// is uploaded by the next sync.
func (s *documentService) SetImage(ctx context.Context, id, srcPath string) error {
	if _, err := s.GetDocument(ctx, id); err != nil {
		return err
	}
	var path string
	var err error
	if isURL(srcPath) {
		path, err = s.images.Download(ctx, srcPath, id)
	} else {
		path, err = s.images.Import(srcPath, id)
	}
	if err != nil {
		return err
	}
	return s.edit(ctx, id, func(d *models.Document) error {
		d.ImagePath = &path
		d.RemoteImageKey = nil
		d.RemoteImageURL = nil
		return nil
	})
}

func (s *documentService) RemoveImage(ctx context.Context, id string) error {
	err := s.edit(ctx, id, func(d *models.Document) error {
		d.ImagePath = nil
		d.RemoteImageKey = nil
		d.RemoteImageURL = nil
		return nil
	})
	if err != nil {
		return err
	}
	return s.images.Remove(id)
}

func (s *documentService) Search(ctx context.Context, query string) ([]models.Document, error) {
	s.locks.Documents.Lock()
	defer s.locks.Documents.Unlock()
	return s.documents.Search(ctx, query)
}

func (s *documentService) FilterByColor(ctx context.Context, color models.Color) ([]models.Document, error) {
	s.locks.Documents.Lock()
	defer s.locks.Documents.Unlock()
	return s.documents.FetchByColor(ctx, color)
}

func (s *documentService) Favorites(ctx context.Context) ([]models.Document, error) {
	s.locks.Documents.Lock()
	defer s.locks.Documents.Unlock()
	return s.documents.FetchFavorites(ctx)
}

// edit applies fn to the stored document and persists it as a local edit.
func (s *documentService) edit(ctx context.Context, id string, fn func(d *models.Document) error) error {
	s.locks.Documents.Lock()
	defer s.locks.Documents.Unlock()

	d, err := s.documents.FetchByID(ctx, id)
	if err != nil {
		return err
	}
	if err := fn(d); err != nil {
		return err
	}
	if err := d.Validate(); err != nil {
		return err
	}
	d.Touch()
	return s.documents.Update(ctx, d)
}

func (s *documentService) checkFolder(ctx context.Context, id *string) error {
	if id == nil {
		return nil
	}
	s.locks.Folders.Lock()
	defer s.locks.Folders.Unlock()
	if _, err := s.folders.FetchByID(ctx, *id); err != nil {
		return fmt.Errorf("folder: %w", err)
	}
	return nil
}

func isURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}
