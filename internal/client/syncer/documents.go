package syncer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/dmitrijs2005/docme/internal/api"
	"github.com/dmitrijs2005/docme/internal/client/models"
	"github.com/dmitrijs2005/docme/internal/common"
)

func (e *Engine) pushDocuments(ctx context.Context, rep *KindReport) error {
	e.locks.Documents.Lock()
	rows, err := e.documents.FetchAllIncludingDeleted(ctx)
	e.locks.Documents.Unlock()
	if err != nil {
		return err
	}

	var errs []error
	for _, d := range rows {
		if err := ctx.Err(); err != nil {
			return err
		}

		var err error
		switch {
		case d.Deleted:
			err = e.pushDocumentDelete(ctx, d, rep)
		case d.IsNew || d.IsDirty:
			err = e.pushDocumentUpsert(ctx, d, rep)
		default:
			continue
		}

		if err != nil {
			if fatal(ctx, err) {
				return err
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (e *Engine) pushDocumentDelete(ctx context.Context, d models.Document, rep *KindReport) error {
	if err := e.gateway.DeleteDocument(ctx, d.ID); err != nil && !isNotFound(err) {
		e.log.Warn(ctx, "document delete not pushed", "id", d.ID, "error", err)
		rep.Failed++
		return itemErr(ctx, err)
	}

	e.locks.Documents.Lock()
	err := e.documents.PurgeTombstone(ctx, d.ID)
	e.locks.Documents.Unlock()
	if err != nil && !isNotFound(err) {
		rep.Failed++
		return err
	}

	e.removeImage(ctx, d.ID)
	rep.Purged++
	return nil
}

func (e *Engine) pushDocumentUpsert(ctx context.Context, d models.Document, rep *KindReport) error {
	if d.NeedsImageUpload() {
		key, err := e.uploadImage(ctx, d)
		if err != nil {
			e.log.Warn(ctx, "document image not uploaded", "id", d.ID, "error", err)
			rep.Failed++
			return itemErr(ctx, err)
		}
		d.RemoteImageKey = key
	}

	rec := documentToAPI(d)

	var err error
	if d.IsNew {
		err = e.gateway.CreateDocument(ctx, rec)
	} else {
		err = e.gateway.UpdateDocument(ctx, rec)
		if isNotFound(err) {
			err = e.gateway.CreateDocument(ctx, rec)
		}
	}
	if err != nil {
		e.log.Warn(ctx, "document not pushed", "id", d.ID, "new", d.IsNew, "error", err)
		rep.Failed++
		return itemErr(ctx, err)
	}

	e.locks.Documents.Lock()
	clean, err := e.documents.MarkSynced(ctx, d.ID, d.UpdatedAt)
	e.locks.Documents.Unlock()
	if err != nil {
		rep.Failed++
		return err
	}
	if !clean {
		e.log.Debug(ctx, "document changed while pushing", "id", d.ID)
	}

	rep.Pushed++
	return nil
}

// uploadImage sends the local image to object storage and records its key.
// A vanished local file yields a nil key: the document is pushed without
// an image.
func (e *Engine) uploadImage(ctx context.Context, d models.Document) (*string, error) {
	data, err := e.assets.ReadBytes(*d.ImagePath)
	if errors.Is(err, fs.ErrNotExist) {
		e.log.Warn(ctx, "document image file missing", "id", d.ID, "path", *d.ImagePath)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	up, err := e.gateway.RequestImageUpload(ctx)
	if err != nil {
		return nil, err
	}
	if err := e.gateway.UploadImage(ctx, up.URL, data); err != nil {
		return nil, err
	}

	e.locks.Documents.Lock()
	err = e.documents.SetRemoteImageKey(ctx, d.ID, up.Key)
	e.locks.Documents.Unlock()
	if err != nil {
		return nil, err
	}
	return &up.Key, nil
}

func (e *Engine) pullDocuments(ctx context.Context, rep *KindReport) error {
	changes, err := e.gateway.FetchDocumentChanges(ctx)
	if err != nil {
		e.log.Warn(ctx, "document changes not fetched", "error", err)
		rep.Failed++
		return itemErr(ctx, err)
	}

	records := make([]api.Document, 0, len(changes))
	complete := true
	for _, c := range changes {
		if c.Err != nil {
			e.log.Warn(ctx, "document record skipped", "id", c.Record.UUID, "error", c.Err)
			rep.Skipped++
			complete = false
			continue
		}
		records = append(records, c.Record)
	}

	e.locks.Documents.Lock()
	local, err := e.documents.FetchAllIncludingDeleted(ctx)
	e.locks.Documents.Unlock()
	if err != nil {
		return err
	}
	index := make(map[string]*models.Document, len(local))
	for i := range local {
		index[local[i].ID] = &local[i]
	}

	folders, err := e.liveFolders(ctx)
	if err != nil {
		return err
	}

	var errs []error
	for _, r := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := e.applyDocument(ctx, r, index[r.UUID], folders, rep)
		if errors.Is(err, common.ErrDecoding) {
			e.log.Warn(ctx, "document record skipped", "id", r.UUID, "error", err)
			rep.Skipped++
			complete = false
			continue
		}
		if err != nil {
			e.log.Error(ctx, "document not applied", "id", r.UUID, "error", err)
			rep.Failed++
			errs = append(errs, err)
		}
	}

	if e.opts.PruneMissing && complete {
		errs = append(errs, e.pruneDocuments(ctx, records, index, rep))
	}
	errs = append(errs, e.rehomeDocuments(ctx, rep))
	return errors.Join(errs...)
}

// rehomeDocuments moves live documents whose folder no longer exists locally
// to the top level and marks them dirty. Both locks are held so a folder
// created meanwhile is seen together with its documents.
func (e *Engine) rehomeDocuments(ctx context.Context, rep *KindReport) error {
	e.locks.Folders.Lock()
	defer e.locks.Folders.Unlock()
	e.locks.Documents.Lock()
	defer e.locks.Documents.Unlock()

	rows, err := e.folders.FetchAll(ctx)
	if err != nil {
		return err
	}
	live := make(map[string]bool, len(rows))
	for _, f := range rows {
		live[f.ID] = true
	}

	docs, err := e.documents.FetchAll(ctx)
	if err != nil {
		return err
	}
	var errs []error
	for i := range docs {
		d := &docs[i]
		if d.FolderID == nil || live[*d.FolderID] {
			continue
		}
		missing := *d.FolderID
		d.FolderID = nil
		d.Touch()
		if err := e.documents.Update(ctx, d); err != nil {
			rep.Failed++
			errs = append(errs, err)
			continue
		}
		rep.Moved++
		e.log.Info(ctx, "document moved to top level", "id", d.ID, "missing_folder", missing)
	}
	return errors.Join(errs...)
}

func (e *Engine) liveFolders(ctx context.Context) (map[string]bool, error) {
	e.locks.Folders.Lock()
	rows, err := e.folders.FetchAll(ctx)
	e.locks.Folders.Unlock()
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(rows))
	for _, f := range rows {
		out[f.ID] = true
	}
	return out, nil
}

type pullAction int

const (
	actionSkip pullAction = iota
	actionMaterialize
	actionOverwrite
	actionRepair
)

// applyDocument merges one remote record into the store. local is the row
// observed before the pull started, nil when there was none. Downloads run
// without holding the documents lock into a staging file; when the row
// changed in the meantime both the write and the staged image are dropped.
func (e *Engine) applyDocument(ctx context.Context, r api.Document, local *models.Document, folders map[string]bool, rep *KindReport) error {
	if r.Deleted {
		if local == nil {
			return nil
		}
		e.locks.Documents.Lock()
		err := e.documents.Purge(ctx, r.UUID)
		e.locks.Documents.Unlock()
		if err != nil {
			return err
		}
		e.removeImage(ctx, r.UUID)
		rep.Purged++
		return nil
	}

	var folder *string
	if r.FolderUUID != nil {
		if folders[*r.FolderUUID] {
			folder = models.CloneString(r.FolderUUID)
		} else {
			e.log.Debug(ctx, "dangling folder reference", "id", r.UUID, "folder", *r.FolderUUID)
		}
	}

	action := decideDocument(r, local, folder)
	if action == actionSkip {
		rep.Skipped++
		return nil
	}

	var d *models.Document
	if action == actionRepair {
		cp := *local
		d = &cp
		if d.FolderID == nil {
			d.FolderID = folder
		}
	} else {
		var err error
		if d, err = documentFromAPI(r, folder); err != nil {
			return err
		}
	}

	var staged string
	switch {
	case action != actionRepair && local != nil && local.ImagePath != nil &&
		d.RemoteImageKey != nil && models.SameRef(local.RemoteImageKey, d.RemoteImageKey):
		d.ImagePath = local.ImagePath
	case d.ImagePath == nil && r.RemoteImageURL != nil:
		s, err := e.assets.Fetch(ctx, *r.RemoteImageURL, r.UUID)
		if err != nil {
			e.log.Warn(ctx, "document image not downloaded", "id", r.UUID, "error", err)
		} else {
			staged = s
		}
	}

	e.locks.Documents.Lock()
	err := e.writePulled(ctx, d, local, staged)
	e.locks.Documents.Unlock()
	if err != nil && staged != "" {
		e.assets.Discard(staged)
	}
	if errors.Is(err, errChanged) {
		e.log.Debug(ctx, "document changed during pull", "id", r.UUID)
		rep.Skipped++
		return nil
	}
	if err != nil {
		return err
	}

	if local != nil && local.ImagePath != nil && d.ImagePath == nil {
		e.removeImage(ctx, r.UUID)
	}

	switch action {
	case actionMaterialize:
		rep.Materialized++
	default:
		rep.Updated++
	}
	return nil
}

func decideDocument(r api.Document, local *models.Document, folder *string) pullAction {
	switch {
	case local == nil:
		return actionMaterialize
	case r.UpdatedAt.After(local.UpdatedAt):
		return actionOverwrite
	case clean(local.IsNew, local.IsDirty, local.Deleted) && r.UpdatedAt.Equal(local.UpdatedAt):
		relink := local.FolderID == nil && folder != nil
		refetch := local.ImagePath == nil && r.RemoteImageURL != nil
		if relink || refetch {
			return actionRepair
		}
	}
	return actionSkip
}

var errChanged = errors.New("row changed")

// writePulled upserts d unless the stored row no longer matches observed.
// A staged image is committed first and becomes d's image path. Callers
// hold the documents lock.
func (e *Engine) writePulled(ctx context.Context, d *models.Document, observed *models.Document, staged string) error {
	cur, err := e.documents.FetchAnyByID(ctx, d.ID)
	switch {
	case isNotFound(err):
		if observed != nil {
			return errChanged
		}
	case err != nil:
		return err
	case observed == nil:
		return errChanged
	case !cur.UpdatedAt.Equal(observed.UpdatedAt) || cur.IsDirty != observed.IsDirty || cur.Deleted != observed.Deleted:
		return errChanged
	}

	if staged != "" {
		path, err := e.assets.Commit(staged, d.ID)
		if err != nil {
			e.log.Warn(ctx, "document image not stored", "id", d.ID, "error", err)
		} else {
			d.ImagePath = &path
		}
	}

	if err := e.documents.Upsert(ctx, d); err != nil {
		return fmt.Errorf("materialize document %s: %w", d.ID, err)
	}
	return nil
}

func (e *Engine) pruneDocuments(ctx context.Context, records []api.Document, index map[string]*models.Document, rep *KindReport) error {
	remote := make(map[string]bool, len(records))
	for _, r := range records {
		remote[r.UUID] = true
	}

	e.locks.Documents.Lock()
	defer e.locks.Documents.Unlock()

	var errs []error
	for id := range index {
		if remote[id] {
			continue
		}
		// Re-read: the snapshot may be stale by now.
		cur, err := e.documents.FetchAnyByID(ctx, id)
		if isNotFound(err) {
			continue
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !clean(cur.IsNew, cur.IsDirty, cur.Deleted) {
			continue
		}
		if err := e.documents.Purge(ctx, id); err != nil {
			rep.Failed++
			errs = append(errs, err)
			continue
		}
		e.removeImage(ctx, id)
		rep.Purged++
	}
	return errors.Join(errs...)
}

func (e *Engine) removeImage(ctx context.Context, id string) {
	if e.assets == nil {
		return
	}
	if err := e.assets.Remove(id); err != nil {
		e.log.Warn(ctx, "document image not removed", "id", id, "error", err)
	}
}
