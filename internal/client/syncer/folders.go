package syncer

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/docme/internal/api"
	"github.com/dmitrijs2005/docme/internal/client/models"
)

func (e *Engine) pushFolders(ctx context.Context, rep *KindReport) error {
	e.locks.Folders.Lock()
	rows, err := e.folders.FetchAllIncludingDeleted(ctx)
	e.locks.Folders.Unlock()
	if err != nil {
		return err
	}

	rows = parentsFirst(rows,
		func(f models.Folder) string { return f.ID },
		func(f models.Folder) *string { return f.ParentID })

	var errs []error
	for _, f := range rows {
		if err := ctx.Err(); err != nil {
			return err
		}

		var err error
		switch {
		case f.Deleted:
			err = e.pushFolderDelete(ctx, f, rep)
		case f.IsNew || f.IsDirty:
			err = e.pushFolderUpsert(ctx, f, rep)
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

func (e *Engine) pushFolderDelete(ctx context.Context, f models.Folder, rep *KindReport) error {
	if err := e.gateway.DeleteFolder(ctx, f.ID); err != nil && !isNotFound(err) {
		e.log.Warn(ctx, "folder delete not pushed", "id", f.ID, "error", err)
		rep.Failed++
		return itemErr(ctx, err)
	}

	e.locks.Folders.Lock()
	err := e.folders.PurgeTombstone(ctx, f.ID)
	e.locks.Folders.Unlock()
	if err != nil && !isNotFound(err) {
		rep.Failed++
		return err
	}

	rep.Purged++
	return nil
}

func (e *Engine) pushFolderUpsert(ctx context.Context, f models.Folder, rep *KindReport) error {
	rec := folderToAPI(f)

	var err error
	if f.IsNew {
		err = e.gateway.CreateFolder(ctx, rec)
	} else {
		err = e.gateway.UpdateFolder(ctx, rec)
		if isNotFound(err) {
			err = e.gateway.CreateFolder(ctx, rec)
		}
	}
	if err != nil {
		e.log.Warn(ctx, "folder not pushed", "id", f.ID, "new", f.IsNew, "error", err)
		rep.Failed++
		return itemErr(ctx, err)
	}

	e.locks.Folders.Lock()
	clean, err := e.folders.MarkSynced(ctx, f.ID, f.UpdatedAt)
	e.locks.Folders.Unlock()
	if err != nil {
		rep.Failed++
		return err
	}
	if !clean {
		e.log.Debug(ctx, "folder changed while pushing", "id", f.ID)
	}

	rep.Pushed++
	return nil
}

func (e *Engine) pullFolders(ctx context.Context, rep *KindReport) error {
	changes, err := e.gateway.FetchFolderChanges(ctx)
	if err != nil {
		e.log.Warn(ctx, "folder changes not fetched", "error", err)
		rep.Failed++
		return itemErr(ctx, err)
	}

	records := make([]api.Folder, 0, len(changes))
	complete := true
	for _, c := range changes {
		if c.Err != nil {
			e.log.Warn(ctx, "folder record skipped", "id", c.Record.UUID, "error", c.Err)
			rep.Skipped++
			complete = false
			continue
		}
		records = append(records, c.Record)
	}
	records = parentsFirst(records,
		func(f api.Folder) string { return f.UUID },
		func(f api.Folder) *string { return f.ParentFolderUUID })

	e.locks.Folders.Lock()
	defer e.locks.Folders.Unlock()

	local, err := e.folders.FetchAllIncludingDeleted(ctx)
	if err != nil {
		return err
	}
	index := make(map[string]*models.Folder, len(local))
	for i := range local {
		index[local[i].ID] = &local[i]
	}

	var errs []error
	for _, r := range records {
		if err := e.applyFolder(ctx, r, index, rep); err != nil {
			e.log.Error(ctx, "folder not applied", "id", r.UUID, "error", err)
			rep.Failed++
			errs = append(errs, err)
		}
	}

	if e.opts.PruneMissing && complete {
		errs = append(errs, e.pruneFolders(ctx, records, index, rep))
	}
	errs = append(errs, e.rehomeFolders(ctx, index, rep))
	return errors.Join(errs...)
}

// rehomeFolders moves live folders whose parent no longer exists locally to
// the top level and marks them dirty. Rows the server cascade already knew
// about were purged by their own tombstones, so what is left is local work
// that must stay reachable.
func (e *Engine) rehomeFolders(ctx context.Context, index map[string]*models.Folder, rep *KindReport) error {
	var errs []error
	for id, f := range index {
		if f.Deleted || f.ParentID == nil {
			continue
		}
		if p, ok := index[*f.ParentID]; ok && !p.Deleted {
			continue
		}
		missing := *f.ParentID
		moved := *f
		moved.ParentID = nil
		moved.Touch()
		if err := e.folders.Upsert(ctx, &moved); err != nil {
			rep.Failed++
			errs = append(errs, err)
			continue
		}
		index[id] = &moved
		rep.Moved++
		e.log.Info(ctx, "folder moved to top level", "id", id, "missing_parent", missing)
	}
	return errors.Join(errs...)
}

// applyFolder merges one remote record. index holds every local row and is
// kept current.
func (e *Engine) applyFolder(ctx context.Context, r api.Folder, index map[string]*models.Folder, rep *KindReport) error {
	local := index[r.UUID]

	if r.Deleted {
		if local == nil {
			return nil
		}
		if err := e.folders.Purge(ctx, r.UUID); err != nil {
			return err
		}
		delete(index, r.UUID)
		rep.Purged++
		return nil
	}

	parent := e.resolveParent(ctx, r, index)

	switch {
	case local == nil:
		f := folderFromAPI(r, parent)
		if err := e.folders.Upsert(ctx, f); err != nil {
			return err
		}
		index[f.ID] = f
		rep.Materialized++

	case r.UpdatedAt.After(local.UpdatedAt):
		f := folderFromAPI(r, parent)
		if err := e.folders.Upsert(ctx, f); err != nil {
			return err
		}
		index[f.ID] = f
		rep.Updated++

	case clean(local.IsNew, local.IsDirty, local.Deleted) &&
		r.UpdatedAt.Equal(local.UpdatedAt) && local.ParentID == nil && parent != nil:
		f := *local
		f.ParentID = parent
		if err := e.folders.Upsert(ctx, &f); err != nil {
			return err
		}
		index[f.ID] = &f
		rep.Updated++

	default:
		rep.Skipped++
	}
	return nil
}

// resolveParent returns the parent reference to store locally: the remote
// one when it names a live local folder and keeps the tree acyclic, nil
// otherwise.
func (e *Engine) resolveParent(ctx context.Context, r api.Folder, index map[string]*models.Folder) *string {
	ref := r.ParentFolderUUID
	if ref == nil {
		return nil
	}
	p, ok := index[*ref]
	if !ok || p.Deleted {
		e.log.Debug(ctx, "dangling parent reference", "id", r.UUID, "parent", *ref)
		return nil
	}

	lookup := func(id string) (*string, bool) {
		f, ok := index[id]
		if !ok {
			return nil, false
		}
		return f.ParentID, true
	}
	if err := models.CheckAcyclic(r.UUID, ref, lookup); err != nil {
		e.log.Warn(ctx, "parent reference dropped", "id", r.UUID, "error", err)
		return nil
	}
	return models.CloneString(ref)
}

func (e *Engine) pruneFolders(ctx context.Context, records []api.Folder, index map[string]*models.Folder, rep *KindReport) error {
	remote := make(map[string]bool, len(records))
	for _, r := range records {
		remote[r.UUID] = true
	}

	var errs []error
	for id, f := range index {
		if remote[id] || !clean(f.IsNew, f.IsDirty, f.Deleted) {
			continue
		}
		if err := e.folders.Purge(ctx, id); err != nil {
			rep.Failed++
			errs = append(errs, err)
			continue
		}
		delete(index, id)
		rep.Purged++
	}
	return errors.Join(errs...)
}

// clean is true for rows that carry no unsynced local state.
func clean(isNew, isDirty, deleted bool) bool {
	return !isNew && !isDirty && !deleted
}
