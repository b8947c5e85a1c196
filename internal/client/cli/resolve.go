package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/docme/internal/client/models"
	"github.com/dmitrijs2005/docme/internal/common"
)

const shortIDLen = 8

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

// resolveFolder finds a folder by full id, by name among the children of the
// current folder, or by a unique id prefix.
func (a *App) resolveFolder(ctx context.Context, ref string) (*models.Folder, error) {
	all, err := a.docs.FetchLocalFolders(ctx)
	if err != nil {
		return nil, err
	}
	return pickFolder(all, a.cwd, ref)
}

func pickFolder(all []models.Folder, cwd *string, ref string) (*models.Folder, error) {
	for i := range all {
		if all[i].ID == ref {
			return &all[i], nil
		}
	}
	for i := range all {
		if models.SameRef(all[i].ParentID, cwd) && strings.EqualFold(all[i].Name, ref) {
			return &all[i], nil
		}
	}

	var found *models.Folder
	for i := range all {
		if strings.HasPrefix(all[i].ID, ref) {
			if found != nil {
				return nil, fmt.Errorf("%q matches more than one folder", ref)
			}
			found = &all[i]
		}
	}
	if found == nil {
		return nil, fmt.Errorf("folder %q: %w", ref, common.ErrNotFound)
	}
	return found, nil
}

// folderTarget resolves a destination folder: "/" is the top level and ".."
// the parent of the current folder.
func (a *App) folderTarget(ctx context.Context, ref string) (*string, error) {
	switch ref {
	case "/":
		return nil, nil
	case "..":
		return a.parentOfCwd(ctx)
	}
	f, err := a.resolveFolder(ctx, ref)
	if err != nil {
		return nil, err
	}
	id := f.ID
	return &id, nil
}

func (a *App) parentOfCwd(ctx context.Context) (*string, error) {
	if a.cwd == nil {
		return nil, nil
	}
	f, err := a.docs.GetFolder(ctx, *a.cwd)
	if err != nil {
		return nil, err
	}
	return f.ParentID, nil
}

// resolveDocument finds a document by title or id prefix in the current
// folder, falling back to a lookup by full id anywhere.
func (a *App) resolveDocument(ctx context.Context, ref string) (*models.Document, error) {
	docs, err := a.docs.FetchLocalDocuments(ctx, a.cwd)
	if err != nil {
		return nil, err
	}

	for i := range docs {
		if strings.EqualFold(docs[i].Title, ref) {
			return a.docs.GetDocument(ctx, docs[i].ID)
		}
	}

	var found *models.Document
	for i := range docs {
		if strings.HasPrefix(docs[i].ID, ref) {
			if found != nil {
				return nil, fmt.Errorf("%q matches more than one document", ref)
			}
			found = &docs[i]
		}
	}
	if found != nil {
		return a.docs.GetDocument(ctx, found.ID)
	}

	d, err := a.docs.GetDocument(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("document %q: %w", ref, err)
	}
	return d, nil
}

// folderPath renders id as "/a/b". Unknown ids render as their short form.
func folderPath(all []models.Folder, id *string) string {
	if id == nil {
		return "/"
	}
	names := map[string]models.Folder{}
	for _, f := range all {
		names[f.ID] = f
	}

	var parts []string
	seen := map[string]bool{}
	for cur := id; cur != nil && !seen[*cur]; {
		seen[*cur] = true
		f, ok := names[*cur]
		if !ok {
			parts = append(parts, shortID(*cur))
			break
		}
		parts = append(parts, f.Name)
		cur = f.ParentID
	}

	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return "/" + strings.Join(parts, "/")
}
