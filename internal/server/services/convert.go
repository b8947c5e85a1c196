package services

import (
	"github.com/dmitrijs2005/docme/internal/api"
	"github.com/dmitrijs2005/docme/internal/server/models"
)

func folderFromAPI(userID string, f api.Folder) *models.Folder {
	return &models.Folder{
		ID:        f.UUID,
		UserID:    userID,
		Name:      f.Name,
		ParentID:  f.ParentFolderUUID,
		CreatedAt: f.CreatedAt.UTC(),
		UpdatedAt: f.UpdatedAt.UTC(),
		Deleted:   f.Deleted,
	}
}

func folderToAPI(f models.Folder) api.Folder {
	return api.Folder{
		UUID:             f.ID,
		Name:             f.Name,
		CreatedAt:        f.CreatedAt.UTC(),
		UpdatedAt:        f.UpdatedAt.UTC(),
		Deleted:          f.Deleted,
		ParentFolderUUID: f.ParentID,
	}
}

func documentFromAPI(userID string, d api.Document) *models.Document {
	m := &models.Document{
		ID:          d.UUID,
		UserID:      userID,
		Title:       d.Title,
		ImageKey:    d.ImagePath,
		Icon:        d.Icon,
		Color:       d.Color,
		Description: d.Description,
		IsFavorite:  d.IsFavorite,
		FolderID:    d.FolderUUID,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
		Deleted:     d.Deleted,
		Fields:      make([]models.Field, 0, len(d.Fields)),
	}
	for i, f := range d.Fields {
		m.Fields = append(m.Fields, models.Field{ID: f.UUID, Name: f.Name, Value: f.Value, Position: i})
	}
	return m
}

// documentToAPI leaves RemoteImageURL for the caller to presign.
func documentToAPI(d models.Document) api.Document {
	out := api.Document{
		UUID:        d.ID,
		Title:       d.Title,
		ImagePath:   d.ImageKey,
		Icon:        d.Icon,
		Color:       d.Color,
		Description: d.Description,
		IsFavorite:  d.IsFavorite,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
		Deleted:     d.Deleted,
		FolderUUID:  d.FolderID,
		Fields:      make([]api.Field, 0, len(d.Fields)),
	}
	for _, f := range d.Fields {
		out.Fields = append(out.Fields, api.Field{UUID: f.ID, Name: f.Name, Value: f.Value})
	}
	return out
}
