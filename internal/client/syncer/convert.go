package syncer

import (
	"fmt"

	"github.com/dmitrijs2005/docme/internal/api"
	"github.com/dmitrijs2005/docme/internal/client/models"
	"github.com/dmitrijs2005/docme/internal/common"
)

func folderToAPI(f models.Folder) api.Folder {
	return api.Folder{
		UUID:             f.ID,
		Name:             f.Name,
		CreatedAt:        f.CreatedAt,
		UpdatedAt:        f.UpdatedAt,
		Deleted:          f.Deleted,
		ParentFolderUUID: models.CloneString(f.ParentID),
	}
}

// folderFromAPI builds a clean local folder. parent is the already resolved
// reference.
func folderFromAPI(r api.Folder, parent *string) *models.Folder {
	return &models.Folder{
		ID:        r.UUID,
		Name:      r.Name,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
		ParentID:  parent,
	}
}

// documentToAPI sends the storage key of an uploaded image as imagePath;
// the local file path never leaves the device.
func documentToAPI(d models.Document) api.Document {
	out := api.Document{
		UUID:        d.ID,
		Title:       d.Title,
		ImagePath:   models.CloneString(d.RemoteImageKey),
		Icon:        string(d.Icon),
		Color:       string(d.Color),
		Description: models.CloneString(d.Description),
		IsFavorite:  d.IsFavorite,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
		Deleted:     d.Deleted,
		FolderUUID:  models.CloneString(d.FolderID),
		Fields:      make([]api.Field, 0, len(d.Fields)),
	}
	for _, f := range d.Fields {
		out.Fields = append(out.Fields, api.Field{UUID: f.ID, Name: f.Name, Value: f.Value})
	}
	return out
}

// documentFromAPI builds a clean local document without a local image.
func documentFromAPI(r api.Document, folder *string) (*models.Document, error) {
	icon, err := models.ParseIcon(r.Icon)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDecoding, err)
	}
	color, err := models.ParseColor(r.Color)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDecoding, err)
	}

	d := &models.Document{
		ID:             r.UUID,
		Title:          r.Title,
		Description:    models.CloneString(r.Description),
		Icon:           icon,
		Color:          color,
		IsFavorite:     r.IsFavorite,
		CreatedAt:      r.CreatedAt.UTC(),
		UpdatedAt:      r.UpdatedAt.UTC(),
		RemoteImageURL: models.CloneString(r.RemoteImageURL),
		RemoteImageKey: models.CloneString(r.ImagePath),
		FolderID:       folder,
	}

	fields := make([]models.Field, 0, len(r.Fields))
	for _, f := range r.Fields {
		fields = append(fields, models.Field{ID: f.UUID, Name: f.Name, Value: f.Value})
	}
	d.SetFields(fields)
	return d, nil
}
