package services

import (
	"context"

	"github.com/dmitrijs2005/docme/internal/api"
)

type ImageService struct {
	store ObjectStore
}

func NewImageService(store ObjectStore) *ImageService {
	return &ImageService{store: store}
}

// NewUpload reserves a key under the user's prefix and presigns a PUT for it.
func (s *ImageService) NewUpload(ctx context.Context, userID string) (*api.ImageUpload, error) {
	key := ImageKey(userID)
	url, err := s.store.PresignPut(ctx, key)
	if err != nil {
		return nil, err
	}
	return &api.ImageUpload{Key: key, URL: url}, nil
}
