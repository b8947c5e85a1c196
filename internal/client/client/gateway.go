package client

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/docme/internal/api"
	"github.com/dmitrijs2005/docme/internal/common"
)

// Gateway is the remote side of synchronization plus the account endpoints.
type Gateway interface {
	FetchFolderChanges(ctx context.Context) ([]Change[api.Folder], error)
	CreateFolder(ctx context.Context, f api.Folder) error
	UpdateFolder(ctx context.Context, f api.Folder) error
	DeleteFolder(ctx context.Context, id string) error

	FetchDocumentChanges(ctx context.Context) ([]Change[api.Document], error)
	CreateDocument(ctx context.Context, d api.Document) error
	UpdateDocument(ctx context.Context, d api.Document) error
	DeleteDocument(ctx context.Context, id string) error

	// RequestImageUpload reserves a storage key and returns a presigned
	// upload URL for it.
	RequestImageUpload(ctx context.Context) (*api.ImageUpload, error)
	UploadImage(ctx context.Context, url string, png []byte) error

	Register(ctx context.Context, req api.RegisterRequest) error
	Login(ctx context.Context, username, password string) (string, error)
	Me(ctx context.Context) (*api.User, error)
	Ping(ctx context.Context) error
}

// Change is one record of a change set. Err is set, wrapping
// common.ErrDecoding, when the record could not be decoded or validated;
// such records are skipped by the caller.
type Change[T any] struct {
	Record T
	Err    error
}

// TokenProvider supplies the bearer token of the current session.
type TokenProvider interface {
	AccessToken(ctx context.Context) (string, error)
}

// StaticToken is a TokenProvider returning a fixed token.
type StaticToken string

func (t StaticToken) AccessToken(context.Context) (string, error) {
	if strings.TrimSpace(string(t)) == "" {
		return "", common.ErrUnauthorized
	}
	return string(t), nil
}
