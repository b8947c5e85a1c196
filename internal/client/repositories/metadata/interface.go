// Package metadata is a small key/value table in the local store. It keeps
// the session (bearer token, user name) and sync bookkeeping such as the
// time of the last successful cycle.
package metadata

import (
	"context"
)

const (
	KeyAccessToken = "access_token"
	KeyUserName    = "user_name"
	KeyLastSyncAt  = "last_sync_at"
)

type Repository interface {
	// Get returns (nil, nil) when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
