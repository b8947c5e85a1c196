// Package client contains the client-side building blocks that talk to the
// outside world: the remote Gateway to the docme REST API and the bootstrap
// of the local SQLite database.
//
// # Gateway
//
// Gateway is the transport-agnostic contract used by the sync engine and the
// auth service. HTTPGateway implements it over JSON/HTTP. Every authenticated
// call carries a bearer token obtained from a TokenProvider; a missing token
// fails with common.ErrUnauthorized before any request is made.
//
// # Error Handling
//
// HTTP answers are mapped to the sentinels of package common:
// 401/403 to ErrUnauthorized, 404 to ErrNotFound, 409 to ErrConflict,
// 400/422 to ErrValidation, and 408/429/5xx as well as connection failures to
// ErrTransient. Bodies that cannot be decoded yield ErrDecoding. The gateway
// never retries; the next sync cycle does.
//
// Change fetches decode record by record, so one malformed record does not
// poison the rest of the change set (see Change).
package client
