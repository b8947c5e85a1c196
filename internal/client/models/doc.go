// Package models defines the client-side entities kept in the local store:
// folders, documents and their ordered key/value fields, together with the
// sync bookkeeping flags (IsNew, IsDirty, Deleted).
package models
