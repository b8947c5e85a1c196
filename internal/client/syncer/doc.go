// Package syncer reconciles the local store with the docme server.
//
// A cycle (Engine.SyncAll) runs four phases in a fixed order: folders push,
// folders pull, documents push, documents pull. Folders go first so that a
// pulled document can resolve its folder reference.
//
// Push walks every local row, tombstones included: deleted rows are deleted
// remotely and then purged, new rows are created, dirty rows are updated.
// Flags are cleared with a single conditional statement that only succeeds
// when the row was not edited while the request was in flight.
//
// Pull applies the remote change set with last-write-wins on updatedAt.
// Remote tombstones purge the local row. References to folders that are not
// known locally are stored as nil and re-linked by a later cycle.
//
// Failures are isolated per record and retried by the next cycle, except
// common.ErrUnauthorized, which ends the cycle.
package syncer
