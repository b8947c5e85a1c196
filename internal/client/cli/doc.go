// Package cli provides the interactive docme command-line client.
//
// App drives a REPL over the document service. Folder and document commands
// work offline against the local store; a server session (login) enables
// sync. While logged in, a background watcher pings the server and a
// syncer.Scheduler runs a sync cycle periodically when online.
//
// Folders and documents are addressed by name or title in the current
// folder, or by a prefix of their id as printed by ls.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
