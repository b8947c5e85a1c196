package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/docme/internal/client/repositories/metadata"
)

func (a *App) getStatus() string {
	var parts []string
	if u := a.currentUser(); u != "" {
		parts = append(parts, u)
	}
	if m := a.currentMode(); m != "" {
		parts = append(parts, string(m))
	}
	if len(parts) == 0 {
		return ""
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, " "))
}

// Root runs the REPL on the App's input until the user exits.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to docme (type 'help' for commands)")
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Working offline. Use 'login' to enable sync.")
	}
	runREPL(ctx, a, a.getStatus, a.reader)
}

// Sync runs one full cycle and prints what it did. Records that failed stay
// pending and are retried by the next cycle.
func (a *App) Sync(ctx context.Context) error {
	rep, err := a.docs.SyncAll(ctx)
	if rep != nil {
		fmt.Fprintf(a.out, "Folders:   %s\n", rep.Folders)
		fmt.Fprintf(a.out, "Documents: %s\n", rep.Documents)
	}
	if err != nil {
		return err
	}
	if rep != nil && rep.Failed() > 0 {
		fmt.Fprintf(a.out, "%d record(s) will be retried on the next sync\n", rep.Failed())
	}
	return nil
}

// Status prints the session, connectivity, current folder and the time of
// the last completed sync.
func (a *App) Status(ctx context.Context) error {
	user := a.currentUser()
	if user == "" {
		user = "not logged in"
	}
	fmt.Fprintf(a.out, "user:      %s\n", user)
	fmt.Fprintf(a.out, "mode:      %s\n", a.currentMode())

	all, err := a.docs.FetchLocalFolders(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "folder:    %s\n", folderPath(all, a.cwd))

	if a.meta == nil {
		return nil
	}
	last, err := metadata.GetTime(ctx, a.meta, metadata.KeyLastSyncAt)
	if err != nil {
		return err
	}
	if last.IsZero() {
		fmt.Fprintln(a.out, "last sync: never")
	} else {
		fmt.Fprintf(a.out, "last sync: %s\n", last.Local().Format(time.DateTime))
	}
	return nil
}
