package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/docme/internal/client/models"
)

// List prints the folders and documents of the current folder, or of the
// folder named in args.
func (a *App) List(ctx context.Context, args []string) error {
	where := a.cwd
	if len(args) > 0 {
		t, err := a.folderTarget(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		where = t
	}

	all, err := a.docs.FetchLocalFolders(ctx)
	if err != nil {
		return err
	}
	docs, err := a.docs.FetchLocalDocuments(ctx, where)
	if err != nil {
		return err
	}

	n := 0
	for _, f := range all {
		if !models.SameRef(f.ParentID, where) {
			continue
		}
		fmt.Fprintf(a.out, "%-8s  %s/%s\n", shortID(f.ID), f.Name, pendingMark(f.IsDirty))
		n++
	}
	for _, d := range docs {
		fmt.Fprintln(a.out, documentLine(d))
		n++
	}
	if n == 0 {
		fmt.Fprintln(a.out, "(empty)")
	}
	return nil
}

func (a *App) ChangeFolder(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.cwd = nil
		return nil
	}
	t, err := a.folderTarget(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	a.cwd = t
	return nil
}

func (a *App) MakeFolder(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("mkdir <name>")
	}
	f, err := a.docs.CreateLocalFolder(ctx, strings.Join(args, " "), a.cwd)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created folder %s (%s)\n", f.Name, shortID(f.ID))
	return nil
}

func (a *App) RenameFolder(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usageError("rename <folder> <new name>")
	}
	f, err := a.resolveFolder(ctx, args[0])
	if err != nil {
		return err
	}
	return a.docs.RenameFolder(ctx, f.ID, strings.Join(args[1:], " "))
}

func (a *App) MoveFolder(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usageError("mvdir <folder> <target folder|/>")
	}
	f, err := a.resolveFolder(ctx, args[0])
	if err != nil {
		return err
	}
	target, err := a.folderTarget(ctx, args[1])
	if err != nil {
		return err
	}
	return a.docs.MoveFolder(ctx, f.ID, target)
}

// RemoveFolder deletes a folder with everything below it. If the current
// folder goes away with it, the REPL moves up to the deleted folder's parent.
func (a *App) RemoveFolder(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("rmdir <folder>")
	}
	f, err := a.resolveFolder(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	all, err := a.docs.FetchLocalFolders(ctx)
	if err != nil {
		return err
	}

	if err := a.docs.DeleteFolder(ctx, f.ID); err != nil {
		return err
	}

	if a.cwd != nil {
		gone := append(models.Descendants(f.ID, all), f.ID)
		for _, id := range gone {
			if id == *a.cwd {
				a.cwd = models.CloneString(f.ParentID)
				break
			}
		}
	}
	fmt.Fprintf(a.out, "Deleted folder %s\n", f.Name)
	return nil
}

func pendingMark(dirty bool) string {
	if dirty {
		return "  (not synced)"
	}
	return ""
}
