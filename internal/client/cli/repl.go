package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/docme/internal/common"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Me(ctx context.Context) error

	List(ctx context.Context, args []string) error
	ChangeFolder(ctx context.Context, args []string) error
	MakeFolder(ctx context.Context, args []string) error
	RenameFolder(ctx context.Context, args []string) error
	MoveFolder(ctx context.Context, args []string) error
	RemoveFolder(ctx context.Context, args []string) error

	AddDocument(ctx context.Context) error
	Show(ctx context.Context, args []string) error
	Edit(ctx context.Context, args []string) error
	Fields(ctx context.Context, args []string) error
	Image(ctx context.Context, args []string) error
	Favorite(ctx context.Context, args []string) error
	Move(ctx context.Context, args []string) error
	Remove(ctx context.Context, args []string) error

	Search(ctx context.Context, args []string) error
	Color(ctx context.Context, args []string) error
	Favorites(ctx context.Context) error

	Sync(ctx context.Context) error
	Status(ctx context.Context) error
}

// usageError is returned by handlers that got the wrong arguments.
type usageError string

func (u usageError) Error() string { return "Usage: " + string(u) }

const (
	helpLocal = "Folders: ls, cd <folder|..|/>, mkdir <name>, rename <folder> <name>, mvdir <folder> <target|/>, rmdir <folder>\n" +
		"Documents: add, show <doc>, edit <doc>, fields <doc>, image <doc> <file.png|url|-rm>, fav <doc>, mv <doc> <folder|/>, rm <doc>\n" +
		"Lookup: search <text>, color <none|red|green|yellow>, favorites\n"
	helpLoggedOut = "Session: register, login, status, exit"
	helpLoggedIn  = "Session: sync, me, status, logout, exit"
)

// runREPL starts a read–eval–print loop for the docme CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a' with the remaining tokens as arguments. The
// loop exits on EOF, when ctx is done, or when the user types "exit" or
// "quit".
//
// Folder and document commands work offline against the local store; sync,
// me and logout need a session.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("docme %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cerr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLocal + helpLoggedIn)
			} else {
				printlnFn(helpLocal + helpLoggedOut)
			}

		case "register":
			cerr = a.Register(ctx)
		case "login":
			cerr = a.Login(ctx)
		case "logout", "me", "sync":
			if !a.isLoggedIn() {
				printlnFn("Not logged in. Use 'login' first.")
				continue
			}
			switch cmd {
			case "logout":
				cerr = a.Logout(ctx)
			case "me":
				cerr = a.Me(ctx)
			default:
				cerr = a.Sync(ctx)
			}
		case "status":
			cerr = a.Status(ctx)

		case "l", "ls", "list":
			cerr = a.List(ctx, args)
		case "cd":
			cerr = a.ChangeFolder(ctx, args)
		case "mkdir":
			cerr = a.MakeFolder(ctx, args)
		case "rename":
			cerr = a.RenameFolder(ctx, args)
		case "mvdir":
			cerr = a.MoveFolder(ctx, args)
		case "rmdir":
			cerr = a.RemoveFolder(ctx, args)

		case "add":
			cerr = a.AddDocument(ctx)
		case "show":
			cerr = a.Show(ctx, args)
		case "edit":
			cerr = a.Edit(ctx, args)
		case "fields":
			cerr = a.Fields(ctx, args)
		case "image":
			cerr = a.Image(ctx, args)
		case "fav":
			cerr = a.Favorite(ctx, args)
		case "mv":
			cerr = a.Move(ctx, args)
		case "rm":
			cerr = a.Remove(ctx, args)

		case "search":
			cerr = a.Search(ctx, args)
		case "color":
			cerr = a.Color(ctx, args)
		case "favorites":
			cerr = a.Favorites(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cerr != nil {
			printlnFn(describeError(cerr))
		}
	}
}

// describeError turns a service error into a message for the terminal.
func describeError(err error) string {
	var u usageError
	switch {
	case errors.As(err, &u):
		return u.Error()
	case errors.Is(err, common.ErrUnauthorized):
		return "Error: session expired or invalid credentials, please log in"
	case errors.Is(err, common.ErrTransient):
		return "Error: server unavailable, try again later"
	case errors.Is(err, common.ErrNotFound):
		return "Error: not found"
	case errors.Is(err, common.ErrCycle):
		return "Error: a folder cannot be moved into itself"
	case errors.Is(err, common.ErrConflict):
		return "Error: already exists"
	default:
		return "Error: " + err.Error()
	}
}
