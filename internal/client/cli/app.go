package cli

import (
	"bufio"
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/docme/internal/client/config"
	"github.com/dmitrijs2005/docme/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/docme/internal/client/services"
	"github.com/dmitrijs2005/docme/internal/client/syncer"
	"github.com/dmitrijs2005/docme/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// App is the interactive client. It only talks to the services; all
// persistence and networking happen below them.
type App struct {
	config *config.Config
	auth   services.AuthService
	docs   services.DocumentService
	meta   metadata.Repository
	log    logging.Logger

	reader *bufio.Reader
	out    io.Writer

	// cwd is the folder ls/add/mkdir operate in; nil is the top level.
	cwd *string

	mu       sync.RWMutex
	mode     Mode
	userName string
}

func NewApp(c *config.Config, auth services.AuthService, docs services.DocumentService,
	meta metadata.Repository, log logging.Logger) *App {
	if log == nil {
		log = logging.NopLogger{}
	}
	return &App{
		config: c,
		auth:   auth,
		docs:   docs,
		meta:   meta,
		log:    log.With("module", "cli"),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
		mode:   ModeOffline,
	}
}

// Run restores a stored session, starts the background workers and blocks in
// the REPL until the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.restoreSession(ctx)

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	sched := syncer.NewScheduler(a.docs, a.config.SyncInterval, a.canSync, a.log)
	sched.OnUnauthorized = a.sessionExpired
	go sched.Run(ctx)

	a.Root(ctx)
}

func (a *App) restoreSession(ctx context.Context) {
	ok, err := a.auth.IsAuthenticated(ctx)
	if err != nil {
		a.log.Warn(ctx, "could not read stored session", "error", err)
		return
	}
	if !ok {
		return
	}
	name, err := a.auth.UserName(ctx)
	if err != nil {
		a.log.Warn(ctx, "could not read stored user name", "error", err)
		return
	}
	a.setUserName(name)
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.log.Info(context.Background(), "connectivity changed", "mode", string(mode))
	}
}

func (a *App) currentMode() Mode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mode
}

func (a *App) setUserName(name string) {
	a.mu.Lock()
	a.userName = name
	a.mu.Unlock()
}

func (a *App) currentUser() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.userName
}

func (a *App) isLoggedIn() bool {
	return a.currentUser() != ""
}

// canSync gates the background scheduler.
func (a *App) canSync() bool {
	return a.isLoggedIn() && a.currentMode() == ModeOnline
}

func (a *App) sessionExpired() {
	a.setUserName("")
}

// StartOnlineStatusWatcher pings the server every interval and flips the
// connectivity mode accordingly. It returns when ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := a.auth.Ping(pctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}
