package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/docme/internal/client/client"
	"github.com/dmitrijs2005/docme/internal/client/models"
	"github.com/dmitrijs2005/docme/internal/client/repositories/documents"
	"github.com/dmitrijs2005/docme/internal/client/repositories/folders"
	"github.com/dmitrijs2005/docme/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/docme/internal/common"
	"github.com/dmitrijs2005/docme/internal/logging"
)

// Assets is the part of the image store the engine needs. Pulled images are
// fetched into a staging file and only committed once the row write is
// known to go through.
type Assets interface {
	Fetch(ctx context.Context, url, entityID string) (string, error)
	Commit(staged, entityID string) (string, error)
	Discard(staged string)
	ReadBytes(path string) ([]byte, error)
	Remove(entityID string) error
}

type Deps struct {
	Folders   folders.Repository
	Documents documents.Repository
	// Metadata is optional; when set the time of the last completed cycle
	// is recorded under metadata.KeyLastSyncAt.
	Metadata metadata.Repository
	Gateway  client.Gateway
	Assets   Assets
	// Locks is shared with the local write paths. A private value is used
	// when nil.
	Locks  *Locks
	Logger logging.Logger
}

type Options struct {
	// PruneMissing purges clean local rows that are absent from a complete,
	// fully decoded remote change set.
	PruneMissing bool
}

type Engine struct {
	folders   folders.Repository
	documents documents.Repository
	meta      metadata.Repository
	gateway   client.Gateway
	assets    Assets
	locks     *Locks
	log       logging.Logger
	opts      Options

	cycle sync.Mutex
}

func NewEngine(d Deps, opts Options) *Engine {
	e := &Engine{
		folders:   d.Folders,
		documents: d.Documents,
		meta:      d.Metadata,
		gateway:   d.Gateway,
		assets:    d.Assets,
		locks:     d.Locks,
		log:       d.Logger,
		opts:      opts,
	}
	if e.locks == nil {
		e.locks = &Locks{}
	}
	if e.log == nil {
		e.log = logging.NopLogger{}
	}
	e.log = e.log.With("module", "syncer")
	return e
}

// Locks returns the collection locks used by the engine.
func (e *Engine) Locks() *Locks {
	return e.locks
}

// SyncAll runs one full cycle. Concurrent calls run one after another.
//
// Per-record failures are counted in the report and do not fail the cycle.
// The returned error is set when the cycle was cut short (unauthorized,
// cancelled) or when local storage failed; the report is always non-nil.
func (e *Engine) SyncAll(ctx context.Context) (*Report, error) {
	e.cycle.Lock()
	defer e.cycle.Unlock()

	rep := &Report{}
	phases := []struct {
		name string
		run  func(context.Context, *KindReport) error
		kind *KindReport
	}{
		{"folders push", e.pushFolders, &rep.Folders},
		{"folders pull", e.pullFolders, &rep.Folders},
		{"documents push", e.pushDocuments, &rep.Documents},
		{"documents pull", e.pullDocuments, &rep.Documents},
	}

	var storageErrs []error
	for _, p := range phases {
		err := p.run(ctx, p.kind)
		if err == nil {
			continue
		}
		if fatal(ctx, err) {
			e.log.Warn(ctx, "sync cycle aborted", "phase", p.name, "error", err)
			return rep, fmt.Errorf("%s: %w", p.name, err)
		}
		storageErrs = append(storageErrs, fmt.Errorf("%s: %w", p.name, err))
	}

	if len(storageErrs) > 0 {
		return rep, errors.Join(storageErrs...)
	}

	if e.meta != nil {
		if err := metadata.SetTime(ctx, e.meta, metadata.KeyLastSyncAt, models.Now()); err != nil {
			return rep, err
		}
	}

	e.log.Info(ctx, "sync cycle finished",
		"folders", rep.Folders.String(), "documents", rep.Documents.String())
	return rep, nil
}

// fatal reports whether err ends the cycle.
func fatal(ctx context.Context, err error) bool {
	return errors.Is(err, common.ErrUnauthorized) || ctx.Err() != nil
}

// itemErr decides what a per-record gateway error means for the loop: nil
// to continue with the next record, or the error to stop the phase.
func itemErr(ctx context.Context, err error) error {
	if fatal(ctx, err) {
		return err
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, common.ErrNotFound)
}
