package syncer

import (
	"context"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"sync"

	"github.com/dmitrijs2005/docme/internal/api"
	"github.com/dmitrijs2005/docme/internal/client/client"
	"github.com/dmitrijs2005/docme/internal/common"
)

// fakeGateway is an in-memory server. Errors are injected per operation
// key such as "createFolder:<id>" or "fetchDocuments".
type fakeGateway struct {
	mu        sync.Mutex
	folders   map[string]api.Folder
	documents map[string]api.Document
	uploads   map[string][]byte

	// When non-nil these are served instead of the stored records.
	folderChanges   []client.Change[api.Folder]
	documentChanges []client.Change[api.Document]

	fail   map[string]error
	calls  []string
	onCall func(op, id string)
	nextID int
}

var _ client.Gateway = (*fakeGateway)(nil)

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		folders:   map[string]api.Folder{},
		documents: map[string]api.Document{},
		uploads:   map[string][]byte{},
		fail:      map[string]error{},
	}
}

func (g *fakeGateway) call(op, id string) error {
	g.mu.Lock()
	key := op
	if id != "" {
		key = op + ":" + id
	}
	g.calls = append(g.calls, key)
	err := g.fail[key]
	hook := g.onCall
	g.mu.Unlock()

	if hook != nil {
		hook(op, id)
	}
	return err
}

func (g *fakeGateway) callCount(key string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, c := range g.calls {
		if c == key {
			n++
		}
	}
	return n
}

func (g *fakeGateway) FetchFolderChanges(ctx context.Context) ([]client.Change[api.Folder], error) {
	if err := g.call("fetchFolders", ""); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.folderChanges != nil {
		return g.folderChanges, nil
	}
	out := make([]client.Change[api.Folder], 0, len(g.folders))
	for _, f := range g.folders {
		out = append(out, client.Change[api.Folder]{Record: f})
	}
	slices.SortFunc(out, func(a, b client.Change[api.Folder]) int {
		return strings.Compare(a.Record.UUID, b.Record.UUID)
	})
	return out, nil
}

func (g *fakeGateway) CreateFolder(ctx context.Context, f api.Folder) error {
	if err := g.call("createFolder", f.UUID); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.folders[f.UUID] = f
	return nil
}

func (g *fakeGateway) UpdateFolder(ctx context.Context, f api.Folder) error {
	if err := g.call("updateFolder", f.UUID); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.folders[f.UUID]; !ok {
		return fmt.Errorf("folder %s: %w", f.UUID, common.ErrNotFound)
	}
	g.folders[f.UUID] = f
	return nil
}

func (g *fakeGateway) DeleteFolder(ctx context.Context, id string) error {
	if err := g.call("deleteFolder", id); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	f, ok := g.folders[id]
	if !ok || f.Deleted {
		return fmt.Errorf("folder %s: %w", id, common.ErrNotFound)
	}
	f.Deleted = true
	g.folders[id] = f
	return nil
}

func (g *fakeGateway) FetchDocumentChanges(ctx context.Context) ([]client.Change[api.Document], error) {
	if err := g.call("fetchDocuments", ""); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.documentChanges != nil {
		return g.documentChanges, nil
	}
	out := make([]client.Change[api.Document], 0, len(g.documents))
	for _, d := range g.documents {
		out = append(out, client.Change[api.Document]{Record: d})
	}
	slices.SortFunc(out, func(a, b client.Change[api.Document]) int {
		return strings.Compare(a.Record.UUID, b.Record.UUID)
	})
	return out, nil
}

func (g *fakeGateway) CreateDocument(ctx context.Context, d api.Document) error {
	if err := g.call("createDocument", d.UUID); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.documents[d.UUID] = d
	return nil
}

func (g *fakeGateway) UpdateDocument(ctx context.Context, d api.Document) error {
	if err := g.call("updateDocument", d.UUID); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.documents[d.UUID]; !ok {
		return fmt.Errorf("document %s: %w", d.UUID, common.ErrNotFound)
	}
	g.documents[d.UUID] = d
	return nil
}

func (g *fakeGateway) DeleteDocument(ctx context.Context, id string) error {
	if err := g.call("deleteDocument", id); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	d, ok := g.documents[id]
	if !ok || d.Deleted {
		return fmt.Errorf("document %s: %w", id, common.ErrNotFound)
	}
	d.Deleted = true
	g.documents[id] = d
	return nil
}

func (g *fakeGateway) RequestImageUpload(ctx context.Context) (*api.ImageUpload, error) {
	if err := g.call("requestImage", ""); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextID++
	key := fmt.Sprintf("images/%d.png", g.nextID)
	return &api.ImageUpload{Key: key, URL: "https://storage.test/" + key}, nil
}

func (g *fakeGateway) UploadImage(ctx context.Context, url string, png []byte) error {
	if err := g.call("uploadImage", ""); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.uploads[url] = png
	return nil
}

func (g *fakeGateway) Register(context.Context, api.RegisterRequest) error { return nil }

func (g *fakeGateway) Login(context.Context, string, string) (string, error) { return "token", nil }

func (g *fakeGateway) Me(context.Context) (*api.User, error) { return &api.User{}, nil }

func (g *fakeGateway) Ping(context.Context) error { return nil }

// fakeAssets keeps image files in memory, keyed by path.
type fakeAssets struct {
	mu           sync.Mutex
	files        map[string][]byte
	downloadErr  error
	downloaded   []string
	removedFiles []string
	discarded    []string
	// onFetch runs after a download was staged, outside the fake's lock.
	onFetch func(entityID string)
}

func newFakeAssets() *fakeAssets {
	return &fakeAssets{files: map[string][]byte{}}
}

func (a *fakeAssets) path(id string) string {
	return "/assets/" + id + ".png"
}

func (a *fakeAssets) Fetch(ctx context.Context, url, entityID string) (string, error) {
	a.mu.Lock()
	a.downloaded = append(a.downloaded, url)
	if a.downloadErr != nil {
		a.mu.Unlock()
		return "", a.downloadErr
	}
	staged := "/staging/" + entityID
	a.files[staged] = []byte("downloaded:" + url)
	hook := a.onFetch
	a.mu.Unlock()

	if hook != nil {
		hook(entityID)
	}
	return staged, nil
}

func (a *fakeAssets) Commit(staged, entityID string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	data, ok := a.files[staged]
	if !ok {
		return "", fs.ErrNotExist
	}
	delete(a.files, staged)
	p := a.path(entityID)
	a.files[p] = data
	return p, nil
}

func (a *fakeAssets) Discard(staged string) {
	if staged == "" {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.files[staged]; ok {
		delete(a.files, staged)
		a.discarded = append(a.discarded, staged)
	}
}

func (a *fakeAssets) ReadBytes(path string) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	data, ok := a.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return data, nil
}

func (a *fakeAssets) Remove(entityID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.files, a.path(entityID))
	a.removedFiles = append(a.removedFiles, entityID)
	return nil
}
