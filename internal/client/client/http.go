package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/docme/internal/api"
	"github.com/dmitrijs2005/docme/internal/common"
	"github.com/dmitrijs2005/docme/internal/netx"
)

const maxErrorBody = 4096

// HTTPGateway implements Gateway over the docme REST API.
type HTTPGateway struct {
	baseURL string
	http    *http.Client
	tokens  TokenProvider
}

var _ Gateway = (*HTTPGateway)(nil)

// NewHTTPGateway returns a gateway for baseURL. timeout bounds every request
// including reading the body; zero means no limit.
func NewHTTPGateway(baseURL string, timeout time.Duration, tokens TokenProvider) *HTTPGateway {
	return &HTTPGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
	}
}

func (g *HTTPGateway) FetchFolderChanges(ctx context.Context) ([]Change[api.Folder], error) {
	return fetchChanges[api.Folder](ctx, g, "/folders/changes")
}

func (g *HTTPGateway) CreateFolder(ctx context.Context, f api.Folder) error {
	return g.do(ctx, http.MethodPost, "/folders", f, nil, true)
}

func (g *HTTPGateway) UpdateFolder(ctx context.Context, f api.Folder) error {
	return g.do(ctx, http.MethodPatch, "/folders/"+url.PathEscape(f.UUID), f, nil, true)
}

func (g *HTTPGateway) DeleteFolder(ctx context.Context, id string) error {
	return g.do(ctx, http.MethodDelete, "/folders/"+url.PathEscape(id), nil, nil, true)
}

func (g *HTTPGateway) FetchDocumentChanges(ctx context.Context) ([]Change[api.Document], error) {
	return fetchChanges[api.Document](ctx, g, "/documents/changes")
}

func (g *HTTPGateway) CreateDocument(ctx context.Context, d api.Document) error {
	return g.do(ctx, http.MethodPost, "/documents", d, nil, true)
}

func (g *HTTPGateway) UpdateDocument(ctx context.Context, d api.Document) error {
	return g.do(ctx, http.MethodPatch, "/documents/"+url.PathEscape(d.UUID), d, nil, true)
}

func (g *HTTPGateway) DeleteDocument(ctx context.Context, id string) error {
	return g.do(ctx, http.MethodDelete, "/documents/"+url.PathEscape(id), nil, nil, true)
}

func (g *HTTPGateway) RequestImageUpload(ctx context.Context) (*api.ImageUpload, error) {
	var out api.ImageUpload
	if err := g.do(ctx, http.MethodPost, "/images", nil, &out, true); err != nil {
		return nil, err
	}
	if out.Key == "" || out.URL == "" {
		return nil, fmt.Errorf("%w: empty image upload target", common.ErrDecoding)
	}
	return &out, nil
}

// UploadImage PUTs png to a presigned URL. The URL already carries its
// credentials, so no bearer token is sent.
func (g *HTTPGateway) UploadImage(ctx context.Context, url string, png []byte) error {
	if err := netx.UploadToPresignedURL(ctx, g.http, url, "image/png", png); err != nil {
		return mapObjectStore(err)
	}
	return nil
}

func (g *HTTPGateway) Register(ctx context.Context, req api.RegisterRequest) error {
	return g.do(ctx, http.MethodPost, "/auth/register", req, nil, false)
}

func (g *HTTPGateway) Login(ctx context.Context, username, password string) (string, error) {
	var out api.LoginResponse
	req := api.LoginRequest{Username: username, Password: password}
	if err := g.do(ctx, http.MethodPost, "/auth/login", req, &out, false); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", fmt.Errorf("%w: empty token", common.ErrDecoding)
	}
	return out.Token, nil
}

func (g *HTTPGateway) Me(ctx context.Context) (*api.User, error) {
	var out api.UserResponse
	if err := g.do(ctx, http.MethodGet, "/users/me", nil, &out, true); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (g *HTTPGateway) Ping(ctx context.Context) error {
	return g.do(ctx, http.MethodGet, "/ping", nil, nil, false)
}

type validatable interface {
	Validate() error
}

func fetchChanges[T validatable](ctx context.Context, g *HTTPGateway, path string) ([]Change[T], error) {
	var raw []json.RawMessage
	if err := g.do(ctx, http.MethodGet, path, nil, &raw, true); err != nil {
		return nil, err
	}

	out := make([]Change[T], 0, len(raw))
	for _, r := range raw {
		var c Change[T]
		if err := json.Unmarshal(r, &c.Record); err != nil {
			c.Err = fmt.Errorf("%w: %v", common.ErrDecoding, err)
		} else if err := c.Record.Validate(); err != nil {
			c.Err = fmt.Errorf("%w: %v", common.ErrDecoding, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// do sends in as JSON (when non-nil) and decodes the answer into out (when
// non-nil).
func (g *HTTPGateway) do(ctx context.Context, method, path string, in, out any, auth bool) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if auth {
		if g.tokens == nil {
			return common.ErrUnauthorized
		}
		token, err := g.tokens.AccessToken(ctx)
		if err != nil {
			return err
		}
		if token == "" {
			return common.ErrUnauthorized
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return mapTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return mapStatus(resp.StatusCode, readErrorMessage(resp.Body))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", common.ErrDecoding, err)
	}
	return nil
}

func readErrorMessage(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	var e api.ErrorResponse
	if json.Unmarshal(b, &e) == nil && e.Error != "" {
		return e.Error
	}
	return string(b)
}
