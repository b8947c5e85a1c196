package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/docme/internal/api"
	"github.com/dmitrijs2005/docme/internal/client/client"
	"github.com/dmitrijs2005/docme/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/docme/internal/client/testutil"
	"github.com/dmitrijs2005/docme/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGateway implements the account part of client.Gateway. The sync
// methods come from the embedded interface and panic if called.
type fakeGateway struct {
	client.Gateway

	loginToken string
	loginErr   error
	lastUser   string
	lastPass   string

	registerErr  error
	lastRegister api.RegisterRequest

	me    *api.User
	meErr error

	pingErr error
}

func (f *fakeGateway) Login(_ context.Context, username, password string) (string, error) {
	f.lastUser, f.lastPass = username, password
	return f.loginToken, f.loginErr
}

func (f *fakeGateway) Register(_ context.Context, req api.RegisterRequest) error {
	f.lastRegister = req
	return f.registerErr
}

func (f *fakeGateway) Me(context.Context) (*api.User, error) { return f.me, f.meErr }

func (f *fakeGateway) Ping(context.Context) error { return f.pingErr }

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func newAuth(t *testing.T, gw *fakeGateway) (*authService, metadata.Repository) {
	t.Helper()
	meta := metadata.NewSQLiteRepository(testutil.NewDB(t))
	return NewAuthService(gw, meta).(*authService), meta
}

func TestLogin_PersistsTokenAndWipesPassword(t *testing.T) {
	token := signed(t, time.Now().Add(time.Hour))
	gw := &fakeGateway{loginToken: token}
	a, meta := newAuth(t, gw)
	ctx := context.Background()

	password := []byte("correct horse")
	require.NoError(t, a.Login(ctx, "alice", password))

	assert.Equal(t, "alice", gw.lastUser)
	assert.Equal(t, "correct horse", gw.lastPass)
	assert.Equal(t, make([]byte, len(password)), password)

	stored, err := NewTokenStore(meta).AccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, token, stored)

	name, err := a.UserName(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", name)

	ok, err := a.IsAuthenticated(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLogin_Rejected(t *testing.T) {
	gw := &fakeGateway{loginErr: common.ErrUnauthorized}
	a, meta := newAuth(t, gw)
	ctx := context.Background()

	err := a.Login(ctx, "alice", []byte("wrong"))
	require.ErrorIs(t, err, common.ErrUnauthorized)

	_, err = NewTokenStore(meta).AccessToken(ctx)
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestIsAuthenticated_Expiry(t *testing.T) {
	a, meta := newAuth(t, &fakeGateway{})
	ctx := context.Background()

	ok, err := a.IsAuthenticated(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "no token")

	require.NoError(t, meta.Set(ctx, metadata.KeyAccessToken, []byte(signed(t, time.Now().Add(-time.Minute)))))
	ok, err = a.IsAuthenticated(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "expired")

	require.NoError(t, meta.Set(ctx, metadata.KeyAccessToken, []byte("garbage")))
	ok, err = a.IsAuthenticated(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "malformed")

	a.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	require.NoError(t, meta.Set(ctx, metadata.KeyAccessToken, []byte(signed(t, time.Now().Add(-time.Hour)))))
	ok, err = a.IsAuthenticated(ctx)
	require.NoError(t, err)
	assert.True(t, ok, "valid at the injected clock")
}

func TestLogout(t *testing.T) {
	a, meta := newAuth(t, &fakeGateway{loginToken: signed(t, time.Now().Add(time.Hour))})
	ctx := context.Background()

	require.NoError(t, a.Login(ctx, "alice", []byte("pw")))
	require.NoError(t, metadata.SetTime(ctx, meta, metadata.KeyLastSyncAt, time.Now()))
	require.NoError(t, a.Logout(ctx))

	ok, err := a.IsAuthenticated(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	last, err := metadata.GetTime(ctx, meta, metadata.KeyLastSyncAt)
	require.NoError(t, err)
	assert.False(t, last.IsZero(), "sync bookkeeping survives logout")
}

func TestRegister_ValidatesBeforeCalling(t *testing.T) {
	gw := &fakeGateway{}
	a, _ := newAuth(t, gw)
	ctx := context.Background()

	err := a.Register(ctx, api.RegisterRequest{Email: "nope", Name: "A", Username: "alice", Password: "longenough"})
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Empty(t, gw.lastRegister.Username)

	req := api.RegisterRequest{Email: "a@example.com", Name: "Alice", Username: "alice", Password: "longenough"}
	require.NoError(t, a.Register(ctx, req))
	assert.Equal(t, req, gw.lastRegister)

	gw.registerErr = common.ErrConflict
	assert.ErrorIs(t, a.Register(ctx, req), common.ErrConflict)
}

func TestMeAndPing(t *testing.T) {
	gw := &fakeGateway{me: &api.User{Username: "alice"}}
	a, _ := newAuth(t, gw)
	ctx := context.Background()

	u, err := a.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	gw.meErr = common.ErrUnauthorized
	_, err = a.Me(ctx)
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	gw.pingErr = common.ErrTransient
	assert.ErrorIs(t, a.Ping(ctx), common.ErrTransient)
}
