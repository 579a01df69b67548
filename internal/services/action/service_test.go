package action_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sigil/internal/domain"
	"sigil/internal/remote"
	"sigil/internal/server"
	"sigil/internal/services/action"
	"sigil/internal/services/identity"
	"sigil/internal/services/session"
	"sigil/internal/services/signing"
	"sigil/internal/store"
)

const pass = "Correct-Horse-42!"

type client struct {
	identity *identity.Service
	actions  *action.Service
	session  *session.Session
	http     *remote.HTTP
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func startServer(t *testing.T) string {
	t.Helper()
	db, err := store.OpenSQLite(filepath.Join(t.TempDir(), "sigild.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := server.DefaultConfig()
	cfg.TokenSecret = "0123456789abcdef0123456789abcdef"
	ts := httptest.NewServer(server.New(cfg, db, discard()).Handler())
	t.Cleanup(ts.Close)
	return ts.URL
}

func newClient(t *testing.T, url string) *client {
	t.Helper()
	home := t.TempDir()
	ids := store.NewIdentityFileStore(home)
	accounts := store.NewAccountFileStore(home)
	sess := session.New(discard())
	t.Cleanup(sess.Lock)
	httpc := remote.NewHTTP(url, 30*time.Second)
	return &client{
		identity: identity.New(ids, accounts, httpc, sess, url, discard()),
		actions:  action.New(sess, ids, accounts, httpc, url, discard()),
		session:  sess,
		http:     httpc,
	}
}

func TestVote_EndToEnd_AllModes(t *testing.T) {
	ctx := context.Background()
	url := startServer(t)
	c := newClient(t, url)

	_, err := c.identity.Create(pass)
	require.NoError(t, err)
	_, err = c.identity.Register(ctx, "alice", "genesis", pass)
	require.NoError(t, err)

	modes := map[string]action.Mode{
		"rumor-1": action.Direct,
		"rumor-2": action.Ephemeral,
		"rumor-3": action.Bound,
	}
	for rumor, mode := range modes {
		resp, err := c.actions.Vote(ctx, domain.Vote{RumorID: rumor, Up: true, Prediction: 0.6}, mode)
		require.NoError(t, err, "mode %s", mode)
		assert.NotEmpty(t, resp.ActionID)

		tally, err := c.http.Tally(ctx, rumor)
		require.NoError(t, err)
		assert.Equal(t, 1, tally.Up)
	}

	_, err = c.actions.Vote(ctx, domain.Vote{RumorID: "rumor-1", Up: false, Prediction: 0.1}, action.Direct)
	var se *remote.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusConflict, se.Status)
}

func TestVote_LoginOnSecondDevice(t *testing.T) {
	ctx := context.Background()
	url := startServer(t)

	first := newClient(t, url)
	_, err := first.identity.Create(pass)
	require.NoError(t, err)
	_, err = first.identity.Register(ctx, "alice", "genesis", pass)
	require.NoError(t, err)

	second := newClient(t, url)
	_, err = second.identity.Login(ctx, "alice", pass)
	require.NoError(t, err)

	_, err = second.actions.Vote(ctx, domain.Vote{RumorID: "rumor-42", Up: true, Prediction: 0.9}, action.Direct)
	require.NoError(t, err)
}

func TestVote_Preconditions(t *testing.T) {
	ctx := context.Background()
	url := startServer(t)
	c := newClient(t, url)

	_, err := c.actions.Vote(ctx, domain.Vote{RumorID: "", Prediction: 0.5}, action.Direct)
	require.ErrorIs(t, err, action.ErrInvalidVote)
	_, err = c.actions.Vote(ctx, domain.Vote{RumorID: "r", Prediction: 1.5}, action.Direct)
	require.ErrorIs(t, err, action.ErrInvalidVote)

	_, err = c.actions.Vote(ctx, domain.Vote{RumorID: "r", Prediction: 0.5}, action.Direct)
	require.ErrorIs(t, err, domain.ErrNoIdentity)

	_, err = c.identity.Create(pass)
	require.NoError(t, err)
	_, err = c.actions.Vote(ctx, domain.Vote{RumorID: "r", Prediction: 0.5}, action.Direct)
	require.ErrorIs(t, err, action.ErrNotLoggedIn)
}

func TestPost_EndToEnd(t *testing.T) {
	ctx := context.Background()
	url := startServer(t)
	c := newClient(t, url)

	_, err := c.identity.Create(pass)
	require.NoError(t, err)
	_, err = c.identity.Register(ctx, "alice", "genesis", pass)
	require.NoError(t, err)

	for i, mode := range []action.Mode{action.Direct, action.Ephemeral, action.Bound} {
		content := fmt.Sprintf("rumor number %d", i)
		resp, err := c.actions.Post(ctx, domain.Rumor{Content: content}, mode)
		require.NoError(t, err, "mode %s", mode)
		assert.NotEmpty(t, resp.RumorID)
	}

	_, err = c.actions.Post(ctx, domain.Rumor{Content: "  rumor number 0  "}, action.Direct)
	var se *remote.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusConflict, se.Status)
}

func TestPost_Preconditions(t *testing.T) {
	ctx := context.Background()
	url := startServer(t)
	c := newClient(t, url)

	_, err := c.actions.Post(ctx, domain.Rumor{Content: "  "}, action.Direct)
	require.ErrorIs(t, err, action.ErrInvalidRumor)

	_, err = c.actions.Post(ctx, domain.Rumor{Content: "hello"}, action.Direct)
	require.ErrorIs(t, err, domain.ErrNoIdentity)

	_, err = c.identity.Create(pass)
	require.NoError(t, err)
	_, err = c.actions.Post(ctx, domain.Rumor{Content: "hello"}, action.Direct)
	require.ErrorIs(t, err, action.ErrNotLoggedIn)

	offline := action.New(c.session, nil, nil, nil, url, discard())
	_, err = offline.Post(ctx, domain.Rumor{Content: "hello"}, action.Direct)
	require.ErrorIs(t, err, action.ErrNotLoggedIn)
}

func TestSignPayload_Modes(t *testing.T) {
	url := startServer(t)
	c := newClient(t, url)
	id, err := c.identity.Create(pass)
	require.NoError(t, err)
	verifier := signing.New()
	payload := []byte("vote:rumor-42:up:0.5000")

	direct, err := c.actions.SignPayload(payload, action.Direct)
	require.NoError(t, err)
	assert.Empty(t, direct.SignerPublicKey)

	eph, err := c.actions.SignPayload(payload, action.Ephemeral)
	require.NoError(t, err)
	assert.NotEmpty(t, eph.SignerPublicKey)
	assert.Empty(t, eph.Binding)

	bound, err := c.actions.SignPayload(payload, action.Bound)
	require.NoError(t, err)
	assert.NotEmpty(t, bound.Binding)

	for _, a := range []domain.SignedAction{direct, eph, bound} {
		ok, err := verifier.VerifyAction(id.PublicKey, a)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	c.identity.Lock()
	_, err = c.actions.SignPayload(payload, action.Direct)
	require.ErrorIs(t, err, domain.ErrLocked)
	_, err = c.actions.SignPayload(payload, action.Bound)
	require.ErrorIs(t, err, domain.ErrLocked)
	_, err = c.actions.SignPayload(payload, action.Ephemeral)
	require.NoError(t, err, "ephemeral signing needs no identity key")
}

func TestModeFor(t *testing.T) {
	assert.Equal(t, action.Direct, action.ModeFor(false, false))
	assert.Equal(t, action.Direct, action.ModeFor(false, true))
	assert.Equal(t, action.Ephemeral, action.ModeFor(true, false))
	assert.Equal(t, action.Bound, action.ModeFor(true, true))
	assert.Equal(t, "bound", action.Bound.String())
}
