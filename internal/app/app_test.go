package app

import (
	"bytes"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sigil/internal/domain"
	"sigil/internal/server"
	actionsvc "sigil/internal/services/action"
	"sigil/internal/services/session"
	"sigil/internal/store"
)

const testPassphrase = "CorrectHorse1!battery"

func testConfig(t *testing.T, serviceURL string) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Home = filepath.Join(t.TempDir(), "home")
	cfg.ServiceURL = serviceURL
	cfg.Logging.Writer = &bytes.Buffer{}
	return cfg
}

func TestNew_Offline(t *testing.T) {
	a, err := New(testConfig(t, ""))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	assert.DirExists(t, a.Config.Home)
	assert.Nil(t, a.Remote)
	assert.Equal(t, actionsvc.Direct, a.DefaultMode())

	id, err := a.Identity.Create(testPassphrase)
	require.NoError(t, err)
	assert.Equal(t, session.Unlocked, a.Session.State())

	act, err := a.Actions.SignPayload([]byte("vote:rumor-42:up:0.7000"), actionsvc.Direct)
	require.NoError(t, err)
	ok, err := a.Signing.VerifyAction(id.PublicKey, act)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = a.Identity.Register(t.Context(), "alice", "genesis", testPassphrase)
	require.Error(t, err)
	_, err = a.Actions.Vote(t.Context(), domain.Vote{RumorID: "rumor-42", Up: true}, a.DefaultMode())
	require.ErrorIs(t, err, actionsvc.ErrNotLoggedIn)
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t, "not a url")
	_, err := New(cfg)
	require.Error(t, err)
}

func TestClose_LocksSession(t *testing.T) {
	a, err := New(testConfig(t, ""))
	require.NoError(t, err)
	_, err = a.Identity.Create(testPassphrase)
	require.NoError(t, err)

	require.NoError(t, a.Close())
	assert.Equal(t, session.Locked, a.Session.State())
}

func TestDefaultMode(t *testing.T) {
	cfg := testConfig(t, "")
	cfg.Ephemeral, cfg.BindEphemeral = true, true
	a, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	assert.Equal(t, actionsvc.Bound, a.DefaultMode())
}

func TestNew_OnlineRegisterAndVote(t *testing.T) {
	db, err := store.OpenSQLite(filepath.Join(t.TempDir(), "sigild.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	scfg := server.DefaultConfig()
	scfg.TokenSecret = "0123456789abcdef0123456789abcdef"
	scfg.TokenTTL = time.Hour
	srv := httptest.NewServer(server.New(scfg, db, nil).Handler())
	t.Cleanup(srv.Close)

	a, err := New(testConfig(t, srv.URL+"/"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	require.NotNil(t, a.Remote)

	_, err = a.Identity.Create(testPassphrase)
	require.NoError(t, err)
	_, err = a.Identity.Register(t.Context(), "alice", scfg.GenesisCode, testPassphrase)
	require.NoError(t, err)

	resp, err := a.Actions.Vote(t.Context(),
		domain.Vote{RumorID: "rumor-42", Up: true, Prediction: 0.7}, actionsvc.Bound)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ActionID)
}
