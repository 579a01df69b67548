package remote_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sigil/internal/domain"
	"sigil/internal/remote"
)

func TestHTTP_Register(t *testing.T) {
	env := domain.Envelope{Salt: []byte{1}, IV: []byte{2}, CipherText: []byte{3}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/join", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var raw map[string]json.RawMessage
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&raw)) {
			return
		}
		for _, k := range []string{"username", "authKey", "publicKey", "encryptedPrivKeyEnvelope", "inviteCode"} {
			assert.Contains(t, raw, k)
		}
		var envOut map[string]json.RawMessage
		assert.NoError(t, json.Unmarshal(raw["encryptedPrivKeyEnvelope"], &envOut))
		assert.Contains(t, envOut, "cipherText")

		_ = json.NewEncoder(w).Encode(domain.RegisterResponse{UserID: "u-1", Token: "tok"})
	}))
	defer srv.Close()

	c := remote.NewHTTP(srv.URL+"/", time.Second)
	resp, err := c.Register(context.Background(), domain.RegisterRequest{
		Username: "alice", AuthKey: []byte("k"), PublicKey: []byte("p"), Envelope: env, InviteCode: "genesis",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.UserID("u-1"), resp.UserID)
	assert.Equal(t, "tok", resp.Token)
}

func TestHTTP_Login(t *testing.T) {
	env := domain.Envelope{Salt: []byte{1}, IV: []byte{2}, CipherText: []byte{3}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/login", r.URL.Path)
		_ = json.NewEncoder(w).Encode(domain.LoginResponse{
			UserID: "u-1", Token: "tok", PublicKey: []byte("p"), Envelope: env,
		})
	}))
	defer srv.Close()

	resp, err := remote.NewHTTP(srv.URL, 0).Login(context.Background(), domain.LoginRequest{Username: "alice"})
	require.NoError(t, err)
	assert.Equal(t, env, resp.Envelope)
}

func TestHTTP_SubmitActionSendsBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/vote", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(domain.ActionResponse{ActionID: "a-1"})
	}))
	defer srv.Close()

	resp, err := remote.NewHTTP(srv.URL, 0).SubmitAction(context.Background(), "tok", domain.ActionRequest{})
	require.NoError(t, err)
	assert.Equal(t, "a-1", resp.ActionID)
}

func TestHTTP_PostRumorSendsBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/rumor", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		var req domain.RumorRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hello", req.Rumor.Content)
		_ = json.NewEncoder(w).Encode(domain.RumorResponse{RumorID: "r-1"})
	}))
	defer srv.Close()

	resp, err := remote.NewHTTP(srv.URL, 0).PostRumor(context.Background(), "tok", domain.RumorRequest{
		Rumor: domain.Rumor{Content: "hello"},
	})
	require.NoError(t, err)
	assert.Equal(t, "r-1", resp.RumorID)
}

func TestHTTP_Invite(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/generate-invite/u-1", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]string{"inviteCode": "u-1"})
	}))
	defer srv.Close()

	inv, err := remote.NewHTTP(srv.URL, 0).Invite(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, "u-1", inv.InviteCode)
}

func TestHTTP_Rekey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/rekey", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	err := remote.NewHTTP(srv.URL, 0).Rekey(context.Background(), "tok", domain.RekeyRequest{})
	require.NoError(t, err)
}

func TestHTTP_Tally(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/rumors/rumor-42/tally", r.URL.Path)
		_, _ = w.Write([]byte(`{"rumorId":"rumor-42","up":3,"down":1}`))
	}))
	defer srv.Close()

	got, err := remote.NewHTTP(srv.URL, 0).Tally(context.Background(), "rumor-42")
	require.NoError(t, err)
	assert.Equal(t, remote.Tally{RumorID: "rumor-42", Up: 3, Down: 1}, got)
}

func TestHTTP_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"username already registered"}`))
	}))
	defer srv.Close()

	_, err := remote.NewHTTP(srv.URL, 0).Register(context.Background(), domain.RegisterRequest{})
	require.Error(t, err)

	var se *remote.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusConflict, se.Status)
	assert.Equal(t, "/api/join", se.Path)
	assert.Equal(t, "username already registered", se.Message)
	assert.Contains(t, err.Error(), "409")
}

func TestHTTP_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := remote.NewHTTP(srv.URL, 0).Login(ctx, domain.LoginRequest{})
	require.ErrorIs(t, err, context.Canceled)
}
