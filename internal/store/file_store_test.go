package store_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"sigil/internal/domain"
	"sigil/internal/store"
)

func sampleIdentity() domain.Identity {
	return domain.Identity{
		UserID:      "u-1",
		Username:    "alice",
		Fingerprint: "zQmTest",
		PublicKey:   []byte{0x30, 0x82, 0x01},
		Envelope: domain.Envelope{
			Salt:       make([]byte, 16),
			IV:         make([]byte, 12),
			CipherText: []byte{1, 2, 3, 4},
			KDF:        domain.KDFParams{Iterations: 210000, Hash: "SHA-256"},
		},
	}
}

func TestIdentity_SaveLoad_OK(t *testing.T) {
	home := t.TempDir()
	var ids domain.IdentityStore = store.NewIdentityFileStore(home)

	id := sampleIdentity()
	if err := ids.SaveIdentity(id); err != nil {
		t.Fatalf("save identity: %v", err)
	}

	got, err := ids.LoadIdentity()
	if err != nil {
		t.Fatalf("load identity: %v", err)
	}
	if got.Username != id.Username || string(got.PublicKey) != string(id.PublicKey) {
		t.Fatalf("mismatch after load: %+v", got)
	}
	if string(got.Envelope.CipherText) != string(id.Envelope.CipherText) || got.Envelope.KDF != id.Envelope.KDF {
		t.Fatalf("envelope mismatch after load: %+v", got.Envelope)
	}
}

func TestIdentity_FileIsOwnerOnly(t *testing.T) {
	home := t.TempDir()
	if err := store.NewIdentityFileStore(home).SaveIdentity(sampleIdentity()); err != nil {
		t.Fatalf("save identity: %v", err)
	}

	info, err := os.Stat(filepath.Join(home, "identity.json"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("identity file mode = %o, want 600", perm)
	}

	entries, err := os.ReadDir(home)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestIdentity_Missing(t *testing.T) {
	_, err := store.NewIdentityFileStore(t.TempDir()).LoadIdentity()
	if !errors.Is(err, domain.ErrNoIdentity) {
		t.Fatalf("want ErrNoIdentity, got %v", err)
	}
}

func TestIdentity_Corrupt(t *testing.T) {
	home := t.TempDir()
	if err := os.WriteFile(filepath.Join(home, "identity.json"), []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := store.NewIdentityFileStore(home).LoadIdentity(); err == nil {
		t.Fatal("expected error for corrupt identity file")
	}
}

func TestAccount_SaveLoad(t *testing.T) {
	home := t.TempDir()
	var accounts domain.AccountStore = store.NewAccountFileStore(home)

	p := domain.AccountProfile{
		ServiceURL: "http://localhost:8080/",
		Username:   "alice",
		UserID:     "u-1",
		Token:      "tok",
	}
	if err := accounts.SaveAccountProfile(p); err != nil {
		t.Fatalf("save profile: %v", err)
	}
	if err := accounts.SaveAccountProfile(domain.AccountProfile{
		ServiceURL: "http://other", Username: "alice", UserID: "u-9",
	}); err != nil {
		t.Fatalf("save second profile: %v", err)
	}

	got, ok, err := accounts.LoadAccountProfile("http://localhost:8080", "alice")
	if err != nil || !ok {
		t.Fatalf("load profile: ok=%v err=%v", ok, err)
	}
	if got.UserID != "u-1" || got.Token != "tok" {
		t.Fatalf("unexpected profile: %+v", got)
	}

	if _, ok, err := accounts.LoadAccountProfile("http://localhost:8080", "bob"); err != nil || ok {
		t.Fatalf("expected no profile for bob: ok=%v err=%v", ok, err)
	}
}
