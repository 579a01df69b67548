package identity_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sigil/internal/crypto"
	"sigil/internal/domain"
	"sigil/internal/services/identity"
	"sigil/internal/services/session"
	"sigil/internal/services/signing"
	"sigil/internal/store"
)

const (
	serviceURL = "http://sigil.test"
	pass       = "Correct-Horse-42!"
	newPass    = "Battery-Staple-7?"
)

// fakeService is an in-memory identity service.
type fakeService struct {
	registered map[domain.Username]domain.RegisterRequest
	rekeys     []domain.RekeyRequest
	loginResp  *domain.LoginResponse
}

func newFakeService() *fakeService {
	return &fakeService{registered: make(map[domain.Username]domain.RegisterRequest)}
}

func (f *fakeService) Register(_ context.Context, req domain.RegisterRequest) (domain.RegisterResponse, error) {
	if _, ok := f.registered[req.Username]; ok {
		return domain.RegisterResponse{}, errors.New("taken")
	}
	// The caller wipes its auth key once the call returns.
	req.AuthKey = append([]byte(nil), req.AuthKey...)
	f.registered[req.Username] = req
	return domain.RegisterResponse{UserID: domain.UserID("id-" + req.Username.String()), Token: "tok"}, nil
}

func (f *fakeService) Login(_ context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	if f.loginResp != nil {
		return *f.loginResp, nil
	}
	reg, ok := f.registered[req.Username]
	if !ok || string(reg.AuthKey) != string(req.AuthKey) {
		return domain.LoginResponse{}, errors.New("unauthorized")
	}
	return domain.LoginResponse{
		UserID:    domain.UserID("id-" + req.Username.String()),
		Token:     "tok2",
		PublicKey: reg.PublicKey,
		Envelope:  reg.Envelope,
	}, nil
}

func (f *fakeService) Rekey(_ context.Context, _ string, req domain.RekeyRequest) error {
	req.OldAuthKey = append([]byte(nil), req.OldAuthKey...)
	req.AuthKey = append([]byte(nil), req.AuthKey...)
	f.rekeys = append(f.rekeys, req)
	return nil
}

type fixture struct {
	svc      *identity.Service
	sess     *session.Session
	accounts *store.AccountFileStore
}

func newFixture(t *testing.T, client domain.IdentityClient) fixture {
	t.Helper()
	home := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sess := session.New(logger)
	t.Cleanup(sess.Lock)
	accounts := store.NewAccountFileStore(home)
	svc := identity.New(store.NewIdentityFileStore(home), accounts, client, sess, serviceURL, logger)
	return fixture{svc: svc, sess: sess, accounts: accounts}
}

func assertSigns(t *testing.T, sess *session.Session, pub []byte) {
	t.Helper()
	payload := []byte("vote:rumor-42")
	sig, err := sess.Sign(payload)
	require.NoError(t, err)
	ok, err := signing.New().Verify(pub, payload, sig)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCreate(t *testing.T) {
	f := newFixture(t, nil)

	id, err := f.svc.Create(pass)
	require.NoError(t, err)
	assert.NotEmpty(t, id.Fingerprint)
	assert.Equal(t, session.Unlocked, f.sess.State())
	assertSigns(t, f.sess, id.PublicKey)

	stored, err := f.svc.Identity()
	require.NoError(t, err)
	assert.Equal(t, id.PublicKey, stored.PublicKey)
	assert.Equal(t, crypto.DefaultKDFParams(), stored.Envelope.KDF)

	_, err = f.svc.Create(pass)
	require.ErrorIs(t, err, identity.ErrIdentityExists)
}

func TestCreate_WeakPassphrase(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.svc.Create("password")
	require.ErrorIs(t, err, domain.ErrWeakPassphrase)

	_, err = f.svc.Identity()
	require.ErrorIs(t, err, domain.ErrNoIdentity)
}

func TestUnlock(t *testing.T) {
	f := newFixture(t, nil)
	id, err := f.svc.Create(pass)
	require.NoError(t, err)
	f.svc.Lock()

	_, err = f.sess.Sign([]byte("x"))
	require.ErrorIs(t, err, domain.ErrLocked)

	_, err = f.svc.Unlock("Wrong-Horse-42!")
	require.ErrorIs(t, err, domain.ErrDecryptionFailed)
	assert.Equal(t, session.Locked, f.sess.State())

	_, err = f.svc.Unlock(pass)
	require.NoError(t, err)
	assertSigns(t, f.sess, id.PublicKey)
}

func TestUnlock_NoIdentity(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.svc.Unlock(pass)
	require.ErrorIs(t, err, domain.ErrNoIdentity)
}

func TestRegisterThenLoginOnAnotherDevice(t *testing.T) {
	ctx := context.Background()
	remote := newFakeService()

	laptop := newFixture(t, remote)
	created, err := laptop.svc.Create(pass)
	require.NoError(t, err)

	reg, err := laptop.svc.Register(ctx, "alice", "genesis", pass)
	require.NoError(t, err)
	assert.Equal(t, domain.UserID("id-alice"), reg.UserID)
	assert.Equal(t, domain.Username("alice"), reg.Username)

	sent := remote.registered["alice"]
	wantAuth, err := crypto.AuthKey(pass, "alice")
	require.NoError(t, err)
	assert.Equal(t, wantAuth, sent.AuthKey)
	assert.Equal(t, created.PublicKey, sent.PublicKey)
	assert.Equal(t, created.Envelope, sent.Envelope)
	assert.Equal(t, "genesis", sent.InviteCode)

	profile, ok, err := laptop.accounts.LoadAccountProfile(serviceURL, "alice")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "tok", profile.Token)

	phone := newFixture(t, remote)
	got, err := phone.svc.Login(ctx, "alice", pass)
	require.NoError(t, err)
	assert.Equal(t, created.Fingerprint, got.Fingerprint)
	assertSigns(t, phone.sess, created.PublicKey)

	cached, err := phone.svc.Identity()
	require.NoError(t, err)
	assert.Equal(t, domain.Username("alice"), cached.Username)
}

func TestRegister_WrongPassphrase(t *testing.T) {
	remote := newFakeService()
	f := newFixture(t, remote)
	_, err := f.svc.Create(pass)
	require.NoError(t, err)

	_, err = f.svc.Register(context.Background(), "alice", "genesis", "Wrong-Horse-42!")
	require.ErrorIs(t, err, domain.ErrDecryptionFailed)
	assert.Empty(t, remote.registered)
}

func TestLogin_RejectsSubstitutedPublicKey(t *testing.T) {
	ctx := context.Background()
	remote := newFakeService()

	owner := newFixture(t, remote)
	_, err := owner.svc.Create(pass)
	require.NoError(t, err)
	_, err = owner.svc.Register(ctx, "alice", "genesis", pass)
	require.NoError(t, err)

	other, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	otherPub, err := crypto.MarshalPublicKey(other.Public)
	require.NoError(t, err)

	reg := remote.registered["alice"]
	remote.loginResp = &domain.LoginResponse{UserID: "id-alice", Token: "t", PublicKey: otherPub, Envelope: reg.Envelope}

	f := newFixture(t, remote)
	_, err = f.svc.Login(ctx, "alice", pass)
	require.ErrorIs(t, err, domain.ErrMalformedInput)
	assert.Equal(t, session.Locked, f.sess.State())
}

func TestChangePassphrase(t *testing.T) {
	ctx := context.Background()
	remote := newFakeService()
	f := newFixture(t, remote)

	id, err := f.svc.Create(pass)
	require.NoError(t, err)
	_, err = f.svc.Register(ctx, "alice", "genesis", pass)
	require.NoError(t, err)

	require.ErrorIs(t, f.svc.ChangePassphrase(ctx, pass, "weak"), domain.ErrWeakPassphrase)
	require.NoError(t, f.svc.ChangePassphrase(ctx, pass, newPass))
	assert.Equal(t, session.Unlocked, f.sess.State())
	assertSigns(t, f.sess, id.PublicKey)

	require.Len(t, remote.rekeys, 1)
	oldKey, err := crypto.AuthKey(pass, "alice")
	require.NoError(t, err)
	newKey, err := crypto.AuthKey(newPass, "alice")
	require.NoError(t, err)
	assert.Equal(t, oldKey, remote.rekeys[0].OldAuthKey)
	assert.Equal(t, newKey, remote.rekeys[0].AuthKey)

	stored, err := f.svc.Identity()
	require.NoError(t, err)
	assert.Equal(t, remote.rekeys[0].Envelope, stored.Envelope)
	assert.NotEqual(t, id.Envelope.Salt, stored.Envelope.Salt)

	f.svc.Lock()
	_, err = f.svc.Unlock(pass)
	require.ErrorIs(t, err, domain.ErrDecryptionFailed)
	_, err = f.svc.Unlock(newPass)
	require.NoError(t, err)
}

func TestChangePassphrase_WrongOld(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.svc.Create(pass)
	require.NoError(t, err)

	err = f.svc.ChangePassphrase(context.Background(), "Wrong-Horse-42!", newPass)
	require.ErrorIs(t, err, domain.ErrDecryptionFailed)
	assert.Equal(t, session.Locked, f.sess.State())

	_, err = f.svc.Unlock(pass)
	require.NoError(t, err, "identity is untouched by a failed change")
}

func TestFingerprint(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.svc.Fingerprint()
	require.ErrorIs(t, err, domain.ErrNoIdentity)

	id, err := f.svc.Create(pass)
	require.NoError(t, err)

	fp, err := f.svc.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, id.Fingerprint, fp)

	f.svc.Lock()
	fp, err = f.svc.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, id.Fingerprint, fp)
}

func TestLogin_KeepsDifferentLocalIdentity(t *testing.T) {
	ctx := context.Background()
	remote := newFakeService()

	owner := newFixture(t, remote)
	_, err := owner.svc.Create(pass)
	require.NoError(t, err)
	_, err = owner.svc.Register(ctx, "alice", "genesis", pass)
	require.NoError(t, err)

	other := newFixture(t, remote)
	local, err := other.svc.Create(pass)
	require.NoError(t, err)
	other.svc.Lock()

	_, err = other.svc.Login(ctx, "alice", pass)
	require.ErrorIs(t, err, identity.ErrIdentityExists)
	assert.Equal(t, session.Locked, other.sess.State())

	stored, err := other.svc.Identity()
	require.NoError(t, err)
	assert.Equal(t, local.PublicKey, stored.PublicKey)
	assert.Equal(t, local.Envelope, stored.Envelope)
	_, ok, err := other.accounts.LoadAccountProfile(serviceURL, "alice")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = other.svc.Unlock(pass)
	require.NoError(t, err, "the local key is still usable")
}

func TestLogin_SameKeyOverwritesLocalCopy(t *testing.T) {
	ctx := context.Background()
	remote := newFakeService()

	f := newFixture(t, remote)
	created, err := f.svc.Create(pass)
	require.NoError(t, err)
	_, err = f.svc.Register(ctx, "alice", "genesis", pass)
	require.NoError(t, err)

	got, err := f.svc.Login(ctx, "alice", pass)
	require.NoError(t, err)
	assert.Equal(t, created.Fingerprint, got.Fingerprint)
	assertSigns(t, f.sess, created.PublicKey)
}

func TestExportImport(t *testing.T) {
	src := newFixture(t, nil)
	created, err := src.svc.Create(pass)
	require.NoError(t, err)

	text, err := src.svc.Export()
	require.NoError(t, err)
	assert.Contains(t, text, `"cipherText"`)

	dst := newFixture(t, nil)
	_, err = dst.svc.Import(text, "Wrong-Horse-42!")
	require.ErrorIs(t, err, domain.ErrDecryptionFailed)
	_, err = dst.svc.Identity()
	require.ErrorIs(t, err, domain.ErrNoIdentity)

	_, err = dst.svc.Import("{not json", pass)
	require.ErrorIs(t, err, domain.ErrMalformedInput)

	got, err := dst.svc.Import(text, pass)
	require.NoError(t, err)
	assert.Equal(t, created.Fingerprint, got.Fingerprint)
	assertSigns(t, dst.sess, created.PublicKey)

	// Importing the same key again is allowed; a different key is not.
	_, err = dst.svc.Import(text, pass)
	require.NoError(t, err)

	other := newFixture(t, nil)
	_, err = other.svc.Create(pass)
	require.NoError(t, err)
	otherText, err := other.svc.Export()
	require.NoError(t, err)
	_, err = dst.svc.Import(otherText, pass)
	require.ErrorIs(t, err, identity.ErrIdentityExists)
}

func TestExport_NoIdentity(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.svc.Export()
	require.ErrorIs(t, err, domain.ErrNoIdentity)
}
