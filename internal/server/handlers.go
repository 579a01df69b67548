package server

import (
	"errors"
	"math"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"sigil/internal/crypto"
	"sigil/internal/domain"
	"sigil/internal/store"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,32}$`)

const maxRumorRunes = 2000

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.metrics.registrations.WithLabelValues(resultRejected).Inc()
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateRegistration(req); msg != "" {
		s.metrics.registrations.WithLabelValues(resultRejected).Inc()
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	ctx := r.Context()
	inviter, ok, err := s.checkInvite(r, req.InviteCode)
	if err != nil {
		s.internalError(w, s.metrics.registrations.WithLabelValues(resultError), "check invite", err)
		return
	}
	if !ok {
		s.metrics.registrations.WithLabelValues(resultRejected).Inc()
		writeError(w, http.StatusForbidden, "invalid invite code")
		return
	}

	salt, hash, err := newAuthHash(req.AuthKey)
	if err != nil {
		s.internalError(w, s.metrics.registrations.WithLabelValues(resultError), "hash auth key", err)
		return
	}
	user := store.UserRecord{
		ID:        domain.UserID(uuid.NewString()),
		Username:  req.Username,
		AuthSalt:  salt,
		AuthHash:  hash,
		PublicKey: req.PublicKey,
		Envelope:  req.Envelope,
		InvitedBy: inviter,
		CreatedAt: s.now(),
	}
	if err := s.db.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrUsernameTaken) {
			s.metrics.registrations.WithLabelValues(resultRejected).Inc()
			writeError(w, http.StatusConflict, "username already registered")
			return
		}
		s.internalError(w, s.metrics.registrations.WithLabelValues(resultError), "create user", err)
		return
	}

	token, err := s.tokens.issue(user.ID)
	if err != nil {
		s.internalError(w, s.metrics.registrations.WithLabelValues(resultError), "issue token", err)
		return
	}
	s.metrics.registrations.WithLabelValues(resultOK).Inc()
	s.logger.Info("identity registered",
		"user_id", user.ID.String(),
		"username", user.Username.String(),
		"fingerprint", crypto.ShortFingerprint(user.PublicKey),
	)
	writeJSON(w, http.StatusCreated, domain.RegisterResponse{UserID: user.ID, Token: token})
}

// validateRegistration checks the shape of a join request. The envelope is
// opaque to the service, but its field sizes are fixed.
func validateRegistration(req domain.RegisterRequest) string {
	switch {
	case !usernamePattern.MatchString(req.Username.String()):
		return "username must be 3-32 letters, digits, '.', '_' or '-'"
	case len(req.AuthKey) != authKeyLen:
		return "authKey must be 32 bytes"
	}
	if msg := validateEnvelope(req.Envelope); msg != "" {
		return msg
	}
	if _, err := crypto.ParsePublicKey(req.PublicKey); err != nil {
		return "publicKey must be a 2048-bit RSA SPKI key"
	}
	return ""
}

func validateEnvelope(env domain.Envelope) string {
	switch {
	case len(env.Salt) != crypto.SaltBytes,
		len(env.IV) != crypto.IVBytes,
		len(env.CipherText) < crypto.TagBytes:
		return "malformed encryptedPrivKeyEnvelope"
	case env.KDF != (domain.KDFParams{}) && crypto.CheckKDFParams(env.KDF) != nil:
		return "envelope kdf params out of range"
	}
	return ""
}

// checkInvite accepts the genesis code while there are no users, and an
// existing user id otherwise. It returns the inviter's id.
func (s *Server) checkInvite(r *http.Request, code string) (domain.UserID, bool, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", false, nil
	}
	n, err := s.db.CountUsers(r.Context())
	if err != nil {
		return "", false, err
	}
	if n == 0 {
		return "", code == s.cfg.GenesisCode, nil
	}
	inviter, ok, err := s.db.UserByID(r.Context(), domain.UserID(code))
	if err != nil || !ok {
		return "", false, err
	}
	return inviter.ID, true, nil
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.metrics.logins.WithLabelValues(resultRejected).Inc()
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !s.limiter.allow(req.Username.String(), s.now()) {
		s.metrics.logins.WithLabelValues(resultRejected).Inc()
		w.Header().Set("Retry-After", "5")
		writeError(w, http.StatusTooManyRequests, "too many login attempts")
		return
	}

	user, ok, err := s.db.UserByName(r.Context(), req.Username)
	if err != nil {
		s.internalError(w, s.metrics.logins.WithLabelValues(resultError), "load user", err)
		return
	}
	if !ok {
		_ = hashAuthKey(req.AuthKey, dummySalt)
	}
	if !ok || !checkAuthKey(req.AuthKey, user.AuthSalt, user.AuthHash) {
		s.metrics.logins.WithLabelValues(resultRejected).Inc()
		writeError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	token, err := s.tokens.issue(user.ID)
	if err != nil {
		s.internalError(w, s.metrics.logins.WithLabelValues(resultError), "issue token", err)
		return
	}
	s.metrics.logins.WithLabelValues(resultOK).Inc()
	s.logger.Info("login", "user_id", user.ID.String())
	writeJSON(w, http.StatusOK, domain.LoginResponse{
		UserID:    user.ID,
		Token:     token,
		PublicKey: user.PublicKey,
		Envelope:  user.Envelope,
	})
}

// handleRekey replaces the caller's auth key and envelope. The old auth key
// must still match, so a leaked bearer token alone cannot take an account.
func (s *Server) handleRekey(w http.ResponseWriter, r *http.Request) {
	userID, err := s.tokens.parse(bearerToken(r))
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	var req domain.RekeyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.AuthKey) != authKeyLen {
		writeError(w, http.StatusBadRequest, "authKey must be 32 bytes")
		return
	}
	if msg := validateEnvelope(req.Envelope); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	user, ok, err := s.db.UserByID(r.Context(), userID)
	if err != nil {
		s.internalError(w, nil, "load user", err)
		return
	}
	if !ok || !checkAuthKey(req.OldAuthKey, user.AuthSalt, user.AuthHash) {
		writeError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	salt, hash, err := newAuthHash(req.AuthKey)
	if err != nil {
		s.internalError(w, nil, "hash auth key", err)
		return
	}
	if err := s.db.UpdateCredentials(r.Context(), user.ID, salt, hash, req.Envelope); err != nil {
		s.internalError(w, nil, "update credentials", err)
		return
	}
	s.logger.Info("credentials rotated", "user_id", user.ID.String())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	userID, err := s.tokens.parse(bearerToken(r))
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	var req domain.ActionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID != "" && req.UserID != userID {
		writeError(w, http.StatusForbidden, "userId does not match token")
		return
	}
	rumorID := strings.TrimSpace(req.Vote.RumorID)
	switch {
	case rumorID == "":
		writeError(w, http.StatusBadRequest, "rumorId is required")
		return
	case math.IsNaN(req.Vote.Prediction) || req.Vote.Prediction < 0 || req.Vote.Prediction > 1:
		writeError(w, http.StatusBadRequest, "prediction must be between 0 and 1")
		return
	case string(req.Action.Payload) != string(req.Vote.Payload()):
		writeError(w, http.StatusBadRequest, "signed payload does not match vote")
		return
	}

	user, mode, ok := s.verifySigned(w, r, userID, req.Action)
	if !ok {
		return
	}

	rec := store.ActionRecord{
		ID:              uuid.NewString(),
		UserID:          user.ID,
		RumorID:         rumorID,
		Up:              req.Vote.Up,
		Prediction:      req.Vote.Prediction,
		Payload:         req.Action.Payload,
		Signature:       req.Action.Signature,
		SignerPublicKey: req.Action.SignerPublicKey,
		CreatedAt:       s.now(),
	}
	if err := s.db.InsertAction(r.Context(), rec); err != nil {
		if errors.Is(err, store.ErrDuplicateAction) {
			writeError(w, http.StatusConflict, "already voted on this rumor")
			return
		}
		s.internalError(w, nil, "insert action", err)
		return
	}
	s.logger.Info("action accepted", "action_id", rec.ID, "user_id", user.ID.String(), "mode", mode)
	writeJSON(w, http.StatusCreated, domain.ActionResponse{ActionID: rec.ID})
}

// verifySigned loads the caller and checks action against their registered
// key. It writes the error response itself and reports false on failure.
func (s *Server) verifySigned(
	w http.ResponseWriter,
	r *http.Request,
	userID domain.UserID,
	action domain.SignedAction,
) (store.UserRecord, string, bool) {
	user, ok, err := s.db.UserByID(r.Context(), userID)
	if err != nil {
		s.internalError(w, nil, "load user", err)
		return store.UserRecord{}, "", false
	}
	if !ok {
		writeError(w, http.StatusUnauthorized, "unknown user")
		return store.UserRecord{}, "", false
	}

	mode := "direct"
	if len(action.SignerPublicKey) > 0 {
		mode = "ephemeral"
		if len(action.Binding) > 0 {
			mode = "bound"
		}
	}
	valid, err := s.verifier.VerifyAction(user.PublicKey, action)
	if err != nil && !errors.Is(err, domain.ErrMalformedInput) {
		s.internalError(w, s.metrics.verifications.WithLabelValues(resultError, mode), "verify action", err)
		return store.UserRecord{}, "", false
	}
	if !valid {
		s.metrics.verifications.WithLabelValues(resultRejected, mode).Inc()
		writeError(w, http.StatusForbidden, "signature verification failed")
		return store.UserRecord{}, "", false
	}
	s.metrics.verifications.WithLabelValues(resultOK, mode).Inc()
	return user, mode, true
}

func (s *Server) handleRumor(w http.ResponseWriter, r *http.Request) {
	userID, err := s.tokens.parse(bearerToken(r))
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	var req domain.RumorRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID != "" && req.UserID != userID {
		writeError(w, http.StatusForbidden, "userId does not match token")
		return
	}
	content := strings.TrimSpace(req.Rumor.Content)
	switch {
	case content == "":
		writeError(w, http.StatusBadRequest, "content is required")
		return
	case utf8.RuneCountInString(content) > maxRumorRunes:
		writeError(w, http.StatusBadRequest, "content is too long")
		return
	case string(req.Action.Payload) != string(req.Rumor.Payload()):
		writeError(w, http.StatusBadRequest, "signed payload does not match rumor")
		return
	}

	user, mode, ok := s.verifySigned(w, r, userID, req.Action)
	if !ok {
		return
	}

	rec := store.RumorRecord{
		ID:              uuid.NewString(),
		AuthorID:        user.ID,
		Content:         content,
		ContentHash:     strings.TrimPrefix(string(req.Action.Payload), "rumor:"),
		Payload:         req.Action.Payload,
		Signature:       req.Action.Signature,
		SignerPublicKey: req.Action.SignerPublicKey,
		CreatedAt:       s.now(),
	}
	if err := s.db.InsertRumor(r.Context(), rec); err != nil {
		if errors.Is(err, store.ErrDuplicateRumor) {
			writeError(w, http.StatusConflict, "rumor already posted")
			return
		}
		s.internalError(w, nil, "insert rumor", err)
		return
	}
	s.logger.Info("rumor posted", "rumor_id", rec.ID, "user_id", user.ID.String(), "mode", mode)
	writeJSON(w, http.StatusCreated, domain.RumorResponse{RumorID: rec.ID})
}

// handleInvite returns the invite code for a registered user. Invite codes
// are user ids, which checkInvite accepts once the genesis user exists.
func (s *Server) handleInvite(w http.ResponseWriter, r *http.Request) {
	user, ok, err := s.db.UserByID(r.Context(), domain.UserID(r.PathValue("id")))
	if err != nil {
		s.internalError(w, nil, "load user", err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"inviteCode": user.ID.String()})
}

func (s *Server) handleTally(w http.ResponseWriter, r *http.Request) {
	t, err := s.db.TallyRumor(r.Context(), r.PathValue("id"))
	if err != nil {
		s.internalError(w, nil, "tally", err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type counter interface{ Inc() }

func (s *Server) internalError(w http.ResponseWriter, c counter, op string, err error) {
	if c != nil {
		c.Inc()
	}
	s.logger.Error("request failed", "op", op, "err", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return strings.TrimSpace(h[len(prefix):])
	}
	return ""
}
