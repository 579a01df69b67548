package server

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"

	"sigil/internal/domain"
)

// argon2id parameters for stored auth-key hashes.
const (
	argonTime    = 2
	argonMemory  = 64 * 1024
	argonThreads = 1
	argonKeyLen  = 32
	argonSaltLen = 16

	// authKeyLen is the length of the PBKDF2 auth key clients derive.
	authKeyLen = 32
)

var errInvalidToken = errors.New("invalid or expired token")

func hashAuthKey(authKey, salt []byte) []byte {
	return argon2.IDKey(authKey, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

func newAuthHash(authKey []byte) (salt, hash []byte, err error) {
	salt = make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrEntropyUnavailable, err)
	}
	return salt, hashAuthKey(authKey, salt), nil
}

func checkAuthKey(authKey, salt, hash []byte) bool {
	return subtle.ConstantTimeCompare(hashAuthKey(authKey, salt), hash) == 1
}

// dummySalt lets a login for an unknown user cost the same as a real one.
var dummySalt = make([]byte, argonSaltLen)

// tokenIssuer issues and checks HS256 bearer tokens whose subject is a user id.
type tokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

const tokenIssuerName = "sigild"

func (t *tokenIssuer) issue(id domain.UserID) (string, error) {
	now := t.now()
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuerName,
		Subject:   id.String(),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

func (t *tokenIssuer) parse(raw string) (domain.UserID, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims,
		func(*jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuerName),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || claims.Subject == "" {
		return "", errInvalidToken
	}
	return domain.UserID(claims.Subject), nil
}
