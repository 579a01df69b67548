package app

import (
	"log/slog"
	"strings"

	"sigil/internal/domain"
	"sigil/internal/remote"
	actionsvc "sigil/internal/services/action"
	identitysvc "sigil/internal/services/identity"
	"sigil/internal/services/session"
	"sigil/internal/services/signing"
	"sigil/internal/store"
)

// Wire bundles all stores, services, and clients for the CLI.
type Wire struct {
	Identities domain.IdentityStore
	Accounts   domain.AccountStore
	Session    *session.Session
	Signing    *signing.Service
	Identity   *identitysvc.Service
	Actions    *actionsvc.Service

	// Remote is nil when no service URL is configured.
	Remote *remote.HTTP
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg *Config, logger *slog.Logger) *Wire {
	if logger == nil {
		logger = slog.Default()
	}

	// File-based stores
	identityStore := store.NewIdentityFileStore(cfg.Home)
	accountStore := store.NewAccountFileStore(cfg.Home)

	// The interfaces stay nil when offline so services can tell.
	var (
		rc          *remote.HTTP
		identityAPI domain.IdentityClient
		actionAPI   domain.ActionClient
	)
	serviceURL := strings.TrimRight(cfg.ServiceURL, "/")
	if serviceURL != "" {
		rc = remote.NewHTTP(serviceURL, cfg.HTTPTimeout)
		identityAPI, actionAPI = rc, rc
	}

	// High-level services
	sess := session.New(logger.With("component", "session"))
	ids := identitysvc.New(identityStore, accountStore, identityAPI, sess, serviceURL,
		logger.With("component", "identity"))
	actions := actionsvc.New(sess, identityStore, accountStore, actionAPI, serviceURL,
		logger.With("component", "action"))

	return &Wire{
		Identities: identityStore,
		Accounts:   accountStore,
		Session:    sess,
		Signing:    signing.New(),
		Identity:   ids,
		Actions:    actions,
		Remote:     rc,
	}
}
