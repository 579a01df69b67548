package action

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"sigil/internal/domain"
	"sigil/internal/services/signing"
)

// Mode selects how an action is signed.
type Mode int

const (
	// Direct signs with the identity key.
	Direct Mode = iota
	// Ephemeral signs with a fresh one-time key.
	Ephemeral
	// Bound signs with a fresh one-time key that the identity key vouches for.
	Bound
)

// String returns the name used for the mode on the command line.
func (m Mode) String() string {
	switch m {
	case Ephemeral:
		return "ephemeral"
	case Bound:
		return "bound"
	default:
		return "direct"
	}
}

// ModeFor maps the ephemeral and bind switches to a Mode. bind without
// ephemeral is ignored.
func ModeFor(ephemeral, bind bool) Mode {
	switch {
	case ephemeral && bind:
		return Bound
	case ephemeral:
		return Ephemeral
	default:
		return Direct
	}
}

var (
	// ErrNotLoggedIn is returned when no service token is stored for the identity.
	ErrNotLoggedIn = errors.New("not logged in to the action service; run login first")
	// ErrInvalidVote is returned for a vote with no rumor or an out-of-range prediction.
	ErrInvalidVote = errors.New("invalid vote")
	// ErrInvalidRumor is returned for a rumor with no content.
	ErrInvalidRumor = errors.New("invalid rumor")
)

// Service signs actions with the identity session or an ephemeral key and
// submits them.
type Service struct {
	signer     domain.Signer
	ephemeral  *signing.Ephemeral
	identities domain.IdentityStore
	accounts   domain.AccountStore
	client     domain.ActionClient
	serviceURL string
	logger     *slog.Logger
}

// New returns an action service. signer is normally the identity session.
// client may be nil for offline signing; Vote and Post then fail.
func New(
	signer domain.Signer,
	identities domain.IdentityStore,
	accounts domain.AccountStore,
	client domain.ActionClient,
	serviceURL string,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		signer:     signer,
		ephemeral:  signing.NewEphemeral(),
		identities: identities,
		accounts:   accounts,
		client:     client,
		serviceURL: serviceURL,
		logger:     logger,
	}
}

// SignPayload signs payload in mode and returns it in submission form.
// Direct and Bound need an unlocked signer; Ephemeral does not.
func (s *Service) SignPayload(payload []byte, mode Mode) (domain.SignedAction, error) {
	var (
		sig domain.Signature
		err error
	)
	switch mode {
	case Direct:
		sig, err = s.signer.Sign(payload)
	case Ephemeral:
		sig, _, err = s.ephemeral.SignEphemeral(payload)
	case Bound:
		sig, _, err = s.ephemeral.SignEphemeralBound(payload, s.signer)
	default:
		return domain.SignedAction{}, fmt.Errorf("%w: unknown signing mode %d", domain.ErrInvalidInput, mode)
	}
	if err != nil {
		return domain.SignedAction{}, err
	}
	return signing.NewSignedAction(payload, sig), nil
}

// Vote signs vote in mode and submits it under the stored account.
func (s *Service) Vote(ctx context.Context, vote domain.Vote, mode Mode) (domain.ActionResponse, error) {
	if s.client == nil {
		return domain.ActionResponse{}, ErrNotLoggedIn
	}
	vote.RumorID = strings.TrimSpace(vote.RumorID)
	if vote.RumorID == "" {
		return domain.ActionResponse{}, fmt.Errorf("%w: rumor id is required", ErrInvalidVote)
	}
	if math.IsNaN(vote.Prediction) || vote.Prediction < 0 || vote.Prediction > 1 {
		return domain.ActionResponse{}, fmt.Errorf("%w: prediction must be between 0 and 1", ErrInvalidVote)
	}

	profile, err := s.account()
	if err != nil {
		return domain.ActionResponse{}, err
	}

	action, err := s.SignPayload(vote.Payload(), mode)
	if err != nil {
		return domain.ActionResponse{}, err
	}
	resp, err := s.client.SubmitAction(ctx, profile.Token, domain.ActionRequest{
		UserID: profile.UserID,
		Vote:   vote,
		Action: action,
	})
	if err != nil {
		return domain.ActionResponse{}, fmt.Errorf("submit vote: %w", err)
	}
	s.logger.Info("action submitted", "action_id", resp.ActionID, "rumor_id", vote.RumorID, "mode", mode.String())
	return resp, nil
}

// Post signs rumor in mode and submits it under the stored account.
func (s *Service) Post(ctx context.Context, rumor domain.Rumor, mode Mode) (domain.RumorResponse, error) {
	if s.client == nil {
		return domain.RumorResponse{}, ErrNotLoggedIn
	}
	rumor.Content = strings.TrimSpace(rumor.Content)
	if rumor.Content == "" {
		return domain.RumorResponse{}, fmt.Errorf("%w: content is required", ErrInvalidRumor)
	}
	profile, err := s.account()
	if err != nil {
		return domain.RumorResponse{}, err
	}

	action, err := s.SignPayload(rumor.Payload(), mode)
	if err != nil {
		return domain.RumorResponse{}, err
	}
	resp, err := s.client.PostRumor(ctx, profile.Token, domain.RumorRequest{
		UserID: profile.UserID,
		Rumor:  rumor,
		Action: action,
	})
	if err != nil {
		return domain.RumorResponse{}, fmt.Errorf("post rumor: %w", err)
	}
	s.logger.Info("rumor submitted", "rumor_id", resp.RumorID, "mode", mode.String())
	return resp, nil
}

// account returns the stored login for the local identity.
func (s *Service) account() (domain.AccountProfile, error) {
	id, err := s.identities.LoadIdentity()
	if err != nil {
		return domain.AccountProfile{}, err
	}
	if id.Username == "" {
		return domain.AccountProfile{}, ErrNotLoggedIn
	}
	profile, ok, err := s.accounts.LoadAccountProfile(s.serviceURL, id.Username)
	if err != nil {
		return domain.AccountProfile{}, err
	}
	if !ok || profile.Token == "" {
		return domain.AccountProfile{}, ErrNotLoggedIn
	}
	return profile, nil
}
