package interfaces

import (
	"context"

	domaintypes "sigil/internal/domain/types"
)

// IdentityClient talks to the remote identity service.
type IdentityClient interface {
	Register(
		ctx context.Context,
		req domaintypes.RegisterRequest,
	) (domaintypes.RegisterResponse, error)
	Login(ctx context.Context, req domaintypes.LoginRequest) (domaintypes.LoginResponse, error)
	Rekey(ctx context.Context, token string, req domaintypes.RekeyRequest) error
}

// ActionClient submits signed actions to the action-submission service.
type ActionClient interface {
	SubmitAction(
		ctx context.Context,
		token string,
		req domaintypes.ActionRequest,
	) (domaintypes.ActionResponse, error)
	PostRumor(
		ctx context.Context,
		token string,
		req domaintypes.RumorRequest,
	) (domaintypes.RumorResponse, error)
}
