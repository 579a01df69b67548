package signing

import (
	"crypto/rsa"

	"sigil/internal/crypto"
	"sigil/internal/domain"
)

// bindingPrefix separates binding signatures from action signatures so that
// one can never be replayed as the other.
const bindingPrefix = "sigil-ephemeral-binding:"

// Service implements domain.SigningService. It keeps no state and never
// records payloads or signatures.
type Service struct{}

// New returns a signing service.
func New() *Service { return &Service{} }

// Sign signs payload with priv.
func (s *Service) Sign(priv *rsa.PrivateKey, payload []byte) (domain.Signature, error) {
	v, err := crypto.SignPSS(priv, payload)
	if err != nil {
		return domain.Signature{}, err
	}
	return domain.Signature{Value: v}, nil
}

// Verify reports whether sig is valid for payload under the SPKI key pub.
// A malformed signature verifies false; an unparsable key is an error.
func (s *Service) Verify(pub []byte, payload []byte, sig domain.Signature) (bool, error) {
	key, err := crypto.ParsePublicKey(pub)
	if err != nil {
		return false, err
	}
	return crypto.VerifyPSS(key, payload, sig.Value), nil
}

// VerifyAction checks a submitted action. The signature is checked against
// the attached ephemeral key when there is one and against registered, the
// signer's long-term SPKI key, otherwise. A binding, when present, must be a
// valid long-term signature over the ephemeral key.
func (s *Service) VerifyAction(registered []byte, action domain.SignedAction) (bool, error) {
	value, err := crypto.DecodeSignature(action.Signature)
	if err != nil {
		return false, nil
	}
	sig := domain.Signature{Value: value}

	if len(action.SignerPublicKey) == 0 {
		return s.Verify(registered, action.Payload, sig)
	}

	ok, err := s.Verify(action.SignerPublicKey, action.Payload, sig)
	if err != nil || !ok {
		return false, err
	}
	if len(action.Binding) == 0 {
		return true, nil
	}
	return s.Verify(registered, BindingPayload(action.SignerPublicKey), domain.Signature{Value: action.Binding})
}

// BindingPayload returns the bytes a long-term key signs to vouch for the
// ephemeral SPKI key pub.
func BindingPayload(pub []byte) []byte {
	out := make([]byte, 0, len(bindingPrefix)+len(pub))
	out = append(out, bindingPrefix...)
	return append(out, pub...)
}

// NewSignedAction packages payload and sig in the submission wire shape.
func NewSignedAction(payload []byte, sig domain.Signature) domain.SignedAction {
	return domain.SignedAction{
		Payload:         payload,
		Signature:       crypto.B64(sig.Value),
		SignerPublicKey: sig.SignerPublicKey,
		Binding:         sig.Binding,
	}
}

// Compile-time assertion that Service implements domain.SigningService.
var _ domain.SigningService = (*Service)(nil)
