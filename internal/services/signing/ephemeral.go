package signing

import (
	"fmt"

	"sigil/internal/crypto"
	"sigil/internal/domain"
)

// Ephemeral signs each payload with a key pair minted for that payload alone.
type Ephemeral struct {
	signer *Service
}

// NewEphemeral returns an ephemeral signing strategy.
func NewEphemeral() *Ephemeral { return &Ephemeral{signer: New()} }

// SignEphemeral generates a one-time key pair, signs payload with it and
// discards the private key. It returns the signature, which carries the
// ephemeral SPKI key, and that key again for convenience.
func (e *Ephemeral) SignEphemeral(payload []byte) (domain.Signature, []byte, error) {
	kp, err := crypto.GenerateKeyPair()
	if err != nil {
		return domain.Signature{}, nil, err
	}
	defer crypto.WipePrivateKey(kp.Private)

	pub, err := crypto.MarshalPublicKey(kp.Public)
	if err != nil {
		return domain.Signature{}, nil, err
	}
	sig, err := e.signer.Sign(kp.Private, payload)
	if err != nil {
		return domain.Signature{}, nil, err
	}
	sig.SignerPublicKey = pub
	return sig, pub, nil
}

// SignEphemeralBound is SignEphemeral plus a binding: binder, normally the
// unlocked identity session, co-signs the ephemeral public key.
func (e *Ephemeral) SignEphemeralBound(payload []byte, binder domain.Signer) (domain.Signature, []byte, error) {
	sig, pub, err := e.SignEphemeral(payload)
	if err != nil {
		return domain.Signature{}, nil, err
	}
	b, err := binder.Sign(BindingPayload(pub))
	if err != nil {
		return domain.Signature{}, nil, fmt.Errorf("bind ephemeral key: %w", err)
	}
	sig.Binding = b.Value
	return sig, pub, nil
}
