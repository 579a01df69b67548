package types

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Signature is an RSA-PSS signature value.
//
// SignerPublicKey is only set for ephemeral signatures. Binding, when present,
// is a long-term identity signature over SignerPublicKey.
type Signature struct {
	Value           []byte `json:"value"`
	SignerPublicKey []byte `json:"signerPublicKey,omitempty"`
	Binding         []byte `json:"binding,omitempty"`
}

// SignedAction is the wire shape accepted by the action-submission service.
type SignedAction struct {
	Payload         []byte `json:"payload"`
	Signature       string `json:"signature"`
	SignerPublicKey []byte `json:"signerPublicKey,omitempty"`
	Binding         []byte `json:"binding,omitempty"`
}

// Vote is a user's verdict on a rumor.
type Vote struct {
	RumorID    string  `json:"rumorId"`
	Up         bool    `json:"vote"`
	Prediction float64 `json:"prediction"`
}

// Payload returns the canonical bytes that are signed for this vote.
func (v Vote) Payload() []byte {
	dir := "down"
	if v.Up {
		dir = "up"
	}
	return []byte(fmt.Sprintf("vote:%s:%s:%.4f", strings.TrimSpace(v.RumorID), dir, v.Prediction))
}

// ActionRequest submits a signed vote.
type ActionRequest struct {
	UserID UserID       `json:"userId"`
	Vote   Vote         `json:"vote"`
	Action SignedAction `json:"action"`
}

// ActionResponse acknowledges an accepted action.
type ActionResponse struct {
	ActionID string `json:"actionId"`
}

// Rumor is a claim posted by a user.
type Rumor struct {
	Content string `json:"content"`
}

// Payload returns the canonical bytes that are signed for this rumor: the
// SHA-256 of the trimmed content, so the signature commits to the full text.
func (r Rumor) Payload() []byte {
	sum := sha256.Sum256([]byte(strings.TrimSpace(r.Content)))
	return []byte("rumor:" + hex.EncodeToString(sum[:]))
}

// RumorRequest submits a signed rumor.
type RumorRequest struct {
	UserID UserID       `json:"userId"`
	Rumor  Rumor        `json:"rumor"`
	Action SignedAction `json:"action"`
}

// RumorResponse acknowledges a posted rumor.
type RumorResponse struct {
	RumorID string `json:"rumorId"`
}
