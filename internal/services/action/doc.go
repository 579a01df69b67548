// Package action signs and submits user actions (votes on rumors).
//
// A vote is reduced to a canonical payload, signed in one of three modes and
// posted to the action service:
//   - Direct: the identity key signs; the service checks the registered key.
//   - Ephemeral: a one-time key signs and is attached; the action carries no
//     cryptographic link to the identity.
//   - Bound: as Ephemeral, plus an identity signature over the one-time key.
package action
