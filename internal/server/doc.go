// Package server implements sigild, a development stand-in for the remote
// identity and action-submission services.
//
// It stores each user's public key and sealed envelope, authenticates logins
// with an argon2id hash of the client-derived auth key, issues HS256 bearer
// tokens, and accepts votes only after verifying their signatures with the
// signing package. It never sees a password, a wrapping key, or a cleartext
// private key.
package server
