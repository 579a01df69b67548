// Package main runs sigild, the identity and action service used by sigil
// during development and tests. It stores registered identities and accepted
// votes and rumors in sqlite.
//
// HTTP API
//
//	POST /api/join
//	    Register a username with an auth key, public key and sealed envelope.
//	    The invite code must be an existing user id; the configured genesis
//	    code is accepted while no user exists.
//
//	POST /api/login
//	    Exchange username and auth key for a bearer token, the public key and
//	    the sealed envelope.
//
//	POST /api/rekey
//	    Replace the auth key and envelope after a passphrase change. Requires
//	    a bearer token and the previous auth key.
//
//	POST /api/vote
//	    Submit a signed vote. The signature is checked against the registered
//	    key, directly or through an ephemeral key binding. One vote per user
//	    per rumor.
//
//	POST /api/rumor
//	    Post a signed rumor. The signed payload is "rumor:" followed by the
//	    hex SHA-256 of the trimmed content, checked like a vote. The same
//	    content twice from one account is rejected.
//
//	GET /api/generate-invite/{id}
//	    Return the invite code for a registered user, which is its user id.
//
//	GET /api/rumors/{id}/tally
//	    Return accepted up and down votes for a rumor.
//
//	GET /healthz, GET /metrics
//
// Behaviour
//
//   - Auth keys are stored as argon2id hashes; the service never sees a
//     passphrase or an unsealed private key.
//   - Logins are rate limited per username.
//   - Responses are JSON. Non-2xx statuses carry {"error": "..."}.
//   - Configuration comes from --config and SIGILD_* variables; a token
//     secret of at least 32 bytes is required.
package main
