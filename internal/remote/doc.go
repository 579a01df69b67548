// Package remote provides an HTTP implementation of the domain.IdentityClient
// and domain.ActionClient interfaces used by sigil.
//
// The identity service stores each user's public key and sealed envelope and
// hands the envelope back at login; the action service accepts signed votes
// and rumors.
// Supported operations:
//   - Registering a new identity (POST /api/join).
//   - Logging in to retrieve the sealed envelope (POST /api/login).
//   - Replacing the envelope after a password change (POST /api/rekey).
//   - Submitting a signed vote (POST /api/vote).
//   - Posting a signed rumor (POST /api/rumor).
//   - Fetching a user's invite code (GET /api/generate-invite/{id}).
//   - Reading a rumor's vote tally (GET /api/rumors/{id}/tally).
//
// All requests are JSON over HTTP and accept a context for cancellation and
// deadlines. Non-2xx statuses are returned as *StatusError carrying the
// method, path, status and the service's error message.
package remote
