// Package store provides persistence for sigil.
//
// The file stores keep client state under the user's home directory as JSON,
// written atomically with owner-only permissions:
//   - The local identity: public key plus sealed envelope (IdentityFileStore)
//   - Account profiles per identity service (AccountFileStore)
//
// SQLite backs the development identity service (SQLite): registered users
// and the signed actions they submit.
//
// Nothing here ever stores a cleartext private key.
package store
