// Package commands defines the sigil CLI and wires dependencies for subcommands.
//
// Commands
//
//   - init         Create the local identity, sealed under a passphrase
//   - fingerprint  Print the identity fingerprint or public key
//   - register     Publish the identity to the service with an invite code
//   - login        Fetch the sealed identity from the service on a new device
//   - sign         Sign a payload and print the signed action
//   - verify       Verify a signed action against a public key
//   - vote         Sign and submit a vote on a rumor
//   - post         Sign and post a rumor
//   - tally        Show accepted votes for a rumor
//   - invite       Print an invite code for a new user
//   - passwd       Reseal the identity under a new passphrase
//   - export       Print the sealed identity envelope for backup
//   - import       Restore the identity from an exported envelope
//
// # Implementation
//
// The root command loads the config, checks that the platform can provide
// secure randomness and builds the app context before any subcommand runs.
// The unsealed key lives in a guarded enclave for the duration of one command
// and is destroyed when the command returns or on interrupt.
package commands
