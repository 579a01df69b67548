// Package app wires application dependencies for the CLI.
//
// It loads Config from a TOML, YAML or JSON file plus SIGIL_* environment
// variables, builds the file stores, the service client and the high-level
// services, and exposes them via the Wire struct for commands to use. The
// identity session is shared: whatever the identity service unlocks, the
// action service signs with.
package app
