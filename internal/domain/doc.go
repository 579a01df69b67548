// Package domain defines core data models, error kinds and interfaces shared
// across sigil. It contains plain types (wire/state) and contracts (interfaces)
// only.
package domain
