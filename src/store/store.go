// Package store holds the result of the most recent build.
package store

// NoBuildYet is returned by Get before any build has completed.
const NoBuildYet = "No build has been run yet."

// ResultStore is a single slot holding the text of the last build.
// Concurrent builds overwrite each other; the last Set wins.
type ResultStore interface {
	// Get returns the last stored text, or NoBuildYet.
	Get() string
	// Set replaces the stored text.
	Set(text string)
}
