// Package ids hands out the stable identifiers used throughout the engine
// for tracks, clips, plugin instances, sends and automation lanes (§3).
package ids

import "github.com/google/uuid"

// ID is a stable, opaque identifier. It round-trips through YAML/JSON as a
// plain string so a persisted DAWState document is human-diffable.
type ID string

// Master is the reserved id of the unique final sink in the routing graph
// (§3 Invariants, §4.3).
const Master ID = "master"

// New mints a fresh random identifier.
func New() ID {
	return ID(uuid.NewString())
}

// Empty reports whether the id is the zero value.
func (i ID) Empty() bool {
	return i == ""
}
