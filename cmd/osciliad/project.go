package main

import "github.com/oscilla-audio/engine/internal/ids"

// stemTrackID adapts a command-line track id string to the internal id
// type, for the --stem flag on render.
func stemTrackID(s string) ids.ID {
	return ids.ID(s)
}
