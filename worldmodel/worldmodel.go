// Package worldmodel declares the front-end's view of the external shared
// map store (spec.md §1, §6): a coarse-locked neighbor query used by the
// Nearby-KF Prober to avoid re-proposing an edge the world model already
// knows about.
package worldmodel

import "go.viam.com/lidarfe/backend"

// Consumer is the front-end's contract with the world model. Lock/Unlock
// bracket the entity_neighbors query (spec.md §5, §4.6): the prober holds
// the lock only across that single call, never across registration or
// back-end I/O.
type Consumer interface {
	Lock()
	Unlock()
	// EntityNeighbors returns the set of keyframe ids the world model
	// already considers adjacent to id.
	EntityNeighbors(id backend.KeyframeId) map[backend.KeyframeId]struct{}
}
