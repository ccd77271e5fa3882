package inject

import (
	"go.viam.com/lidarfe/backend"
	"go.viam.com/lidarfe/worldmodel"
)

// WorldModel is an injected worldmodel.Consumer.
type WorldModel struct {
	worldmodel.Consumer
	LockFunc            func()
	UnlockFunc          func()
	EntityNeighborsFunc func(id backend.KeyframeId) map[backend.KeyframeId]struct{}
}

// NewWorldModel returns a WorldModel with no overrides set; Lock/Unlock
// default to no-ops since most tests don't care about contention.
func NewWorldModel() *WorldModel {
	return &WorldModel{}
}

// Lock calls LockFunc, defaulting to a no-op.
func (w *WorldModel) Lock() {
	if w.LockFunc == nil {
		return
	}
	w.LockFunc()
}

// Unlock calls UnlockFunc, defaulting to a no-op.
func (w *WorldModel) Unlock() {
	if w.UnlockFunc == nil {
		return
	}
	w.UnlockFunc()
}

// EntityNeighbors calls EntityNeighborsFunc, defaulting to "no neighbors".
func (w *WorldModel) EntityNeighbors(id backend.KeyframeId) map[backend.KeyframeId]struct{} {
	if w.EntityNeighborsFunc == nil {
		return nil
	}
	return w.EntityNeighborsFunc(id)
}
