// Package backend declares the front-end's view of the external SLAM
// back-end factor graph solver (spec.md §1, §6): identity allocation for
// keyframes and factors. The solver's internals are out of scope; this
// package is the producer-side contract the front-end depends on.
package backend

import (
	"context"
	"time"

	"go.viam.com/lidarfe/pointcloud"
	"go.viam.com/lidarfe/spatialmath"
)

// KeyframeId is minted by the back-end. InvalidKeyframeId denotes "no
// previous keyframe" (spec.md §3).
type KeyframeId int64

// InvalidKeyframeId is the sentinel for "no previous keyframe".
const InvalidKeyframeId KeyframeId = 0

// FactorId is minted by the back-end when a factor is accepted.
// InvalidFactorId denotes "none".
type FactorId int64

// InvalidFactorId is the sentinel for "no factor".
const InvalidFactorId FactorId = 0

// Keyframe is the payload submitted when minting a new keyframe.
type Keyframe struct {
	Timestamp    time.Time
	Observations []pointcloud.PointCloud
}

// KeyframeResult is the back-end's response to AddKeyFrame.
type KeyframeResult struct {
	Success bool
	NewID   KeyframeId
}

// FactorResult is the back-end's response to AddFactor.
type FactorResult struct {
	Success bool
	NewID   FactorId
}

// Producer is the front-end's contract with the back-end factor graph
// solver (spec.md §6). Both methods are awaited synchronously by their
// callers (the Keyframe Promoter and the Probe Worker) because keyframe
// identity is the join key for every subsequent operation — spec.md §4.4,
// §5 "Futures awaited inline".
type Producer interface {
	// AddKeyFrame mints a new keyframe id for kf. Implementations must
	// populate KeyframeResult.NewID only when Success is true.
	AddKeyFrame(ctx context.Context, kf Keyframe) (KeyframeResult, error)
	// AddFactor submits a relative SE(3) constraint between from and to.
	AddFactor(ctx context.Context, from, to KeyframeId, relPose spatialmath.Pose) (FactorResult, error)
}
