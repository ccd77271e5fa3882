// Package frontend implements the LiDAR Odometry & Local Pose-Graph
// Front-End: the decision machinery that turns a stream of point-cloud
// observations into keyframes, odometry edges, and opportunistic
// non-adjacent edges against a bounded local pose graph.
//
// The overall shape — a long-lived struct wrapping two worker pools, one of
// which is the sole mutator of shared state — follows the same pattern as
// go.viam.com/rdk's component drivers that own a background poll loop
// (e.g. sensor/gps/nmea), generalized here to two pools instead of one.
package frontend

import (
	"time"

	"github.com/golang/geo/r3"

	"go.viam.com/lidarfe/backend"
	"go.viam.com/lidarfe/pointcloud"
	"go.viam.com/lidarfe/spatialmath"
)

// Observation is an opaque sensor sample: a monotonic timestamp, a sensor
// label, and a source the Observation Filter can convert to a PointCloud
// (spec.md §3). Immutable once received.
type Observation struct {
	Timestamp   time.Time
	SensorLabel string
	Source      pointcloud.Source
}

// Twist is the front-end's estimate of instantaneous SE(3) velocity:
// linear, plus a reserved (always-zero) angular component. spec.md §9 Open
// Question 1 leaves the rotational motion prior unimplemented in the
// source; this type keeps the field present and always zero rather than
// omitting it, so a future implementation has a home for it without a
// breaking change. See spatialmath.AngularVelocity.
type Twist struct {
	Linear  r3.Vector
	Angular spatialmath.AngularVelocity
}

// checkedPair is an unordered pair of keyframe ids already submitted to the
// probe pool (spec.md §3 "CheckedPairs").
type checkedPair [2]backend.KeyframeId

func newCheckedPair(a, b backend.KeyframeId) checkedPair {
	if a <= b {
		return checkedPair{a, b}
	}
	return checkedPair{b, a}
}

// FrontEndState is the aggregate mutated exclusively by the odometry pool's
// single worker (spec.md §3, §5: single-producer discipline). The local
// pose graph is the one exception: its edge-insertion critical section is
// also reachable from probe workers, guarded by FrontEnd.graphMu.
type FrontEndState struct {
	lastObs      *Observation
	lastObsTime  time.Time
	lastPoints   pointcloud.PointCloud
	lastTwist    Twist
	accumSinceKF spatialmath.Pose
	lastKF       backend.KeyframeId
	checkedPairs map[checkedPair]struct{}
}

func newFrontEndState() *FrontEndState {
	return &FrontEndState{
		lastKF:       backend.InvalidKeyframeId,
		accumSinceKF: spatialmath.Identity(),
		checkedPairs: make(map[checkedPair]struct{}),
	}
}
