// Package pointcloud defines the unordered 3D point set type shared by the
// odometry stage and the local pose graph (spec.md §3's PointCloud). The
// implementation is slice-backed, adapted from the teacher's
// pointcloud/basic.go; it favors simplicity over density, matching the scale
// of a single LiDAR scan rather than a persistent map.
package pointcloud

import (
	"math"

	"github.com/golang/geo/r3"
)

// MetaData tracks the bounding box of a PointCloud as points are added.
type MetaData struct {
	MinX, MaxX float64
	MinY, MaxY float64
	MinZ, MaxZ float64
}

// NewMetaData returns a MetaData with bounds ready to be widened by the first
// inserted point.
func NewMetaData() MetaData {
	return MetaData{
		MinX: math.MaxFloat64, MinY: math.MaxFloat64, MinZ: math.MaxFloat64,
		MaxX: -math.MaxFloat64, MaxY: -math.MaxFloat64, MaxZ: -math.MaxFloat64,
	}
}

// Merge widens the bounding box to include p.
func (m *MetaData) Merge(p r3.Vector) {
	m.MinX, m.MaxX = math.Min(m.MinX, p.X), math.Max(m.MaxX, p.X)
	m.MinY, m.MaxY = math.Min(m.MinY, p.Y), math.Max(m.MaxY, p.Y)
	m.MinZ, m.MaxZ = math.Min(m.MinZ, p.Z), math.Max(m.MaxZ, p.Z)
}

// PointCloud is an unordered set of 3D points (spec.md §3). It supports Size,
// serving as registration input, and is shared by identity (never copied)
// between the odometry stage and the local pose graph once published.
type PointCloud interface {
	// Size returns the number of points in the cloud.
	Size() int

	// MetaData returns the cloud's bounding box.
	MetaData() MetaData

	// Set places a point in the cloud.
	Set(p r3.Vector) error

	// Points returns every point in the cloud. The returned slice must not be
	// mutated; callers that need to modify it should copy first.
	Points() []r3.Vector

	// Iterate calls fn for every point in the cloud, stopping early if fn
	// returns false. numBatches/myBatch optionally partition the work;
	// numBatches == 0 means don't divide.
	Iterate(numBatches, myBatch int, fn func(p r3.Vector) bool)
}
