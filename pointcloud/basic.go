package pointcloud

import (
	"github.com/golang/geo/r3"

	"go.viam.com/lidarfe/utils"
)

// basicPointCloud is the basic implementation of PointCloud, backed by a
// plain slice of points. Adapted from the teacher's basicPointCloud
// (pointcloud/basic.go), trimmed of the per-point color/value Data payload:
// registration only ever needs geometry, and a LiDAR scan's points are
// published once and never looked up by position, so the teacher's
// position-indexed map (with its dedup-on-Set semantics) is replaced by a
// plain append-only slice.
type basicPointCloud struct {
	points []r3.Vector
	meta   MetaData
}

// New returns an empty PointCloud.
func New() PointCloud {
	return NewWithPrealloc(0)
}

// NewWithPrealloc returns an empty, preallocated PointCloud.
func NewWithPrealloc(size int) PointCloud {
	return &basicPointCloud{
		points: make([]r3.Vector, 0, size),
		meta:   NewMetaData(),
	}
}

// FromPoints builds a PointCloud from an existing slice of points.
func FromPoints(points []r3.Vector) PointCloud {
	pc := &basicPointCloud{points: make([]r3.Vector, 0, len(points)), meta: NewMetaData()}
	for _, p := range points {
		_ = pc.Set(p) // Set never fails for this implementation.
	}
	return pc
}

func (cloud *basicPointCloud) Size() int {
	return len(cloud.points)
}

func (cloud *basicPointCloud) MetaData() MetaData {
	return cloud.meta
}

func (cloud *basicPointCloud) Set(p r3.Vector) error {
	cloud.points = append(cloud.points, p)
	cloud.meta.Merge(p)
	return nil
}

func (cloud *basicPointCloud) Points() []r3.Vector {
	return cloud.points
}

func (cloud *basicPointCloud) Iterate(numBatches, myBatch int, fn func(p r3.Vector) bool) {
	from, to := 0, len(cloud.points)
	if numBatches > 0 {
		batchSize := (len(cloud.points) + numBatches - 1) / numBatches
		from = utils.MinInt(myBatch*batchSize, len(cloud.points))
		to = utils.MinInt(from+batchSize, len(cloud.points))
	}
	for _, p := range cloud.points[from:to] {
		if !fn(p) {
			return
		}
	}
}
