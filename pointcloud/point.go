package pointcloud

import "github.com/golang/geo/r3"

// NewVector is a convenience constructor for a point position, adapted from
// the teacher's pointcloud.NewVector.
func NewVector(x, y, z float64) r3.Vector {
	return r3.Vector{X: x, Y: y, Z: z}
}
