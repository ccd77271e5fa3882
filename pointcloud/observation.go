package pointcloud

import "github.com/golang/geo/r3"

// Source is implemented by an Observation (spec.md §3) to yield the raw
// points a sensor driver produced. It is the seam between the opaque
// sensor sample and the PointCloud the odometry stage registers against —
// the Go equivalent of the original source's
// `this_obs_points->insertObservationPtr(o)`.
type Source interface {
	Points() ([]r3.Vector, bool)
}

// FromSource converts a Source into a PointCloud. The second return value is
// false if the source could not be converted (spec.md §4.2's "conversion
// failure"), in which case the returned cloud is nil and must not be used.
func FromSource(s Source) (PointCloud, bool) {
	pts, ok := s.Points()
	if !ok {
		return nil, false
	}
	return FromPoints(pts), true
}
