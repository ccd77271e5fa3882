package frontend

import (
	"go.viam.com/lidarfe/icp"
	"go.viam.com/lidarfe/pointcloud"
	"go.viam.com/lidarfe/spatialmath"
)

// Registration is the Registration Adapter's contract (spec.md §4.8): a
// pure function of its inputs, touching no front-end state, wrapping the
// external ICP kernel into `(from, to, guess) -> (pose, goodness)`.
type Registration func(from, to pointcloud.PointCloud, guess spatialmath.Pose) (spatialmath.Pose, float64, error)

// NewRegistration builds a Registration backed by this module's concrete
// icp.Register kernel, applying the decimation override of spec.md §4.8 and
// §6: if decimateToPointCount > 0, the configured Decimate is replaced by
// floor(to.Size() / decimateToPointCount).
func NewRegistration(opts icp.Options, decimateToPointCount int) Registration {
	return func(from, to pointcloud.PointCloud, guess spatialmath.Pose) (spatialmath.Pose, float64, error) {
		effective := opts
		if decimateToPointCount > 0 {
			effective.Decimate = to.Size() / decimateToPointCount
		}
		result, err := icp.Register(from, to, guess, effective)
		if err != nil {
			return spatialmath.Pose{}, 0, err
		}
		return result.Pose, result.Goodness, nil
	}
}
