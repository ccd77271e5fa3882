// Package icp is the concrete registration kernel this front-end uses in
// place of the black-box `register(from, to, guess) -> (pose, goodness)`
// collaborator spec.md §1 declares out of scope. The Registration Adapter
// (frontend.Registration) wraps Register the way the original source's
// `run_one_icp` wraps `mrpt::slam::CICP::Align3DPDF`: a pure function of its
// inputs, configured by Options, never touching front-end state.
//
// The algorithm is a standard point-to-point iterative closest point: at
// each iteration, match every (possibly decimated) point in `to` to its
// nearest neighbor in `from` within ThresholdDist, then solve the rigid
// transform minimizing squared correspondence error via SVD (the Kabsch
// algorithm), stopping after MaxIterations or once the transform stops
// changing.
package icp

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/lidarfe/pointcloud"
	"go.viam.com/lidarfe/spatialmath"
	"go.viam.com/lidarfe/utils"
)

// Options configures the registration kernel, mirroring spec.md §6's
// `mrpt_icp.*` keys plus the decimation override.
type Options struct {
	// MaxIterations caps the number of correspondence/solve rounds.
	MaxIterations int
	// ThresholdDist is the maximum distance, in meters, for two points to be
	// considered a correspondence.
	ThresholdDist float64
	// ThresholdAng is reserved for angle-gated correspondence matching
	// (surface-normal consistency). The original's CICP supports it; this
	// kernel does not yet use surface normals, so it is accepted and stored
	// but not applied — documented here rather than silently dropped.
	ThresholdAng float64
	// ALFA trades off translation vs rotation error in the original's
	// combined residual metric. Not used by the SVD-based solve (which
	// optimizes point-to-point squared distance directly), but threaded
	// through Options so a future weighted solver has a home for it.
	ALFA float64
	// ComputeCovariance is accepted and stored but not applied: Register
	// computes no covariance, and Result has no field to carry one.
	ComputeCovariance bool
	// Decimate, if > 0, uses only every Decimate-th point of `to` when
	// forming correspondences. The Registration Adapter computes this from
	// `decimate_to_point_count` (spec.md §6, §4.8) before calling Register.
	Decimate int
}

// DefaultOptions returns the spec.md §6 defaults.
func DefaultOptions() Options {
	return Options{
		MaxIterations: 50,
		ThresholdDist: 1.25,
		ThresholdAng:  1 * math.Pi / 180,
		ALFA:          0.01,
	}
}

// Result is the outcome of a registration.
type Result struct {
	Pose       spatialmath.Pose
	Goodness   float64
	Iterations int
}

// Register aligns `to` onto `from`, returning the pose of `to` with respect
// to `from` (spec.md §4.8: "from" is the earlier scan, "to" the later one,
// `(from, to, guess) -> (pose, goodness)`), starting the search at guess.
func Register(from, to pointcloud.PointCloud, guess spatialmath.Pose, opts Options) (Result, error) {
	fromPts := from.Points()
	toPts := decimate(to.Points(), opts.Decimate)
	if len(fromPts) == 0 || len(toPts) == 0 {
		return Result{}, errNoPoints
	}

	pose := guess
	maxIters := opts.MaxIterations
	if maxIters <= 0 {
		maxIters = 1
	}

	var lastPose spatialmath.Pose
	iters := 0
	for ; iters < maxIters; iters++ {
		corrFrom, corrTo := correspondences(fromPts, toPts, pose, opts.ThresholdDist)
		if len(corrFrom) < 3 {
			break
		}
		delta, err := solveRigid(corrTo, corrFrom) // delta maps "to" points onto "from" frame
		if err != nil {
			break
		}
		pose = delta
		if iters > 0 && spatialmath.AlmostEqual(pose, lastPose, 1e-6) {
			iters++
			break
		}
		lastPose = pose
	}

	goodness := goodnessOf(fromPts, toPts, pose, opts.ThresholdDist)
	return Result{Pose: pose, Goodness: goodness, Iterations: iters}, nil
}

var errNoPoints = errNoPointsError{}

type errNoPointsError struct{}

func (errNoPointsError) Error() string { return "icp: from or to point cloud is empty" }

func decimate(pts []r3.Vector, factor int) []r3.Vector {
	if factor <= 1 {
		return pts
	}
	out := make([]r3.Vector, 0, len(pts)/factor+1)
	for i := 0; i < len(pts); i += factor {
		out = append(out, pts[i])
	}
	return out
}

// correspondences finds, for each point in `to` (transformed by the current
// pose estimate), its nearest neighbor in `from` within threshold. The
// pairwise distance matrix and per-row argmin are computed by
// utils.PairwiseDistance / utils.GetArgMinDistancesPerRow (adapted from the
// teacher's utils/distance.go, itself a brute-force matcher): this kernel
// targets single-scan LiDAR clouds at the scale the odometry and probe
// workers operate on, not persistent maps, so an O(|to|*|from|) matrix is
// acceptable.
func correspondences(from, to []r3.Vector, pose spatialmath.Pose, threshold float64) ([]r3.Vector, []r3.Vector) {
	if len(from) == 0 || len(to) == 0 {
		return nil, nil
	}
	transformed := make([][]float64, len(to))
	for i, p := range to {
		t := pose.Translation().Add(rotate(pose, p))
		transformed[i] = []float64{t.X, t.Y, t.Z}
	}
	fromRows := make([][]float64, len(from))
	for i, f := range from {
		fromRows[i] = []float64{f.X, f.Y, f.Z}
	}

	dists, err := utils.PairwiseDistance(transformed, fromRows, utils.Euclidean)
	if err != nil {
		return nil, nil
	}
	nearest := utils.GetArgMinDistancesPerRow(dists)

	var corrFrom, corrTo []r3.Vector
	for i, j := range nearest {
		if dists.At(i, j) <= threshold {
			corrFrom = append(corrFrom, from[j])
			corrTo = append(corrTo, to[i])
		}
	}
	return corrFrom, corrTo
}

func rotate(pose spatialmath.Pose, v r3.Vector) r3.Vector {
	return pose.Compose(spatialmath.NewPoseFromPoint(v)).Translation().Sub(pose.Translation())
}

// solveRigid finds the rigid transform mapping src onto dst in the
// least-squares sense via the Kabsch algorithm (SVD of the cross-covariance
// matrix), the standard closed-form point-to-point ICP solve.
func solveRigid(src, dst []r3.Vector) (spatialmath.Pose, error) {
	n := len(src)
	srcCentroid, dstCentroid := centroid(src), centroid(dst)

	h := mat.NewDense(3, 3, nil)
	for i := 0; i < n; i++ {
		sv := src[i].Sub(srcCentroid)
		dv := dst[i].Sub(dstCentroid)
		var outer mat.Dense
		outer.Outer(1, mat.NewVecDense(3, vec(sv)), mat.NewVecDense(3, vec(dv)))
		h.Add(h, &outer)
	}

	var svd mat.SVD
	if ok := svd.Factorize(h, mat.SVDFull); !ok {
		return spatialmath.Pose{}, errSVDFailed
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	var r mat.Dense
	r.Mul(&v, u.T())
	if det3(&r) < 0 {
		// Reflection case: flip the sign of V's last column and recompute.
		for i := 0; i < 3; i++ {
			v.Set(i, 2, -v.At(i, 2))
		}
		r.Mul(&v, u.T())
	}

	q := matToQuat(&r)
	rotatedSrcCentroid := rotateByMat(&r, srcCentroid)
	translation := dstCentroid.Sub(rotatedSrcCentroid)
	return spatialmath.NewPose(translation, q), nil
}

var errSVDFailed = errSVDFailedError{}

type errSVDFailedError struct{}

func (errSVDFailedError) Error() string { return "icp: SVD factorization failed" }

func centroid(pts []r3.Vector) r3.Vector {
	var sum r3.Vector
	for _, p := range pts {
		sum = sum.Add(p)
	}
	return sum.Mul(1 / float64(len(pts)))
}

func vec(v r3.Vector) []float64 { return []float64{v.X, v.Y, v.Z} }

func rotateByMat(r *mat.Dense, v r3.Vector) r3.Vector {
	out := mat.NewVecDense(3, nil)
	out.MulVec(r, mat.NewVecDense(3, vec(v)))
	return r3.Vector{X: out.AtVec(0), Y: out.AtVec(1), Z: out.AtVec(2)}
}

func det3(m *mat.Dense) float64 {
	a, b, c := m.At(0, 0), m.At(0, 1), m.At(0, 2)
	d, e, f := m.At(1, 0), m.At(1, 1), m.At(1, 2)
	g, h, i := m.At(2, 0), m.At(2, 1), m.At(2, 2)
	return a*(e*i-f*h) - b*(d*i-f*g) + c*(d*h-e*g)
}

// matToQuat converts a 3x3 rotation matrix to a unit quaternion via the
// standard trace-based construction.
func matToQuat(m *mat.Dense) quat.Number {
	tr := m.At(0, 0) + m.At(1, 1) + m.At(2, 2)
	switch {
	case tr > 0:
		s := math.Sqrt(tr+1.0) * 2
		return quat.Number{
			Real: 0.25 * s,
			Imag: (m.At(2, 1) - m.At(1, 2)) / s,
			Jmag: (m.At(0, 2) - m.At(2, 0)) / s,
			Kmag: (m.At(1, 0) - m.At(0, 1)) / s,
		}
	case m.At(0, 0) > m.At(1, 1) && m.At(0, 0) > m.At(2, 2):
		s := math.Sqrt(1.0+m.At(0, 0)-m.At(1, 1)-m.At(2, 2)) * 2
		return quat.Number{
			Real: (m.At(2, 1) - m.At(1, 2)) / s,
			Imag: 0.25 * s,
			Jmag: (m.At(0, 1) + m.At(1, 0)) / s,
			Kmag: (m.At(0, 2) + m.At(2, 0)) / s,
		}
	case m.At(1, 1) > m.At(2, 2):
		s := math.Sqrt(1.0+m.At(1, 1)-m.At(0, 0)-m.At(2, 2)) * 2
		return quat.Number{
			Real: (m.At(0, 2) - m.At(2, 0)) / s,
			Imag: (m.At(0, 1) + m.At(1, 0)) / s,
			Jmag: 0.25 * s,
			Kmag: (m.At(1, 2) + m.At(2, 1)) / s,
		}
	default:
		s := math.Sqrt(1.0+m.At(2, 2)-m.At(0, 0)-m.At(1, 1)) * 2
		return quat.Number{
			Real: (m.At(1, 0) - m.At(0, 1)) / s,
			Imag: (m.At(0, 2) + m.At(2, 0)) / s,
			Jmag: (m.At(1, 2) + m.At(2, 1)) / s,
			Kmag: 0.25 * s,
		}
	}
}

// goodnessOf is the fraction of `to` points (after decimation) that end up
// with a correspondence within threshold under the final pose — a registration
// quality scalar in [0,1], monotone in quality, matching spec.md §4.8's
// contract for goodness. MRPT's own goodness metric is implementation-defined
// by the external kernel; this is our from-scratch equivalent of it.
func goodnessOf(from, to []r3.Vector, pose spatialmath.Pose, threshold float64) float64 {
	corrFrom, _ := correspondences(from, to, pose, threshold)
	if len(to) == 0 {
		return 0
	}
	return float64(len(corrFrom)) / float64(len(to))
}
