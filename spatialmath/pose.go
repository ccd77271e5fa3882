// Package spatialmath provides the SE(3) pose algebra used to compose and
// compare registrations between point clouds.
package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Pose is a rigid transform in 3D: a translation plus a rotation, expressed
// as a unit quaternion. It is the SE(3) type used for relative registrations,
// accumulated odometry, and node positions in the local pose graph.
type Pose struct {
	translation r3.Vector
	rotation    quat.Number
}

// NewPose builds a Pose from a translation and a rotation quaternion. The
// rotation is normalized so callers do not need to pre-normalize ICP output.
func NewPose(translation r3.Vector, rotation quat.Number) Pose {
	return Pose{translation: translation, rotation: normalize(rotation)}
}

// NewPoseFromPoint builds a translation-only Pose with identity rotation.
func NewPoseFromPoint(p r3.Vector) Pose {
	return Pose{translation: p, rotation: identityQuat}
}

// Identity is the zero-translation, zero-rotation pose.
func Identity() Pose {
	return Pose{rotation: identityQuat}
}

var identityQuat = quat.Number{Real: 1}

// Translation returns the translation component of the pose.
func (p Pose) Translation() r3.Vector {
	return p.translation
}

// Rotation returns the rotation component of the pose as a unit quaternion.
func (p Pose) Rotation() quat.Number {
	return p.rotation
}

// TranslationNorm returns the Euclidean norm of the translation component.
// This is the "distance" used throughout the local pose graph: Dijkstra edge
// weights, eviction ranking, and the keyframe-promotion threshold all operate
// on this scalar, never on a rotation-aware metric.
func (p Pose) TranslationNorm() float64 {
	return p.translation.Norm()
}

// Compose returns p followed by other, i.e. other expressed in p's frame and
// then composed on top of it: result = p (*) other. This is ordered SE(3)
// composition on the right, matching spec.md's
// "accum_since_last_kf <- accum_since_last_kf (+) rel_pose".
func (p Pose) Compose(other Pose) Pose {
	rotated := rotateVector(p.rotation, other.translation)
	return Pose{
		translation: p.translation.Add(rotated),
		rotation:    normalize(quat.Mul(p.rotation, other.rotation)),
	}
}

// Inverse returns the pose such that p.Compose(p.Inverse()) is the identity.
func (p Pose) Inverse() Pose {
	invRot := quat.Conj(p.rotation)
	invTrans := rotateVector(invRot, p.translation.Mul(-1))
	return Pose{translation: invTrans, rotation: invRot}
}

// Delta returns the pose of other expressed relative to p: p.Compose(p.Delta(other))
// == other (up to floating point error). The Nearby-KF Prober's correction
// does not use Delta; it uses Sub.
func (p Pose) Delta(other Pose) Pose {
	return p.Inverse().Compose(other)
}

// Sub returns a pose whose translation is the componentwise difference of the
// two translations, ignoring rotation. It exists solely to express
// spec.md §4.7's `correction = ||pose - init_guess||`, which in the original
// source (mrpt::poses::CPose3D::operator-) is a literal coordinate-wise
// subtraction followed by a 6D norm; we only ever read the translation norm of
// the result, so rotation is intentionally left out.
func (p Pose) Sub(other Pose) Pose {
	return Pose{translation: p.translation.Sub(other.translation), rotation: identityQuat}
}

// AlmostEqual reports whether two poses are equal within tol on both
// translation and rotation.
func AlmostEqual(a, b Pose, tol float64) bool {
	if a.translation.Sub(b.translation).Norm() > tol {
		return false
	}
	diff := quat.Mul(a.rotation, quat.Conj(b.rotation))
	// A quaternion near identity (either +1 or -1, since q and -q represent
	// the same rotation) has a real part near 1 in magnitude.
	return math.Abs(math.Abs(diff.Real)-1) < tol
}

func normalize(q quat.Number) quat.Number {
	n := quat.Abs(q)
	if n == 0 {
		return identityQuat
	}
	return quat.Scale(1/n, q)
}

// rotateVector applies rotation q to vector v via q * v * conj(q).
func rotateVector(q quat.Number, v r3.Vector) r3.Vector {
	vq := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	r := quat.Mul(quat.Mul(q, vq), quat.Conj(q))
	return r3.Vector{X: r.Imag, Y: r.Jmag, Z: r.Kmag}
}
