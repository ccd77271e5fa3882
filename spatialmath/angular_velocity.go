package spatialmath

import "github.com/golang/geo/r3"

// AngularVelocity holds an SE(3) rotational velocity in radians/s about each
// axis. It exists as a placeholder field on frontend.Twist: spec.md §4.3 and
// §9 (Open Question 1) leave the rotational component of the motion prior and
// the promotion rotation threshold unimplemented, mirroring the original
// source's `MRPT_TODO("do omega_xyz part!")`. Nothing in this package
// populates a non-zero AngularVelocity; it is carried so the gap is visible
// in the type rather than silently absent.
type AngularVelocity r3.Vector

// Zero is the reserved, always-zero angular velocity used wherever the
// rotational motion prior would otherwise be estimated.
var Zero = AngularVelocity{}
