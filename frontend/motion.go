package frontend

import "go.viam.com/lidarfe/spatialmath"

// predictGuess is the Motion Predictor (spec.md §4.3): a stateless
// derivation of the initial registration guess from the last twist and the
// elapsed time. dt <= 0 ties break to the identity, matching the original
// source's implicit "no time has passed, no motion predicted" behavior
// without its dt==0 division.
func predictGuess(twist Twist, dt float64) spatialmath.Pose {
	if dt <= 0 {
		return spatialmath.Identity()
	}
	return spatialmath.NewPoseFromPoint(twist.Linear.Mul(dt))
	// Angular velocity is reserved (spec.md §9 Open Question 1): the
	// rotational component of the guess stays at zero until an
	// implementation populates Twist.Angular.
}

// updateTwist derives the next twist from a registered relative pose over
// elapsed time dt (spec.md §4.2: "(vx, vy, vz) <- rel_pose.translation /
// dt"). dt <= 0 leaves prev unchanged rather than dividing by zero or
// discarding the last known twist (SPEC_FULL.md: "identity guess, twist left
// unchanged" on dt == 0).
func updateTwist(prev Twist, relPose spatialmath.Pose, dt float64) Twist {
	if dt <= 0 {
		return prev
	}
	return Twist{Linear: relPose.Translation().Mul(1 / dt)}
}
