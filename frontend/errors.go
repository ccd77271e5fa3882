package frontend

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrBackendRejected is the sentinel wrapped into every error the Keyframe
// Promoter and the Probe Worker produce when the back-end denies
// AddKeyFrame/AddFactor (success=false, or a zero/invalid id on success).
// spec.md §7 treats this as an assertion violation, not a recoverable
// error: the back-end is the identity authority, and a denial indicates a
// logic bug in the caller, not a transient condition. It is never
// swallowed — logRejection logs it at Error level and the task aborts,
// matching the original source's ASSERT_() semantics without killing the
// process. Callers distinguish it from an ordinary transport error with
// errors.Is.
var ErrBackendRejected = errors.New("frontend: back-end rejected request")

// logRejection logs err at Error level when it is (or wraps)
// ErrBackendRejected, and at Warn level otherwise: a denial from the
// identity authority is not transient, but a transport-level failure from
// Producer may be.
func (fe *FrontEnd) logRejection(opID uuid.UUID, msg string, err error) {
	if errors.Is(err, ErrBackendRejected) {
		fe.logger.Errorw(msg, "op_id", opID, "error", err)
		return
	}
	fe.logger.Warnw(msg, "op_id", opID, "error", err)
}
