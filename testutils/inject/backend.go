// Package inject provides fake implementations of the front-end's external
// collaborator interfaces (backend.Producer, worldmodel.Consumer), in the
// teacher's inject pattern: a struct embeds the real interface plus a
// *Func field per method, falling back to the embedded implementation
// (nil, in practice, for these two collaborators) only when the override is
// unset — see go.viam.com/rdk/testutils/inject/switch.go.
package inject

import (
	"context"

	"go.viam.com/lidarfe/backend"
	"go.viam.com/lidarfe/spatialmath"
)

// Producer is an injected backend.Producer.
type Producer struct {
	backend.Producer
	AddKeyFrameFunc func(ctx context.Context, kf backend.Keyframe) (backend.KeyframeResult, error)
	AddFactorFunc   func(ctx context.Context, from, to backend.KeyframeId, relPose spatialmath.Pose) (backend.FactorResult, error)
}

// NewProducer returns a Producer with no overrides set.
func NewProducer() *Producer {
	return &Producer{}
}

// AddKeyFrame calls AddKeyFrameFunc.
func (p *Producer) AddKeyFrame(ctx context.Context, kf backend.Keyframe) (backend.KeyframeResult, error) {
	if p.AddKeyFrameFunc == nil {
		return p.Producer.AddKeyFrame(ctx, kf)
	}
	return p.AddKeyFrameFunc(ctx, kf)
}

// AddFactor calls AddFactorFunc.
func (p *Producer) AddFactor(
	ctx context.Context, from, to backend.KeyframeId, relPose spatialmath.Pose,
) (backend.FactorResult, error) {
	if p.AddFactorFunc == nil {
		return p.Producer.AddFactor(ctx, from, to, relPose)
	}
	return p.AddFactorFunc(ctx, from, to, relPose)
}
