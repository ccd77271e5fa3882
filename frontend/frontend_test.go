package frontend

import (
	"context"
	"testing"
	"time"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/lidarfe/backend"
	"go.viam.com/lidarfe/config"
	"go.viam.com/lidarfe/graph"
	"go.viam.com/lidarfe/logging"
	"go.viam.com/lidarfe/pointcloud"
	"go.viam.com/lidarfe/spatialmath"
	"go.viam.com/lidarfe/testutils/inject"
)

type fakeSource struct{}

func (fakeSource) Points() ([]r3.Vector, bool) { return []r3.Vector{{X: 1}}, true }

type failingSource struct{}

func (failingSource) Points() ([]r3.Vector, bool) { return nil, false }

func obsAt(t time.Time) Observation {
	return Observation{Timestamp: t, SensorLabel: "lidar0", Source: fakeSource{}}
}

// scriptedRegister returns canned (pose, goodness) pairs in call order,
// repeating the last entry once exhausted.
type scriptedRegister struct {
	responses []struct {
		pose     spatialmath.Pose
		goodness float64
	}
	calls int
}

func (s *scriptedRegister) fn(from, to pointcloud.PointCloud, guess spatialmath.Pose) (spatialmath.Pose, float64, error) {
	i := s.calls
	if i >= len(s.responses) {
		i = len(s.responses) - 1
	}
	s.calls++
	r := s.responses[i]
	return r.pose, r.goodness, nil
}

func translatePose(x float64) spatialmath.Pose {
	return spatialmath.NewPoseFromPoint(r3.Vector{X: x})
}

func baseParams() config.Params {
	return config.Params{
		MinDistXYZBetweenKeyframes: 1.0,
		MinICPGoodness:             0.5,
		MaxKFsLocalGraph:           5,
	}
}

func newTestFrontEnd(
	t *testing.T, producer *inject.Producer, wm *inject.WorldModel, reg Registration,
) *FrontEnd {
	t.Helper()
	fe := New(baseParams(), producer, wm, reg, logging.NewTestLogger("test"))
	t.Cleanup(fe.Stop)
	return fe
}

func autoAcceptProducer() *inject.Producer {
	p := inject.NewProducer()
	nextID := backend.KeyframeId(1)
	p.AddKeyFrameFunc = func(ctx context.Context, kf backend.Keyframe) (backend.KeyframeResult, error) {
		id := nextID
		nextID++
		return backend.KeyframeResult{Success: true, NewID: id}, nil
	}
	p.AddFactorFunc = func(ctx context.Context, from, to backend.KeyframeId, relPose spatialmath.Pose) (backend.FactorResult, error) {
		return backend.FactorResult{Success: true, NewID: 1}, nil
	}
	return p
}

func TestBootstrapProducesNoKeyframe(t *testing.T) {
	producer := autoAcceptProducer()
	wm := inject.NewWorldModel()
	reg := &scriptedRegister{}
	fe := newTestFrontEnd(t, producer, wm, reg.fn)

	fe.handleObservation(context.Background(), obsAt(time.Unix(0, 0)))

	test.That(t, fe.state.lastKF, test.ShouldEqual, backend.InvalidKeyframeId)
	test.That(t, fe.state.lastPoints, test.ShouldNotBeNil)
}

func TestSecondObservationPromotesFirstKeyframe(t *testing.T) {
	producer := autoAcceptProducer()
	wm := inject.NewWorldModel()
	reg := &scriptedRegister{responses: []struct {
		pose     spatialmath.Pose
		goodness float64
	}{
		{pose: translatePose(1.2), goodness: 0.9},
	}}
	fe := newTestFrontEnd(t, producer, wm, reg.fn)

	fe.handleObservation(context.Background(), obsAt(time.Unix(0, 0)))
	fe.handleObservation(context.Background(), obsAt(time.Unix(1, 0)))

	test.That(t, fe.state.lastKF, test.ShouldEqual, backend.KeyframeId(1))
	test.That(t, fe.state.accumSinceKF.TranslationNorm(), test.ShouldEqual, 0.0)
}

func TestAccumulatesUntilThresholdThenPromotes(t *testing.T) {
	producer := autoAcceptProducer()
	wm := inject.NewWorldModel()
	reg := &scriptedRegister{responses: []struct {
		pose     spatialmath.Pose
		goodness float64
	}{
		{pose: translatePose(1.2), goodness: 0.9}, // -> K1
		{pose: translatePose(0.5), goodness: 0.9}, // accum 0.5, no promotion
		{pose: translatePose(0.7), goodness: 0.9}, // accum 1.2, -> K2
	}}
	fe := newTestFrontEnd(t, producer, wm, reg.fn)
	ctx := context.Background()

	fe.handleObservation(ctx, obsAt(time.Unix(0, 0)))
	fe.handleObservation(ctx, obsAt(time.Unix(1, 0)))
	test.That(t, fe.state.lastKF, test.ShouldEqual, backend.KeyframeId(1))

	fe.handleObservation(ctx, obsAt(time.Unix(2, 0)))
	test.That(t, fe.state.lastKF, test.ShouldEqual, backend.KeyframeId(1))
	test.That(t, fe.state.accumSinceKF.TranslationNorm(), test.ShouldBeGreaterThan, 0.0)

	fe.handleObservation(ctx, obsAt(time.Unix(3, 0)))
	test.That(t, fe.state.lastKF, test.ShouldEqual, backend.KeyframeId(2))
}

func TestConversionFailureDoesNotAdvanceState(t *testing.T) {
	producer := autoAcceptProducer()
	wm := inject.NewWorldModel()
	reg := &scriptedRegister{}
	fe := newTestFrontEnd(t, producer, wm, reg.fn)

	fe.handleObservation(context.Background(), obsAt(time.Unix(0, 0)))
	before := fe.state.lastObsTime

	fe.handleObservation(context.Background(), Observation{
		Timestamp: time.Unix(1, 0), SensorLabel: "lidar0", Source: failingSource{},
	})

	test.That(t, fe.state.lastObsTime, test.ShouldResemble, before)
}

func TestMinTimeBetweenScansSkipsObservation(t *testing.T) {
	producer := autoAcceptProducer()
	wm := inject.NewWorldModel()
	reg := &scriptedRegister{responses: []struct {
		pose     spatialmath.Pose
		goodness float64
	}{{pose: translatePose(2.0), goodness: 0.9}}}
	fe := newTestFrontEnd(t, producer, wm, reg.fn)
	fe.cfg.MinTimeBetweenScans = 10

	ctx := context.Background()
	fe.handleObservation(ctx, obsAt(time.Unix(0, 0)))
	fe.handleObservation(ctx, obsAt(time.Unix(1, 0))) // within min gap, skipped
	test.That(t, fe.state.lastKF, test.ShouldEqual, backend.InvalidKeyframeId)
	test.That(t, fe.state.lastObsTime, test.ShouldResemble, time.Unix(0, 0))
}

func TestBackendRejectionAbortsPromotion(t *testing.T) {
	producer := inject.NewProducer()
	producer.AddKeyFrameFunc = func(ctx context.Context, kf backend.Keyframe) (backend.KeyframeResult, error) {
		return backend.KeyframeResult{Success: false}, nil
	}
	wm := inject.NewWorldModel()
	reg := &scriptedRegister{responses: []struct {
		pose     spatialmath.Pose
		goodness float64
	}{{pose: translatePose(1.2), goodness: 0.9}}}
	fe := newTestFrontEnd(t, producer, wm, reg.fn)

	ctx := context.Background()
	fe.handleObservation(ctx, obsAt(time.Unix(0, 0)))
	fe.handleObservation(ctx, obsAt(time.Unix(1, 0)))

	test.That(t, fe.state.lastKF, test.ShouldEqual, backend.InvalidKeyframeId)
}

func TestProbeRejectsHighCorrectionRatio(t *testing.T) {
	producer := autoAcceptProducer()
	wm := inject.NewWorldModel()

	fe := newTestFrontEnd(t, producer, wm, func(from, to pointcloud.PointCloud, guess spatialmath.Pose) (spatialmath.Pose, float64, error) {
		return translatePose(1.2), 0.9, nil
	})

	// Pose far from init guess -> correction_ratio > 0.20 -> probe must not emit a factor.
	factorCalls := 0
	producer.AddFactorFunc = func(ctx context.Context, from, to backend.KeyframeId, relPose spatialmath.Pose) (backend.FactorResult, error) {
		factorCalls++
		return backend.FactorResult{Success: true, NewID: backend.FactorId(factorCalls)}, nil
	}

	fe.runProbe(context.Background(), 1, 2,
		pointcloud.FromPoints([]r3.Vector{{X: 1}}),
		pointcloud.FromPoints([]r3.Vector{{X: 2}}),
		spatialmath.Identity(), // init guess: identity, far from the registered 1.2m pose
	)

	test.That(t, factorCalls, test.ShouldEqual, 0)
}

func TestAlreadyHandledByIDAdjacency(t *testing.T) {
	test.That(t, alreadyHandled(5, 4), test.ShouldBeTrue)
	test.That(t, alreadyHandled(5, 6), test.ShouldBeTrue)
	test.That(t, alreadyHandled(5, 3), test.ShouldBeFalse)
	test.That(t, alreadyHandled(5, 10), test.ShouldBeFalse)
}

// threeNodeGraph builds a small path graph (root=10 -1m-> 20 -1m-> 30) with
// ids spaced far enough apart that alreadyHandled's id-adjacency proxy never
// short-circuits the candidate root=10/candidate=20 selected below.
func threeNodeGraph() *graph.LocalPoseGraph {
	lg := graph.New()
	lg.InsertNode(10, pointcloud.FromPoints([]r3.Vector{{X: 0}}))
	lg.InsertNode(20, pointcloud.FromPoints([]r3.Vector{{X: 1}}))
	lg.InsertNode(30, pointcloud.FromPoints([]r3.Vector{{X: 2}}))
	lg.InsertEdge(10, 20, translatePose(1))
	lg.InsertEdge(20, 30, translatePose(1))
	_ = lg.RebuildDistances(10)
	return lg
}

// TestProposeNearbyProbeSkipsWhenWorldModelReportsAdjacency exercises
// spec.md §9 Open Question 2's world-model-adjacency correction: a
// world-model-reported adjacency between root and candidate must block
// dispatch (SPEC_FULL.md's "treated as a true already-handled signal").
func TestProposeNearbyProbeSkipsWhenWorldModelReportsAdjacency(t *testing.T) {
	producer := autoAcceptProducer()
	wm := inject.NewWorldModel()
	neighborCalls := 0
	wm.EntityNeighborsFunc = func(id backend.KeyframeId) map[backend.KeyframeId]struct{} {
		neighborCalls++
		return map[backend.KeyframeId]struct{}{10: {}}
	}
	fe := newTestFrontEnd(t, producer, wm, (&scriptedRegister{}).fn)
	fe.localGraph = threeNodeGraph()

	fe.proposeNearbyProbe(context.Background(), 10)

	test.That(t, neighborCalls, test.ShouldEqual, 1)
	test.That(t, len(fe.state.checkedPairs), test.ShouldEqual, 0)
}

// TestProposeNearbyProbeDispatchesAndDedupsCandidate covers the full
// dispatch path when the world model reports no conflicting adjacency: the
// candidate pair is recorded in checkedPairs (the probe is dispatched), and
// a second call for the same root/candidate is deduped without
// re-consulting the world model.
func TestProposeNearbyProbeDispatchesAndDedupsCandidate(t *testing.T) {
	producer := autoAcceptProducer()
	wm := inject.NewWorldModel()
	neighborCalls := 0
	wm.EntityNeighborsFunc = func(id backend.KeyframeId) map[backend.KeyframeId]struct{} {
		neighborCalls++
		return nil
	}
	fe := newTestFrontEnd(t, producer, wm, (&scriptedRegister{}).fn)
	fe.localGraph = threeNodeGraph()

	fe.proposeNearbyProbe(context.Background(), 10)

	pair := newCheckedPair(10, 20)
	_, dispatched := fe.state.checkedPairs[pair]
	test.That(t, dispatched, test.ShouldBeTrue)
	test.That(t, neighborCalls, test.ShouldEqual, 1)

	fe.proposeNearbyProbe(context.Background(), 10)

	test.That(t, neighborCalls, test.ShouldEqual, 1) // deduped before the world-model check
	test.That(t, len(fe.state.checkedPairs), test.ShouldEqual, 1)
}
