package frontend

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"go.viam.com/lidarfe/backend"
	"go.viam.com/lidarfe/config"
	"go.viam.com/lidarfe/graph"
	"go.viam.com/lidarfe/logging"
	"go.viam.com/lidarfe/pointcloud"
	"go.viam.com/lidarfe/spatialmath"
	"go.viam.com/lidarfe/utils"
	"go.viam.com/lidarfe/workerpool"
	"go.viam.com/lidarfe/worldmodel"
)

// FrontEnd is the LiDAR Odometry & Local Pose-Graph Front-End (spec.md §1).
// FrontEndState is mutated only on the odometry pool's single worker
// (spec.md §5); the local pose graph's edge insertion is additionally
// reachable from probe workers, and all local-graph access is serialized by
// graphMu.
type FrontEnd struct {
	cfg        config.Params
	producer   backend.Producer
	worldModel worldmodel.Consumer
	register   Registration
	logger     logging.Logger

	graphMu     sync.Mutex
	localGraph  *graph.LocalPoseGraph
	state       *FrontEndState
	odometry    *workerpool.OdometryPool
	probes      *workerpool.ProbePool
	dropWarning *logging.Throttle
}

// New constructs a FrontEnd and starts its two worker pools. Callers must
// call Stop when done.
func New(
	cfg config.Params,
	producer backend.Producer,
	worldModel worldmodel.Consumer,
	register Registration,
	logger logging.Logger,
) *FrontEnd {
	return &FrontEnd{
		cfg:         cfg,
		producer:    producer,
		worldModel:  worldModel,
		register:    register,
		logger:      logger,
		localGraph:  graph.New(),
		state:       newFrontEndState(),
		odometry:    workerpool.NewOdometryPool(logger.Sublogger("odometry")),
		probes:      workerpool.NewProbePool(4, logger.Sublogger("prober")),
		dropWarning: logging.NewThrottle(5 * time.Second),
	}
}

// Stop drains both pools concurrently, the way operation.Operation's
// goroutine-per-concern shutdown paths fan out independent stops rather than
// serializing them: the odometry pool's in-flight registration and the
// probe pool's in-flight probes have no ordering dependency on each other.
func (fe *FrontEnd) Stop() {
	var g errgroup.Group
	g.Go(func() error { fe.odometry.Stop(); return nil })
	g.Go(func() error { fe.probes.Stop(); return nil })
	_ = g.Wait()
}

// OnObservation is the front-end's ingress point (spec.md §6), implementing
// the Observation Filter (spec.md §4.1): wrong-sensor observations are
// dropped silently, and observations are dropped with a throttled warning
// when the odometry pool already holds more than one pending task.
func (fe *FrontEnd) OnObservation(obs Observation) {
	if obs.SensorLabel != fe.cfg.RawSensorLabel {
		return
	}
	accepted := fe.odometry.TrySubmit(func(ctx context.Context) {
		fe.handleObservation(ctx, obs)
	})
	if !accepted && fe.dropWarning.Allow() {
		fe.logger.Warnw("dropping observation, odometry pool overloaded",
			"sensor_label", obs.SensorLabel, "timestamp", obs.Timestamp)
	}
}

// handleObservation is the Odometry Stage (spec.md §4.2), run exclusively
// on the odometry pool's single worker. Each call is tagged with its own
// operation id, the same uuid.UUID-per-unit-of-work correlation scheme
// operation.Operation uses to tie a request's log lines together across
// goroutine hops (here: odometry stage -> keyframe promotion -> probe).
func (fe *FrontEnd) handleObservation(ctx context.Context, obs Observation) {
	opID := uuid.New()
	if !fe.state.lastObsTime.IsZero() {
		elapsed := obs.Timestamp.Sub(fe.state.lastObsTime).Seconds()
		if elapsed < fe.cfg.MinTimeBetweenScans {
			return
		}
	}

	pc, ok := pointcloud.FromSource(obs.Source)
	if !ok {
		fe.logger.Warnw("observation conversion failed", "timestamp", obs.Timestamp)
		return
	}

	prevTime, prevPoints := fe.state.lastObsTime, fe.state.lastPoints
	fe.state.lastObs = &obs
	fe.state.lastObsTime = obs.Timestamp
	fe.state.lastPoints = pc

	if prevPoints == nil {
		return // bootstrap: no previous scan to register against
	}

	dt := obs.Timestamp.Sub(prevTime).Seconds()
	guess := predictGuess(fe.state.lastTwist, dt)
	stop := logging.WarnIfSlow(fe.logger, "odometry registration still running", "op_id", opID)
	relPose, goodness, err := fe.register(prevPoints, pc, guess)
	stop()
	if err != nil {
		fe.logger.Warnw("registration failed", "op_id", opID, "error", err)
		return
	}

	fe.state.lastTwist = updateTwist(fe.state.lastTwist, relPose, dt)
	fe.state.accumSinceKF = fe.state.accumSinceKF.Compose(relPose)

	fe.maybePromote(ctx, opID, obs, pc, goodness)
}

// maybePromote is the Keyframe Promoter (spec.md §4.4).
func (fe *FrontEnd) maybePromote(ctx context.Context, opID uuid.UUID, obs Observation, pc pointcloud.PointCloud, goodness float64) {
	if !(goodness > fe.cfg.MinICPGoodness && fe.state.accumSinceKF.TranslationNorm() > fe.cfg.MinDistXYZBetweenKeyframes) {
		return
	}

	kfResult, err := fe.producer.AddKeyFrame(ctx, backend.Keyframe{
		Timestamp:    obs.Timestamp,
		Observations: []pointcloud.PointCloud{pc},
	})
	if err == nil && (!kfResult.Success || kfResult.NewID == backend.InvalidKeyframeId) {
		err = errors.Wrapf(ErrBackendRejected, "AddKeyFrame: success=%v id=%v", kfResult.Success, kfResult.NewID)
	}
	if err != nil {
		fe.logRejection(opID, "back-end rejected AddKeyFrame", err)
		return
	}
	newKF := kfResult.NewID

	fe.graphMu.Lock()
	fe.localGraph.InsertNode(newKF, pc)
	fe.graphMu.Unlock()

	if fe.state.lastKF != backend.InvalidKeyframeId {
		factorResult, err := fe.producer.AddFactor(ctx, fe.state.lastKF, newKF, fe.state.accumSinceKF)
		if err == nil && (!factorResult.Success || factorResult.NewID == backend.InvalidFactorId) {
			err = errors.Wrap(ErrBackendRejected, "AddFactor")
		}
		if err != nil {
			fe.logRejection(opID, "back-end rejected AddFactor", err)
			return
		}
		fe.graphMu.Lock()
		fe.localGraph.InsertEdge(fe.state.lastKF, newKF, fe.state.accumSinceKF)
		fe.graphMu.Unlock()
	}

	fe.state.accumSinceKF = spatialmath.Identity()
	fe.state.lastKF = newKF

	fe.graphMu.Lock()
	size := fe.localGraph.Size()
	fe.graphMu.Unlock()
	if size > 1 {
		fe.proposeNearbyProbe(ctx, newKF)
	}
}

// proposeNearbyProbe is the Nearby-KF Prober (spec.md §4.6).
func (fe *FrontEnd) proposeNearbyProbe(ctx context.Context, root backend.KeyframeId) {
	fe.graphMu.Lock()
	if err := fe.localGraph.RebuildDistances(root); err != nil {
		fe.graphMu.Unlock()
		fe.logger.Errorw("rebuild distances failed", "error", err)
		return
	}
	fe.localGraph.EvictFar(fe.cfg.MaxKFsLocalGraph)
	dists := fe.localGraph.DistancesFromRoot()
	fe.graphMu.Unlock()

	if len(dists) < 2 {
		return
	}
	sort.Slice(dists, func(i, j int) bool { return dists[i].Distance < dists[j].Distance })
	candidate := dists[len(dists)/2].ID
	if candidate == root {
		return
	}

	if alreadyHandled(root, candidate) {
		return
	}
	pair := newCheckedPair(root, candidate)
	if _, ok := fe.state.checkedPairs[pair]; ok {
		return
	}

	fe.worldModel.Lock()
	neighbors := fe.worldModel.EntityNeighbors(candidate)
	fe.worldModel.Unlock()
	if _, ok := neighbors[root]; ok {
		return
	}

	fe.state.checkedPairs[pair] = struct{}{}

	fe.graphMu.Lock()
	fromPC, _ := fe.localGraph.PointCloud(root)
	toPC, _ := fe.localGraph.PointCloud(candidate)
	initGuess, _ := fe.localGraph.Pose(candidate)
	fe.graphMu.Unlock()

	fe.probes.Submit(func(ctx context.Context) {
		fe.runProbe(ctx, root, candidate, fromPC, toPC, initGuess)
	})
}

// alreadyHandled reports whether root and candidate are adjacent by id
// numerics, a cheap proxy for "handled by the odometry edge already"
// (spec.md §4.6).
func alreadyHandled(root, candidate backend.KeyframeId) bool {
	diff := utils.AbsInt64(int64(root) - int64(candidate))
	return diff < 2
}

// runProbe is the Probe Worker (spec.md §4.7). Each call is tagged with its
// own operation id, the same correlation scheme handleObservation uses.
func (fe *FrontEnd) runProbe(
	ctx context.Context,
	from, to backend.KeyframeId,
	fromPC, toPC pointcloud.PointCloud,
	initGuess spatialmath.Pose,
) {
	opID := uuid.New()
	stop := logging.WarnIfSlow(fe.logger, "probe registration still running", "op_id", opID, "from", from, "to", to)
	pose, goodness, err := fe.register(fromPC, toPC, initGuess)
	stop()
	if err != nil {
		fe.logger.Warnw("probe registration failed", "op_id", opID, "from", from, "to", to, "error", err)
		return
	}

	correction := pose.Sub(initGuess).TranslationNorm()
	correctionRatio := correction / (initGuess.TranslationNorm() + 0.01)
	if !(goodness > fe.cfg.MinICPGoodness && correctionRatio < 0.20) {
		return
	}

	factorResult, err := fe.producer.AddFactor(ctx, from, to, pose)
	if err == nil && (!factorResult.Success || factorResult.NewID == backend.InvalidFactorId) {
		err = errors.Wrap(ErrBackendRejected, "AddFactor")
	}
	if err != nil {
		fe.logRejection(opID, "back-end rejected AddFactor", err)
		return
	}

	fe.graphMu.Lock()
	fe.localGraph.InsertEdge(from, to, pose)
	fe.graphMu.Unlock()
}
