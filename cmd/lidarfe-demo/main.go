// Command lidarfe-demo wires the front-end to in-process fakes for the
// back-end and world model (this module does not implement either — see
// spec.md §1) and feeds it a short synthetic scan sequence, so the full
// Observation Filter -> Odometry Stage -> Keyframe Promoter -> Local Graph
// Manager -> Nearby-KF Prober pipeline can be exercised without external
// services. Argument parsing follows the same main()/mainWithArgs split
// used throughout go.viam.com/rdk's cmd/ binaries, adapted to the standard
// flag package since this module does not carry rdk's flag helpers.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang/geo/r3"

	"go.viam.com/lidarfe/backend"
	"go.viam.com/lidarfe/config"
	"go.viam.com/lidarfe/frontend"
	"go.viam.com/lidarfe/icp"
	"go.viam.com/lidarfe/logging"
	"go.viam.com/lidarfe/spatialmath"
	"go.viam.com/lidarfe/testutils/inject"
	"go.viam.com/lidarfe/utils"
)

func main() {
	if err := mainWithArgs(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type arguments struct {
	configPath string
	numScans   int
}

func parseArgs(args []string) (arguments, error) {
	fs := flag.NewFlagSet("lidarfe-demo", flag.ContinueOnError)
	var a arguments
	fs.StringVar(&a.configPath, "config", "", "path to a front-end YAML config (optional; built-in defaults used if empty)")
	fs.IntVar(&a.numScans, "scans", 20, "number of synthetic scans to feed the front-end")
	if err := fs.Parse(args); err != nil {
		return arguments{}, err
	}
	return a, nil
}

func mainWithArgs(ctx context.Context, args []string) error {
	a, err := parseArgs(args)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := logging.New("lidarfe-demo")

	params, err := loadParams(a.configPath)
	if err != nil {
		return err
	}
	logger.Infow("loaded config",
		"min_dist_xyz_between_keyframes", params.MinDistXYZBetweenKeyframes,
		"max_KFs_local_graph", params.MaxKFsLocalGraph,
		"mrpt_icp.thresholdAng_deg", utils.RadToDeg(params.ThresholdAng))

	fe := frontend.New(
		params,
		fakeProducer(logger),
		fakeWorldModel(),
		frontend.NewRegistration(icpOptions(params), params.DecimateToPointCount),
		logger,
	)
	defer fe.Stop()

	runSyntheticScans(fe, params.RawSensorLabel, a.numScans)

	// Give the odometry pool's single worker and the best-effort probe
	// workers a moment to finish draining before the deferred Stop blocks
	// on their completion.
	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
	}
	return nil
}

func loadParams(path string) (config.Params, error) {
	if path == "" {
		return config.Parse([]byte(`
params:
  min_dist_xyz_between_keyframes: 0.75
  min_icp_goodness: 0.3
  max_KFs_local_graph: 8
  raw_sensor_label: demo-lidar
`))
	}
	return config.Load(path)
}

func icpOptions(p config.Params) icp.Options {
	return icp.Options{
		MaxIterations: p.MRPTICP.MaxIterations,
		ThresholdDist: p.MRPTICP.ThresholdDist,
		ThresholdAng:  p.ThresholdAng,
		ALFA:          p.MRPTICP.ALFA,
	}
}

// fakeProducer stands in for the external SLAM back-end (spec.md §1): it
// mints monotonically increasing ids and always accepts.
func fakeProducer(logger logging.Logger) *inject.Producer {
	p := inject.NewProducer()
	var nextKF backend.KeyframeId = 1
	var nextFactor backend.FactorId = 1
	p.AddKeyFrameFunc = func(ctx context.Context, kf backend.Keyframe) (backend.KeyframeResult, error) {
		id := nextKF
		nextKF++
		logger.Infow("keyframe minted", "id", id, "timestamp", kf.Timestamp)
		return backend.KeyframeResult{Success: true, NewID: id}, nil
	}
	p.AddFactorFunc = func(ctx context.Context, from, to backend.KeyframeId, relPose spatialmath.Pose) (backend.FactorResult, error) {
		id := nextFactor
		nextFactor++
		logger.Infow("factor added", "id", id, "from", from, "to", to, "translation", relPose.Translation())
		return backend.FactorResult{Success: true, NewID: id}, nil
	}
	return p
}

// fakeWorldModel stands in for the external shared map store (spec.md §1):
// it reports no neighbors, since this demo runs a single front-end
// instance with nothing else populating the world model.
func fakeWorldModel() *inject.WorldModel {
	return inject.NewWorldModel()
}

type syntheticSource struct {
	points []r3.Vector
}

func (s syntheticSource) Points() ([]r3.Vector, bool) { return s.points, true }

// runSyntheticScans feeds the front-end a sequence of scans that drift
// along +X by 0.4 m per scan with a little noise; with the built-in 0.75 m
// keyframe threshold, roughly every other scan is promoted.
func runSyntheticScans(fe *frontend.FrontEnd, sensorLabel string, numScans int) {
	rng := rand.New(rand.NewSource(1))
	base := time.Now()
	for i := 0; i < numScans; i++ {
		offset := float64(i) * 0.4
		var pts []r3.Vector
		for j := 0; j < 50; j++ {
			pts = append(pts, r3.Vector{
				X: offset + rng.Float64()*0.05,
				Y: rng.Float64() * 2,
				Z: rng.Float64() * 2,
			})
		}
		fe.OnObservation(frontend.Observation{
			Timestamp:   base.Add(time.Duration(i) * 200 * time.Millisecond),
			SensorLabel: sensorLabel,
			Source:      syntheticSource{points: pts},
		})
		time.Sleep(20 * time.Millisecond)
	}
}
