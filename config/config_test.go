package config

import (
	"math"
	"testing"

	"go.viam.com/test"
)

const minimalYAML = `
params:
  min_dist_xyz_between_keyframes: 1.0
  max_KFs_local_graph: 5
  raw_sensor_label: lidar0
`

func TestParseAppliesDefaults(t *testing.T) {
	p, err := Parse([]byte(minimalYAML))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p.MRPTICP.MaxIterations, test.ShouldEqual, 50)
	test.That(t, p.MRPTICP.ThresholdDist, test.ShouldEqual, 1.25)
	test.That(t, math.Abs(p.ThresholdAng-(1*math.Pi/180)) < 1e-9, test.ShouldBeTrue)
	test.That(t, p.MinTimeBetweenScans, test.ShouldEqual, 0.0)
	test.That(t, p.MinICPGoodness, test.ShouldEqual, 0.0)
}

func TestParseOverridesDefaults(t *testing.T) {
	doc := minimalYAML + "  mrpt_icp:\n    maxIterations: 10\n    thresholdAng: 5\n"
	p, err := Parse([]byte(doc))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p.MRPTICP.MaxIterations, test.ShouldEqual, 10)
	test.That(t, math.Abs(p.ThresholdAng-(5*math.Pi/180)) < 1e-9, test.ShouldBeTrue)
}

func TestParseRequiresMinDist(t *testing.T) {
	_, err := Parse([]byte("params:\n  max_KFs_local_graph: 5\n  raw_sensor_label: lidar0\n"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestParseRequiresSensorLabel(t *testing.T) {
	_, err := Parse([]byte("params:\n  min_dist_xyz_between_keyframes: 1.0\n  max_KFs_local_graph: 5\n"))
	test.That(t, err, test.ShouldNotBeNil)
}
