// Package config loads the front-end's tunable parameters from a YAML
// document (spec.md §6), the way
// go.viam.com/rdk/services/slam's ORBsettings is built from a config map —
// struct tags plus explicit defaulting — but backed directly by
// gopkg.in/yaml.v3 unmarshaling instead of a per-key accessor helper, since
// this document's shape is flat and fully known up front.
package config

import (
	"os"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"go.viam.com/lidarfe/utils"
)

// ICPOptions mirrors the mrpt_icp.* keys of spec.md §6.
type ICPOptions struct {
	MaxIterations int     `yaml:"maxIterations"`
	ThresholdDist float64 `yaml:"thresholdDist"`
	// ThresholdAngDeg is read in degrees and converted to radians by Load,
	// matching the original source's convention of specifying angle
	// thresholds in degrees in the YAML document.
	ThresholdAngDeg float64 `yaml:"thresholdAng"`
	ALFA            float64 `yaml:"ALFA"`
}

// Params is the `params:` block of spec.md §6.
type Params struct {
	MinDistXYZBetweenKeyframes float64    `yaml:"min_dist_xyz_between_keyframes"`
	MinTimeBetweenScans        float64    `yaml:"min_time_between_scans"`
	MinICPGoodness             float64    `yaml:"min_icp_goodness"`
	DecimateToPointCount       int        `yaml:"decimate_to_point_count"`
	MaxKFsLocalGraph           int        `yaml:"max_KFs_local_graph"`
	RawSensorLabel             string     `yaml:"raw_sensor_label"`
	MRPTICP                    ICPOptions `yaml:"mrpt_icp"`

	// ThresholdAng holds ICPOptions.ThresholdAngDeg converted to radians;
	// populated by Load, not read directly from YAML.
	ThresholdAng float64 `yaml:"-"`
}

// document is the top-level `params:` wrapper.
type document struct {
	Params Params `yaml:"params"`
}

// Load reads and validates a YAML configuration document from path.
func Load(path string) (Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Params{}, errors.Wrap(err, "config: read file")
	}
	return Parse(data)
}

// Parse decodes a YAML document already read into memory, applying
// defaults and validation (spec.md §6).
func Parse(data []byte) (Params, error) {
	var doc document
	doc.Params.MRPTICP = defaultICPOptions()
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Params{}, errors.Wrap(err, "config: unmarshal")
	}
	p := doc.Params
	p.ThresholdAng = utils.DegToRad(p.MRPTICP.ThresholdAngDeg)

	// Collect every violated requirement instead of stopping at the first,
	// the way placeholder_replacement.go reports every malformed
	// placeholder in one pass rather than forcing an operator through
	// repeated edit-reload cycles to discover them one at a time.
	var errs error
	if p.MinDistXYZBetweenKeyframes <= 0 {
		errs = multierr.Append(errs, errors.New("config: min_dist_xyz_between_keyframes is required"))
	}
	if p.MaxKFsLocalGraph <= 0 {
		errs = multierr.Append(errs, errors.New("config: max_KFs_local_graph is required"))
	}
	if p.RawSensorLabel == "" {
		errs = multierr.Append(errs, errors.New("config: raw_sensor_label is required"))
	}
	if errs != nil {
		return Params{}, errs
	}
	return p, nil
}

func defaultICPOptions() ICPOptions {
	return ICPOptions{
		MaxIterations:   50,
		ThresholdDist:   1.25,
		ThresholdAngDeg: 1,
		ALFA:            0.01,
	}
}
