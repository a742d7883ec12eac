package dac

import "fmt"

// Feature identifies a controllable capability of the DAC chip.
type Feature string

// Features this build knows about. Which of them a given unit actually
// supports is discovered at construction by probing control files.
const (
	// FeatureAVCVolume is the automatic volume control attenuation,
	// a signed dB range.
	FeatureAVCVolume Feature = "avc_volume"

	// FeatureHifiMode is the discrete output-routing mode selector.
	FeatureHifiMode Feature = "hifi_mode"
)

// AllFeatures returns every known feature in probe order.
// The supported-feature catalog preserves this order.
func AllFeatures() []Feature {
	return []Feature{FeatureAVCVolume, FeatureHifiMode}
}

// ParseFeature converts a string to a Feature.
// Returns ErrUnknownFeature for anything not in AllFeatures.
func ParseFeature(s string) (Feature, error) {
	for _, f := range AllFeatures() {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFeature, s)
}

// Property store keys for canonical feature values. Other system components
// read these by name; they are a published convention and must not change.
const (
	PropKeyAVCVolume = "persist.vendor.lge.dac.avc.volume"
	PropKeyHifiMode  = "persist.vendor.lge.dac.hifi.mode"
)

// ValueSpace describes the legal value space for one feature.
// Exactly one of Range or Modes is populated, fixed by the feature's kind.
type ValueSpace struct {
	Range *Range `json:"range,omitempty"`
	Modes []Mode `json:"modes,omitempty"`
}

// Range describes a continuous integer value space with inclusive bounds.
// Values are assumed reachable by Min + k*Step.
type Range struct {
	Min  int32 `json:"min"`
	Max  int32 `json:"max"`
	Step int32 `json:"step"`
}

// Mode is one (display label, hardware code) pair of an enumerated feature.
// The label is user-facing; the code is the literal value written through
// the control path.
type Mode struct {
	Label string `json:"label"`
	Code  string `json:"code"`
}

// featureSpec ties a feature to its control file, persistence key, and
// hardware value transform.
type featureSpec struct {
	// suffix is appended to the discovered base path to form the
	// control-file path.
	suffix string

	// propKey is the property store key holding the canonical value.
	propKey string

	// def is the value used when the property has never been set.
	def int32

	// hwValue converts a canonical (public) value to the raw value the
	// kernel driver expects.
	hwValue func(int32) int32
}

var featureSpecs = map[Feature]featureSpec{
	FeatureAVCVolume: {
		suffix:  "/avc_volume",
		propKey: PropKeyAVCVolume,
		def:     0,
		// The kernel wants the attenuation magnitude; the public API uses
		// negative-or-zero dB values. The property store keeps the signed
		// canonical value.
		hwValue: func(v int32) int32 { return -v },
	},
	FeatureHifiMode: {
		suffix:  "/hifi_mode",
		propKey: PropKeyHifiMode,
		def:     0,
		hwValue: func(v int32) int32 { return v },
	},
}

// avcVolumeSpace returns the AVC volume range: -24..0 dB in 1 dB steps.
func avcVolumeSpace() ValueSpace {
	return ValueSpace{Range: &Range{Min: -24, Max: 0, Step: 1}}
}

// hifiModes is the fixed mode table, in presentation order.
var hifiModes = []Mode{
	{Label: "Normal", Code: "0"},
	{Label: "High Impedance", Code: "1"},
	{Label: "AUX", Code: "2"},
}

func hifiModeSpace() ValueSpace {
	return ValueSpace{Modes: append([]Mode(nil), hifiModes...)}
}
