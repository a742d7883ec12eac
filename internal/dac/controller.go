package dac

import (
	"context"
	"errors"
	"sync"

	"github.com/hifidac/dacbroker/internal/propstore"
)

// Logger defines the logging interface used by the Controller.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Deps holds the dependencies required by the Controller.
type Deps struct {
	// BasePath is the hardware instance directory from ResolveBasePath.
	// Empty means discovery failed; the controller comes up with an empty
	// catalog and every operation reports "unsupported".
	BasePath string

	// Props is the persistent property store (required).
	Props propstore.Store

	// Logger is optional; a no-op logger is used when nil.
	Logger Logger

	// OnChange, when set, is called after every successful value write
	// with the feature and its new canonical value. Used to publish state
	// to external observers (MQTT, telemetry).
	OnChange func(Feature, int32)
}

// Controller owns the supported-feature catalog and mediates all get/set
// operations against the DAC's control files and the property store.
//
// The catalog is populated once at construction and is immutable afterwards:
// features never appear or disappear while the process runs.
//
// A single mutex serializes all operations. The hardware-file write and the
// property-store write are not atomic as a pair, so unserialized concurrent
// calls could observe a value landed in one home but not the other.
type Controller struct {
	mu       sync.Mutex
	props    propstore.Store
	logger   Logger
	onChange func(Feature, int32)

	basePath  string
	paths     map[Feature]string
	supported []Feature
}

// New creates the Controller and runs the construction protocol: derive a
// control-file path for each known feature, probe which files exist on this
// unit, and for each present feature push the persisted canonical value
// back into hardware. Property state survives restarts while hardware
// registers reset, so the store is the seed source at startup.
//
// A missing base path is not an error: the controller is returned with an
// empty catalog (degraded-capability state).
func New(ctx context.Context, deps Deps) (*Controller, error) {
	if deps.Props == nil {
		return nil, errors.New("dac: property store is required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	c := &Controller{
		props:    deps.Props,
		logger:   logger,
		onChange: deps.OnChange,
		basePath: deps.BasePath,
		paths:    make(map[Feature]string),
	}

	if c.basePath == "" {
		c.logger.Error("no DAC control directory found, no features supported")
		return c, nil
	}
	c.logger.Info("DAC control directory resolved", "path", c.basePath)

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, f := range AllFeatures() {
		spec := featureSpecs[f]
		path := c.basePath + spec.suffix

		if !controlFileExists(path) {
			c.logger.Debug("control file absent", "feature", f, "path", path)
			continue
		}

		c.paths[f] = path
		c.supported = append(c.supported, f)
		c.logger.Info("feature supported", "feature", f, "path", path)

		// Synchronize: persisted canonical value wins over whatever the
		// hardware reset to.
		c.writeLocked(ctx, f, propstore.GetInt32(ctx, c.props, spec.propKey, spec.def))
	}

	return c, nil
}

// BasePath returns the resolved hardware instance directory, or empty when
// discovery failed.
func (c *Controller) BasePath() string {
	return c.basePath
}

// ListSupportedFeatures returns the catalog contents in probe order.
// The returned slice is a copy; callers can safely modify it.
func (c *Controller) ListSupportedFeatures() []Feature {
	c.mu.Lock()
	defer c.mu.Unlock()

	features := make([]Feature, len(c.supported))
	copy(features, c.supported)
	return features
}

// IsSupported reports whether f is in the supported-feature catalog.
func (c *Controller) IsSupported(f Feature) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.supportedLocked(f)
}

// ValueSpace returns the legal value space for f.
// The second return is false for features not in the catalog; no value
// space is ever reported for an unsupported feature.
func (c *Controller) ValueSpace(f Feature) (ValueSpace, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.supportedLocked(f) {
		c.logger.Error("value space requested for unsupported feature", "feature", f)
		return ValueSpace{}, false
	}

	switch f {
	case FeatureAVCVolume:
		return avcVolumeSpace(), true
	case FeatureHifiMode:
		return hifiModeSpace(), true
	default:
		return ValueSpace{}, false
	}
}

// GetValue returns the canonical current value of f from the property
// store, falling back to the feature's default when the key is absent or
// malformed. Returns -1 for features not in the catalog.
func (c *Controller) GetValue(ctx context.Context, f Feature) int32 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.supportedLocked(f) {
		c.logger.Error("value requested for unsupported feature", "feature", f)
		return -1
	}

	spec := featureSpecs[f]
	return propstore.GetInt32(ctx, c.props, spec.propKey, spec.def)
}

// SetValue writes value to f's hardware control file and mirrors the
// canonical value into the property store. Returns false for features not
// in the catalog and when the property write fails; a hardware write
// failure alone is logged but does not fail the call.
//
// The value is written through as-is: no bounds check against the feature's
// value space is performed. The hardware clamps or ignores invalid writes.
func (c *Controller) SetValue(ctx context.Context, f Feature, value int32) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.supportedLocked(f) {
		c.logger.Error("value set for unsupported feature", "feature", f, "value", value)
		return false
	}

	return c.writeLocked(ctx, f, value)
}

// supportedLocked checks catalog membership. Caller must hold mu.
func (c *Controller) supportedLocked(f Feature) bool {
	for _, s := range c.supported {
		if s == f {
			return true
		}
	}
	return false
}

// writeLocked performs the dual-homed write for a supported feature:
// transformed raw value into the hardware file, canonical value into the
// property store. The overall result is the property write's success.
// Caller must hold mu.
func (c *Controller) writeLocked(ctx context.Context, f Feature, value int32) bool {
	spec := featureSpecs[f]

	if err := writeControlFile(c.paths[f], spec.hwValue(value)); err != nil {
		c.logger.Error("hardware write failed",
			"feature", f,
			"path", c.paths[f],
			"error", err,
		)
	}

	if err := propstore.SetInt32(ctx, c.props, spec.propKey, value); err != nil {
		c.logger.Error("property write failed",
			"feature", f,
			"key", spec.propKey,
			"error", err,
		)
		return false
	}

	if c.onChange != nil {
		c.onChange(f, value)
	}
	return true
}
