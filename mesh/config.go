package mesh

import (
	"encoding/json"
	"math"
	"os"
	"strings"
	"unicode"

	"github.com/pkg/errors"

	"go.viam.com/pairmesh/logging"
	"go.viam.com/pairmesh/spatialmath"
)

// Symmetry prunes octants of the root cube that the pair's symmetry makes redundant.
type Symmetry int

// The supported symmetries.
const (
	// SymmetryNone keeps every octant.
	SymmetryNone Symmetry = iota
	// SymmetryZ drops the octants with negative z.
	SymmetryZ
	// SymmetryYZ drops the octants with negative y or z.
	SymmetryYZ
	// SymmetryXYZ keeps only the all-positive octant.
	SymmetryXYZ
)

// prunes reports whether root octant i is dropped.
func (s Symmetry) prunes(i int) bool {
	switch s {
	case SymmetryZ:
		return spatialmath.OctantHasNegative(i, spatialmath.AxisZ)
	case SymmetryYZ:
		return spatialmath.OctantHasNegative(i, spatialmath.AxisY|spatialmath.AxisZ)
	case SymmetryXYZ:
		return spatialmath.OctantHasNegative(i, spatialmath.AxisX|spatialmath.AxisY|spatialmath.AxisZ)
	case SymmetryNone:
	}
	return false
}

// DiagnosticFunc receives the worst test configuration of a node whose interpolation error
// exceeded the cutoff of the given level, each time that error is a new maximum for the run.
type DiagnosticFunc func(level Level, conf *Configuration, err float64)

// MaxDepth caps how deep refinement may subdivide each tree.
type MaxDepth struct {
	Position int `json:"position"`
	Axis     int `json:"axis"`
	Angle    int `json:"angle"`
}

func (d MaxDepth) of(level Level) int {
	switch level {
	case PositionLevel:
		return d.Position
	case AxisLevel:
		return d.Axis
	case AngleLevel:
		return d.Angle
	}
	return 0
}

// Config describes a mesh.
type Config struct {
	// Name prefixes every path.
	Name string `json:"name"`
	// Size is the half side of the root cube, centred at the origin.
	Size     float64  `json:"size"`
	Symmetry Symmetry `json:"symmetry"`
	// ShortRange and LongRange are squared distances. Closer configurations take HighValues,
	// farther ones ZeroValues, and neither is sent to the evaluator.
	ShortRange float64 `json:"short_range"`
	LongRange  float64 `json:"long_range"`
	// ContactCellSize is the largest octree cell that may skip refinement when its test points
	// sit on the short-range shell.
	ContactCellSize float64                `json:"contact_cell_size"`
	AreaPolicy      spatialmath.AreaPolicy `json:"area_policy"`
	MaxDepth        MaxDepth               `json:"max_depth"`
	// Workers bounds concurrent evaluator calls.
	Workers int `json:"workers"`
	// Database, when set, receives every batch of newly evaluated configurations.
	Database string `json:"database,omitempty"`
	// LogLevel, when set, overrides the level of the grid's logger.
	LogLevel *logging.Level `json:"log_level,omitempty"`

	Diagnostic DiagnosticFunc `json:"-"`
}

// DefaultConfig returns the settings of a water-water mesh.
func DefaultConfig() Config {
	return Config{
		Name:            "wtr_wtr",
		Size:            12,
		ShortRange:      6.25,
		LongRange:       144,
		ContactCellSize: 1,
		AreaPolicy:      spatialmath.SphericalArea,
		MaxDepth: MaxDepth{
			Position: 6,
			Axis:     8,
			Angle:    8,
		},
		Workers: 4,
	}
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate() error {
	if cfg.Name == "" {
		return newConfigurationError("name is required")
	}
	if strings.IndexFunc(cfg.Name, func(r rune) bool {
		return unicode.IsDigit(r) || unicode.IsSpace(r) || strings.ContainsRune("TRNC", r)
	}) >= 0 {
		return newConfigurationError("name %q may not contain digits, whitespace or path markers", cfg.Name)
	}
	if !(cfg.Size > 0) || math.IsInf(cfg.Size, 0) {
		return newConfigurationError("size must be positive and finite, got %v", cfg.Size)
	}
	if cfg.Symmetry < SymmetryNone || cfg.Symmetry > SymmetryXYZ {
		return newConfigurationError("symmetry %d is not one of 0, 1, 2, 3", cfg.Symmetry)
	}
	if cfg.ShortRange < 0 {
		return newConfigurationError("short_range must not be negative, got %v", cfg.ShortRange)
	}
	if !(cfg.LongRange > cfg.ShortRange) {
		return newConfigurationError("long_range (%v) must exceed short_range (%v)", cfg.LongRange, cfg.ShortRange)
	}
	if cfg.ContactCellSize < 0 {
		return newConfigurationError("contact_cell_size must not be negative, got %v", cfg.ContactCellSize)
	}
	if err := cfg.AreaPolicy.Validate(); err != nil {
		return errors.Wrap(ErrConfiguration, err.Error())
	}
	for _, level := range Levels {
		if cfg.MaxDepth.of(level) < level.initialDepth() {
			return newConfigurationError("max_depth.%s must be at least %d", level, level.initialDepth())
		}
	}
	if cfg.Workers < 1 {
		return newConfigurationError("workers must be at least 1, got %d", cfg.Workers)
	}
	return nil
}

// ReadConfig reads a JSON config file on top of DefaultConfig.
func ReadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "cannot read config")
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "cannot parse config %q", path)
	}
	return cfg, cfg.Validate()
}
