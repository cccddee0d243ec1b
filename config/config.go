// Package config holds the ambient, non-algorithmic concerns that
// spec.md §9 explicitly keeps outside the hierarchy-construction core:
// logging verbosity, version reporting, and named tunable presets
// (piecewise-linear truncation K, LCA sparse-table-block size B, ...).
//
// No package in this module imports config for algorithmic decisions;
// every tunable it carries also has a hard-coded default usable without
// ever touching config, so the core stays a pure, side-effect-free
// library per spec.md §5.
package config

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Version is the module's semantic version, reported by BuildInfo.
// The host binding layer (out of scope for this core) is the only
// intended consumer.
const Version = "0.1.0"

// BuildInfo is a minimal stand-in for the "version reporting"
// collaborator named out-of-scope by spec.md §1 — only its interface
// (a string payload) matters to the core.
func BuildInfo() string {
	return fmt.Sprintf("higra-go %s", Version)
}

var logger = newDefaultLogger()

func newDefaultLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l
}

// Logger returns the package-level logger that the few logging call
// sites in this module (hierarchy builders such as bpt and genbpt) call
// directly. Safe for concurrent use.
func Logger() *logrus.Logger {
	return logger
}

// SetLevel adjusts the package-level logger's verbosity. Accepts the
// logrus level names ("trace","debug","info","warn","error").
func SetLevel(name string) error {
	lvl, err := logrus.ParseLevel(name)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger.SetLevel(lvl)
	return nil
}

// Presets holds named, tunable default parameters shared by several
// hierarchy algorithms. The zero value has every field zero/empty; use
// DefaultPresets() for the built-in defaults.
type Presets struct {
	// PiecewiseLinearCap bounds the number of rightmost pieces kept by a
	// piecewise-linear energy function (optimalcut package), per
	// spec.md §4.11 ("truncated to the K rightmost pieces, default K=10").
	PiecewiseLinearCap int `yaml:"piecewise_linear_cap"`

	// LCABlockSize is the default block size B for LCA_sparse_table_block
	// (spec.md §4.6).
	LCABlockSize int `yaml:"lca_block_size"`

	// LogLevel is the logrus level name applied by Load.
	LogLevel string `yaml:"log_level"`
}

// DefaultPresets returns the built-in defaults used when no config file
// is loaded: K=10 (spec.md §4.11 default), B=32 (a conventional
// sqrt(N)-scale block size for small-to-medium hierarchies), info logging.
func DefaultPresets() Presets {
	return Presets{
		PiecewiseLinearCap: 10,
		LCABlockSize:       32,
		LogLevel:           "info",
	}
}

// Load reads a YAML presets file from path and applies its LogLevel to
// the package logger. Missing fields fall back to DefaultPresets().
func Load(path string) (Presets, error) {
	p := DefaultPresets()
	raw, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if p.LogLevel != "" {
		if err := SetLevel(p.LogLevel); err != nil {
			return p, err
		}
	}
	return p, nil
}
