package pattern

import (
	"errors"
	"fmt"

	"github.com/ironsheep/textile-qc-mcp/internal/scoring"
)

// Method names one of the four scored similarity methods.
type Method string

// Scored methods. The names match scoring.PatternMethod.
const (
	SSIM       Method = "ssim"
	Gradient   Method = "gradient"
	Phase      Method = "phase"
	Structural Method = "structural"
)

// Methods lists every scored method in pipeline order.
var Methods = []Method{SSIM, Gradient, Phase, Structural}

// Default configuration values.
const (
	DefaultPass            = 85.0
	DefaultConditional     = 70.0
	DefaultGlobalThreshold = 75.0

	// conditionalBand is how far below the global threshold the composite
	// may fall and still be CONDITIONAL.
	conditionalBand = 15.0

	methodWeight = 0.25
)

// ErrInvalidConfig wraps every Validate failure.
var ErrInvalidConfig = errors.New("invalid pattern configuration")

// Config controls one pattern analysis.
type Config struct {
	// Thresholds are keyed by method name. Missing methods use the defaults.
	Thresholds map[string]scoring.Thresholds `json:"thresholds" yaml:"thresholds"`

	// GlobalThreshold is the composite pass cutoff.
	GlobalThreshold float64 `json:"global_threshold" yaml:"global_threshold"`

	// Methods selects the scored methods. Empty runs all four.
	Methods []Method `json:"methods,omitempty" yaml:"methods,omitempty"`

	DisableFourier bool `json:"disable_fourier,omitempty" yaml:"disable_fourier,omitempty"`
	DisableGLCM    bool `json:"disable_glcm,omitempty" yaml:"disable_glcm,omitempty"`

	// Artifacts enables the diff, boundary, spectrum and GLCM rasters.
	Artifacts bool `json:"artifacts" yaml:"artifacts"`
}

// DefaultConfig enables everything with thresholds 85/70 per method and a
// composite threshold of 75.
func DefaultConfig() Config {
	th := make(map[string]scoring.Thresholds, len(Methods))
	for _, m := range Methods {
		th[string(m)] = scoring.Thresholds{Pass: DefaultPass, Conditional: DefaultConditional}
	}
	return Config{
		Thresholds:      th,
		GlobalThreshold: DefaultGlobalThreshold,
		Methods:         append([]Method(nil), Methods...),
	}
}

// WithDefaults returns a copy of c with unset fields filled in. The threshold
// map and method list are copied.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	out := c
	out.Thresholds = make(map[string]scoring.Thresholds, len(Methods))
	for k, v := range d.Thresholds {
		out.Thresholds[k] = v
	}
	for k, v := range c.Thresholds {
		out.Thresholds[k] = v
	}
	if out.GlobalThreshold == 0 {
		out.GlobalThreshold = d.GlobalThreshold
	}
	if len(c.Methods) == 0 {
		out.Methods = d.Methods
	} else {
		out.Methods = append([]Method(nil), c.Methods...)
	}
	return out
}

// Validate reports unknown methods and inconsistent thresholds.
func (c Config) Validate() error {
	for _, m := range c.Methods {
		if !m.valid() {
			return fmt.Errorf("%w: unknown method %q", ErrInvalidConfig, m)
		}
	}
	for name, th := range c.Thresholds {
		if !Method(name).valid() {
			return fmt.Errorf("%w: thresholds for unknown method %q", ErrInvalidConfig, name)
		}
		if th.Conditional > th.Pass {
			return fmt.Errorf("%w: %s conditional threshold %.1f above pass %.1f", ErrInvalidConfig, name, th.Conditional, th.Pass)
		}
	}
	if c.GlobalThreshold <= 0 || c.GlobalThreshold > 100 {
		return fmt.Errorf("%w: global threshold %.1f outside (0, 100]", ErrInvalidConfig, c.GlobalThreshold)
	}
	return nil
}

// Enabled reports whether m is selected.
func (c Config) Enabled(m Method) bool {
	for _, e := range c.Methods {
		if e == m {
			return true
		}
	}
	return false
}

func (m Method) valid() bool {
	switch m {
	case SSIM, Gradient, Phase, Structural:
		return true
	}
	return false
}
