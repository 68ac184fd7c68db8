package colorqc

import (
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/textile-qc-mcp/internal/colorimetry"
	"github.com/ironsheep/textile-qc-mcp/internal/sampling"
	"github.com/ironsheep/textile-qc-mcp/internal/scoring"
)

// Default configuration values.
const (
	DefaultPointCount      = 5
	DefaultPass            = 2.0
	DefaultConditional     = 5.0
	DefaultGlobalThreshold = 5.0
	DefaultCSIGood         = 90.0
	DefaultCSIWarn         = 70.0
)

// ErrInvalidConfig wraps every Validate failure.
var ErrInvalidConfig = errors.New("invalid color configuration")

// Config controls one color analysis. The zero value is not usable directly;
// pass it through WithDefaults first.
type Config struct {
	// Region restricts sampling. Nil means the full image.
	Region *sampling.Region `json:"region,omitempty" yaml:"region,omitempty"`

	// GlobalWidth and GlobalHeight are the dimensions of the uncropped image
	// the sampling points refer to. Zero means the analyzed image's size.
	GlobalWidth  int `json:"global_width,omitempty" yaml:"global_width,omitempty"`
	GlobalHeight int `json:"global_height,omitempty" yaml:"global_height,omitempty"`

	// CropOffset is the global coordinate of the analyzed image's top-left
	// pixel when the images were cropped to Region beforehand.
	CropOffset image.Point `json:"crop_offset" yaml:"-"`

	PointCount int              `json:"point_count" yaml:"point_count"`
	Mode       sampling.Mode    `json:"sampling_mode" yaml:"sampling_mode"`
	Points     []sampling.Point `json:"sampling_points,omitempty" yaml:"sampling_points,omitempty"`

	// Thresholds classify ΔE2000: PASS below Pass, CONDITIONAL up to
	// Conditional. GlobalThreshold is the conditional cutoff for the mean.
	Thresholds      scoring.Thresholds `json:"thresholds" yaml:"thresholds"`
	GlobalThreshold float64            `json:"global_threshold_de" yaml:"global_threshold_de"`

	PrimaryIlluminant colorimetry.Illuminant   `json:"primary_illuminant" yaml:"primary_illuminant"`
	TestIlluminants   []colorimetry.Illuminant `json:"test_illuminants" yaml:"test_illuminants"`

	CSIGood float64 `json:"csi_good" yaml:"csi_good"`
	CSIWarn float64 `json:"csi_warn" yaml:"csi_warn"`

	// Artifacts enables the overlay, heatmap and histogram rasters.
	Artifacts bool `json:"artifacts" yaml:"artifacts"`
}

// DefaultConfig returns the standard configuration: five random points over
// the full image, ΔE2000 thresholds 2/5, D65 primary, and D65, D50 and TL84
// as test illuminants.
func DefaultConfig() Config {
	return Config{
		PointCount:        DefaultPointCount,
		Mode:              sampling.ModeRandom,
		Thresholds:        scoring.Thresholds{Pass: DefaultPass, Conditional: DefaultConditional},
		GlobalThreshold:   DefaultGlobalThreshold,
		PrimaryIlluminant: colorimetry.D65,
		TestIlluminants:   []colorimetry.Illuminant{colorimetry.D65, colorimetry.D50, colorimetry.TL84},
		CSIGood:           DefaultCSIGood,
		CSIWarn:           DefaultCSIWarn,
	}
}

// WithDefaults returns a copy of c with every unset field taken from
// DefaultConfig. Slices are copied so the result shares no memory with c.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	out := c
	if out.PointCount == 0 {
		out.PointCount = d.PointCount
	}
	if out.Mode == "" {
		out.Mode = d.Mode
	}
	if out.Thresholds.Pass == 0 {
		out.Thresholds.Pass = d.Thresholds.Pass
	}
	if out.Thresholds.Conditional == 0 {
		out.Thresholds.Conditional = d.Thresholds.Conditional
	}
	if out.GlobalThreshold == 0 {
		out.GlobalThreshold = d.GlobalThreshold
	}
	if out.PrimaryIlluminant == "" {
		out.PrimaryIlluminant = d.PrimaryIlluminant
	}
	if len(out.TestIlluminants) == 0 {
		out.TestIlluminants = d.TestIlluminants
	} else {
		out.TestIlluminants = append([]colorimetry.Illuminant(nil), out.TestIlluminants...)
	}
	if out.CSIGood == 0 {
		out.CSIGood = d.CSIGood
	}
	if out.CSIWarn == 0 {
		out.CSIWarn = d.CSIWarn
	}
	out.Points = append([]sampling.Point(nil), c.Points...)
	return out
}

// Validate checks a configuration that has been through WithDefaults.
// Unknown test illuminants are not an error here; the illuminant analysis
// skips them. Region geometry is not checked: an invalid region rejects every
// point and the analysis reports INSUFFICIENT_DATA.
func (c Config) Validate() error {
	if c.PointCount < 1 {
		return fmt.Errorf("%w: point count must be positive, got %d", ErrInvalidConfig, c.PointCount)
	}
	if _, err := sampling.ParseMode(string(c.Mode)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Thresholds.Pass <= 0 || c.Thresholds.Conditional < c.Thresholds.Pass {
		return fmt.Errorf("%w: thresholds need 0 < pass <= conditional, got %.2f/%.2f",
			ErrInvalidConfig, c.Thresholds.Pass, c.Thresholds.Conditional)
	}
	if c.GlobalThreshold <= 0 {
		return fmt.Errorf("%w: global threshold must be positive", ErrInvalidConfig)
	}
	if c.CSIWarn > c.CSIGood {
		return fmt.Errorf("%w: csi warn %.1f above csi good %.1f", ErrInvalidConfig, c.CSIWarn, c.CSIGood)
	}
	if !c.PrimaryIlluminant.Known() {
		return fmt.Errorf("%w: %w: %q", ErrInvalidConfig, colorimetry.ErrUnknownIlluminant, c.PrimaryIlluminant)
	}
	return nil
}

// pointRequest builds the sampling request for an image of the given size.
func (c Config) pointRequest(w, h int, topUp bool) sampling.Request {
	gw, gh := c.GlobalWidth, c.GlobalHeight
	if gw == 0 {
		gw = w + c.CropOffset.X
	}
	if gh == 0 {
		gh = h + c.CropOffset.Y
	}
	return sampling.Request{
		Region: c.Region,
		Width:  gw,
		Height: gh,
		Count:  c.PointCount,
		Mode:   c.Mode,
		Points: c.Points,
		TopUp:  topUp,
	}
}
