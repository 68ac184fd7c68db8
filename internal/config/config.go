// Package config loads QC settings from a YAML file, optional .env files and
// TEXTILE_QC_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"github.com/ironsheep/textile-qc-mcp/internal/colorimetry"
	"github.com/ironsheep/textile-qc-mcp/internal/colorqc"
	"github.com/ironsheep/textile-qc-mcp/internal/pattern"
	"github.com/ironsheep/textile-qc-mcp/internal/sampling"
	"github.com/ironsheep/textile-qc-mcp/internal/scoring"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TEXTILE_QC_"

// ErrInvalid wraps every settings validation failure.
var ErrInvalid = errors.New("invalid settings")

// Settings holds everything one QC run needs besides the two images.
type Settings struct {
	Operator string `json:"operator,omitempty" yaml:"operator"`

	// CropToRegion crops both images to Color.Region before either pipeline
	// runs. Full-image regions are never cropped.
	CropToRegion bool `json:"use_crop" yaml:"use_crop"`

	Color   colorqc.Config  `json:"color" yaml:"color"`
	Pattern pattern.Config  `json:"pattern" yaml:"pattern"`
	Scoring scoring.Methods `json:"scoring" yaml:"scoring"`

	// Seed fixes random sampling. Zero means time-seeded.
	Seed int64 `json:"seed,omitempty" yaml:"seed"`

	// OutputDir is where the batch command writes the report and artifacts.
	OutputDir string `json:"output_dir,omitempty" yaml:"output_dir"`
}

// Default returns the standard settings.
func Default() Settings {
	return Settings{
		Color:   colorqc.DefaultConfig(),
		Pattern: pattern.DefaultConfig(),
		Scoring: scoring.Methods{Color: scoring.ColorDeltaE, Pattern: scoring.PatternAll},
	}
}

// Parse decodes YAML over the defaults. Unknown keys are an error. Pattern
// thresholds start empty so a file may name any subset of methods; Normalize
// fills in the rest.
func Parse(data []byte) (Settings, error) {
	s := Default()
	s.Pattern.Thresholds = nil
	if err := yaml.UnmarshalStrict(data, &s); err != nil {
		return Settings{}, fmt.Errorf("failed to parse settings: %w", err)
	}
	return s, nil
}

// LoadFile reads and parses a YAML settings file.
func LoadFile(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read settings file: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return Settings{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// LoadEnv loads .env files into the process environment without overriding
// variables that are already set. With no arguments it loads ./.env and a
// missing file is not an error.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load .env: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("failed to load env files: %w", err)
	}
	return nil
}

// Load builds normalized settings from the defaults, the YAML file at path
// (skipped when empty) and the process environment.
func Load(path string) (Settings, error) {
	s := Default()
	if path != "" {
		var err error
		if s, err = LoadFile(path); err != nil {
			return Settings{}, err
		}
	}
	if err := s.ApplyEnv(os.LookupEnv); err != nil {
		return Settings{}, err
	}
	return s.Normalize()
}

// override applies one environment value.
type override struct {
	key   string
	apply func(s *Settings, v string) error
}

var overrides = []override{
	{"OPERATOR", func(s *Settings, v string) error { s.Operator = v; return nil }},
	{"USE_CROP", func(s *Settings, v string) error { return parseBool(v, &s.CropToRegion) }},
	{"PRIMARY_ILLUMINANT", func(s *Settings, v string) error {
		s.Color.PrimaryIlluminant = colorimetry.Illuminant(v)
		return nil
	}},
	{"TEST_ILLUMINANTS", func(s *Settings, v string) error {
		s.Color.TestIlluminants = nil
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				s.Color.TestIlluminants = append(s.Color.TestIlluminants, colorimetry.Illuminant(name))
			}
		}
		return nil
	}},
	{"POINT_COUNT", func(s *Settings, v string) error { return parseInt(v, &s.Color.PointCount) }},
	{"SAMPLING_MODE", func(s *Settings, v string) error {
		m, err := sampling.ParseMode(strings.ToLower(strings.TrimSpace(v)))
		s.Color.Mode = m
		return err
	}},
	{"COLOR_PASS", func(s *Settings, v string) error { return parseFloat(v, &s.Color.Thresholds.Pass) }},
	{"COLOR_CONDITIONAL", func(s *Settings, v string) error { return parseFloat(v, &s.Color.Thresholds.Conditional) }},
	{"GLOBAL_THRESHOLD_DE", func(s *Settings, v string) error { return parseFloat(v, &s.Color.GlobalThreshold) }},
	{"CSI_GOOD", func(s *Settings, v string) error { return parseFloat(v, &s.Color.CSIGood) }},
	{"CSI_WARN", func(s *Settings, v string) error { return parseFloat(v, &s.Color.CSIWarn) }},
	{"PATTERN_GLOBAL_THRESHOLD", func(s *Settings, v string) error { return parseFloat(v, &s.Pattern.GlobalThreshold) }},
	{"COLOR_SCORING_METHOD", func(s *Settings, v string) error {
		s.Scoring.Color = scoring.ColorMethod(strings.TrimSpace(v))
		return nil
	}},
	{"PATTERN_SCORING_METHOD", func(s *Settings, v string) error {
		s.Scoring.Pattern = scoring.PatternMethod(strings.TrimSpace(v))
		return nil
	}},
	{"SEED", func(s *Settings, v string) error {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return err
		}
		s.Seed = n
		return nil
	}},
	{"OUTPUT_DIR", func(s *Settings, v string) error { s.OutputDir = v; return nil }},
	{"ARTIFACTS", func(s *Settings, v string) error {
		var on bool
		if err := parseBool(v, &on); err != nil {
			return err
		}
		s.Color.Artifacts, s.Pattern.Artifacts = on, on
		return nil
	}},
}

// ApplyEnv overrides fields from TEXTILE_QC_* variables found by lookup.
// Pass os.LookupEnv for the process environment.
func (s *Settings) ApplyEnv(lookup func(string) (string, bool)) error {
	for _, o := range overrides {
		v, ok := lookup(EnvPrefix + o.key)
		if !ok {
			continue
		}
		if err := o.apply(s, v); err != nil {
			return fmt.Errorf("%w: %s%s=%q: %v", ErrInvalid, EnvPrefix, o.key, v, err)
		}
	}
	return nil
}

// Normalize fills unset fields with defaults, canonicalizes illuminant and
// method names and validates the result. Every illuminant must be known.
func (s Settings) Normalize() (Settings, error) {
	out := s
	out.Color = s.Color.WithDefaults()
	out.Pattern = s.Pattern.WithDefaults()

	primary, err := colorimetry.ParseIlluminant(string(out.Color.PrimaryIlluminant))
	if err != nil {
		return Settings{}, fmt.Errorf("%w: color.primary_illuminant: %w", ErrInvalid, err)
	}
	out.Color.PrimaryIlluminant = primary
	for i, name := range out.Color.TestIlluminants {
		ill, err := colorimetry.ParseIlluminant(string(name))
		if err != nil {
			return Settings{}, fmt.Errorf("%w: color.test_illuminants[%d]: %w", ErrInvalid, i, err)
		}
		out.Color.TestIlluminants[i] = ill
	}

	if err := out.Color.Validate(); err != nil {
		return Settings{}, fmt.Errorf("%w: color: %w", ErrInvalid, err)
	}
	if err := out.Pattern.Validate(); err != nil {
		return Settings{}, fmt.Errorf("%w: pattern: %w", ErrInvalid, err)
	}
	if out.Scoring, err = s.Scoring.Normalize(); err != nil {
		return Settings{}, fmt.Errorf("%w: scoring: %v", ErrInvalid, err)
	}
	return out, nil
}

// Validate reports whether s normalizes cleanly.
func (s Settings) Validate() error {
	_, err := s.Normalize()
	return err
}

// YAML renders s as a settings file.
func (s Settings) YAML() (string, error) {
	b, err := yaml.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to marshal settings: %w", err)
	}
	return string(b), nil
}

func parseInt(v string, dst *int) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return err
	}
	*dst = n
	return nil
}

func parseFloat(v string, dst *float64) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return err
	}
	*dst = f
	return nil
}

func parseBool(v string, dst *bool) error {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return err
	}
	*dst = b
	return nil
}
