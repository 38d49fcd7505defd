package arena

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/elote-go/elote/pkg/rating"
)

// Error types for arena configuration, mirroring confelo's
// pkg/data/config.go sentinel-error-per-section convention.
var (
	ErrInvalidConfig = errors.New("invalid arena configuration")
	ErrConfigIO      = errors.New("arena configuration file error")
)

// Config is the YAML-loadable document describing how to build an
// Arena: which variant it dispatches to, that variant's class-level
// tunables, and the construction defaults applied to every lazily
// created competitor (spec.md §4.5 "base_competitor_kwargs").
// Grounded on confelo's SessionConfig (pkg/data/config.go), generalized
// from a single Elo section to one section per rating variant.
type Config struct {
	Variant       string              `yaml:"variant" json:"variant"`
	InitialRating float64             `yaml:"initial_rating" json:"initial_rating"`
	InitialRD     float64             `yaml:"initial_rd" json:"initial_rd"`
	// MinimumRating is the rating floor applied to every competitor this
	// Arena lazily creates (SPEC_FULL.md §4.7's ArenaConfig.MinimumRating;
	// spec.md invariant 1's "configurable minimum rating"). Zero means
	// "use rating.DefaultMinimumRating", matching the zero-value
	// convention each New*Competitor constructor already uses.
	MinimumRating float64             `yaml:"minimum_rating" json:"minimum_rating"`
	Elo           rating.EloConfig    `yaml:"elo" json:"elo"`
	Glicko        rating.GlickoConfig `yaml:"glicko" json:"glicko"`
	ECF           rating.ECFConfig    `yaml:"ecf" json:"ecf"`
	DWZ           rating.DWZConfig    `yaml:"dwz" json:"dwz"`
}

// DefaultConfig returns an Elo arena configuration using every
// variant's spec defaults, so a caller only needs to override what they
// care about.
func DefaultConfig() Config {
	return Config{
		Variant:       string(VariantElo),
		InitialRating: 1500,
		InitialRD:     350,
		MinimumRating: rating.DefaultMinimumRating,
		Elo:           *rating.DefaultEloConfig(),
		Glicko:        *rating.DefaultGlickoConfig(),
		ECF:           *rating.DefaultECFConfig(),
		DWZ:           *rating.DefaultDWZConfig(),
	}
}

// Validate checks that the configuration names a supported variant and
// that its initial rating and rating floor are usable.
func (c Config) Validate() error {
	switch Variant(c.Variant) {
	case VariantElo, VariantGlicko, VariantECF, VariantDWZ:
	default:
		return fmt.Errorf("%w: unknown variant %q", ErrInvalidConfig, c.Variant)
	}
	if c.InitialRating <= 0 {
		return fmt.Errorf("%w: initial_rating must be positive, got %v", ErrInvalidConfig, c.InitialRating)
	}
	if c.MinimumRating < 0 {
		return fmt.Errorf("%w: minimum_rating must not be negative, got %v", ErrInvalidConfig, c.MinimumRating)
	}
	return nil
}

// LoadConfig reads and validates a YAML arena configuration file,
// mirroring confelo's LoadSessionConfig (pkg/data/config.go).
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: cannot read %s: %v", ErrConfigIO, path, err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("%w: cannot parse %s: %v", ErrConfigIO, path, err)
	}
	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// Save writes the configuration as YAML.
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("%w: cannot encode configuration: %v", ErrConfigIO, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: cannot write %s: %v", ErrConfigIO, path, err)
	}
	return nil
}
