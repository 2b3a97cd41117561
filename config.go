package knngraph

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables read by ConfigFromEnv.
const (
	EnvM                     = "KNNGRAPH_M"
	EnvM0                    = "KNNGRAPH_M0"
	EnvEF                    = "KNNGRAPH_EF"
	EnvML                    = "KNNGRAPH_ML"
	EnvHeuristic             = "KNNGRAPH_HEURISTIC"
	EnvExtendCandidates      = "KNNGRAPH_EXTEND_CANDIDATES"
	EnvKeepPrunedConnections = "KNNGRAPH_KEEP_PRUNED"
	EnvSeed                  = "KNNGRAPH_SEED"
)

// Config is the serializable form of the index parameters. Zero values and
// nil pointers leave the corresponding option untouched.
//
// Example YAML:
//
//	m: 16
//	ef: 200
//	heuristic: canonical
//	seed: 42
type Config struct {
	M  int     `yaml:"m"`
	M0 int     `yaml:"m0"`
	EF int     `yaml:"ef"`
	ML float64 `yaml:"ml"`

	// Heuristic is one of "simple", "canonical" or "randomized".
	Heuristic string `yaml:"heuristic"`

	ExtendCandidates      *bool  `yaml:"extend_candidates"`
	KeepPrunedConnections *bool  `yaml:"keep_pruned_connections"`
	Seed                  *int64 `yaml:"seed"`
}

// LoadConfig reads a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ConfigFromEnv builds a Config from KNNGRAPH_* environment variables.
// Unset variables keep their zero value.
func ConfigFromEnv() (*Config, error) {
	var (
		cfg Config
		err error
	)

	if cfg.M, err = envInt(EnvM); err != nil {
		return nil, err
	}
	if cfg.M0, err = envInt(EnvM0); err != nil {
		return nil, err
	}
	if cfg.EF, err = envInt(EnvEF); err != nil {
		return nil, err
	}

	if v := os.Getenv(EnvML); v != "" {
		if cfg.ML, err = strconv.ParseFloat(v, 64); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvML, err)
		}
	}

	cfg.Heuristic = strings.ToLower(strings.TrimSpace(os.Getenv(EnvHeuristic)))

	if cfg.ExtendCandidates, err = envBool(EnvExtendCandidates); err != nil {
		return nil, err
	}
	if cfg.KeepPrunedConnections, err = envBool(EnvKeepPrunedConnections); err != nil {
		return nil, err
	}

	if v := os.Getenv(EnvSeed); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvSeed, err)
		}
		cfg.Seed = &seed
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the fields that cannot be checked by New.
func (c *Config) Validate() error {
	switch c.Heuristic {
	case "", "simple", "canonical", "randomized":
		return nil
	default:
		return &ErrInvalidConfiguration{Field: "heuristic", Value: c.Heuristic, Reason: "must be simple, canonical or randomized"}
	}
}

// Apply copies the set fields onto o. It has the signature of a functional
// option and can be passed to New directly.
func (c *Config) Apply(o *Options) {
	if c.M != 0 {
		o.M = c.M
	}
	if c.M0 != 0 {
		o.M0 = c.M0
	}
	if c.EF != 0 {
		o.EF = c.EF
	}
	if c.ML != 0 {
		o.ML = c.ML
	}

	switch c.Heuristic {
	case "simple":
		o.Heuristic = false
	case "canonical":
		o.Heuristic = true
		o.HeuristicMode = HeuristicCanonical
	case "randomized":
		o.Heuristic = true
		o.HeuristicMode = HeuristicRandomized
	}

	if c.ExtendCandidates != nil {
		o.ExtendCandidates = *c.ExtendCandidates
	}
	if c.KeepPrunedConnections != nil {
		o.KeepPrunedConnections = *c.KeepPrunedConnections
	}
	if c.Seed != nil {
		seed := *c.Seed
		o.RandomSeed = &seed
	}
}

func envInt(key string) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func envBool(key string) (*bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", key, err)
	}
	return &b, nil
}
