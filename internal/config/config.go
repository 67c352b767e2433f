// Package config loads the runtime configuration from a file, BOXPACK_*
// environment variables and command-line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/piwi3910/BoxPack/internal/logging"
	"github.com/piwi3910/BoxPack/internal/model"
)

// EnvPrefix is prepended to every environment override, e.g.
// BOXPACK_SOLVER_ALGORITHM.
const EnvPrefix = "BOXPACK"

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr         string        `json:"addr" mapstructure:"addr" validate:"required"`
	ReadTimeout  time.Duration `json:"readTimeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `json:"writeTimeout" mapstructure:"write_timeout"`
	MaxBodyBytes int64         `json:"maxBodyBytes" mapstructure:"max_body_bytes" validate:"gte=0"`
	// Solve requests above this many rectangles are rejected.
	MaxRectangles int `json:"maxRectangles" mapstructure:"max_rectangles" validate:"min=1,max=10000"`
}

// Config is the top-level configuration.
type Config struct {
	Log       logging.Config        `json:"log" mapstructure:"log"`
	Server    ServerConfig          `json:"server" mapstructure:"server"`
	Solver    model.SolverSettings  `json:"solver" mapstructure:"solver"`
	Generator model.GeneratorConfig `json:"generator" mapstructure:"generator"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Log: logging.DefaultConfig(),
		Server: ServerConfig{
			Addr:          ":8080",
			ReadTimeout:   30 * time.Second,
			WriteTimeout:  5 * time.Minute,
			MaxBodyBytes:  8 << 20,
			MaxRectangles: model.MaxRectangles,
		},
		Solver:    model.DefaultSettings(),
		Generator: model.DefaultGeneratorConfig(),
	}
}

// Loader layers configuration sources on top of the defaults.
type Loader struct {
	v *viper.Viper
}

func NewLoader() *Loader {
	v := viper.New()
	setDefaults(v, Default())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return &Loader{v: v}
}

// BindFlag lets a command-line flag override key when the flag is set.
func (l *Loader) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("no flag to bind to %q", key)
	}
	if err := l.v.BindPFlag(key, flag); err != nil {
		return fmt.Errorf("failed to bind flag %s: %w", flag.Name, err)
	}
	return nil
}

// Load reads the optional config file at path (any format viper knows from
// the extension) and returns the validated configuration. A missing file is
// not an error.
func (l *Loader) Load(path string) (Config, error) {
	if path != "" {
		l.v.SetConfigFile(path)
		if err := l.v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config error: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config error: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load is a shorthand for NewLoader().Load(path).
func Load(path string) (Config, error) {
	return NewLoader().Load(path)
}

// Validate checks every section, including the solver option combinations.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if err := c.Solver.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// setDefaults registers every key so that environment variables and flags can
// override keys absent from the config file.
func setDefaults(v *viper.Viper, d Config) {
	defaults := map[string]any{
		"log.level":       d.Log.Level,
		"log.format":      d.Log.Format,
		"log.file":        d.Log.File,
		"log.max_size":    d.Log.MaxSize,
		"log.max_backups": d.Log.MaxBackups,
		"log.max_age":     d.Log.MaxAge,
		"log.compress":    d.Log.Compress,

		"server.addr":           d.Server.Addr,
		"server.read_timeout":   d.Server.ReadTimeout,
		"server.write_timeout":  d.Server.WriteTimeout,
		"server.max_body_bytes": d.Server.MaxBodyBytes,
		"server.max_rectangles": d.Server.MaxRectangles,

		"solver.algorithm":        string(d.Solver.Algorithm),
		"solver.selection":        string(d.Solver.Selection),
		"solver.placement":        string(d.Solver.Placement),
		"solver.repack":           string(d.Solver.Repack),
		"solver.neighborhood":     string(d.Solver.Neighborhood),
		"solver.objective":        string(d.Solver.Objective),
		"solver.strategy":         string(d.Solver.Strategy),
		"solver.num_neighbors":    d.Solver.NumNeighbors,
		"solver.max_iterations":   d.Solver.MaxIterations,
		"solver.max_stagnation":   d.Solver.MaxStagnation,
		"solver.stagnation_ratio": d.Solver.StagnationRatio,
		"solver.random_rate":      d.Solver.RandomRate,
		"solver.temperature":      d.Solver.Temperature,
		"solver.seed":             d.Solver.Seed,

		"solver.overlap.overlap_tolerance":  d.Solver.Overlap.OverlapTolerance,
		"solver.overlap.overload_tolerance": d.Solver.Overlap.OverloadTolerance,
		"solver.overlap.decay_exponent":     d.Solver.Overlap.DecayExponent,
		"solver.overlap.switch_progress":    d.Solver.Overlap.SwitchProgress,
		"solver.overlap.random_move_prob":   d.Solver.Overlap.RandomMoveProb,
		"solver.overlap.relax_boxes":        d.Solver.Overlap.RelaxBoxes,

		"solver.penalty.total_overlap": d.Solver.Penalty.TotalOverlap,
		"solver.penalty.max_overlap":   d.Solver.Penalty.MaxOverlap,
		"solver.penalty.pair_count":    d.Solver.Penalty.PairCount,
		"solver.penalty.box_count":     d.Solver.Penalty.BoxCount,
		"solver.penalty.growth":        d.Solver.Penalty.Growth,

		"solver.genetic.population_size": d.Solver.Genetic.PopulationSize,
		"solver.genetic.generations":     d.Solver.Genetic.Generations,
		"solver.genetic.mutation_rate":   d.Solver.Genetic.MutationRate,
		"solver.genetic.tournament_size": d.Solver.Genetic.TournamentSize,
		"solver.genetic.elite_count":     d.Solver.Genetic.EliteCount,

		"generator.l":        d.Generator.L,
		"generator.num_rect": d.Generator.NumRect,
		"generator.min_w":    d.Generator.MinW,
		"generator.max_w":    d.Generator.MaxW,
		"generator.min_h":    d.Generator.MinH,
		"generator.max_h":    d.Generator.MaxH,
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}
