package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	appErrors "github.com/limaJavier/coursetabling/pkg/errors"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Strategies
const (
	StrategyBacktracking = "backtracking"
	StrategyGreyWolf     = "gwo"
	StrategySAT          = "sat"
)

type Config struct {
	Env      string
	DataDir  string `validate:"required"`
	Strategy string `validate:"oneof=backtracking gwo sat"`
	Seed     uint64 // 0 seeds the solvers from the clock
	Timeout  time.Duration

	Log          LogConfig
	GreyWolf     GreyWolfConfig
	Backtracking BacktrackingConfig
	SAT          SATConfig
	Output       OutputConfig
}

type LogConfig struct {
	Level   string
	Format  string
	Verbose bool
}

type GreyWolfConfig struct {
	Population  int `validate:"gte=1"`
	Iterations  int `validate:"gte=0"`
	Workers     int `validate:"gte=1"`
	InitTries   int `validate:"gte=1"`
	RepairTries int `validate:"gte=1"`
}

type BacktrackingConfig struct {
	MaxNodes uint64
	Precheck bool
}

type SATConfig struct {
	Solver string `validate:"oneof=gini kissat cadical cryptominisat"`
	Path   string
}

// OutputConfig selects how the schedule is rendered. An empty File writes to standard output.
type OutputConfig struct {
	Format      string `validate:"oneof=table json csv pdf xlsx"`
	File        string
	MetricsFile string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{
		Env:      v.GetString("ENV"),
		DataDir:  v.GetString("DATA_DIR"),
		Strategy: strings.ToLower(v.GetString("STRATEGY")),
		Seed:     v.GetUint64("SEED"),
		Timeout:  parseDuration(v.GetString("TIMEOUT"), 0),
	}

	cfg.Log = LogConfig{
		Level:   v.GetString("LOG_LEVEL"),
		Format:  v.GetString("LOG_FORMAT"),
		Verbose: v.GetBool("VERBOSE"),
	}

	cfg.GreyWolf = GreyWolfConfig{
		Population:  v.GetInt("GWO_POPULATION"),
		Iterations:  v.GetInt("GWO_ITERATIONS"),
		Workers:     v.GetInt("GWO_WORKERS"),
		InitTries:   v.GetInt("GWO_INIT_TRIES"),
		RepairTries: v.GetInt("GWO_REPAIR_TRIES"),
	}

	cfg.Backtracking = BacktrackingConfig{
		MaxNodes: v.GetUint64("BACKTRACKING_MAX_NODES"),
		Precheck: v.GetBool("BACKTRACKING_PRECHECK"),
	}

	cfg.SAT = SATConfig{
		Solver: strings.ToLower(v.GetString("SAT_SOLVER")),
		Path:   v.GetString("SAT_SOLVER_PATH"),
	}

	cfg.Output = OutputConfig{
		Format:      strings.ToLower(v.GetString("OUTPUT_FORMAT")),
		File:        v.GetString("OUTPUT_FILE"),
		MetricsFile: v.GetString("METRICS_FILE"),
	}

	return cfg, nil
}

// Validate checks the values that the command line may have overridden after Load
func (cfg *Config) Validate() error {
	if err := validator.New().Struct(cfg); err != nil {
		return appErrors.Cause(appErrors.ErrInvalidParameters, err, "invalid configuration")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("DATA_DIR", "data")
	v.SetDefault("STRATEGY", StrategyBacktracking)
	v.SetDefault("SEED", 0)
	v.SetDefault("TIMEOUT", "")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("VERBOSE", false)

	v.SetDefault("GWO_POPULATION", 20)
	v.SetDefault("GWO_ITERATIONS", 100)
	v.SetDefault("GWO_WORKERS", 1)
	v.SetDefault("GWO_INIT_TRIES", 200)
	v.SetDefault("GWO_REPAIR_TRIES", 300)

	v.SetDefault("BACKTRACKING_MAX_NODES", 0)
	v.SetDefault("BACKTRACKING_PRECHECK", true)

	v.SetDefault("SAT_SOLVER", "gini")
	v.SetDefault("SAT_SOLVER_PATH", "")

	v.SetDefault("OUTPUT_FORMAT", "table")
	v.SetDefault("OUTPUT_FILE", "")
	v.SetDefault("METRICS_FILE", "")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}
