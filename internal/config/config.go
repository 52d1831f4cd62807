package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Paths    PathsConfig    `yaml:"paths" mapstructure:"paths"`
	Analysis AnalysisConfig `yaml:"analysis" mapstructure:"analysis"`
	Export   ExportConfig   `yaml:"export" mapstructure:"export"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// PathsConfig holds the filesystem roots the aggregator reads from and writes to.
type PathsConfig struct {
	ResultsDir string `yaml:"results_dir" mapstructure:"results_dir"`
	DataDir    string `yaml:"data_dir" mapstructure:"data_dir"`
	OutputDir  string `yaml:"output_dir" mapstructure:"output_dir"`
}

// AnalysisConfig configures threshold fitting on prediction files.
type AnalysisConfig struct {
	SampleSize int    `yaml:"sample_size" mapstructure:"sample_size"`
	Seed       uint64 `yaml:"seed" mapstructure:"seed"`
	// FilePattern matches benchmark result file names.
	FilePattern string `yaml:"file_pattern" mapstructure:"file_pattern"`
}

// ExportConfig configures the aggregated table outputs.
type ExportConfig struct {
	FilePrefix      string `yaml:"file_prefix" mapstructure:"file_prefix"`
	TimestampLayout string `yaml:"timestamp_layout" mapstructure:"timestamp_layout"`
	XLSX            bool   `yaml:"xlsx" mapstructure:"xlsx"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// DefaultFilePattern matches benchmark result files such as results.bench-1234.json.
const DefaultFilePattern = `^results.bench-(?P<hash>\d+)[.]json$`

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("FOLKTEXTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("paths.results_dir", "results")
	v.SetDefault("paths.data_dir", "data")
	v.SetDefault("paths.output_dir", "")
	v.SetDefault("analysis.sample_size", 100)
	v.SetDefault("analysis.seed", 42)
	v.SetDefault("analysis.file_pattern", DefaultFilePattern)
	v.SetDefault("export.file_prefix", "aggregated_results")
	v.SetDefault("export.timestamp_layout", "2006.01.02-15.04.05")
	v.SetDefault("export.xlsx", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// OutputDir returns the export directory, falling back to the results root.
func (c *Config) OutputDir() string {
	if c.Paths.OutputDir != "" {
		return c.Paths.OutputDir
	}
	return c.Paths.ResultsDir
}

// Validate checks that the settings needed for an aggregation run are present.
func (c *Config) Validate() error {
	var missing []string
	if c.Paths.ResultsDir == "" {
		missing = append(missing, "paths.results_dir")
	}
	if c.Analysis.FilePattern == "" {
		missing = append(missing, "analysis.file_pattern")
	}
	if len(missing) > 0 {
		return eris.Errorf("config: missing required fields: %s", strings.Join(missing, ", "))
	}
	if c.Analysis.SampleSize <= 0 {
		return eris.Errorf("config: analysis.sample_size must be positive (got %d)", c.Analysis.SampleSize)
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
