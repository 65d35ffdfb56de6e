// Package config loads and validates climex configuration via Viper.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/climex-dev/climex/internal/power"
)

// Config captures all CLI configuration knobs loaded via Viper.
type Config struct {
	Input   InputConfig   `mapstructure:"input"`
	Query   QueryConfig   `mapstructure:"query"`
	Fetch   FetchConfig   `mapstructure:"fetch"`
	Output  OutputConfig  `mapstructure:"output"`
	Monitor MonitorConfig `mapstructure:"monitor"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// InputConfig names the location table and its columns.
type InputConfig struct {
	Path            string `mapstructure:"path"`
	LatitudeColumn  string `mapstructure:"latitude_column"`
	LongitudeColumn string `mapstructure:"longitude_column"`
	StartColumn     string `mapstructure:"start_column"`
	EndColumn       string `mapstructure:"end_column"`
	IDColumn        string `mapstructure:"id_column"`
}

// QueryConfig selects what to ask the provider for.
type QueryConfig struct {
	Parameters []string `mapstructure:"parameters"`
	Temporal   string   `mapstructure:"temporal_resolution"`
	Spatial    string   `mapstructure:"spatial_resolution"`
	Community  string   `mapstructure:"community"`
	StartDate  string   `mapstructure:"start_date"`
	EndDate    string   `mapstructure:"end_date"`
}

// FetchConfig governs transport and pool behavior.
type FetchConfig struct {
	Processes          int  `mapstructure:"processes"`
	TimeoutSeconds     int  `mapstructure:"timeout_seconds"`
	InsecureSkipVerify bool `mapstructure:"insecure_skip_verify"`
	FailOnMissingData  bool `mapstructure:"fail_on_missing_data"`
}

// OutputConfig sets destinations for per-job files and the result table.
type OutputConfig struct {
	Folder      string `mapstructure:"folder"`
	Consolidate bool   `mapstructure:"consolidate"`
	ResultPath  string `mapstructure:"result_path"`
	XLSXPath    string `mapstructure:"xlsx_path"`
}

// MonitorConfig controls the optional metrics endpoint served while a batch
// runs.
type MonitorConfig struct {
	Listen string `mapstructure:"listen"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CLIMEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("input.latitude_column", "latitude")
	v.SetDefault("input.longitude_column", "longitude")

	v.SetDefault("query.parameters", power.DefaultParameters)
	v.SetDefault("query.temporal_resolution", string(power.TemporalDaily))
	v.SetDefault("query.spatial_resolution", string(power.SpatialPoint))
	v.SetDefault("query.community", string(power.CommunityRE))
	v.SetDefault("query.start_date", power.DefaultStartDate)
	v.SetDefault("query.end_date", power.DefaultEndDate)

	v.SetDefault("fetch.processes", power.DefaultProcesses)
	v.SetDefault("fetch.timeout_seconds", 30)
	v.SetDefault("fetch.insecure_skip_verify", false)
	v.SetDefault("fetch.fail_on_missing_data", false)

	v.SetDefault("output.folder", "./nasa_power_data")
	v.SetDefault("output.consolidate", true)

	v.SetDefault("logging.development", false)
}

// Validate rejects configurations the pipeline cannot run with. Full option
// validation against the location table happens in power.Plan.
func (c Config) Validate() error {
	if c.Fetch.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.timeout_seconds must be positive")
	}
	if c.Fetch.Processes <= 0 {
		return fmt.Errorf("fetch.processes must be positive")
	}
	if c.Output.Folder == "" {
		return fmt.Errorf("output.folder is required")
	}
	return nil
}

// Options maps the loaded configuration onto pipeline options.
func (c Config) Options() power.Options {
	return power.Options{
		LatitudeColumn:     c.Input.LatitudeColumn,
		LongitudeColumn:    c.Input.LongitudeColumn,
		StartDate:          c.Query.StartDate,
		EndDate:            c.Query.EndDate,
		Parameters:         c.Query.Parameters,
		Temporal:           power.TemporalResolution(c.Query.Temporal),
		Spatial:            power.SpatialResolution(c.Query.Spatial),
		Community:          power.Community(c.Query.Community),
		StartColumn:        c.Input.StartColumn,
		EndColumn:          c.Input.EndColumn,
		IDColumn:           c.Input.IDColumn,
		OutputFolder:       c.Output.Folder,
		Processes:          c.Fetch.Processes,
		Consolidate:        c.Output.Consolidate,
		InsecureSkipVerify: c.Fetch.InsecureSkipVerify,
		FailOnMissingData:  c.Fetch.FailOnMissingData,
	}
}
