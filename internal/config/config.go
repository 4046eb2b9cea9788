// Package config provides configuration types, defaults and loading for dtsc.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"bennypowers.dev/dtsc/internal/compiler"
	"bennypowers.dev/dtsc/internal/log"
	"github.com/spf13/viper"
)

// FileName is the config file looked up in the working directory
const FileName = ".dtsc.yaml"

// EnvPrefix prefixes environment overrides, e.g. DTSC_OUT_DIR
const EnvPrefix = "DTSC"

// TokensConfig selects design token files that seed the variable table
type TokensConfig struct {
	Files  []string `mapstructure:"files" yaml:"files"`
	Prefix string   `mapstructure:"prefix" yaml:"prefix"`
}

// WatchConfig holds watch mode options
type WatchConfig struct {
	// Debounce is a Go duration such as "100ms"
	Debounce string `mapstructure:"debounce" yaml:"debounce"`
}

// Config holds all configuration options for dtsc.
type Config struct {
	Sources        []string          `mapstructure:"sources" yaml:"sources"`
	OutDir         string            `mapstructure:"out_dir" yaml:"out_dir"`
	Style          string            `mapstructure:"style" yaml:"style"`
	LoadPaths      []string          `mapstructure:"load_paths" yaml:"load_paths"`
	Tokens         TokensConfig      `mapstructure:"tokens" yaml:"tokens"`
	Variables      map[string]string `mapstructure:"variables" yaml:"variables"`
	ValidateOutput bool              `mapstructure:"validate" yaml:"validate"`
	Strict         bool              `mapstructure:"strict" yaml:"strict"`
	Watch          WatchConfig       `mapstructure:"watch" yaml:"watch"`
	LogLevel       string            `mapstructure:"log_level" yaml:"log_level"`
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Sources:   []string{"src/**/*.scss"},
		OutDir:    "dist",
		Style:     string(compiler.Expanded),
		LoadPaths: []string{},
		Tokens: TokensConfig{
			Files:  []string{},
			Prefix: "",
		},
		Variables:      map[string]string{},
		ValidateOutput: false,
		Strict:         false,
		Watch:          WatchConfig{Debounce: "100ms"},
		LogLevel:       "info",
	}
}

// SetDefaults registers every default with v, which also makes each key
// visible to environment overrides
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("sources", d.Sources)
	v.SetDefault("out_dir", d.OutDir)
	v.SetDefault("style", d.Style)
	v.SetDefault("load_paths", d.LoadPaths)
	v.SetDefault("tokens.files", d.Tokens.Files)
	v.SetDefault("tokens.prefix", d.Tokens.Prefix)
	v.SetDefault("variables", d.Variables)
	v.SetDefault("validate", d.ValidateOutput)
	v.SetDefault("strict", d.Strict)
	v.SetDefault("watch.debounce", d.Watch.Debounce)
	v.SetDefault("log_level", d.LogLevel)
}

// Load reads configuration into v from file, or from FileName in the
// working directory when file is empty. A missing default file is not an
// error. Environment variables override the file; flags bound to v
// override both.
func Load(v *viper.Viper, file string) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(strings.TrimSuffix(FileName, ".yaml"))
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
		log.Debug("no %s found, using defaults", FileName)
	} else {
		log.Debug("using config file %s", v.ConfigFileUsed())
		if err := ValidateFile(v.ConfigFileUsed()); err != nil {
			return Config{}, fmt.Errorf("invalid configuration: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	// empty collections may be dropped by the decoder
	if cfg.Variables == nil {
		cfg.Variables = map[string]string{}
	}
	if cfg.LoadPaths == nil {
		cfg.LoadPaths = []string{}
	}
	if cfg.Tokens.Files == nil {
		cfg.Tokens.Files = []string{}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks option values that are not checked by their consumers
func (c Config) Validate() error {
	var errs []error
	if _, err := compiler.ParseStyle(c.Style); err != nil {
		errs = append(errs, err)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.DebounceDuration(); err != nil {
		errs = append(errs, err)
	}
	if c.Strict && !c.ValidateOutput {
		errs = append(errs, fmt.Errorf("strict requires validate"))
	}
	return errors.Join(errs...)
}

// DebounceDuration parses Watch.Debounce
func (c Config) DebounceDuration() (time.Duration, error) {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil {
		return 0, fmt.Errorf("watch.debounce: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("watch.debounce: must not be negative")
	}
	return d, nil
}

// OutputStyle returns the parsed Style
func (c Config) OutputStyle() compiler.Style {
	style, err := compiler.ParseStyle(c.Style)
	if err != nil {
		return compiler.Expanded
	}
	return style
}
