// Package config loads draftpatch settings from layered sources. From lowest to highest precedence:
//
//   - built-in defaults
//   - the user config, ~/.draftpatch/config.{yaml,yml,json,toml}
//   - the nearest project config, .draftpatch/config.* in the working directory or any parent
//   - an explicit file (the --config flag)
//   - environment variables: DRAFTPATCH_ plus the key with dots as underscores (DRAFTPATCH_STORE_BACKEND)
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/codalotl/draftpatch/internal/resolve"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// DirName is the per-user and per-project configuration directory.
const DirName = ".draftpatch"

// Config is the resolved configuration.
type Config struct {
	Session string  `mapstructure:"session" json:"session" validate:"required"`
	Store   Store   `mapstructure:"store" json:"store"`
	Resolve Resolve `mapstructure:"resolve" json:"resolve"`
	Log     Log     `mapstructure:"log" json:"log"`
	Preview Preview `mapstructure:"preview" json:"preview"`
}

type Store struct {
	Backend   string `mapstructure:"backend" json:"backend" validate:"oneof=fs badger sqlite redis"`
	Path      string `mapstructure:"path" json:"path" validate:"required_unless=Backend redis"`
	RedisAddr string `mapstructure:"redisaddr" json:"redisaddr" validate:"required_if=Backend redis"`
}

type Resolve struct {
	Accept    float64 `mapstructure:"accept" json:"accept" validate:"gt=0,lte=1"`
	Candidate float64 `mapstructure:"candidate" json:"candidate" validate:"gt=0,lte=1,ltefield=Accept"`
}

type Log struct {
	File  string `mapstructure:"file" json:"file"`
	Level string `mapstructure:"level" json:"level" validate:"oneof=debug info warn error DEBUG INFO WARN ERROR"`
}

type Preview struct {
	Width int `mapstructure:"width" json:"width" validate:"gt=0"`
}

// ResolveOptions converts the resolve settings for the session.
func (c Config) ResolveOptions() resolve.Options {
	return resolve.Options{AcceptThreshold: c.Resolve.Accept, CandidateThreshold: c.Resolve.Candidate, PreviewWidth: c.Preview.Width}
}

// LoadOptions locate the config files. Zero fields use the process environment.
type LoadOptions struct {
	Home string // Defaults to os.UserHomeDir().
	Dir  string // Where the nearest-project search starts. Defaults to the working directory.
	File string // Explicit config file; it must exist.
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("session", "default")
	v.SetDefault("store.backend", "fs")
	v.SetDefault("store.path", filepath.Join(DirName, "state"))
	v.SetDefault("store.redisaddr", "")
	v.SetDefault("resolve.accept", resolve.DefaultAcceptThreshold)
	v.SetDefault("resolve.candidate", resolve.DefaultCandidateThreshold)
	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("preview.width", resolve.DefaultPreviewWidth)
}

// Load reads and validates the configuration.
func Load(opts LoadOptions) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("DRAFTPATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	files, err := configFiles(opts)
	if err != nil {
		return Config{}, err
	}
	for _, f := range files {
		v.SetConfigFile(f)
		if err := v.MergeInConfig(); err != nil {
			return Config{}, fmt.Errorf("load configuration %s: %w", f, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("load configuration: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks value ranges and the backend name.
func Validate(cfg Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		key := strings.ToLower(strings.TrimPrefix(fe.Namespace(), "Config."))
		msgs[i] = fmt.Sprintf("%s %s %s (got %v)", key, fe.Tag(), fe.Param(), fe.Value())
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

// configFiles lists the config files that exist, lowest precedence first.
func configFiles(opts LoadOptions) ([]string, error) {
	var files []string

	home := opts.Home
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	if home != "" {
		if f := findIn(filepath.Join(home, DirName)); f != "" {
			files = append(files, f)
		}
	}

	dir := opts.Dir
	if dir == "" {
		dir, _ = os.Getwd()
	}
	if f := nearest(dir, home); f != "" && (len(files) == 0 || files[0] != f) {
		files = append(files, f)
	}

	if opts.File != "" {
		if _, err := os.Stat(opts.File); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		files = append(files, opts.File)
	}
	return files, nil
}

// nearest walks up from dir looking for DirName/config.*. The home directory's config is the user config, not a project config, so the search stops before it.
func nearest(dir, home string) string {
	if dir == "" {
		return ""
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	for {
		if dir == home {
			return ""
		}
		if f := findIn(filepath.Join(dir, DirName)); f != "" {
			return f
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func findIn(dir string) string {
	for _, ext := range []string{"yaml", "yml", "json", "toml"} {
		f := filepath.Join(dir, "config."+ext)
		if info, err := os.Stat(f); err == nil && !info.IsDir() {
			return f
		}
	}
	return ""
}
