package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/rileyhilliard/inkdash/internal/errors"
	"github.com/rileyhilliard/inkdash/internal/layout"
)

const (
	// ConfigFileName is the config file looked up in the working directory.
	ConfigFileName = "inkdash.yaml"
	// GlobalConfigDir is the per-user config directory under $HOME.
	GlobalConfigDir = ".config/inkdash"
	// GlobalConfigFile is the per-user config file name.
	GlobalConfigFile = "config.yaml"
	// SystemConfigPath is checked last, for installs running as a service.
	SystemConfigPath = "/etc/inkdash/config.yaml"
	// EnvPrefix namespaces environment overrides, e.g. INKDASH_INTERVAL=1m.
	EnvPrefix = "INKDASH"
)

//go:embed default.yaml
var defaultYAML []byte

// DefaultYAML returns the built-in configuration as written by 'inkdash config init'.
func DefaultYAML() []byte {
	return append([]byte(nil), defaultYAML...)
}

// DefaultConfig returns the built-in configuration, including the reference layout.
func DefaultConfig() *Config {
	cfg, err := parseConfig(newViper(false), "built-in defaults")
	if err != nil {
		panic("config: embedded defaults are invalid: " + err.Error())
	}
	return cfg
}

// Load reads config from the specified path, layered over the built-in defaults.
func Load(path string) (*Config, error) {
	v := newViper(true)
	v.SetConfigFile(path)

	if err := v.MergeInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found",
				"Run 'inkdash config init' to create one, or specify one with --config")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check the file exists and is valid YAML")
	}

	return parseConfig(v, path)
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. inkdash.yaml in the current directory
// 3. ~/.config/inkdash/config.yaml
// 4. /etc/inkdash/config.yaml
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	var candidates []string
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, ConfigFileName))
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		candidates = append(candidates, filepath.Join(home, GlobalConfigDir, GlobalConfigFile))
	}
	candidates = append(candidates, SystemConfigPath)

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, nil
		}
	}
	return "", nil
}

// LoadOrDefault loads the config found by Find, or the defaults if there is none.
// Returns the path that was used ("" for defaults).
func LoadOrDefault(explicit string) (*Config, string, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, "", err
	}
	if path == "" {
		cfg, err := parseConfig(newViper(true), "built-in defaults")
		return cfg, "", err
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// newViper returns a viper instance preloaded with the embedded defaults,
// optionally wired for INKDASH_* environment overrides.
func newViper(withEnv bool) *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaultYAML)); err != nil {
		panic("config: cannot read embedded defaults: " + err.Error())
	}
	if withEnv {
		v.SetEnvPrefix(EnvPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}
	return v
}

// parseConfig converts viper config to our Config struct.
func parseConfig(v *viper.Viper, source string) (*Config, error) {
	cfg := &Config{}

	// viper's default decode hooks turn "5m" into time.Duration
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+source)
	}

	cfg.FallbackPath = ExpandPath(cfg.FallbackPath)
	cfg.Display.OutputPath = ExpandPath(cfg.Display.OutputPath)
	cfg.LayoutFile = ExpandPath(cfg.LayoutFile)
	cfg.Lock.Dir = ExpandPath(cfg.Lock.Dir)

	if cfg.LayoutFile != "" {
		fields, err := LoadLayoutFile(cfg.LayoutFile)
		if err != nil {
			return nil, err
		}
		cfg.Layout = fields
	}

	return cfg, nil
}

// layoutFile is the on-disk shape of a standalone layout.
type layoutFile struct {
	Fields layout.Layout `yaml:"fields"`
}

// LoadLayoutFile reads a standalone layout file:
//
//	fields:
//	  - label: Mem
//	    metric: memory
//	    style: small
//	    x: 120
//	    y: 60
func LoadLayoutFile(path string) (layout.Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot read layout file: "+path,
			"Check layout_file in your config points at an existing file")
	}

	var lf layoutFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&lf); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Layout file %s is not valid", path),
			"Expected a top-level 'fields' list of {label, metric, style, x, y}")
	}
	return lf.Fields, nil
}
