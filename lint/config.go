package lint

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/gnolang/jsxlint/internal"
	tt "github.com/gnolang/jsxlint/internal/types"
)

// DefaultConfigFiles are the configuration files looked up in the root
// directory, in order.
var DefaultConfigFiles = []string{".jsxlint.yaml", ".jsxlint.yml", ".jsxlint.toml"}

// Config represents the overall configuration with a name and a slice of rules.
type Config struct {
	Name        string                   `yaml:"name" toml:"name"`
	Rules       map[string]tt.ConfigRule `yaml:"rules" toml:"rules"`
	IgnorePaths []string                 `yaml:"ignore_paths,omitempty" toml:"ignore_paths,omitempty"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		Name:  "jsxlint",
		Rules: internal.DefaultRules(),
	}
}

// FindConfig returns the first default configuration file present in
// rootDir, or "" if there is none.
func FindConfig(rootDir string) string {
	for _, name := range DefaultConfigFiles {
		path := filepath.Join(rootDir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// LoadConfig reads a YAML or TOML configuration file, chosen by extension.
// Rules missing from the file keep their default severity.
func LoadConfig(configurationPath string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(configurationPath)
	if err != nil {
		return config, fmt.Errorf("error reading configuration: %w", err)
	}

	var parsed Config
	if isTOML(configurationPath) {
		_, err = toml.Decode(string(data), &parsed)
	} else {
		err = yaml.Unmarshal(data, &parsed)
	}
	if err != nil {
		return config, fmt.Errorf("error parsing configuration %s: %w", configurationPath, err)
	}

	if parsed.Name != "" {
		config.Name = parsed.Name
	}
	for name, rule := range parsed.Rules {
		config.Rules[name] = rule
	}
	config.IgnorePaths = parsed.IgnorePaths
	return config, nil
}

// WriteConfig writes config to path as YAML or TOML, chosen by extension.
// An existing file is only replaced when overwrite is set.
func WriteConfig(path string, config Config, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s: %w", path, os.ErrExist)
		} else if !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}

	var buf bytes.Buffer
	if isTOML(path) {
		if err := toml.NewEncoder(&buf).Encode(config); err != nil {
			return err
		}
	} else {
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(config); err != nil {
			return err
		}
		if err := enc.Close(); err != nil {
			return err
		}
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
