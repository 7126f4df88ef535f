package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// MountConfig describes the node-local view of the distributed filesystem.
type MountConfig struct {
	Root   string `json:"root,omitempty" yaml:"root,omitempty" toml:"root"`
	Marker string `json:"marker,omitempty" yaml:"marker,omitempty" toml:"marker"`
}

// IdentityConfig tunes the built-in identity tool.
type IdentityConfig struct {
	AddGlob    string `json:"add_glob,omitempty" yaml:"add_glob,omitempty" toml:"add_glob"`
	Mountpoint string `json:"mountpoint,omitempty" yaml:"mountpoint,omitempty" toml:"mountpoint"`
}

// ToolConfig declares one external command tool.
type ToolConfig struct {
	Name         string         `json:"name" yaml:"name" toml:"name"`
	Version      string         `json:"version,omitempty" yaml:"version,omitempty" toml:"version"`
	Path         string         `json:"path" yaml:"path" toml:"path"`
	Options      string         `json:"options,omitempty" yaml:"options,omitempty" toml:"options"`
	Expected     []string       `json:"expected,omitempty" yaml:"expected,omitempty" toml:"expected"`
	Output       string         `json:"output,omitempty" yaml:"output,omitempty" toml:"output"`
	Mountpoint   string         `json:"mountpoint,omitempty" yaml:"mountpoint,omitempty" toml:"mountpoint"`
	Template     string         `json:"template,omitempty" yaml:"template,omitempty" toml:"template"`
	ParamsSchema map[string]any `json:"params_schema,omitempty" yaml:"params_schema,omitempty" toml:"params_schema"`
}

// Config is the run configuration: global parameters, the metadata-only
// flag, the mount view, and the declared tool families. Decoding is strict
// for all three accepted formats; unknown keys are configuration mistakes.
type Config struct {
	Version  int            `json:"version" yaml:"version" toml:"version"`
	OnlyInfo bool           `json:"only_info,omitempty" yaml:"only_info,omitempty" toml:"only_info"`
	Params   map[string]any `json:"params,omitempty" yaml:"params,omitempty" toml:"params"`
	Mount    MountConfig    `json:"mount,omitempty" yaml:"mount,omitempty" toml:"mount"`
	Identity IdentityConfig `json:"identity,omitempty" yaml:"identity,omitempty" toml:"identity"`
	Tools    []ToolConfig   `json:"tools,omitempty" yaml:"tools,omitempty" toml:"tools"`
}

// LoadConfig reads and validates a run configuration. The format follows
// the file extension: .json and .toml are decoded as such, everything else
// as YAML.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := decodeJSONStrict(b, &cfg); err != nil {
			return nil, err
		}
	case ".toml":
		if err := decodeTOMLStrict(b, &cfg); err != nil {
			return nil, err
		}
	default:
		if err := decodeYAMLStrict(b, &cfg); err != nil {
			return nil, err
		}
	}
	applyConfigDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func decodeJSONStrict(b []byte, cfg *Config) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return err
	}
	var trailing any
	if err := dec.Decode(&trailing); err != io.EOF {
		if err == nil {
			return fmt.Errorf("json: multiple top-level values are not allowed")
		}
		return err
	}
	return nil
}

func decodeYAMLStrict(b []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return err
	}
	var trailing any
	if err := dec.Decode(&trailing); err != io.EOF {
		if err == nil {
			return fmt.Errorf("yaml: multiple documents are not allowed")
		}
		return err
	}
	return nil
}

func decodeTOMLStrict(b []byte, cfg *Config) error {
	md, err := toml.Decode(string(b), cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("toml: unknown key %q", undecoded[0].String())
	}
	return nil
}

func applyConfigDefaults(cfg *Config) {
	if cfg == nil {
		return
	}
	if cfg.Version == 0 {
		cfg.Version = 1
	}
	if cfg.Params == nil {
		cfg.Params = map[string]any{}
	}
	if strings.TrimSpace(cfg.Mount.Marker) == "" {
		cfg.Mount.Marker = DefaultMarker
	}
	for i := range cfg.Tools {
		cfg.Tools[i].Name = strings.TrimSpace(cfg.Tools[i].Name)
	}
}

func validateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version: %d", cfg.Version)
	}
	seen := map[string]bool{}
	for _, tc := range cfg.Tools {
		if tc.Name == "" {
			return fmt.Errorf("tools[]: name is required")
		}
		if tc.Name == "identity" {
			return fmt.Errorf("tool name %q is reserved for the builtin identity tool", tc.Name)
		}
		if seen[tc.Name] {
			return fmt.Errorf("duplicate tool name: %q", tc.Name)
		}
		seen[tc.Name] = true
		if strings.TrimSpace(tc.Path) == "" {
			return fmt.Errorf("tools.%s: path is required", tc.Name)
		}
	}
	return nil
}

// Resolver builds the mount resolver for this configuration.
func (c *Config) Resolver() *PrefixResolver {
	return &PrefixResolver{Root: c.Mount.Root, Marker: c.Mount.Marker}
}

// BuildRegistry registers the builtin identity tool plus every declared
// external tool.
func (c *Config) BuildRegistry(resolver Resolver, log zerolog.Logger) (*Registry, error) {
	reg := NewRegistry()
	identity := &IdentityTool{
		Resolver:   resolver,
		GlobSuffix: c.Identity.AddGlob,
		Mountpoint: c.Identity.Mountpoint,
		Log:        log,
	}
	if err := reg.Register(identity, nil); err != nil {
		return nil, err
	}
	for _, tc := range c.Tools {
		t := &ExternalCommandTool{
			Name:        tc.Name,
			ToolVersion: tc.Version,
			Path:        tc.Path,
			Options:     tc.Options,
			Expected:    tc.Expected,
			Output:      tc.Output,
			Mountpoint:  tc.Mountpoint,
			Template:    tc.Template,
		}
		if err := reg.Register(t, tc.ParamsSchema); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// Globals returns the global parameter store as a Params map.
func (c *Config) Globals() Params {
	out := make(Params, len(c.Params))
	for k, v := range c.Params {
		out[k] = v
	}
	return out
}
