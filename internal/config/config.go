package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/hxstate/internal/errors"
	"github.com/vango-dev/hxstate/pkg/binding"
	"github.com/vango-dev/hxstate/pkg/expression"
	"github.com/vango-dev/hxstate/pkg/source"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "hxstate.json"

	// YAMLConfigFileName is the name of the YAML configuration file.
	YAMLConfigFileName = "hxstate.yaml"

	// DefaultAddr is the default live server address.
	DefaultAddr = "localhost:8080"

	// DefaultEffectTimeout bounds a single js effect run.
	DefaultEffectTimeout = "100ms"

	// DefaultShutdownTimeout bounds graceful server shutdown.
	DefaultShutdownTimeout = "10s"

	// DefaultMetricsPath is where the server exposes Prometheus metrics.
	DefaultMetricsPath = "/metrics"
)

// fileNames are searched in order by Load.
var fileNames = []string{ConfigFileName, YAMLConfigFileName, "hxstate.yml"}

// Config represents the complete hxstate configuration.
type Config struct {
	// Attrs overrides the binding attribute names.
	Attrs binding.AttrNames `json:"attrs" yaml:"attrs"`

	// Effects contains effect evaluation settings.
	Effects EffectsConfig `json:"effects" yaml:"effects"`

	// Server contains live server settings.
	Server ServerConfig `json:"server" yaml:"server"`

	// Metrics contains Prometheus settings.
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`

	// Log contains logging settings.
	Log LogConfig `json:"log" yaml:"log"`

	// Source contains document loading settings.
	Source SourceConfig `json:"source" yaml:"source"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// EffectsConfig contains effect evaluation settings.
type EffectsConfig struct {
	// Engine is the expression engine: expr, cel or js.
	Engine string `json:"engine,omitempty" yaml:"engine,omitempty"`

	// Timeout bounds one js effect run (e.g., "100ms").
	Timeout string `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	// Policy is what setup does with a failing attribute: abort or skip.
	Policy string `json:"policy,omitempty" yaml:"policy,omitempty"`
}

// ServerConfig contains live server settings.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`

	// Document is the page served to every session.
	Document string `json:"document,omitempty" yaml:"document,omitempty"`

	// AllowedOrigins restricts WebSocket upgrades. Empty allows same-origin only.
	AllowedOrigins []string `json:"allowedOrigins,omitempty" yaml:"allowedOrigins,omitempty"`

	// ShutdownTimeout bounds graceful shutdown (e.g., "10s").
	ShutdownTimeout string `json:"shutdownTimeout,omitempty" yaml:"shutdownTimeout,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Path    string `json:"path,omitempty" yaml:"path,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// SourceConfig contains document loading settings.
type SourceConfig struct {
	// MaxBytes caps a loaded document.
	MaxBytes int64 `json:"maxBytes,omitempty" yaml:"maxBytes,omitempty"`

	// S3 enables s3:// documents when set.
	S3 *source.S3Config `json:"s3,omitempty" yaml:"s3,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Attrs: binding.DefaultAttrNames(),
		Effects: EffectsConfig{
			Engine:  expression.EngineExpr,
			Timeout: DefaultEffectTimeout,
			Policy:  string(binding.PolicyAbort),
		},
		Server: ServerConfig{
			Addr:            DefaultAddr,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    DefaultMetricsPath,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Source: SourceConfig{
			MaxBytes: source.DefaultMaxBytes,
		},
	}
}

// Load reads configuration from the specified directory. It looks for
// hxstate.json, then hxstate.yaml, then hxstate.yml.
func Load(dir string) (*Config, error) {
	for _, name := range fileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("H121").
		WithDetail("No hxstate.json or hxstate.yaml found in " + dir)
}

// LoadOptional is Load, returning defaults when no file exists.
func LoadOptional(dir string) (*Config, error) {
	cfg, err := Load(dir)
	if err != nil {
		if he, ok := err.(*errors.HxError); ok && he.Code == "H121" {
			return New(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads configuration from the specified file path. Files ending in
// .yaml or .yml are parsed as YAML, everything else as JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("H121").
				WithDetail("No config file at " + path)
		}
		return nil, errors.New("H120").Wrap(err)
	}

	cfg := New()
	if isYAML(path) {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.New("H120").
				WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
				WithSuggestion("Check that the file is valid YAML")
		}
	} else {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, errors.New("H120").
				WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
				WithSuggestion("Check that the file is valid JSON")
		}
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// SaveTo writes the configuration to path in the format its extension names.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New("H120").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("H120").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	d := New()

	if c.Attrs.State == "" {
		c.Attrs.State = d.Attrs.State
	}
	if c.Attrs.Bind == "" {
		c.Attrs.Bind = d.Attrs.Bind
	}
	if c.Attrs.Effect == "" {
		c.Attrs.Effect = d.Attrs.Effect
	}

	if c.Effects.Engine == "" {
		c.Effects.Engine = d.Effects.Engine
	}
	if c.Effects.Timeout == "" {
		c.Effects.Timeout = d.Effects.Timeout
	}
	if c.Effects.Policy == "" {
		c.Effects.Policy = d.Effects.Policy
	}

	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = d.Server.ShutdownTimeout
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = d.Metrics.Path
	}

	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}

	if c.Source.MaxBytes <= 0 {
		c.Source.MaxBytes = d.Source.MaxBytes
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	attrs := c.Attrs.All()
	for i, a := range attrs {
		if strings.TrimSpace(a) == "" || strings.ContainsAny(a, " \t\n=\"'<>/") {
			return errors.New("H122").
				WithDetail("Attribute name " + `"` + a + `"` + " is not a valid HTML attribute name")
		}
		if slices.Contains(attrs[:i], a) {
			return errors.New("H122").
				WithDetail("Attribute name " + `"` + a + `"` + " is used twice")
		}
	}

	if !slices.Contains(expression.Names(), c.Effects.Engine) {
		return errors.New("H112").
			WithDetail("effects.engine is " + `"` + c.Effects.Engine + `"`)
	}
	if d, err := time.ParseDuration(c.Effects.Timeout); err != nil || d <= 0 {
		return errors.New("H122").
			WithDetail("effects.timeout must be a positive duration such as 100ms")
	}
	switch binding.Policy(c.Effects.Policy) {
	case binding.PolicyAbort, binding.PolicySkip:
	default:
		return errors.New("H122").
			WithDetail("effects.policy must be abort or skip")
	}

	if d, err := time.ParseDuration(c.Server.ShutdownTimeout); err != nil || d < 0 {
		return errors.New("H122").
			WithDetail("server.shutdownTimeout must be a duration such as 10s")
	}
	if !strings.HasPrefix(c.Metrics.Path, "/") {
		return errors.New("H122").
			WithDetail("metrics.path must start with '/'")
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		return errors.New("H122").Wrap(err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New("H122").
			WithDetail("log.format must be text or json")
	}
	return nil
}

// EffectTimeout returns Effects.Timeout as a duration.
func (c *Config) EffectTimeout() time.Duration {
	d, err := time.ParseDuration(c.Effects.Timeout)
	if err != nil || d <= 0 {
		return expression.DefaultTimeout
	}
	return d
}

// ShutdownTimeout returns Server.ShutdownTimeout as a duration.
func (c *Config) ShutdownTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.ShutdownTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// Engine builds the configured expression engine.
func (c *Config) Engine(logger *slog.Logger) (expression.Engine, error) {
	eng, err := expression.New(c.Effects.Engine,
		expression.WithTimeout(c.EffectTimeout()),
		expression.WithLogger(logger),
	)
	if err != nil {
		return nil, errors.New("H112").Wrap(err)
	}
	return eng, nil
}

// Loader builds a document loader from the source settings.
func (c *Config) Loader() *source.Loader {
	l := &source.Loader{MaxBytes: c.Source.MaxBytes}
	if c.Source.S3 != nil {
		l.S3 = source.NewS3Client(*c.Source.S3)
	}
	return l
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(s))
	return level, err
}
