package config

import (
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/koskimas/typeshift/internal/gen"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	FileName   = "typeshift.yaml"
	envPrefix  = "TYPESHIFT"
	curVersion = 1
)

type Config struct {
	Version int    `yaml:"version" mapstructure:"version"`
	Input   string `yaml:"input" mapstructure:"input"`
	Output  string `yaml:"output,omitempty" mapstructure:"output"`
	Target  string `yaml:"target" mapstructure:"target"`
	Format  bool   `yaml:"format" mapstructure:"format"`

	Targets map[string]Target `yaml:"targets,omitempty" mapstructure:"targets"`
	Grpc    Package           `yaml:"grpc" mapstructure:"grpc"`
	Go      Package           `yaml:"go" mapstructure:"go"`
	SQL     SQL               `yaml:"sql" mapstructure:"sql"`
	Server  Server            `yaml:"server" mapstructure:"server"`
	Watch   Watch             `yaml:"watch" mapstructure:"watch"`
	Store   Store             `yaml:"store" mapstructure:"store"`
	Log     Log               `yaml:"log" mapstructure:"log"`
}

type Target struct {
	// ExclusiveBounds is strict or offset.
	ExclusiveBounds string `yaml:"exclusiveBounds" mapstructure:"exclusiveBounds"`
}

type Package struct {
	Package string `yaml:"package" mapstructure:"package"`
}

type SQL struct {
	Schema string `yaml:"schema,omitempty" mapstructure:"schema"`
}

type Server struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
	// RateLimit is the number of transforms allowed per second.
	RateLimit float64 `yaml:"rateLimit" mapstructure:"rateLimit"`
	Burst     int     `yaml:"burst" mapstructure:"burst"`
}

type Watch struct {
	Debounce time.Duration `yaml:"debounce" mapstructure:"debounce"`
}

type Store struct {
	// Driver is memory or sqlite.
	Driver string `yaml:"driver" mapstructure:"driver"`
	Path   string `yaml:"path" mapstructure:"path"`
}

type Log struct {
	JSON  bool   `yaml:"json" mapstructure:"json"`
	Level string `yaml:"level" mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("version", curVersion)
	v.SetDefault("input", "types.ts")
	v.SetDefault("output", "")
	v.SetDefault("target", string(gen.TargetZod))
	v.SetDefault("format", true)
	v.SetDefault("grpc.package", "types")
	v.SetDefault("go.package", "types")
	v.SetDefault("sql.schema", "")
	v.SetDefault("server.addr", "localhost:8080")
	v.SetDefault("server.rateLimit", 20)
	v.SetDefault("server.burst", 40)
	v.SetDefault("watch.debounce", "200ms")
	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.path", "typeshift.db")
	v.SetDefault("log.json", false)
	v.SetDefault("log.level", "info")
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// Default returns the configuration used when there is no config file.
// Environment variables still apply.
func Default() (*Config, error) {
	return decode(newViper())
}

// Read reads the config file at configPath. Values missing from the file
// come from the defaults and TYPESHIFT_ environment variables override both.
func Read(configPath string) (*Config, error) {
	fileData, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.Wrapf(err, `failed to read config file "%s"`, configPath)
	}

	var values map[string]any
	if err := yaml.Unmarshal(fileData, &values); err != nil {
		return nil, errors.Wrapf(err, `failed to unmarshal config file "%s"`, configPath)
	}

	v := newViper()
	if err := v.MergeConfigMap(values); err != nil {
		return nil, errors.Wrapf(err, `failed to merge config file "%s"`, configPath)
	}

	config, err := decode(v)
	if err != nil {
		return nil, errors.Wrapf(err, `invalid config file "%s"`, configPath)
	}

	return config, nil
}

// Load reads configPath when it exists and falls back to Default otherwise.
func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		return Default()
	}

	return Read(configPath)
}

func decode(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to decode config")
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) validate() error {
	if c.Version != curVersion {
		return errors.Newf("unsupported config version %d", c.Version)
	}

	if _, err := gen.ParseTarget(c.Target); err != nil {
		return err
	}

	if _, err := c.GenOptions(); err != nil {
		return err
	}

	switch c.Store.Driver {
	case "memory", "sqlite":
	default:
		return errors.Newf(`invalid store driver "%s", expected memory or sqlite`, c.Store.Driver)
	}

	if c.Watch.Debounce <= 0 {
		return errors.Newf("watch debounce must be positive, got %s", c.Watch.Debounce)
	}

	return nil
}

func (c *Config) GenOptions() (gen.Options, error) {
	opts := gen.Options{
		ExclusiveBounds: make(map[gen.Target]gen.BoundPolicy),
		GrpcPackage:     c.Grpc.Package,
		GoPackage:       c.Go.Package,
		SQLSchema:       c.SQL.Schema,
	}

	for id, t := range c.Targets {
		target, err := gen.ParseTarget(id)
		if err != nil {
			return opts, errors.Wrap(err, "in targets")
		}

		if t.ExclusiveBounds == "" {
			continue
		}

		policy, err := gen.ParseBoundPolicy(t.ExclusiveBounds)
		if err != nil {
			return opts, errors.Wrapf(err, "in targets.%s", id)
		}

		opts.ExclusiveBounds[target] = policy
	}

	return opts, nil
}

// Write stores c as a config file at configPath.
func Write(configPath string, c *Config) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return errors.Wrapf(err, `failed to write config file "%s"`, configPath)
	}

	return nil
}
