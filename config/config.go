package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Server ServerConfig
	World  WorldConfig
	Tree   TreeConfig
	Sim    SimConfig
}

type ServerConfig struct {
	Addr string
}

type WorldConfig struct {
	Width  float64
	Height float64
}

type TreeConfig struct {
	Capacity int
}

type SimConfig struct {
	Tick            time.Duration
	Broadcast       time.Duration
	InsertRate      float64 `mapstructure:"insert_rate"`
	MaxSpeed        int     `mapstructure:"max_speed"`
	InitialPoints   int     `mapstructure:"initial_points"`
	CollisionRadius float64 `mapstructure:"collision_radius"`
	Seed            int64
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("world.width", 640)
	v.SetDefault("world.height", 480)
	v.SetDefault("tree.capacity", 20)
	v.SetDefault("sim.tick", 33*time.Millisecond)
	v.SetDefault("sim.broadcast", 100*time.Millisecond)
	v.SetDefault("sim.insert_rate", 0)
	v.SetDefault("sim.max_speed", 5)
	v.SetDefault("sim.initial_points", 200)
	v.SetDefault("sim.collision_radius", 8)
	v.SetDefault("sim.seed", 0)
}

// Load reads config.yaml from the given directories (the working directory
// when none are given) and applies PQT_ environment overrides, e.g.
// PQT_TREE_CAPACITY. A missing config file is not an error.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{"."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvPrefix("pqt")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch {
	case c.Tree.Capacity < 1:
		return fmt.Errorf("%w: tree.capacity must be at least 1, got %d", ErrInvalidConfig, c.Tree.Capacity)
	case c.World.Width <= 0 || c.World.Height <= 0:
		return fmt.Errorf("%w: world size must be positive, got %vx%v", ErrInvalidConfig, c.World.Width, c.World.Height)
	case c.Sim.Tick <= 0 || c.Sim.Broadcast <= 0:
		return fmt.Errorf("%w: sim.tick and sim.broadcast must be positive", ErrInvalidConfig)
	case c.Sim.MaxSpeed < 0 || c.Sim.InitialPoints < 0 || c.Sim.CollisionRadius < 0:
		return fmt.Errorf("%w: sim.max_speed, sim.initial_points and sim.collision_radius must not be negative", ErrInvalidConfig)
	}
	return nil
}
