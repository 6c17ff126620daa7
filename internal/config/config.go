package config

import (
	"ctchen222/morpion/internal/game"
	"ctchen222/morpion/internal/room"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel  string    `yaml:"log-level" env:"MORPION_LOG_LEVEL" env-default:"info"`
	HTTPAddr  string    `yaml:"http-addr" env:"MORPION_HTTP_ADDR" env-default:":8080"`
	JWTSecret string    `yaml:"jwt-secret" env:"MORPION_JWT_SECRET" env-default:"change-me"`
	Game      Game      `yaml:"game"`
	Redis     Redis     `yaml:"redis"`
	Telemetry Telemetry `yaml:"telemetry"`
}

type Game struct {
	InactivityTimeout time.Duration `yaml:"inactivity-timeout" env:"MORPION_INACTIVITY_TIMEOUT" env-default:"10m"`
	ReapInterval      time.Duration `yaml:"reap-interval" env:"MORPION_REAP_INTERVAL" env-default:"30s"`
	StartingMarker    string        `yaml:"starting-marker" env:"MORPION_STARTING_MARKER" env-default:"x"`
	HostLeavePolicy   string        `yaml:"host-leave-policy" env:"MORPION_HOST_LEAVE_POLICY" env-default:"transfer"`
	MailboxSize       int           `yaml:"mailbox-size" env:"MORPION_MAILBOX_SIZE" env-default:"16"`
	BotThinkTime      time.Duration `yaml:"bot-think-time" env:"MORPION_BOT_THINK_TIME" env-default:"300ms"`
}

type Redis struct {
	Enabled bool   `yaml:"enabled" env:"MORPION_REDIS_ENABLED" env-default:"false"`
	Host    string `yaml:"host" env:"MORPION_REDIS_HOST" env-default:"localhost"`
	Port    string `yaml:"port" env:"MORPION_REDIS_PORT" env-default:"6379"`
}

type Telemetry struct {
	Enabled  bool   `yaml:"enabled" env:"MORPION_OTEL_ENABLED" env-default:"false"`
	Endpoint string `yaml:"endpoint" env:"MORPION_OTEL_ENDPOINT" env-default:"otel-collector:4317"`
}

// Load reads the yaml file at path, then the environment. An empty path
// reads the environment only.
func Load(path string) (*Config, error) {
	config := &Config{}

	var err error
	if path == "" {
		err = cleanenv.ReadEnv(config)
	} else {
		err = cleanenv.ReadConfig(path, config)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to load config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// MustLoad is Load that panics.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}
	return config
}

// Validate rejects values the game layer would not accept.
func (c *Config) Validate() error {
	if _, err := game.ParseStartingMarker(c.Game.StartingMarker); err != nil {
		return err
	}
	if _, err := room.ParseHostLeavePolicy(c.Game.HostLeavePolicy); err != nil {
		return err
	}
	if c.Game.InactivityTimeout <= 0 {
		return fmt.Errorf("inactivity-timeout must be positive, got %s", c.Game.InactivityTimeout)
	}
	if c.Game.ReapInterval <= 0 {
		return fmt.Errorf("reap-interval must be positive, got %s", c.Game.ReapInterval)
	}
	if c.Game.MailboxSize <= 0 {
		return fmt.Errorf("mailbox-size must be positive, got %d", c.Game.MailboxSize)
	}
	return nil
}

// RoomOptions converts the game section. Call Validate first.
func (g Game) RoomOptions() room.Options {
	marker, _ := game.ParseStartingMarker(g.StartingMarker)
	policy, _ := room.ParseHostLeavePolicy(g.HostLeavePolicy)
	return room.Options{
		StartingMarker:  marker,
		HostLeavePolicy: policy,
		MailboxSize:     g.MailboxSize,
	}
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
