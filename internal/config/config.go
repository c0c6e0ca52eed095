package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Discord  DiscordConfig  `yaml:"discord"`
	Board    BoardConfig    `yaml:"board"`
	Poll     PollConfig     `yaml:"poll"`
	Daily    DailyConfig    `yaml:"daily"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// DiscordConfig holds the chat API connection configuration
type DiscordConfig struct {
	Token           string        `yaml:"token"`
	BotID           string        `yaml:"bot_id"`
	APIBase         string        `yaml:"api_base"`
	InputChannelID  string        `yaml:"input_channel_id"`
	OutputChannelID string        `yaml:"output_channel_id"`
	TestChannelID   string        `yaml:"test_channel_id"`
	FetchLimit      int           `yaml:"fetch_limit"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
}

// BoardConfig holds scoreboard configuration
type BoardConfig struct {
	Title              string `yaml:"title"`
	LiveTitle          string `yaml:"live_title"`
	MinimumPlayers     int    `yaml:"minimum_players"`
	Timezone           string `yaml:"timezone"`
	HoursAfterMidnight int    `yaml:"hours_after_midnight"`
	WindowHours        int    `yaml:"window_hours"`
}

// Location resolves the configured timezone
func (c *BoardConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// PollConfig holds realtime poll worker configuration
type PollConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

// DailyConfig holds the daily post schedule
type DailyConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Schedule string `yaml:"schedule"` // cron spec, evaluated in the board timezone
}

// KafkaConfig holds the score event producer configuration
type KafkaConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// RedisConfig holds the bot state store configuration
type RedisConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Addr         string        `yaml:"addr"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// PostgresConfig holds the results archive configuration
type PostgresConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Database        string        `yaml:"database"`
	SSLMode         string        `yaml:"ssl_mode"`
	MaxConnections  int           `yaml:"max_connections"`
	MinConnections  int           `yaml:"min_connections"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
}

// ConnectionString returns the PostgreSQL connection string
func (c *PostgresConfig) ConnectionString() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, sslMode,
	)
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	// Server defaults
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 5 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 120 * time.Second
	}

	// Discord defaults
	if c.Discord.APIBase == "" {
		c.Discord.APIBase = "https://discord.com/api/v10"
	}
	if c.Discord.FetchLimit == 0 {
		c.Discord.FetchLimit = 200
	}
	if c.Discord.RequestTimeout == 0 {
		c.Discord.RequestTimeout = 15 * time.Second
	}

	// Board defaults
	if c.Board.Title == "" {
		c.Board.Title = "Daily Game Scoreboard"
	}
	if c.Board.LiveTitle == "" {
		c.Board.LiveTitle = "Live Scoreboard"
	}
	if c.Board.MinimumPlayers == 0 {
		c.Board.MinimumPlayers = 1
	}
	if c.Board.Timezone == "" {
		c.Board.Timezone = "UTC"
	}
	if c.Board.WindowHours == 0 {
		c.Board.WindowHours = 24
	}

	// Poll defaults
	if c.Poll.Interval == 0 {
		c.Poll.Interval = 10 * time.Second
	}

	// Daily defaults
	if c.Daily.Schedule == "" {
		c.Daily.Schedule = "0 8 * * *"
	}

	// Kafka defaults
	if len(c.Kafka.Brokers) == 0 {
		c.Kafka.Brokers = []string{"localhost:9092"}
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "puzzle-score-events"
	}

	// Redis defaults
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Redis.DialTimeout == 0 {
		c.Redis.DialTimeout = 5 * time.Second
	}
	if c.Redis.ReadTimeout == 0 {
		c.Redis.ReadTimeout = 3 * time.Second
	}
	if c.Redis.WriteTimeout == 0 {
		c.Redis.WriteTimeout = 3 * time.Second
	}

	// PostgreSQL defaults
	if c.Postgres.Host == "" {
		c.Postgres.Host = "localhost"
	}
	if c.Postgres.Port == 0 {
		c.Postgres.Port = 5432
	}
	if c.Postgres.MaxConnections == 0 {
		c.Postgres.MaxConnections = 10
	}
	if c.Postgres.MinConnections == 0 {
		c.Postgres.MinConnections = 2
	}
	if c.Postgres.MaxConnLifetime == 0 {
		c.Postgres.MaxConnLifetime = 1 * time.Hour
	}
}

// DefaultConfig returns a configuration with all defaults
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.Poll.Enabled = true
	cfg.Daily.Enabled = true
	return cfg
}
