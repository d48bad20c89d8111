package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Supported persistence drivers
const (
	DriverPostgres = "postgres"
	DriverMongoDB  = "mongodb"
)

// Config holds all application configuration
type Config struct {
	Bot         BotConfig               `mapstructure:"bot"`
	Database    DatabaseConfig          `mapstructure:"database"`
	Modules     map[string]ModuleConfig `mapstructure:"modules"`
	Economy     EconomyConfig           `mapstructure:"economy"`
	Leveling    LevelingConfig          `mapstructure:"leveling"`
	Reminders   RemindersConfig         `mapstructure:"reminders"`
	Logging     LoggingConfig           `mapstructure:"logging"`
	Environment string                  `mapstructure:"environment"` // "development", "production" or "test"
}

// BotConfig configures the Discord session
type BotConfig struct {
	Token        string `mapstructure:"token"`
	Prefix       string `mapstructure:"prefix"`
	Activity     string `mapstructure:"activity"`
	ActivityType string `mapstructure:"activity_type"` // playing, watching, listening or streaming
	GuildID      string `mapstructure:"guild_id"`      // publish commands to one guild instead of globally
}

type DatabaseConfig struct {
	Driver         string        `mapstructure:"driver"`
	URI            string        `mapstructure:"uri"`
	Name           string        `mapstructure:"name"`
	PoolSize       int           `mapstructure:"pool_size"`
	AutoMigrate    bool          `mapstructure:"auto_migrate"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type ModuleConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type EconomyConfig struct {
	StartingBalance int64 `mapstructure:"starting_balance"`
}

type LevelingConfig struct {
	XPPerMessage int64         `mapstructure:"xp_per_message"`
	Cooldown     time.Duration `mapstructure:"cooldown"`
}

type RemindersConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

// DefaultPath is read when no --config flag is given
const DefaultPath = "config.yaml"

// KnownModules lists every module the bot ships
var KnownModules = []string{"admin", "economy", "leveling", "moderation", "tickets", "reminders", "stats"}

func setDefaults(v *viper.Viper) {
	v.SetDefault("bot.token", "")
	v.SetDefault("bot.prefix", "!")
	v.SetDefault("bot.activity", "your community")
	v.SetDefault("bot.activity_type", "watching")
	v.SetDefault("bot.guild_id", "")

	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.uri", "")
	v.SetDefault("database.name", "logiq")
	v.SetDefault("database.pool_size", 10)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.connect_timeout", 5*time.Second)

	for _, name := range KnownModules {
		v.SetDefault("modules."+name+".enabled", true)
	}

	v.SetDefault("economy.starting_balance", 1000)
	v.SetDefault("leveling.xp_per_message", 10)
	v.SetDefault("leveling.cooldown", 60*time.Second)
	v.SetDefault("reminders.poll_interval", 30*time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("environment", "development")
}

// Load reads the YAML file at path, expands ${VAR} references and applies environment overrides.
// A missing file is not an error; defaults and the environment still apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("LOGIQ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
		}
	}

	expandEnvReferences(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if token := os.Getenv("DISCORD_BOT_TOKEN"); token != "" {
		cfg.Bot.Token = token
	}
	switch cfg.Database.Driver {
	case DriverMongoDB:
		if uri := os.Getenv("MONGODB_URI"); uri != "" {
			cfg.Database.URI = uri
		}
	default:
		if uri := os.Getenv("DATABASE_URL"); uri != "" {
			cfg.Database.URI = uri
		}
	}

	return &cfg, nil
}

// expandEnvReferences replaces whole-string "${VAR}" values with the variable when it is set
func expandEnvReferences(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		value, ok := v.Get(key).(string)
		if !ok || !strings.HasPrefix(value, "${") || !strings.HasSuffix(value, "}") {
			continue
		}
		if env, set := os.LookupEnv(value[2 : len(value)-1]); set {
			v.Set(key, env)
		}
	}
}

// Validate checks the loaded configuration
func (c *Config) Validate() error {
	if c.Environment != "test" && !c.HasToken() {
		return fmt.Errorf("DISCORD_BOT_TOKEN is required (set it in the environment or bot.token)")
	}
	if len(c.Bot.Prefix) == 0 || len(c.Bot.Prefix) > 5 {
		return fmt.Errorf("bot.prefix must be 1 to 5 characters, got %q", c.Bot.Prefix)
	}
	switch c.Database.Driver {
	case DriverPostgres, DriverMongoDB:
	default:
		return fmt.Errorf("unknown database.driver %q", c.Database.Driver)
	}
	if c.Database.PoolSize <= 0 {
		return fmt.Errorf("database.pool_size must be positive")
	}
	if c.Database.ConnectTimeout <= 0 {
		return fmt.Errorf("database.connect_timeout must be positive")
	}
	if c.Leveling.Cooldown < 0 {
		return fmt.Errorf("leveling.cooldown cannot be negative")
	}
	if c.Reminders.PollInterval <= 0 {
		return fmt.Errorf("reminders.poll_interval must be positive")
	}
	return nil
}

// HasToken reports whether a usable token was configured. An unexpanded ${VAR} does not count.
func (c *Config) HasToken() bool {
	return c.Bot.Token != "" && !strings.HasPrefix(c.Bot.Token, "${")
}

// ModuleEnabled reports whether a module is enabled in configuration. Unlisted modules are enabled.
func (c *Config) ModuleEnabled(name string) bool {
	module, ok := c.Modules[name]
	if !ok {
		return true
	}
	return module.Enabled
}

// IsProduction reports whether the bot runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
