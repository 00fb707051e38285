package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// ErrMissingRequired is returned by Validate when a required key has no value.
var ErrMissingRequired = errors.New("missing required environment variable")

// ErrInvalidValue is returned by Validate when a key holds an unusable value.
var ErrInvalidValue = errors.New("invalid configuration value")

type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Log     LogConfig     `koanf:"log"`
	Metrics MetricsConfig `koanf:"metrics"`
	Discord DiscordConfig `koanf:"discord"`
}

type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type MetricsConfig struct {
	Enabled bool `koanf:"enabled"`
}

// DiscordConfig carries the bot credentials and the guild ids the support
// command provisions against.
type DiscordConfig struct {
	PublicKey   string `koanf:"publickey"`
	Token       string `koanf:"token"`
	ClientID    string `koanf:"clientid"`
	CategoryID  string `koanf:"categoryid"`
	StaffRoleID string `koanf:"staffroleid"`
	R8RoleID    string `koanf:"r8roleid"`
	R9RoleID    string `koanf:"r9roleid"`

	MentionRoleID      string `koanf:"mentionroleid"`
	CommandName        string `koanf:"commandname"`
	APIBaseURL         string `koanf:"apibaseurl"`
	HTTPTimeoutSecs    int    `koanf:"httptimeoutsecs"`
	MaxSkewSeconds     int    `koanf:"maxskewseconds"`
	FollowupTimeoutSec int    `koanf:"followuptimeoutsecs"`
}

// discordEnvKeys maps the unprefixed environment names used by the bot
// deployment to koanf keys.
var discordEnvKeys = map[string]string{
	"DISCORD_PUBLIC_KEY": "discord.publickey",
	"DISCORD_TOKEN":      "discord.token",
	"CLIENT_ID":          "discord.clientid",
	"CATEGORY_ID":        "discord.categoryid",
	"STAFF_ROLE_ID":      "discord.staffroleid",
	"R8_ROLE_ID":         "discord.r8roleid",
	"R9_ROLE_ID":         "discord.r9roleid",
}

func Load(configPaths ...string) (*Config, error) {
	k := koanf.New(".")

	// Defaults
	_ = k.Load(confmap.Provider(map[string]any{
		"server.port":                 8080,
		"server.host":                 "0.0.0.0",
		"log.level":                   "info",
		"log.format":                  "json",
		"metrics.enabled":             true,
		"discord.commandname":         "crearcanal",
		"discord.mentionroleid":       "1363345052109377626",
		"discord.apibaseurl":          "https://discord.com/api/v10",
		"discord.httptimeoutsecs":     10,
		"discord.maxskewseconds":      0,
		"discord.followuptimeoutsecs": 900,
	}, "."), nil)

	// YAML file (optional)
	for _, path := range configPaths {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			// Config file is optional, skip if not found
			continue
		}
	}

	// Bot deployment variables: DISCORD_TOKEN -> discord.token
	_ = k.Load(env.Provider("", ".", func(s string) string {
		return discordEnvKeys[s]
	}), nil)

	// Service variables override everything
	// SUPPORTDESK_SERVER_PORT -> server.port
	_ = k.Load(env.Provider("SUPPORTDESK_", ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, "SUPPORTDESK_")),
			"_", ".",
		)
	}), nil)

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate reports the first required Discord setting that is missing, named
// by its environment variable, and rejects ids that are not snowflakes.
func (c *Config) Validate() error {
	required := []struct {
		env   string
		value string
	}{
		{"DISCORD_PUBLIC_KEY", c.Discord.PublicKey},
		{"DISCORD_TOKEN", c.Discord.Token},
		{"CATEGORY_ID", c.Discord.CategoryID},
		{"STAFF_ROLE_ID", c.Discord.StaffRoleID},
		{"CLIENT_ID", c.Discord.ClientID},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%w: %s", ErrMissingRequired, r.env)
		}
	}

	ids := []struct {
		env   string
		value string
	}{
		{"CATEGORY_ID", c.Discord.CategoryID},
		{"STAFF_ROLE_ID", c.Discord.StaffRoleID},
		{"CLIENT_ID", c.Discord.ClientID},
		{"R8_ROLE_ID", c.Discord.R8RoleID},
		{"R9_ROLE_ID", c.Discord.R9RoleID},
	}
	for _, id := range ids {
		value := strings.TrimSpace(id.value)
		if value == "" {
			continue
		}
		if _, err := strconv.ParseUint(value, 10, 64); err != nil {
			return fmt.Errorf("%w: %s must be a numeric id", ErrInvalidValue, id.env)
		}
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server port %d", ErrInvalidValue, c.Server.Port)
	}
	return nil
}

// LimitedRoleIDs returns the configured limited-access role ids in R8, R9
// order, skipping unset ones.
func (c DiscordConfig) LimitedRoleIDs() []string {
	var ids []string
	for _, id := range []string{c.R8RoleID, c.R9RoleID} {
		if v := strings.TrimSpace(id); v != "" {
			ids = append(ids, v)
		}
	}
	return ids
}
