package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/solarops/solarops/internal/identity"
)

const envPrefix = "SOLAROPS_"

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Log       LogConfig       `koanf:"log"`
	Auth      AuthConfig      `koanf:"auth"`
	Session   SessionConfig   `koanf:"session"`
	RateLimit RateLimitConfig `koanf:"ratelimit"`
	CORS      CORSConfig      `koanf:"cors"`
	Directory DirectoryConfig `koanf:"directory"`
	Audit     AuditConfig     `koanf:"audit"`
}

type AuthConfig struct {
	DevMode bool `koanf:"devmode"`
	// DevHandle is the directory account "Bearer dev" acts as.
	DevHandle string    `koanf:"devhandle"`
	JWT       JWTConfig `koanf:"jwt"`
}

type JWTConfig struct {
	SigningKey         string `koanf:"signingkey"`
	Issuer             string `koanf:"issuer"`
	ExpiryHours        int    `koanf:"expiryhours"`
	RefreshExpiryHours int    `koanf:"refreshexpiryhours"`
}

type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
}

// DatabaseConfig selects record storage. An empty URL keeps records in
// memory.
type DatabaseConfig struct {
	URL      string `koanf:"url"`
	MaxConns int    `koanf:"max_conns"`
	// Seed loads the demo data set on start. Existing records are kept.
	Seed bool `koanf:"seed"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// SessionConfig configures the console session slot.
type SessionConfig struct {
	Path         string `koanf:"path"`
	LoginDelayMS int    `koanf:"login_delay_ms"`
}

type RateLimitConfig struct {
	LoginPerSecond float64 `koanf:"login_per_second"`
	LoginBurst     int     `koanf:"login_burst"`
	// TrustedProxies lists CIDRs or addresses whose X-Forwarded-For is
	// believed. Empty means the peer address is always the client.
	TrustedProxies []string `koanf:"trusted_proxies"`
}

type AuditConfig struct {
	Enabled         bool `koanf:"enabled"`
	BufferSize      int  `koanf:"buffer_size"`
	BatchSize       int  `koanf:"batch_size"`
	FlushIntervalMS int  `koanf:"flush_interval_ms"`
}

type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// DirectoryConfig overrides the built-in accounts when Users is non-empty.
type DirectoryConfig struct {
	Users []UserConfig `koanf:"users"`
}

type UserConfig struct {
	ID          string `koanf:"id"`
	Handle      string `koanf:"handle"`
	DisplayName string `koanf:"displayname"`
	RoleLevel   string `koanf:"rolelevel"`
	Department  string `koanf:"department"`
	Avatar      string `koanf:"avatar"`
}

// Identities converts the configured users, or returns the built-in
// accounts when none are configured.
func (c DirectoryConfig) Identities() ([]identity.Identity, error) {
	if len(c.Users) == 0 {
		return identity.DefaultIdentities(), nil
	}

	out := make([]identity.Identity, 0, len(c.Users))
	for i, u := range c.Users {
		lvl, err := identity.ParseRoleLevel(u.RoleLevel)
		if err != nil {
			return nil, fmt.Errorf("directory.users[%d]: %w", i, err)
		}
		dept, err := identity.ParseDepartment(u.Department)
		if err != nil {
			return nil, fmt.Errorf("directory.users[%d]: %w", i, err)
		}
		out = append(out, identity.Identity{
			ID:          u.ID,
			Handle:      u.Handle,
			DisplayName: u.DisplayName,
			RoleLevel:   lvl,
			Department:  dept,
			Avatar:      u.Avatar,
		})
	}
	return out, nil
}

func Load(configPaths ...string) (*Config, error) {
	k := koanf.New(".")

	// Defaults
	_ = k.Load(confmap.Provider(map[string]any{
		"server.port":                 8080,
		"server.host":                 "0.0.0.0",
		"database.max_conns":          25,
		"database.seed":               true,
		"audit.enabled":               true,
		"audit.buffer_size":           4096,
		"audit.batch_size":            100,
		"audit.flush_interval_ms":     500,
		"log.level":                   "info",
		"log.format":                  "json",
		"auth.devmode":                false,
		"auth.devhandle":              "admin",
		"auth.jwt.issuer":             "solarops",
		"auth.jwt.expiryhours":        24,
		"auth.jwt.refreshexpiryhours": 168,
		"session.path":                "solarops-session.db",
		"session.login_delay_ms":      800,
		"ratelimit.login_per_second":  1.0,
		"ratelimit.login_burst":       5,
		"cors.allowed_origins":        []string{"http://localhost:5173"},
	}, "."), nil)

	// YAML file (optional)
	for _, path := range configPaths {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			// Config file is optional, skip if not found
			continue
		}
	}

	// Environment variables override everything
	// SOLAROPS_SERVER_PORT -> server.port
	_ = k.Load(env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, any) {
		key = envKey(key)
		if key == "cors.allowed_origins" || key == "ratelimit.trusted_proxies" {
			return key, splitList(value)
		}
		return key, value
	}), nil)

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// envKey maps SOLAROPS_SECTION_REST to section.rest. Only the first
// underscore separates the section, so SOLAROPS_DATABASE_MAX_CONNS becomes
// database.max_conns. auth.jwt is the one nested section.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	section, rest, ok := strings.Cut(key, "_")
	if !ok {
		return key
	}
	if section == "auth" {
		if sub, ok := strings.CutPrefix(rest, "jwt_"); ok {
			return "auth.jwt." + sub
		}
	}
	return section + "." + rest
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
