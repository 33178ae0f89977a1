// Package config loads and validates the portal configuration at startup.
// Fail-fast: if a required variable is missing or malformed, Load returns an
// error and the process exits.
//
// Sources, lowest precedence first: built-in defaults, the YAML file named by
// PORTAL_CONFIG (default configs/portal.yaml, optional), a .env file, then the
// process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/netip"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultConfigPath = "configs/portal.yaml"

// Config holds all runtime configuration for the portal service.
type Config struct {
	Port               string
	GRPCPort           string
	JobStoreURL        string
	DatabaseURL        string // optional; remembered sessions stay in memory without it
	RedisURL           string // optional; disables login throttling and application publishing
	UpstreamTimeout    time.Duration
	SessionTTL         time.Duration
	LoginRateLimit     int // attempts per client per minute, 0 disables
	ApplicationChannel string
	PurgeSchedule      string // cron spec
	LogLevel           slog.Level
	TrustedProxies     []netip.Prefix // peers whose X-Forwarded-For is believed
}

// fileConfig mirrors the YAML overlay. Durations are Go duration strings.
type fileConfig struct {
	Port               string `yaml:"port"`
	GRPCPort           string `yaml:"grpc_port"`
	JobStoreURL        string `yaml:"jobstore_url"`
	DatabaseURL        string `yaml:"database_url"`
	RedisURL           string `yaml:"redis_url"`
	UpstreamTimeout    string `yaml:"upstream_timeout"`
	SessionTTL         string `yaml:"session_ttl"`
	LoginRateLimit     *int   `yaml:"login_rate_limit_per_min"`
	ApplicationChannel string `yaml:"application_channel"`
	PurgeSchedule      string `yaml:"purge_schedule"`
	LogLevel           string   `yaml:"log_level"`
	TrustedProxies     []string `yaml:"trusted_proxies"`
}

// Load reads .env, the YAML overlay and the environment and returns a
// validated Config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	path := os.Getenv("PORTAL_CONFIG")
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
	}
	file, err := readFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			file = &fileConfig{}
		} else {
			return nil, err
		}
	}
	return build(file)
}

func readFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	log.Printf("[config] loaded %s", path)
	return &fc, nil
}

func build(fc *fileConfig) (*Config, error) {
	jobStoreURL := pick("JOBSTORE_URL", fc.JobStoreURL, "")
	if jobStoreURL == "" {
		return nil, fmt.Errorf("JOBSTORE_URL is required")
	}
	u, err := url.Parse(jobStoreURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("JOBSTORE_URL must be an http(s) URL, got %q", jobStoreURL)
	}

	timeout, err := duration("UPSTREAM_TIMEOUT", fc.UpstreamTimeout, 15*time.Second)
	if err != nil {
		return nil, err
	}
	ttl, err := duration("SESSION_TTL", fc.SessionTTL, 7*24*time.Hour)
	if err != nil {
		return nil, err
	}

	limit := 10
	if fc.LoginRateLimit != nil {
		limit = *fc.LoginRateLimit
	}
	if s := os.Getenv("LOGIN_RATE_LIMIT_PER_MIN"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("LOGIN_RATE_LIMIT_PER_MIN must be an integer, got %q", s)
		}
		limit = v
	}
	if limit < 0 {
		return nil, fmt.Errorf("LOGIN_RATE_LIMIT_PER_MIN must not be negative, got %d", limit)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(pick("LOG_LEVEL", fc.LogLevel, "info"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	proxyList := fc.TrustedProxies
	if v := strings.TrimSpace(os.Getenv("TRUSTED_PROXIES")); v != "" {
		proxyList = strings.Split(v, ",")
	}
	proxies, err := parseProxies(proxyList)
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:               pick("PORTAL_PORT", fc.Port, "8083"),
		GRPCPort:           pick("GRPC_PORT", fc.GRPCPort, "9083"),
		JobStoreURL:        jobStoreURL,
		DatabaseURL:        pick("DATABASE_URL", fc.DatabaseURL, ""),
		RedisURL:           pick("REDIS_URL", fc.RedisURL, ""),
		UpstreamTimeout:    timeout,
		SessionTTL:         ttl,
		LoginRateLimit:     limit,
		ApplicationChannel: pick("APPLICATION_CHANNEL", fc.ApplicationChannel, "EVENT_APPLICATION_SUBMITTED"),
		PurgeSchedule:      pick("PURGE_SCHEDULE", fc.PurgeSchedule, "@every 15m"),
		LogLevel:           level,
		TrustedProxies:     proxies,
	}, nil
}

// pick returns the env value, then the file value, then def.
func pick(env, file, def string) string {
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		return v
	}
	if v := strings.TrimSpace(file); v != "" {
		return v
	}
	return def
}

func duration(env, file string, def time.Duration) (time.Duration, error) {
	raw := pick(env, file, "")
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", env, raw)
	}
	return d, nil
}

// parseProxies accepts CIDR prefixes and bare addresses.
func parseProxies(list []string) ([]netip.Prefix, error) {
	var out []netip.Prefix
	for _, raw := range list {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if strings.Contains(raw, "/") {
			p, err := netip.ParsePrefix(raw)
			if err != nil {
				return nil, fmt.Errorf("TRUSTED_PROXIES: %w", err)
			}
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("TRUSTED_PROXIES: %w", err)
		}
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}
