package main

import (
	"crypto/tls"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/language"
)

type config struct {
	ListenAddr      string
	ShutdownTimeout time.Duration
	UsersFile       string
	TasksFile       string
	MessagesDir     string
	DefaultLocale   language.Tag
	Redis           *redis.Options
	CacheTTL        time.Duration
	LogLevel        log.Level
	AllowOrigins    []string
}

// loadConfig reads settings through getenv so tests can supply their own
// environment.
func loadConfig(getenv func(string) string) (config, error) {
	cfg := config{
		ListenAddr:      ":8080",
		ShutdownTimeout: 10 * time.Second,
		DefaultLocale:   language.English,
		CacheTTL:        time.Minute,
		LogLevel:        log.InfoLevel,
		AllowOrigins:    []string{"*"},
	}

	if v := getenv("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := getenv("SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return config{}, fmt.Errorf("invalid SHUTDOWN_TIMEOUT %q", v)
		}
		cfg.ShutdownTimeout = d
	}

	cfg.UsersFile = getenv("USERS_FILE")
	if cfg.UsersFile == "" {
		return config{}, errors.New("missing USERS_FILE")
	}
	cfg.TasksFile = getenv("TASKS_FILE")
	cfg.MessagesDir = getenv("MESSAGES_DIR")

	if v := getenv("DEFAULT_LOCALE"); v != "" {
		tag, err := language.Parse(v)
		if err != nil {
			return config{}, fmt.Errorf("invalid DEFAULT_LOCALE: %w", err)
		}
		cfg.DefaultLocale = tag
	}

	if v := getenv("REDIS_CONNECTION_STRING"); v != "" {
		cfg.Redis = parseRedisOptions(v)
	}
	if v := getenv("TASKS_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return config{}, fmt.Errorf("invalid TASKS_CACHE_TTL %q", v)
		}
		cfg.CacheTTL = d
	}

	if v := getenv("LOG_LEVEL"); v != "" {
		lvl, err := log.ParseLevel(v)
		if err != nil {
			return config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
		cfg.LogLevel = lvl
	}
	if dbg, err := strconv.ParseBool(getenv("DEBUG")); err == nil && dbg {
		cfg.LogLevel = log.DebugLevel
	}

	if v := getenv("CORS_ALLOW_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		if len(origins) > 0 {
			cfg.AllowOrigins = origins
		}
	}
	return cfg, nil
}

// parseRedisOptions accepts a redis:// URL or the "host:port,password=...,ssl=true"
// form used by managed Redis connection strings.
func parseRedisOptions(conn string) *redis.Options {
	if opts, err := redis.ParseURL(conn); err == nil {
		return opts
	}
	parts := strings.Split(conn, ",")
	opts := &redis.Options{Addr: strings.TrimSpace(parts[0])}
	for _, p := range parts[1:] {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(kv[0])) {
		case "password":
			opts.Password = kv[1]
		case "ssl":
			if strings.EqualFold(strings.TrimSpace(kv[1]), "true") {
				opts.TLSConfig = &tls.Config{}
			}
		}
	}
	return opts
}
