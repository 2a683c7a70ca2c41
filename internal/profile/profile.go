package profile

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/hrygo/datetimex/server/timezone"
)

// EnvPrefix prefixes every environment variable, e.g. DATETIMEX_PORT.
const EnvPrefix = "DATETIMEX"

// Configuration keys. CLI flags use the same names.
const (
	KeyMode           = "mode"
	KeyAddr           = "addr"
	KeyPort           = "port"
	KeyCulture        = "culture"
	KeyTimezone       = "timezone"
	KeyPackPath       = "pack-path"
	KeyCacheSize      = "cache-size"
	KeyCacheTTL       = "cache-ttl"
	KeyRateLimit      = "rate-limit"
	KeyRateBurst      = "rate-burst"
	KeyMaxTextLength  = "max-text-length"
	KeyWorkers        = "workers"
	KeyRequestTimeout = "request-timeout"
)

// Profile is the configuration to start the recognizer and its server.
type Profile struct {
	// Mode can be "prod" or "dev"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Version is the current version of server
	Version string

	// Culture is used when a request names none
	Culture string
	// Timezone is used when a request names none
	Timezone string
	// PackPath is an optional YAML language pack registered next to the embedded ones
	PackPath string

	CacheSize int           // DATETIMEX_CACHE_SIZE (default: 1024, 0 disables)
	CacheTTL  time.Duration // DATETIMEX_CACHE_TTL (default: 10m)
	RateLimit float64       // DATETIMEX_RATE_LIMIT requests per second per client (default: 10, 0 disables)
	RateBurst int           // DATETIMEX_RATE_BURST (default: 20)

	MaxTextLength  int           // DATETIMEX_MAX_TEXT_LENGTH bytes (default: 10000)
	Workers        int           // DATETIMEX_WORKERS batch concurrency (default: 4)
	RequestTimeout time.Duration // DATETIMEX_REQUEST_TIMEOUT (default: 5s)
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyMode, "dev")
	v.SetDefault(KeyAddr, "")
	v.SetDefault(KeyPort, 8081)
	v.SetDefault(KeyCulture, "en-US")
	v.SetDefault(KeyTimezone, timezone.TimezoneUTC)
	v.SetDefault(KeyPackPath, "")
	v.SetDefault(KeyCacheSize, 1024)
	v.SetDefault(KeyCacheTTL, 10*time.Minute)
	v.SetDefault(KeyRateLimit, 10.0)
	v.SetDefault(KeyRateBurst, 20)
	v.SetDefault(KeyMaxTextLength, 10000)
	v.SetDefault(KeyWorkers, 4)
	v.SetDefault(KeyRequestTimeout, 5*time.Second)
}

// NewViper returns a viper instance with defaults that reads DATETIMEX_*
// environment variables. Dashes in keys become underscores.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// LoadDotEnv loads environment files, .env when none are named. Existing
// variables win and missing files are skipped.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return errors.Wrapf(err, "failed to load %s", f)
		}
	}
	return nil
}

// Load populates the profile from v.
func (p *Profile) Load(v *viper.Viper) {
	p.Mode = v.GetString(KeyMode)
	p.Addr = v.GetString(KeyAddr)
	p.Port = v.GetInt(KeyPort)
	p.Culture = v.GetString(KeyCulture)
	p.Timezone = v.GetString(KeyTimezone)
	p.PackPath = v.GetString(KeyPackPath)
	p.CacheSize = v.GetInt(KeyCacheSize)
	p.CacheTTL = v.GetDuration(KeyCacheTTL)
	p.RateLimit = v.GetFloat64(KeyRateLimit)
	p.RateBurst = v.GetInt(KeyRateBurst)
	p.MaxTextLength = v.GetInt(KeyMaxTextLength)
	p.Workers = v.GetInt(KeyWorkers)
	p.RequestTimeout = v.GetDuration(KeyRequestTimeout)
}

// FromEnv loads configuration from .env and DATETIMEX_* environment variables.
func (p *Profile) FromEnv() {
	if err := LoadDotEnv(); err != nil {
		slog.Warn("failed to load .env", slog.String("error", err.Error()))
	}
	p.Load(NewViper())
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

func checkPackPath(path string) (string, error) {
	if !filepath.IsAbs(path) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", err
		}
		path = abs
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", errors.Wrapf(err, "unable to access language pack %s", path)
	}
	if info.IsDir() {
		return "", errors.Errorf("language pack %s is a directory", path)
	}
	return path, nil
}

// Validate normalizes the mode and rejects out-of-range values.
func (p *Profile) Validate() error {
	if p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "dev"
	}

	if p.Port < 0 || p.Port > 65535 {
		return errors.Errorf("port %d out of range", p.Port)
	}
	if !timezone.IsValidTimezone(p.Timezone) {
		return errors.Errorf("invalid timezone %q", p.Timezone)
	}
	if p.CacheSize < 0 {
		return errors.Errorf("cache size must not be negative, got %d", p.CacheSize)
	}
	if p.CacheSize > 0 && p.CacheTTL <= 0 {
		return errors.Errorf("cache ttl must be positive, got %s", p.CacheTTL)
	}
	if p.RateLimit < 0 {
		return errors.Errorf("rate limit must not be negative, got %g", p.RateLimit)
	}
	if p.RateLimit > 0 && p.RateBurst < 1 {
		return errors.Errorf("rate burst must be at least 1, got %d", p.RateBurst)
	}
	if p.MaxTextLength < 1 {
		return errors.Errorf("max text length must be positive, got %d", p.MaxTextLength)
	}
	if p.Workers < 1 {
		return errors.Errorf("workers must be at least 1, got %d", p.Workers)
	}
	if p.RequestTimeout <= 0 {
		return errors.Errorf("request timeout must be positive, got %s", p.RequestTimeout)
	}

	if p.PackPath != "" {
		path, err := checkPackPath(p.PackPath)
		if err != nil {
			slog.Error("failed to check language pack", slog.String("path", p.PackPath), slog.String("error", err.Error()))
			return err
		}
		p.PackPath = path
	}
	return nil
}
