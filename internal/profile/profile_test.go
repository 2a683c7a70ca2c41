package profile

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validProfile() *Profile {
	p := &Profile{}
	p.Load(NewViper())
	return p
}

// TestProfileDefaults checks the values used when nothing is configured.
func TestProfileDefaults(t *testing.T) {
	p := validProfile()

	tests := []struct {
		name     string
		expected any
		actual   any
	}{
		{"Mode", "dev", p.Mode},
		{"Port", 8081, p.Port},
		{"Culture", "en-US", p.Culture},
		{"Timezone", "UTC", p.Timezone},
		{"CacheSize", 1024, p.CacheSize},
		{"CacheTTL", 10 * time.Minute, p.CacheTTL},
		{"RateLimit", 10.0, p.RateLimit},
		{"RateBurst", 20, p.RateBurst},
		{"MaxTextLength", 10000, p.MaxTextLength},
		{"Workers", 4, p.Workers},
		{"RequestTimeout", 5 * time.Second, p.RequestTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.actual != tt.expected {
				t.Errorf("%s: expected %v, got %v", tt.name, tt.expected, tt.actual)
			}
		})
	}

	if err := p.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

// TestProfileFromEnv checks that DATETIMEX_* variables override defaults.
func TestProfileFromEnv(t *testing.T) {
	t.Setenv("DATETIMEX_PORT", "9090")
	t.Setenv("DATETIMEX_TIMEZONE", "America/New_York")
	t.Setenv("DATETIMEX_CACHE_TTL", "30s")
	t.Setenv("DATETIMEX_RATE_LIMIT", "2.5")
	t.Setenv("DATETIMEX_MAX_TEXT_LENGTH", "500")

	p := validProfile()

	if p.Port != 9090 {
		t.Errorf("Port: expected 9090, got %d", p.Port)
	}
	if p.Timezone != "America/New_York" {
		t.Errorf("Timezone: expected America/New_York, got %q", p.Timezone)
	}
	if p.CacheTTL != 30*time.Second {
		t.Errorf("CacheTTL: expected 30s, got %s", p.CacheTTL)
	}
	if p.RateLimit != 2.5 {
		t.Errorf("RateLimit: expected 2.5, got %g", p.RateLimit)
	}
	if p.MaxTextLength != 500 {
		t.Errorf("MaxTextLength: expected 500, got %d", p.MaxTextLength)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("DATETIMEX_WORKERS=7\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DATETIMEX_WORKERS", "")
	os.Unsetenv("DATETIMEX_WORKERS")

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if p := validProfile(); p.Workers != 7 {
		t.Errorf("Workers: expected 7, got %d", p.Workers)
	}
}

func TestValidate(t *testing.T) {
	packFile := filepath.Join(t.TempDir(), "pack.yaml")
	if err := os.WriteFile(packFile, []byte("culture: en-US\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		mutate  func(*Profile)
		wantErr bool
	}{
		{"defaults", func(*Profile) {}, false},
		{"unknown mode falls back to dev", func(p *Profile) { p.Mode = "staging" }, false},
		{"negative port", func(p *Profile) { p.Port = -1 }, true},
		{"port too large", func(p *Profile) { p.Port = 70000 }, true},
		{"bad timezone", func(p *Profile) { p.Timezone = "Mars/Olympus" }, true},
		{"negative cache", func(p *Profile) { p.CacheSize = -1 }, true},
		{"cache without ttl", func(p *Profile) { p.CacheTTL = 0 }, true},
		{"disabled cache needs no ttl", func(p *Profile) { p.CacheSize, p.CacheTTL = 0, 0 }, false},
		{"negative rate", func(p *Profile) { p.RateLimit = -1 }, true},
		{"rate without burst", func(p *Profile) { p.RateBurst = 0 }, true},
		{"zero text length", func(p *Profile) { p.MaxTextLength = 0 }, true},
		{"zero workers", func(p *Profile) { p.Workers = 0 }, true},
		{"zero timeout", func(p *Profile) { p.RequestTimeout = 0 }, true},
		{"missing pack", func(p *Profile) { p.PackPath = filepath.Join(t.TempDir(), "nope.yaml") }, true},
		{"pack is a directory", func(p *Profile) { p.PackPath = t.TempDir() }, true},
		{"pack file", func(p *Profile) { p.PackPath = packFile }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProfile()
			tt.mutate(p)
			err := p.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_NormalizesMode(t *testing.T) {
	p := validProfile()
	p.Mode = "demo"
	if err := p.Validate(); err != nil {
		t.Fatal(err)
	}
	if p.Mode != "dev" || !p.IsDev() {
		t.Errorf("Mode: expected dev, got %q", p.Mode)
	}
}
