package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/datetimex/internal/profile"
)

func testProfile() *profile.Profile {
	p := &profile.Profile{}
	p.Load(profile.NewViper())
	p.Addr = "127.0.0.1"
	p.Port = 0
	return p
}

func TestNewServer_Routes(t *testing.T) {
	s, err := NewServer(testProfile(), nil)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/recognize",
		strings.NewReader(`{"text":"next Friday","reference":"2024-03-15T10:00:00Z"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"timex":"2024-03-22"`)
}

func TestServer_StartShutdown(t *testing.T) {
	s, err := NewServer(testProfile(), nil)
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))
	require.NotEmpty(t, s.Addr())

	resp, err := http.Get("http://" + s.Addr() + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"status":"ok"`)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, s.Shutdown(ctx))
}

func TestNewRecognizer_BadPack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("culture: [not a tag\n"), 0o600))

	p := testProfile()
	p.PackPath = path
	_, err := NewServer(p, nil)
	assert.Error(t, err)
}
