package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/datetimex/server/internal/observability"
)

// StatsResponse represents the recognizer counters since start.
type StatsResponse struct {
	*observability.MetricsSnapshot
	SuccessRate float64  `json:"successRate"`
	Cultures    []string `json:"cultures"`
	CacheLen    int      `json:"cacheLen"`
}

// Stats returns the request counters.
// GET /api/v1/stats
func (s *APIV1Service) Stats(c echo.Context) error {
	snap := s.Metrics.Snapshot()
	resp := StatsResponse{
		MetricsSnapshot: snap,
		SuccessRate:     snap.SuccessRate(),
		Cultures:        s.Recognizer.Cultures(),
	}
	if s.cache != nil {
		resp.CacheLen = s.cache.Len()
	}
	return c.JSON(http.StatusOK, resp)
}
