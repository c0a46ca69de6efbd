package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorDisabled(t *testing.T) {
	c, err := NewCollector(&Config{Enabled: false})
	require.NoError(t, err)

	// No-ops must not panic when disabled
	c.RecordRequest("ok", time.Millisecond)
	c.RecordBytesStreamed(100)
	c.RecordThrottleDenial()
	c.RecordRateLimitRejection("burst", false)
	c.RecordNegCacheLookup(true)
	c.UpdateBudgetRemaining(5)
	c.StreamStarted()
	c.StreamFinished()
}

func TestCollectorExposition(t *testing.T) {
	c, err := NewCollector(&Config{Enabled: true, Namespace: "mediagate"})
	require.NoError(t, err)

	c.RecordRequest("ok", 20*time.Millisecond)
	c.RecordRequest("not_found", time.Millisecond)
	c.RecordBytesStreamed(2048)
	c.RecordThrottleDenial()
	c.RecordRateLimitRejection("daily", true)
	c.RecordNegCacheLookup(true)
	c.RecordNegCacheLookup(false)
	c.UpdateBudgetRemaining(1 << 30)
	c.StreamStarted()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	out := string(body)
	for _, want := range []string{
		`mediagate_requests_total{outcome="ok"} 1`,
		`mediagate_requests_total{outcome="not_found"} 1`,
		"mediagate_bytes_streamed_total 2048",
		"mediagate_throttle_denials_total 1",
		`mediagate_ratelimit_rejections_total{degraded="true",tier="daily"} 1`,
		`mediagate_negative_cache_lookups_total{result="hit"} 1`,
		"mediagate_active_streams 1",
	} {
		assert.True(t, strings.Contains(out, want), "missing %q in exposition", want)
	}
}

func TestNewCollectorDefaults(t *testing.T) {
	c, err := NewCollector(nil)
	require.NoError(t, err)
	assert.NotNil(t, c.Handler())
}
