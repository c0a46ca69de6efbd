package s3

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// BackendMetrics tracks S3 backend performance
type BackendMetrics struct {
	Requests       int64         `json:"requests"`
	Errors         int64         `json:"errors"`
	BytesFetched   int64         `json:"bytes_fetched"`
	AverageLatency time.Duration `json:"average_latency"`
	LastError      string        `json:"last_error,omitempty"`
	LastErrorTime  time.Time     `json:"last_error_time,omitempty"`
}

// ErrorRate returns the fraction of requests that failed
func (m BackendMetrics) ErrorRate() float64 {
	if m.Requests == 0 {
		return 0
	}
	return float64(m.Errors) / float64(m.Requests)
}

// String returns a human-readable summary
func (m BackendMetrics) String() string {
	return fmt.Sprintf("requests=%d errors=%d bytes=%d avg_latency=%v",
		m.Requests, m.Errors, m.BytesFetched, m.AverageLatency)
}

// parseContentRangeTotal extracts the total size from a Content-Range
// value such as "bytes 100-199/4096". A total of "*" is reported as not
// available.
func parseContentRangeTotal(contentRange string) (int64, bool) {
	idx := strings.LastIndex(contentRange, "/")
	if idx < 0 {
		return 0, false
	}
	suffix := contentRange[idx+1:]
	if suffix == "*" {
		return 0, false
	}
	total, err := strconv.ParseInt(suffix, 10, 64)
	if err != nil || total < 0 {
		return 0, false
	}
	return total, true
}
