// Package types defines the shared data types and interfaces that connect
// the gateway core to its collaborators.
package types

import (
	"fmt"
	"io"
	"time"
)

// ByteRange represents a client-requested byte interval. Bounds are carried
// exactly as parsed from the Range header: Start is required, End is the
// inclusive upper bound and nil means "to end of object". Bounds validation
// against the object's real size is the store's job, not ours.
type ByteRange struct {
	Start int64
	End   *int64
}

// NewByteRange builds a bounded range. End must be >= start.
func NewByteRange(start, end int64) *ByteRange {
	return &ByteRange{Start: start, End: &end}
}

// NewOpenByteRange builds a range running to the end of the object.
func NewOpenByteRange(start int64) *ByteRange {
	return &ByteRange{Start: start}
}

// Header renders the range as an HTTP Range header value for the upstream
// fetch ("bytes=100-199" or "bytes=100-").
func (r ByteRange) Header() string {
	if r.End != nil {
		return fmt.Sprintf("bytes=%d-%d", r.Start, *r.End)
	}
	return fmt.Sprintf("bytes=%d-", r.Start)
}

// Object is the result of a successful upstream fetch. Body streams the
// requested bytes; the caller owns closing it.
type Object struct {
	Body          io.ReadCloser
	ContentLength int64  // bytes in Body
	TotalLength   int64  // full stored object size
	ContentRange  string // upstream Content-Range when the fetch was ranged
	ETag          string
	LastModified  time.Time
}

// ObjectInfo represents metadata about a stored object
type ObjectInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
	ETag         string    `json:"etag"`
	ContentType  string    `json:"content_type"`
}

// NegativeCacheStats represents negative-cache performance statistics
type NegativeCacheStats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Entries int64 `json:"entries"`
	Expired int64 `json:"expired"`
}
