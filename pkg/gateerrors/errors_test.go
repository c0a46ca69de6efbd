package gateerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	err := New(ErrCodeObjectNotFound, "clip.mp4 is gone")

	assert.Equal(t, ErrCodeObjectNotFound, err.Code)
	assert.Equal(t, CategoryClient, err.Category)
	assert.Equal(t, "clip.mp4 is gone", err.Message)
	assert.False(t, err.Timestamp.IsZero())
	assert.Nil(t, err.Cause)
}

func TestError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  *GatewayError
		want string
	}{
		{
			name: "bare",
			err:  New(ErrCodeRateLimited, "too many requests"),
			want: "RATE_LIMITED: too many requests",
		},
		{
			name: "component",
			err:  New(ErrCodeUpstreamError, "fetch failed").WithComponent("s3"),
			want: "[s3] UPSTREAM_ERROR: fetch failed",
		},
		{
			name: "component and operation",
			err:  New(ErrCodeUpstreamError, "fetch failed").WithComponent("s3").WithOperation("GetObject"),
			want: "[s3:GetObject] UPSTREAM_ERROR: fetch failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestWrap_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, ErrCodeStoreUnavailable, "redis unreachable")

	require.ErrorIs(t, err, cause)
	assert.Equal(t, cause, err.Unwrap())
	assert.Equal(t, CategoryStore, err.Category)
}

func TestIs_MatchesByCode(t *testing.T) {
	a := New(ErrCodeObjectNotFound, "missing.mp4")
	b := New(ErrCodeObjectNotFound, "other.mkv")

	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, New(ErrCodeRateLimited, "nope")))
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", New(ErrCodeRangeUnsatisfiable, "bad range"))
	assert.Equal(t, ErrCodeRangeUnsatisfiable, CodeOf(wrapped))

	assert.Equal(t, ErrCodeInternalError, CodeOf(errors.New("plain")))
	assert.True(t, IsCode(wrapped, ErrCodeRangeUnsatisfiable))
	assert.False(t, IsCode(wrapped, ErrCodeObjectNotFound))
}

func TestGetCategory(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want ErrorCategory
	}{
		{ErrCodeNotHandled, CategoryClient},
		{ErrCodeObjectNotFound, CategoryClient},
		{ErrCodeRangeUnsatisfiable, CategoryClient},
		{ErrCodeRateLimited, CategoryLimit},
		{ErrCodeQuotaExhausted, CategoryLimit},
		{ErrCodeUpstreamError, CategoryUpstream},
		{ErrCodeStreamInterrupted, CategoryUpstream},
		{ErrCodeStoreUnavailable, CategoryStore},
		{ErrCodeInvalidConfig, CategoryConfiguration},
		{ErrCodeConfigLoad, CategoryConfiguration},
		{ErrCodeInternalError, CategoryInternal},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, GetCategory(tt.code))
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeObjectNotFound, http.StatusNotFound},
		{ErrCodeNotHandled, http.StatusNotFound},
		{ErrCodeRangeUnsatisfiable, http.StatusRequestedRangeNotSatisfiable},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{ErrCodeQuotaExhausted, http.StatusTooManyRequests},
		{ErrCodeStoreUnavailable, http.StatusServiceUnavailable},
		{ErrCodeUpstreamError, http.StatusInternalServerError},
		{ErrCodeInternalError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.code))
		})
	}
}
