package throttle

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediagate/mediagate/pkg/gateerrors"
)

func TestBudgetConsume(t *testing.T) {
	b := NewBudget(100, time.Hour, nil)

	require.NoError(t, b.Consume(60))
	assert.Equal(t, int64(40), b.Remaining())

	require.NoError(t, b.Consume(40))
	assert.Equal(t, int64(0), b.Remaining())

	err := b.Consume(1)
	require.Error(t, err)
	assert.True(t, gateerrors.IsCode(err, gateerrors.ErrCodeQuotaExhausted))
}

func TestBudgetAllOrNothing(t *testing.T) {
	b := NewBudget(10, time.Hour, nil)

	err := b.Consume(11)
	require.Error(t, err)

	// The failed withdrawal must not have taken anything
	assert.Equal(t, int64(10), b.Remaining())
	require.NoError(t, b.Consume(10))
}

func TestBudgetZeroAndNegative(t *testing.T) {
	b := NewBudget(5, time.Hour, nil)

	assert.NoError(t, b.Consume(0))
	assert.NoError(t, b.Consume(-3))
	assert.Equal(t, int64(5), b.Remaining())
}

func TestBudgetWindowReset(t *testing.T) {
	b := NewBudget(10, 10*time.Millisecond, nil)

	require.NoError(t, b.Consume(10))
	require.Error(t, b.Consume(1))

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int64(10), b.Remaining())
	assert.NoError(t, b.Consume(10))
}

func TestBudgetStats(t *testing.T) {
	b := NewBudget(10, time.Hour, nil)

	_ = b.Consume(7)
	_ = b.Consume(7)

	consumed, denials := b.Stats()
	assert.Equal(t, int64(7), consumed)
	assert.Equal(t, int64(1), denials)
}

func TestBudgetedReader(t *testing.T) {
	src := io.NopCloser(strings.NewReader("0123456789"))
	b := NewBudget(100, time.Hour, nil)

	r := NewReader(src, b)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(data))
	assert.Equal(t, int64(90), b.Remaining())
}

func TestBudgetedReaderExhaustion(t *testing.T) {
	src := io.NopCloser(strings.NewReader(strings.Repeat("x", 64)))
	b := NewBudget(16, time.Hour, nil)

	r := NewReader(src, b)
	buf := make([]byte, 16)

	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 16, n)

	_, err = r.Read(buf)
	require.Error(t, err)
	assert.True(t, gateerrors.IsCode(err, gateerrors.ErrCodeQuotaExhausted))

	// Subsequent reads keep returning the same terminal error
	_, err2 := r.Read(buf)
	assert.True(t, errors.Is(err2, err) || gateerrors.IsCode(err2, gateerrors.ErrCodeQuotaExhausted))
}
