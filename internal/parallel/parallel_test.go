package parallel

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFor(t *testing.T) {
	cfg := DefaultConfig()

	var counter int64
	n := 1000

	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	assert.Equal(t, int64(n), counter)
}

func TestFor_EachIndexOnce(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 3, MinChunkSize: 1}

	hits := make([]int32, 17)
	For(len(hits), func(i int) {
		atomic.AddInt32(&hits[i], 1)
	}, cfg)

	for i, h := range hits {
		assert.Equal(t, int32(1), h, "index %d", i)
	}
}

func TestFor_Sequential(t *testing.T) {
	var order []int
	For(5, func(i int) {
		order = append(order, i)
	}, Sequential())

	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestFor_SmallChunk(t *testing.T) {
	// Small work units fall back to sequential.
	cfg := DefaultConfig()

	var counter int64
	n := cfg.MinChunkSize - 1

	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	assert.Equal(t, int64(n), counter)
}

func TestFor_ZeroWorkers(t *testing.T) {
	var counter int64
	For(10, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, Config{Enabled: true})

	assert.Equal(t, int64(10), counter)
}

func TestForErr(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1}
	errOdd := errors.New("odd")

	err := ForErr(8, func(i int) error {
		if i%2 == 1 {
			return fmt.Errorf("item %d: %w", i, errOdd)
		}
		return nil
	}, cfg)

	require.Error(t, err)
	assert.ErrorIs(t, err, errOdd)
	assert.Equal(t, "item 1: odd\nitem 3: odd\nitem 5: odd\nitem 7: odd", err.Error())
}

func TestForErr_NoErrors(t *testing.T) {
	err := ForErr(8, func(int) error { return nil }, DefaultConfig())
	assert.NoError(t, err)
}

func BenchmarkFor(b *testing.B) {
	cfg := DefaultConfig()
	n := 10000

	b.Run("parallel", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			var sum int64
			For(n, func(i int) {
				atomic.AddInt64(&sum, int64(i))
			}, cfg)
		}
	})

	b.Run("sequential", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			var sum int64
			For(n, func(i int) {
				atomic.AddInt64(&sum, int64(i))
			}, Sequential())
		}
	})
}
