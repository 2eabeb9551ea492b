package parallel

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForVisitsEveryIndexOnce(t *testing.T) {
	tests := []struct {
		name string
		n    int
		opts Options
	}{
		{"empty", 0, Options{}},
		{"inline", 10, Options{Workers: 1}},
		{"single batch", 50, Options{Workers: 4}},
		{"many batches", 1000, Options{Workers: 4, BatchSize: 7}},
		{"defaults", 513, Options{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits := make([]int32, tt.n)
			For(tt.n, tt.opts, func(i int) {
				atomic.AddInt32(&hits[i], 1)
			})
			for i, h := range hits {
				assert.Equal(t, int32(1), h, "index %d", i)
			}
		})
	}
}

func TestChunksCoverRange(t *testing.T) {
	opts := Options{Workers: 3, BatchSize: 10}
	var total, calls atomic.Int64
	Chunks(95, opts, func(lo, hi int) {
		assert.Less(t, lo, hi)
		assert.LessOrEqual(t, hi-lo, 10)
		total.Add(int64(hi - lo))
		calls.Add(1)
	})

	assert.Equal(t, int64(95), total.Load())
	assert.Equal(t, int64(ChunkCount(95, opts)), calls.Load())
}

func TestChunkCount(t *testing.T) {
	assert.Equal(t, 0, ChunkCount(0, Options{}))
	assert.Equal(t, 1, ChunkCount(100, Options{Workers: 1}))
	assert.Equal(t, 1, ChunkCount(64, Options{Workers: 8}))
	assert.Equal(t, 2, ChunkCount(65, Options{Workers: 8}))
}
