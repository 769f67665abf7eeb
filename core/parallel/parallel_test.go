package parallel

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParallelizeCoversEveryIndexOnce(t *testing.T) {
	for _, items := range []int{0, 1, 7, 100, 1013} {
		t.Run(fmt.Sprintf("items=%d", items), func(t *testing.T) {
			hits := make([]int32, items)
			Parallelize(items, func(start, end int) {
				for i := start; i < end; i++ {
					atomic.AddInt32(&hits[i], 1)
				}
			})
			for i, h := range hits {
				require.Equal(t, int32(1), h, "index %d", i)
			}
		})
	}
}

func TestParallelizeWithThresholdSequential(t *testing.T) {
	calls := 0
	ParallelizeWithThreshold(10, 64, func(start, end int) {
		calls++
		assert.Equal(t, 0, start)
		assert.Equal(t, 10, end)
	})
	assert.Equal(t, 1, calls)
}

func TestForEachReturnsLowestIndexError(t *testing.T) {
	out := make([]int, 500)
	err := ForEach(len(out), 8, func(i int) error {
		out[i] = i * 2
		if i == 123 || i == 400 {
			return fmt.Errorf("bad row %d", i)
		}
		return nil
	})
	require.EqualError(t, err, "bad row 123")
	assert.Equal(t, 998, out[499])

	require.NoError(t, ForEach(0, 8, func(int) error { return nil }))
}
