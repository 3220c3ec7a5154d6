package parallel

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMap_PreservesOrder(t *testing.T) {
	items := []int{5, 1, 4, 2, 3}

	results := Map(context.Background(), items, 3, func(_ context.Context, _ int, n int) (int, error) {
		time.Sleep(time.Duration(n) * time.Millisecond)
		return n * 10, nil
	})

	require.Len(t, results, len(items))
	for i, r := range results {
		require.True(t, r.Launched)
		require.NoError(t, r.Err)
		require.Equal(t, items[i]*10, r.Value)
	}
}

func TestMap_BoundsConcurrency(t *testing.T) {
	var inFlight, peak int32
	items := make([]int, 32)

	Map(context.Background(), items, 4, func(context.Context, int, int) (struct{}, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return struct{}{}, nil
	})

	require.LessOrEqual(t, atomic.LoadInt32(&peak), int32(4))
	require.Positive(t, atomic.LoadInt32(&peak))
}

func TestMap_ErrorsStayInTheirSlot(t *testing.T) {
	boom := errors.New("boom")

	results := Map(context.Background(), []string{"a", "b", "c"}, 2, func(_ context.Context, _ int, s string) (string, error) {
		if s == "b" {
			return "", boom
		}
		return s + s, nil
	})

	require.Equal(t, "aa", results[0].Value)
	require.ErrorIs(t, results[1].Err, boom)
	require.Equal(t, "cc", results[2].Value)
}

func TestMap_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls int32
	results := Map(ctx, []int{1, 2, 3}, 2, func(context.Context, int, int) (int, error) {
		atomic.AddInt32(&calls, 1)
		return 0, nil
	})

	require.Zero(t, atomic.LoadInt32(&calls))
	for _, r := range results {
		require.False(t, r.Launched)
		require.ErrorIs(t, r.Err, context.Canceled)
	}
}

func TestMap_CancelStopsLaunching(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results := Map(ctx, []int{0, 1, 2, 3, 4, 5}, 1, func(_ context.Context, i int, _ int) (int, error) {
		if i == 1 {
			cancel()
		}
		return i, nil
	})

	require.True(t, results[0].Launched)
	require.True(t, results[1].Launched, "an in-flight call finishes")
	for _, r := range results[2:] {
		require.False(t, r.Launched)
		require.ErrorIs(t, r.Err, context.Canceled)
	}
}

func TestMap_Empty(t *testing.T) {
	results := Map(context.Background(), []int(nil), 0, func(context.Context, int, int) (int, error) {
		t.Fatal("must not be called")
		return 0, nil
	})
	require.Empty(t, results)
}
