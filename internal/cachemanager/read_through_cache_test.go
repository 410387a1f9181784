package cachemanager

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/sidediff/internal/diff"
	"github.com/zjrosen/sidediff/internal/mocks"
)

func countingCompute(calls *int) func(context.Context, DiffRequest) (diff.Result, error) {
	return func(_ context.Context, req DiffRequest) (diff.Result, error) {
		*calls++
		return diff.Compute(req.Old, req.New, req.Options)
	}
}

func TestReadThroughCache_SkipCacheNeverTouchesManager(t *testing.T) {
	managerMock := mocks.NewMockCacheManager[string, diff.Result](t)
	calls := 0
	rt := NewReadThroughCache[string, diff.Result, DiffRequest](managerMock, countingCompute(&calls), true)

	res, err := rt.Get(context.Background(), "key", DiffRequest{Old: "a", New: "b"}, time.Minute)
	require.NoError(t, err)
	require.Len(t, res.Lines, 1)

	_, err = rt.GetWithRefresh(context.Background(), "key", DiffRequest{Old: "a", New: "b"}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, 2, calls)
}

func TestReadThroughCache_Get_WithValueInCache(t *testing.T) {
	cached := diff.Result{DiffBlockStarts: []int{0}}
	managerMock := mocks.NewMockCacheManager[string, diff.Result](t)
	managerMock.EXPECT().Get(mock.Anything, "key").Return(cached, true)

	calls := 0
	rt := NewReadThroughCache[string, diff.Result, DiffRequest](managerMock, countingCompute(&calls), false)

	res, err := rt.Get(context.Background(), "key", DiffRequest{Old: "a", New: "b"}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, cached, res)
	require.Zero(t, calls)
}

func TestReadThroughCache_Get_MissStoresValue(t *testing.T) {
	expected, err := diff.Compute("x", "y", diff.Options{})
	require.NoError(t, err)

	managerMock := mocks.NewMockCacheManager[string, diff.Result](t)
	managerMock.EXPECT().Get(mock.Anything, "key").Return(diff.Result{}, false)
	managerMock.EXPECT().Set(mock.Anything, "key", expected, time.Minute).Return()

	calls := 0
	rt := NewReadThroughCache[string, diff.Result, DiffRequest](managerMock, countingCompute(&calls), false)

	res, err := rt.Get(context.Background(), "key", DiffRequest{Old: "x", New: "y"}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, expected, res)
	require.Equal(t, 1, calls)
}

func TestReadThroughCache_GetWithRefresh_ErrorIsNotCached(t *testing.T) {
	managerMock := mocks.NewMockCacheManager[string, diff.Result](t)
	managerMock.EXPECT().GetWithRefresh(mock.Anything, "key", time.Minute).Return(diff.Result{}, false)

	boom := errors.New("boom")
	rt := NewReadThroughCache[string, diff.Result, DiffRequest](
		managerMock,
		func(context.Context, DiffRequest) (diff.Result, error) { return diff.Result{}, boom },
		false,
	)

	_, err := rt.GetWithRefresh(context.Background(), "key", DiffRequest{}, time.Minute)
	require.ErrorIs(t, err, boom)
	managerMock.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReadThroughCache_GetWithRefresh_Hit(t *testing.T) {
	cached := diff.Result{DiffBlockStarts: []int{2}}
	managerMock := mocks.NewMockCacheManager[string, diff.Result](t)
	managerMock.EXPECT().GetWithRefresh(mock.Anything, "key", time.Minute).Return(cached, true)

	calls := 0
	rt := NewReadThroughCache[string, diff.Result, DiffRequest](managerMock, countingCompute(&calls), false)

	res, err := rt.GetWithRefresh(context.Background(), "key", DiffRequest{}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, cached, res)
	require.Zero(t, calls)
}

func TestReadThroughCache_ConcurrentMissesShareOneLoad(t *testing.T) {
	var loads atomic.Int32
	release := make(chan struct{})
	rt := NewReadThroughCache[string, diff.Result, DiffRequest](
		newResultCache(),
		func(_ context.Context, req DiffRequest) (diff.Result, error) {
			loads.Add(1)
			<-release
			return diff.Compute(req.Old, req.New, req.Options)
		},
		false,
	)

	const callers = 8
	var wg sync.WaitGroup
	results := make([]diff.Result, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := rt.Get(context.Background(), "key", DiffRequest{Old: "a", New: "b"}, time.Minute)
			assert.NoError(t, err)
			results[i] = res
		}()
	}
	require.Eventually(t, func() bool { return loads.Load() == 1 }, time.Second, time.Millisecond)
	close(release)
	wg.Wait()

	require.Equal(t, int32(1), loads.Load())
	for _, res := range results {
		require.Len(t, res.Lines, 1)
	}
}
