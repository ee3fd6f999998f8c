package querycache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestGetCachesSuccess(t *testing.T) {
	c := New()
	var fetches atomic.Int32

	fetch := func(ctx context.Context) (any, error) {
		fetches.Add(1)
		return "value", nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.Get(context.Background(), NewKey("equipment"), fetch)
		require.NoError(t, err)
		assert.Equal(t, "value", v)
	}
	assert.EqualValues(t, 1, fetches.Load())
}

func TestConcurrentGetsCollapse(t *testing.T) {
	c := New()
	var fetches atomic.Int32
	gate := make(chan struct{})

	fetch := func(ctx context.Context) (any, error) {
		fetches.Add(1)
		<-gate
		return 42, nil
	}

	const callers = 10
	var wg sync.WaitGroup
	results := make([]any, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := c.Get(context.Background(), NewKey("activeShift"), fetch)
			require.NoError(t, err)
			results[i] = v
		}(i)
	}

	close(gate)
	wg.Wait()

	assert.EqualValues(t, 1, fetches.Load(), "concurrent callers must share one fetch")
	for _, v := range results {
		assert.Equal(t, 42, v)
	}
}

func TestErrorNotCached(t *testing.T) {
	c := New()
	var fetches atomic.Int32

	fetch := func(ctx context.Context) (any, error) {
		if fetches.Add(1) == 1 {
			return nil, errors.New("backend down")
		}
		return "ok", nil
	}

	_, err := c.Get(context.Background(), NewKey("tanks"), fetch)
	require.Error(t, err)

	v, err := c.Get(context.Background(), NewKey("tanks"), fetch)
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.EqualValues(t, 2, fetches.Load())
}

func TestInvalidateForcesRefetch(t *testing.T) {
	c := New()
	var fetches atomic.Int32

	fetch := func(ctx context.Context) (any, error) {
		return int(fetches.Add(1)), nil
	}

	key := NewKey("shiftAttendance", "42")
	v, _ := c.Get(context.Background(), key, fetch)
	assert.Equal(t, 1, v)

	c.Invalidate(key)
	v, _ = c.Get(context.Background(), key, fetch)
	assert.Equal(t, 2, v)
}

func TestInvalidateOnlyNamedKeys(t *testing.T) {
	c := New()
	fetch := func(ctx context.Context) (any, error) { return "x", nil }

	_, _ = c.Get(context.Background(), NewKey("equipment"), fetch)
	_, _ = c.Get(context.Background(), NewKey("positions"), fetch)
	require.Equal(t, 2, c.Len())

	c.Invalidate(NewKey("equipment"))
	assert.Equal(t, 1, c.Len())

	_, ok := c.Peek(NewKey("positions"))
	assert.True(t, ok)
	_, ok = c.Peek(NewKey("equipment"))
	assert.False(t, ok)
}

func TestClearDropsEverything(t *testing.T) {
	c := New()
	fetch := func(ctx context.Context) (any, error) { return "x", nil }

	_, _ = c.Get(context.Background(), NewKey("equipment"), fetch)
	_, _ = c.Get(context.Background(), NewKey("reports", "2026-08-30", "1"), fetch)

	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestKeyPartsDoNotCollide(t *testing.T) {
	assert.NotEqual(t, NewKey("reports", "ab"), NewKey("reports", "a", "b"))
}

func TestTypedFetch(t *testing.T) {
	c := New()
	v, err := Fetch(context.Background(), c, NewKey("n"), func(ctx context.Context) (int, error) {
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	_, err = Fetch(context.Background(), c, NewKey("bad"), func(ctx context.Context) (int, error) {
		return 0, errors.New("nope")
	})
	assert.Error(t, err)
}
