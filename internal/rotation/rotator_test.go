package rotation

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRotator_ManualNavigationWraps(t *testing.T) {
	r := NewRotator(4, time.Hour)

	assert.Equal(t, 0, r.Index())
	assert.Equal(t, 1, r.Next())
	assert.Equal(t, 2, r.Next())
	assert.Equal(t, 3, r.Next())
	assert.Equal(t, 0, r.Next(), "Next should wrap to the first item")

	assert.Equal(t, 3, r.Prev(), "Prev from index 0 should wrap to the last item")
	assert.Equal(t, 2, r.Prev())
}

func TestRotator_PrevThenNextIsIdentity(t *testing.T) {
	for _, n := range []int{1, 2, 3, 7} {
		r := NewRotator(n, time.Hour)
		for start := 0; start < n; start++ {
			r.Jump(start)
			r.Prev()
			r.Next()
			assert.Equalf(t, start, r.Index(), "prev+next should return to %d for n=%d", start, n)

			r.Next()
			r.Prev()
			assert.Equalf(t, start, r.Index(), "next+prev should return to %d for n=%d", start, n)
		}
	}
}

func TestRotator_JumpClampsIntoRange(t *testing.T) {
	r := NewRotator(3, time.Hour)
	assert.Equal(t, 2, r.Jump(99))
	assert.Equal(t, 0, r.Jump(-5))
	assert.Equal(t, 1, r.Jump(1))
}

func TestRotator_AutoAdvanceModuloN(t *testing.T) {
	const n = 3
	r := NewRotator(n, 5*time.Millisecond)

	var mu sync.Mutex
	var seen []int
	r.OnAdvance(func(idx int) {
		mu.Lock()
		seen = append(seen, idx)
		mu.Unlock()
	})
	r.Start()
	defer r.Stop()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) >= 2*n
	}, 2*time.Second, time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	// After k ticks from index 0 the index is k mod n.
	for k, idx := range seen[:2*n] {
		assert.Equal(t, (k+1)%n, idx, "tick %d", k+1)
	}
}

func TestRotator_SingleItemNeverAdvances(t *testing.T) {
	r := NewRotator(1, time.Millisecond)
	r.Start()
	defer r.Stop()

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, r.Index())
	// Manual navigation over one item stays put as well.
	assert.Equal(t, 0, r.Next())
	assert.Equal(t, 0, r.Prev())
}

func TestRotator_ZeroItems(t *testing.T) {
	r := NewRotator(0, time.Millisecond)
	r.Start()
	defer r.Stop()
	assert.Equal(t, 0, r.Next())
	assert.Equal(t, 0, r.Prev())
	assert.Equal(t, 0, r.Jump(3))
}

func TestRotator_PauseKeepsIndexAndSuppressesAdvance(t *testing.T) {
	r := NewRotator(5, 5*time.Millisecond)
	r.Start()
	defer r.Stop()

	r.Jump(2)
	r.Pause()
	idx := r.Index()
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, idx, r.Index(), "paused rotator must not advance")

	var mu sync.Mutex
	advanced := false
	r.OnAdvance(func(int) {
		mu.Lock()
		advanced = true
		mu.Unlock()
	})
	r.Resume()
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return advanced
	}, 2*time.Second, time.Millisecond, "resumed rotator should advance again")
}

func TestRotator_StopCancelsTimer(t *testing.T) {
	r := NewRotator(3, time.Millisecond)

	var mu sync.Mutex
	ticks := 0
	r.OnAdvance(func(int) {
		mu.Lock()
		ticks++
		mu.Unlock()
	})
	r.Start()
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return ticks > 0
	}, 2*time.Second, time.Millisecond)

	r.Stop()
	mu.Lock()
	after := ticks
	mu.Unlock()
	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	assert.Equal(t, after, ticks, "no advancement may leak after Stop")
	mu.Unlock()

	// Stop is idempotent and Start after Stop stays stopped.
	r.Stop()
	r.Start()
	time.Sleep(10 * time.Millisecond)
	mu.Lock()
	assert.Equal(t, after, ticks)
	mu.Unlock()
}

func TestRotator_NoTickSurvivesStop(t *testing.T) {
	// A tick can already be buffered in the ticker channel when Stop runs.
	// Hammer short-lived rotators to catch any advancement firing after Stop
	// has returned.
	for i := 0; i < 500; i++ {
		r := NewRotator(3, time.Millisecond)
		var stopReturned atomic.Bool
		var leaked atomic.Bool
		r.OnAdvance(func(int) {
			if stopReturned.Load() {
				leaked.Store(true)
			}
		})
		r.Start()
		time.Sleep(time.Millisecond)
		r.Stop()
		stopReturned.Store(true)
		time.Sleep(2 * time.Millisecond)
		require.False(t, leaked.Load(), "advancement fired after Stop returned (iteration %d)", i)
	}
}

func TestResolve_FallbackRules(t *testing.T) {
	fallback := []string{"a", "b"}

	assert.Equal(t, fallback, Resolve(nil, nil, fallback), "empty result yields fallback")
	assert.Equal(t, fallback, Resolve([]string{}, nil, fallback))
	assert.Equal(t, fallback, Resolve([]string{"x"}, errors.New("boom"), fallback), "fetch error yields fallback")
	assert.Equal(t, []string{"x"}, Resolve([]string{"x"}, nil, fallback), "non-empty result used verbatim")
	assert.NotEmpty(t, Resolve([]string(nil), nil, fallback), "a source with a fallback never yields an empty list")
}

func TestShuffle_PreservesElements(t *testing.T) {
	in := []int{1, 2, 3, 4, 5, 6, 7, 8}
	out := Shuffle(in)
	assert.ElementsMatch(t, in, out)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, in, "input must not be mutated")
}

func TestWidget_CurrentFollowsRotator(t *testing.T) {
	w := NewWidget([]string{"one", "two", "three"}, time.Hour)
	defer w.Stop()

	assert.Equal(t, "one", w.Current())
	w.Rotator().Next()
	assert.Equal(t, "two", w.Current())
	w.Rotator().Jump(2)
	assert.Equal(t, "three", w.Current())
	w.Rotator().Prev()
	assert.Equal(t, "two", w.Current())
}

func TestWidget_EmptyReturnsZeroValue(t *testing.T) {
	w := NewWidget([]string(nil), time.Hour)
	defer w.Stop()
	assert.Equal(t, "", w.Current())
}
