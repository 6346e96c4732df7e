package rotation

import (
	"math/rand"
	"time"
)

// Resolve applies the fallback rule shared by every widget source: a fetch
// error or empty result yields the built-in fallback list verbatim, so a
// widget is never empty on a fresh or unseeded deployment. Fetch failures are
// swallowed here; callers log them.
func Resolve[T any](items []T, err error, fallback []T) []T {
	if err != nil || len(items) == 0 {
		return fallback
	}
	return items
}

// Shuffle returns a copy of items in random order. The banner carousel
// shuffles at fetch time for fair rotation; the promo ticker does not.
func Shuffle[T any](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	rand.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// Widget composes a resolved item list with a Rotator and renders the current
// item. Unmounting a widget must call Stop so no background advancement leaks.
type Widget[T any] struct {
	items []T
	rot   *Rotator
}

// NewWidget builds a widget over items auto-advancing every interval. The
// rotator is started immediately; a single-item or empty list performs no
// timer work.
func NewWidget[T any](items []T, interval time.Duration) *Widget[T] {
	w := &Widget[T]{
		items: items,
		rot:   NewRotator(len(items), interval),
	}
	w.rot.Start()
	return w
}

// Current returns the item under the rotator's index. The zero value is
// returned for an empty widget.
func (w *Widget[T]) Current() T {
	var zero T
	if len(w.items) == 0 {
		return zero
	}
	return w.items[w.rot.Index()]
}

// Items returns the widget's resolved item list.
func (w *Widget[T]) Items() []T { return w.items }

// Rotator exposes the underlying timer for manual navigation and pausing.
func (w *Widget[T]) Rotator() *Rotator { return w.rot }

// Stop cancels the widget's timer.
func (w *Widget[T]) Stop() { w.rot.Stop() }
