package window

// Window is a fixed-capacity ring holding the most recent prices in
// arrival order. It is owned by the ingestion loop and is not safe for
// concurrent use.
type Window struct {
	prices []float64
	head   int
	count  int
}

// New creates a window that keeps the capacity most recent prices.
func New(capacity int) *Window {
	if capacity < 1 {
		capacity = 1
	}
	return &Window{prices: make([]float64, capacity)}
}

// Push appends a price, evicting the oldest entry once the window is
// at capacity.
func (w *Window) Push(price float64) {
	w.prices[w.head] = price
	w.head = (w.head + 1) % len(w.prices)
	if w.count < len(w.prices) {
		w.count++
	}
}

// Len reports how many prices the window currently holds.
func (w *Window) Len() int {
	return w.count
}

// Cap reports the window capacity.
func (w *Window) Cap() int {
	return len(w.prices)
}

// Snapshot returns the current contents oldest first. The returned
// slice is a copy and stays valid across later pushes.
func (w *Window) Snapshot() []float64 {
	out := make([]float64, w.count)
	if w.count < len(w.prices) {
		copy(out, w.prices[:w.count])
		return out
	}
	n := copy(out, w.prices[w.head:])
	copy(out[n:], w.prices[:w.head])
	return out
}
