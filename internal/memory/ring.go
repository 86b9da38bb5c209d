package memory

// Ring is a fixed-capacity buffer that evicts the oldest entry on overflow.
type Ring[T any] struct {
	buf   []T
	start int
	n     int
}

func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{buf: make([]T, capacity)}
}

// Push appends v, evicting the oldest entry when full.
func (r *Ring[T]) Push(v T) {
	if r.n < len(r.buf) {
		r.buf[(r.start+r.n)%len(r.buf)] = v
		r.n++
		return
	}
	r.buf[r.start] = v
	r.start = (r.start + 1) % len(r.buf)
}

func (r *Ring[T]) Len() int { return r.n }

func (r *Ring[T]) Cap() int { return len(r.buf) }

// Items returns entries oldest-first.
func (r *Ring[T]) Items() []T {
	out := make([]T, 0, r.n)
	for i := 0; i < r.n; i++ {
		out = append(out, r.buf[(r.start+i)%len(r.buf)])
	}
	return out
}

// ScanNewestFirst visits entries newest-first until fn returns false.
func (r *Ring[T]) ScanNewestFirst(fn func(v T) bool) {
	for i := r.n - 1; i >= 0; i-- {
		if !fn(r.buf[(r.start+i)%len(r.buf)]) {
			return
		}
	}
}
