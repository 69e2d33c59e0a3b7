package onecard

// deque is a ring buffer with O(1) push and pop at both ends. It grows by
// doubling only when full.
type deque[T any] struct {
	buf  []T
	head int
	n    int
}

func newDeque[T any](capacity int, items ...T) *deque[T] {
	if capacity < len(items) {
		capacity = len(items)
	}
	if capacity < 1 {
		capacity = 1
	}
	d := &deque[T]{buf: make([]T, capacity)}
	for _, it := range items {
		d.pushBack(it)
	}
	return d
}

func (d *deque[T]) len() int { return d.n }

func (d *deque[T]) at(i int) int {
	return (d.head + i) % len(d.buf)
}

func (d *deque[T]) grow() {
	if d.n < len(d.buf) {
		return
	}
	buf := make([]T, 2*len(d.buf))
	for i := 0; i < d.n; i++ {
		buf[i] = d.buf[d.at(i)]
	}
	d.buf = buf
	d.head = 0
}

func (d *deque[T]) pushBack(v T) {
	d.grow()
	d.buf[d.at(d.n)] = v
	d.n++
}

func (d *deque[T]) pushFront(v T) {
	d.grow()
	d.head = (d.head - 1 + len(d.buf)) % len(d.buf)
	d.buf[d.head] = v
	d.n++
}

func (d *deque[T]) popFront() (T, bool) {
	var zero T
	if d.n == 0 {
		return zero, false
	}
	v := d.buf[d.head]
	d.buf[d.head] = zero
	d.head = (d.head + 1) % len(d.buf)
	d.n--
	return v, true
}

func (d *deque[T]) popBack() (T, bool) {
	var zero T
	if d.n == 0 {
		return zero, false
	}
	i := d.at(d.n - 1)
	v := d.buf[i]
	d.buf[i] = zero
	d.n--
	return v, true
}

func (d *deque[T]) peekFront() (T, bool) {
	var zero T
	if d.n == 0 {
		return zero, false
	}
	return d.buf[d.head], true
}

func (d *deque[T]) peekBack() (T, bool) {
	var zero T
	if d.n == 0 {
		return zero, false
	}
	return d.buf[d.at(d.n-1)], true
}

// slice copies the contents front to back.
func (d *deque[T]) slice() []T {
	out := make([]T, d.n)
	for i := 0; i < d.n; i++ {
		out[i] = d.buf[d.at(i)]
	}
	return out
}
