package capture

// ring tracks a set of pixel pack buffers used round robin. Each frame is
// read into one buffer while the oldest filled one is mapped, so the map
// does not stall on the read just issued.
type ring struct {
	n      int
	next   int
	filled int
}

// advance returns the buffer to read the current frame into and the
// buffer holding the oldest pending frame. ok is false until the ring has
// filled once.
func (r *ring) advance() (write, read int, ok bool) {
	write = r.next
	r.next = (r.next + 1) % r.n
	if r.filled < r.n-1 {
		r.filled++
		return write, 0, false
	}
	return write, r.next, true
}

// pending lists the buffers still holding unread frames, oldest first.
func (r *ring) pending() []int {
	out := make([]int, 0, r.filled)
	for i := r.filled; i > 0; i-- {
		out = append(out, (r.next-i+r.n)%r.n)
	}
	return out
}
