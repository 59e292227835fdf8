package shell

import "sync"

// View guards a rendered view against results that arrive after a newer load
// started or after the view was torn down.
type View struct {
	mu     sync.Mutex
	gen    uint64
	closed bool
}

// Begin starts a new load and returns its generation. Results from earlier
// generations are dropped from now on.
func (v *View) Begin() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.gen++
	return v.gen
}

// Apply runs fn when gen is still the current generation and the view is
// open. It reports whether fn ran.
func (v *View) Apply(gen uint64, fn func()) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed || gen != v.gen {
		return false
	}
	fn()
	return true
}

// Close tears the view down. Pending results are discarded.
func (v *View) Close() {
	v.mu.Lock()
	v.closed = true
	v.mu.Unlock()
}

// Closed reports whether Close was called.
func (v *View) Closed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closed
}
