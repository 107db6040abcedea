// Package binding remembers which (context, window) pairs have been made
// current together, so teardown can tell whether shared presentation
// state is still in use.
package binding

type pair[C, W comparable] struct {
	ctx C
	win W
}

// Tracker is a set of (context, window) pairs. The zero value of C or W
// acts as a wildcard in queries. A Tracker is not safe for concurrent use.
type Tracker[C, W comparable] struct {
	pairs []pair[C, W]
}

// Record adds the pair and reports whether it was new.
func (t *Tracker[C, W]) Record(ctx C, win W) bool {
	for _, p := range t.pairs {
		if p.ctx == ctx && p.win == win {
			return false
		}
	}
	t.pairs = append(t.pairs, pair[C, W]{ctx, win})
	return true
}

func match[T comparable](want, got T) bool {
	var zero T
	return want == zero || want == got
}

// InUse reports whether any recorded pair matches ctx and win.
func (t *Tracker[C, W]) InUse(ctx C, win W) bool {
	for _, p := range t.pairs {
		if match(ctx, p.ctx) && match(win, p.win) {
			return true
		}
	}
	return false
}

// Windows returns the windows recorded with ctx.
func (t *Tracker[C, W]) Windows(ctx C) []W {
	var out []W
	for _, p := range t.pairs {
		if p.ctx == ctx {
			out = append(out, p.win)
		}
	}
	return out
}

// Contexts returns the contexts recorded with win.
func (t *Tracker[C, W]) Contexts(win W) []C {
	var out []C
	for _, p := range t.pairs {
		if p.win == win {
			out = append(out, p.ctx)
		}
	}
	return out
}

// Forget removes every pair that references a destroyed ctx or win. A
// zero argument matches nothing. It returns the number removed.
func (t *Tracker[C, W]) Forget(ctx C, win W) int {
	var zc C
	var zw W
	kept := t.pairs[:0]
	for _, p := range t.pairs {
		if (ctx != zc && p.ctx == ctx) || (win != zw && p.win == win) {
			continue
		}
		kept = append(kept, p)
	}
	n := len(t.pairs) - len(kept)
	clear(t.pairs[len(kept):])
	t.pairs = kept
	return n
}

func (t *Tracker[C, W]) Len() int    { return len(t.pairs) }
func (t *Tracker[C, W]) Empty() bool { return len(t.pairs) == 0 }
