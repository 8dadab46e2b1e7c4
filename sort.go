package stratum

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// zKey is one entry in the y-sort: an entity and the world vertical
// coordinate it sorts by.
type zKey[E comparable] struct {
	y      float64
	entity E
}

// keyLessOrEqual returns true if a should sort before or at the same
// position as b. Larger world Y sorts first: screen-up is the back of a
// depth band. Using <= keeps merges stable, though callers may not rely on
// tie order.
func keyLessOrEqual[E comparable](a, b zKey[E]) bool {
	return a.y >= b.y
}

// parallelSortMin is the slice length below which the parallel strategy
// falls back to the sequential one; goroutine overhead dominates under it.
const parallelSortMin = 4096

// sortKeys sorts keys in place using scratch as swap space. scratch must be
// at least len(keys) long.
//
// Bottom-up merge sort, same shape as willow's render-command sort: zero
// allocations once the caller's scratch buffer reaches its high-water mark.
// When parallel is true, the independent run merges of each width round run
// concurrently; every round still merges the same runs in the same way, so
// the result is identical to the sequential sort.
func sortKeys[E comparable](keys, scratch []zKey[E], parallel bool) {
	n := len(keys)
	if n <= 1 {
		return
	}
	parallel = parallel && n >= parallelSortMin

	a := keys
	b := scratch[:n]
	swapped := false

	for width := 1; width < n; width *= 2 {
		if parallel && n/(2*width) >= 2 {
			mergeRoundParallel(a, b, n, width)
		} else {
			mergeRound(a, b, n, width)
		}
		a, b = b, a
		swapped = !swapped
	}

	if swapped {
		copy(keys, scratch)
	}
}

// mergeRound merges every adjacent pair of width-sized runs from src into dst.
func mergeRound[E comparable](src, dst []zKey[E], n, width int) {
	for i := 0; i < n; i += 2 * width {
		lo, mid, hi := runBounds(i, width, n)
		mergeRun(src, dst, lo, mid, hi)
	}
}

// mergeRoundParallel is mergeRound with the independent run merges spread
// over GOMAXPROCS goroutines. Each merge owns a disjoint region of dst.
func mergeRoundParallel[E comparable](src, dst []zKey[E], n, width int) {
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < n; i += 2 * width {
		lo, mid, hi := runBounds(i, width, n)
		g.Go(func() error {
			mergeRun(src, dst, lo, mid, hi)
			return nil
		})
	}
	// Merges can't fail; Wait is just the join point.
	_ = g.Wait()
}

// runBounds clamps the run pair starting at i to the slice length.
func runBounds(i, width, n int) (lo, mid, hi int) {
	lo = i
	mid = lo + width
	if mid > n {
		mid = n
	}
	hi = lo + 2*width
	if hi > n {
		hi = n
	}
	return lo, mid, hi
}

// mergeRun merges two sorted runs [lo, mid) and [mid, hi) from src into dst.
func mergeRun[E comparable](src, dst []zKey[E], lo, mid, hi int) {
	i, j, k := lo, mid, lo
	for i < mid && j < hi {
		if keyLessOrEqual(src[i], src[j]) {
			dst[k] = src[i]
			i++
		} else {
			dst[k] = src[j]
			j++
		}
		k++
	}
	for i < mid {
		dst[k] = src[i]
		i++
		k++
	}
	for j < hi {
		dst[k] = src[j]
		j++
		k++
	}
}
