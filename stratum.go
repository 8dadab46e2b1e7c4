package stratum

// LayerIndex is the constraint for the user-defined type that classifies
// entities into depth bands. Attach a layer value to an entity to place
// that entity (and, through inheritance, its whole subtree) into the band.
//
// ZCoordinate maps a layer value to the base depth of its band. An entity's
// final depth is always in the half-open range [base, base+1), so distinct
// layer values should map to bases at least 1.0 apart or their bands will
// overlap. Smaller bases draw first (farther back).
//
// Layer values are copied freely and used as map keys; any comparable value
// type works. Implement [fmt.Stringer] if you want readable layers in debug
// output.
type LayerIndex interface {
	comparable
	ZCoordinate() float64
}

// Options configures depth assignment. The host may swap or mutate the
// Options between frames; reading it mid-frame (from another goroutine
// while the pipeline runs) is a data race, just like any other scene state.
type Options struct {
	// YSort orders entities within a depth band by their world vertical
	// position: higher up the screen means farther back in the band. When
	// false, every entity in a band gets exactly the band's base depth.
	YSort bool

	// ParallelSort sorts the y-sort keys on multiple goroutines. The result
	// is identical to the sequential sort; this is purely a throughput knob
	// for scenes with very large entity counts.
	ParallelSort bool
}

// DefaultOptions returns the documented defaults: y-sorting enabled,
// sequential sort.
func DefaultOptions() Options {
	return Options{YSort: true}
}

// Phase says when in the frame a registered unit of work must run.
type Phase uint8

const (
	// PhaseEarly runs near the start of the frame, before the host moves
	// entities or recomputes transforms.
	PhaseEarly Phase = iota
	// PhaseLate runs near the end of the frame, strictly after world
	// positions are final for the frame.
	PhaseLate
)

// Scheduler is the registration surface of the host's frame scheduler.
// Units added to the same phase must run in registration order, and no
// unit may start before the previous one completes.
type Scheduler interface {
	Add(phase Phase, name string, fn func())
}
