package stratum

// Pipeline runs the per-frame depth computation for one scene graph.
//
// The four stages run in a fixed order within a frame:
//
//	ClearDepths → InheritLayers → AssignDepths → ApplyDepths
//
// Call [Pipeline.Frame] to run them back to back, or register them with a
// phased scheduler via [Pipeline.Register] when the host needs to interleave
// its own work (transform propagation in particular must happen between the
// clear and the inherit stage).
//
// A Pipeline is not safe for concurrent use; it assumes exclusive access to
// the graph while a stage runs, which is what a non-overlapping frame
// scheduler gives you anyway.
type Pipeline[E comparable, L LayerIndex] struct {
	graph Graph[E, L]
	store Store[E]

	// Options may be replaced or mutated by the host between frames.
	// nil behaves like DefaultOptions.
	Options *Options

	// layers is handed from InheritLayers to AssignDepths within one frame
	// and never outlives it.
	layers map[E]L

	// Reused scratch buffers (willow-style: no steady-state allocation).
	keys     []zKey[E]
	scratch  []zKey[E]
	carriers []E
	depthBuf []float64
	dropped  int
}

// New creates a Pipeline over the given graph and store with default
// options. graph and store are often the same object (see [MemGraph]).
func New[E comparable, L LayerIndex](graph Graph[E, L], store Store[E]) *Pipeline[E, L] {
	opts := DefaultOptions()
	return &Pipeline[E, L]{graph: graph, store: store, Options: &opts}
}

// options snapshots the effective options for the current stage, falling
// back to the documented defaults if the host cleared the pointer.
func (p *Pipeline[E, L]) options() Options {
	if p.Options == nil {
		return DefaultOptions()
	}
	return *p.Options
}

// ClearDepths zeroes the stored depth and the transform depth axis of every
// entity carrying a computed-depth field. Runs unconditionally at the start
// of every frame so a stale depth never survives into a frame where the
// entity's layer or position inputs changed or went away. Entities without
// the field are untouched.
func (p *Pipeline[E, L]) ClearDepths() {
	p.carriers = p.carriers[:0]
	p.store.Depths(func(e E, _ float64) {
		p.carriers = append(p.carriers, e)
	})
	for _, e := range p.carriers {
		// Best effort: an entity removed between iteration and write is skipped.
		if p.store.SetDepth(e, 0) {
			p.store.SetWorldZ(e, 0)
		}
	}
}

// InheritLayers builds this frame's effective-layer mapping (see
// [InheritedLayers]) and stages it for AssignDepths.
func (p *Pipeline[E, L]) InheritLayers() {
	p.layers = InheritedLayers(p.graph)
}

// AssignDepths consumes the mapping staged by InheritLayers and writes a
// final depth into every covered entity's computed-depth field.
//
// With YSort enabled, all covered entities are sorted in one global pass by
// world Y (higher up the screen first) and entity i of n gets depth
// base + i/n, which keeps every depth inside its layer's [base, base+1)
// band. Sorting globally instead of per layer skips the grouping
// bookkeeping; the sort dominates either way.
//
// With YSort disabled every covered entity gets its band's base exactly.
//
// Per-entity write failures (entity vanished since InheritLayers ran) are
// counted in [Pipeline.Dropped] and skipped; a missing world position sorts
// as y=0 rather than excluding the entity.
func (p *Pipeline[E, L]) AssignDepths() {
	layers := p.layers
	p.layers = nil
	p.dropped = 0
	if len(layers) == 0 {
		return
	}

	opts := p.options()
	if !opts.YSort {
		for entity, layer := range layers {
			if !p.store.SetDepth(entity, layer.ZCoordinate()) {
				p.dropped++
			}
		}
		return
	}

	p.keys = p.keys[:0]
	for entity := range layers {
		y, ok := p.graph.WorldY(entity)
		if !ok {
			y = 0
		}
		p.keys = append(p.keys, zKey[E]{y: y, entity: entity})
	}

	if cap(p.scratch) < len(p.keys) {
		p.scratch = make([]zKey[E], len(p.keys))
	}
	sortKeys(p.keys, p.scratch[:len(p.keys)], opts.ParallelSort)

	scale := 1.0 / float64(len(p.keys))
	for i, k := range p.keys {
		z := layers[k.entity].ZCoordinate() + float64(i)*scale
		if !p.store.SetDepth(k.entity, z) {
			p.dropped++
		}
	}
}

// ApplyDepths copies every entity's stored computed depth into the depth
// axis of its world transform. It covers all current carriers of the field,
// not just the ones AssignDepths touched this frame, so the transform
// always reflects the stored value. Entities without the field are skipped.
func (p *Pipeline[E, L]) ApplyDepths() {
	p.carriers = p.carriers[:0]
	p.depthBuf = p.depthBuf[:0]
	p.store.Depths(func(e E, depth float64) {
		p.carriers = append(p.carriers, e)
		p.depthBuf = append(p.depthBuf, depth)
	})
	for i, e := range p.carriers {
		p.store.SetWorldZ(e, p.depthBuf[i])
	}
}

// Frame runs all four stages in order. Use this when the host has no phased
// scheduler and world positions are already final when it calls stratum.
func (p *Pipeline[E, L]) Frame() {
	p.ClearDepths()
	p.InheritLayers()
	p.AssignDepths()
	p.ApplyDepths()
}

// Register adds the four stages to a phased scheduler as named units:
// the clear runs in PhaseEarly, the other three in PhaseLate in pipeline
// order. The host must finalize world positions before PhaseLate runs.
func (p *Pipeline[E, L]) Register(s Scheduler) {
	s.Add(PhaseEarly, "stratum.clear", p.ClearDepths)
	s.Add(PhaseLate, "stratum.inherit", p.InheritLayers)
	s.Add(PhaseLate, "stratum.assign", p.AssignDepths)
	s.Add(PhaseLate, "stratum.apply", p.ApplyDepths)
}

// Dropped reports how many per-entity depth writes were skipped by the most
// recent AssignDepths run because the entity had vanished from the graph.
func (p *Pipeline[E, L]) Dropped() int {
	return p.dropped
}
