package stratum

// Graph is the read surface of the host scene graph. E is the host's opaque
// entity handle; stratum never creates or destroys handles, it only reads
// data attached to them.
//
// All methods are queries against current frame state. The two-result
// methods return ok=false when the entity doesn't carry the requested data
// or no longer exists; stratum treats a failed Children lookup on an entity
// it reached through a child link as a broken structural invariant and
// panics (see [Pipeline.InheritLayers]).
type Graph[E comparable, L LayerIndex] interface {
	// LayerRoots returns every parent-less entity that carries an explicit
	// layer. These are the roots of the subtrees stratum manages; anything
	// not below one of them is never touched.
	LayerRoots() []E

	// Children returns e's direct children. ok is false only if e no longer
	// exists in the graph; an entity with no children returns an empty (or
	// nil) slice with ok=true. The returned slice MUST NOT be mutated.
	Children(e E) ([]E, bool)

	// Layer returns e's own explicit layer, if it carries one.
	Layer(e E) (L, bool)

	// WorldY returns e's resolved world-space vertical coordinate, with
	// larger values meaning higher up the screen. ok is false if e no
	// longer exists or has no resolved position this frame.
	WorldY(e E) (float64, bool)
}

// Store is the write surface of the host scene graph: the persistent
// computed-depth field and the depth axis of each entity's world transform.
//
// The write methods are best effort per entity. Returning false (entity
// gone, component storage refused the write) makes stratum skip that one
// entity and carry on; it never aborts a pass.
type Store[E comparable] interface {
	// Depths calls fn for every entity currently carrying a computed-depth
	// field, in unspecified order, with its stored depth. fn must not add
	// or remove depth fields; stratum only reads during iteration.
	Depths(fn func(e E, depth float64))

	// SetDepth writes e's computed-depth field, attaching the field first
	// if e doesn't carry one yet.
	SetDepth(e E, depth float64) bool

	// SetWorldZ writes z into the depth axis of e's world transform,
	// leaving every other transform component untouched. Implementations
	// must not flag this as a semantic transform change to any host
	// change-detection machinery: depth write-back is bookkeeping the rest
	// of the host should not react to.
	SetWorldZ(e E, z float64) bool
}
