package stratum

// Entity is the handle type used by [MemGraph]. Zero is never a valid
// handle. Hosts with their own entity type ignore this and instantiate the
// pipeline with theirs.
type Entity uint32

// Vec3 is a world-space position. MemGraph stores resolved world positions
// directly; it has no local/world transform split of its own.
type Vec3 struct {
	X, Y, Z float64
}

// memNode is the per-entity record inside a MemGraph.
type memNode[L LayerIndex] struct {
	parent   Entity // 0 = root
	children []Entity
	pos      Vec3
	layer    L
	hasLayer bool
	depth    float64
	hasDepth bool
}

// MemGraph is a minimal in-memory scene graph implementing both [Graph] and
// [Store]. It exists for tests, examples, and as a reference for adapter
// authors; a real game adapts its own entity storage instead (see the
// stratum/ecs module for a Donburi adapter).
//
// Y is world-up: larger Y means higher on screen, matching the [Graph]
// contract. The depth axis written by SetWorldZ lands in [Vec3.Z].
type MemGraph[L LayerIndex] struct {
	nodes  map[Entity]*memNode[L]
	order  []Entity // spawn order, for deterministic iteration
	nextID Entity
}

// NewMemGraph creates an empty MemGraph.
func NewMemGraph[L LayerIndex]() *MemGraph[L] {
	return &MemGraph[L]{nodes: make(map[Entity]*memNode[L])}
}

// Spawn creates a new root entity at the origin and returns its handle.
func (g *MemGraph[L]) Spawn() Entity {
	g.nextID++
	e := g.nextID
	g.nodes[e] = &memNode[L]{}
	g.order = append(g.order, e)
	return e
}

// SpawnAt creates a new root entity at world position (x, y).
func (g *MemGraph[L]) SpawnAt(x, y float64) Entity {
	e := g.Spawn()
	g.nodes[e].pos = Vec3{X: x, Y: y}
	return e
}

// SetParent makes child a child of parent, detaching it from any previous
// parent first. A parent of 0 detaches the child entirely. Panics on an
// unknown handle. No cycle check is performed; the inheritance walk guards
// against malformed graphs itself.
func (g *MemGraph[L]) SetParent(child, parent Entity) {
	node := g.node(child, "SetParent (child)")
	if node.parent != 0 {
		if old, ok := g.nodes[node.parent]; ok {
			old.children = removeEntity(old.children, child)
		}
	}
	node.parent = parent
	if parent == 0 {
		return
	}
	p := g.node(parent, "SetParent (parent)")
	p.children = append(p.children, child)
}

// Remove deletes e from the graph. e is detached from its parent and its
// children become roots; the handle is invalid afterwards and every lookup
// on it fails. Removing an unknown handle is a no-op.
func (g *MemGraph[L]) Remove(e Entity) {
	node, ok := g.nodes[e]
	if !ok {
		return
	}
	if node.parent != 0 {
		if p, ok := g.nodes[node.parent]; ok {
			p.children = removeEntity(p.children, e)
		}
	}
	for _, child := range node.children {
		if c, ok := g.nodes[child]; ok {
			c.parent = 0
		}
	}
	delete(g.nodes, e)
	g.order = removeEntity(g.order, e)
}

// SetLayer attaches (or overwrites) e's explicit layer.
func (g *MemGraph[L]) SetLayer(e Entity, layer L) {
	node := g.node(e, "SetLayer")
	node.layer = layer
	node.hasLayer = true
}

// ClearLayer removes e's explicit layer, if any.
func (g *MemGraph[L]) ClearLayer(e Entity) {
	node := g.node(e, "ClearLayer")
	var zero L
	node.layer = zero
	node.hasLayer = false
}

// SetPosition sets e's world X and Y. The depth axis is owned by the
// pipeline and left alone.
func (g *MemGraph[L]) SetPosition(e Entity, x, y float64) {
	node := g.node(e, "SetPosition")
	node.pos.X = x
	node.pos.Y = y
}

// Position returns e's world position, including the depth axis.
func (g *MemGraph[L]) Position(e Entity) (Vec3, bool) {
	node, ok := g.nodes[e]
	if !ok {
		return Vec3{}, false
	}
	return node.pos, true
}

// Depth returns e's computed-depth field, if it carries one.
func (g *MemGraph[L]) Depth(e Entity) (float64, bool) {
	node, ok := g.nodes[e]
	if !ok || !node.hasDepth {
		return 0, false
	}
	return node.depth, true
}

// --- Graph interface ---

// LayerRoots returns every parent-less entity carrying an explicit layer,
// in spawn order.
func (g *MemGraph[L]) LayerRoots() []Entity {
	var roots []Entity
	for _, e := range g.order {
		node := g.nodes[e]
		if node.parent == 0 && node.hasLayer {
			roots = append(roots, e)
		}
	}
	return roots
}

// Children returns e's direct children. The returned slice MUST NOT be
// mutated by the caller.
func (g *MemGraph[L]) Children(e Entity) ([]Entity, bool) {
	node, ok := g.nodes[e]
	if !ok {
		return nil, false
	}
	return node.children, true
}

// Layer returns e's explicit layer, if it carries one.
func (g *MemGraph[L]) Layer(e Entity) (L, bool) {
	node, ok := g.nodes[e]
	if !ok || !node.hasLayer {
		var zero L
		return zero, false
	}
	return node.layer, true
}

// WorldY returns e's world vertical coordinate.
func (g *MemGraph[L]) WorldY(e Entity) (float64, bool) {
	node, ok := g.nodes[e]
	if !ok {
		return 0, false
	}
	return node.pos.Y, true
}

// --- Store interface ---

// Depths iterates every entity carrying a computed-depth field, in spawn
// order.
func (g *MemGraph[L]) Depths(fn func(e Entity, depth float64)) {
	for _, e := range g.order {
		node := g.nodes[e]
		if node.hasDepth {
			fn(e, node.depth)
		}
	}
}

// SetDepth writes e's computed-depth field, attaching it if absent.
func (g *MemGraph[L]) SetDepth(e Entity, depth float64) bool {
	node, ok := g.nodes[e]
	if !ok {
		return false
	}
	node.depth = depth
	node.hasDepth = true
	return true
}

// SetWorldZ writes z into e's position depth axis.
func (g *MemGraph[L]) SetWorldZ(e Entity, z float64) bool {
	node, ok := g.nodes[e]
	if !ok {
		return false
	}
	node.pos.Z = z
	return true
}

// --- Helpers ---

// node looks up e and panics with the operation name on an unknown handle.
// Reserved for mutation methods where a bad handle is caller error.
func (g *MemGraph[L]) node(e Entity, op string) *memNode[L] {
	node, ok := g.nodes[e]
	if !ok {
		panic("stratum: " + op + " on unknown entity")
	}
	return node
}

// removeEntity removes the first occurrence of e from list.
// Uses copy+truncate to avoid retaining a stale tail element.
func removeEntity(list []Entity, e Entity) []Entity {
	for i, c := range list {
		if c == e {
			copy(list[i:], list[i+1:])
			return list[:len(list)-1]
		}
	}
	return list
}
