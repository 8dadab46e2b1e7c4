package ecs

import (
	"github.com/phanxgames/stratum"

	"github.com/yohamta/donburi"
	decs "github.com/yohamta/donburi/ecs"
	"github.com/yohamta/donburi/features/transform"
	"github.com/yohamta/donburi/filter"
)

// DepthData is the per-entity depth state maintained by the pipeline.
type DepthData struct {
	// Value is the last computed depth. Don't modify this yourself, but
	// read it if you need the number for something.
	Value float64

	// WorldZ is the depth as applied by the write-back stage. Sort your
	// draw calls by this.
	WorldZ float64
}

// Depth is the component the pipeline attaches to every covered entity.
var Depth = donburi.NewComponentType[DepthData]()

// Adapter implements stratum.Graph and stratum.Store over a Donburi world.
// Entities must carry transform.Transform and be parented through the
// features/transform hierarchy for inheritance to see them.
//
// Donburi's screen space has Y growing downward, so the adapter hands
// stratum the negated world Y: entities lower on screen sort in front,
// the usual top-down convention.
type Adapter[L stratum.LayerIndex] struct {
	// SetZ, when non-nil, receives the applied depth for each entity in
	// the write-back stage, for games that keep a z-coordinate in a
	// component of their own. When nil the depth lands in DepthData.WorldZ.
	SetZ func(entry *donburi.Entry, z float64)

	world      donburi.World
	layer      *donburi.ComponentType[L]
	layerQuery *donburi.Query
	depthQuery *donburi.Query
}

// NewAdapter creates an adapter over world using layer as the explicit
// layer component.
func NewAdapter[L stratum.LayerIndex](world donburi.World, layer *donburi.ComponentType[L]) *Adapter[L] {
	return &Adapter[L]{
		world:      world,
		layer:      layer,
		layerQuery: donburi.NewQuery(filter.Contains(layer)),
		depthQuery: donburi.NewQuery(filter.Contains(Depth)),
	}
}

// --- stratum.Graph ---

// LayerRoots returns every entity that carries the layer component and has
// no transform parent.
func (a *Adapter[L]) LayerRoots() []donburi.Entity {
	var roots []donburi.Entity
	a.layerQuery.Each(a.world, func(entry *donburi.Entry) {
		if _, ok := transform.GetParent(entry); !ok {
			roots = append(roots, entry.Entity())
		}
	})
	return roots
}

// Children returns e's transform children. Donburi cleans child lists up
// lazily, so entries that are no longer valid are filtered out here rather
// than reported as structural violations.
func (a *Adapter[L]) Children(e donburi.Entity) ([]donburi.Entity, bool) {
	if !a.world.Valid(e) {
		return nil, false
	}
	entries, ok := transform.GetChildren(a.world.Entry(e))
	if !ok {
		return nil, true
	}
	children := make([]donburi.Entity, 0, len(entries))
	for _, c := range entries {
		if c.Valid() {
			children = append(children, c.Entity())
		}
	}
	return children, true
}

// Layer returns e's own layer component value, if it carries one.
func (a *Adapter[L]) Layer(e donburi.Entity) (L, bool) {
	var zero L
	if !a.world.Valid(e) {
		return zero, false
	}
	entry := a.world.Entry(e)
	if !entry.HasComponent(a.layer) {
		return zero, false
	}
	return a.layer.GetValue(entry), true
}

// WorldY returns e's world vertical coordinate, negated into stratum's
// up-is-positive convention.
func (a *Adapter[L]) WorldY(e donburi.Entity) (float64, bool) {
	if !a.world.Valid(e) {
		return 0, false
	}
	entry := a.world.Entry(e)
	if !entry.HasComponent(transform.Transform) {
		return 0, false
	}
	return -transform.WorldPosition(entry).Y, true
}

// --- stratum.Store ---

// Depths iterates every entity carrying the Depth component.
func (a *Adapter[L]) Depths(fn func(e donburi.Entity, depth float64)) {
	a.depthQuery.Each(a.world, func(entry *donburi.Entry) {
		fn(entry.Entity(), Depth.Get(entry).Value)
	})
}

// SetDepth writes e's Depth component value, attaching the component first
// if needed.
func (a *Adapter[L]) SetDepth(e donburi.Entity, depth float64) bool {
	if !a.world.Valid(e) {
		return false
	}
	entry := a.world.Entry(e)
	if !entry.HasComponent(Depth) {
		entry.AddComponent(Depth)
	}
	Depth.Get(entry).Value = depth
	return true
}

// SetWorldZ routes the applied depth to SetZ when configured, otherwise to
// DepthData.WorldZ. Either way no transform component is written, so
// Donburi never sees a transform change.
func (a *Adapter[L]) SetWorldZ(e donburi.Entity, z float64) bool {
	if !a.world.Valid(e) {
		return false
	}
	entry := a.world.Entry(e)
	if a.SetZ != nil {
		a.SetZ(entry, z)
		return true
	}
	if !entry.HasComponent(Depth) {
		entry.AddComponent(Depth)
	}
	Depth.Get(entry).WorldZ = z
	return true
}

// --- donburi/ecs registration ---

// AddClearSystem registers the pipeline's clear stage as an update system.
// Call this before adding any system that moves entities or edits layers.
func AddClearSystem[L stratum.LayerIndex](e *decs.ECS, p *stratum.Pipeline[donburi.Entity, L]) {
	e.AddSystem(func(*decs.ECS) { p.ClearDepths() })
}

// AddDepthSystems registers the inherit, assign, and apply stages as update
// systems, in pipeline order. Call this after every system that moves
// entities, so world positions are final when the y-sort reads them.
func AddDepthSystems[L stratum.LayerIndex](e *decs.ECS, p *stratum.Pipeline[donburi.Entity, L]) {
	e.AddSystem(func(*decs.ECS) { p.InheritLayers() })
	e.AddSystem(func(*decs.ECS) { p.AssignDepths() })
	e.AddSystem(func(*decs.ECS) { p.ApplyDepths() })
}
