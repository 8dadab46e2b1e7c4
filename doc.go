// Package stratum assigns deterministic depth (z) coordinates to the
// entities of a 2D scene graph, so sprites draw in a well-defined
// back-to-front order.
//
// Entities are grouped into coarse depth bands by a user-defined layer type
// (see [LayerIndex]), layers are inherited by descendants, and entities
// within a band are optionally ordered by their on-screen vertical position
// ("y-sorting", the classic top-down 2D trick where things lower on the
// screen draw in front).
//
// # Quick start
//
// Define a layer type and give it a base depth per layer:
//
//	type Layer uint8
//
//	const (
//		Background Layer = iota
//		Objects
//		Foreground
//	)
//
//	func (l Layer) ZCoordinate() float64 { return float64(l) }
//
// Hook the pipeline up to your scene graph and run it once per frame:
//
//	graph := stratum.NewMemGraph[Layer]() // or your own Graph/Store adapter
//	pipe := stratum.New[stratum.Entity, Layer](graph, graph)
//
//	// each frame, after world positions are final:
//	pipe.Frame()
//
// Every entity reachable from a layer-carrying root now has a depth in
// [base, base+1) for its effective layer, readable through your [Store]
// and written into the depth axis of its world transform.
//
// # Host integration
//
// Stratum owns no scene graph of its own. It reads and writes through two
// small interfaces, [Graph] and [Store], which you implement over whatever
// stores your entities. [MemGraph] is a complete in-memory reference
// implementation used by the tests and examples; the stratum/ecs module
// adapts a [Donburi] world.
//
// If your frame is driven by a phased scheduler, [Pipeline.Register] splits
// the work into four named units: a clear pass that must run early in the
// frame, and the inherit/assign/apply passes that must run late, after
// world positions have been finalized.
//
// # Layer inheritance
//
// A layer attached to an entity applies to its entire descendant subtree
// until overridden by a descendant's own layer. Entities outside any
// layer-rooted subtree are left completely alone.
//
// # Ordering contract
//
// Depths order back to front: primary key is the layer's base depth,
// secondary key (when [Options.YSort] is enabled, the default) is the
// world-space vertical position, with higher-up entities placed farther
// back within the band. Entities at exactly equal height may swap relative
// order from frame to frame; don't rely on tie order.
//
// [Donburi]: https://github.com/yohamta/donburi
package stratum
