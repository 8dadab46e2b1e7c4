// Package ecs adapts a [Donburi] world to the stratum depth pipeline.
//
// [NewAdapter] implements both stratum.Graph and stratum.Store over a
// Donburi world whose entities use the features/transform hierarchy. The
// computed depth lands in the [Depth] component; a render system sorts its
// draw calls by [DepthData.WorldZ].
//
// Usage:
//
//	layer := donburi.NewComponentType[MyLayer]()
//	adapter := ecs.NewAdapter(world, layer)
//	pipe := stratum.New[donburi.Entity, MyLayer](adapter, adapter)
//
//	ecs.AddClearSystem(game, pipe)
//	// ... add movement systems ...
//	ecs.AddDepthSystems(game, pipe)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
