package stratum

import "fmt"

// workItem is a pending node in the inheritance walk, paired with the layer
// propagated down from its parent.
type workItem[E comparable, L LayerIndex] struct {
	entity E
	layer  L
}

// InheritedLayers computes the effective layer of every entity reachable
// from a layer-carrying root: the entity's own layer if it has one,
// otherwise the nearest ancestor's. Entities outside every layer-rooted
// subtree are absent from the result; they have no opinion on depth.
//
// The mapping is rebuilt from scratch on every call and handed to depth
// assignment the same frame; nothing here persists.
//
// The walk only follows child links the graph itself reported, so a failed
// Children lookup means the host broke its own structural invariant.
// That's not recoverable here and panics. A malformed graph with a cycle
// does not recurse forever: already-visited entities keep their first
// assignment and the walk stops descending.
func InheritedLayers[E comparable, L LayerIndex](g Graph[E, L]) map[E]L {
	layers := make(map[E]L)

	// Explicit stack rather than recursion: bounds stack depth on deep
	// trees and makes the visited guard cheap.
	var stack []workItem[E, L]
	for _, root := range g.LayerRoots() {
		layer, ok := g.Layer(root)
		if !ok {
			panic(fmt.Sprintf("stratum: layer root %v has no layer", root))
		}
		stack = append(stack, workItem[E, L]{entity: root, layer: layer})
	}

	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, seen := layers[item.entity]; seen {
			// Reached twice: the host graph has a cycle or a shared child.
			// Keep the first assignment and stop descending.
			continue
		}

		layer := item.layer
		if own, ok := g.Layer(item.entity); ok {
			layer = own
		}
		layers[item.entity] = layer

		children, ok := g.Children(item.entity)
		if !ok {
			panic(fmt.Sprintf("stratum: child link leads to missing entity %v", item.entity))
		}
		for _, child := range children {
			stack = append(stack, workItem[E, L]{entity: child, layer: layer})
		}
	}
	return layers
}
