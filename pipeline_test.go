package stratum

import (
	"math"
	"testing"
)

// mustDepth fails the test if e carries no computed depth.
func mustDepth(t *testing.T, g *MemGraph[band], e Entity) float64 {
	t.Helper()
	d, ok := g.Depth(e)
	if !ok {
		t.Fatalf("entity %d has no computed depth", e)
	}
	return d
}

// mustZ fails the test if e is gone; returns the transform depth axis.
func mustZ(t *testing.T, g *MemGraph[band], e Entity) float64 {
	t.Helper()
	pos, ok := g.Position(e)
	if !ok {
		t.Fatalf("entity %d is gone", e)
	}
	return pos.Z
}

// checkBand fails unless depth lies in [base, base+1) for the given band.
func checkBand(t *testing.T, label string, depth float64, b band) {
	t.Helper()
	base := b.ZCoordinate()
	if depth < base || depth >= base+1 {
		t.Errorf("%s: depth %v outside band [%v, %v)", label, depth, base, base+1)
	}
}

// --- Scenarios ---

func TestThreeBands(t *testing.T) {
	g := NewMemGraph[band]()
	bottom := g.SpawnAt(5, 5)
	middle := g.SpawnAt(5, 5)
	top := g.SpawnAt(5, 5)
	g.SetLayer(bottom, bandBottom)
	g.SetLayer(middle, bandMiddle)
	g.SetLayer(top, bandTop)

	p := New[Entity, band](g, g)
	p.Frame()

	db := mustDepth(t, g, bottom)
	dm := mustDepth(t, g, middle)
	dt := mustDepth(t, g, top)

	if !(db < dm && dm < dt) {
		t.Errorf("depth order bottom=%v middle=%v top=%v, want strictly ascending", db, dm, dt)
	}
	checkBand(t, "bottom", db, bandBottom)
	checkBand(t, "middle", dm, bandMiddle)
	checkBand(t, "top", dt, bandTop)

	// The transform depth axis must agree with the stored field.
	for _, e := range []Entity{bottom, middle, top} {
		if z, d := mustZ(t, g, e), mustDepth(t, g, e); z != d {
			t.Errorf("entity %d: transform z %v != computed depth %v", e, z, d)
		}
	}
}

func TestYSortWithinBand(t *testing.T) {
	g := NewMemGraph[band]()
	root := g.SpawnAt(0, 0)
	g.SetLayer(root, bandMiddle)
	high := g.SpawnAt(0, 10) // higher on screen, draws farther back
	low := g.SpawnAt(0, -10)
	g.SetParent(high, root)
	g.SetParent(low, root)

	p := New[Entity, band](g, g)
	p.Frame()

	dh := mustDepth(t, g, high)
	dl := mustDepth(t, g, low)
	dr := mustDepth(t, g, root)

	if !(dh < dr && dr < dl) {
		t.Errorf("depths high=%v root=%v low=%v, want high < root < low", dh, dr, dl)
	}
	checkBand(t, "high", dh, bandMiddle)
	checkBand(t, "root", dr, bandMiddle)
	checkBand(t, "low", dl, bandMiddle)
}

func TestLayerBeatsPosition(t *testing.T) {
	// A bottom-band entity way up the screen still draws behind a
	// top-band entity way down the screen.
	g := NewMemGraph[band]()
	back := g.SpawnAt(0, 1000)
	front := g.SpawnAt(0, -1000)
	g.SetLayer(back, bandBottom)
	g.SetLayer(front, bandTop)

	p := New[Entity, band](g, g)
	p.Frame()

	if db, df := mustDepth(t, g, back), mustDepth(t, g, front); db >= df {
		t.Errorf("depth(back)=%v >= depth(front)=%v; band must dominate position", db, df)
	}
}

func TestYSortDisabledCollapse(t *testing.T) {
	g := NewMemGraph[band]()
	entities := []Entity{
		g.SpawnAt(0, 10),
		g.SpawnAt(0, 0),
		g.SpawnAt(0, -10),
	}
	for _, e := range entities {
		g.SetLayer(e, bandMiddle)
	}

	p := New[Entity, band](g, g)
	p.Options.YSort = false
	p.Frame()

	want := bandMiddle.ZCoordinate()
	for _, e := range entities {
		if d := mustDepth(t, g, e); d != want {
			t.Errorf("entity %d: depth = %v, want exactly %v with y-sort off", e, d, want)
		}
	}
}

func TestOffsetBound(t *testing.T) {
	g := NewMemGraph[band]()
	root := g.Spawn()
	g.SetLayer(root, bandBottom)
	for i := 0; i < 50; i++ {
		e := g.SpawnAt(0, float64(i%7))
		g.SetParent(e, root)
	}

	p := New[Entity, band](g, g)
	p.Frame()

	layers := InheritedLayers[Entity, band](g)
	for e, l := range layers {
		checkBand(t, "covered entity", mustDepth(t, g, e), l)
	}
}

func TestIdempotence(t *testing.T) {
	g := NewMemGraph[band]()
	root := g.SpawnAt(3, 4)
	g.SetLayer(root, bandMiddle)
	a := g.SpawnAt(1, 9)
	b := g.SpawnAt(2, -6)
	g.SetParent(a, root)
	g.SetParent(b, root)
	solo := g.SpawnAt(8, 8)
	g.SetLayer(solo, bandTop)

	p := New[Entity, band](g, g)
	p.Frame()

	first := map[Entity]float64{}
	g.Depths(func(e Entity, d float64) { first[e] = d })

	p.Frame()

	g.Depths(func(e Entity, d float64) {
		if first[e] != d {
			t.Errorf("entity %d: depth changed across identical frames: %v then %v", e, first[e], d)
		}
		delete(first, e)
	})
	if len(first) != 0 {
		t.Errorf("%d entities lost their depth field on the second frame", len(first))
	}
}

// --- Clearing and stale state ---

func TestClearDropsStaleDepth(t *testing.T) {
	g := NewMemGraph[band]()
	root := g.SpawnAt(0, 5)
	g.SetLayer(root, bandTop)

	p := New[Entity, band](g, g)
	p.Frame()

	if d := mustDepth(t, g, root); d < 2 {
		t.Fatalf("setup: depth = %v, want >= 2", d)
	}

	// The entity leaves the covered set; its old depth must not survive.
	g.ClearLayer(root)
	p.Frame()

	if d := mustDepth(t, g, root); d != 0 {
		t.Errorf("stale depth = %v after layer removal, want 0", d)
	}
	if z := mustZ(t, g, root); z != 0 {
		t.Errorf("stale transform z = %v after layer removal, want 0", z)
	}
}

func TestClearSkipsFieldlessEntities(t *testing.T) {
	g := NewMemGraph[band]()
	bystander := g.SpawnAt(7, 7)
	covered := g.SpawnAt(0, 0)
	g.SetLayer(covered, bandBottom)

	p := New[Entity, band](g, g)
	p.Frame()

	if _, ok := g.Depth(bystander); ok {
		t.Errorf("uncovered entity acquired a depth field")
	}
	if pos, _ := g.Position(bystander); pos != (Vec3{X: 7, Y: 7}) {
		t.Errorf("uncovered entity position disturbed: %+v", pos)
	}
}

// --- Per-entity failure recovery ---

func TestVanishedEntitySkipped(t *testing.T) {
	g := NewMemGraph[band]()
	root := g.SpawnAt(0, 0)
	g.SetLayer(root, bandMiddle)
	doomed := g.SpawnAt(0, 1)
	g.SetParent(doomed, root)
	survivor := g.SpawnAt(0, 2)
	g.SetParent(survivor, root)

	p := New[Entity, band](g, g)
	p.ClearDepths()
	p.InheritLayers()
	g.Remove(doomed) // vanishes between mapping construction and write-back
	p.AssignDepths()
	p.ApplyDepths()

	if got := p.Dropped(); got != 1 {
		t.Errorf("Dropped() = %d, want 1", got)
	}
	// The rest of the batch still went through.
	mustDepth(t, g, root)
	mustDepth(t, g, survivor)
}

// positionlessGraph hides one entity's position to exercise the y=0
// fallback without removing the entity.
type positionlessGraph struct {
	*MemGraph[band]
	hidden Entity
}

func (g *positionlessGraph) WorldY(e Entity) (float64, bool) {
	if e == g.hidden {
		return 0, false
	}
	return g.MemGraph.WorldY(e)
}

func TestMissingPositionSortsAsZero(t *testing.T) {
	mem := NewMemGraph[band]()
	above := mem.SpawnAt(0, 5)
	hidden := mem.SpawnAt(0, 99) // real y ignored; must sort as 0
	below := mem.SpawnAt(0, -5)
	for _, e := range []Entity{above, hidden, below} {
		mem.SetLayer(e, bandBottom)
	}

	g := &positionlessGraph{MemGraph: mem, hidden: hidden}
	p := New[Entity, band](g, mem)
	p.Frame()

	da := mustDepth(t, mem, above)
	dh := mustDepth(t, mem, hidden)
	db := mustDepth(t, mem, below)
	if !(da < dh && dh < db) {
		t.Errorf("depths above=%v hidden=%v below=%v, want hidden between (treated as y=0)", da, dh, db)
	}
}

// --- Options ---

func TestNilOptionsFallsBackToDefaults(t *testing.T) {
	g := NewMemGraph[band]()
	high := g.SpawnAt(0, 10)
	low := g.SpawnAt(0, -10)
	g.SetLayer(high, bandBottom)
	g.SetLayer(low, bandBottom)

	p := New[Entity, band](g, g)
	p.Options = nil // host never set options; default y-sort applies
	p.Frame()

	if dh, dl := mustDepth(t, g, high), mustDepth(t, g, low); dh >= dl {
		t.Errorf("depths high=%v low=%v with nil options, want y-sorted (default on)", dh, dl)
	}
}

func TestParallelSortMatchesSequential(t *testing.T) {
	build := func() *MemGraph[band] {
		g := NewMemGraph[band]()
		root := g.Spawn()
		g.SetLayer(root, bandMiddle)
		for i := 0; i < 5000; i++ {
			// Distinct ys so the (unspecified) tie order can't differ.
			e := g.SpawnAt(0, float64(i*13%49999+1))
			g.SetParent(e, root)
		}
		return g
	}

	seq := build()
	ps := New[Entity, band](seq, seq)
	ps.Frame()

	par := build()
	pp := New[Entity, band](par, par)
	pp.Options.ParallelSort = true
	pp.Frame()

	seq.Depths(func(e Entity, want float64) {
		got, ok := par.Depth(e)
		if !ok || got != want {
			t.Fatalf("entity %d: parallel depth = %v, %v; sequential = %v", e, got, ok, want)
		}
	})
}

// --- Scheduler registration ---

type schedUnit struct {
	phase Phase
	name  string
	fn    func()
}

type recordingScheduler struct {
	units []schedUnit
}

func (s *recordingScheduler) Add(phase Phase, name string, fn func()) {
	s.units = append(s.units, schedUnit{phase, name, fn})
}

func TestRegisterPhasesAndOrder(t *testing.T) {
	g := NewMemGraph[band]()
	root := g.SpawnAt(0, 1)
	g.SetLayer(root, bandTop)
	child := g.SpawnAt(0, 2)
	g.SetParent(child, root)

	p := New[Entity, band](g, g)
	sched := &recordingScheduler{}
	p.Register(sched)

	want := []struct {
		phase Phase
		name  string
	}{
		{PhaseEarly, "stratum.clear"},
		{PhaseLate, "stratum.inherit"},
		{PhaseLate, "stratum.assign"},
		{PhaseLate, "stratum.apply"},
	}
	if len(sched.units) != len(want) {
		t.Fatalf("registered %d units, want %d", len(sched.units), len(want))
	}
	for i, w := range want {
		if sched.units[i].phase != w.phase || sched.units[i].name != w.name {
			t.Errorf("unit %d = (%v, %q), want (%v, %q)",
				i, sched.units[i].phase, sched.units[i].name, w.phase, w.name)
		}
	}

	// Running the units in scheduler order is equivalent to Frame.
	for _, u := range sched.units {
		u.fn()
	}
	dr := mustDepth(t, g, root)
	dc := mustDepth(t, g, child)
	if dc >= dr {
		t.Errorf("child (higher) depth %v >= root depth %v after scheduled run", dc, dr)
	}
	checkBand(t, "root", dr, bandTop)
	checkBand(t, "child", dc, bandTop)
}

// --- Depth math sanity ---

func TestOffsetsAreFractionsOfCount(t *testing.T) {
	g := NewMemGraph[band]()
	var entities []Entity
	for i := 0; i < 4; i++ {
		e := g.SpawnAt(0, float64(10-i)) // strictly descending y
		g.SetLayer(e, bandBottom)
		entities = append(entities, e)
	}

	p := New[Entity, band](g, g)
	p.Frame()

	for i, e := range entities {
		want := float64(i) / 4
		if d := mustDepth(t, g, e); math.Abs(d-want) > 1e-12 {
			t.Errorf("entity %d: depth = %v, want %v (offset i/n)", e, d, want)
		}
	}
}
