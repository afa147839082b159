package systems

import (
	"math"
	"testing"

	"github.com/lixenwraith/pitch-fighter/components"
	"github.com/lixenwraith/pitch-fighter/mapping"
	"github.com/lixenwraith/pitch-fighter/note"
	"github.com/lixenwraith/pitch-fighter/parameter"
)

func testRules() SpawnRules {
	return SpawnRules{
		CollectibleChance: 1,
		HazardChance:      1,
		CollectibleValue:  parameter.CollectibleValue,
		HazardDamage:      parameter.HazardDamage,
		CollectibleSpeed:  parameter.CollectibleSpeed,
		HazardSpeed:       parameter.HazardSpeed,
		RowJitter:         parameter.CollectibleRowJitter,
		Wobble:            parameter.CollectibleWobble,
		Spin:              parameter.HazardSpin,
		NoteMin:           parameter.DetectorNoteMin,
		NoteMax:           parameter.DetectorNoteMax,
	}
}

// TestSpawnIndependentDraws verifies both kinds can spawn on the same tick
func TestSpawnIndependentDraws(t *testing.T) {
	table, _ := note.Build(440, note.DefaultRange())
	mapper := mapping.New(768, 50)
	s := NewSpawner(testRules(), mapper, 1080, 60, 1)
	pool := components.NewPool(10, 10)

	res := s.Spawn(pool, table)
	if res.Collectibles != 1 || res.Hazards != 1 {
		t.Fatalf("Expected one of each, got %+v", res)
	}

	lo, hi := mapper.Band()
	pool.Each(func(o *components.Object) {
		if o.X != 1080+o.Radius() {
			t.Errorf("%s spawned at x=%f, want right edge", o.Kind, o.X)
		}
		if o.Y < lo || o.Y > hi {
			t.Errorf("%s spawned at y=%f outside band", o.Kind, o.Y)
		}
		switch o.Kind {
		case components.KindCollectible:
			if o.Value != parameter.CollectibleValue {
				t.Errorf("Collectible value %d", o.Value)
			}
			e, ok := table.Lookup(o.PitchTag)
			if !ok {
				t.Fatalf("Collectible tag %q not in table", o.PitchTag)
			}
			if e.Frequency < parameter.DetectorNoteMin || e.Frequency > parameter.DetectorNoteMax {
				t.Errorf("Collectible tag %s outside detectable band", e.Name)
			}
			row := mapper.ForIndex(table.IndexOf(e), table.Len())
			if math.Abs(o.Y-row) > 0.15*mapper.RowHeight(table.Len())+1e-9 {
				t.Errorf("Collectible %s at y=%f too far from row %f", e.Name, o.Y, row)
			}
		case components.KindHazard:
			if o.PitchTag != "" {
				t.Errorf("Hazard carries tag %q", o.PitchTag)
			}
			if o.Value != parameter.HazardDamage {
				t.Errorf("Hazard damage %d", o.Value)
			}
		}
	})
}

// TestSpawnRespectsCaps verifies a full pool skips spawning
func TestSpawnRespectsCaps(t *testing.T) {
	table, _ := note.Build(440, note.DefaultRange())
	s := NewSpawner(testRules(), mapping.New(768, 50), 1080, 60, 3)
	pool := components.NewPool(2, 3)

	for i := 0; i < 10; i++ {
		s.Spawn(pool, table)
	}
	if pool.Live(components.KindCollectible) != 2 {
		t.Errorf("Expected 2 collectibles, got %d", pool.Live(components.KindCollectible))
	}
	if pool.Live(components.KindHazard) != 3 {
		t.Errorf("Expected 3 hazards, got %d", pool.Live(components.KindHazard))
	}
}

// TestSpawnDeterministic verifies identical seeds produce identical fields
func TestSpawnDeterministic(t *testing.T) {
	table, _ := note.Build(440, note.DefaultRange())
	rules := testRules()
	rules.CollectibleChance = 0.3
	rules.HazardChance = 0.2

	run := func() []components.Object {
		s := NewSpawner(rules, mapping.New(768, 50), 1080, 60, 99)
		pool := components.NewPool(100, 20)
		for i := 0; i < 200; i++ {
			s.Spawn(pool, table)
			s.Advance(pool)
		}
		var out []components.Object
		pool.Each(func(o *components.Object) { out = append(out, *o) })
		return out
	}

	a, b := run(), run()
	if len(a) != len(b) || len(a) == 0 {
		t.Fatalf("Expected identical non-empty fields, got %d and %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("Object %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestSpawnZeroChance(t *testing.T) {
	table, _ := note.Build(440, note.DefaultRange())
	rules := testRules()
	rules.CollectibleChance = 0
	rules.HazardChance = 0
	s := NewSpawner(rules, mapping.New(768, 50), 1080, 60, 5)
	pool := components.NewPool(10, 10)

	for i := 0; i < 1000; i++ {
		if res := s.Spawn(pool, table); res != (SpawnResult{}) {
			t.Fatalf("Unexpected spawn %+v", res)
		}
	}
}

// TestAdvanceMovesAndRetires verifies per-kind motion and left edge retirement
func TestAdvanceMovesAndRetires(t *testing.T) {
	s := NewSpawner(testRules(), mapping.New(768, 50), 1080, 60, 1)
	pool := components.NewPool(5, 5)

	c := pool.Acquire(components.KindCollectible)
	c.X, c.Y = 500, 300
	h := pool.Acquire(components.KindHazard)
	h.X, h.Y = 500, 300
	gone := pool.Acquire(components.KindCollectible)
	gone.X = -15

	if retired := s.Advance(pool); retired != 1 {
		t.Errorf("Expected 1 retired, got %d", retired)
	}
	if math.Abs(c.X-498) > 1e-9 {
		t.Errorf("Collectible x=%f, want 498", c.X)
	}
	if math.Abs(c.Y-300) > 0.5 {
		t.Errorf("Collectible wobble %f exceeds 0.5px", c.Y-300)
	}
	if math.Abs(h.X-499) > 1e-9 || h.Spin != 3 {
		t.Errorf("Hazard x=%f spin=%f, want 499/3", h.X, h.Spin)
	}
	if pool.Live(components.KindCollectible) != 1 {
		t.Errorf("Expected 1 live collectible, got %d", pool.Live(components.KindCollectible))
	}
}
