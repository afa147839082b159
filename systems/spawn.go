package systems

import (
	"math"

	"github.com/lixenwraith/pitch-fighter/components"
	"github.com/lixenwraith/pitch-fighter/mapping"
	"github.com/lixenwraith/pitch-fighter/note"
	"github.com/lixenwraith/pitch-fighter/vmath"
)

// SpawnRules configures spawn probabilities and object motion
type SpawnRules struct {
	CollectibleChance float64
	HazardChance      float64
	CollectibleValue  int
	HazardDamage      int

	// Leftward speeds in px/s
	CollectibleSpeed float64
	HazardSpeed      float64

	// RowJitter is the fraction of a row a collectible may sit off its note row
	RowJitter float64
	// Wobble is the per-tick vertical jitter range of collectibles in px
	Wobble float64
	// Spin is hazard rotation in degrees per tick
	Spin float64

	// NoteMin and NoteMax restrict collectible notes to the detectable band
	NoteMin float64
	NoteMax float64
}

// Spawner places new objects at the right edge and advances live ones
type Spawner struct {
	rules  SpawnRules
	mapper mapping.Mapper
	width  float64
	dt     float64
	rng    *vmath.FastRand

	// Notes a collectible may be tagged with, cached per table
	table *note.Table
	notes []note.Entry
}

// NewSpawner creates a spawner with a deterministic random source
func NewSpawner(rules SpawnRules, mapper mapping.Mapper, width float64, tickRate int, seed uint64) *Spawner {
	return &Spawner{
		rules:  rules,
		mapper: mapper,
		width:  width,
		dt:     1 / float64(tickRate),
		rng:    vmath.NewFastRand(seed),
	}
}

// SpawnResult counts objects created this tick
type SpawnResult struct {
	Collectibles int
	Hazards      int
}

// Spawn draws the collectible and hazard triggers independently
// A full pool skips the spawn without consuming further randomness
func (s *Spawner) Spawn(pool *components.Pool, table *note.Table) SpawnResult {
	var res SpawnResult

	if s.rng.Chance(s.rules.CollectibleChance) {
		if s.spawnCollectible(pool, table) {
			res.Collectibles++
		}
	}
	if s.rng.Chance(s.rules.HazardChance) {
		if s.spawnHazard(pool) {
			res.Hazards++
		}
	}
	return res
}

func (s *Spawner) spawnCollectible(pool *components.Pool, table *note.Table) bool {
	if table == nil {
		return false
	}
	if table != s.table {
		s.table = table
		s.notes = table.Within(s.rules.NoteMin, s.rules.NoteMax)
	}
	if len(s.notes) == 0 {
		return false
	}

	obj := pool.Acquire(components.KindCollectible)
	if obj == nil {
		return false
	}

	e := s.notes[s.rng.Intn(len(s.notes))]
	row := s.mapper.ForIndex(table.IndexOf(e), table.Len())
	half := s.rules.RowJitter / 2 * s.mapper.RowHeight(table.Len())
	lo, hi := s.mapper.Band()

	obj.X = s.width + obj.Radius()
	obj.Y = vmath.Clamp(row+s.rng.Range(-half, half), lo, hi)
	obj.PitchTag = e.Name
	obj.Value = s.rules.CollectibleValue
	return true
}

func (s *Spawner) spawnHazard(pool *components.Pool) bool {
	obj := pool.Acquire(components.KindHazard)
	if obj == nil {
		return false
	}

	lo, hi := s.mapper.Band()
	obj.X = s.width + obj.Radius()
	obj.Y = s.rng.Range(lo, hi)
	obj.Value = s.rules.HazardDamage
	return true
}

// Advance moves live objects left and retires those past the left edge
// Returns the number of retired objects
func (s *Spawner) Advance(pool *components.Pool) int {
	retired := 0
	half := s.rules.Wobble / 2

	pool.Each(func(o *components.Object) {
		switch o.Kind {
		case components.KindCollectible:
			o.X -= s.rules.CollectibleSpeed * s.dt
			if half > 0 {
				o.Y += s.rng.Range(-half, half)
			}
		case components.KindHazard:
			o.X -= s.rules.HazardSpeed * s.dt
			o.Spin = math.Mod(o.Spin+s.rules.Spin, 360)
		}

		if o.X < -o.Radius() {
			pool.Release(o.ID)
			retired++
		}
	})
	return retired
}
