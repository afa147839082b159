package systems

import (
	"github.com/lixenwraith/pitch-fighter/components"
)

// CollisionResult summarizes the outcome of one resolution pass
type CollisionResult struct {
	Hits        int
	DamageTaken int
	Collected   int
	ScoreGained int

	// Tags lists the note names of collected plasma in resolution order, valid until the next Resolve
	Tags []string
}

// Collision resolves player overlaps against live objects
type Collision struct {
	tags []string
}

// Resolve applies hazards first, then collectibles
// Once health reaches zero the remaining overlaps of the tick are ignored
func (c *Collision) Resolve(p *components.Player, pool *components.Pool, board *components.ScoreBoard) CollisionResult {
	var res CollisionResult
	c.tags = c.tags[:0]

	if p.Dead() {
		return res
	}

	box := p.Box()

	pool.Each(func(o *components.Object) {
		if o.Kind != components.KindHazard || p.Dead() {
			return
		}
		if !box.Overlaps(o.Box()) {
			return
		}
		res.DamageTaken += p.Damage(o.Value)
		res.Hits++
		pool.Release(o.ID)
	})

	if p.Dead() {
		return res
	}

	pool.Each(func(o *components.Object) {
		if o.Kind != components.KindCollectible || !box.Overlaps(o.Box()) {
			return
		}
		p.Score += o.Value
		board.Add(o.PitchTag, o.Value)
		res.Collected++
		res.ScoreGained += o.Value
		if o.PitchTag != "" {
			c.tags = append(c.tags, o.PitchTag)
		}
		pool.Release(o.ID)
	})

	res.Tags = c.tags
	return res
}
