package components

// Pool is a fixed-capacity arena of objects with per-kind caps
// Slots are reset and reused, never reallocated
type Pool struct {
	slots []Object
	free  []ObjectID
	caps  [2]int
	live  [2]int
}

// NewPool allocates slots for maxCollectibles + maxHazards objects
func NewPool(maxCollectibles, maxHazards int) *Pool {
	total := maxCollectibles + maxHazards
	p := &Pool{
		slots: make([]Object, total),
		free:  make([]ObjectID, 0, total),
		caps:  [2]int{maxCollectibles, maxHazards},
	}
	for i := total - 1; i >= 0; i-- {
		p.slots[i].ID = ObjectID(i)
		p.free = append(p.free, ObjectID(i))
	}
	return p
}

// Acquire takes a reset slot for kind, nil when that kind is at capacity
func (p *Pool) Acquire(kind Kind) *Object {
	if p.live[kind] >= p.caps[kind] || len(p.free) == 0 {
		return nil
	}
	id := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]

	obj := &p.slots[id]
	obj.reset()
	obj.Kind = kind
	obj.Alive = true
	p.live[kind]++
	return obj
}

// Release retires the object and returns its slot
func (p *Pool) Release(id ObjectID) {
	if id < 0 || int(id) >= len(p.slots) {
		return
	}
	obj := &p.slots[id]
	if !obj.Alive {
		return
	}
	p.live[obj.Kind]--
	obj.reset()
	p.free = append(p.free, id)
}

// Get returns the slot for id
func (p *Pool) Get(id ObjectID) *Object {
	if id < 0 || int(id) >= len(p.slots) {
		return nil
	}
	return &p.slots[id]
}

// Each visits live objects in slot order
// fn must not acquire; releasing the visited object is allowed
func (p *Pool) Each(fn func(*Object)) {
	for i := range p.slots {
		if p.slots[i].Alive {
			fn(&p.slots[i])
		}
	}
}

// Live returns the number of live objects of kind
func (p *Pool) Live(kind Kind) int {
	return p.live[kind]
}

// Cap returns the capacity for kind
func (p *Pool) Cap(kind Kind) int {
	return p.caps[kind]
}

// Clear releases every live object
func (p *Pool) Clear() {
	for i := range p.slots {
		if p.slots[i].Alive {
			p.Release(ObjectID(i))
		}
	}
}
