package components

// ScoreBoard accumulates collectible score per note name
type ScoreBoard struct {
	scores map[string]int
}

func NewScoreBoard() *ScoreBoard {
	return &ScoreBoard{scores: make(map[string]int)}
}

// Add credits value to tag, negative values are ignored
func (b *ScoreBoard) Add(tag string, value int) {
	if tag == "" || value <= 0 {
		return
	}
	b.scores[tag] += value
}

// Get returns the accumulated score for tag
func (b *ScoreBoard) Get(tag string) int {
	return b.scores[tag]
}

// Len returns the number of notes scored
func (b *ScoreBoard) Len() int {
	return len(b.scores)
}

// Snapshot returns a copy safe to hand to other goroutines
func (b *ScoreBoard) Snapshot() map[string]int {
	out := make(map[string]int, len(b.scores))
	for k, v := range b.scores {
		out[k] = v
	}
	return out
}
