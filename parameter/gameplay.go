package parameter

// Tick Rate
const (
	// TickRate is the simulation and detection rate in Hz
	TickRate = 60
)

// Play Field
const (
	FieldWidth  = 1080.0
	FieldHeight = 768.0

	// FieldMargin keeps mapped targets and note rows away from the hard edges
	FieldMargin = 50.0

	// PlayerX is the fixed horizontal position of the fighter
	PlayerX = 120.0

	// PlayerHalfWidth and PlayerHalfHeight are the fighter hitbox half extents
	PlayerHalfWidth  = 30.0
	PlayerHalfHeight = 20.0
)

// Player Vitals
const (
	HealthMax = 100

	// HazardDamage is subtracted per obstacle hit
	HazardDamage = 50

	// CollectibleValue is added per plasma pickup
	CollectibleValue = 1000
)

// Spawning
const (
	// CollectibleChance and HazardChance are independent per-tick spawn probabilities
	CollectibleChance = 0.04
	HazardChance      = 0.1

	// MaxCollectibles and MaxHazards are the pool capacities
	MaxCollectibles = 100
	MaxHazards      = 20

	// CollectibleRowJitter is the fraction of a row height a plasma may drift from its row
	CollectibleRowJitter = 0.3

	// CollectibleSpeed and HazardSpeed are leftward speeds in px/s
	CollectibleSpeed = 120.0
	HazardSpeed      = 60.0

	// CollectibleWobble is the max vertical jitter per tick in px
	CollectibleWobble = 1.0

	// HazardSpin is degrees per tick
	HazardSpin = 3.0

	CollectibleRadius = 16.0
	HazardRadius      = 24.0
)
