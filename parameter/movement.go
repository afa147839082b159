package parameter

// Pitch Steering
const (
	SteerMaxSpeed  = 400.0
	SteerTolerance = 15.0
	SteerScale     = 100.0
	SteerMaxTilt   = 20.0

	SteerVelocityDamping = 0.8
	SteerAngleDamping    = 0.9
	SteerVelocitySnap    = 5.0
	SteerAngleSnap       = 1.0
)

// Idle Re-centering
const (
	IdleMaxSpeed  = 200.0
	IdleTolerance = 40.0
	IdleScale     = 150.0
	IdleMaxTilt   = 15.0

	IdleVelocityDamping = 0.7
	IdleAngleDamping    = 0.8
	IdleVelocitySnap    = 3.0
	IdleAngleSnap       = 0.5
)
