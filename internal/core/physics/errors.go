package physics

import "errors"

var (
	ErrInvalidMass         = errors.New("physics: mass must be positive")
	ErrUnknownShape        = errors.New("physics: unknown collider shape")
	ErrUnknownImpulseModel = errors.New("physics: unknown impulse model")
	ErrNegativeTimeScale   = errors.New("physics: time scale must not be negative")
)
