package scene

import "errors"

var (
	ErrHierarchyCycle = errors.New("scene: reparent would create a cycle")
	ErrDestroyed      = errors.New("scene: entity is destroyed")
	ErrForeignScene   = errors.New("scene: entity belongs to another scene")
)
