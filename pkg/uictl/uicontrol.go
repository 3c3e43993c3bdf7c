// Package uictl describes read-only controls a UI polls for live values.
package uictl

import "golang.org/x/exp/constraints"

type Number interface {
	constraints.Integer | constraints.Float
}

// Dial reads a single value.
type Dial[N Number] interface {
	Read() N
}

// Levels reads a window of recent values, oldest first.
type Levels[N Number] interface {
	Read() []N
}

// DialFunc adapts a function to Dial.
type DialFunc[N Number] func() N

func (f DialFunc[N]) Read() N { return f() }

// LevelsFunc adapts a function to Levels.
type LevelsFunc[N Number] func() []N

func (f LevelsFunc[N]) Read() []N { return f() }

// Fraction clamps d's reading into [0, 1].
func Fraction[N constraints.Float](d Dial[N]) N {
	v := d.Read()
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
