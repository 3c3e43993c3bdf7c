package uictl_test

import (
	"testing"

	"github.com/alkime/scribe/pkg/uictl"
	"github.com/stretchr/testify/assert"
)

func TestFuncAdapters(t *testing.T) {
	var d uictl.Dial[int64] = uictl.DialFunc[int64](func() int64 { return 7 })
	assert.EqualValues(t, 7, d.Read())

	var l uictl.Levels[int16] = uictl.LevelsFunc[int16](func() []int16 { return []int16{1, -1} })
	assert.Equal(t, []int16{1, -1}, l.Read())
}

func TestFraction(t *testing.T) {
	level := func(v float64) uictl.Dial[float64] {
		return uictl.DialFunc[float64](func() float64 { return v })
	}

	assert.InDelta(t, 0.0, uictl.Fraction(level(-0.2)), 1e-9)
	assert.InDelta(t, 0.4, uictl.Fraction(level(0.4)), 1e-9)
	assert.InDelta(t, 1.0, uictl.Fraction(level(3)), 1e-9)
}
