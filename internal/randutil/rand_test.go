package randutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIsDeterministic(t *testing.T) {
	a := New(42)
	b := New(42)
	for i := 0; i < 16; i++ {
		assert.Equal(t, a.Float64(), b.Float64())
	}

	c := New(43)
	assert.NotEqual(t, New(42).Float64(), c.Float64())
}

func TestSeed(t *testing.T) {
	fixed := int64(7)
	assert.Equal(t, int64(7), Seed(&fixed))
	assert.NotZero(t, Seed(nil))
}

type constRand float64

func (c constRand) Float64() float64 { return float64(c) }
func (c constRand) IntN(n int) int   { return 0 }

func TestUniformAndChance(t *testing.T) {
	assert.InDelta(t, 0.8, Uniform(constRand(0), 0.8, 1.0), 1e-9)
	assert.InDelta(t, 0.9, Uniform(constRand(0.5), 0.8, 1.0), 1e-9)

	assert.True(t, Chance(constRand(0.1), 0.5))
	assert.False(t, Chance(constRand(0.5), 0.5))
	assert.False(t, Chance(constRand(0), 0))
}
