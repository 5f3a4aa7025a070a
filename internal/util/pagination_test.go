package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseIntDefault(t *testing.T) {
	assert.Equal(t, 7, ParseIntDefault("", 7))
	assert.Equal(t, 7, ParseIntDefault("x", 7))
	assert.Equal(t, 3, ParseIntDefault("3", 7))
}

func TestCalculate(t *testing.T) {
	off, lim := Calculate(0, 0)
	assert.Equal(t, 0, off)
	assert.Equal(t, DefaultPageSize, lim)

	off, lim = Calculate(3, 10)
	assert.Equal(t, 20, off)
	assert.Equal(t, 10, lim)

	_, lim = Calculate(1, 1000)
	assert.Equal(t, MaxPageSize, lim)
}

func TestNewMeta(t *testing.T) {
	m := NewMeta(2, 10, 25)
	assert.EqualValues(t, 3, m.TotalPages)
	assert.True(t, m.HasPrev)
	assert.True(t, m.HasNext)

	m = NewMeta(3, 10, 25)
	assert.False(t, m.HasNext)

	m = NewMeta(1, 10, 0)
	assert.Zero(t, m.TotalPages)
	assert.False(t, m.HasPrev)
	assert.False(t, m.HasNext)
}
