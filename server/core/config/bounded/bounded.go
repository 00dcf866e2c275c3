// Package bounded provides integers constrained to an inclusive range.
// Numeric workflow fields (timeouts, parallelism caps) are carried as bounded
// values so arithmetic on them can never silently leave the valid range.
package bounded

import (
	"fmt"
)

// Int is an integer constrained to the inclusive range [min, max].
// The zero value is not usable; construct via New or Clamp.
type Int struct {
	value int
	min   int
	max   int
}

// New returns a bounded integer, or an error if value is out of range.
func New(value, min, max int) (Int, error) {
	if min > max {
		return Int{}, fmt.Errorf("invalid range [%d, %d]", min, max)
	}
	if value < min || value > max {
		return Int{}, fmt.Errorf("%d is outside the range [%d, %d]", value, min, max)
	}
	return Int{value: value, min: min, max: max}, nil
}

// Clamp returns value saturated into [min, max].
func Clamp(value, min, max int) Int {
	if value < min {
		value = min
	}
	if value > max {
		value = max
	}
	return Int{value: value, min: min, max: max}
}

func (i Int) Value() int {
	return i.value
}

func (i Int) Min() int {
	return i.min
}

func (i Int) Max() int {
	return i.max
}

// CheckedAdd returns i+n and true when the result stays in range.
func (i Int) CheckedAdd(n int) (Int, bool) {
	v := i.value + n
	if v < i.min || v > i.max {
		return Int{}, false
	}
	return Int{value: v, min: i.min, max: i.max}, true
}

// CheckedSub returns i-n and true when the result stays in range.
func (i Int) CheckedSub(n int) (Int, bool) {
	return i.CheckedAdd(-n)
}

// SaturatingAdd returns i+n clamped to the range.
func (i Int) SaturatingAdd(n int) Int {
	return Clamp(i.value+n, i.min, i.max)
}

// SaturatingSub returns i-n clamped to the range.
func (i Int) SaturatingSub(n int) Int {
	return Clamp(i.value-n, i.min, i.max)
}

func (i Int) String() string {
	return fmt.Sprintf("%d", i.value)
}
