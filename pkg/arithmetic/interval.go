package arithmetic

import (
	"cmp"
	"fmt"
)

// BoundType describes how an interval endpoint restricts its values
type BoundType int

const (
	Weak BoundType = iota
	Strict
	Infty
)

func (bound BoundType) String() string {
	switch bound {
	case Weak:
		return "weak"
	case Strict:
		return "strict"
	default:
		return "infty"
	}
}

// Interval is a (possibly unbounded) interval over the non-negative integers, used as the
// timing annotation of until operators. The zero value is not meaningful, use the constructors.
type Interval struct {
	lower     uint
	upper     uint
	lowerType BoundType
	upperType BoundType
}

// NewUnboundedInterval returns (-∞, ∞)
func NewUnboundedInterval() Interval {
	return Interval{lowerType: Infty, upperType: Infty}
}

func NewInterval(lower uint, lowerType BoundType, upper uint, upperType BoundType) Interval {
	return Interval{
		lower:     lower,
		upper:     upper,
		lowerType: lowerType,
		upperType: upperType,
	}
}

// NewLowerBoundedInterval returns [lower, ∞) or (lower, ∞)
func NewLowerBoundedInterval(lower uint, lowerType BoundType) Interval {
	return Interval{lower: lower, lowerType: lowerType, upperType: Infty}
}

// NewUpperBoundedInterval returns (-∞, upper] or (-∞, upper)
func NewUpperBoundedInterval(upper uint, upperType BoundType) Interval {
	return Interval{upper: upper, lowerType: Infty, upperType: upperType}
}

func (interval Interval) Lower() uint { return interval.lower }

func (interval Interval) Upper() uint { return interval.upper }

func (interval Interval) LowerType() BoundType { return interval.lowerType }

func (interval Interval) UpperType() BoundType { return interval.upperType }

func (interval Interval) Contains(value float64) bool {
	return interval.fitsLower(value) && interval.fitsUpper(value)
}

func (interval Interval) IsEmpty() bool {
	if interval.lowerType == Infty || interval.upperType == Infty {
		return false
	}
	if interval.lower > interval.upper {
		return true
	}
	return interval.lower == interval.upper && (interval.lowerType == Strict || interval.upperType == Strict)
}

// Compare orders intervals lexicographically by (lower, lower type, upper, upper type)
func (interval Interval) Compare(other Interval) int {
	if c := cmp.Compare(interval.lower, other.lower); c != 0 {
		return c
	}
	if c := cmp.Compare(interval.lowerType, other.lowerType); c != 0 {
		return c
	}
	if c := cmp.Compare(interval.upper, other.upper); c != 0 {
		return c
	}
	return cmp.Compare(interval.upperType, other.upperType)
}

// IsUnbounded reports whether the interval restricts no value at all
func (interval Interval) IsUnbounded() bool {
	return interval.lowerType == Infty && interval.upperType == Infty
}

func (interval Interval) String() string {
	var lower, upper string
	switch interval.lowerType {
	case Weak:
		lower = fmt.Sprintf("[%d", interval.lower)
	case Strict:
		lower = fmt.Sprintf("(%d", interval.lower)
	default:
		lower = "(-∞"
	}
	switch interval.upperType {
	case Weak:
		upper = fmt.Sprintf("%d]", interval.upper)
	case Strict:
		upper = fmt.Sprintf("%d)", interval.upper)
	default:
		upper = "∞)"
	}
	return lower + ", " + upper
}

func (interval Interval) fitsLower(value float64) bool {
	switch interval.lowerType {
	case Weak:
		return value >= float64(interval.lower)
	case Strict:
		return value > float64(interval.lower)
	default:
		return true
	}
}

func (interval Interval) fitsUpper(value float64) bool {
	switch interval.upperType {
	case Weak:
		return value <= float64(interval.upper)
	case Strict:
		return value < float64(interval.upper)
	default:
		return true
	}
}
