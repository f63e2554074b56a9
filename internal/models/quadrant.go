package models

import "fmt"

// Quadrant is an Eisenhower bucket. QuadrantAll is a filter value, not a bucket.
type Quadrant string

const (
	QuadrantAll      Quadrant = "all"
	QuadrantDo       Quadrant = "do"
	QuadrantDecide   Quadrant = "decide"
	QuadrantDelegate Quadrant = "delegate"
	QuadrantDelete   Quadrant = "delete"
)

// QuadrantOf maps the importance/urgency pair onto exactly one bucket.
func QuadrantOf(important, urgent bool) Quadrant {
	switch {
	case important && urgent:
		return QuadrantDo
	case important:
		return QuadrantDecide
	case urgent:
		return QuadrantDelegate
	default:
		return QuadrantDelete
	}
}

// ParseQuadrant accepts the four buckets plus "all". Empty input means "all".
func ParseQuadrant(s string) (Quadrant, error) {
	switch q := Quadrant(s); q {
	case "":
		return QuadrantAll, nil
	case QuadrantAll, QuadrantDo, QuadrantDecide, QuadrantDelegate, QuadrantDelete:
		return q, nil
	default:
		return "", fmt.Errorf("unknown quadrant %q", s)
	}
}

// Flags returns the importance/urgency pair a bucket requires. ok is false for QuadrantAll.
func (q Quadrant) Flags() (important, urgent bool, ok bool) {
	switch q {
	case QuadrantDo:
		return true, true, true
	case QuadrantDecide:
		return true, false, true
	case QuadrantDelegate:
		return false, true, true
	case QuadrantDelete:
		return false, false, true
	default:
		return false, false, false
	}
}
