package lattice

import (
	"errors"
	"fmt"
	"strings"
)

// BlendMode selects how a contact combines an incoming value with what it
// already holds.
type BlendMode string

const (
	// BlendAcceptLast overwrites unconditionally.
	BlendAcceptLast BlendMode = "accept-last"
	// BlendMerge joins under the value lattice; incomparable operands
	// yield a Contradiction.
	BlendMerge BlendMode = "merge"
)

var ErrInvalidBlendMode = errors.New("invalid blend mode")

func (m BlendMode) Valid() bool {
	switch m {
	case BlendAcceptLast, BlendMerge:
		return true
	default:
		return false
	}
}

func ParseBlendMode(raw string) (BlendMode, error) {
	mode := BlendMode(strings.TrimSpace(raw))
	if !mode.Valid() {
		return "", ErrInvalidBlendMode
	}
	return mode, nil
}

// Merge combines current and incoming under the given blend mode. hasCurrent
// is false for an empty contact. A failed join is reported as a
// Contradiction value in the result, never as an error or panic.
func Merge(current Value, hasCurrent bool, incoming Value, mode BlendMode) Value {
	if mode == BlendAcceptLast || !hasCurrent {
		return incoming
	}
	return join(current, incoming)
}

func join(a, b Value) Value {
	// Contradictions absorb; the first one encountered wins.
	if a.IsContradiction() {
		return a
	}
	if b.IsContradiction() {
		return b
	}

	switch {
	case a.Kind == KindInterval && b.Kind == KindInterval:
		return NewInterval(min(a.Interval.Lo, b.Interval.Lo), max(a.Interval.Hi, b.Interval.Hi))
	case a.Kind == KindInterval && b.Kind == KindNumber:
		return NewInterval(min(a.Interval.Lo, b.Number), max(a.Interval.Hi, b.Number))
	case a.Kind == KindNumber && b.Kind == KindInterval:
		return NewInterval(min(b.Interval.Lo, a.Number), max(b.Interval.Hi, a.Number))
	case a.Kind == KindSet && b.Kind == KindSet:
		out := a.Clone()
		for _, elem := range b.Set {
			out = setInsert(out, elem.Clone())
		}
		return out
	case a.Kind == KindMap && b.Kind == KindMap:
		return joinMaps(a, b)
	}

	if Equal(a, b) {
		return a
	}
	return Contradiction(
		fmt.Sprintf("cannot merge %s with %s", a.String(), b.String()),
		a, b,
	)
}

// joinMaps unions keys; a key present in both maps must hold structurally
// equal values, otherwise the whole join fails.
func joinMaps(a, b Value) Value {
	out := a.Clone()
	for key, bv := range b.Map {
		av, ok := out.Map[key]
		if ok && !Equal(av, bv) {
			return Contradiction(
				fmt.Sprintf("cannot merge maps: key %q holds %s and %s", key, av.String(), bv.String()),
				a, b,
			)
		}
		if out.Map == nil {
			out.Map = make(map[string]Value)
		}
		out.Map[key] = bv.Clone()
	}
	return out
}
