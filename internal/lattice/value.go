package lattice

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind discriminates the closed set of value variants a contact can hold.
type Kind string

const (
	KindNumber        Kind = "number"
	KindText          Kind = "text"
	KindBool          Kind = "bool"
	KindInterval      Kind = "interval"
	KindSet           Kind = "set"
	KindMap           Kind = "map"
	KindContradiction Kind = "contradiction"
)

var ErrInvalidValueKind = errors.New("invalid value kind")

func (k Kind) Valid() bool {
	switch k {
	case KindNumber, KindText, KindBool, KindInterval, KindSet, KindMap, KindContradiction:
		return true
	default:
		return false
	}
}

func ParseKind(raw string) (Kind, error) {
	kind := Kind(strings.TrimSpace(raw))
	if !kind.Valid() {
		return "", ErrInvalidValueKind
	}
	return kind, nil
}

// Interval is a closed numeric range. Lo <= Hi is maintained by NewInterval.
type Interval struct {
	Lo float64 `json:"lo"`
	Hi float64 `json:"hi"`
}

func (iv Interval) Contains(n float64) bool {
	return iv.Lo <= n && n <= iv.Hi
}

func (iv Interval) SpansZero() bool {
	return iv.Contains(0)
}

// Value is the tagged union flowing through the network. Exactly the fields
// selected by Kind are meaningful; all other fields are zero.
type Value struct {
	Kind Kind `json:"kind"`

	Number   float64          `json:"number,omitempty"`
	Text     string           `json:"text,omitempty"`
	Bool     bool             `json:"bool,omitempty"`
	Interval Interval         `json:"interval,omitempty"`
	Set      []Value          `json:"set,omitempty"`
	Map      map[string]Value `json:"map,omitempty"`

	// Contradiction payload.
	Reason   string  `json:"reason,omitempty"`
	Operands []Value `json:"operands,omitempty"`
}

func Number(n float64) Value { return Value{Kind: KindNumber, Number: n} }
func Text(s string) Value    { return Value{Kind: KindText, Text: s} }
func Bool(b bool) Value      { return Value{Kind: KindBool, Bool: b} }

func NewInterval(lo, hi float64) Value {
	if lo > hi {
		lo, hi = hi, lo
	}
	return Value{Kind: KindInterval, Interval: Interval{Lo: lo, Hi: hi}}
}

// NewSet deduplicates elements under structural equality, so set values
// compare and merge as mathematical sets regardless of construction order.
func NewSet(elems ...Value) Value {
	set := Value{Kind: KindSet}
	for _, e := range elems {
		set = setInsert(set, e)
	}
	return set
}

func NewMap(entries map[string]Value) Value {
	m := make(map[string]Value, len(entries))
	for k, v := range entries {
		m[k] = v
	}
	return Value{Kind: KindMap, Map: m}
}

// Contradiction constructs the first-class failure value. Operands name the
// values that could not be combined; they are kept for diagnostics and for
// absorption through downstream operations.
func Contradiction(reason string, operands ...Value) Value {
	return Value{Kind: KindContradiction, Reason: reason, Operands: operands}
}

func (v Value) IsContradiction() bool {
	return v.Kind == KindContradiction
}

func (v Value) IsNumeric() bool {
	return v.Kind == KindNumber || v.Kind == KindInterval
}

func setInsert(set Value, elem Value) Value {
	for _, existing := range set.Set {
		if Equal(existing, elem) {
			return set
		}
	}
	set.Set = append(set.Set, elem)
	return set
}

// Equal reports kind-aware structural equality. Collections of different
// kinds never compare equal even with identical elements; same-kind
// collections compare by element/key set, order-independent.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNumber:
		return a.Number == b.Number
	case KindText:
		return a.Text == b.Text
	case KindBool:
		return a.Bool == b.Bool
	case KindInterval:
		return a.Interval == b.Interval
	case KindSet:
		if len(a.Set) != len(b.Set) {
			return false
		}
		for _, elem := range a.Set {
			if !setContains(b, elem) {
				return false
			}
		}
		return true
	case KindMap:
		if len(a.Map) != len(b.Map) {
			return false
		}
		for key, av := range a.Map {
			bv, ok := b.Map[key]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	case KindContradiction:
		if a.Reason != b.Reason || len(a.Operands) != len(b.Operands) {
			return false
		}
		for i := range a.Operands {
			if !Equal(a.Operands[i], b.Operands[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func setContains(set Value, elem Value) bool {
	for _, existing := range set.Set {
		if Equal(existing, elem) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy sharing no mutable state with the receiver.
func (v Value) Clone() Value {
	out := v
	if v.Set != nil {
		out.Set = make([]Value, len(v.Set))
		for i, e := range v.Set {
			out.Set[i] = e.Clone()
		}
	}
	if v.Map != nil {
		out.Map = make(map[string]Value, len(v.Map))
		for k, e := range v.Map {
			out.Map[k] = e.Clone()
		}
	}
	if v.Operands != nil {
		out.Operands = make([]Value, len(v.Operands))
		for i, e := range v.Operands {
			out.Operands[i] = e.Clone()
		}
	}
	return out
}

// String renders a compact single-line form used in contradiction reasons
// and log output.
func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		return strconv.FormatFloat(v.Number, 'g', -1, 64)
	case KindText:
		return strconv.Quote(v.Text)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindInterval:
		return fmt.Sprintf("[%s, %s]",
			strconv.FormatFloat(v.Interval.Lo, 'g', -1, 64),
			strconv.FormatFloat(v.Interval.Hi, 'g', -1, 64))
	case KindSet:
		parts := make([]string, len(v.Set))
		for i, e := range v.Set {
			parts[i] = e.String()
		}
		sort.Strings(parts)
		return "{" + strings.Join(parts, ", ") + "}"
	case KindMap:
		keys := make([]string, 0, len(v.Map))
		for k := range v.Map {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + v.Map[k].String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case KindContradiction:
		return "contradiction(" + v.Reason + ")"
	default:
		return string(v.Kind)
	}
}
