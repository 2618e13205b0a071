package lattice

import (
	"encoding/json"
	"fmt"
)

// Decode parses the JSON encoding of a value and normalizes it: interval
// bounds ordered, set elements deduplicated, kinds validated recursively.
// External payloads pass through here before touching the network.
func Decode(raw []byte) (Value, error) {
	var v Value
	if err := json.Unmarshal(raw, &v); err != nil {
		return Value{}, fmt.Errorf("decode value: %w", err)
	}
	return Normalize(v)
}

// Encode renders a value in its canonical JSON form.
func Encode(v Value) (json.RawMessage, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	return raw, nil
}

// Normalize validates the variant tree and rebuilds collections in
// canonical form.
func Normalize(v Value) (Value, error) {
	if !v.Kind.Valid() {
		return Value{}, fmt.Errorf("%w: %q", ErrInvalidValueKind, v.Kind)
	}
	switch v.Kind {
	case KindInterval:
		return NewInterval(v.Interval.Lo, v.Interval.Hi), nil
	case KindSet:
		out := Value{Kind: KindSet}
		for _, elem := range v.Set {
			normalized, err := Normalize(elem)
			if err != nil {
				return Value{}, err
			}
			out = setInsert(out, normalized)
		}
		return out, nil
	case KindMap:
		out := Value{Kind: KindMap, Map: make(map[string]Value, len(v.Map))}
		for key, elem := range v.Map {
			normalized, err := Normalize(elem)
			if err != nil {
				return Value{}, err
			}
			out.Map[key] = normalized
		}
		return out, nil
	case KindContradiction:
		out := Value{Kind: KindContradiction, Reason: v.Reason}
		for _, operand := range v.Operands {
			normalized, err := Normalize(operand)
			if err != nil {
				return Value{}, err
			}
			out.Operands = append(out.Operands, normalized)
		}
		return out, nil
	default:
		return v, nil
	}
}
