// Package refactor performs topology-preserving graph surgery: extracting
// contacts into a subgroup, inlining a subgroup away, and copying contacts
// or whole subtrees. Every operation validates fully before mutating and
// reports its effect as a structural diff of the old and new topology.
package refactor

import "propnet/go-core/internal/network"

// Classification buckets wires relative to a contact selection.
type Classification struct {
	// Internal wires have both endpoints selected.
	Internal []*network.Wire
	// Incoming wires have only the target selected.
	Incoming []*network.Wire
	// Outgoing wires have only the source selected.
	Outgoing []*network.Wire
	// Crossing wires touch no selected contact.
	Crossing []*network.Wire
}

// ClassifyWires sorts wires into the four buckets for a selection.
func ClassifyWires(wires []*network.Wire, selection map[network.ID]bool) Classification {
	var c Classification
	for _, wire := range wires {
		fromSelected := selection[wire.From]
		toSelected := selection[wire.To]
		switch {
		case fromSelected && toSelected:
			c.Internal = append(c.Internal, wire)
		case toSelected:
			c.Incoming = append(c.Incoming, wire)
		case fromSelected:
			c.Outgoing = append(c.Outgoing, wire)
		default:
			c.Crossing = append(c.Crossing, wire)
		}
	}
	return c
}
