// Package engine runs synchronous fixpoint propagation over a network.
// It is single-threaded by construction: one Run call owns the network for
// its whole duration, and gadget bodies never re-enter the engine.
package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"propnet/go-core/internal/lattice"
	"propnet/go-core/internal/network"
)

// ErrDiverged aborts a run whose step count exceeded the configured bound.
// Accept-last cycles can oscillate forever; the bound is the safety valve.
var ErrDiverged = errors.New("propagation diverged: step bound exceeded")

const DefaultMaxSteps = 10_000

// Change records one contact mutation observed during a run, in the order
// the engine applied it.
type Change struct {
	ContactID     network.ID
	Value         lattice.Value
	Contradiction bool
}

// Seeds names the work a command made pending: contacts whose values
// changed outside the engine, and wires created since the last fixpoint.
type Seeds struct {
	Contacts []network.ID
	Wires    []network.ID
}

type unitKind uint8

const (
	unitWire unitKind = iota
	unitGadget
)

type unit struct {
	kind unitKind
	id   network.ID
}

// Engine is a run-to-quiescence scheduler. The zero value is not usable;
// construct with New.
type Engine struct {
	maxSteps int
	logger   *slog.Logger
}

func New(maxSteps int, logger *slog.Logger) *Engine {
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{maxSteps: maxSteps, logger: logger}
}

// Run drains all pending units in FIFO order until quiescence, returning
// every contact change in application order and the number of steps taken.
// On divergence the network is left mid-propagation; the caller owns
// rollback to its pre-command snapshot.
func (e *Engine) Run(net *network.Network, seeds Seeds) ([]Change, int, error) {
	r := &run{net: net, pending: make(map[unit]bool)}
	for _, contactID := range seeds.Contacts {
		r.enqueueDependents(contactID)
	}
	for _, wireID := range seeds.Wires {
		r.enqueue(unit{kind: unitWire, id: wireID})
	}

	steps := 0
	for len(r.queue) > 0 {
		if steps >= e.maxSteps {
			e.logger.Error("propagation diverged", "steps", steps, "queued", len(r.queue))
			return nil, steps, fmt.Errorf("%w after %d steps", ErrDiverged, steps)
		}
		steps++

		next := r.queue[0]
		r.queue = r.queue[1:]
		delete(r.pending, next)

		switch next.kind {
		case unitWire:
			r.stepWire(next.id)
		case unitGadget:
			r.stepGadget(next.id)
		}
	}

	e.logger.Debug("propagation settled", "steps", steps, "changes", len(r.changes))
	return r.changes, steps, nil
}

type run struct {
	net     *network.Network
	queue   []unit
	pending map[unit]bool
	changes []Change
}

func (r *run) enqueue(u unit) {
	if r.pending[u] {
		return
	}
	r.pending[u] = true
	r.queue = append(r.queue, u)
}

// enqueueDependents wakes everything that reads the contact: its outgoing
// wires in creation order, then the gadget whose input port it backs.
func (r *run) enqueueDependents(contactID network.ID) {
	for _, wire := range r.net.OutgoingWires(contactID) {
		r.enqueue(unit{kind: unitWire, id: wire.ID})
	}
	if gadget, ok := r.net.ReaderGadget(contactID); ok {
		r.enqueue(unit{kind: unitGadget, id: gadget.ID})
	}
}

// stepWire forwards the source value, contradictions included, into the
// target. An empty source is a no-op.
func (r *run) stepWire(wireID network.ID) {
	wire, err := r.net.Wire(wireID)
	if err != nil {
		return // deleted while queued
	}
	from, err := r.net.Contact(wire.From)
	if err != nil {
		return
	}
	value, ok := from.Read()
	if !ok {
		return
	}
	r.deliver(wire.To, value)
}

// stepGadget re-checks activation against currently present inputs and, if
// the gadget fires, writes the body's outputs through Receive.
func (r *run) stepGadget(gadgetID network.ID) {
	gadget, err := r.net.Group(gadgetID)
	if err != nil || !gadget.IsGadget() {
		return
	}
	spec, ok := network.LookupGadget(gadget.GadgetKind)
	if !ok {
		return
	}

	inputs := make(map[string]lattice.Value, len(gadget.Inputs))
	present := make(map[string]bool, len(gadget.Inputs))
	for _, port := range gadget.Inputs {
		contact, err := r.net.Contact(port.ContactID)
		if err != nil {
			continue
		}
		if value, held := contact.Read(); held {
			inputs[port.Name] = value
			present[port.Name] = true
		}
	}
	if !spec.Activated(present) {
		return
	}

	outputs := spec.Body(inputs)
	for _, port := range gadget.Outputs {
		value, produced := outputs[port.Name]
		if !produced {
			continue
		}
		r.deliver(port.ContactID, value)
	}
}

func (r *run) deliver(contactID network.ID, value lattice.Value) {
	contact, err := r.net.Contact(contactID)
	if err != nil {
		return
	}
	if !contact.Receive(value) {
		return
	}
	r.changes = append(r.changes, Change{
		ContactID:     contactID,
		Value:         contact.Value.Clone(),
		Contradiction: contact.Value.IsContradiction(),
	})
	r.enqueueDependents(contactID)
}
