package network

import (
	"fmt"
	"sort"

	"propnet/go-core/internal/lattice"
)

// Network is the arena owning every contact, wire, and group, addressed by
// opaque ids. Groups hold id sets rather than nested pointers, so the
// parent/child relation never forms an ownership cycle.
type Network struct {
	RootID ID

	contacts map[ID]*Contact
	wires    map[ID]*Wire
	groups   map[ID]*Group

	nextSeq int64
	genID   IDGenerator
}

// New creates a network holding only the root group. A nil generator falls
// back to RandomIDs.
func New(genID IDGenerator) *Network {
	if genID == nil {
		genID = RandomIDs
	}
	n := &Network{
		contacts: make(map[ID]*Contact),
		wires:    make(map[ID]*Wire),
		groups:   make(map[ID]*Group),
		genID:    genID,
	}
	root := &Group{
		ID:   genID(prefixGroup),
		Seq:  n.seq(),
		Name: "root",
		Kind: GroupPlain,
	}
	n.groups[root.ID] = root
	n.RootID = root.ID
	return n
}

func (n *Network) seq() int64 {
	n.nextSeq++
	return n.nextSeq
}

// Contact resolves a contact id.
func (n *Network) Contact(id ID) (*Contact, error) {
	c, ok := n.contacts[id]
	if !ok {
		return nil, fmt.Errorf("contact %s: %w", id, ErrNotFound)
	}
	return c, nil
}

// Wire resolves a wire id.
func (n *Network) Wire(id ID) (*Wire, error) {
	w, ok := n.wires[id]
	if !ok {
		return nil, fmt.Errorf("wire %s: %w", id, ErrNotFound)
	}
	return w, nil
}

// Group resolves a group id.
func (n *Network) Group(id ID) (*Group, error) {
	g, ok := n.groups[id]
	if !ok {
		return nil, fmt.Errorf("group %s: %w", id, ErrNotFound)
	}
	return g, nil
}

// SpawnContact creates a contact inside the given group. Names are unique
// among the group's direct contacts and subgroups. An initial value is
// delivered through Receive so blend semantics apply from the start.
func (n *Network) SpawnContact(groupID ID, name string, blend lattice.BlendMode, initial *lattice.Value) (*Contact, error) {
	group, err := n.Group(groupID)
	if err != nil {
		return nil, err
	}
	if !blend.Valid() {
		return nil, lattice.ErrInvalidBlendMode
	}
	if name == "" {
		return nil, validationf("contact name must not be empty")
	}
	if n.nameInUse(group, name) {
		return nil, fmt.Errorf("contact %q in group %s: %w", name, groupID, ErrNameTaken)
	}

	contact := &Contact{
		ID:      n.genID(prefixContact),
		Seq:     n.seq(),
		GroupID: groupID,
		Name:    name,
		Blend:   blend,
	}
	if initial != nil {
		contact.Receive(*initial)
	}
	n.contacts[contact.ID] = contact
	group.Contacts = append(group.Contacts, contact.ID)
	return contact, nil
}

// SpawnGroup creates an empty plain subgroup.
func (n *Network) SpawnGroup(parentID ID, name string) (*Group, error) {
	parent, err := n.Group(parentID)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, validationf("group name must not be empty")
	}
	if n.nameInUse(parent, name) {
		return nil, fmt.Errorf("group %q in group %s: %w", name, parentID, ErrNameTaken)
	}

	group := &Group{
		ID:       n.genID(prefixGroup),
		Seq:      n.seq(),
		ParentID: parentID,
		Name:     name,
		Kind:     GroupPlain,
	}
	n.groups[group.ID] = group
	parent.Subgroups = append(parent.Subgroups, group.ID)
	return group, nil
}

// SpawnGadget instantiates a registered gadget kind as a subgroup whose
// input and output ports are boundary contacts, wired for the parent to use.
func (n *Network) SpawnGadget(parentID ID, name, kind string) (*Group, error) {
	parent, err := n.Group(parentID)
	if err != nil {
		return nil, err
	}
	spec, ok := LookupGadget(kind)
	if !ok {
		return nil, fmt.Errorf("gadget kind %q: %w", kind, ErrUnknownKind)
	}
	if name == "" {
		return nil, validationf("gadget name must not be empty")
	}
	if n.nameInUse(parent, name) {
		return nil, fmt.Errorf("gadget %q in group %s: %w", name, parentID, ErrNameTaken)
	}

	gadget := &Group{
		ID:         n.genID(prefixGadget),
		Seq:        n.seq(),
		ParentID:   parentID,
		Name:       name,
		Kind:       GroupGadget,
		GadgetKind: kind,
	}
	n.groups[gadget.ID] = gadget
	parent.Subgroups = append(parent.Subgroups, gadget.ID)

	for _, portName := range spec.Inputs {
		contact, err := n.SpawnContact(gadget.ID, portName, lattice.BlendAcceptLast, nil)
		if err != nil {
			return nil, err
		}
		contact.IsBoundary = true
		gadget.Inputs = append(gadget.Inputs, Port{Name: portName, ContactID: contact.ID})
	}
	for _, portName := range spec.Outputs {
		contact, err := n.SpawnContact(gadget.ID, portName, lattice.BlendAcceptLast, nil)
		if err != nil {
			return nil, err
		}
		contact.IsBoundary = true
		gadget.Outputs = append(gadget.Outputs, Port{Name: portName, ContactID: contact.ID})
	}
	return gadget, nil
}

// SpawnWire connects two contacts after checking boundary legality. The wire
// is owned by the scope group the connection is legal in. Wiring into a
// gadget's output port is rejected: output contacts are written only by the
// gadget body.
func (n *Network) SpawnWire(fromID, toID ID) (*Wire, error) {
	from, err := n.Contact(fromID)
	if err != nil {
		return nil, err
	}
	to, err := n.Contact(toID)
	if err != nil {
		return nil, err
	}
	if owner := n.groups[to.GroupID]; owner.IsGadget() && owner.OutputContact(to.ID) {
		return nil, &ConnectionError{From: fromID, To: toID, Reason: ErrGadgetOutput.Error()}
	}
	scope, connErr := n.wireScope(from, to)
	if connErr != nil {
		return nil, connErr
	}

	wire := &Wire{
		ID:      n.genID(prefixWire),
		Seq:     n.seq(),
		GroupID: scope,
		From:    fromID,
		To:      toID,
	}
	n.wires[wire.ID] = wire
	n.groups[scope].Wires = append(n.groups[scope].Wires, wire.ID)
	return wire, nil
}

// DeleteWire removes a wire.
func (n *Network) DeleteWire(id ID) error {
	wire, err := n.Wire(id)
	if err != nil {
		return err
	}
	owner := n.groups[wire.GroupID]
	owner.Wires = removeID(owner.Wires, id)
	delete(n.wires, id)
	return nil
}

// DeleteContact removes a contact and every wire touching it. Port contacts
// of a gadget are rejected: the gadget's port table must keep resolving, so
// they only go away with the gadget itself.
func (n *Network) DeleteContact(id ID) error {
	contact, err := n.Contact(id)
	if err != nil {
		return err
	}
	if owner := n.groups[contact.GroupID]; owner.IsGadget() {
		return validationf("contact %s is a port of gadget %s; delete the gadget instead", id, owner.ID)
	}
	return n.removeContact(contact)
}

func (n *Network) removeContact(contact *Contact) error {
	for _, wire := range n.WiresTouching(contact.ID) {
		if err := n.DeleteWire(wire.ID); err != nil {
			return err
		}
	}
	owner := n.groups[contact.GroupID]
	owner.Contacts = removeID(owner.Contacts, contact.ID)
	delete(n.contacts, contact.ID)
	return nil
}

// DeleteGroup removes a group recursively, including gadgets, members, and
// every wire attached to a removed contact. The root group cannot be
// deleted.
func (n *Network) DeleteGroup(id ID) error {
	group, err := n.Group(id)
	if err != nil {
		return err
	}
	if id == n.RootID {
		return ErrRootGroup
	}
	for _, sub := range append([]ID(nil), group.Subgroups...) {
		if err := n.DeleteGroup(sub); err != nil {
			return err
		}
	}
	for _, contactID := range append([]ID(nil), group.Contacts...) {
		if err := n.removeContact(n.contacts[contactID]); err != nil {
			return err
		}
	}
	for _, wireID := range append([]ID(nil), group.Wires...) {
		if err := n.DeleteWire(wireID); err != nil {
			return err
		}
	}
	parent := n.groups[group.ParentID]
	parent.Subgroups = removeID(parent.Subgroups, id)
	delete(n.groups, id)
	return nil
}

func (n *Network) nameInUse(group *Group, name string) bool {
	for _, id := range group.Contacts {
		if n.contacts[id].Name == name {
			return true
		}
	}
	for _, id := range group.Subgroups {
		if n.groups[id].Name == name {
			return true
		}
	}
	return false
}

// OutgoingWires lists wires whose source is the contact, in creation order.
func (n *Network) OutgoingWires(contactID ID) []*Wire {
	return n.collectWires(func(w *Wire) bool { return w.From == contactID })
}

// WiresTouching lists wires with the contact at either endpoint, in creation
// order.
func (n *Network) WiresTouching(contactID ID) []*Wire {
	return n.collectWires(func(w *Wire) bool { return w.From == contactID || w.To == contactID })
}

func (n *Network) collectWires(match func(*Wire) bool) []*Wire {
	var out []*Wire
	for _, w := range n.wires {
		if match(w) {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

// ReaderGadget returns the gadget that reads the contact as an input port,
// if the contact backs one.
func (n *Network) ReaderGadget(contactID ID) (*Group, bool) {
	contact, ok := n.contacts[contactID]
	if !ok {
		return nil, false
	}
	owner := n.groups[contact.GroupID]
	if owner.IsGadget() && owner.InputContact(contactID) {
		return owner, true
	}
	return nil, false
}

// Clone deep-copies the whole arena. Propagation rollback and refactoring
// diffs both rely on clones being fully independent of the original.
func (n *Network) Clone() *Network {
	out := &Network{
		RootID:   n.RootID,
		contacts: make(map[ID]*Contact, len(n.contacts)),
		wires:    make(map[ID]*Wire, len(n.wires)),
		groups:   make(map[ID]*Group, len(n.groups)),
		nextSeq:  n.nextSeq,
		genID:    n.genID,
	}
	for id, c := range n.contacts {
		out.contacts[id] = c.clone()
	}
	for id, w := range n.wires {
		out.wires[id] = w.clone()
	}
	for id, g := range n.groups {
		out.groups[id] = g.clone()
	}
	return out
}

// Restore replaces the receiver's state with another network's, in place, so
// callers holding the pointer observe the rollback.
func (n *Network) Restore(from *Network) {
	n.RootID = from.RootID
	n.contacts = from.contacts
	n.wires = from.wires
	n.groups = from.groups
	n.nextSeq = from.nextSeq
}

// Contacts enumerates every contact in creation order.
func (n *Network) Contacts() []*Contact {
	out := make([]*Contact, 0, len(n.contacts))
	for _, c := range n.contacts {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

// Wires enumerates every wire in creation order.
func (n *Network) Wires() []*Wire {
	out := make([]*Wire, 0, len(n.wires))
	for _, w := range n.wires {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

// Groups enumerates every group in creation order, root first.
func (n *Network) Groups() []*Group {
	out := make([]*Group, 0, len(n.groups))
	for _, g := range n.groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}
