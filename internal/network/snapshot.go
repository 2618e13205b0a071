package network

import "fmt"

// Snapshot is the persistable form of the arena: every entity in creation
// order plus the counters needed to resume minting ids and sequence numbers.
type Snapshot struct {
	RootID   ID         `json:"root_id"`
	NextSeq  int64      `json:"next_seq"`
	Groups   []*Group   `json:"groups"`
	Contacts []*Contact `json:"contacts"`
	Wires    []*Wire    `json:"wires"`
}

// Snapshot captures the current state. The result shares no mutable state
// with the live network.
func (n *Network) Snapshot() *Snapshot {
	clone := n.Clone()
	return &Snapshot{
		RootID:   clone.RootID,
		NextSeq:  clone.nextSeq,
		Groups:   clone.Groups(),
		Contacts: clone.Contacts(),
		Wires:    clone.Wires(),
	}
}

// FromSnapshot rebuilds a network, validating referential integrity before
// accepting it: every membership id must resolve, every wire endpoint must
// exist, and the root must be present. A snapshot failing these checks was
// corrupted or hand-edited and is rejected wholesale.
func FromSnapshot(snap *Snapshot, genID IDGenerator) (*Network, error) {
	if genID == nil {
		genID = RandomIDs
	}
	n := &Network{
		RootID:   snap.RootID,
		contacts: make(map[ID]*Contact, len(snap.Contacts)),
		wires:    make(map[ID]*Wire, len(snap.Wires)),
		groups:   make(map[ID]*Group, len(snap.Groups)),
		nextSeq:  snap.NextSeq,
		genID:    genID,
	}
	for _, g := range snap.Groups {
		n.groups[g.ID] = g.clone()
	}
	for _, c := range snap.Contacts {
		n.contacts[c.ID] = c.clone()
	}
	for _, w := range snap.Wires {
		n.wires[w.ID] = w.clone()
	}

	if _, ok := n.groups[n.RootID]; !ok {
		return nil, validationf("snapshot root group %s missing", n.RootID)
	}
	for _, g := range n.groups {
		if g.ID != n.RootID {
			parent, ok := n.groups[g.ParentID]
			if !ok {
				return nil, validationf("group %s references missing parent %s", g.ID, g.ParentID)
			}
			if !containsID(parent.Subgroups, g.ID) {
				return nil, validationf("group %s is not listed by its parent %s", g.ID, g.ParentID)
			}
		}
		for _, id := range g.Contacts {
			contact, ok := n.contacts[id]
			if !ok {
				return nil, validationf("group %s lists missing contact %s", g.ID, id)
			}
			if contact.GroupID != g.ID {
				return nil, validationf("contact %s disagrees with group %s about ownership", id, g.ID)
			}
		}
		for _, id := range g.Wires {
			wire, ok := n.wires[id]
			if !ok {
				return nil, validationf("group %s lists missing wire %s", g.ID, id)
			}
			if wire.GroupID != g.ID {
				return nil, validationf("wire %s disagrees with group %s about ownership", id, g.ID)
			}
		}
		for _, port := range append(append([]Port(nil), g.Inputs...), g.Outputs...) {
			if _, ok := n.contacts[port.ContactID]; !ok {
				return nil, validationf("gadget %s port %q references missing contact %s", g.ID, port.Name, port.ContactID)
			}
		}
	}
	for _, w := range n.wires {
		if _, ok := n.contacts[w.From]; !ok {
			return nil, fmt.Errorf("wire %s source %s: %w", w.ID, w.From, ErrNotFound)
		}
		if _, ok := n.contacts[w.To]; !ok {
			return nil, fmt.Errorf("wire %s target %s: %w", w.ID, w.To, ErrNotFound)
		}
	}
	for _, c := range n.contacts {
		if _, ok := n.groups[c.GroupID]; !ok {
			return nil, validationf("contact %s references missing group %s", c.ID, c.GroupID)
		}
		if c.Seq > n.nextSeq {
			return nil, validationf("contact %s sequence %d exceeds snapshot counter %d", c.ID, c.Seq, n.nextSeq)
		}
	}
	return n, nil
}

func containsID(ids []ID, id ID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
