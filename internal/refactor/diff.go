package refactor

import "propnet/go-core/internal/network"

// ChangeKind enumerates the structural effects a refactoring can have.
type ChangeKind string

const (
	ChangeContactMoved ChangeKind = "contact-moved"
	ChangeGroupCreated ChangeKind = "group-created"
	ChangeGroupDeleted ChangeKind = "group-deleted"
	ChangeWireCreated  ChangeKind = "wire-created"
	ChangeWireDeleted  ChangeKind = "wire-deleted"
	ChangeWireUpdated  ChangeKind = "wire-updated"
)

// Change is one structural diff entry.
type Change struct {
	Kind     ChangeKind `json:"kind"`
	EntityID network.ID `json:"entity_id"`
	GroupID  network.ID `json:"group_id,omitempty"`
	From     network.ID `json:"from,omitempty"`
	To       network.ID `json:"to,omitempty"`
}

// Diff computes the change list between two arena states. The refactoring
// operations keep no incremental bookkeeping; comparing before and after is
// the single source of truth. Output is deterministic: groups created, then
// contacts moved, then surviving-wire changes, then wire and group
// deletions, each in creation order.
func Diff(before, after *network.Network) []Change {
	var changes []Change

	beforeGroups := make(map[network.ID]*network.Group)
	for _, g := range before.Groups() {
		beforeGroups[g.ID] = g
	}
	afterGroups := make(map[network.ID]*network.Group)
	for _, g := range after.Groups() {
		afterGroups[g.ID] = g
	}

	for _, g := range after.Groups() {
		if _, existed := beforeGroups[g.ID]; !existed {
			changes = append(changes, Change{Kind: ChangeGroupCreated, EntityID: g.ID, GroupID: g.ParentID})
		}
	}

	beforeContacts := make(map[network.ID]*network.Contact)
	for _, c := range before.Contacts() {
		beforeContacts[c.ID] = c
	}
	for _, c := range after.Contacts() {
		if old, existed := beforeContacts[c.ID]; existed && old.GroupID != c.GroupID {
			changes = append(changes, Change{Kind: ChangeContactMoved, EntityID: c.ID, GroupID: c.GroupID})
		}
	}

	beforeWires := make(map[network.ID]*network.Wire)
	for _, w := range before.Wires() {
		beforeWires[w.ID] = w
	}
	afterWires := make(map[network.ID]*network.Wire)
	for _, w := range after.Wires() {
		afterWires[w.ID] = w
	}
	for _, w := range after.Wires() {
		old, existed := beforeWires[w.ID]
		switch {
		case !existed:
			changes = append(changes, Change{Kind: ChangeWireCreated, EntityID: w.ID, GroupID: w.GroupID, From: w.From, To: w.To})
		case old.From != w.From || old.To != w.To:
			changes = append(changes, Change{Kind: ChangeWireUpdated, EntityID: w.ID, GroupID: w.GroupID, From: w.From, To: w.To})
		}
	}
	for _, w := range before.Wires() {
		if _, remains := afterWires[w.ID]; !remains {
			changes = append(changes, Change{Kind: ChangeWireDeleted, EntityID: w.ID, GroupID: w.GroupID, From: w.From, To: w.To})
		}
	}

	for _, g := range before.Groups() {
		if _, remains := afterGroups[g.ID]; !remains {
			changes = append(changes, Change{Kind: ChangeGroupDeleted, EntityID: g.ID, GroupID: g.ParentID})
		}
	}

	return changes
}
