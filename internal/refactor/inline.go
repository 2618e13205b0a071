package refactor

import (
	"fmt"

	"propnet/go-core/internal/network"
)

// Inline is the structural inverse of Extract: every boundary-mediated
// external wire is reconnected directly to the contact behind the boundary,
// the boundary contacts disappear, and the subgroup's remaining members are
// spliced into the parent. The subgroup itself is deleted.
func Inline(net *network.Network, parentID, groupID network.ID) ([]Change, error) {
	group, err := net.Group(groupID)
	if err != nil {
		return nil, err
	}
	if group.ParentID != parentID {
		return nil, &network.ValidationError{
			Msg: fmt.Sprintf("group %s is not a direct child of group %s", groupID, parentID),
		}
	}
	if group.IsGadget() {
		return nil, &network.ValidationError{
			Msg: fmt.Sprintf("gadget %s cannot be inlined; its internals are not user topology", groupID),
		}
	}
	if err := checkInlineNameClashes(net, parentID, groupID); err != nil {
		return nil, err
	}

	boundaries, err := net.BoundaryContacts(groupID)
	if err != nil {
		return nil, err
	}

	before := net.Clone()

	// Reconnect around each boundary contact. The first internal pairing
	// reuses the external wire's id so an extract round-trip preserves
	// wire identity; further pairings need fresh wires, created only
	// after the members have moved into the parent and the direct
	// connection is legal.
	var extraPairs [][2]network.ID
	for _, boundary := range boundaries {
		pairs, err := spliceBoundary(net, groupID, boundary.ID)
		if err != nil {
			return nil, err
		}
		extraPairs = append(extraPairs, pairs...)
	}

	for _, contactID := range append([]network.ID(nil), group.Contacts...) {
		if err := net.MoveContact(contactID, parentID); err != nil {
			return nil, err
		}
		if err := net.SetBoundary(contactID, false); err != nil {
			return nil, err
		}
	}
	for _, wireID := range append([]network.ID(nil), group.Wires...) {
		if err := net.MoveWire(wireID, parentID); err != nil {
			return nil, err
		}
	}
	for _, subID := range append([]network.ID(nil), group.Subgroups...) {
		if err := net.MoveGroup(subID, parentID); err != nil {
			return nil, err
		}
	}

	for _, pair := range extraPairs {
		if _, err := net.SpawnWire(pair[0], pair[1]); err != nil {
			return nil, err
		}
	}

	if err := net.DeleteGroup(groupID); err != nil {
		return nil, err
	}

	return Diff(before, net), nil
}

// checkInlineNameClashes rejects an inline whose surviving members would
// collide with names already present in the parent. Boundary contacts are
// exempt: they are removed by the splice.
func checkInlineNameClashes(net *network.Network, parentID, groupID network.ID) error {
	parent, err := net.Group(parentID)
	if err != nil {
		return err
	}
	group, err := net.Group(groupID)
	if err != nil {
		return err
	}

	parentNames := make(map[string]bool)
	for _, id := range parent.Contacts {
		contact, err := net.Contact(id)
		if err != nil {
			return err
		}
		parentNames[contact.Name] = true
	}
	for _, id := range parent.Subgroups {
		if id == groupID {
			continue
		}
		sub, err := net.Group(id)
		if err != nil {
			return err
		}
		parentNames[sub.Name] = true
	}

	for _, id := range group.Contacts {
		contact, err := net.Contact(id)
		if err != nil {
			return err
		}
		if !contact.IsBoundary && parentNames[contact.Name] {
			return &network.ValidationError{
				Msg: fmt.Sprintf("inlining group %s would duplicate name %q in group %s", groupID, contact.Name, parentID),
			}
		}
	}
	for _, id := range group.Subgroups {
		sub, err := net.Group(id)
		if err != nil {
			return err
		}
		if parentNames[sub.Name] {
			return &network.ValidationError{
				Msg: fmt.Sprintf("inlining group %s would duplicate name %q in group %s", groupID, sub.Name, parentID),
			}
		}
	}
	return nil
}

// spliceBoundary reconnects external wires around one boundary contact and
// removes it, returning any extra (from, to) connections that still need
// wires once the group's members live in the parent.
func spliceBoundary(net *network.Network, groupID, boundaryID network.ID) ([][2]network.ID, error) {
	var externalIn, externalOut, internalIn, internalOut []*network.Wire
	for _, wire := range net.WiresTouching(boundaryID) {
		internal := wire.GroupID == groupID
		switch {
		case wire.To == boundaryID && internal:
			internalIn = append(internalIn, wire)
		case wire.From == boundaryID && internal:
			internalOut = append(internalOut, wire)
		case wire.To == boundaryID:
			externalIn = append(externalIn, wire)
		default:
			externalOut = append(externalOut, wire)
		}
	}

	var extra [][2]network.ID

	// ext -> boundary -> inner becomes ext -> inner.
	for _, ext := range externalIn {
		if len(internalOut) == 0 {
			// The boundary had no internal target; the connection
			// has nowhere to go and is dropped with it.
			if err := net.DeleteWire(ext.ID); err != nil {
				return nil, err
			}
			continue
		}
		for i, inner := range internalOut {
			if i == 0 {
				if err := net.RetargetWire(ext.ID, ext.From, inner.To, ext.GroupID); err != nil {
					return nil, err
				}
				continue
			}
			extra = append(extra, [2]network.ID{ext.From, inner.To})
		}
	}

	// inner -> boundary -> ext becomes inner -> ext.
	for _, ext := range externalOut {
		if len(internalIn) == 0 {
			if err := net.DeleteWire(ext.ID); err != nil {
				return nil, err
			}
			continue
		}
		for i, inner := range internalIn {
			if i == 0 {
				if err := net.RetargetWire(ext.ID, inner.From, ext.To, ext.GroupID); err != nil {
					return nil, err
				}
				continue
			}
			extra = append(extra, [2]network.ID{inner.From, ext.To})
		}
	}

	return extra, net.DeleteContact(boundaryID)
}
