package refactor

import (
	"fmt"
	"strconv"

	"propnet/go-core/internal/network"
)

// CopyContacts duplicates contacts under fresh ids in their own group,
// preserving blend mode and current value. With withWires set, wires whose
// endpoints were both selected are duplicated between the copies. External
// wires are never implicitly copied. Returns the old-id to new-id mapping.
func CopyContacts(net *network.Network, parentID network.ID, contactIDs []network.ID, withWires bool) (map[network.ID]network.ID, []Change, error) {
	if _, err := net.Group(parentID); err != nil {
		return nil, nil, err
	}
	if len(contactIDs) == 0 {
		return nil, nil, &network.ValidationError{Msg: "copy requires at least one contact"}
	}
	selection := make(map[network.ID]bool, len(contactIDs))
	for _, id := range contactIDs {
		contact, err := net.Contact(id)
		if err != nil {
			return nil, nil, err
		}
		if contact.GroupID != parentID {
			return nil, nil, &network.ValidationError{
				Msg: fmt.Sprintf("contact %s is not a direct child of group %s", id, parentID),
			}
		}
		if selection[id] {
			return nil, nil, &network.ValidationError{Msg: fmt.Sprintf("contact %s selected twice", id)}
		}
		selection[id] = true
	}

	before := net.Clone()

	idMap := make(map[network.ID]network.ID, len(contactIDs))
	for _, id := range contactIDs {
		copied, err := copyContactInto(net, id, parentID)
		if err != nil {
			return nil, nil, err
		}
		idMap[id] = copied
	}

	if withWires {
		for _, wire := range ClassifyWires(before.Wires(), selection).Internal {
			if _, err := net.SpawnWire(idMap[wire.From], idMap[wire.To]); err != nil {
				return nil, nil, err
			}
		}
	}

	return idMap, Diff(before, net), nil
}

// CopyGroup duplicates a whole subgroup subtree under fresh ids next to the
// original. Wires internal to the subtree are copied; wires crossing its
// boundary are not.
func CopyGroup(net *network.Network, parentID, groupID network.ID) (*network.Group, []Change, error) {
	group, err := net.Group(groupID)
	if err != nil {
		return nil, nil, err
	}
	if group.ParentID != parentID {
		return nil, nil, &network.ValidationError{
			Msg: fmt.Sprintf("group %s is not a direct child of group %s", groupID, parentID),
		}
	}

	before := net.Clone()

	copied, _, err := copyGroupInto(net, groupID, parentID, freshName(net, parentID, group.Name))
	if err != nil {
		return nil, nil, err
	}

	return copied, Diff(before, net), nil
}

func copyContactInto(net *network.Network, contactID, destGroupID network.ID) (network.ID, error) {
	original, err := net.Contact(contactID)
	if err != nil {
		return "", err
	}
	spawned, err := net.SpawnContact(destGroupID, freshName(net, destGroupID, original.Name), original.Blend, nil)
	if err != nil {
		return "", err
	}
	if value, held := original.Read(); held {
		// Copy the stored value verbatim rather than re-merging it.
		spawned.HasValue = true
		spawned.Value = value.Clone()
	}
	if original.LastContradiction != nil {
		lc := original.LastContradiction.Clone()
		spawned.LastContradiction = &lc
	}
	return spawned.ID, nil
}

// copyGroupInto recursively duplicates a group subtree, returning the copy
// and the contact id mapping for the whole subtree.
func copyGroupInto(net *network.Network, groupID, destParentID network.ID, name string) (*network.Group, map[network.ID]network.ID, error) {
	original, err := net.Group(groupID)
	if err != nil {
		return nil, nil, err
	}

	var copied *network.Group
	idMap := make(map[network.ID]network.ID)

	if original.IsGadget() {
		copied, err = net.SpawnGadget(destParentID, name, original.GadgetKind)
		if err != nil {
			return nil, nil, err
		}
		// Port contacts were created by the spawn; map originals onto
		// them and carry values over.
		for i, port := range original.Inputs {
			idMap[port.ContactID] = copied.Inputs[i].ContactID
		}
		for i, port := range original.Outputs {
			idMap[port.ContactID] = copied.Outputs[i].ContactID
		}
		for _, port := range append(append([]network.Port(nil), original.Inputs...), original.Outputs...) {
			if err := carryValue(net, port.ContactID, idMap[port.ContactID]); err != nil {
				return nil, nil, err
			}
		}
	} else {
		copied, err = net.SpawnGroup(destParentID, name)
		if err != nil {
			return nil, nil, err
		}
		for _, contactID := range append([]network.ID(nil), original.Contacts...) {
			originalContact, err := net.Contact(contactID)
			if err != nil {
				return nil, nil, err
			}
			newID, err := copyContactInto(net, contactID, copied.ID)
			if err != nil {
				return nil, nil, err
			}
			if err := net.SetBoundary(newID, originalContact.IsBoundary); err != nil {
				return nil, nil, err
			}
			idMap[contactID] = newID
		}
	}

	for _, subID := range append([]network.ID(nil), original.Subgroups...) {
		sub, err := net.Group(subID)
		if err != nil {
			return nil, nil, err
		}
		_, subMap, err := copyGroupInto(net, subID, copied.ID, sub.Name)
		if err != nil {
			return nil, nil, err
		}
		for oldID, newID := range subMap {
			idMap[oldID] = newID
		}
	}

	for _, wireID := range append([]network.ID(nil), original.Wires...) {
		wire, err := net.Wire(wireID)
		if err != nil {
			return nil, nil, err
		}
		newFrom, okFrom := idMap[wire.From]
		newTo, okTo := idMap[wire.To]
		if !okFrom || !okTo {
			// Endpoint outside the copied subtree: external wire,
			// never copied.
			continue
		}
		if _, err := net.SpawnWire(newFrom, newTo); err != nil {
			return nil, nil, err
		}
	}

	return copied, idMap, nil
}

func carryValue(net *network.Network, fromID, toID network.ID) error {
	original, err := net.Contact(fromID)
	if err != nil {
		return err
	}
	target, err := net.Contact(toID)
	if err != nil {
		return err
	}
	if value, held := original.Read(); held {
		target.HasValue = true
		target.Value = value.Clone()
	}
	if original.LastContradiction != nil {
		lc := original.LastContradiction.Clone()
		target.LastContradiction = &lc
	}
	return nil
}

// freshName returns name, or name_2, name_3, ... until it is unused in the
// destination group.
func freshName(net *network.Network, groupID network.ID, name string) string {
	if !nameUsed(net, groupID, name) {
		return name
	}
	for i := 2; ; i++ {
		candidate := name + "_" + strconv.Itoa(i)
		if !nameUsed(net, groupID, candidate) {
			return candidate
		}
	}
}

func nameUsed(net *network.Network, groupID network.ID, name string) bool {
	group, err := net.Group(groupID)
	if err != nil {
		return false
	}
	for _, id := range group.Contacts {
		if contact, err := net.Contact(id); err == nil && contact.Name == name {
			return true
		}
	}
	for _, id := range group.Subgroups {
		if sub, err := net.Group(id); err == nil && sub.Name == name {
			return true
		}
	}
	return false
}
