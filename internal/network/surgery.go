package network

import "fmt"

// Structural edit primitives used by the refactoring engine. They move or
// retarget entities without re-checking boundary legality: the refactoring
// operations validate the whole edit up front and these helpers apply it.

// MoveContact transfers ownership of a contact to another group.
func (n *Network) MoveContact(contactID, toGroupID ID) error {
	contact, err := n.Contact(contactID)
	if err != nil {
		return err
	}
	dest, err := n.Group(toGroupID)
	if err != nil {
		return err
	}
	src := n.groups[contact.GroupID]
	src.Contacts = removeID(src.Contacts, contactID)
	dest.Contacts = append(dest.Contacts, contactID)
	contact.GroupID = toGroupID
	return nil
}

// MoveWire transfers a wire to another owning scope.
func (n *Network) MoveWire(wireID, toGroupID ID) error {
	wire, err := n.Wire(wireID)
	if err != nil {
		return err
	}
	dest, err := n.Group(toGroupID)
	if err != nil {
		return err
	}
	src := n.groups[wire.GroupID]
	src.Wires = removeID(src.Wires, wireID)
	dest.Wires = append(dest.Wires, wireID)
	wire.GroupID = toGroupID
	return nil
}

// MoveGroup reparents a subgroup.
func (n *Network) MoveGroup(groupID, toParentID ID) error {
	group, err := n.Group(groupID)
	if err != nil {
		return err
	}
	if groupID == n.RootID {
		return ErrRootGroup
	}
	dest, err := n.Group(toParentID)
	if err != nil {
		return err
	}
	src := n.groups[group.ParentID]
	src.Subgroups = removeID(src.Subgroups, groupID)
	dest.Subgroups = append(dest.Subgroups, groupID)
	group.ParentID = toParentID
	return nil
}

// RetargetWire rewrites a wire's endpoints and owning scope in place,
// preserving its id so a re-route reads as an update, not a delete/create
// pair.
func (n *Network) RetargetWire(wireID, newFrom, newTo, newScope ID) error {
	wire, err := n.Wire(wireID)
	if err != nil {
		return err
	}
	if _, err := n.Contact(newFrom); err != nil {
		return err
	}
	if _, err := n.Contact(newTo); err != nil {
		return err
	}
	if wire.GroupID != newScope {
		if err := n.MoveWire(wireID, newScope); err != nil {
			return err
		}
	}
	wire.From = newFrom
	wire.To = newTo
	return nil
}

// SetBoundary flips a contact's boundary visibility.
func (n *Network) SetBoundary(contactID ID, boundary bool) error {
	contact, err := n.Contact(contactID)
	if err != nil {
		return err
	}
	contact.IsBoundary = boundary
	return nil
}

// BoundaryContacts lists the group's boundary contacts in creation order.
func (n *Network) BoundaryContacts(groupID ID) ([]*Contact, error) {
	group, err := n.Group(groupID)
	if err != nil {
		return nil, err
	}
	var out []*Contact
	for _, id := range group.Contacts {
		contact, ok := n.contacts[id]
		if !ok {
			panic(fmt.Sprintf("network: group %s lists dangling contact %s", groupID, id))
		}
		if contact.IsBoundary {
			out = append(out, contact)
		}
	}
	return out, nil
}
