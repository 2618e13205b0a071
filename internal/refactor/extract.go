package refactor

import (
	"fmt"

	"propnet/go-core/internal/lattice"
	"propnet/go-core/internal/network"
)

// Extract moves the named contacts out of parentID into a new subgroup and
// re-routes every connection crossing the new boundary through a fresh
// boundary contact, so each external link becomes exactly a two-hop path.
// External wires keep their ids (endpoint updated in place); no connection
// is lost or duplicated. Validation happens entirely before any mutation.
func Extract(net *network.Network, parentID network.ID, contactIDs []network.ID, name string) (*network.Group, []Change, error) {
	if _, err := net.Group(parentID); err != nil {
		return nil, nil, err
	}
	if len(contactIDs) == 0 {
		return nil, nil, &network.ValidationError{Msg: "extract requires at least one contact"}
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
		if contact.IsBoundary {
			return nil, nil, &network.ValidationError{
				Msg: fmt.Sprintf("contact %s is a boundary contact and cannot be extracted", id),
			}
		}
		if selection[id] {
			return nil, nil, &network.ValidationError{Msg: fmt.Sprintf("contact %s selected twice", id)}
		}
		selection[id] = true
	}

	before := net.Clone()

	group, err := net.SpawnGroup(parentID, name)
	if err != nil {
		return nil, nil, err
	}
	for _, id := range contactIDs {
		if err := net.MoveContact(id, group.ID); err != nil {
			return nil, nil, err
		}
	}

	classified := ClassifyWires(net.Wires(), selection)

	for _, wire := range classified.Internal {
		if err := net.MoveWire(wire.ID, group.ID); err != nil {
			return nil, nil, err
		}
	}

	// One boundary contact per (moved contact, direction); parallel
	// external wires into the same moved contact share it.
	inbound := make(map[network.ID]network.ID)
	outbound := make(map[network.ID]network.ID)

	for _, wire := range classified.Incoming {
		boundaryID, err := boundaryFor(net, group, wire.To, "in", inbound)
		if err != nil {
			return nil, nil, err
		}
		if err := net.RetargetWire(wire.ID, wire.From, boundaryID, parentID); err != nil {
			return nil, nil, err
		}
	}
	for _, wire := range classified.Outgoing {
		boundaryID, err := boundaryFor(net, group, wire.From, "out", outbound)
		if err != nil {
			return nil, nil, err
		}
		if err := net.RetargetWire(wire.ID, boundaryID, wire.To, parentID); err != nil {
			return nil, nil, err
		}
	}

	return group, Diff(before, net), nil
}

// boundaryFor returns the boundary contact mediating a moved contact in one
// direction, creating it and its internal hop on first use.
func boundaryFor(net *network.Network, group *network.Group, movedID network.ID, direction string, cache map[network.ID]network.ID) (network.ID, error) {
	if boundaryID, ok := cache[movedID]; ok {
		return boundaryID, nil
	}
	moved, err := net.Contact(movedID)
	if err != nil {
		return "", err
	}
	boundary, err := net.SpawnContact(group.ID, direction+"_"+moved.Name, lattice.BlendAcceptLast, nil)
	if err != nil {
		return "", err
	}
	if err := net.SetBoundary(boundary.ID, true); err != nil {
		return "", err
	}
	if direction == "in" {
		_, err = net.SpawnWire(boundary.ID, movedID)
	} else {
		_, err = net.SpawnWire(movedID, boundary.ID)
	}
	if err != nil {
		return "", err
	}
	cache[movedID] = boundary.ID
	return boundary.ID, nil
}
