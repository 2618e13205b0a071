package network

// Wire is a directed value-forwarding link. GroupID is the scope the
// connection is legal in: the shared group for same-group wires, the parent
// for child-boundary connections, the common parent for sibling boundaries.
type Wire struct {
	ID      ID    `json:"id"`
	Seq     int64 `json:"seq"`
	GroupID ID    `json:"group_id"`
	From    ID    `json:"from"`
	To      ID    `json:"to"`
}

func (w *Wire) clone() *Wire {
	out := *w
	return &out
}

// wireScope decides whether two contacts may be wired and, if so, which
// group owns the wire. The legal pairings are:
//   - both contacts in the same group;
//   - a subgroup's boundary contact and a direct contact of its parent;
//   - boundary contacts of two sibling subgroups.
func (n *Network) wireScope(from, to *Contact) (ID, *ConnectionError) {
	if from.ID == to.ID {
		return "", &ConnectionError{From: from.ID, To: to.ID, Reason: "a contact cannot be wired to itself"}
	}
	if from.GroupID == to.GroupID {
		return from.GroupID, nil
	}

	fromGroup := n.groups[from.GroupID]
	toGroup := n.groups[to.GroupID]

	// Child boundary <-> parent direct.
	if from.IsBoundary && fromGroup.ParentID == to.GroupID {
		return to.GroupID, nil
	}
	if to.IsBoundary && toGroup.ParentID == from.GroupID {
		return from.GroupID, nil
	}

	// Sibling boundary <-> sibling boundary, same parent.
	if from.IsBoundary && to.IsBoundary && fromGroup.ParentID == toGroup.ParentID && fromGroup.ParentID != "" {
		return fromGroup.ParentID, nil
	}

	return "", &ConnectionError{
		From:   from.ID,
		To:     to.ID,
		Reason: "contacts are in unrelated groups; only same-group, parent/child-boundary, and sibling-boundary wires are legal",
	}
}
