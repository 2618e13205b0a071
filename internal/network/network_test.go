package network

import (
	"errors"
	"testing"

	"propnet/go-core/internal/lattice"
)

func newTestNetwork(t *testing.T) *Network {
	t.Helper()
	return New(SequentialIDs())
}

func mustContact(t *testing.T, n *Network, groupID ID, name string, blend lattice.BlendMode) *Contact {
	t.Helper()
	c, err := n.SpawnContact(groupID, name, blend, nil)
	if err != nil {
		t.Fatalf("spawn contact %q: %v", name, err)
	}
	return c
}

func TestSpawnContactRejectsDuplicateNames(t *testing.T) {
	n := newTestNetwork(t)
	mustContact(t, n, n.RootID, "a", lattice.BlendMerge)
	if _, err := n.SpawnContact(n.RootID, "a", lattice.BlendMerge, nil); !errors.Is(err, ErrNameTaken) {
		t.Fatalf("expected ErrNameTaken, got %v", err)
	}
	if _, err := n.SpawnGroup(n.RootID, "a"); !errors.Is(err, ErrNameTaken) {
		t.Fatalf("group sharing a contact name must be rejected, got %v", err)
	}
}

func TestSpawnContactDeliversInitialValue(t *testing.T) {
	n := newTestNetwork(t)
	initial := lattice.Number(5)
	c, err := n.SpawnContact(n.RootID, "a", lattice.BlendMerge, &initial)
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	got, ok := c.Read()
	if !ok || !lattice.Equal(got, initial) {
		t.Fatalf("initial value not delivered, got %s ok=%v", got, ok)
	}
}

func TestSameGroupWireIsLegal(t *testing.T) {
	n := newTestNetwork(t)
	a := mustContact(t, n, n.RootID, "a", lattice.BlendMerge)
	b := mustContact(t, n, n.RootID, "b", lattice.BlendMerge)
	w, err := n.SpawnWire(a.ID, b.ID)
	if err != nil {
		t.Fatalf("same-group wire: %v", err)
	}
	if w.GroupID != n.RootID {
		t.Fatalf("wire scope must be the shared group, got %s", w.GroupID)
	}
}

func TestSelfWireIsRejected(t *testing.T) {
	n := newTestNetwork(t)
	a := mustContact(t, n, n.RootID, "a", lattice.BlendMerge)
	_, err := n.SpawnWire(a.ID, a.ID)
	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("expected ConnectionError, got %v", err)
	}
}

func TestCrossGroupWireRequiresBoundary(t *testing.T) {
	n := newTestNetwork(t)
	sub, err := n.SpawnGroup(n.RootID, "sub")
	if err != nil {
		t.Fatalf("spawn group: %v", err)
	}
	inner := mustContact(t, n, sub.ID, "inner", lattice.BlendMerge)
	outer := mustContact(t, n, n.RootID, "outer", lattice.BlendMerge)

	wireCount := len(n.Wires())
	_, err = n.SpawnWire(outer.ID, inner.ID)
	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("non-boundary inner contact must be unreachable, got %v", err)
	}
	if len(n.Wires()) != wireCount {
		t.Fatalf("failed wiring must not leave state behind")
	}

	inner.IsBoundary = true
	if _, err := n.SpawnWire(outer.ID, inner.ID); err != nil {
		t.Fatalf("boundary wiring must succeed: %v", err)
	}
}

func TestSiblingBoundaryWire(t *testing.T) {
	n := newTestNetwork(t)
	left, _ := n.SpawnGroup(n.RootID, "left")
	right, _ := n.SpawnGroup(n.RootID, "right")
	a := mustContact(t, n, left.ID, "out", lattice.BlendMerge)
	b := mustContact(t, n, right.ID, "in", lattice.BlendMerge)
	a.IsBoundary = true
	b.IsBoundary = true

	w, err := n.SpawnWire(a.ID, b.ID)
	if err != nil {
		t.Fatalf("sibling boundary wire: %v", err)
	}
	if w.GroupID != n.RootID {
		t.Fatalf("sibling wire must be owned by the common parent, got %s", w.GroupID)
	}
}

func TestUnrelatedGroupsCannotBeWired(t *testing.T) {
	n := newTestNetwork(t)
	sub, _ := n.SpawnGroup(n.RootID, "sub")
	subsub, _ := n.SpawnGroup(sub.ID, "subsub")
	deep := mustContact(t, n, subsub.ID, "deep", lattice.BlendMerge)
	deep.IsBoundary = true
	top := mustContact(t, n, n.RootID, "top", lattice.BlendMerge)

	_, err := n.SpawnWire(top.ID, deep.ID)
	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("grandparent wiring must be rejected, got %v", err)
	}
}

func TestWiringIntoGadgetOutputIsRejected(t *testing.T) {
	n := newTestNetwork(t)
	adder, err := n.SpawnGadget(n.RootID, "adder", "add")
	if err != nil {
		t.Fatalf("spawn gadget: %v", err)
	}
	src := mustContact(t, n, n.RootID, "src", lattice.BlendMerge)

	out := adder.Outputs[0].ContactID
	_, err = n.SpawnWire(src.ID, out)
	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("expected ConnectionError for gadget output, got %v", err)
	}

	// Reading from the output port is fine.
	dst := mustContact(t, n, n.RootID, "dst", lattice.BlendMerge)
	if _, err := n.SpawnWire(out, dst.ID); err != nil {
		t.Fatalf("wire from gadget output: %v", err)
	}
	// Writing into an input port is fine too.
	if _, err := n.SpawnWire(src.ID, adder.Inputs[0].ContactID); err != nil {
		t.Fatalf("wire into gadget input: %v", err)
	}
}

func TestSpawnGadgetUnknownKind(t *testing.T) {
	n := newTestNetwork(t)
	if _, err := n.SpawnGadget(n.RootID, "g", "transmogrify"); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestDeleteContactRemovesTouchingWires(t *testing.T) {
	n := newTestNetwork(t)
	a := mustContact(t, n, n.RootID, "a", lattice.BlendMerge)
	b := mustContact(t, n, n.RootID, "b", lattice.BlendMerge)
	c := mustContact(t, n, n.RootID, "c", lattice.BlendMerge)
	if _, err := n.SpawnWire(a.ID, b.ID); err != nil {
		t.Fatalf("wire: %v", err)
	}
	if _, err := n.SpawnWire(b.ID, c.ID); err != nil {
		t.Fatalf("wire: %v", err)
	}

	if err := n.DeleteContact(b.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(n.Wires()) != 0 {
		t.Fatalf("wires touching a deleted contact must go with it, %d left", len(n.Wires()))
	}
	if _, err := n.Contact(b.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted contact still resolvable: %v", err)
	}
}

func TestDeleteGadgetPortContactRejected(t *testing.T) {
	n := newTestNetwork(t)
	adder, err := n.SpawnGadget(n.RootID, "adder", "add")
	if err != nil {
		t.Fatalf("spawn gadget: %v", err)
	}

	var vErr *ValidationError
	if err := n.DeleteContact(adder.Inputs[0].ContactID); !errors.As(err, &vErr) {
		t.Fatalf("expected validation error for a port contact, got %v", err)
	}
	if _, err := n.Contact(adder.Inputs[0].ContactID); err != nil {
		t.Fatalf("rejected delete must not touch the port: %v", err)
	}

	// The port goes away with the gadget itself.
	if err := n.DeleteGroup(adder.ID); err != nil {
		t.Fatalf("delete gadget: %v", err)
	}
	if len(n.Contacts()) != 0 {
		t.Fatalf("deleting the gadget left %d contacts", len(n.Contacts()))
	}
}

func TestDeleteGroupIsRecursive(t *testing.T) {
	n := newTestNetwork(t)
	sub, _ := n.SpawnGroup(n.RootID, "sub")
	if _, err := n.SpawnGadget(sub.ID, "adder", "add"); err != nil {
		t.Fatalf("spawn gadget: %v", err)
	}
	mustContact(t, n, sub.ID, "inner", lattice.BlendMerge)

	if err := n.DeleteGroup(sub.ID); err != nil {
		t.Fatalf("delete group: %v", err)
	}
	if len(n.Contacts()) != 0 {
		t.Fatalf("recursive delete left %d contacts", len(n.Contacts()))
	}
	if len(n.Groups()) != 1 {
		t.Fatalf("only the root must survive, %d groups left", len(n.Groups()))
	}
}

func TestRootGroupCannotBeDeleted(t *testing.T) {
	n := newTestNetwork(t)
	if err := n.DeleteGroup(n.RootID); !errors.Is(err, ErrRootGroup) {
		t.Fatalf("expected ErrRootGroup, got %v", err)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	n := newTestNetwork(t)
	a := mustContact(t, n, n.RootID, "a", lattice.BlendMerge)
	a.Receive(lattice.Number(1))

	snapshot := n.Clone()
	a.Receive(lattice.Number(2))

	cloned, err := snapshot.Contact(a.ID)
	if err != nil {
		t.Fatalf("clone lost contact: %v", err)
	}
	got, _ := cloned.Read()
	if !lattice.Equal(got, lattice.Number(1)) {
		t.Fatalf("clone observed a later mutation: %s", got)
	}

	n.Restore(snapshot)
	restored, _ := n.Contact(a.ID)
	got, _ = restored.Read()
	if !lattice.Equal(got, lattice.Number(1)) {
		t.Fatalf("restore did not roll back, got %s", got)
	}
}

func TestContactReceiveIdempotence(t *testing.T) {
	n := newTestNetwork(t)
	a := mustContact(t, n, n.RootID, "a", lattice.BlendMerge)
	if changed := a.Receive(lattice.Number(3)); !changed {
		t.Fatalf("first write must report a change")
	}
	if changed := a.Receive(lattice.Number(3)); changed {
		t.Fatalf("re-delivering the held value must be a no-op")
	}
}

func TestContactRecordsLastContradiction(t *testing.T) {
	n := newTestNetwork(t)
	a := mustContact(t, n, n.RootID, "a", lattice.BlendMerge)
	a.Receive(lattice.Number(1))
	a.Receive(lattice.Number(2))
	if a.LastContradiction == nil {
		t.Fatalf("contradictory merge must be recorded")
	}
	if !a.Value.IsContradiction() {
		t.Fatalf("contact must hold the contradiction, got %s", a.Value)
	}
	// A re-delivered identical contradiction is not a change.
	if changed := a.Receive(lattice.Number(2)); changed {
		t.Fatalf("absorbed contradiction must not report a change")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	n := newTestNetwork(t)
	sub, _ := n.SpawnGroup(n.RootID, "sub")
	inner := mustContact(t, n, sub.ID, "inner", lattice.BlendMerge)
	inner.IsBoundary = true
	outer := mustContact(t, n, n.RootID, "outer", lattice.BlendAcceptLast)
	outer.Receive(lattice.NewInterval(1, 2))
	if _, err := n.SpawnWire(outer.ID, inner.ID); err != nil {
		t.Fatalf("wire: %v", err)
	}
	if _, err := n.SpawnGadget(n.RootID, "adder", "add"); err != nil {
		t.Fatalf("gadget: %v", err)
	}

	rebuilt, err := FromSnapshot(n.Snapshot(), SequentialIDs())
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if len(rebuilt.Contacts()) != len(n.Contacts()) ||
		len(rebuilt.Wires()) != len(n.Wires()) ||
		len(rebuilt.Groups()) != len(n.Groups()) {
		t.Fatalf("snapshot round trip changed entity counts")
	}
	restored, err := rebuilt.Contact(outer.ID)
	if err != nil {
		t.Fatalf("contact lost: %v", err)
	}
	got, ok := restored.Read()
	if !ok || !lattice.Equal(got, lattice.NewInterval(1, 2)) {
		t.Fatalf("value lost in round trip: %s ok=%v", got, ok)
	}
}

func TestFromSnapshotRejectsDanglingWire(t *testing.T) {
	n := newTestNetwork(t)
	a := mustContact(t, n, n.RootID, "a", lattice.BlendMerge)
	b := mustContact(t, n, n.RootID, "b", lattice.BlendMerge)
	if _, err := n.SpawnWire(a.ID, b.ID); err != nil {
		t.Fatalf("wire: %v", err)
	}
	snap := n.Snapshot()
	snap.Wires[0].To = "ct_missing"
	if _, err := FromSnapshot(snap, nil); err == nil {
		t.Fatalf("dangling wire endpoint must be rejected")
	}
}

func TestFromSnapshotRejectsOrphanGroup(t *testing.T) {
	n := newTestNetwork(t)
	sub, _ := n.SpawnGroup(n.RootID, "sub")
	snap := n.Snapshot()
	for _, g := range snap.Groups {
		if g.ID == sub.ID {
			g.ParentID = "grp_missing"
		}
	}
	if _, err := FromSnapshot(snap, nil); err == nil {
		t.Fatalf("orphaned group must be rejected")
	}
}
