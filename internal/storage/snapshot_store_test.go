package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"propnet/go-core/internal/lattice"
	"propnet/go-core/internal/network"
)

func buildNetwork(t *testing.T) *network.Network {
	t.Helper()
	n := network.New(network.SequentialIDs())
	initial := lattice.Number(7)
	if _, err := n.SpawnContact(n.RootID, "a", lattice.BlendMerge, &initial); err != nil {
		t.Fatalf("spawn: %v", err)
	}
	if _, err := n.SpawnGadget(n.RootID, "adder", "add"); err != nil {
		t.Fatalf("gadget: %v", err)
	}
	return n
}

func TestSaveLoadPlaintext(t *testing.T) {
	store := NewSnapshotStore(filepath.Join(t.TempDir(), "data", "net.snapshot"), "")
	n := buildNetwork(t)

	if err := store.Save(n.Snapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}
	snap, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	rebuilt, err := network.FromSnapshot(snap, nil)
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if len(rebuilt.Contacts()) != len(n.Contacts()) || len(rebuilt.Groups()) != len(n.Groups()) {
		t.Fatalf("round trip changed entity counts")
	}
}

func TestLoadMissingFile(t *testing.T) {
	store := NewSnapshotStore(filepath.Join(t.TempDir(), "absent.snapshot"), "")
	if _, err := store.Load(); !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("expected ErrNoSnapshot, got %v", err)
	}
}

func TestSealedSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "net.snapshot")
	store := NewSnapshotStore(path, "hunter2")
	n := buildNetwork(t)

	if err := store.Save(n.Snapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if strings.Contains(string(raw), "root_id") {
		t.Fatalf("sealed snapshot must not leak plaintext")
	}

	if _, err := store.Load(); err != nil {
		t.Fatalf("load with passphrase: %v", err)
	}

	// Without the passphrase the file is unreadable, not silently empty.
	if _, err := NewSnapshotStore(path, "").Load(); err == nil {
		t.Fatalf("sealed file without passphrase must fail")
	}
	if _, err := NewSnapshotStore(path, "wrong").Load(); err == nil {
		t.Fatalf("wrong passphrase must fail")
	}
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	store := NewSnapshotStore(filepath.Join(dir, "net.snapshot"), "")
	if err := store.Save(buildNetwork(t).Snapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "net.snapshot" {
		t.Fatalf("only the snapshot file may remain, got %v", entries)
	}
}
