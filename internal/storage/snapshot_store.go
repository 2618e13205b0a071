// Package storage persists network snapshots as JSON files, optionally
// sealed under a passphrase. It is the only persistence the core consumes;
// richer drivers live behind the same load/save surface elsewhere.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"propnet/go-core/internal/network"
	"propnet/go-core/internal/securestore"
)

// ErrNoSnapshot signals a first boot: nothing persisted yet.
var ErrNoSnapshot = errors.New("no snapshot on disk")

// SnapshotStore reads and writes one snapshot file. An empty passphrase
// means plaintext JSON; otherwise the file is sealed.
type SnapshotStore struct {
	path       string
	passphrase string
}

func NewSnapshotStore(path, passphrase string) *SnapshotStore {
	return &SnapshotStore{path: path, passphrase: passphrase}
}

func (s *SnapshotStore) Path() string {
	return s.path
}

// Save writes the snapshot, creating parent directories as needed. The file
// is written via a temporary sibling and renamed so a crash cannot leave a
// half-written snapshot behind.
func (s *SnapshotStore) Save(snap *network.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if s.passphrase != "" {
		payload, err = securestore.Seal(s.passphrase, payload)
		if err != nil {
			return fmt.Errorf("seal snapshot: %w", err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Load reads and validates the snapshot. A missing file is ErrNoSnapshot; a
// sealed file read without a passphrase, or a tampered seal, fails loudly.
func (s *SnapshotStore) Load() (*network.Snapshot, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoSnapshot
		}
		return nil, err
	}
	if securestore.IsSealed(raw) {
		if s.passphrase == "" {
			return nil, fmt.Errorf("snapshot %s is sealed but no passphrase is configured", s.path)
		}
		raw, err = securestore.Open(s.passphrase, raw)
		if err != nil {
			return nil, fmt.Errorf("open sealed snapshot: %w", err)
		}
	}
	var snap network.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}
