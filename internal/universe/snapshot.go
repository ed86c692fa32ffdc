package universe

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

// snapshotSchemaVersion changes whenever the Manifest encoding does.
const snapshotSchemaVersion uint16 = 1

// ErrSnapshotVersion marks a snapshot written by an incompatible schema.
var ErrSnapshotVersion = errors.New("unsupported snapshot schema version")

type snapshot struct {
	Schema   uint16    `msgpack:"schema"`
	Manifest *Manifest `msgpack:"manifest"`
}

// MarshalSnapshot encodes m with the current schema version.
func MarshalSnapshot(m *Manifest) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := enc.Encode(&snapshot{Schema: snapshotSchemaVersion, Manifest: m}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalSnapshot decodes a snapshot and rejects other schema versions.
func UnmarshalSnapshot(data []byte) (*Manifest, error) {
	var s snapshot
	if err := msgpack.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if s.Schema != snapshotSchemaVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSnapshotVersion, s.Schema, snapshotSchemaVersion)
	}
	if s.Manifest == nil {
		return nil, ErrNoTypes
	}
	return s.Manifest, nil
}

// WriteSnapshot stores m at path, replacing any previous file atomically.
func WriteSnapshot(path string, m *Manifest) (err error) {
	data, err := MarshalSnapshot(m)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		// After a successful rename the temp name is gone.
		if rmErr := os.Remove(tmp); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			err = errors.Join(err, rmErr)
		}
	}()
	if _, err = f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	err = os.Rename(tmp, path)
	return err
}

// ReadSnapshot loads a manifest written by WriteSnapshot.
func ReadSnapshot(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := UnmarshalSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}
