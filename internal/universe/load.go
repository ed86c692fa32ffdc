package universe

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ErrNoTypes is returned for a manifest that declares nothing.
var ErrNoTypes = errors.New("universe declares no types or type parameters")

// Load reads a manifest, choosing the format from the file extension:
// .toml, .yaml/.yml or a msgpack snapshot (.msgpack/.mp).
func Load(path string) (*Manifest, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return LoadTOML(path)
	case ".yaml", ".yml":
		return LoadYAML(path)
	case ".msgpack", ".mp":
		return ReadSnapshot(path)
	}
	return nil, fmt.Errorf("%s: unsupported universe format (expected .toml, .yaml or .msgpack)", path)
}

// LoadTOML parses a TOML manifest file.
func LoadTOML(path string) (*Manifest, error) {
	var m Manifest
	meta, err := toml.DecodeFile(path, &m)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if err := checkTOML(meta); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &m, nil
}

// ParseTOML parses a TOML manifest held in memory.
func ParseTOML(data string) (*Manifest, error) {
	var m Manifest
	meta, err := toml.Decode(data, &m)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if err := checkTOML(meta); err != nil {
		return nil, err
	}
	return &m, nil
}

func checkTOML(meta toml.MetaData) error {
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	if !meta.IsDefined("types") && !meta.IsDefined("params") {
		return ErrNoTypes
	}
	return nil
}

// LoadYAML parses a YAML manifest file.
func LoadYAML(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading universe %s: %w", path, err)
	}
	return ParseYAML(data, path)
}

// ParseYAML parses YAML manifest content. path is only used in errors.
func ParseYAML(data []byte, path string) (*Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var m Manifest
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: %w", path, ErrNoTypes)
		}
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(m.Types) == 0 && len(m.Params) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoTypes)
	}
	return &m, nil
}
