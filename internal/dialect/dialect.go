package dialect

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Kind selects which conversion rules are active for a compilation unit.
type Kind uint8

const (
	// Standard is the plain C#-like language.
	Standard Kind = iota
	// Extended is the PlayScript dialect: loose numeric narrowing, truth
	// testing, implicit string coercion and dynamic/untyped erasure.
	Extended
)

func (k Kind) String() string {
	switch k {
	case Standard:
		return "standard"
	case Extended:
		return "extended"
	default:
		return "unknown"
	}
}

func (k Kind) GoString() string {
	return fmt.Sprintf("dialect.Kind(%s)", k.String())
}

// IsExtended reports whether dialect-only conversions apply.
func (k Kind) IsExtended() bool { return k == Extended }

// Parse accepts the dialect names used by the CLI and fixtures.
func Parse(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "standard", "cs", "csharp":
		return Standard, nil
	case "extended", "playscript", "play", "as", "actionscript":
		return Extended, nil
	}
	return Standard, fmt.Errorf("unknown dialect %q (expected: standard|extended)", name)
}

// ForPath picks the dialect from a source file extension. PlayScript
// sources use .play, ActionScript-compatible sources use .as.
func ForPath(path string) Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".play", ".as":
		return Extended
	}
	return Standard
}
