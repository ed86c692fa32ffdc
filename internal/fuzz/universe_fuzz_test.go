package fuzztests

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"castor/internal/diag"
	"castor/internal/source"
	"castor/internal/universe"
)

func loadZoo(tb testing.TB) *universe.Universe {
	tb.Helper()
	m, err := universe.Load(filepath.Join("..", "..", "testdata", "universes", "zoo.toml"))
	if err != nil {
		tb.Fatalf("load zoo: %v", err)
	}
	u, err := universe.Build(m, 1, diag.NopReporter{})
	if err != nil {
		tb.Fatalf("build zoo: %v", err)
	}
	return u
}

// FuzzBuildTOML feeds arbitrary TOML through decoding, validation and
// declaration. Any outcome but a panic is acceptable; a successful build
// must resolve each of its own names.
func FuzzBuildTOML(f *testing.F) {
	addManifestSeeds(f, ".toml")
	f.Fuzz(func(t *testing.T, input []byte) {
		m, err := universe.ParseTOML(string(clampInput(input)))
		if err != nil {
			return
		}
		bag := diag.NewBag(64)
		u, err := universe.Build(m, source.FileID(1), diag.BagReporter{Bag: bag})
		if err != nil {
			if errors.Is(err, universe.ErrInvalidUniverse) && !bag.HasErrors() {
				t.Fatalf("invalid universe without diagnostics")
			}
			return
		}
		for _, name := range u.Names() {
			if _, ok := u.Lookup(name); !ok {
				t.Fatalf("declared name %q does not resolve", name)
			}
		}
	})
}

// FuzzBuildYAML is FuzzBuildTOML for the YAML front end.
func FuzzBuildYAML(f *testing.F) {
	addManifestSeeds(f, ".yaml")
	f.Fuzz(func(t *testing.T, input []byte) {
		m, err := universe.ParseYAML(clampInput(input), "fuzz.yaml")
		if err != nil {
			return
		}
		_, _ = universe.Build(m, source.FileID(1), diag.NopReporter{})
	})
}

// FuzzResolveTypeExpr checks that type expressions never panic and that a
// resolvable label of a resolved type names that same type.
func FuzzResolveTypeExpr(f *testing.F) {
	for _, s := range typeExprSeeds {
		f.Add(s)
	}
	u := loadZoo(f)
	f.Fuzz(func(t *testing.T, expr string) {
		if len(expr) > 256 {
			expr = expr[:256]
		}
		id, err := u.Resolve(expr)
		if err != nil {
			return
		}
		label := u.Types.Label(id)
		if strings.Contains(label, "...") {
			return
		}
		again, err := u.Resolve(label)
		if err != nil {
			return
		}
		if again != id {
			t.Fatalf("%q resolved to %s, its label %q to %s", expr, label, label, u.Types.Label(again))
		}
	})
}
