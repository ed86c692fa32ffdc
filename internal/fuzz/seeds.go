package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB cap for corpus entries
	maxFuzzInput = 1 << 16
)

// typeExprSeeds cover every suffix form and the generic argument syntax.
var typeExprSeeds = []string{
	"int", "int?", "int*", "int[]", "int[,,]", "void*", "*",
	"object", "dynamic", "string[][]", "Dog", "Dog[]", "Animal[,]",
	"List<Dog>", "IEnumerable<Animal>", "List<List<int?>[]>",
	"IComparer<Dog>", "Color?", "Money?", "System.Object",
	"List<", "List<>", "<int>", "int??", "int[", "[]", "Dog<int>",
}

// addManifestSeeds adds every manifest under testdata/universes with the
// given extension.
func addManifestSeeds(f *testing.F, ext string) {
	root := filepath.Join("..", "..", "testdata", "universes")
	if _, err := os.Stat(root); err != nil {
		return
	}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || filepath.Ext(path) != ext {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
	if err != nil {
		return
	}
	f.Add([]byte{})
	f.Add([]byte("[[types]]\nname = \"A\"\nkind = \"class\"\nbase = \"A\"\n"))
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return append([]byte(nil), input[:maxFuzzInput]...)
	}
	return append([]byte(nil), input...)
}
