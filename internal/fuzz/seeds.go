package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"typematch/internal/scenario"
)

const (
	maxFuzzInput = 1 << 16 // 64 KiB
	maxSeedBytes = 64 << 10
)

var notationSeeds = []string{
	"int",
	"List[T]",
	"List[List[int]]",
	"Union[int, str, None]",
	"Optional[List[T]]",
	"Type[int]",
	"Callable[[int, T], List[T]]",
	"Callable[..., Any]",
	"def(int, str=, *) -> T",
	"bound def(T) -> None",
	"unbound def() -> nothing",
	"int | List[str]",
	"List[",
	"Callable[[int], ]",
	"def(*, int)",
	"T[int]",
	"café",
	"\xff",
}

// fileSeeds returns the scenario files under the loader's testdata, keyed by
// format.
func fileSeeds(f *testing.F) map[scenario.Format][][]byte {
	f.Helper()
	out := make(map[scenario.Format][][]byte)
	root := filepath.Join("..", "scenario", "testdata")
	if _, err := os.Stat(root); err != nil {
		return out
	}
	// проходим по testdata и собираем все сценарии
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() {
			return nil
		}
		format, err := scenario.FormatOf(path)
		if err != nil {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil || len(src) > maxSeedBytes {
			return nil
		}
		out[format] = append(out[format], src)
		return nil
	})
	return out
}

func clip(input []byte) []byte {
	if len(input) > maxFuzzInput {
		input = input[:maxFuzzInput]
	}
	return append([]byte(nil), input...)
}
