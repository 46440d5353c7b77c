package fuzztests

import (
	"context"
	"testing"
	"time"

	"typematch/internal/scenario"
)

// runTimeout bounds one decoded scenario run; exceeding it suggests the
// matcher or the builder loops.
const runTimeout = 5 * time.Second

func fuzzFormat(f *testing.F, format scenario.Format) {
	for _, seed := range fileSeeds(f)[format] {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, input []byte) {
		file, err := scenario.Decode(clip(input), format)
		if err != nil {
			return
		}
		suite, err := scenario.Build("fuzz", file)
		if err != nil {
			if len(scenario.Diagnostics(err)) == 0 {
				t.Fatalf("build error without diagnostics: %v", err)
			}
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		outcomes, err := scenario.Run(ctx, []*scenario.Suite{suite}, scenario.RunOptions{Jobs: 1})
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		if len(outcomes) != len(suite.Cases) {
			t.Fatalf("got %d outcomes for %d cases", len(outcomes), len(suite.Cases))
		}
	})
}

func FuzzTOMLScenario(f *testing.F) { fuzzFormat(f, scenario.FormatTOML) }

func FuzzYAMLScenario(f *testing.F) { fuzzFormat(f, scenario.FormatYAML) }
