package scenario

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"runtime"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"typematch/internal/diag"
	"typematch/internal/match"
	"typematch/internal/observ"
	"typematch/internal/trace"
)

// Load reads and builds one scenario file.
func Load(path string) (*Suite, error) {
	f, err := ReadFile(path)
	if err != nil {
		return nil, loadError(path, err)
	}
	return Build(path, f)
}

func loadError(path string, err error) error {
	code := diag.LoadSyntax
	var perr *fs.PathError
	if errors.As(err, &perr) || errors.Is(err, ErrUnsupportedFormat) {
		code = diag.LoadIO
	}
	return &Error{Code: code, Subject: path, Err: err}
}

// LoadAll loads every path, recording the "load" and "index" phases on
// timer when it is non-nil. Files that fail are skipped; their errors are
// aggregated.
func LoadAll(paths []string, timer *observ.Timer) ([]*Suite, error) {
	if timer == nil {
		timer = observ.NewTimer()
	}
	files := make([]*File, len(paths))
	var errs error

	idx := timer.Begin("load")
	for i, path := range paths {
		f, err := ReadFile(path)
		if err != nil {
			errs = multierr.Append(errs, loadError(path, err))
			continue
		}
		files[i] = f
	}
	timer.End(idx, fmt.Sprintf("%d files", len(paths)))

	idx = timer.Begin("index")
	suites := make([]*Suite, 0, len(paths))
	cases := 0
	for i, f := range files {
		if f == nil {
			continue
		}
		s, err := Build(paths[i], f)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		cases += len(s.Cases)
		suites = append(suites, s)
	}
	timer.End(idx, fmt.Sprintf("%d cases", cases))
	return suites, errs
}

// RunOptions tunes Run.
type RunOptions struct {
	// Jobs bounds the cases run at once; <= 0 means GOMAXPROCS.
	Jobs int
	// MaxDepth applies to suites that do not set their own.
	MaxDepth int
	Timer    *observ.Timer
	// Progress receives a queued event per case up front, then running and
	// passed/failed events as cases execute.
	Progress ProgressSink
}

// Run executes every case of every suite concurrently. Outcomes come back in
// suite then case order. The tracer attached to ctx receives a span per case
// and the matcher's spans.
func Run(ctx context.Context, suites []*Suite, opts RunOptions) ([]Outcome, error) {
	type job struct {
		suite   *Suite
		c       *Case
		matcher *match.Matcher
	}
	tracer := trace.FromContext(ctx)
	parent := trace.CurrentSpan(ctx)

	var jobs []job
	for _, s := range suites {
		depth := s.MaxDepth
		if depth <= 0 {
			depth = opts.MaxDepth
		}
		m := match.New(s.Types, s.Index, match.WithMaxDepth(depth), match.WithTracer(tracer))
		for _, c := range s.Cases {
			jobs = append(jobs, job{suite: s, c: c, matcher: m})
		}
	}
	outcomes := make([]Outcome, len(jobs))
	if len(jobs) == 0 {
		return outcomes, nil
	}

	progress := opts.Progress
	if progress == nil {
		progress = nopSink{}
	}
	for _, j := range jobs {
		progress.OnEvent(Event{Suite: j.suite.Path, Case: j.c.Name, Status: StatusQueued})
	}

	n := opts.Jobs
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	var idx int
	if opts.Timer != nil {
		idx = opts.Timer.Begin("match")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(n, len(jobs)))
	for i, j := range jobs {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			progress.OnEvent(Event{Suite: j.suite.Path, Case: j.c.Name, Status: StatusRunning})
			span := trace.Begin(tracer, trace.ScopeCase, j.c.Name, parent).
				WithExtra("suite", j.suite.Path).
				WithExtra("mode", j.c.Mode.String())
			out := j.c.Run(j.suite, j.matcher)
			result, status := "pass", StatusPassed
			if !out.Passed {
				result, status = "fail", StatusFailed
			}
			span.WithExtra("result", result).End("")
			progress.OnEvent(Event{Suite: j.suite.Path, Case: j.c.Name, Status: status, Elapsed: out.Duration})
			// индекс i уникален для горутины, мьютекс не нужен
			outcomes[i] = out
			return nil
		})
	}
	err := g.Wait()
	if opts.Timer != nil {
		opts.Timer.End(idx, fmt.Sprintf("%d cases", len(jobs)))
	}
	if err != nil {
		return nil, err
	}
	return outcomes, nil
}

// Failed counts the outcomes that did not meet their expectation.
func Failed(outcomes []Outcome) int {
	n := 0
	for _, o := range outcomes {
		if !o.Passed {
			n++
		}
	}
	return n
}

type nopSink struct{}

func (nopSink) OnEvent(Event) {}
