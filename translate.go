package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/olekukonko/tablewriter"
	"github.com/tebeka/atexit"
	"golang.org/x/sync/errgroup"

	"bf2py/pkg/compiler"
	"bf2py/pkg/tape"
	"bf2py/pkg/utils"
	"bf2py/pkg/watch"
)

// fileError ties an error to the input it came from. Translation errors are
// printed as file:line:col.
type fileError struct {
	path string
	err  error
}

func (e *fileError) Error() string {
	var terr *compiler.TranslationError
	if errors.As(e.err, &terr) {
		return fmt.Sprintf("%s:%s: %v", e.path, terr.Pos, terr.Err)
	}
	return fmt.Sprintf("%s: %v", e.path, e.err)
}

func (e *fileError) Unwrap() error { return e.err }

type result struct {
	in   string
	out  string
	prog *compiler.Program
	err  error
}

// translateAll translates inputs with at most opts.jobs running at once.
// Results are returned in input order.
func translateAll(ctx context.Context, inputs []string, opts options) []result {
	results := make([]result, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.jobs)
	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = result{in: in, err: &fileError{in, err}}
				return nil
			}
			src, err := os.ReadFile(in)
			if err != nil {
				results[i] = result{in: in, err: &fileError{in, err}}
				return nil
			}
			opts.cache.Changed(in, opts.cfg, src)
			results[i] = translateSource(in, src, opts)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// translateSource translates one file and writes the program unless it goes
// to stdout.
func translateSource(in string, src []byte, opts options) result {
	r := result{in: in, out: opts.out}
	if r.out == "" {
		r.out = utils.OutputPath(in, opts.outDir)
	}
	prog, err := compiler.Translate(string(src), opts.cfg)
	if err != nil {
		r.err = &fileError{in, err}
		return r
	}
	r.prog = prog
	if r.out == "-" {
		return r
	}
	if dir := filepath.Dir(r.out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			r.err = &fileError{in, err}
			return r
		}
	}
	if err := os.WriteFile(r.out, []byte(prog.Text+"\n"), 0o644); err != nil {
		r.err = &fileError{in, err}
	}
	return r
}

// finish reports r and prints programs bound for stdout. It returns false
// when r failed.
func (t *tool) finish(r result) bool {
	if r.err != nil {
		t.report(r.err)
		return false
	}
	if r.out == "-" {
		fmt.Fprintln(t.stdout, r.prog.Text)
	}
	s := r.prog.Stats
	t.log.V(1).Info("translated", "in", r.in, "out", r.out)
	t.log.V(2).Info("stats", "in", r.in, "instructions", s.Instructions,
		"collapsed", s.Collapsed(), "loops", s.Loops, "lines", s.Lines)
	return true
}

func writeStats(w io.Writer, results []result) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"File", "Bytes", "Instructions", "Comments", "Moves", "Adds",
		"Output", "Input", "Loops", "Depth", "Collapsed", "Lines"})
	table.SetAutoFormatHeaders(false)
	for _, r := range results {
		if r.prog == nil {
			continue
		}
		s := r.prog.Stats
		table.Append([]string{
			r.in,
			strconv.Itoa(s.SourceBytes),
			strconv.Itoa(s.Instructions),
			strconv.Itoa(s.Comments()),
			strconv.Itoa(s.Moves),
			strconv.Itoa(s.Adds),
			strconv.Itoa(s.Outputs),
			strconv.Itoa(s.Inputs),
			strconv.Itoa(s.Loops),
			strconv.Itoa(s.MaxDepth),
			strconv.Itoa(s.Collapsed()),
			strconv.Itoa(s.Lines),
		})
	}
	table.Render()
}

// run executes each input on the tape machine with the tool's stdin and
// stdout, in order.
func (t *tool) run(inputs []string, cfg compiler.Config) error {
	out := bufio.NewWriter(t.stdout)
	defer out.Flush()
	in := bufio.NewReader(t.stdin)

	failed := false
	for _, path := range inputs {
		src, err := os.ReadFile(path)
		if err != nil {
			t.report(&fileError{path, err})
			failed = true
			continue
		}
		m, err := tape.Run(string(src), cfg, in, out)
		if err := out.Flush(); err != nil {
			return err
		}
		if err != nil {
			t.report(&fileError{path, err})
			failed = true
			continue
		}
		t.log.V(1).Info("run complete", "path", path, "ptr", m.Ptr, "steps", m.Steps)
	}
	if failed {
		return errFailed
	}
	return nil
}

// watch retranslates inputs as they change until interrupted.
func (t *tool) watch(ctx context.Context, inputs []string, opts options) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := watch.New(inputs, watch.DefaultDelay, t.log)
	if err != nil {
		return err
	}
	atexit.Register(w.Close)
	fmt.Fprintf(t.stderr, "watching %d file(s), press Ctrl-C to stop\n", len(inputs))

	err = w.Run(ctx, func(path string) {
		src, err := os.ReadFile(path)
		if err != nil {
			opts.cache.Forget(path)
			t.report(&fileError{path, err})
			return
		}
		if !opts.cache.Changed(path, opts.cfg, src) {
			t.log.V(1).Info("unchanged", "path", path)
			return
		}
		r := translateSource(path, src, opts)
		if r.err != nil {
			// retry on the next save even if the text comes back unchanged
			opts.cache.Forget(path)
		}
		t.finish(r)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
