package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/fatih/color"
	"github.com/go-logr/logr"
	"github.com/mattn/go-isatty"
	"github.com/tebeka/atexit"
	"github.com/urfave/cli/v2"

	"bf2py/pkg/compiler"
	"bf2py/pkg/config"
	"bf2py/pkg/logging"
	"bf2py/pkg/watch"
)

const version = "0.3.0"

var (
	datasizeFlag = &cli.IntFlag{
		Name:    "datasize",
		Aliases: []string{"d"},
		Value:   compiler.DefaultConfig().TapeSize,
		Usage:   "number of cells available to the program (0 for unbounded)",
	}
	cellsizeFlag = &cli.IntFlag{
		Name:    "cellsize",
		Aliases: []string{"c"},
		Value:   compiler.DefaultConfig().CellWidth,
		Usage:   "bits per cell: 0 (unbounded), 8, 16 or 32; cells wrap on over/underflow",
	}
	layoutFlag = &cli.StringFlag{
		Name:  "layout",
		Value: compiler.Compact.String(),
		Usage: "statement layout: compact (one line per block run) or expanded (one statement per line)",
	}
	indentFlag = &cli.IntFlag{
		Name:  "indent",
		Value: 1,
		Usage: "spaces per nesting level",
	}
	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "YAML or TOML configuration file",
	}
	outFlag = &cli.StringFlag{
		Name:    "out",
		Aliases: []string{"o"},
		Usage:   "output file for a single input, - for stdout (default: input name with .b replaced by .py)",
	}
	outDirFlag = &cli.StringFlag{
		Name:  "out-dir",
		Usage: "directory for generated programs (default: next to each input)",
	}
	jobsFlag = &cli.IntFlag{
		Name:    "jobs",
		Aliases: []string{"j"},
		Usage:   "number of files translated concurrently (default: number of CPUs)",
	}
	statsFlag = &cli.BoolFlag{
		Name:  "stats",
		Usage: "print translation statistics",
	}
	runFlag = &cli.BoolFlag{
		Name:  "run",
		Usage: "run the programs on the reference tape machine instead of writing Python",
	}
	watchFlag = &cli.BoolFlag{
		Name:    "watch",
		Aliases: []string{"w"},
		Usage:   "retranslate inputs whenever they change",
	}
	verbosityFlag = &cli.IntFlag{
		Name:  "verbosity",
		Value: 0,
		Usage: "logging verbosity: 0 quiet, 1 progress, 2 details",
	}
)

// errFailed is returned once every per-file error has been reported.
var errFailed = errors.New("translation failed")

// usageError marks errors caused by how the tool was invoked.
type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

type tool struct {
	app    *cli.App
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	log    logr.Logger
	errTag *color.Color
}

func newTool(stdin io.Reader, stdout, stderr io.Writer) *tool {
	t := &tool{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		log:    logr.Discard(),
		errTag: colorFor(stderr, color.FgRed, color.Bold),
	}
	t.app = &cli.App{
		Name:      "bf2py",
		Usage:     "compile tape-machine programs to Python",
		UsageText: "bf2py [flags] FILE...",
		Version:   version,
		Reader:    stdin,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			datasizeFlag,
			cellsizeFlag,
			layoutFlag,
			indentFlag,
			configFlag,
			outFlag,
			outDirFlag,
			jobsFlag,
			statsFlag,
			runFlag,
			watchFlag,
			verbosityFlag,
		},
		Before: t.setup,
		Action: t.translate,
		OnUsageError: func(c *cli.Context, err error, isSubcommand bool) error {
			return usageError{err}
		},
		ExitErrHandler: func(*cli.Context, error) {},
	}
	return t
}

// colorFor returns a colour that is only applied when w is a terminal.
func colorFor(w io.Writer, attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

func (t *tool) setup(c *cli.Context) error {
	t.log = logging.New(t.stderr, c.Int(verbosityFlag.Name)).WithName("bf2py")
	return nil
}

// report prints err as a diagnostic.
func (t *tool) report(err error) {
	t.errTag.Fprint(t.stderr, "error:")
	fmt.Fprintf(t.stderr, " %v\n", err)
}

// Run executes the tool and returns the process exit code: 0 on success,
// 1 when a translation or I/O step failed, 2 on a usage error.
func (t *tool) Run(args []string) int {
	err := t.app.Run(args)
	if err == nil {
		return 0
	}
	if errors.Is(err, errFailed) {
		return 1
	}
	t.report(err)
	var uerr usageError
	if errors.As(err, &uerr) {
		fmt.Fprintf(t.stderr, "run '%s --help' for usage\n", t.app.Name)
		return 2
	}
	return 1
}

// options is the resolved configuration of one invocation.
type options struct {
	cfg    compiler.Config
	out    string
	outDir string
	jobs   int
	cache  *watch.Cache
}

// resolve layers defaults, the config file and explicit flags, in that order.
func (t *tool) resolve(c *cli.Context) (options, error) {
	file := config.Defaults()
	if path := c.String(configFlag.Name); path != "" {
		var err error
		if file, err = config.Load(path, file); err != nil {
			return options{}, usageError{err}
		}
		t.log.V(1).Info("loaded config", "path", path)
	}
	if c.IsSet(datasizeFlag.Name) {
		file.TapeSize = c.Int(datasizeFlag.Name)
	}
	if c.IsSet(cellsizeFlag.Name) {
		file.CellWidth = c.Int(cellsizeFlag.Name)
	}
	if c.IsSet(layoutFlag.Name) {
		file.Layout = c.String(layoutFlag.Name)
	}
	if c.IsSet(indentFlag.Name) {
		file.Indent = c.Int(indentFlag.Name)
	}
	if c.IsSet(outDirFlag.Name) {
		file.OutDir = c.String(outDirFlag.Name)
	}
	if c.IsSet(jobsFlag.Name) {
		file.Jobs = c.Int(jobsFlag.Name)
	}

	cfg, err := file.Compiler()
	if err != nil {
		return options{}, usageError{err}
	}
	jobs := file.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	cache, err := watch.NewCache(1024)
	if err != nil {
		return options{}, err
	}
	t.log.V(1).Info("config", "tape_size", cfg.TapeSize, "cell_width", cfg.CellWidth,
		"layout", cfg.Layout.String(), "indent", cfg.Indent, "jobs", jobs)
	return options{
		cfg:    cfg,
		out:    c.String(outFlag.Name),
		outDir: file.OutDir,
		jobs:   jobs,
		cache:  cache,
	}, nil
}

func (t *tool) translate(c *cli.Context) error {
	inputs := c.Args().Slice()
	if len(inputs) == 0 {
		return usageError{errors.New("no input files")}
	}
	opts, err := t.resolve(c)
	if err != nil {
		return err
	}
	if opts.out != "" && len(inputs) > 1 {
		return usageError{fmt.Errorf("--%s needs exactly one input file, got %d", outFlag.Name, len(inputs))}
	}
	if c.Bool(runFlag.Name) && c.Bool(watchFlag.Name) {
		return usageError{fmt.Errorf("use either --%s or --%s, not both", runFlag.Name, watchFlag.Name)}
	}

	if c.Bool(runFlag.Name) {
		return t.run(inputs, opts.cfg)
	}

	results := translateAll(c.Context, inputs, opts)
	failed := false
	for _, r := range results {
		if !t.finish(r) {
			failed = true
		}
	}
	if c.Bool(statsFlag.Name) {
		w := t.stdout
		if opts.out == "-" {
			w = t.stderr
		}
		writeStats(w, results)
	}

	if c.Bool(watchFlag.Name) {
		return t.watch(c.Context, inputs, opts)
	}
	if failed {
		return errFailed
	}
	return nil
}

func main() {
	code := newTool(os.Stdin, os.Stdout, os.Stderr).Run(os.Args)
	atexit.Exit(code)
}
