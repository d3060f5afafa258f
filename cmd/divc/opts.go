package main

import "flag"

// options mirrors the teacher's flag-struct-plus-accessor idiom
// (utils/init.go): a package-private struct populated by flag.*Var calls,
// exposed to the rest of the program only through the opts value below.
type options struct {
	path       string
	function   string
	dot        string
	format     string
	verbose    bool
	noColorize bool
	metrics    bool
}

var opts = &options{}

type optInterface struct{}

// Opts returns the handle main uses to read parsed flag values.
func Opts() optInterface { return optInterface{} }

func (optInterface) Path() string       { return opts.path }
func (optInterface) Function() string   { return opts.function }
func (optInterface) Dot() string        { return opts.dot }
func (optInterface) Format() string     { return opts.format }
func (optInterface) Verbose() bool      { return opts.verbose }
func (optInterface) NoColorize() bool   { return opts.noColorize }
func (optInterface) Metrics() bool      { return opts.metrics }

func init() {
	flag.StringVar(&opts.function, "fun", "", "run the pass on a single named function instead of every function in the module")
	flag.StringVar(&opts.dot, "dot", "", "write the analyzed function's annotated CFG as a Graphviz file to this path")
	flag.StringVar(&opts.format, "format", "svg", "output format for -dot [svg | png | jpg | ...]")
	flag.BoolVar(&opts.verbose, "verbose", false, "enable verbose logging during the pass")
	flag.BoolVar(&opts.noColorize, "no-colorize", false, "disable pretty-printer and diagnostic colorization")
	flag.BoolVar(&opts.metrics, "metrics", false, "print iteration and repair counts after the pass runs")
}

// ParseArgs parses the command line, including the positional input file
// path (the textual IR module to analyze).
func ParseArgs() {
	flag.Parse()
	opts.path = flag.Arg(0)
}
