// Command pagesplit splits a PDF into chunk files of contiguous pages.
//
//	pagesplit -i book.pdf -o chunks -s 30   # 30 pages per chunk
//	pagesplit -i book.pdf -o chunks -s c5   # 5 evenly sized chunks
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/dgallion1/pagesplit/internal/pdfdoc"
	"github.com/dgallion1/pagesplit/internal/split"
)

const (
	exitSuccess           = 0
	exitFailure           = 1
	exitInvalidInvocation = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	input   string
	output  string
	split   string
	prefix  string
	workers int
	verify  bool
	verbose bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("pagesplit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.input, "input", "", "Path to the input PDF file")
	fs.StringVar(&opts.input, "i", "", "Shorthand for -input")
	fs.StringVar(&opts.output, "output", "", "Path to the output directory")
	fs.StringVar(&opts.output, "o", "", "Shorthand for -output")
	fs.StringVar(&opts.split, "split", "", "Pages per chunk (e.g. 30) or number of equal chunks (e.g. c5)")
	fs.StringVar(&opts.split, "s", "", "Shorthand for -split")
	fs.StringVar(&opts.prefix, "prefix", split.DefaultPrefix, "Chunk file name prefix")
	fs.IntVar(&opts.workers, "workers", 1, "Chunks to extract in parallel")
	fs.BoolVar(&opts.verify, "verify", false, "Reopen each chunk and check its page count")
	fs.BoolVar(&opts.verbose, "v", false, "Debug logging")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 0 {
		return opts, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if opts.input == "" || opts.output == "" || opts.split == "" {
		return opts, errors.New("-input, -output and -split are required")
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitSuccess
		}
		fmt.Fprintf(stderr, "pagesplit: %v\n", err)
		return exitInvalidInvocation
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	d, err := split.ParseDirective(opts.split)
	if err != nil {
		fmt.Fprintf(stderr, "pagesplit: %v\n", err)
		return exitInvalidInvocation
	}

	r := &split.Runner{
		Loader:      pdfdoc.Loader{},
		Log:         log,
		Concurrency: opts.workers,
		OnChunk: func(a split.Artifact) {
			fmt.Fprintf(stdout, "Saved chunk %d (pages %d to %d) to %s\n", a.Index, a.Range.Start, a.Range.End, a.Path)
		},
	}
	if opts.verify {
		r.Verifier = pdfdoc.Verifier{}
	}

	arts, err := r.Run(ctx, split.Request{
		Input:     opts.input,
		OutputDir: opts.output,
		Directive: d,
		Prefix:    opts.prefix,
	})
	if err != nil {
		log.Debug("run aborted", "written", len(arts))
		fmt.Fprintf(stderr, "pagesplit: %v\n", err)
		return exitFailure
	}
	return exitSuccess
}
