package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"golang.org/x/sync/errgroup"

	"github.com/funvibe/funxyc/internal/cache"
	"github.com/funvibe/funxyc/internal/codegen"
	"github.com/funvibe/funxyc/internal/config"
	"github.com/funvibe/funxyc/internal/lexer"
	"github.com/funvibe/funxyc/internal/parser"
	"github.com/funvibe/funxyc/internal/pipeline"
	"github.com/funvibe/funxyc/internal/semant"
)

var (
	flagOutput     = flag.String("o", "", "output path (single input only; default: input with .ll extension)")
	flagExceptions = flag.Bool("exceptions", true, "insert runtime checks into the emitted program")
	flagNoCache    = flag.Bool("no-cache", false, "skip recording specializations in the on-disk cache")
	flagCacheStats = flag.Bool("cache-stats", false, "print specialization cache statistics and exit")
	flagVersion    = flag.Bool("version", false, "print version and exit")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: funxyc [flags] file%s...\n", config.SourceFileExtensions[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *flagVersion {
		fmt.Println("funxyc " + config.Version)
		return
	}

	cfg, err := config.Load(".")
	if err != nil {
		fail("funxyc: %v", err)
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "exceptions" {
			cfg.Exceptions = *flagExceptions
		}
	})
	if *flagNoCache {
		cfg.Cache.Enabled = false
	}

	if *flagCacheStats {
		printCacheStats(cfg)
		return
	}

	inputs := flag.Args()
	if len(inputs) == 0 {
		flag.Usage()
		os.Exit(2)
	}
	if *flagOutput != "" && len(inputs) > 1 {
		fail("funxyc: -o cannot be used with multiple inputs")
	}
	for _, in := range inputs {
		if !config.HasSourceExt(in) {
			fail("funxyc: %s: not a recognized source file", in)
		}
	}

	// Each file gets its own single-threaded pipeline; only the fan-out
	// across independent files is concurrent.
	var g errgroup.Group
	for _, in := range inputs {
		in := in
		g.Go(func() error {
			return compileFile(in, cfg)
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Fprintln(os.Stderr, colorize(err.Error()))
		os.Exit(1)
	}
}

func compileFile(path string, cfg *config.Config) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("funxyc: %w", err)
	}

	ctx := pipeline.NewContext(path, string(source), cfg)
	pipe := pipeline.New(
		&lexer.Processor{},
		&parser.Processor{},
		&semant.Processor{},
		&codegen.Processor{},
	)
	ctx = pipe.Run(ctx)
	if err := ctx.FirstError(); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	out := *flagOutput
	if out == "" {
		out = outputPath(path, cfg)
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("funxyc: %w", err)
		}
	}
	if err := os.WriteFile(out, []byte(ctx.Module.String()), 0o644); err != nil {
		return fmt.Errorf("funxyc: %w", err)
	}

	if cfg.Cache.Enabled {
		recordSpecializations(path, cfg, ctx.Specializations)
	}
	return nil
}

func outputPath(input string, cfg *config.Config) string {
	base := config.TrimSourceExt(filepath.Base(input)) + ".ll"
	if cfg.OutputDir != "" {
		return filepath.Join(cfg.OutputDir, base)
	}
	return filepath.Join(filepath.Dir(input), base)
}

// recordSpecializations is best-effort: a broken cache must never fail
// the build.
func recordSpecializations(source string, cfg *config.Config, specs []pipeline.SpecRecord) {
	c, err := cache.Open(cfg.Cache.Path)
	if err != nil {
		fmt.Fprintln(os.Stderr, colorize("funxyc: warning: "+err.Error()))
		return
	}
	defer c.Close()
	for _, s := range specs {
		if err := c.Record(source, s.Func, s.ArgTypes, s.Symbol); err != nil {
			fmt.Fprintln(os.Stderr, colorize("funxyc: warning: "+err.Error()))
			return
		}
	}
}

func printCacheStats(cfg *config.Config) {
	c, err := cache.Open(cfg.Cache.Path)
	if err != nil {
		fail("funxyc: %v", err)
	}
	defer c.Close()
	rows, bytes, err := c.Stats()
	if err != nil {
		fail("funxyc: %v", err)
	}
	fmt.Printf("specialization cache: %d entries, %s on disk (%s)\n",
		rows, humanize.Bytes(uint64(bytes)), cfg.Cache.Path)
}

// colorize wraps diagnostics in red when stderr is a terminal.
func colorize(s string) string {
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		return "\x1b[31m" + s + "\x1b[0m"
	}
	return s
}

func fail(format string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, colorize(fmt.Sprintf(format, args...)))
	os.Exit(1)
}
