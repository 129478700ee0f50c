// Command pub2xhtml converts a publication to XHTML with one SVG per page.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	gopublisher "github.com/VantageDataChat/GoPUB"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("pub2xhtml", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		out      = fs.String("o", "", "write to `file` instead of stdout")
		verbose  = fs.Bool("v", false, "log the decoding trace to stderr")
		noImages = fs.Bool("no-images", false, "draw placeholders instead of embedding pictures")
		dpi      = fs.Float64("dpi", 96, "metafile rasterization resolution")
		version  = fs.Bool("version", false, "print the version and exit")
	)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: pub2xhtml [-v] [-o out.xhtml] file.pub")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *version {
		fmt.Fprintln(stdout, "pub2xhtml", gopublisher.LibraryVersion)
		return 0
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}

	opts := gopublisher.DefaultParseOptions()
	svgOpts := gopublisher.DefaultSVGOptions()
	if *verbose {
		logger := gopublisher.NewStdLogger(log.New(stderr, "", 0), gopublisher.LevelDebug)
		opts.Logger = logger
		svgOpts.Logger = logger
	}
	svgOpts.EmbedImages = !*noImages
	svgOpts.MetafileDPI = *dpi

	painter := gopublisher.NewSVGPainter(svgOpts)
	if err := gopublisher.ParseFile(fs.Arg(0), painter, opts); err != nil {
		if errors.Is(err, gopublisher.ErrUnsupportedFormat) {
			fmt.Fprintf(stderr, "pub2xhtml: %s: unsupported file format\n", fs.Arg(0))
		} else {
			fmt.Fprintf(stderr, "pub2xhtml: %s: %v\n", fs.Arg(0), err)
		}
		return 1
	}

	if err := write(*out, stdout, painter); err != nil {
		fmt.Fprintf(stderr, "pub2xhtml: write: %v\n", err)
		return 1
	}
	return 0
}

func write(path string, stdout io.Writer, painter *gopublisher.SVGPainter) error {
	if path == "" {
		w := bufio.NewWriter(stdout)
		if err := painter.Render(w); err != nil {
			return err
		}
		return w.Flush()
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := painter.Render(w); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
