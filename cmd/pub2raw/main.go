// Command pub2raw prints the painter calls a publication decodes to.
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
	fs := flag.NewFlagSet("pub2raw", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		dump    = fs.Bool("x", false, "hex dump embedded images")
		verbose = fs.Bool("v", false, "log the decoding trace to stderr")
		version = fs.Bool("version", false, "print the version and exit")
	)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: pub2raw [-x] [-v] file.pub")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *version {
		fmt.Fprintln(stdout, "pub2raw", gopublisher.LibraryVersion)
		return 0
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}

	opts := gopublisher.DefaultParseOptions()
	if *verbose {
		opts.Logger = gopublisher.NewStdLogger(log.New(stderr, "", 0), gopublisher.LevelDebug)
	}
	w := bufio.NewWriter(stdout)
	painter := gopublisher.NewRawPainter(w, *dump)
	if err := gopublisher.ParseFile(fs.Arg(0), painter, opts); err != nil {
		if errors.Is(err, gopublisher.ErrUnsupportedFormat) {
			fmt.Fprintf(stderr, "pub2raw: %s: unsupported file format\n", fs.Arg(0))
		} else {
			fmt.Fprintf(stderr, "pub2raw: %s: %v\n", fs.Arg(0), err)
		}
		return 1
	}
	if err := painter.Err(); err != nil {
		fmt.Fprintf(stderr, "pub2raw: write: %v\n", err)
		return 1
	}
	if err := w.Flush(); err != nil {
		fmt.Fprintf(stderr, "pub2raw: write: %v\n", err)
		return 1
	}
	return 0
}
