// ribzip2 compresses and decompresses files in the bzip2 format,
// spreading block compression across a pool of workers.
//
// With no file arguments it filters stdin to stdout. Compressing a file
// writes file.bz2 and removes the original unless --keep is given;
// decompressing strips the .bz2 suffix.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/DipayanP007/ribzip2/bzip2"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ribzip2: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		decompress bool
		stdout     bool
		keep       bool
		verbose    bool
		workers    int
	)
	flags := pflag.NewFlagSet("ribzip2", pflag.ExitOnError)
	flags.BoolVarP(&decompress, "decompress", "d", false, "decompress instead of compress")
	flags.BoolVarP(&stdout, "stdout", "c", false, "write to stdout, keep input files")
	flags.BoolVarP(&keep, "keep", "k", false, "keep input files")
	flags.BoolVarP(&verbose, "verbose", "v", false, "report per-file timing and sizes")
	flags.IntVarP(&workers, "procs", "p", runtime.NumCPU(), "number of compression workers")
	flags.Parse(os.Args[1:])

	if !verbose {
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	}

	files := flags.Args()
	if len(files) == 0 {
		return process(os.Stdin, os.Stdout, decompress, workers)
	}
	for _, name := range files {
		if err := processFile(name, decompress, stdout, keep, workers); err != nil {
			return err
		}
	}
	return nil
}

func process(r io.Reader, w io.Writer, decompress bool, workers int) error {
	if decompress {
		return bzip2.Decode(r, w)
	}
	return bzip2.Encode(r, w, workers)
}

func processFile(name string, decompress, stdout, keep bool, workers int) error {
	outName, err := outputName(name, decompress)
	if err != nil {
		return err
	}

	in, err := os.Open(name)
	if err != nil {
		return err
	}
	defer in.Close()

	var out io.Writer = os.Stdout
	if !stdout {
		f, err := os.Create(outName)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	start := time.Now()
	if err := process(in, out, decompress, workers); err != nil {
		if !stdout {
			os.Remove(outName)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	slog.Info("done", "file", name, "elapsed", time.Since(start))

	if !stdout && !keep {
		return os.Remove(name)
	}
	return nil
}

func outputName(name string, decompress bool) (string, error) {
	if !decompress {
		return name + ".bz2", nil
	}
	if !strings.HasSuffix(name, ".bz2") {
		return "", fmt.Errorf("%s: unknown suffix, expected .bz2", name)
	}
	return strings.TrimSuffix(name, ".bz2"), nil
}
