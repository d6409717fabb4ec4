// Command bigbuf applies a script of edits to a file and reports the result.
//
//	bigbuf [options] file op...
//
// Operations are
//
//	w:OFF:HEX      overwrite at OFF
//	i:OFF:HEX      insert at OFF
//	d:OFF:LEN      delete LEN bytes at OFF
//	r:OFF:LEN:HEX  replace LEN bytes at OFF
//	f:HEX[:b]      find from the start (or backwards from the end)
//	p:OFF:LEN      print LEN bytes at OFF as hex
//	u              undo
//	U              redo
//
// Offsets and lengths may be given in decimal or with a 0x prefix.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/npillmayer/bigbuf"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"golang.org/x/term"
)

type options struct {
	out      string
	save     bool
	readOnly bool
	dump     bool
	dot      string
	trace    string
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()
	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		return 2
	}
	color.NoColor = !term.IsTerminal(int(os.Stdout.Fd()))
	tracing.SetTraceSelector(tracing.SelectorForAdapter(gologadapter.GetAdapter()))
	tracing.Select("bigbuf").SetTraceLevel(tracing.TraceLevelFromString(opts.trace))

	script, err := parseScript(args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	buf, err := bigbuf.Open(args[0], bigbuf.Options{ReadOnly: opts.readOnly})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot open %s: %v\n", args[0], err)
		return 1
	}
	defer buf.Close()

	if err := script.run(buf, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if opts.dump {
		if err := buf.Dump(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}
	if opts.dot != "" {
		if err := writeDot(buf, opts.dot); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}
	sum, err := buf.Digest(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Printf("%d bytes, xxhash64 %016x\n", buf.Len(), sum)
	if opts.out != "" {
		if _, err := buf.SaveToFile(opts.out); err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot write %s: %v\n", opts.out, err)
			return 1
		}
	}
	if opts.save {
		saved, err := buf.Save()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot save %s: %v\n", args[0], err)
			return 1
		}
		if !saved {
			fmt.Println("no changes to save")
		}
	}
	return 0
}

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.out, "o", "", "Write the result to `file`")
	flag.BoolVar(&opts.save, "save", false, "Save the result to the input file")
	flag.BoolVar(&opts.readOnly, "ro", false, "Open the input file read-only")
	flag.BoolVar(&opts.dump, "dump", false, "Print the chunk list")
	flag.StringVar(&opts.dot, "dot", "", "Write the chunk list in Graphviz format to `file`")
	flag.StringVar(&opts.trace, "trace", "Error", "Trace level (Debug, Info, Error)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: bigbuf [options] file op...\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  bigbuf disk.img p:0x1fe:2              Print the boot signature\n")
		fmt.Fprintf(os.Stderr, "  bigbuf -save disk.img w:0x1fe:55aa     Patch it\n")
		fmt.Fprintf(os.Stderr, "  bigbuf -o out.bin in.bin d:0:16 f:cafe  Strip a header, find a marker\n")
	}
	flag.Parse()
	return opts
}

func writeDot(buf *bigbuf.Buffer, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := bigbuf.Buffer2Dot(buf, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
