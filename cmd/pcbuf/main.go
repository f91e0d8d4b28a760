// pcbuf is a demo CLI for the piecechain package: open a file (or
// start empty), edit it with insert/delete/undo/redo, and save it back
// out with a chosen durability strategy.
//
// Usage:
//
//	pcbuf [options] [file]
//
// Options:
//
//	-I, --insert-at <offset>       Offset to insert at (with --insert)
//	-i, --insert <text>            Text to insert at --insert-at
//	-D, --delete-at <offset>       Offset to delete at (with --delete)
//	-d, --delete <n>               Number of bytes to delete at --delete-at
//	-m, --mode <auto|atomic|inplace>   Save mode (default: auto)
//	-o, --out <path>               Save path (default: the input file)
//	    --repl                     Start an interactive REPL instead
//
// Without --repl, the insert runs first, then the delete; the result is
// committed and, if anything changed, saved before exiting.
package main

import (
	"fmt"
	"log"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/piecechain/pkg/piecechain"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("pcbuf: ")

	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	flagSet := flag.NewFlagSet("pcbuf", flag.ContinueOnError)
	flagSet.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: pcbuf [options] [file]\n\nOptions:\n")
		flagSet.PrintDefaults()
	}

	insertAt := flagSet.IntP("insert-at", "I", -1, "offset to insert at")
	insertText := flagSet.StringP("insert", "i", "", "text to insert (used with --insert-at)")
	deleteAt := flagSet.IntP("delete-at", "D", -1, "offset to delete at")
	deleteLen := flagSet.IntP("delete", "d", 0, "number of bytes to delete (used with --delete-at)")
	mode := flagSet.StringP("mode", "m", "auto", "save mode: auto|atomic|inplace")
	out := flagSet.StringP("out", "o", "", "save path (default: the input file)")
	repl := flagSet.Bool("repl", false, "start an interactive REPL")

	if err := flagSet.Parse(args); err != nil {
		return err
	}

	path := ""
	if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}

	saveMode, err := parseSaveMode(*mode)
	if err != nil {
		return err
	}

	c, err := piecechain.Open(path)
	if err != nil {
		return fmt.Errorf("open %q: %w", path, err)
	}
	defer c.Close()

	if *repl {
		r := &REPL{chain: c, path: path, mode: saveMode}
		return r.Run()
	}

	if *insertAt >= 0 {
		if err := c.Insert(*insertAt, []byte(*insertText)); err != nil {
			return fmt.Errorf("insert: %w", err)
		}
	}
	if *deleteAt >= 0 {
		if err := c.Delete(*deleteAt, *deleteLen); err != nil {
			return fmt.Errorf("delete: %w", err)
		}
	}
	if err := c.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	if !c.Dirty() {
		return nil
	}

	savePath := *out
	if savePath == "" {
		savePath = path
	}
	if savePath == "" {
		return fmt.Errorf("no output path: pass [file] or -o/--out")
	}

	if err := c.Save(savePath, saveMode); err != nil {
		return fmt.Errorf("save: %w", err)
	}

	return nil
}

func parseSaveMode(s string) (piecechain.SaveMode, error) {
	switch s {
	case "auto":
		return piecechain.SaveAuto, nil
	case "atomic":
		return piecechain.SaveAtomic, nil
	case "inplace":
		return piecechain.SaveInplace, nil
	default:
		return 0, fmt.Errorf("unknown save mode %q (want auto, atomic, or inplace)", s)
	}
}
