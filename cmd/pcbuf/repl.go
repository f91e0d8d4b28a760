package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/calvinalkan/piecechain/pkg/piecechain"
)

// REPL is the interactive command loop driving a single Chain.
type REPL struct {
	chain *piecechain.Chain
	path  string
	mode  piecechain.SaveMode
	liner *liner.State
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".pcbuf_history")
}

// Run starts the REPL loop.
func (r *REPL) Run() error {
	r.liner = liner.NewLiner()
	defer r.liner.Close()

	r.liner.SetCtrlCAborts(true)
	r.liner.SetCompleter(r.completer)

	if f, err := os.Open(historyFile()); err == nil {
		r.liner.ReadHistory(f)
		f.Close()
	}

	fmt.Printf("pcbuf - piece-chain buffer CLI (size=%d, file=%q)\n", r.chain.Size(), r.path)
	fmt.Println("Type 'help' for available commands.")
	fmt.Println()

	for {
		line, err := r.liner.Prompt("pcbuf> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Println("\nBye!")
				break
			}
			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		r.liner.AppendHistory(line)

		parts := strings.Fields(line)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "exit", "quit", "q":
			fmt.Println("Bye!")
			r.saveHistory()
			return nil

		case "help", "?":
			r.printHelp()

		case "insert":
			r.cmdInsert(args)

		case "delete", "del":
			r.cmdDelete(args)

		case "replace":
			r.cmdReplace(args)

		case "commit":
			r.cmdCommit()

		case "undo":
			r.cmdUndo()

		case "redo":
			r.cmdRedo()

		case "save":
			r.cmdSave(args)

		case "print":
			r.cmdPrint(args)

		case "size":
			fmt.Printf("size=%d dirty=%v\n", r.chain.Size(), r.chain.Dirty())

		default:
			fmt.Printf("Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}

	r.saveHistory()
	return nil
}

func (r *REPL) saveHistory() {
	if path := historyFile(); path != "" {
		if f, err := os.Create(path); err == nil {
			r.liner.WriteHistory(f)
			f.Close()
		}
	}
}

func (r *REPL) completer(line string) []string {
	commands := []string{
		"insert", "delete", "del", "replace", "commit",
		"undo", "redo", "save", "print", "size",
		"help", "exit", "quit", "q",
	}

	var completions []string
	lower := strings.ToLower(line)
	for _, cmd := range commands {
		if strings.HasPrefix(cmd, lower) {
			completions = append(completions, cmd)
		}
	}
	return completions
}

func (r *REPL) printHelp() {
	fmt.Println("Commands:")
	fmt.Println("  insert <offset> <text>   Insert text at offset")
	fmt.Println("  delete <offset> <n>      Delete n bytes at offset")
	fmt.Println("  replace <offset> <text>  Replace len(text) bytes at offset with text")
	fmt.Println("  commit                   Seal pending edits into a revision")
	fmt.Println("  undo                     Undo the current revision")
	fmt.Println("  redo                     Redo the next revision")
	fmt.Println("  save [path] [mode]       Save (mode: auto|atomic|inplace)")
	fmt.Println("  print [start] [length]   Print a range of the buffer")
	fmt.Println("  size                     Show size and dirty state")
	fmt.Println("  help                     Show this help")
	fmt.Println("  exit / quit / q          Exit")
}

func (r *REPL) cmdInsert(args []string) {
	if len(args) < 2 {
		fmt.Println("Usage: insert <offset> <text>")
		return
	}
	offset, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Printf("Error parsing offset: %v\n", err)
		return
	}
	text := strings.Join(args[1:], " ")
	if err := r.chain.Insert(offset, []byte(text)); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("OK: inserted %d bytes at %d\n", len(text), offset)
}

func (r *REPL) cmdDelete(args []string) {
	if len(args) < 2 {
		fmt.Println("Usage: delete <offset> <n>")
		return
	}
	offset, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Printf("Error parsing offset: %v\n", err)
		return
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Printf("Error parsing length: %v\n", err)
		return
	}
	if err := r.chain.Delete(offset, n); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("OK: deleted %d bytes at %d\n", n, offset)
}

func (r *REPL) cmdReplace(args []string) {
	if len(args) < 2 {
		fmt.Println("Usage: replace <offset> <text>")
		return
	}
	offset, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Printf("Error parsing offset: %v\n", err)
		return
	}
	text := strings.Join(args[1:], " ")
	if err := r.chain.Replace(offset, []byte(text)); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("OK: replaced at %d with %d bytes\n", offset, len(text))
}

func (r *REPL) cmdCommit() {
	if err := r.chain.Commit(); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Println("OK: committed")
}

func (r *REPL) cmdUndo() {
	pos, ok, err := r.chain.Undo()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if !ok {
		fmt.Println("Nothing to undo")
		return
	}
	fmt.Printf("OK: undone, cursor at %d\n", pos)
}

func (r *REPL) cmdRedo() {
	pos, ok, err := r.chain.Redo()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if !ok {
		fmt.Println("Nothing to redo")
		return
	}
	fmt.Printf("OK: redone, cursor at %d\n", pos)
}

func (r *REPL) cmdSave(args []string) {
	path := r.path
	mode := r.mode

	if len(args) >= 1 && args[0] != "-" {
		path = args[0]
	}
	if len(args) >= 2 {
		m, err := parseSaveMode(args[1])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		mode = m
	}
	if path == "" {
		fmt.Println("Usage: save <path> [mode]")
		return
	}

	if err := r.chain.Save(path, mode); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("OK: saved to %s (%s)\n", path, mode)
}

func (r *REPL) cmdPrint(args []string) {
	start, length := 0, r.chain.Size()

	if len(args) >= 1 {
		v, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Printf("Error parsing start: %v\n", err)
			return
		}
		start = v
		length = r.chain.Size() - start
	}
	if len(args) >= 2 {
		v, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Printf("Error parsing length: %v\n", err)
			return
		}
		length = v
	}

	var out strings.Builder
	err := r.chain.Visit(start, length, func(_ int, data []byte) bool {
		out.Write(data)
		return true
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("%q\n", out.String())
}
