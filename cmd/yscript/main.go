// Command yscript is the reference CLI driver (spec.md §6): a REPL when
// invoked with no arguments, a single-file runner when given one, and
// nothing else — module systems, flags, and a host config format are all
// out of scope. Exit codes: 0 ok, 64 usage error, 65 compile error, 70
// runtime error, 74 I/O failure.
package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/yscript-lang/yscript/internal/natives"
	"github.com/yscript-lang/yscript/internal/vm"
)

const (
	exitOK           = 0
	exitCompileError = 65
	exitRuntimeError = 70
	exitIOFailure    = 74
)

func main() {
	switch len(os.Args) {
	case 1:
		os.Exit(repl())
	case 2:
		os.Exit(runFile(os.Args[1]))
	default:
		fmt.Fprintln(os.Stderr, "Usage: yscript [path]")
		os.Exit(64)
	}
}

func newVM() *vm.VM {
	v := vm.NewVM()
	natives.Register(v)
	return v
}

// repl reads lines from stdin until EOF, interpreting each against one
// long-lived VM so top-level vars/functions/classes persist across lines
// (spec.md §6 "zero args ⇒ REPL reading lines until EOF").
func repl() int {
	v := newVM()
	defer v.FreeVM()

	scanner := bufio.NewScanner(os.Stdin)
	prompt := isatty.IsTerminal(os.Stdin.Fd())

	for {
		if prompt {
			fmt.Print("> ")
		}
		if !scanner.Scan() {
			break
		}
		v.Interpret(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitIOFailure
	}
	return exitOK
}

func runFile(path string) int {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitIOFailure
	}

	v := newVM()
	defer v.FreeVM()

	switch v.Interpret(string(source)) {
	case vm.InterpretCompileError:
		return exitCompileError
	case vm.InterpretRuntimeError:
		return exitRuntimeError
	default:
		return exitOK
	}
}
