// Command ldbrepl is an interactive shell over a key-value store.
//
// Usage:
//
//	ldbrepl
//
// There are no flags, no configuration file, and no environment
// variables. All interaction happens at the prompt; type 'help' there
// for the instruction set.
package main

import (
	"fmt"
	"os"

	"ldbrepl/internal/repl"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	sess := new(repl.Session)
	loop := repl.NewLoop(sess, os.Stdin, os.Stdout)
	return loop.Run()
}
