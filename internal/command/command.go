// Package command defines the closed set of repl instructions and their
// static metadata: argument arity, argument hints for help output, and
// whether the instruction requires an open store.
package command

import "fmt"

// Command identifies a repl instruction. The zero value is Help.
type Command uint8

// Declaration order is the display order of help output.
const (
	Help Command = iota
	Exit
	Open
	Close
	Read
	Write
	Dump
)

// ArityAny disables argument-count checking for a command.
const ArityAny = -1

// Metadata describes the static properties of a command.
type Metadata struct {
	// Description is the one-line help text.
	Description string

	// ArgHint names the expected arguments for help output, e.g. "key value".
	// Empty when the command takes none.
	ArgHint string

	// Arity is the exact number of arguments required, or ArityAny.
	Arity int

	// RequiresOpen marks commands that need an open store before running.
	RequiresOpen bool
}

// String returns the instruction name as typed at the prompt.
func (c Command) String() string {
	switch c {
	case Help:
		return "help"
	case Exit:
		return "exit"
	case Open:
		return "open"
	case Close:
		return "close"
	case Read:
		return "read"
	case Write:
		return "write"
	case Dump:
		return "dump"
	}
	return fmt.Sprintf("Command(%d)", uint8(c))
}

// Lookup resolves an instruction name to its Command. Matching is
// case-sensitive. The second result reports whether the name is known.
func Lookup(name string) (Command, bool) {
	switch name {
	case "help":
		return Help, true
	case "exit":
		return Exit, true
	case "open":
		return Open, true
	case "close":
		return Close, true
	case "read":
		return Read, true
	case "write":
		return Write, true
	case "dump":
		return Dump, true
	}
	return 0, false
}

// Meta returns the static metadata for a command. It panics on values
// outside the declared set, which indicates a bug in the caller.
func Meta(c Command) Metadata {
	switch c {
	case Help:
		return Metadata{Description: "Print this help message"}
	case Exit:
		return Metadata{Description: "Exit the repl"}
	case Open:
		return Metadata{Description: "Open database", ArgHint: "path", Arity: 1}
	case Close:
		return Metadata{Description: "Close database", RequiresOpen: true}
	case Read:
		return Metadata{Description: "Read value from database", ArgHint: "key", Arity: 1, RequiresOpen: true}
	case Write:
		return Metadata{Description: "Write value to database", ArgHint: "key value", Arity: 2, RequiresOpen: true}
	case Dump:
		return Metadata{Description: "Dump whole database", RequiresOpen: true}
	}
	panic(fmt.Sprintf("command: no metadata for %v", c))
}

// All returns every command in display order.
func All() []Command {
	return []Command{Help, Exit, Open, Close, Read, Write, Dump}
}
