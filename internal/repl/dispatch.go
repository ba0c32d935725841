package repl

import (
	"fmt"
	"io"

	"ldbrepl/internal/command"
	"ldbrepl/internal/storage"
)

// Dispatch runs one tokenized command line against the session, writing
// all user-visible output to out. args must be non-empty; the loop skips
// empty input before tokenizing. The return value reports whether the
// shell should terminate.
//
// Validation order: name lookup, open-store precondition, argument count.
// A handler never runs unless every gate passed.
func Dispatch(args []string, sess *Session, out io.Writer) bool {
	cmd, ok := command.Lookup(args[0])
	if !ok {
		fmt.Fprintf(out, "Unknown instruction '%s' !\n", args[0])
		return false
	}

	meta := command.Meta(cmd)
	rest := args[1:]

	// Snapshot the store once: an interrupt may release the session at
	// any point, and handlers must act on the state the gates checked.
	store := sess.Store()
	if meta.RequiresOpen && store == nil {
		fmt.Fprintf(out, "error: %s requires Opened Database\n", cmd)
		return false
	}
	if meta.Arity != command.ArityAny && len(rest) != meta.Arity {
		fmt.Fprintf(out, "error: %s expected %d arguments got %d\n", cmd, meta.Arity, len(rest))
		return false
	}

	switch cmd {
	case command.Help:
		printHelp(out)
	case command.Exit:
		sess.Release()
		return true
	case command.Open:
		openStore(sess, rest[0], out)
	case command.Close:
		sess.Release()
		fmt.Fprintln(out, "OK")
	case command.Read:
		readKey(store, rest[0], out)
	case command.Write:
		writeKey(store, rest[0], rest[1], out)
	case command.Dump:
		dumpStore(store, out)
	default:
		panic(fmt.Sprintf("repl: no handler for %v", cmd))
	}
	return false
}

// openStore binds a newly opened store into the session. On failure the
// session keeps whatever was bound before.
func openStore(sess *Session, target string, out io.Writer) {
	store, err := storage.Open(target)
	if err != nil {
		fmt.Fprintf(out, "error: open %s status='%s'\n", target, err)
		return
	}
	sess.Bind(store)
	fmt.Fprintln(out, "OK")
}

func readKey(store storage.Store, key string, out io.Writer) {
	value, err := store.Get([]byte(key))
	if err != nil {
		fmt.Fprintf(out, "error: read %s status='%s'\n", key, err)
		return
	}
	fmt.Fprintf(out, "%s\n", value)
}

func writeKey(store storage.Store, key, value string, out io.Writer) {
	if err := store.Put([]byte(key), []byte(value), true); err != nil {
		fmt.Fprintf(out, "error: write %s %s status='%s'\n", key, value, err)
		return
	}
	fmt.Fprintln(out, "OK")
}

func dumpStore(store storage.Store, out io.Writer) {
	it := store.Iter()
	defer it.Release()
	for it.Next() {
		fmt.Fprintf(out, "%s: %s\n", it.Key(), it.Value())
	}
	if err := it.Err(); err != nil {
		fmt.Fprintf(out, "error: dump status='%s'\n", err)
	}
}

const helpRowFormat = "%-15s%-20s%-20s\n"

func printHelp(out io.Writer) {
	fmt.Fprint(out, "Help\n\n")
	fmt.Fprintln(out, "Input format is: <instruction> <args>")
	fmt.Fprint(out, "Example: open ./database.ldb\n\n")
	fmt.Fprintf(out, helpRowFormat, "Instruction", "Arguments", "Description")
	for _, cmd := range command.All() {
		meta := command.Meta(cmd)
		fmt.Fprintf(out, helpRowFormat, cmd.String(), meta.ArgHint, meta.Description)
	}
}
