package repl

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ldbrepl/internal/argv"
	"ldbrepl/internal/storage"
)

// dispatchLine tokenizes one line and dispatches it, returning the
// captured output and the terminate flag.
func dispatchLine(t *testing.T, sess *Session, line string) (string, bool) {
	t.Helper()
	args, err := argv.Args(line)
	require.NoError(t, err)
	var buf bytes.Buffer
	terminate := Dispatch(args, sess, &buf)
	return buf.String(), terminate
}

func TestDispatch_UnknownInstruction(t *testing.T) {
	t.Parallel()
	var sess Session
	for _, tc := range []struct {
		Args []string
		Want string
	}{
		{[]string{"bogus"}, "Unknown instruction 'bogus' !\n"},
		{[]string{"OPEN", "x"}, "Unknown instruction 'OPEN' !\n"},
		{[]string{""}, "Unknown instruction '' !\n"},
	} {
		var buf bytes.Buffer
		terminate := Dispatch(tc.Args, &sess, &buf)
		assert.False(t, terminate)
		assert.Equal(t, tc.Want, buf.String())
	}
}

func TestDispatch_PreconditionCheckedBeforeArity(t *testing.T) {
	t.Parallel()
	var sess Session
	// Correct arity or not, the closed session must be reported first.
	for _, line := range []string{"read key1", "read", "read a b", "write onlyonearg", "dump x", "close x"} {
		cmd, _, _ := strings.Cut(line, " ")
		out, terminate := dispatchLine(t, &sess, line)
		assert.False(t, terminate)
		assert.Equal(t, "error: "+cmd+" requires Opened Database\n", out, "line %q", line)
	}
	assert.Nil(t, sess.Store())
}

func TestDispatch_ArityMismatch(t *testing.T) {
	t.Parallel()
	var sess Session
	out, _ := dispatchLine(t, &sess, "open memory:")
	require.Equal(t, "OK\n", out)
	defer sess.Release()

	for _, tc := range []struct {
		Line string
		Want string
	}{
		{"open", "error: open expected 1 arguments got 0\n"},
		{"open a b", "error: open expected 1 arguments got 2\n"},
		{"write onlyonearg", "error: write expected 2 arguments got 1\n"},
		{"write a b c", "error: write expected 2 arguments got 3\n"},
		{"read k extra", "error: read expected 1 arguments got 2\n"},
		{"read", "error: read expected 1 arguments got 0\n"},
		{"help x", "error: help expected 0 arguments got 1\n"},
		{"exit x", "error: exit expected 0 arguments got 1\n"},
		{"close x", "error: close expected 0 arguments got 1\n"},
		{"dump x", "error: dump expected 0 arguments got 1\n"},
	} {
		out, terminate := dispatchLine(t, &sess, tc.Line)
		assert.False(t, terminate, "line %q", tc.Line)
		assert.Equal(t, tc.Want, out, "line %q", tc.Line)
	}
}

func TestDispatch_RoundTrip(t *testing.T) {
	t.Parallel()
	var sess Session
	defer sess.Release()

	out, terminate := dispatchLine(t, &sess, "open memory:")
	assert.False(t, terminate)
	assert.Equal(t, "OK\n", out)

	out, _ = dispatchLine(t, &sess, "write greeting hello")
	assert.Equal(t, "OK\n", out)

	out, _ = dispatchLine(t, &sess, "read greeting")
	assert.Equal(t, "hello\n", out)

	out, _ = dispatchLine(t, &sess, `write "spaced key" 'spaced value'`)
	assert.Equal(t, "OK\n", out)

	out, _ = dispatchLine(t, &sess, `read "spaced key"`)
	assert.Equal(t, "spaced value\n", out)
}

func TestDispatch_RoundTripLevelDB(t *testing.T) {
	t.Parallel()
	var sess Session
	defer sess.Release()
	path := filepath.Join(t.TempDir(), "db.ldb")

	out, _ := dispatchLine(t, &sess, "open "+path)
	require.Equal(t, "OK\n", out)

	out, _ = dispatchLine(t, &sess, "write k v")
	assert.Equal(t, "OK\n", out)

	out, _ = dispatchLine(t, &sess, "read k")
	assert.Equal(t, "v\n", out)

	out, _ = dispatchLine(t, &sess, "dump")
	assert.Equal(t, "k: v\n", out)

	out, _ = dispatchLine(t, &sess, "close")
	assert.Equal(t, "OK\n", out)
}

func TestDispatch_DumpEmitsEachPairOnce(t *testing.T) {
	t.Parallel()
	var sess Session
	defer sess.Release()
	dispatchLine(t, &sess, "open memory:")
	dispatchLine(t, &sess, "write b 2")
	dispatchLine(t, &sess, "write a 1")

	want := "a: 1\nb: 2\n"
	out, _ := dispatchLine(t, &sess, "dump")
	assert.Equal(t, want, out)

	// Repeated dumps must not duplicate pairs.
	out, _ = dispatchLine(t, &sess, "dump")
	assert.Equal(t, want, out)
}

func TestDispatch_ReadMissingKey(t *testing.T) {
	t.Parallel()
	var sess Session
	defer sess.Release()
	dispatchLine(t, &sess, "open memory:")

	out, terminate := dispatchLine(t, &sess, "read nope")
	assert.False(t, terminate)
	assert.Equal(t, "error: read nope status='not found'\n", out)
}

func TestDispatch_OpenFailureKeepsSession(t *testing.T) {
	t.Parallel()
	// A regular file where the default driver expects a directory.
	path := filepath.Join(t.TempDir(), "occupied")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	var sess Session
	store := newSpyStore()
	sess.Bind(store)
	defer sess.Release()

	out, terminate := dispatchLine(t, &sess, "open "+path)
	assert.False(t, terminate)
	assert.True(t, strings.HasPrefix(out, "error: open "+path+" status='"), "output %q", out)
	assert.Zero(t, store.closes)
	assert.Same(t, storage.Store(store), sess.Store())
}

func TestDispatch_ReopenReleasesPrevious(t *testing.T) {
	t.Parallel()
	var sess Session
	store := newSpyStore()
	sess.Bind(store)
	defer sess.Release()

	out, _ := dispatchLine(t, &sess, "open memory:")
	assert.Equal(t, "OK\n", out)
	assert.Equal(t, 1, store.closes)
	assert.NotNil(t, sess.Store())
	assert.NotSame(t, storage.Store(store), sess.Store())
}

func TestDispatch_CloseReleasesStore(t *testing.T) {
	t.Parallel()
	var sess Session
	store := newSpyStore()
	sess.Bind(store)

	out, terminate := dispatchLine(t, &sess, "close")
	assert.False(t, terminate)
	assert.Equal(t, "OK\n", out)
	assert.Equal(t, 1, store.closes)
	assert.Nil(t, sess.Store())
}

func TestDispatch_CloseWhenClosedReportsPrecondition(t *testing.T) {
	t.Parallel()
	var sess Session
	out, terminate := dispatchLine(t, &sess, "close")
	assert.False(t, terminate)
	assert.Equal(t, "error: close requires Opened Database\n", out)
}

func TestDispatch_ExitReleasesAndTerminates(t *testing.T) {
	t.Parallel()
	var sess Session
	store := newSpyStore()
	sess.Bind(store)

	out, terminate := dispatchLine(t, &sess, "exit")
	assert.True(t, terminate)
	assert.Empty(t, out)
	assert.Equal(t, 1, store.closes)
	assert.Nil(t, sess.Store())
}

func TestDispatch_ExitWhenClosedTerminates(t *testing.T) {
	t.Parallel()
	var sess Session
	out, terminate := dispatchLine(t, &sess, "exit")
	assert.True(t, terminate)
	assert.Empty(t, out)
}

func TestDispatch_HelpListing(t *testing.T) {
	t.Parallel()
	pad := func(s string, width int) string {
		for len(s) < width {
			s += " "
		}
		return s
	}
	row := func(name, args, desc string) string {
		return pad(name, 15) + pad(args, 20) + pad(desc, 20) + "\n"
	}
	want := "Help\n\n" +
		"Input format is: <instruction> <args>\n" +
		"Example: open ./database.ldb\n\n" +
		row("Instruction", "Arguments", "Description") +
		row("help", "", "Print this help message") +
		row("exit", "", "Exit the repl") +
		row("open", "path", "Open database") +
		row("close", "", "Close database") +
		row("read", "key", "Read value from database") +
		row("write", "key value", "Write value to database") +
		row("dump", "", "Dump whole database")

	var sess Session
	out, terminate := dispatchLine(t, &sess, "help")
	assert.False(t, terminate)
	assert.Equal(t, want, out)
}
