package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/joeycumines/go-prompt"
	istrings "github.com/joeycumines/go-prompt/strings"
	"golang.org/x/term"

	"ldbrepl/internal/argv"
	"ldbrepl/internal/command"
)

// Loop reads command lines and dispatches them until exit, interrupt, or
// end of input. On a terminal it runs a go-prompt interface with command
// completion; otherwise it falls back to a plain line reader so piped
// input and tests behave deterministically.
type Loop struct {
	in       io.Reader
	out      io.Writer
	sess     *Session
	shutdown sync.Once
	exit     func(int)
}

// NewLoop returns a loop bound to the session and streams.
func NewLoop(sess *Session, in io.Reader, out io.Writer) *Loop {
	return &Loop{in: in, out: out, sess: sess, exit: os.Exit}
}

// Run prints the banner and processes input until the shell terminates.
// It returns nil on a clean exit and the read error, if any, when input
// ends without one.
func (l *Loop) Run() error {
	fmt.Fprintln(l.out, "LevelDB R.E.P.L.")
	fmt.Fprintln(l.out, "Type 'help' for more information.")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	defer signal.Stop(sig)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		select {
		case <-sig:
			l.interrupt()
		case <-quit:
		}
	}()

	if l.interactive() {
		l.runPrompt()
		// go-prompt can end its own loop (Ctrl-D on an empty line)
		// without the exit command having released anything.
		l.sess.Release()
		return nil
	}
	return l.runReader()
}

func (l *Loop) interactive() bool {
	f, ok := l.in.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// runReader is the non-TTY path: prompt, read, dispatch, repeat. Lines
// are read without a length cap so one oversized value cannot end the
// shell. End of input releases the session and stops the loop.
func (l *Loop) runReader() error {
	r := bufio.NewReader(l.in)
	for {
		fmt.Fprint(l.out, ">>> ")
		line, err := r.ReadString('\n')
		if err != nil && line == "" {
			l.sess.Release()
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		line = strings.TrimSuffix(line, "\n")
		if line == "" {
			continue
		}
		if l.execute(line) {
			return nil
		}
	}
}

// runPrompt is the TTY path. The executor records when a command asked to
// terminate; the exit checker then stops go-prompt after that same input
// line completes. go-prompt consults the exit checker after every key
// event, so the Ctrl-C binding only marks the interrupt: Run unwinds and
// takes the terminal out of raw mode before the funnel ends the process.
func (l *Loop) runPrompt() {
	var done, interrupted bool
	executor := func(line string) {
		if done || line == "" {
			return
		}
		done = l.execute(line)
	}
	p := prompt.New(
		executor,
		prompt.WithPrefix(">>> "),
		prompt.WithTitle("ldbrepl"),
		prompt.WithCompleter(l.complete),
		prompt.WithExitChecker(func(string, bool) bool { return done }),
		prompt.WithKeyBind(prompt.KeyBind{
			Key: prompt.ControlC,
			Fn: func(*prompt.Prompt) bool {
				interrupted = true
				done = true
				return true
			},
		}),
	)
	p.Run()
	if interrupted {
		l.interrupt()
	}
}

// execute tokenizes and dispatches one non-empty line, reporting whether
// the shell should terminate.
func (l *Loop) execute(line string) bool {
	args, err := argv.Args(line)
	if err != nil {
		var syntaxErr *argv.SyntaxError
		if errors.As(err, &syntaxErr) {
			printSyntaxError(l.out, line, syntaxErr.Col)
		} else {
			fmt.Fprintf(l.out, "error: %s\n", err)
		}
		return false
	}
	return Dispatch(args, l.sess, l.out)
}

func (l *Loop) complete(d prompt.Document) ([]prompt.Suggest, istrings.RuneNumber, istrings.RuneNumber) {
	return suggestInstructions(d.TextBeforeCursor())
}

// suggestInstructions suggests instruction names while the first word is
// being typed. Later words are paths, keys, and values; there is nothing
// useful to suggest for them.
func suggestInstructions(before string) ([]prompt.Suggest, istrings.RuneNumber, istrings.RuneNumber) {
	completed, current := argv.BeforeCursor(before)
	end := istrings.RuneNumber(utf8.RuneCountInString(before))
	if len(completed) > 0 {
		return nil, end, end
	}
	start := istrings.RuneNumber(utf8.RuneCountInString(before[:current.Start]))
	var suggestions []prompt.Suggest
	for _, cmd := range command.All() {
		name := cmd.String()
		if strings.HasPrefix(name, current.Text) {
			suggestions = append(suggestions, prompt.Suggest{
				Text:        name,
				Description: command.Meta(cmd).Description,
			})
		}
	}
	return suggestions, start, end
}

// interrupt is the one-shot shutdown funnel shared by the signal handler
// and the interactive Ctrl-C path.
func (l *Loop) interrupt() {
	l.shutdown.Do(func() {
		fmt.Fprintln(l.out, "\nUser Interrupt")
		l.sess.Release()
		l.exit(0)
	})
}

func printSyntaxError(out io.Writer, line string, col int) {
	fmt.Fprintln(out, "error: Expected quotes or double quotes to be closed")
	fmt.Fprintln(out, line)
	fmt.Fprintln(out, strings.Repeat(" ", col)+"^"+strings.Repeat("~", len(line)-col-1))
}
