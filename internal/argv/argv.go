package argv

import "fmt"

// Token is one word of a command line, with the byte offsets of the word in
// the original input. Text is the word's content, with exactly one byte
// removed at each end when Quoted is set; Start and End always span the raw
// word, quotes included.
type Token struct {
	Text   string
	Start  int
	End    int
	Quoted bool
}

// SyntaxError reports a quoted run left open at the end of an input line.
// Col is the 0-based byte column of the quote character that opened the run.
type SyntaxError struct {
	Col int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("unterminated quote starting at column %d", e.Col)
}

// Parse splits line into tokens. The rules are deliberately narrower than
// POSIX and must stay that way:
//   - A word boundary is an unquoted space (0x20). Tabs and other whitespace
//     are ordinary characters.
//   - A quote character ('"' or '\'') toggles a quoted run wherever it
//     appears, including mid-word; the other quote character inside a run is
//     literal. Spaces inside a run do not split.
//   - When a run closes with its matching quote, the finalized word is
//     stripped of exactly one byte at each end.
//   - Every boundary finalizes the pending word span, so consecutive spaces
//     produce empty tokens, and the trailing word is emitted even when empty.
//   - A run still open at the end of the line fails with a *SyntaxError and
//     no tokens.
//
// Parse("") yields a single empty token; callers that treat blank input as
// "nothing entered" must check before calling.
func Parse(line string) ([]Token, error) {
	return parse(line, false)
}

// Args is Parse reduced to the token texts.
func Args(line string) ([]string, error) {
	tokens, err := Parse(line)
	if err != nil {
		return nil, err
	}
	args := make([]string, len(tokens))
	for i, t := range tokens {
		args[i] = t.Text
	}
	return args, nil
}

// BeforeCursor tokenizes the text before a cursor, for completion
// positioning. It never fails: a quoted run left open simply extends the
// final word, which is returned raw, without quote stripping. Completed words
// come back as plain texts; the word under the cursor comes back as a Token
// so callers can map its span to a replacement range.
func BeforeCursor(s string) (completed []string, current Token) {
	tokens, _ := parse(s, true)
	for _, t := range tokens[:len(tokens)-1] {
		completed = append(completed, t.Text)
	}
	return completed, tokens[len(tokens)-1]
}

// parse scans line left to right in a single pass over bytes; the quote and
// space characters it switches on cannot occur inside a multi-byte UTF-8
// sequence. In tolerant mode an unterminated run finalizes the trailing word
// as-is instead of failing, so the result is never empty.
func parse(line string, tolerant bool) ([]Token, error) {
	var (
		tokens   []Token
		pos      int  // start of the pending word span
		inRun    bool // inside a quoted run
		quote    byte // quote character that opened the active run
		quoteCol int  // where the active run opened, for diagnostics
		strip    bool // a matching pair closed within the pending word
	)
	for i := 0; i < len(line); i++ {
		switch c := line[i]; c {
		case '"', '\'':
			if inRun {
				if c != quote {
					// The other quote type nests as a literal.
					continue
				}
				strip = true
			} else {
				quote = c
				quoteCol = i
			}
			inRun = !inRun
		case ' ':
			if inRun {
				continue
			}
			tokens = append(tokens, word(line, pos, i, strip))
			pos = i + 1
			strip = false
		}
	}
	if inRun {
		if !tolerant {
			return nil, &SyntaxError{Col: quoteCol}
		}
		strip = false
	}
	return append(tokens, word(line, pos, len(line), strip)), nil
}

// word finalizes the span [start, end) of line. A stripped word loses its
// first and last byte, whatever they are; strip is only ever set once a quote
// pair has closed inside the span, which guarantees end-start >= 2.
func word(line string, start, end int, strip bool) Token {
	text := line[start:end]
	if strip {
		text = line[start+1 : end-1]
	}
	return Token{Text: text, Start: start, End: end, Quoted: strip}
}
