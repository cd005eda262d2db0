package internal

import (
	"bufio"
	"io"

	"github.com/xiaobogaga/jackc/util"
)

// A pull based tokenizer for jack. It keeps one token of lookahead: Current is the token
// the parser is looking at and Next is the one after it, which is enough to tell `a`
// from `a[`, `a(` and `a.`.

// cursor walks the source line by line, the way a bufio.Reader hands lines out.
type cursor struct {
	rd     *bufio.Reader
	line   []byte
	pos    int
	lineNo int
	eof    bool
	err    error
}

// mark is a position saved by checkpoint. A mark is only valid inside the line it was
// taken on, which is all the comment check needs since `/` is never the last byte of a
// line except at end of input.
type mark struct {
	line   []byte
	pos    int
	lineNo int
}

func newCursor(rd io.Reader) *cursor {
	return &cursor{rd: bufio.NewReader(rd)}
}

func (c *cursor) readLine() {
	line, err := c.rd.ReadBytes('\n')
	if err != nil {
		if err != io.EOF {
			c.err = err
			return
		}
		c.eof = true
	}
	c.line, c.pos = line, 0
	if len(line) > 0 {
		c.lineNo++
	}
}

// peek returns the byte under the cursor without consuming it, loading the next line
// when the current one is exhausted.
func (c *cursor) peek() (byte, bool) {
	for c.pos >= len(c.line) {
		if c.eof || c.err != nil {
			return 0, false
		}
		c.readLine()
	}
	return c.line[c.pos], true
}

func (c *cursor) read() (byte, bool) {
	b, ok := c.peek()
	if ok {
		c.pos++
	}
	return b, ok
}

func (c *cursor) skipLine() {
	c.pos = len(c.line)
}

func (c *cursor) checkpoint() mark {
	return mark{line: c.line, pos: c.pos, lineNo: c.lineNo}
}

func (c *cursor) rewind(m mark) {
	c.line, c.pos, c.lineNo = m.line, m.pos, m.lineNo
}

type Tokenizer struct {
	src     *cursor
	current Token
	next    Token
	primed  bool
}

func NewTokenizer(rd io.Reader) *Tokenizer {
	return &Tokenizer{src: newCursor(rd)}
}

// Advance moves to the next token. The first call reads both the current and the next
// token. Once the input is exhausted the current token is the empty token.
func (tokenizer *Tokenizer) Advance() error {
	if !tokenizer.primed {
		tokenizer.primed = true
		current, err := tokenizer.getNextToken()
		if err != nil {
			return err
		}
		tokenizer.current = current
	} else {
		tokenizer.current = tokenizer.next
	}
	if tokenizer.current.IsEmpty() {
		tokenizer.next = Token{}
		return nil
	}
	next, err := tokenizer.getNextToken()
	if err != nil {
		return err
	}
	tokenizer.next = next
	return nil
}

func (tokenizer *Tokenizer) Current() Token {
	return tokenizer.current
}

func (tokenizer *Tokenizer) Next() Token {
	return tokenizer.next
}

func (tokenizer *Tokenizer) HasMoreTokens() bool {
	return !tokenizer.next.IsEmpty()
}

// Line is the line of the current token, or the last line read at end of input.
func (tokenizer *Tokenizer) Line() int {
	if tokenizer.current.IsEmpty() {
		return tokenizer.src.lineNo
	}
	return tokenizer.current.Line
}

// getNextToken returns the next token from the source, or the empty token at end of input.
func (tokenizer *Tokenizer) getNextToken() (Token, error) {
	err := tokenizer.skipSpaceAndComments()
	if err != nil {
		return Token{}, err
	}
	b, ok := tokenizer.src.peek()
	if !ok {
		return Token{}, tokenizer.src.err
	}
	switch {
	case b == stringDelimiter:
		return tokenizer.tokenString()
	case util.IsNumber(b):
		return tokenizer.tokenNumber()
	case util.IsLetterOrUnderscore(b):
		return tokenizer.tokenKeywordOrIdentifier()
	default:
		return tokenizer.tokenSymbol(), nil
	}
}

// skipSpaceAndComments steps over white space and comments. A `/` only starts a comment
// when followed by `/` or `*`, otherwise the cursor is rewound so it is read as the
// divide symbol.
func (tokenizer *Tokenizer) skipSpaceAndComments() error {
	src := tokenizer.src
	for {
		b, ok := src.peek()
		if !ok {
			return src.err
		}
		if util.IsSpace(b) {
			src.read()
			continue
		}
		if b != '/' {
			return nil
		}
		m := src.checkpoint()
		src.read()
		n, ok := src.peek()
		switch {
		case ok && n == '/':
			src.skipLine()
			continue
		case ok && n == '*':
			src.read()
			err := tokenizer.skipBlockComment(m.lineNo)
			if err != nil {
				return err
			}
			continue
		}
		src.rewind(m)
		return nil
	}
}

// skipBlockComment consumes up to and including the closing `*/`, across lines.
func (tokenizer *Tokenizer) skipBlockComment(startLine int) error {
	prevStar := false
	for {
		b, ok := tokenizer.src.read()
		if !ok {
			if tokenizer.src.err != nil {
				return tokenizer.src.err
			}
			return tokenizer.makeError("/*", startLine, "incorrect comment format, missing */")
		}
		if prevStar && b == '/' {
			return nil
		}
		prevStar = b == '*'
	}
}

func (tokenizer *Tokenizer) tokenString() (Token, error) {
	src := tokenizer.src
	line := src.lineNo
	src.read()
	text := []byte{stringDelimiter}
	for {
		b, ok := src.read()
		if !ok || b == '\n' {
			if src.err != nil {
				return Token{}, src.err
			}
			return Token{}, tokenizer.makeError(string(text), line, "incorrect string format, missing closing quote")
		}
		text = append(text, b)
		if b == stringDelimiter {
			return newToken(string(text), line), nil
		}
	}
}

func (tokenizer *Tokenizer) tokenNumber() (Token, error) {
	src := tokenizer.src
	line := src.lineNo
	var text []byte
	for {
		b, ok := src.peek()
		if !ok || !util.IsNumber(b) {
			break
		}
		text = append(text, b)
		src.read()
	}
	// A number glued to letters is not a valid identifier either.
	if b, ok := src.peek(); ok && util.IsLetterOrUnderscore(b) {
		return Token{}, tokenizer.makeError(string(append(text, b)), line, "incorrect identifier format")
	}
	return newToken(string(text), line), nil
}

func (tokenizer *Tokenizer) tokenKeywordOrIdentifier() (Token, error) {
	src := tokenizer.src
	line := src.lineNo
	var text []byte
	for {
		b, ok := src.peek()
		if !ok || !util.IsLetterOrUnderscoreOrNumber(b) {
			break
		}
		text = append(text, b)
		src.read()
	}
	return newToken(string(text), line), nil
}

func (tokenizer *Tokenizer) tokenSymbol() Token {
	line := tokenizer.src.lineNo
	b, _ := tokenizer.src.read()
	return newToken(string(b), line)
}

func (tokenizer *Tokenizer) makeError(near string, line int, msg string) error {
	return &LexError{Near: near, Line: line, Msg: msg}
}
