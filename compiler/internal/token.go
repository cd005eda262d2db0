package internal

import (
	"strconv"
	"strings"

	"github.com/xiaobogaga/jackc/util"
)

// Jack language has those elements:
// * KeyWord: class, constructor, function, method, field, static, var, int, char, boolean, void, true.
// 			false, null, this, let, do, if, else, while, return.
// * Symbol: {, }, (, ), [, ], ., ,, ;, +, -, *, /, &, |, <, >, =, ~.
// * Constant: integer (0..32767), string ("xxx").
// * Identifier: letters, digits, underscore, not starting with a digit.
// * Comment: /**/, /***/, //.

type TokenKind int

const (
	NoneKind TokenKind = iota // the empty token at end of input
	KeywordKind
	SymbolTokenKind
	IdentifierKind
	IntConstantKind
	StringConstantKind
)

func (k TokenKind) String() string {
	switch k {
	case KeywordKind:
		return "keyword"
	case SymbolTokenKind:
		return "symbol"
	case IdentifierKind:
		return "identifier"
	case IntConstantKind:
		return "integerConstant"
	case StringConstantKind:
		return "stringConstant"
	}
	return "none"
}

var keywords = map[string]bool{
	"class":       true,
	"constructor": true,
	"function":    true,
	"method":      true,
	"field":       true,
	"static":      true,
	"var":         true,
	"int":         true,
	"char":        true,
	"boolean":     true,
	"void":        true,
	"true":        true,
	"false":       true,
	"null":        true,
	"this":        true,
	"let":         true,
	"do":          true,
	"if":          true,
	"else":        true,
	"while":       true,
	"return":      true,
}

const stringDelimiter = '"'

// Token is an immutable lexeme. Text is the raw source form, string constants keep
// their quotes.
type Token struct {
	Text string
	Kind TokenKind
	Line int
}

// ClassifyToken derives the kind of a token from its text.
func ClassifyToken(text string) TokenKind {
	switch {
	case len(text) == 0:
		return NoneKind
	case text[0] == stringDelimiter:
		return StringConstantKind
	case keywords[text]:
		return KeywordKind
	case util.AllNumbers(text):
		return IntConstantKind
	case util.AllLetterOrUnderscoreOrNumber(text):
		return IdentifierKind
	}
	return SymbolTokenKind
}

func newToken(text string, line int) Token {
	return Token{Text: text, Kind: ClassifyToken(text), Line: line}
}

func (t Token) IsEmpty() bool {
	return len(t.Text) == 0
}

// Is reports whether the token is the keyword or symbol text.
func (t Token) Is(text string) bool {
	return (t.Kind == KeywordKind || t.Kind == SymbolTokenKind) && t.Text == text
}

// StringValue returns a string constant without its quotes.
func (t Token) StringValue() string {
	return strings.TrimSuffix(strings.TrimPrefix(t.Text, string(stringDelimiter)), string(stringDelimiter))
}

func (t Token) IntValue() (int, error) {
	return strconv.Atoi(t.Text)
}

func (t Token) String() string {
	if t.IsEmpty() {
		return "<end of input>"
	}
	return t.Text
}
