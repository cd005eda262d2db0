package internal

import "fmt"

// LexError aborts tokenization: an unterminated string constant, end of input inside a
// block comment or a malformed number.
type LexError struct {
	Near string
	Line int
	Msg  string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("Tokenizer: tokenizer error near %s at line %d, msg: %s", e.Near, e.Line, e.Msg)
}

// ParseError reports a token the grammar does not allow at this point, including end
// of input before a construct's terminator.
type ParseError struct {
	Near string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("Parser: syntax error near %s at line %d, msg: %s", e.Near, e.Line, e.Msg)
}

// SymbolError reports an identifier that is neither in the subroutine nor the class scope.
type SymbolError struct {
	Name string
	Line int
	Msg  string
}

func (e *SymbolError) Error() string {
	return fmt.Sprintf("Compiler: unresolved symbol %s at line %d, msg: %s", e.Name, e.Line, e.Msg)
}
