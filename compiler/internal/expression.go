package internal

import (
	"golang.org/x/exp/slices"

	"github.com/xiaobogaga/jackc/vm"
)

const maxIntConstant = 32767

type Operator int

const (
	AddOp Operator = iota
	SubOp
	MulOp
	DivOp
	AndOp
	OrOp
	LessOp
	GreaterOp
	EqualOp
	NegOp
	NotOp
)

var binaryOperators = map[string]Operator{
	"+": AddOp,
	"-": SubOp,
	"*": MulOp,
	"/": DivOp,
	"&": AndOp,
	"|": OrOp,
	"<": LessOp,
	">": GreaterOp,
	"=": EqualOp,
}

var unaryOperators = map[string]Operator{
	"-": NegOp,
	"~": NotOp,
}

var operatorCommands = map[Operator]vm.Arithmetic{
	AddOp:     vm.Add,
	SubOp:     vm.Sub,
	AndOp:     vm.And,
	OrOp:      vm.Or,
	LessOp:    vm.Lt,
	GreaterOp: vm.Gt,
	EqualOp:   vm.Eq,
	NegOp:     vm.Neg,
	NotOp:     vm.Not,
}

func operatorOf(token Token, table map[string]Operator) (Operator, bool) {
	if token.Kind != SymbolTokenKind {
		return 0, false
	}
	op, ok := table[token.Text]
	return op, ok
}

// The vm has no multiply or divide, those go through the OS Math class.
func (engine *CompilationEngine) writeOperator(op Operator) {
	switch op {
	case MulOp:
		engine.writer.WriteCall("Math.multiply", 2)
	case DivOp:
		engine.writer.WriteCall("Math.divide", 2)
	default:
		engine.writer.WriteArithmetic(operatorCommands[op])
	}
}

type TermKind int

const (
	IntegerTerm TermKind = iota
	StringTerm
	KeywordTerm
	VariableTerm
	ArrayTerm
	CallTerm
	ParenthesizedTerm
	UnaryTerm
)

var keywordConstants = []string{"true", "false", "null", "this"}

// term (op term)*
//
// Jack has no operator priority, an expression is evaluated left to right. Each
// operator is written as soon as its right operand is on the stack: for a - b + c this
// emits a b sub c add.
func (engine *CompilationEngine) compileExpression() error {
	_, err := engine.compileTerm()
	if err != nil {
		return err
	}
	for {
		op, ok := operatorOf(engine.current(), binaryOperators)
		if !ok {
			return nil
		}
		err = engine.advance()
		if err != nil {
			return err
		}
		_, err = engine.compileTerm()
		if err != nil {
			return err
		}
		engine.writeOperator(op)
	}
}

// integerConstant | stringConstant | keywordConstant | varName | varName [ expression ] |
// subroutineCall | ( expression ) | unaryOp term
//
// A `-` met here always starts a term, so it is the unary negation. The binary
// subtraction is consumed by compileExpression between two terms.
func (engine *CompilationEngine) compileTerm() (TermKind, error) {
	token := engine.current()
	switch {
	case token.Kind == IntConstantKind:
		value, err := token.IntValue()
		if err != nil || value > maxIntConstant {
			return IntegerTerm, engine.makeError("integer constant out of range 0..32767")
		}
		engine.writer.WritePush(vm.ConstantSegment, value)
		return IntegerTerm, engine.advance()
	case token.Kind == StringConstantKind:
		engine.compileStringConstant(token.StringValue())
		return StringTerm, engine.advance()
	case token.Kind == KeywordKind && slices.Contains(keywordConstants, token.Text):
		engine.compileKeywordConstant(token.Text)
		return KeywordTerm, engine.advance()
	case token.Is("("):
		err := engine.compileCondition()
		return ParenthesizedTerm, err
	case token.Kind == IdentifierKind:
		return engine.compileIdentifierTerm()
	}
	if op, ok := operatorOf(token, unaryOperators); ok {
		err := engine.advance()
		if err != nil {
			return UnaryTerm, err
		}
		_, err = engine.compileTerm()
		if err != nil {
			return UnaryTerm, err
		}
		engine.writeOperator(op)
		return UnaryTerm, nil
	}
	return 0, engine.makeError("expected a term")
}

// varName | varName [ expression ] | subroutineCall, told apart by the next token.
func (engine *CompilationEngine) compileIdentifierTerm() (TermKind, error) {
	token := engine.current()
	next := engine.tokenizer.Next()
	err := engine.advance()
	if err != nil {
		return 0, err
	}
	if next.Is("(") || next.Is(".") {
		return CallTerm, engine.compileSubroutineCall(token)
	}
	symbol, err := engine.resolveVariable(token)
	if err != nil {
		return 0, err
	}
	if !next.Is("[") {
		engine.pushSymbol(symbol)
		return VariableTerm, nil
	}
	err = engine.compileArrayAddress(symbol)
	if err != nil {
		return ArrayTerm, err
	}
	engine.writer.WritePop(vm.PointerSegment, 1)
	engine.writer.WritePush(vm.ThatSegment, 0)
	return ArrayTerm, nil
}

// true is -1, i.e. not 0. false and null are 0.
func (engine *CompilationEngine) compileKeywordConstant(keyword string) {
	switch keyword {
	case "true":
		engine.writer.WritePush(vm.ConstantSegment, 0)
		engine.writer.WriteArithmetic(vm.Not)
	case "this":
		engine.writer.WritePush(vm.PointerSegment, 0)
	default:
		engine.writer.WritePush(vm.ConstantSegment, 0)
	}
}

// A string constant builds a new String object one character at a time, appendChar
// returns the string so it stays on the stack.
func (engine *CompilationEngine) compileStringConstant(str string) {
	engine.writer.WritePush(vm.ConstantSegment, len(str))
	engine.writer.WriteCall("String.new", 1)
	for i := 0; i < len(str); i++ {
		engine.writer.WritePush(vm.ConstantSegment, int(str[i]))
		engine.writer.WriteCall("String.appendChar", 2)
	}
}

// subroutineName ( expressionList ) | (className|varName) . subroutineName ( expressionList )
// The current token is the one after the first identifier, callee.
func (engine *CompilationEngine) compileSubroutineCall(callee Token) error {
	var name string
	nArgs := 0
	switch {
	case engine.current().Is("("):
		// A bare call is a method call on the current object.
		engine.writer.WritePush(vm.PointerSegment, 0)
		name, nArgs = engine.className+"."+callee.Text, 1
	case engine.current().Is("."):
		err := engine.advance()
		if err != nil {
			return err
		}
		method, err := engine.expectIdentifier()
		if err != nil {
			return err
		}
		qualifier, isObject, err := engine.resolveCallQualifier(callee)
		if err != nil {
			return err
		}
		if isObject {
			nArgs = 1
		}
		name = qualifier + "." + method
	default:
		return engine.makeError("expected ( or .")
	}
	err := engine.expect("(")
	if err != nil {
		return err
	}
	n, err := engine.compileExpressionList()
	if err != nil {
		return err
	}
	err = engine.expect(")")
	if err != nil {
		return err
	}
	engine.writer.WriteCall(name, n+nArgs)
	return nil
}

// resolveCallQualifier decides what the x in x.f() is. A variable is pushed as the
// object the method runs on and the call is qualified with its declared type. Anything
// else is taken as a class name, in strict mode only the current class and the
// external classes are accepted.
func (engine *CompilationEngine) resolveCallQualifier(qualifier Token) (string, bool, error) {
	resolution := engine.scopes.Resolve(qualifier.Text)
	switch resolution.Scope {
	case SubroutineScope, ClassScope:
		engine.pushSymbol(resolution.Symbol)
		return resolution.Symbol.Type, true, nil
	case Unresolved:
		if engine.strict && qualifier.Text != engine.className && !slices.Contains(engine.externalClasses, qualifier.Text) {
			return "", false, &SymbolError{Name: qualifier.Text, Line: qualifier.Line,
				Msg: "neither a variable nor a known class"}
		}
	}
	return qualifier.Text, false, nil
}

// (expression (, expression)*)?, returns the number of expressions.
func (engine *CompilationEngine) compileExpressionList() (int, error) {
	if engine.current().Is(")") {
		return 0, nil
	}
	n := 0
	for {
		err := engine.compileExpression()
		if err != nil {
			return n, err
		}
		n++
		if !engine.current().Is(",") {
			return n, nil
		}
		err = engine.advance()
		if err != nil {
			return n, err
		}
	}
}
