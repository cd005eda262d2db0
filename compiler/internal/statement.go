package internal

import (
	"github.com/xiaobogaga/jackc/vm"
)

type StatementKind int

const (
	LetStatement StatementKind = iota
	IfStatement
	WhileStatement
	DoStatement
	ReturnStatement
)

func (k StatementKind) String() string {
	switch k {
	case LetStatement:
		return "let"
	case IfStatement:
		return "if"
	case WhileStatement:
		return "while"
	case DoStatement:
		return "do"
	case ReturnStatement:
		return "return"
	}
	return "unknown"
}

// statementKinds is the dispatch table from the leading keyword of a statement.
var statementKinds = map[string]StatementKind{
	"let":    LetStatement,
	"if":     IfStatement,
	"while":  WhileStatement,
	"do":     DoStatement,
	"return": ReturnStatement,
}

func statementKindOf(token Token) (StatementKind, bool) {
	if token.Kind != KeywordKind {
		return 0, false
	}
	kind, ok := statementKinds[token.Text]
	return kind, ok
}

// statement*, returns the number of statements compiled.
func (engine *CompilationEngine) compileStatements() (int, error) {
	compiled := 0
	for {
		if _, ok := statementKindOf(engine.current()); !ok {
			return compiled, nil
		}
		_, err := engine.compileStatement()
		if err != nil {
			return compiled, err
		}
		compiled++
	}
}

func (engine *CompilationEngine) compileStatement() (StatementKind, error) {
	kind, ok := statementKindOf(engine.current())
	if !ok {
		return kind, engine.makeError("expected a statement")
	}
	var err error
	switch kind {
	case LetStatement:
		err = engine.compileLet()
	case IfStatement:
		err = engine.compileIf()
	case WhileStatement:
		err = engine.compileWhile()
	case DoStatement:
		err = engine.compileDo()
	case ReturnStatement:
		err = engine.compileReturn()
	}
	return kind, err
}

// let varName ([ expression ])? = expression ;
func (engine *CompilationEngine) compileLet() error {
	err := engine.expect("let")
	if err != nil {
		return err
	}
	target := engine.current()
	_, err = engine.expectIdentifier()
	if err != nil {
		return err
	}
	symbol, err := engine.resolveVariable(target)
	if err != nil {
		return err
	}
	if !engine.current().Is("[") {
		err = engine.compileAssignedValue()
		if err != nil {
			return err
		}
		engine.popSymbol(symbol)
		return nil
	}
	// Element address first, then the value. The value may itself index an array and
	// overwrite pointer 1, so `that` is only set up after it is computed.
	err = engine.compileArrayAddress(symbol)
	if err != nil {
		return err
	}
	err = engine.compileAssignedValue()
	if err != nil {
		return err
	}
	engine.writer.WritePop(vm.TempSegment, 0)
	engine.writer.WritePop(vm.PointerSegment, 1)
	engine.writer.WritePush(vm.TempSegment, 0)
	engine.writer.WritePop(vm.ThatSegment, 0)
	return nil
}

// = expression ;
func (engine *CompilationEngine) compileAssignedValue() error {
	err := engine.expect("=")
	if err != nil {
		return err
	}
	err = engine.compileExpression()
	if err != nil {
		return err
	}
	return engine.expect(";")
}

// [ expression ], leaves base + index on the stack.
func (engine *CompilationEngine) compileArrayAddress(base Symbol) error {
	err := engine.expect("[")
	if err != nil {
		return err
	}
	err = engine.compileExpression()
	if err != nil {
		return err
	}
	err = engine.expect("]")
	if err != nil {
		return err
	}
	engine.pushSymbol(base)
	engine.writer.WriteArithmetic(vm.Add)
	return nil
}

// if ( expression ) { statements } (else { statements })?
//
// cond
// if-goto IF_TRUEn
// goto IF_FALSEn
// label IF_TRUEn
// statements
// goto IF_ENDn          only with else
// label IF_FALSEn
// else statements       only with else
// label IF_ENDn         only with else
func (engine *CompilationEngine) compileIf() error {
	err := engine.expect("if")
	if err != nil {
		return err
	}
	n := engine.labels.Next(IfLabel)
	err = engine.compileCondition()
	if err != nil {
		return err
	}
	engine.writer.WriteIf(ifTrueLabel(n))
	engine.writer.WriteGoto(ifFalseLabel(n))
	engine.writer.WriteLabel(ifTrueLabel(n))
	err = engine.compileBlock()
	if err != nil {
		return err
	}
	if !engine.current().Is("else") {
		engine.writer.WriteLabel(ifFalseLabel(n))
		return nil
	}
	err = engine.advance()
	if err != nil {
		return err
	}
	engine.writer.WriteGoto(ifEndLabel(n))
	engine.writer.WriteLabel(ifFalseLabel(n))
	err = engine.compileBlock()
	if err != nil {
		return err
	}
	engine.writer.WriteLabel(ifEndLabel(n))
	return nil
}

// while ( expression ) { statements }
//
// label WHILE_EXPn
// cond
// not
// if-goto WHILE_ENDn
// statements
// goto WHILE_EXPn
// label WHILE_ENDn
func (engine *CompilationEngine) compileWhile() error {
	err := engine.expect("while")
	if err != nil {
		return err
	}
	n := engine.labels.Next(WhileLabel)
	engine.writer.WriteLabel(whileExpLabel(n))
	err = engine.compileCondition()
	if err != nil {
		return err
	}
	engine.writer.WriteArithmetic(vm.Not)
	engine.writer.WriteIf(whileEndLabel(n))
	err = engine.compileBlock()
	if err != nil {
		return err
	}
	engine.writer.WriteGoto(whileExpLabel(n))
	engine.writer.WriteLabel(whileEndLabel(n))
	return nil
}

// ( expression )
func (engine *CompilationEngine) compileCondition() error {
	err := engine.expect("(")
	if err != nil {
		return err
	}
	err = engine.compileExpression()
	if err != nil {
		return err
	}
	return engine.expect(")")
}

// { statements }
func (engine *CompilationEngine) compileBlock() error {
	err := engine.expect("{")
	if err != nil {
		return err
	}
	_, err = engine.compileStatements()
	if err != nil {
		return err
	}
	return engine.expect("}")
}

// do subroutineCall ;
// The returned value is always thrown away.
func (engine *CompilationEngine) compileDo() error {
	err := engine.expect("do")
	if err != nil {
		return err
	}
	callee := engine.current()
	_, err = engine.expectIdentifier()
	if err != nil {
		return err
	}
	err = engine.compileSubroutineCall(callee)
	if err != nil {
		return err
	}
	err = engine.expect(";")
	if err != nil {
		return err
	}
	engine.writer.WritePop(vm.TempSegment, 0)
	return nil
}

// return expression? ;
// A void subroutine still returns a value, the caller pops it.
func (engine *CompilationEngine) compileReturn() error {
	err := engine.expect("return")
	if err != nil {
		return err
	}
	if engine.current().Is(";") {
		engine.writer.WritePush(vm.ConstantSegment, 0)
	} else {
		err = engine.compileExpression()
		if err != nil {
			return err
		}
	}
	err = engine.expect(";")
	if err != nil {
		return err
	}
	engine.writer.WriteReturn()
	return nil
}
