package internal

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"

	"github.com/xiaobogaga/jackc/vm"
)

// CompilationEngine is a predictive recursive descent parser which emits vm code while
// it parses, there is no ast. Every compileXxx method handles one grammar rule: it is
// entered with the rule's first token as the current token and returns with the
// tokenizer positioned just past the rule.
type CompilationEngine struct {
	tokenizer *Tokenizer
	writer    *VMWriter
	scopes    *Scopes
	labels    *LabelCounter
	logger    *logrus.Entry

	className      string
	subroutineName string

	// In strict mode an unresolved call qualifier must be the current class or one of
	// externalClasses.
	strict          bool
	externalClasses []string
}

type EngineOption func(engine *CompilationEngine)

func WithLogger(logger *logrus.Entry) EngineOption {
	return func(engine *CompilationEngine) {
		engine.logger = logger
	}
}

// WithExternalClasses turns on strict mode with the given class allowlist.
func WithExternalClasses(classes []string) EngineOption {
	return func(engine *CompilationEngine) {
		engine.strict = true
		engine.externalClasses = append([]string(nil), classes...)
	}
}

func NewCompilationEngine(tokenizer *Tokenizer, writer *VMWriter, opts ...EngineOption) *CompilationEngine {
	engine := &CompilationEngine{
		tokenizer: tokenizer,
		writer:    writer,
		scopes:    NewScopes(),
		labels:    NewLabelCounter(IfLabel, WhileLabel),
		logger:    logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

type SubroutineKind int

const (
	ConstructorSubroutine SubroutineKind = iota
	FunctionSubroutine
	MethodSubroutine
)

func (k SubroutineKind) String() string {
	switch k {
	case ConstructorSubroutine:
		return "constructor"
	case FunctionSubroutine:
		return "function"
	case MethodSubroutine:
		return "method"
	}
	return "unknown"
}

var subroutineKinds = map[string]SubroutineKind{
	"constructor": ConstructorSubroutine,
	"function":    FunctionSubroutine,
	"method":      MethodSubroutine,
}

var classVarKinds = map[string]SymbolKind{
	"static": StaticKind,
	"field":  FieldKind,
}

var primitiveTypes = []string{"int", "char", "boolean"}

// CompileClass compiles the whole input, which must hold exactly one class.
func (engine *CompilationEngine) CompileClass() error {
	err := engine.tokenizer.Advance()
	if err != nil {
		return err
	}
	err = engine.compileClass()
	if err != nil {
		return err
	}
	return engine.writer.Flush()
}

// ClassName is the name of the class compiled, empty before the class header is read.
func (engine *CompilationEngine) ClassName() string {
	return engine.className
}

// class Identifier {
//    classVarDec*
//    subroutineDec*
// }
func (engine *CompilationEngine) compileClass() error {
	err := engine.expect("class")
	if err != nil {
		return err
	}
	engine.className, err = engine.expectIdentifier()
	if err != nil {
		return err
	}
	err = engine.expect("{")
	if err != nil {
		return err
	}
	engine.logger.WithField("class", engine.className).Debug("compiling class")
	for {
		token := engine.current()
		if _, ok := classVarKinds[token.Text]; ok && token.Kind == KeywordKind {
			_, err = engine.compileClassVarDec()
		} else if _, ok := subroutineKinds[token.Text]; ok && token.Kind == KeywordKind {
			_, err = engine.compileSubroutine()
		} else if token.Is("}") {
			break
		} else {
			err = engine.makeError("expected a class variable, a subroutine or }")
		}
		if err != nil {
			return err
		}
	}
	err = engine.advance()
	if err != nil {
		return err
	}
	if !engine.current().IsEmpty() {
		return engine.makeError("unexpected content after the class body")
	}
	return nil
}

// (static|field) type varName (, varName)* ;
func (engine *CompilationEngine) compileClassVarDec() (int, error) {
	kind := classVarKinds[engine.current().Text]
	err := engine.advance()
	if err != nil {
		return 0, err
	}
	typ, err := engine.compileType()
	if err != nil {
		return 0, err
	}
	declared, err := engine.compileVarNames(engine.scopes.Class, typ, kind)
	if err != nil {
		return 0, err
	}
	return declared, engine.expect(";")
}

// (constructor|function|method) (void|type) subroutineName ( parameterList ) subroutineBody
func (engine *CompilationEngine) compileSubroutine() (SubroutineKind, error) {
	kind := subroutineKinds[engine.current().Text]
	engine.scopes.Subroutine.Reset()
	err := engine.advance()
	if err != nil {
		return kind, err
	}
	if engine.current().Is("void") {
		err = engine.advance()
	} else {
		_, err = engine.compileType()
	}
	if err != nil {
		return kind, err
	}
	engine.subroutineName, err = engine.expectIdentifier()
	if err != nil {
		return kind, err
	}
	// The object a method runs on is passed as argument 0.
	if kind == MethodSubroutine {
		engine.scopes.Subroutine.Define("this", engine.className, ArgumentKind)
	}
	err = engine.expect("(")
	if err != nil {
		return kind, err
	}
	_, err = engine.compileParameterList()
	if err != nil {
		return kind, err
	}
	err = engine.expect(")")
	if err != nil {
		return kind, err
	}
	nLocals, err := engine.compileSubroutineBody(kind)
	if err != nil {
		return kind, err
	}
	engine.labels.Reset()
	logger := engine.logger.WithFields(logrus.Fields{
		"class":      engine.className,
		"subroutine": engine.subroutineName,
		"kind":       kind,
		"locals":     nLocals,
	})
	logger.Debug("compiled subroutine")
	if logger.Logger.IsLevelEnabled(logrus.TraceLevel) {
		logger.Tracef("subroutine scope:\n%s", spew.Sdump(engine.scopes.Subroutine.Symbols()))
	}
	return kind, nil
}

// ((type varName) (, type varName)*)?
func (engine *CompilationEngine) compileParameterList() (int, error) {
	params := 0
	if engine.current().Is(")") {
		return 0, nil
	}
	for {
		typ, err := engine.compileType()
		if err != nil {
			return params, err
		}
		name, err := engine.expectIdentifier()
		if err != nil {
			return params, err
		}
		engine.scopes.Subroutine.Define(name, typ, ArgumentKind)
		params++
		if !engine.current().Is(",") {
			return params, nil
		}
		err = engine.advance()
		if err != nil {
			return params, err
		}
	}
}

// { varDec* statements }
// The function command needs the number of locals, so all varDecs are read before
// anything is written.
func (engine *CompilationEngine) compileSubroutineBody(kind SubroutineKind) (int, error) {
	err := engine.expect("{")
	if err != nil {
		return 0, err
	}
	nLocals := 0
	for engine.current().Is("var") {
		declared, err := engine.compileVarDec()
		if err != nil {
			return nLocals, err
		}
		nLocals += declared
	}
	engine.writer.WriteFunction(engine.className+"."+engine.subroutineName, nLocals)
	switch kind {
	case ConstructorSubroutine:
		engine.writer.WritePush(vm.ConstantSegment, engine.scopes.Class.VarCount(FieldKind))
		engine.writer.WriteCall("Memory.alloc", 1)
		engine.writer.WritePop(vm.PointerSegment, 0)
	case MethodSubroutine:
		engine.writer.WritePush(vm.ArgumentSegment, 0)
		engine.writer.WritePop(vm.PointerSegment, 0)
	}
	_, err = engine.compileStatements()
	if err != nil {
		return nLocals, err
	}
	return nLocals, engine.expect("}")
}

// var type varName (, varName)* ;
func (engine *CompilationEngine) compileVarDec() (int, error) {
	err := engine.expect("var")
	if err != nil {
		return 0, err
	}
	typ, err := engine.compileType()
	if err != nil {
		return 0, err
	}
	declared, err := engine.compileVarNames(engine.scopes.Subroutine, typ, LocalKind)
	if err != nil {
		return declared, err
	}
	return declared, engine.expect(";")
}

// compileVarNames reads varName (, varName)* and defines each name in table.
func (engine *CompilationEngine) compileVarNames(table *SymbolTable, typ string, kind SymbolKind) (int, error) {
	declared := 0
	for {
		name, err := engine.expectIdentifier()
		if err != nil {
			return declared, err
		}
		table.Define(name, typ, kind)
		declared++
		if !engine.current().Is(",") {
			return declared, nil
		}
		err = engine.advance()
		if err != nil {
			return declared, err
		}
	}
}

// int | char | boolean | className
func (engine *CompilationEngine) compileType() (string, error) {
	token := engine.current()
	if token.Kind == IdentifierKind || (token.Kind == KeywordKind && slices.Contains(primitiveTypes, token.Text)) {
		return token.Text, engine.advance()
	}
	return "", engine.makeError("expected a type")
}

// resolveVariable finds a variable used in an expression or as an assignment target.
func (engine *CompilationEngine) resolveVariable(token Token) (Symbol, error) {
	resolution := engine.scopes.Resolve(token.Text)
	switch resolution.Scope {
	case SubroutineScope, ClassScope:
		return resolution.Symbol, nil
	default:
		return Symbol{}, &SymbolError{Name: token.Text, Line: token.Line,
			Msg: fmt.Sprintf("not defined in %s.%s or class %s", engine.className, engine.subroutineName, engine.className)}
	}
}

func (engine *CompilationEngine) pushSymbol(symbol Symbol) {
	engine.writer.WritePush(symbol.Kind.Segment(), symbol.Index)
}

func (engine *CompilationEngine) popSymbol(symbol Symbol) {
	engine.writer.WritePop(symbol.Kind.Segment(), symbol.Index)
}

func (engine *CompilationEngine) current() Token {
	return engine.tokenizer.Current()
}

func (engine *CompilationEngine) advance() error {
	return engine.tokenizer.Advance()
}

// expect consumes the keyword or symbol text, or fails.
func (engine *CompilationEngine) expect(text string) error {
	if !engine.current().Is(text) {
		return engine.makeError("expected " + text)
	}
	return engine.advance()
}

func (engine *CompilationEngine) expectIdentifier() (string, error) {
	token := engine.current()
	if token.Kind != IdentifierKind {
		return "", engine.makeError("expected an identifier")
	}
	return token.Text, engine.advance()
}

func (engine *CompilationEngine) makeError(msg string) error {
	token := engine.current()
	if token.IsEmpty() {
		msg = "unexpected end of input, " + msg
	}
	return &ParseError{Near: token.String(), Line: engine.tokenizer.Line(), Msg: msg}
}
