package internal

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaobogaga/jackc/vm"
)

func compileLines(source string, opts ...EngineOption) ([]string, error) {
	buf := &bytes.Buffer{}
	err := Compile(strings.NewReader(source), buf, opts...)
	if err != nil {
		return nil, err
	}
	out := strings.TrimSuffix(buf.String(), "\n")
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

// inFunction wraps statements into a function f of class Foo with the given locals.
func inFunction(locals, statements string) string {
	return "class Foo {\n function void f() {\n" + locals + "\n" + statements + "\n return;\n }\n}\n"
}

func TestCompilationEngine_Subroutines(t *testing.T) {
	testData := []struct {
		name     string
		source   string
		expected []string
	}{
		{
			name:   "empty void function",
			source: "class Foo { function void bar() { return; } }",
			expected: []string{
				"function Foo.bar 0",
				"push constant 0",
				"return",
			},
		},
		{
			name:   "locals counted across var statements",
			source: "class Foo { function int f() { var int a, b; var char c; var Array d; return c; } }",
			expected: []string{
				"function Foo.f 4",
				"push local 2",
				"return",
			},
		},
		{
			name:   "method reads a field",
			source: "class P { field int x, y; method int getY() { return y; } }",
			expected: []string{
				"function P.getY 0",
				"push argument 0",
				"pop pointer 0",
				"push this 1",
				"return",
			},
		},
		{
			name:   "method arguments start at 1",
			source: "class P { field int x; method void set(int v, int w) { let x = w; return; } }",
			expected: []string{
				"function P.set 0",
				"push argument 0",
				"pop pointer 0",
				"push argument 2",
				"pop this 0",
				"push constant 0",
				"return",
			},
		},
		{
			name:   "constructor allocates the fields",
			source: "class P { field int x, y; static int n; constructor P new(int ax) { let x = ax; let n = n + 1; return this; } }",
			expected: []string{
				"function P.new 0",
				"push constant 2",
				"call Memory.alloc 1",
				"pop pointer 0",
				"push argument 0",
				"pop this 0",
				"push static 0",
				"push constant 1",
				"add",
				"pop static 0",
				"push pointer 0",
				"return",
			},
		},
		{
			name: "subroutine scope is reset between subroutines",
			source: "class Foo { function int f(int a) { var int b; return b; }\n" +
				"function int g(int c) { return c; } }",
			expected: []string{
				"function Foo.f 1",
				"push local 0",
				"return",
				"function Foo.g 0",
				"push argument 0",
				"return",
			},
		},
	}
	for _, data := range testData {
		lines, err := compileLines(data.source)
		require.Nil(t, err, data.name)
		assert.Equal(t, data.expected, lines, data.name)
	}
}

func TestCompilationEngine_Expressions(t *testing.T) {
	testData := []struct {
		name       string
		locals     string
		expression string
		expected   []string
	}{
		{
			name:       "multiply goes through Math",
			locals:     "var int x, y;",
			expression: "x * y",
			expected:   []string{"push local 0", "push local 1", "call Math.multiply 2"},
		},
		{
			name:       "divide goes through Math",
			locals:     "var int x, y;",
			expression: "x / y",
			expected:   []string{"push local 0", "push local 1", "call Math.divide 2"},
		},
		{
			name:       "left to right without priority",
			locals:     "",
			expression: "1 + 2 * 3",
			expected:   []string{"push constant 1", "push constant 2", "add", "push constant 3", "call Math.multiply 2"},
		},
		{
			name:       "subtraction is not reordered",
			locals:     "var int a, b, c;",
			expression: "a - b + c",
			expected:   []string{"push local 0", "push local 1", "sub", "push local 2", "add"},
		},
		{
			name:       "long chain stays left to right",
			locals:     "var int a, b, c, d;",
			expression: "a - b - c * d / 2",
			expected: []string{
				"push local 0", "push local 1", "sub",
				"push local 2", "sub",
				"push local 3", "call Math.multiply 2",
				"push constant 2", "call Math.divide 2",
			},
		},
		{
			name:       "parentheses group",
			locals:     "var int a, b, c;",
			expression: "a - (b + c)",
			expected:   []string{"push local 0", "push local 1", "push local 2", "add", "sub"},
		},
		{
			name:       "unary minus",
			locals:     "var int x;",
			expression: "x - -1",
			expected:   []string{"push local 0", "push constant 1", "neg", "sub"},
		},
		{
			name:       "not and comparison",
			locals:     "var int x;",
			expression: "~(x = 1) & (x < 3) | (x > 5)",
			expected: []string{
				"push local 0", "push constant 1", "eq", "not",
				"push local 0", "push constant 3", "lt", "and",
				"push local 0", "push constant 5", "gt", "or",
			},
		},
		{
			name:       "keyword constants",
			locals:     "",
			expression: "true | false | null",
			expected:   []string{"push constant 0", "not", "push constant 0", "or", "push constant 0", "or"},
		},
		{
			name:       "string constant",
			locals:     "",
			expression: `"ab"`,
			expected: []string{
				"push constant 2",
				"call String.new 1",
				"push constant 97",
				"call String.appendChar 2",
				"push constant 98",
				"call String.appendChar 2",
			},
		},
		{
			name:       "empty string constant",
			locals:     "",
			expression: `""`,
			expected:   []string{"push constant 0", "call String.new 1"},
		},
		{
			name:       "largest integer",
			locals:     "",
			expression: "32767",
			expected:   []string{"push constant 32767"},
		},
		{
			name:       "array read",
			locals:     "var Array a; var int i;",
			expression: "a[i + 1]",
			expected: []string{
				"push local 1", "push constant 1", "add",
				"push local 0", "add",
				"pop pointer 1", "push that 0",
			},
		},
		{
			name:       "call result in an expression",
			locals:     "var int x;",
			expression: "Math.max(x, 2) + 1",
			expected:   []string{"push local 0", "push constant 2", "call Math.max 2", "push constant 1", "add"},
		},
	}
	for _, data := range testData {
		source := "class Foo { function int f() { " + data.locals + " return " + data.expression + "; } }"
		lines, err := compileLines(source)
		require.Nil(t, err, data.name)
		require.True(t, len(lines) >= 2, data.name)
		// Strip the function header and the trailing return.
		assert.Equal(t, data.expected, lines[1:len(lines)-1], data.name)
	}
}

func TestCompilationEngine_Statements(t *testing.T) {
	testData := []struct {
		name       string
		locals     string
		statements string
		expected   []string
	}{
		{
			name:       "do on an object variable",
			locals:     "var int a, b; var Square obj;",
			statements: "do obj.run();",
			expected:   []string{"push local 2", "call Square.run 1", "pop temp 0"},
		},
		{
			name:       "do on a class",
			locals:     "",
			statements: "do Output.printInt(3);",
			expected:   []string{"push constant 3", "call Output.printInt 1", "pop temp 0"},
		},
		{
			name:       "array store",
			locals:     "var Array a; var int i; var Array b; var int j;",
			statements: "let a[i] = b[j];",
			expected: []string{
				"push local 1", "push local 0", "add",
				"push local 3", "push local 2", "add",
				"pop pointer 1", "push that 0",
				"pop temp 0", "pop pointer 1", "push temp 0", "pop that 0",
			},
		},
		{
			name:       "sibling whiles get their own labels",
			locals:     "var int i;",
			statements: "while (i) { let i = 0; } while (i) { let i = 1; }",
			expected: []string{
				"label WHILE_EXP0", "push local 0", "not", "if-goto WHILE_END0",
				"push constant 0", "pop local 0",
				"goto WHILE_EXP0", "label WHILE_END0",
				"label WHILE_EXP1", "push local 0", "not", "if-goto WHILE_END1",
				"push constant 1", "pop local 0",
				"goto WHILE_EXP1", "label WHILE_END1",
			},
		},
		{
			name:       "nested whiles keep the outer number",
			locals:     "var int i;",
			statements: "while (i) { while (i) { let i = 0; } let i = 1; }",
			expected: []string{
				"label WHILE_EXP0", "push local 0", "not", "if-goto WHILE_END0",
				"label WHILE_EXP1", "push local 0", "not", "if-goto WHILE_END1",
				"push constant 0", "pop local 0",
				"goto WHILE_EXP1", "label WHILE_END1",
				"push constant 1", "pop local 0",
				"goto WHILE_EXP0", "label WHILE_END0",
			},
		},
		{
			name:       "if without else",
			locals:     "var int x;",
			statements: "if (x) { let x = 1; }",
			expected: []string{
				"push local 0", "if-goto IF_TRUE0", "goto IF_FALSE0",
				"label IF_TRUE0", "push constant 1", "pop local 0",
				"label IF_FALSE0",
			},
		},
		{
			name:       "nested if with else",
			locals:     "var int x;",
			statements: "if (x) { if (x) { let x = 1; } } else { let x = 2; }",
			expected: []string{
				"push local 0", "if-goto IF_TRUE0", "goto IF_FALSE0",
				"label IF_TRUE0",
				"push local 0", "if-goto IF_TRUE1", "goto IF_FALSE1",
				"label IF_TRUE1", "push constant 1", "pop local 0",
				"label IF_FALSE1",
				"goto IF_END0",
				"label IF_FALSE0", "push constant 2", "pop local 0",
				"label IF_END0",
			},
		},
		{
			name:       "if inside while",
			locals:     "var int x;",
			statements: "while (x) { if (x) { let x = 0; } }",
			expected: []string{
				"label WHILE_EXP0", "push local 0", "not", "if-goto WHILE_END0",
				"push local 0", "if-goto IF_TRUE0", "goto IF_FALSE0",
				"label IF_TRUE0", "push constant 0", "pop local 0",
				"label IF_FALSE0",
				"goto WHILE_EXP0", "label WHILE_END0",
			},
		},
	}
	for _, data := range testData {
		lines, err := compileLines(inFunction(data.locals, data.statements))
		require.Nil(t, err, data.name)
		require.True(t, len(lines) >= 3, data.name)
		// Strip the function header and the trailing push constant 0, return.
		assert.Equal(t, data.expected, lines[1:len(lines)-2], data.name)
	}
}

func TestCompilationEngine_MethodCalls(t *testing.T) {
	source := `class C {
  field Square s;
  method void a() {
    do b(1);
    do s.move(2, 3);
    return;
  }
  method void b(int n) { return; }
}`
	lines, err := compileLines(source)
	require.Nil(t, err)
	assert.Equal(t, []string{
		"function C.a 0",
		"push argument 0",
		"pop pointer 0",
		"push pointer 0",
		"push constant 1",
		"call C.b 2",
		"pop temp 0",
		"push this 0",
		"push constant 2",
		"push constant 3",
		"call Square.move 3",
		"pop temp 0",
		"push constant 0",
		"return",
		"function C.b 0",
		"push argument 0",
		"pop pointer 0",
		"push constant 0",
		"return",
	}, lines)
}

func TestCompilationEngine_LabelsResetPerSubroutine(t *testing.T) {
	source := `class Foo {
  function void f() { var int i; while (i) { let i = 0; } while (i) { let i = 0; } return; }
  function void g() { var int i; while (i) { let i = 0; } if (i) { let i = 1; } return; }
}`
	lines, err := compileLines(source)
	require.Nil(t, err)
	var labels []string
	for _, line := range lines {
		if strings.HasPrefix(line, "label ") {
			labels = append(labels, strings.TrimPrefix(line, "label "))
		}
	}
	assert.Equal(t, []string{
		"WHILE_EXP0", "WHILE_END0", "WHILE_EXP1", "WHILE_END1",
		"WHILE_EXP0", "WHILE_END0", "IF_TRUE0", "IF_FALSE0",
	}, labels)
}

func TestCompilationEngine_OutputIsValidVM(t *testing.T) {
	source := `class List {
  field int data;
  field List next;
  static int created;

  constructor List new(int car, List cdr) {
    let data = car;
    let next = cdr;
    let created = created + 1;
    return this;
  }

  method int sum() {
    var int total;
    var List cur;
    let cur = this;
    while (~(cur = null)) {
      let total = total + cur.getData();
      let cur = cur.getNext();
    }
    return total;
  }

  method int getData() { return data; }
  method List getNext() { return next; }

  function void main() {
    var List l;
    var Array a;
    let a = Array.new(3);
    let a[0] = List.new(1, null);
    let l = a[0];
    do Output.printString("sum: ");
    do Output.printInt(l.sum());
    do l.dispose();
    return;
  }
}`
	buf := &bytes.Buffer{}
	require.Nil(t, Compile(strings.NewReader(source), buf))
	assert.Nil(t, vm.Validate(bytes.NewReader(buf.Bytes())))
	assert.Contains(t, buf.String(), "call List.getData 1\n")
	assert.Contains(t, buf.String(), "call List.new 2\n")
	assert.Contains(t, buf.String(), "call List.dispose 1\n")
}

func TestCompilationEngine_Errors(t *testing.T) {
	testData := []struct {
		name   string
		source string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "unresolved variable",
			source: inFunction("", "let z = 1;"),
			check: func(t *testing.T, err error) {
				var symbolErr *SymbolError
				require.True(t, errors.As(err, &symbolErr))
				assert.Equal(t, "z", symbolErr.Name)
				assert.Equal(t, 4, symbolErr.Line)
			},
		},
		{
			name:   "unresolved variable in expression",
			source: inFunction("var int x;", "let x = y + 1;"),
			check: func(t *testing.T, err error) {
				var symbolErr *SymbolError
				require.True(t, errors.As(err, &symbolErr))
				assert.Equal(t, "y", symbolErr.Name)
			},
		},
		{
			name:   "missing semicolon",
			source: inFunction("var int x;", "let x = 1\nlet x = 2;"),
			check: func(t *testing.T, err error) {
				var parseErr *ParseError
				require.True(t, errors.As(err, &parseErr))
				assert.Equal(t, "let", parseErr.Near)
				assert.Equal(t, 5, parseErr.Line)
				assert.Contains(t, parseErr.Msg, "expected ;")
			},
		},
		{
			name:   "end of input inside a subroutine",
			source: "class Foo { function void f() { return;",
			check: func(t *testing.T, err error) {
				var parseErr *ParseError
				require.True(t, errors.As(err, &parseErr))
				assert.Contains(t, parseErr.Msg, "unexpected end of input")
			},
		},
		{
			name:   "integer out of range",
			source: inFunction("var int x;", "let x = 32768;"),
			check: func(t *testing.T, err error) {
				var parseErr *ParseError
				require.True(t, errors.As(err, &parseErr))
				assert.Equal(t, "32768", parseErr.Near)
			},
		},
		{
			name:   "content after the class",
			source: "class Foo { } class Bar { }",
			check: func(t *testing.T, err error) {
				var parseErr *ParseError
				require.True(t, errors.As(err, &parseErr))
				assert.Equal(t, "class", parseErr.Near)
			},
		},
		{
			name:   "not a term",
			source: inFunction("var int x;", "let x = ;"),
			check: func(t *testing.T, err error) {
				var parseErr *ParseError
				require.True(t, errors.As(err, &parseErr))
				assert.Contains(t, parseErr.Msg, "expected a term")
			},
		},
		{
			name:   "tokenizer error",
			source: inFunction("var String s;", "let s = \"open;"),
			check: func(t *testing.T, err error) {
				var lexErr *LexError
				require.True(t, errors.As(err, &lexErr))
				assert.Equal(t, 4, lexErr.Line)
			},
		},
		{
			name:   "empty input",
			source: "",
			check: func(t *testing.T, err error) {
				var parseErr *ParseError
				require.True(t, errors.As(err, &parseErr))
				assert.Contains(t, parseErr.Msg, "expected class")
			},
		},
	}
	for _, data := range testData {
		_, err := compileLines(data.source)
		require.NotNil(t, err, data.name)
		data.check(t, err)
	}
}

func TestCompilationEngine_Strict(t *testing.T) {
	strict := WithExternalClasses(DefaultExternalClasses)

	lines, err := compileLines(inFunction("", "do Math.abs(1);\ndo Foo.g();"), strict)
	require.Nil(t, err)
	assert.Contains(t, lines, "call Math.abs 1")
	assert.Contains(t, lines, "call Foo.g 0")

	_, err = compileLines(inFunction("", "do Bar.g();"), strict)
	var symbolErr *SymbolError
	require.True(t, errors.As(err, &symbolErr))
	assert.Equal(t, "Bar", symbolErr.Name)

	// Without strict mode an unknown class is assumed to exist.
	lines, err = compileLines(inFunction("", "do Bar.g();"))
	require.Nil(t, err)
	assert.Contains(t, lines, "call Bar.g 0")
}

func TestCompilationEngine_Logging(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.TraceLevel)
	_, err := compileLines("class Foo { method int f(int a) { var int b; return a; } }",
		WithLogger(logrus.NewEntry(logger)))
	require.Nil(t, err)
	var compiled *logrus.Entry
	traced := false
	for _, entry := range hook.AllEntries() {
		if entry.Message == "compiled subroutine" {
			compiled = entry
		}
		if entry.Level == logrus.TraceLevel {
			traced = true
			assert.Contains(t, entry.Message, "this")
		}
	}
	require.NotNil(t, compiled)
	assert.Equal(t, "Foo", compiled.Data["class"])
	assert.Equal(t, "f", compiled.Data["subroutine"])
	assert.Equal(t, MethodSubroutine, compiled.Data["kind"])
	assert.Equal(t, 1, compiled.Data["locals"])
	assert.True(t, traced)
}
