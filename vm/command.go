package vm

import (
	"fmt"
	"strconv"
)

// The compiler emits, and the vm translator consumes, the textual commands of the hack
// stack machine. There are four kinds of vm commands, they are:
// * Arithmetic commands: add, sub, neg, eq, gt, lt, and, or, not.
// * Memory access commands: push|pop segment index.
// * Program flow commands: label name, goto name, if-goto name.
// * Function calling commands: function name nLocals, call name nArgs, return.

type Segment int

const (
	ConstantSegment Segment = iota
	ArgumentSegment
	LocalSegment
	StaticSegment
	ThisSegment
	ThatSegment
	PointerSegment
	TempSegment
)

var segmentNames = [...]string{
	ConstantSegment: "constant",
	ArgumentSegment: "argument",
	LocalSegment:    "local",
	StaticSegment:   "static",
	ThisSegment:     "this",
	ThatSegment:     "that",
	PointerSegment:  "pointer",
	TempSegment:     "temp",
}

var segmentMap = map[string]Segment{
	"constant": ConstantSegment,
	"argument": ArgumentSegment,
	"local":    LocalSegment,
	"static":   StaticSegment,
	"this":     ThisSegment,
	"that":     ThatSegment,
	"pointer":  PointerSegment,
	"temp":     TempSegment,
}

func (s Segment) String() string {
	if s < 0 || int(s) >= len(segmentNames) {
		return "segment(" + strconv.Itoa(int(s)) + ")"
	}
	return segmentNames[s]
}

type Arithmetic int

const (
	Add Arithmetic = iota
	Sub
	Neg
	Eq
	Gt
	Lt
	And
	Or
	Not
)

var arithmeticNames = [...]string{
	Add: "add",
	Sub: "sub",
	Neg: "neg",
	Eq:  "eq",
	Gt:  "gt",
	Lt:  "lt",
	And: "and",
	Or:  "or",
	Not: "not",
}

var arithmeticMap = map[string]Arithmetic{
	"add": Add,
	"sub": Sub,
	"neg": Neg,
	"eq":  Eq,
	"gt":  Gt,
	"lt":  Lt,
	"and": And,
	"or":  Or,
	"not": Not,
}

func (a Arithmetic) String() string {
	if a < 0 || int(a) >= len(arithmeticNames) {
		return "arithmetic(" + strconv.Itoa(int(a)) + ")"
	}
	return arithmeticNames[a]
}

type CommandType int

const (
	PushCommand CommandType = iota
	PopCommand
	ArithmeticCommand
	LabelCommand
	GotoCommand
	IfGotoCommand
	FunctionCommand
	CallCommand
	ReturnCommand
)

// Command is one line of vm code. Only the fields relevant to Type are set:
// Segment and Index for push/pop, Op for arithmetic, Name for flow and function
// commands, Count for function (nLocals) and call (nArgs).
type Command struct {
	Type    CommandType
	Segment Segment
	Index   int
	Op      Arithmetic
	Name    string
	Count   int
}

func (c Command) String() string {
	switch c.Type {
	case PushCommand:
		return fmt.Sprintf("push %s %d", c.Segment, c.Index)
	case PopCommand:
		return fmt.Sprintf("pop %s %d", c.Segment, c.Index)
	case ArithmeticCommand:
		return c.Op.String()
	case LabelCommand:
		return "label " + c.Name
	case GotoCommand:
		return "goto " + c.Name
	case IfGotoCommand:
		return "if-goto " + c.Name
	case FunctionCommand:
		return fmt.Sprintf("function %s %d", c.Name, c.Count)
	case CallCommand:
		return fmt.Sprintf("call %s %d", c.Name, c.Count)
	case ReturnCommand:
		return "return"
	}
	return ""
}

func Push(segment Segment, index int) Command {
	return Command{Type: PushCommand, Segment: segment, Index: index}
}

func Pop(segment Segment, index int) Command {
	return Command{Type: PopCommand, Segment: segment, Index: index}
}

func Op(op Arithmetic) Command {
	return Command{Type: ArithmeticCommand, Op: op}
}

func Label(name string) Command {
	return Command{Type: LabelCommand, Name: name}
}

func Goto(name string) Command {
	return Command{Type: GotoCommand, Name: name}
}

func IfGoto(name string) Command {
	return Command{Type: IfGotoCommand, Name: name}
}

func Function(name string, nLocals int) Command {
	return Command{Type: FunctionCommand, Name: name, Count: nLocals}
}

func Call(name string, nArgs int) Command {
	return Command{Type: CallCommand, Name: name, Count: nArgs}
}

func Return() Command {
	return Command{Type: ReturnCommand}
}
