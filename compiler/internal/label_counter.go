package internal

import "fmt"

type LabelKind int

const (
	IfLabel LabelKind = iota
	WhileLabel
)

func (k LabelKind) String() string {
	switch k {
	case IfLabel:
		return "if"
	case WhileLabel:
		return "while"
	}
	return "unknown"
}

// LabelCounter keeps one counter per control construct kind. The engine resets it at
// every subroutine.
type LabelCounter struct {
	kinds  []LabelKind
	counts map[LabelKind]int
}

func NewLabelCounter(kinds ...LabelKind) *LabelCounter {
	counter := &LabelCounter{kinds: kinds}
	counter.Reset()
	return counter
}

func (counter *LabelCounter) Get(kind LabelKind) int {
	return counter.counts[kind]
}

// Increment and Decrement adjust a counter by hand, the engine itself only uses Next.
func (counter *LabelCounter) Increment(kind LabelKind) {
	counter.counts[kind]++
}

func (counter *LabelCounter) Decrement(kind LabelKind) {
	counter.counts[kind]--
}

// Next returns the current count and increments it. A construct keeps the returned
// number for all of its labels, whatever nested constructs do to the counter.
func (counter *LabelCounter) Next(kind LabelKind) int {
	n := counter.counts[kind]
	counter.counts[kind]++
	return n
}

func (counter *LabelCounter) Reset() {
	counter.counts = make(map[LabelKind]int, len(counter.kinds))
	for _, kind := range counter.kinds {
		counter.counts[kind] = 0
	}
}

// Label names used for if and while, the n is the construct number.
func whileExpLabel(n int) string { return fmt.Sprintf("WHILE_EXP%d", n) }
func whileEndLabel(n int) string { return fmt.Sprintf("WHILE_END%d", n) }
func ifTrueLabel(n int) string   { return fmt.Sprintf("IF_TRUE%d", n) }
func ifFalseLabel(n int) string  { return fmt.Sprintf("IF_FALSE%d", n) }
func ifEndLabel(n int) string    { return fmt.Sprintf("IF_END%d", n) }
