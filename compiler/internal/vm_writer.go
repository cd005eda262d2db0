package internal

import (
	"bufio"
	"io"

	"github.com/xiaobogaga/jackc/vm"
)

// VMWriter turns one vm command into one line of output. It does not validate segments
// or indices. The first write error is kept and every later write is dropped.
type VMWriter struct {
	writer *bufio.Writer
	lines  int
	err    error
}

func NewVMWriter(w io.Writer) *VMWriter {
	return &VMWriter{writer: bufio.NewWriter(w)}
}

func (w *VMWriter) writeCommand(cmd vm.Command) {
	if w.err != nil {
		return
	}
	_, err := w.writer.WriteString(cmd.String() + "\n")
	if err != nil {
		w.err = err
		return
	}
	w.lines++
}

func (w *VMWriter) WritePush(segment vm.Segment, index int) {
	w.writeCommand(vm.Push(segment, index))
}

func (w *VMWriter) WritePop(segment vm.Segment, index int) {
	w.writeCommand(vm.Pop(segment, index))
}

func (w *VMWriter) WriteArithmetic(op vm.Arithmetic) {
	w.writeCommand(vm.Op(op))
}

func (w *VMWriter) WriteLabel(label string) {
	w.writeCommand(vm.Label(label))
}

func (w *VMWriter) WriteGoto(label string) {
	w.writeCommand(vm.Goto(label))
}

func (w *VMWriter) WriteIf(label string) {
	w.writeCommand(vm.IfGoto(label))
}

func (w *VMWriter) WriteCall(name string, nArgs int) {
	w.writeCommand(vm.Call(name, nArgs))
}

func (w *VMWriter) WriteFunction(name string, nLocals int) {
	w.writeCommand(vm.Function(name, nLocals))
}

func (w *VMWriter) WriteReturn() {
	w.writeCommand(vm.Return())
}

// Lines is the number of commands written so far.
func (w *VMWriter) Lines() int {
	return w.lines
}

func (w *VMWriter) Err() error {
	return w.err
}

// Flush pushes buffered lines to the underlying writer.
func (w *VMWriter) Flush() error {
	if w.err != nil {
		return w.err
	}
	w.err = w.writer.Flush()
	return w.err
}
