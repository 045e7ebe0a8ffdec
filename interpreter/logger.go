package interpreter

import (
	"fmt"
	"io"
)

// StepLogger is consulted once before every instruction is executed. It is
// primarily used for conformance tracing and debugging.
type StepLogger interface {
	LogStep(f *frame, op OpCode)
}

// WriterLogger writes one line per instruction to an io.Writer, in the
// format "<op>, <gas>, <top-of-stack>".
type WriterLogger struct {
	Out io.Writer
}

func (l WriterLogger) LogStep(f *frame, op OpCode) {
	if l.Out == nil {
		return
	}
	top := "-empty-"
	if f.stack.len() > 0 {
		top = f.stack.peek().ToBig().String()
	}
	fmt.Fprintf(l.Out, "%v, %d, %v\n", op, f.gas, top)
}
