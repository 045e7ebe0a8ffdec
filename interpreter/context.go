package interpreter

import (
	"github.com/openevm/corevm/tosca"
)

// status enumerates how an execution step left the interpreter.
type status byte

const (
	statusRunning status = iota
	statusStopped
	statusReverted
	statusReturned
	statusSelfDestructed
	statusFailed
)

// frame is the mutable execution state of a single call to Run: the
// program counter, operand stack, linear memory, remaining gas and the
// return data produced by the most recently completed nested call. A new
// frame is created for every Parameters passed to Run.
type frame struct {
	params tosca.Parameters
	host   tosca.RunContext
	code   []byte
	jumps  *jumpTable

	pc     int64
	gas    tosca.Gas
	refund tosca.Gas
	stack  *stack
	memory *Memory

	returnData []byte
}

func newFrame(params tosca.Parameters, jumps *jumpTable) *frame {
	return &frame{
		params: params,
		host:   params.Context,
		code:   []byte(params.Code),
		jumps:  jumps,
		gas:    params.Gas,
		stack:  NewStack(),
		memory: NewMemory(),
	}
}

func (f *frame) release() {
	ReturnStack(f.stack)
}

// useGas deducts amount from the remaining gas, failing with ErrOutOfGas if
// that would drive it negative.
func (f *frame) useGas(amount tosca.Gas) error {
	if amount < 0 || f.gas < amount {
		return tosca.ErrOutOfGas
	}
	f.gas -= amount
	return nil
}

// isAtLeast reports whether this frame's code is being run under revision
// or a later one.
func (f *frame) isAtLeast(revision tosca.Revision) bool {
	return f.params.Revision.IsAtLeast(revision)
}

func (f *frame) currentOp() OpCode {
	return OpCode(f.code[f.pc])
}
