// Package word provides the conversions between the fixed-size 256-bit
// tosca.Word encoding used at package boundaries (storage, logs, call
// parameters) and the *uint256.Int representation the interpreter computes
// with on its operand stack. Keeping both representations, instead of
// picking one everywhere, lets the hot path (stack.go) operate on
// uint256.Int directly -- avoiding a byte-array round trip per opcode --
// while every other package only has to deal with tosca.Word.
package word

import (
	"github.com/holiman/uint256"

	"github.com/openevm/corevm/tosca"
)

// FromWord converts a tosca.Word into a *uint256.Int.
func FromWord(w tosca.Word) *uint256.Int {
	return new(uint256.Int).SetBytes32(w[:])
}

// ToWord converts a *uint256.Int back into a tosca.Word. A nil input
// produces the zero Word.
func ToWord(v *uint256.Int) (w tosca.Word) {
	if v == nil {
		return w
	}
	return tosca.Word(v.Bytes32())
}

// FromAddress left-pads an Address into a *uint256.Int, as used by opcodes
// such as BALANCE, EXTCODESIZE and the *CALL family that take an address
// operand off the stack.
func FromAddress(a tosca.Address) *uint256.Int {
	return new(uint256.Int).SetBytes(a[:])
}

// ToAddress masks a *uint256.Int down to its low 160 bits, as produced by
// ADDRESS, CALLER, ORIGIN and COINBASE, and consumed by the *CALL family
// and CREATE/CREATE2 when reading their target-address operand.
func ToAddress(v *uint256.Int) tosca.Address {
	return ToWord(v).ToAddress()
}

// FromValue converts a tosca.Value (an amount of network currency) into a
// *uint256.Int, the representation CALLVALUE and the *CALL family's value
// operand compute with.
func FromValue(v tosca.Value) *uint256.Int {
	return new(uint256.Int).SetBytes32(v[:])
}

// ToValue converts a *uint256.Int back into a tosca.Value.
func ToValue(v *uint256.Int) tosca.Value {
	if v == nil {
		return tosca.Value{}
	}
	return tosca.Value(v.Bytes32())
}

// FromHash converts a tosca.Hash (e.g. a block hash, BLOBHASH entry, or
// PREVRANDAO value) into a *uint256.Int.
func FromHash(h tosca.Hash) *uint256.Int {
	return new(uint256.Int).SetBytes32(h[:])
}

// ToHash converts a *uint256.Int back into a tosca.Hash.
func ToHash(v *uint256.Int) tosca.Hash {
	if v == nil {
		return tosca.Hash{}
	}
	return tosca.Hash(v.Bytes32())
}
