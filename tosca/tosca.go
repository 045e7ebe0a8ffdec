// Package tosca defines the public data types and interfaces shared by the
// interpreter, the processor and the state backend: addresses, words,
// revisions, call parameters and the EEI (External Environment Interface)
// boundary that the interpreter consumes to read and mutate world state.
//
// Nothing in this package is allowed to depend on interpreter or processor,
// so that those packages, and any alternative implementation of them, can
// depend on this one without creating import cycles.
package tosca

import "github.com/ethereum/go-ethereum/common/hexutil"

// Address represents the 160-bit (20 bytes) address of an account.
type Address [20]byte

// Key represents the 256-bit (32 bytes) key of a storage slot.
type Key [32]byte

// Word represents an arbitrary 256-bit (32 byte) word in the EVM.
type Word [32]byte

// Value represents an amount of chain currency, typically wei.
type Value [32]byte

// Hash represents the 256-bit (32 bytes) hash of a code, a block, a topic,
// or any other cryptographic summary value.
type Hash [32]byte

// Code represents the byte-code of a contract.
type Code []byte

// Data represents the input or output of a contract invocation.
type Data []byte

// Gas represents the type used to represent gas values.
type Gas int64

// ToAddress masks a Word down to its low 160 bits, producing the Address
// that would be obtained by a EVM-level address truncation (e.g. the result
// of CALLER, ADDRESS or a CREATE/CREATE2 address derivation).
func (w Word) ToAddress() (a Address) {
	copy(a[:], w[12:])
	return a
}

// MarshalText renders a as a 0x-prefixed hex string, for JSON encoding.
func (a Address) MarshalText() ([]byte, error) {
	return hexutil.Bytes(a[:]).MarshalText()
}

// UnmarshalText parses a 0x-prefixed hex string into a, for JSON decoding.
func (a *Address) UnmarshalText(input []byte) error {
	return hexutil.UnmarshalFixedText("Address", input, a[:])
}

// MarshalText renders h as a 0x-prefixed hex string, for JSON encoding.
func (h Hash) MarshalText() ([]byte, error) {
	return hexutil.Bytes(h[:]).MarshalText()
}

// UnmarshalText parses a 0x-prefixed hex string into h, for JSON decoding.
func (h *Hash) UnmarshalText(input []byte) error {
	return hexutil.UnmarshalFixedText("Hash", input, h[:])
}

// MarshalText renders d as a 0x-prefixed hex string, for JSON encoding.
func (d Data) MarshalText() ([]byte, error) {
	return hexutil.Bytes(d).MarshalText()
}

// UnmarshalText parses a 0x-prefixed hex string into d, for JSON decoding.
func (d *Data) UnmarshalText(input []byte) error {
	decoded, err := hexutil.Decode(string(input))
	if err != nil {
		return err
	}
	*d = Data(decoded)
	return nil
}
