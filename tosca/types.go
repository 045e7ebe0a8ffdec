package tosca

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"math/bits"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

func (a Address) String() string { return fmt.Sprintf("0x%x", a[:]) }
func (k Key) String() string     { return fmt.Sprintf("0x%x", k[:]) }
func (w Word) String() string    { return fmt.Sprintf("0x%x", w[:]) }
func (h Hash) String() string    { return fmt.Sprintf("0x%x", h[:]) }

func (v Value) ToBig() *big.Int            { return new(big.Int).SetBytes(v[:]) }
func (v Value) ToUint256() *uint256.Int    { return new(uint256.Int).SetBytes(v[:]) }
func (v Value) String() string             { return v.ToUint256().String() }
func (v Value) Cmp(o Value) int            { return v.ToUint256().Cmp(o.ToUint256()) }
func (v Value) IsZero() bool               { return v == Value{} }

// MarshalText renders v as a 0x-prefixed hex string, for JSON encoding.
func (v Value) MarshalText() ([]byte, error) { return hexutil.Bytes(v[:]).MarshalText() }

// UnmarshalText parses a 0x-prefixed hex string into v, for JSON decoding.
func (v *Value) UnmarshalText(input []byte) error {
	return hexutil.UnmarshalFixedText("Value", input, v[:])
}

// NewValue creates a new Value from up to 4 uint64 arguments, given from most
// significant to least significant and padded with leading zeros as needed.
// No argument yields a value of zero.
func NewValue(args ...uint64) (result Value) {
	if len(args) > 4 {
		panic("too many arguments")
	}
	offset := 4 - len(args)
	for i := 0; i < len(args); i++ {
		start := (offset + i) * 8
		binary.BigEndian.PutUint64(result[start:start+8], args[i])
	}
	return result
}

// ValueFromUint256 converts a *uint256.Int to a Value. A nil input yields 0.
func ValueFromUint256(value *uint256.Int) (result Value) {
	if value == nil {
		return result
	}
	return Value(value.Bytes32())
}

// Add and Sub implement 256-bit modular addition/subtraction directly on the
// big-endian Value encoding, avoiding an unnecessary uint256 round-trip on
// the hot value-transfer path used by the processor.
func Add(a, b Value) (z Value) {
	res, carry := bits.Add64(a.limb(0), b.limb(0), 0)
	binary.BigEndian.PutUint64(z[24:32], res)
	res, carry = bits.Add64(a.limb(1), b.limb(1), carry)
	binary.BigEndian.PutUint64(z[16:24], res)
	res, carry = bits.Add64(a.limb(2), b.limb(2), carry)
	binary.BigEndian.PutUint64(z[8:16], res)
	res, _ = bits.Add64(a.limb(3), b.limb(3), carry)
	binary.BigEndian.PutUint64(z[0:8], res)
	return z
}

func Sub(a, b Value) (z Value) {
	res, borrow := bits.Sub64(a.limb(0), b.limb(0), 0)
	binary.BigEndian.PutUint64(z[24:32], res)
	res, borrow = bits.Sub64(a.limb(1), b.limb(1), borrow)
	binary.BigEndian.PutUint64(z[16:24], res)
	res, borrow = bits.Sub64(a.limb(2), b.limb(2), borrow)
	binary.BigEndian.PutUint64(z[8:16], res)
	res, _ = bits.Sub64(a.limb(3), b.limb(3), borrow)
	binary.BigEndian.PutUint64(z[0:8], res)
	return z
}

// Scale multiplies a Value by a small unsigned scalar, used to compute
// gas*price totals without promoting gas to a 256-bit type everywhere.
func (v Value) Scale(s uint64) Value {
	return ValueFromUint256(new(uint256.Int).Mul(v.ToUint256(), new(uint256.Int).SetUint64(s)))
}

// limb returns the 64-bit word at the given index of the big-endian
// encoding, counted from the least significant end (0 = least significant),
// the order in which Add/Sub walk the limbs.
func (v Value) limb(index int) uint64 {
	start := (3 - index) * 8
	return binary.BigEndian.Uint64(v[start : start+8])
}

// StorageStatus enumerates the effect of a storage write in the context of
// the current transaction, distinguishing its original (tx-start), current
// (pre-write) and new (post-write) values. See GetStorageStatus.
type StorageStatus int

const (
	StorageAssigned         StorageStatus = iota // current == new, no-op
	StorageAdded                                 // 0 -> 0 -> Z
	StorageDeleted                                // X -> X -> 0
	StorageModified                               // X -> X -> Z
	StorageDeletedAdded                           // X -> 0 -> Z
	StorageModifiedDeleted                        // X -> Y -> 0
	StorageDeletedRestored                        // X -> 0 -> X
	StorageAddedDeleted                           // 0 -> Y -> 0
	StorageModifiedRestored                       // X -> Y -> X
)

func (s StorageStatus) String() string {
	switch s {
	case StorageAssigned:
		return "StorageAssigned"
	case StorageAdded:
		return "StorageAdded"
	case StorageDeleted:
		return "StorageDeleted"
	case StorageModified:
		return "StorageModified"
	case StorageDeletedAdded:
		return "StorageDeletedAdded"
	case StorageModifiedDeleted:
		return "StorageModifiedDeleted"
	case StorageDeletedRestored:
		return "StorageDeletedRestored"
	case StorageAddedDeleted:
		return "StorageAddedDeleted"
	case StorageModifiedRestored:
		return "StorageModifiedRestored"
	}
	return fmt.Sprintf("StorageStatus(%d)", s)
}

// GetStorageStatus classifies a storage slot write given its original value
// (as of the start of the transaction), its current value (before this
// write) and the new value being written. This nine-case state machine is
// what the SSTORE metering rules of EIP-1283/EIP-2200 observe; see
// interpreter/gas.go's sstoreCost.
func GetStorageStatus(original, current, new Word) StorageStatus {
	var zero Word
	if current == new {
		return StorageAssigned
	}
	if original == zero && current == zero {
		return StorageAdded
	}
	if original != zero && current == original && new == zero {
		return StorageDeleted
	}
	if original != zero && current == original {
		return StorageModified
	}
	if original != zero && current == zero && new != original {
		return StorageDeletedAdded
	}
	if original != zero && current != original && current != zero && new == zero {
		return StorageModifiedDeleted
	}
	if original != zero && current == zero && new == original {
		return StorageDeletedRestored
	}
	if original == zero && current != zero && new == zero {
		return StorageAddedDeleted
	}
	if original != zero && current != original && current != zero && new == original {
		return StorageModifiedRestored
	}
	return StorageAssigned
}

// SizeInWords returns ceil(size/32), saturating instead of overflowing for
// sizes close to the uint64 range.
func SizeInWords(size uint64) uint64 {
	const maxSize = ^uint64(0) - 31
	if size > maxSize {
		return ^uint64(0)/32 + 1
	}
	return (size + 31) / 32
}

// IsPrecompiledContract reports whether recipient falls in the reserved
// 0x01..0x09 precompile address range. Precompile bodies themselves are out
// of scope; this only identifies the dispatch range (spec §6).
func IsPrecompiledContract(recipient Address) bool {
	for i := 0; i < 19; i++ {
		if recipient[i] != 0 {
			return false
		}
	}
	return 1 <= recipient[19] && recipient[19] <= 9
}
