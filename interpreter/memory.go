package interpreter

import (
	"fmt"
	"math"

	"github.com/openevm/corevm/tosca"
)

// maxMemoryExpansionSize caps the memory size gas-cost computation can be
// asked to evaluate without overflowing int64; the same bound geth's
// gas_table.go applies.
const maxMemoryExpansionSize = 0x1FFFFFFFE0

// Memory is the linear, byte-addressed, word-billed memory space of a
// single contract call.
type Memory struct {
	store             []byte
	currentMemoryCost tosca.Gas
}

// NewMemory returns an empty Memory.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) length() uint64 {
	return uint64(len(m.store))
}

func toValidMemorySize(size uint64) uint64 {
	words := tosca.SizeInWords(size) * 32
	if size != 0 && words < size {
		return math.MaxUint64
	}
	return words
}

// expansionCost returns the marginal gas cost of growing memory to size
// bytes, or 0 if it is already that large.
func (m *Memory) expansionCost(size uint64) tosca.Gas {
	if m.length() >= size {
		return 0
	}
	size = toValidMemorySize(size)
	if size > maxMemoryExpansionSize {
		return tosca.Gas(math.MaxInt64)
	}
	words := tosca.SizeInWords(size)
	cost := tosca.Gas((words*words)/512 + 3*words)
	return cost - m.currentMemoryCost
}

// expand grows memory to cover offset+size bytes, charging f for the
// marginal cost. A size of 0 never expands memory, independent of offset.
func (m *Memory) expand(offset, size uint64, f *frame) error {
	if size == 0 {
		return nil
	}
	needed := offset + size
	if needed < offset {
		return tosca.ErrGasUintOverflow
	}
	if m.length() < needed {
		fee := m.expansionCost(needed)
		if err := f.useGas(fee); err != nil {
			return err
		}
		m.grow(needed)
	}
	return nil
}

func (m *Memory) grow(needed uint64) {
	needed = toValidMemorySize(needed)
	size := m.length()
	if size < needed {
		m.currentMemoryCost += m.expansionCost(needed)
		m.store = append(m.store, make([]byte, needed-size)...)
	}
}

// set writes value at offset, which must already be within bounds (use
// expand first to grow and charge for it).
func (m *Memory) set(offset uint64, value []byte) error {
	if len(value) == 0 {
		return nil
	}
	end := offset + uint64(len(value))
	if end < offset || m.length() < end {
		return fmt.Errorf("memory too small, size %d, attempted to write %d bytes at %d", m.length(), len(value), offset)
	}
	copy(m.store[offset:end], value)
	return nil
}

// setWithExpansion expands memory to fit, charges for the expansion, and
// then writes value at offset.
func (m *Memory) setWithExpansion(offset uint64, value []byte, f *frame) error {
	if err := m.expand(offset, uint64(len(value)), f); err != nil {
		return err
	}
	return m.set(offset, value)
}

// getSlice returns a size-byte slice of memory at offset, expanding and
// charging for growth as needed. The slice aliases the Memory's backing
// array and is invalidated by any subsequent memory-resizing operation.
func (m *Memory) getSlice(offset, size uint64, f *frame) ([]byte, error) {
	if err := m.expand(offset, size, f); err != nil {
		return nil, err
	}
	if size == 0 {
		return nil, nil
	}
	return m.store[offset : offset+size], nil
}

// copyOut copies into target from memory starting at offset, zero-padding
// any portion beyond the current memory length. It neither expands memory
// nor charges gas.
func (m *Memory) copyOut(offset uint64, target []byte) {
	if m.length() <= offset {
		for i := range target {
			target[i] = 0
		}
		return
	}
	covered := copy(target, m.store[offset:])
	for i := covered; i < len(target); i++ {
		target[i] = 0
	}
}
