package interpreter

import (
	"testing"

	"github.com/holiman/uint256"
)

func TestStack_ZeroStackIsEmpty(t *testing.T) {
	var s stack
	if want, got := 0, s.len(); want != got {
		t.Errorf("expected stack to be empty, got %d elements", got)
	}
}

func TestStack_PushAndPop_UsesFullCapacity(t *testing.T) {
	var s stack
	for i := 0; i < maxStackSize; i++ {
		s.push(uint256.NewInt(uint64(i)))
	}
	if want, got := maxStackSize, s.len(); want != got {
		t.Fatalf("expected %d elements, got %d", want, got)
	}
	for i := maxStackSize - 1; i >= 0; i-- {
		got := s.pop()
		if want := uint256.NewInt(uint64(i)); want.Cmp(got) != 0 {
			t.Errorf("expected %d, got %v", i, got)
		}
	}
}

func TestStack_PushUndefined_AllowsInPlaceInitialization(t *testing.T) {
	var s stack
	z := s.pushUndefined()
	z.SetUint64(42)
	if want, got := uint64(42), s.peek().Uint64(); want != got {
		t.Errorf("expected %d, got %d", want, got)
	}
}

func TestStack_Dup_DuplicatesNthElement(t *testing.T) {
	var s stack
	s.push(uint256.NewInt(1))
	s.push(uint256.NewInt(2))
	s.push(uint256.NewInt(3))
	s.dup(2) // duplicate the bottom-most of the three
	if want, got := uint64(1), s.peek().Uint64(); want != got {
		t.Errorf("expected %d, got %d", want, got)
	}
	if want, got := 4, s.len(); want != got {
		t.Errorf("expected stack length %d, got %d", want, got)
	}
}

func TestStack_Swap_ExchangesTopWithNth(t *testing.T) {
	var s stack
	s.push(uint256.NewInt(1))
	s.push(uint256.NewInt(2))
	s.push(uint256.NewInt(3))
	s.swap(2)
	if want, got := uint64(1), s.peek().Uint64(); want != got {
		t.Errorf("expected top to be %d, got %d", want, got)
	}
	if want, got := uint64(3), s.get(0).Uint64(); want != got {
		t.Errorf("expected bottom to be %d, got %d", want, got)
	}
}

func TestStack_ReturnStack_ResetsLength(t *testing.T) {
	s := NewStack()
	s.push(uint256.NewInt(1))
	ReturnStack(s)
	if want, got := 0, s.len(); want != got {
		t.Errorf("expected returned stack to be empty, got %d", got)
	}
}

func TestStackRequirements_CoverArithmeticOps(t *testing.T) {
	req := stackRequirements[ADD]
	if want, got := 2, req.min; want != got {
		t.Errorf("expected ADD to require %d elements, got %d", want, got)
	}
}

func TestStackRequirements_CoverPushDupSwapRanges(t *testing.T) {
	for i := 0; i < 32; i++ {
		if got := stackRequirements[PUSH1+OpCode(i)].maxLeft; got != maxStackSize-1 {
			t.Errorf("PUSH%d: expected headroom of 1, got maxLeft=%d", i+1, got)
		}
	}
	for i := 0; i < 16; i++ {
		if got := stackRequirements[DUP1+OpCode(i)].min; got != i+1 {
			t.Errorf("DUP%d: expected min %d, got %d", i+1, i+1, got)
		}
		if got := stackRequirements[SWAP1+OpCode(i)].min; got != i+2 {
			t.Errorf("SWAP%d: expected min %d, got %d", i+1, i+2, got)
		}
	}
}
