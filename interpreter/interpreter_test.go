package interpreter

import (
	"testing"

	"github.com/openevm/corevm/tosca"
)

// testContext is a minimal in-memory tosca.RunContext used to drive
// end-to-end VM.Run tests without needing a real state backend.
type testContext struct {
	balances map[tosca.Address]tosca.Value
	storage  map[tosca.Address]map[tosca.Key]tosca.Word
	logs     []tosca.Log
	calls    []tosca.CallParameters
	callFunc func(tosca.CallKind, tosca.CallParameters) (tosca.CallResult, error)
}

func newTestContext() *testContext {
	return &testContext{
		balances: map[tosca.Address]tosca.Value{},
		storage:  map[tosca.Address]map[tosca.Key]tosca.Word{},
	}
}

func (c *testContext) AccountExists(tosca.Address) bool { return true }
func (c *testContext) GetBalance(a tosca.Address) tosca.Value {
	return c.balances[a]
}
func (c *testContext) SetBalance(a tosca.Address, v tosca.Value) { c.balances[a] = v }
func (c *testContext) GetNonce(tosca.Address) uint64             { return 0 }
func (c *testContext) SetNonce(tosca.Address, uint64)            {}
func (c *testContext) GetCode(tosca.Address) tosca.Code          { return nil }
func (c *testContext) GetCodeHash(tosca.Address) tosca.Hash      { return tosca.Hash{} }
func (c *testContext) GetCodeSize(tosca.Address) int             { return 0 }
func (c *testContext) SetCode(tosca.Address, tosca.Code)         {}

func (c *testContext) GetStorage(a tosca.Address, k tosca.Key) tosca.Word {
	return c.storage[a][k]
}
func (c *testContext) SetStorage(a tosca.Address, k tosca.Key, v tosca.Word) tosca.StorageStatus {
	if c.storage[a] == nil {
		c.storage[a] = map[tosca.Key]tosca.Word{}
	}
	original := c.storage[a][k]
	c.storage[a][k] = v
	return tosca.GetStorageStatus(original, original, v)
}
func (c *testContext) SelfDestruct(tosca.Address, tosca.Address) bool { return true }

func (c *testContext) CreateSnapshot() tosca.Snapshot   { return 0 }
func (c *testContext) RestoreSnapshot(tosca.Snapshot)   {}
func (c *testContext) GetTransientStorage(tosca.Address, tosca.Key) tosca.Word {
	return tosca.Word{}
}
func (c *testContext) SetTransientStorage(tosca.Address, tosca.Key, tosca.Word) {}
func (c *testContext) EmitLog(l tosca.Log)                                     { c.logs = append(c.logs, l) }
func (c *testContext) GetLogs() []tosca.Log                                    { return c.logs }
func (c *testContext) GetBlockHash(int64) tosca.Hash                           { return tosca.Hash{} }
func (c *testContext) GetCommittedStorage(tosca.Address, tosca.Key) tosca.Word {
	return tosca.Word{}
}
func (c *testContext) HasSelfDestructed(tosca.Address) bool { return false }

func (c *testContext) Call(kind tosca.CallKind, p tosca.CallParameters) (tosca.CallResult, error) {
	c.calls = append(c.calls, p)
	if c.callFunc != nil {
		return c.callFunc(kind, p)
	}
	return tosca.CallResult{Success: true, GasLeft: p.Gas}, nil
}

func run(t *testing.T, code []byte, revision tosca.Revision) tosca.Result {
	t.Helper()
	vm := New(Config{})
	result, err := vm.Run(tosca.Parameters{
		BlockParameters: tosca.BlockParameters{Revision: revision},
		Context:         newTestContext(),
		Gas:             1_000_000,
		Code:            tosca.Code(code),
	})
	if err != nil {
		t.Fatalf("unexpected interpreter error: %v", err)
	}
	return result
}

func TestVM_Run_EmptyCodeSucceedsWithFullGas(t *testing.T) {
	vm := New(Config{})
	result, err := vm.Run(tosca.Parameters{Gas: 21000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success || result.GasLeft != 21000 {
		t.Errorf("got %+v, want success with all gas left", result)
	}
}

func TestVM_Run_SimpleAdditionAndReturn(t *testing.T) {
	// PUSH1 2 PUSH1 3 ADD PUSH1 0 MSTORE PUSH1 32 PUSH1 0 RETURN
	code := []byte{
		byte(PUSH1), 2,
		byte(PUSH1), 3,
		byte(ADD),
		byte(PUSH1), 0,
		byte(MSTORE),
		byte(PUSH1), 32,
		byte(PUSH1), 0,
		byte(RETURN),
	}
	result := run(t, code, tosca.R13_Cancun)
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if len(result.Output) != 32 || result.Output[31] != 5 {
		t.Errorf("expected output ending in 5, got %x", result.Output)
	}
}

func TestVM_Run_RevertReturnsFailureWithOutput(t *testing.T) {
	code := []byte{
		byte(PUSH1), 0xAB,
		byte(PUSH1), 0,
		byte(MSTORE8),
		byte(PUSH1), 1,
		byte(PUSH1), 0,
		byte(REVERT),
	}
	result := run(t, code, tosca.R13_Cancun)
	if result.Success {
		t.Fatalf("expected failure from REVERT")
	}
	if len(result.Output) != 1 || result.Output[0] != 0xAB {
		t.Errorf("expected revert output [0xAB], got %x", result.Output)
	}
}

func TestVM_Run_InvalidJumpFails(t *testing.T) {
	code := []byte{
		byte(PUSH1), 0x09, // not a JUMPDEST
		byte(JUMP),
		byte(STOP),
	}
	result := run(t, code, tosca.R13_Cancun)
	if result.Success {
		t.Fatalf("expected failure from invalid jump target")
	}
}

func TestVM_Run_JumpToValidDestination(t *testing.T) {
	code := []byte{
		byte(PUSH1), 4,
		byte(JUMP),
		byte(INVALID),
		byte(JUMPDEST),
		byte(STOP),
	}
	result := run(t, code, tosca.R13_Cancun)
	if !result.Success {
		t.Fatalf("expected successful jump, got %+v", result)
	}
}

func TestVM_Run_OutOfGasFails(t *testing.T) {
	vm := New(Config{})
	result, err := vm.Run(tosca.Parameters{
		BlockParameters: tosca.BlockParameters{Revision: tosca.R13_Cancun},
		Context:         newTestContext(),
		Gas:             1,
		Code:            tosca.Code{byte(PUSH1), 1, byte(PUSH1), 2, byte(ADD)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Success {
		t.Fatalf("expected out-of-gas failure")
	}
}

func TestVM_Run_SstoreAndSload(t *testing.T) {
	code := []byte{
		byte(PUSH1), 7,
		byte(PUSH1), 0,
		byte(SSTORE),
		byte(PUSH1), 0,
		byte(SLOAD),
		byte(PUSH1), 0,
		byte(MSTORE),
		byte(PUSH1), 32,
		byte(PUSH1), 0,
		byte(RETURN),
	}
	result := run(t, code, tosca.R13_Cancun)
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.Output[31] != 7 {
		t.Errorf("expected stored value 7 to round-trip, got %x", result.Output)
	}
}

func TestVM_Run_Push0RequiresShanghai(t *testing.T) {
	code := []byte{byte(PUSH0), byte(STOP)}
	if result := run(t, code, tosca.R11_Paris); result.Success {
		t.Errorf("expected PUSH0 to fail before Shanghai")
	}
	if result := run(t, code, tosca.R12_Shanghai); !result.Success {
		t.Errorf("expected PUSH0 to succeed from Shanghai onward")
	}
}
