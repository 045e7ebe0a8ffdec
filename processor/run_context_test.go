package processor

import (
	"testing"

	"github.com/openevm/corevm/tosca"
	"go.uber.org/mock/gomock"
)

func newTestRunContext(interpreter tosca.Interpreter, context tosca.TransactionContext, revision tosca.Revision) *runContext {
	return newRunContext(
		interpreter,
		context,
		tosca.BlockParameters{Revision: revision},
		tosca.Transaction{Sender: tosca.Address{1}, GasPrice: tosca.NewValue(1)},
	)
}

func TestRunContext_CallRejectsBeyondMaxDepth(t *testing.T) {
	ctrl := gomock.NewController(t)
	context := tosca.NewMockTransactionContext(ctrl)
	interpreter := tosca.NewMockInterpreter(ctrl)

	run := newTestRunContext(interpreter, context, tosca.R13_Cancun)
	run.depth = maxCallDepth

	result, err := run.Call(tosca.Call, tosca.CallParameters{
		Sender:    tosca.Address{1},
		Recipient: tosca.Address{2},
		Gas:       1000,
	})
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if result.Success {
		t.Errorf("call beyond max depth should fail")
	}
	if result.GasLeft != 1000 {
		t.Errorf("gas should be returned unconsumed on depth-limit rejection")
	}
}

func TestRunContext_CallFailsOnInsufficientBalance(t *testing.T) {
	ctrl := gomock.NewController(t)
	context := tosca.NewMockTransactionContext(ctrl)
	interpreter := tosca.NewMockInterpreter(ctrl)

	sender := tosca.Address{1}
	recipient := tosca.Address{2}
	context.EXPECT().GetBalance(sender).Return(tosca.NewValue(0))

	run := newTestRunContext(interpreter, context, tosca.R13_Cancun)

	result, err := run.Call(tosca.Call, tosca.CallParameters{
		Sender:    sender,
		Recipient: recipient,
		Value:     tosca.NewValue(1),
		Gas:       1000,
	})
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if result.Success {
		t.Errorf("call should fail when sender cannot afford the value transfer")
	}
}

func TestRunContext_CallToEmptyAccountWithZeroValueVanishesPostBerlin(t *testing.T) {
	ctrl := gomock.NewController(t)
	context := tosca.NewMockTransactionContext(ctrl)
	interpreter := tosca.NewMockInterpreter(ctrl)

	sender := tosca.Address{1}
	recipient := tosca.Address{2}
	context.EXPECT().AccountExists(recipient).Return(false)

	run := newTestRunContext(interpreter, context, tosca.R13_Cancun)

	result, err := run.Call(tosca.Call, tosca.CallParameters{
		Sender:    sender,
		Recipient: recipient,
		Gas:       1000,
	})
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !result.Success || result.GasLeft != 1000 {
		t.Errorf("call into a non-existent account with no value should succeed as a no-op, got %+v", result)
	}
}

func TestRunContext_StaticCallPropagatesAndRestores(t *testing.T) {
	ctrl := gomock.NewController(t)
	context := tosca.NewMockTransactionContext(ctrl)
	interpreter := tosca.NewMockInterpreter(ctrl)

	sender := tosca.Address{1}
	recipient := tosca.Address{2}

	context.EXPECT().AccountExists(recipient).Return(true)
	context.EXPECT().GetCodeHash(recipient).Return(tosca.Hash{})
	context.EXPECT().GetCode(recipient).Return(tosca.Code{})
	context.EXPECT().CreateSnapshot().Return(tosca.Snapshot(0))

	var sawStatic bool
	interpreter.EXPECT().Run(gomock.Any()).DoAndReturn(func(p tosca.Parameters) (tosca.Result, error) {
		sawStatic = p.Static
		return tosca.Result{Success: true}, nil
	})

	run := newTestRunContext(interpreter, context, tosca.R13_Cancun)

	_, err := run.Call(tosca.StaticCall, tosca.CallParameters{
		Sender:    sender,
		Recipient: recipient,
		Gas:       1000,
	})
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !sawStatic {
		t.Errorf("StaticCall should mark the interpreter frame static")
	}
	if run.static {
		t.Errorf("static flag should be restored to false after the call returns")
	}
}

func TestRunContext_FailedCallRestoresSnapshotAndZeroesGas(t *testing.T) {
	ctrl := gomock.NewController(t)
	context := tosca.NewMockTransactionContext(ctrl)
	interpreter := tosca.NewMockInterpreter(ctrl)

	sender := tosca.Address{1}
	recipient := tosca.Address{2}

	context.EXPECT().AccountExists(recipient).Return(true)
	context.EXPECT().GetCodeHash(recipient).Return(tosca.Hash{})
	context.EXPECT().GetCode(recipient).Return(tosca.Code{})
	context.EXPECT().CreateSnapshot().Return(tosca.Snapshot(1))
	context.EXPECT().RestoreSnapshot(tosca.Snapshot(1))
	interpreter.EXPECT().Run(gomock.Any()).Return(tosca.Result{Success: false}, nil)

	run := newTestRunContext(interpreter, context, tosca.R13_Cancun)

	result, err := run.Call(tosca.Call, tosca.CallParameters{
		Sender:    sender,
		Recipient: recipient,
		Gas:       1000,
	})
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if result.Success {
		t.Errorf("failed call should report failure")
	}
	if result.GasLeft != 0 {
		t.Errorf("a failure that is not a revert should consume all forwarded gas, got %v", result.GasLeft)
	}
}

func TestRunContext_RevertedCallKeepsGasLeftAndOutput(t *testing.T) {
	ctrl := gomock.NewController(t)
	context := tosca.NewMockTransactionContext(ctrl)
	interpreter := tosca.NewMockInterpreter(ctrl)

	sender := tosca.Address{1}
	recipient := tosca.Address{2}

	context.EXPECT().AccountExists(recipient).Return(true)
	context.EXPECT().GetCodeHash(recipient).Return(tosca.Hash{})
	context.EXPECT().GetCode(recipient).Return(tosca.Code{})
	context.EXPECT().CreateSnapshot().Return(tosca.Snapshot(1))
	context.EXPECT().RestoreSnapshot(tosca.Snapshot(1))
	interpreter.EXPECT().Run(gomock.Any()).Return(tosca.Result{
		Success: false,
		GasLeft: 400,
		Output:  []byte("reverted"),
	}, nil)

	run := newTestRunContext(interpreter, context, tosca.R13_Cancun)

	result, err := run.Call(tosca.Call, tosca.CallParameters{
		Sender:    sender,
		Recipient: recipient,
		Gas:       1000,
	})
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if result.GasLeft != 400 {
		t.Errorf("a revert should preserve remaining gas, got %v", result.GasLeft)
	}
	if string(result.Output) != "reverted" {
		t.Errorf("a revert should preserve output")
	}
}

func TestRunContext_CreateRejectsBeyondMaxDepth(t *testing.T) {
	ctrl := gomock.NewController(t)
	context := tosca.NewMockTransactionContext(ctrl)
	interpreter := tosca.NewMockInterpreter(ctrl)

	run := newTestRunContext(interpreter, context, tosca.R13_Cancun)
	run.depth = maxCallDepth

	result, err := run.Call(tosca.Create, tosca.CallParameters{
		Sender: tosca.Address{1},
		Gas:    1000,
	})
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if result.Success {
		t.Errorf("create beyond max depth should fail")
	}
}

func TestRunContext_CreateInstallsCodeOnSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	context := tosca.NewMockTransactionContext(ctrl)
	interpreter := tosca.NewMockInterpreter(ctrl)

	sender := tosca.Address{1}
	input := []byte{0x60, 0x00, 0x60, 0x00}
	expectedAddress := createAddress(tosca.Create, sender, 0, tosca.Hash{}, hashCode(tosca.Code(input)))

	// incrementNonce reads and bumps the creator's nonce once...
	context.EXPECT().GetNonce(sender).Return(uint64(0))
	context.EXPECT().SetNonce(sender, uint64(1))
	// ...then executeCreate re-reads it to derive the address as nonce-1.
	context.EXPECT().GetNonce(sender).Return(uint64(1))

	// runCreate's collision check finds a fresh address.
	context.EXPECT().GetNonce(expectedAddress).Return(uint64(0))
	context.EXPECT().GetCodeHash(expectedAddress).Return(tosca.Hash{})
	context.EXPECT().CreateSnapshot().Return(tosca.Snapshot(0))
	context.EXPECT().SetNonce(expectedAddress, uint64(1))

	returnedCode := []byte{0x60, 0x00}
	interpreter.EXPECT().Run(gomock.Any()).Return(tosca.Result{
		Success: true,
		Output:  returnedCode,
		GasLeft: 100_000,
	}, nil)
	context.EXPECT().SetCode(expectedAddress, tosca.Code(returnedCode))

	run := newTestRunContext(interpreter, context, tosca.R13_Cancun)

	result, err := run.Call(tosca.Create, tosca.CallParameters{
		Sender: sender,
		Value:  tosca.Value{},
		Input:  input,
		Gas:    200_000,
	})
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !result.Success {
		t.Errorf("create should succeed")
	}
	if result.CreatedAddress != expectedAddress {
		t.Errorf("unexpected created address: got %v, want %v", result.CreatedAddress, expectedAddress)
	}
}

func TestRunContext_CreateRejectsEIP3541CodePrefix(t *testing.T) {
	ctrl := gomock.NewController(t)
	context := tosca.NewMockTransactionContext(ctrl)
	interpreter := tosca.NewMockInterpreter(ctrl)

	sender := tosca.Address{1}
	input := []byte{0x60, 0x00}
	expectedAddress := createAddress(tosca.Create, sender, 0, tosca.Hash{}, hashCode(tosca.Code(input)))

	context.EXPECT().GetNonce(sender).Return(uint64(0))
	context.EXPECT().SetNonce(sender, uint64(1))
	context.EXPECT().GetNonce(sender).Return(uint64(1))

	context.EXPECT().GetNonce(expectedAddress).Return(uint64(0))
	context.EXPECT().GetCodeHash(expectedAddress).Return(tosca.Hash{})
	context.EXPECT().CreateSnapshot().Return(tosca.Snapshot(0))
	context.EXPECT().SetNonce(expectedAddress, uint64(1))
	context.EXPECT().RestoreSnapshot(tosca.Snapshot(0))

	interpreter.EXPECT().Run(gomock.Any()).Return(tosca.Result{
		Success: true,
		Output:  []byte{0xEF, 0x00},
		GasLeft: 100_000,
	}, nil)

	run := newTestRunContext(interpreter, context, tosca.R13_Cancun)

	result, err := run.Call(tosca.Create, tosca.CallParameters{
		Sender: sender,
		Input:  input,
		Gas:    200_000,
	})
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if result.Success {
		t.Errorf("code starting with 0xEF must be rejected for deployment post-London")
	}
}
