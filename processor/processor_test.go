package processor

import (
	"context"
	"testing"

	"github.com/openevm/corevm/tosca"
	"go.uber.org/mock/gomock"
)

func TestProcessorRegistry_InitProcessor(t *testing.T) {
	factories := tosca.GetAllRegisteredProcessorFactories()
	if len(factories) == 0 {
		t.Errorf("no processor factories found")
	}

	factory := tosca.GetProcessorFactory("corevm")
	if factory == nil {
		t.Errorf("corevm processor factory not found")
	}
}

func TestProcessor_HandleNonce(t *testing.T) {
	ctrl := gomock.NewController(t)
	context := tosca.NewMockTransactionContext(ctrl)

	context.EXPECT().GetNonce(tosca.Address{1}).Return(uint64(9))
	context.EXPECT().SetNonce(tosca.Address{1}, uint64(10))

	transaction := tosca.Transaction{
		Sender: tosca.Address{1},
		Nonce:  9,
	}

	if err := handleNonce(transaction, context); err != nil {
		t.Errorf("handleNonce returned an error: %v", err)
	}
}

func TestProcessor_NonceMismatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	context := tosca.NewMockTransactionContext(ctrl)

	context.EXPECT().GetNonce(tosca.Address{1}).Return(uint64(5))

	transaction := tosca.Transaction{
		Sender: tosca.Address{1},
		Nonce:  10,
	}
	if err := handleNonce(transaction, context); err == nil {
		t.Errorf("handleNonce did not spot nonce mismatch")
	}
}

func TestProcessor_BuyGas(t *testing.T) {
	balance := uint64(1000)
	gasLimit := uint64(100)
	gasPrice := uint64(2)

	transaction := tosca.Transaction{
		Sender:   tosca.Address{1},
		GasLimit: tosca.Gas(gasLimit),
		GasPrice: tosca.NewValue(gasPrice),
	}

	ctrl := gomock.NewController(t)
	context := tosca.NewMockTransactionContext(ctrl)
	context.EXPECT().GetBalance(transaction.Sender).Return(tosca.NewValue(balance))
	context.EXPECT().SetBalance(transaction.Sender, tosca.NewValue(balance-gasLimit*gasPrice))

	if err := buyGas(transaction, context); err != nil {
		t.Errorf("buyGas returned an error: %v", err)
	}
}

func TestProcessor_BuyGasInsufficientBalance(t *testing.T) {
	balance := uint64(100)
	gasLimit := uint64(100)
	gasPrice := uint64(2)

	transaction := tosca.Transaction{
		Sender:   tosca.Address{1},
		GasLimit: tosca.Gas(gasLimit),
		GasPrice: tosca.NewValue(gasPrice),
	}

	ctrl := gomock.NewController(t)
	context := tosca.NewMockTransactionContext(ctrl)
	context.EXPECT().GetBalance(transaction.Sender).Return(tosca.NewValue(balance))

	if err := buyGas(transaction, context); err == nil {
		t.Errorf("buyGas did not fail with insufficient balance")
	}
}

func TestIntrinsicGas_BaseCostDistinguishesContractCreation(t *testing.T) {
	recipient := tosca.Address{2}
	call := tosca.Transaction{Recipient: &recipient}
	create := tosca.Transaction{Recipient: nil}

	if got := intrinsicGas(call); got != txGas {
		t.Errorf("unexpected base gas for call: %v", got)
	}
	if got := intrinsicGas(create); got != txGasContractCreation {
		t.Errorf("unexpected base gas for contract creation: %v", got)
	}
}

func TestIntrinsicGas_ChargesPerByteCalldataCost(t *testing.T) {
	recipient := tosca.Address{2}
	transaction := tosca.Transaction{
		Recipient: &recipient,
		Input:     []byte{0x00, 0x00, 0x01, 0x02},
	}
	want := txGas + 2*txDataZeroGasEIP2028 + 2*txDataNonZeroGasEIP2028
	if got := intrinsicGas(transaction); got != want {
		t.Errorf("unexpected intrinsic gas: got %v, want %v", got, want)
	}
}

func TestIntrinsicGas_ChargesAccessList(t *testing.T) {
	recipient := tosca.Address{2}
	transaction := tosca.Transaction{
		Recipient: &recipient,
		AccessList: []tosca.AccessTuple{
			{Address: tosca.Address{3}, Keys: []tosca.Key{{1}, {2}}},
		},
	}
	want := txGas + txAccessListAddressGas + 2*txAccessListStorageKeyGas
	if got := intrinsicGas(transaction); got != want {
		t.Errorf("unexpected intrinsic gas: got %v, want %v", got, want)
	}
}

func TestChargeGas_CapsRefundAtHalfGasUsed(t *testing.T) {
	transaction := tosca.Transaction{GasLimit: 100}
	result := tosca.Result{GasLeft: 0, GasRefund: 80}

	// gasUsed = 100, cap = 50, so only 50 of the 80 refund is applied.
	want := tosca.Gas(50)
	if got := chargeGas(transaction, result); got != want {
		t.Errorf("unexpected charged gas: got %v, want %v", got, want)
	}
}

// TestProcessor_RunRefundsUnusedGasToSender drives a full Run of a plain
// value-less call against a not-yet-existing recipient, the cheapest path
// through executeCall (the Berlin empty-account short circuit), so the only
// gas spent is the intrinsic cost. It asserts that the sender ends up paying
// exactly usedGas*GasPrice, not the full GasLimit*GasPrice bought up front.
func TestProcessor_RunRefundsUnusedGasToSender(t *testing.T) {
	ctrl := gomock.NewController(t)
	txContext := tosca.NewMockTransactionContext(ctrl)
	interp := tosca.NewMockInterpreter(ctrl)

	sender := tosca.Address{1}
	recipient := tosca.Address{0xAA}

	const (
		initialBalance = uint64(1_000_000)
		gasLimit       = tosca.Gas(100_000)
		gasPrice       = uint64(1)
	)

	transaction := tosca.Transaction{
		Sender:    sender,
		Recipient: &recipient,
		GasLimit:  gasLimit,
		GasPrice:  tosca.NewValue(gasPrice),
	}
	block := tosca.BlockParameters{Revision: tosca.R09_Berlin}

	afterBuy := initialBalance - uint64(gasLimit)*gasPrice

	gomock.InOrder(
		txContext.EXPECT().GetBalance(sender).Return(tosca.NewValue(initialBalance)),
		txContext.EXPECT().SetBalance(sender, tosca.NewValue(afterBuy)),
	)
	txContext.EXPECT().GetNonce(sender).Return(uint64(0))
	txContext.EXPECT().SetNonce(sender, uint64(1))
	txContext.EXPECT().AccountExists(recipient).Return(false)
	txContext.EXPECT().GetLogs().Return(nil)

	usedGas := txGas // intrinsic cost of a plain call, nothing else is spent
	refund := uint64(gasLimit-usedGas) * gasPrice
	gomock.InOrder(
		txContext.EXPECT().GetBalance(sender).Return(tosca.NewValue(afterBuy)),
		txContext.EXPECT().SetBalance(sender, tosca.NewValue(afterBuy+refund)),
	)

	p := New(interp)
	receipt, err := p.Run(context.Background(), block, transaction, txContext)
	if err != nil {
		t.Fatalf("Run returned an error: %v", err)
	}
	if !receipt.Success {
		t.Fatalf("Run did not succeed")
	}
	if receipt.GasUsed != usedGas {
		t.Errorf("unexpected GasUsed: got %v, want %v", receipt.GasUsed, usedGas)
	}
}

func TestChargeGas_RefundBelowCapIsAppliedInFull(t *testing.T) {
	transaction := tosca.Transaction{GasLimit: 100}
	result := tosca.Result{GasLeft: 50, GasRefund: 10}

	// gasUsed = 50, cap = 25, refund 10 is under the cap.
	want := tosca.Gas(40)
	if got := chargeGas(transaction, result); got != want {
		t.Errorf("unexpected charged gas: got %v, want %v", got, want)
	}
}
