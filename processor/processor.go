// Package processor implements the transaction-level orchestration that
// sits above an Interpreter: intrinsic gas accounting, nonce handling,
// value transfer, checkpoint commit/revert, and dispatch into either a
// contract call or a contract-creation sub-protocol.
package processor

import (
	"context"
	"fmt"

	"github.com/openevm/corevm/tosca"
)

// Intrinsic gas costs charged before any interpreter code runs.
const (
	txGas                 tosca.Gas = 21_000
	txGasContractCreation tosca.Gas = 53_000

	txDataZeroGasEIP2028    tosca.Gas = 4
	txDataNonZeroGasEIP2028 tosca.Gas = 16

	txAccessListAddressGas    tosca.Gas = 2400
	txAccessListStorageKeyGas tosca.Gas = 1900
)

func init() {
	tosca.RegisterProcessorFactory("corevm", func(interpreter tosca.Interpreter) (tosca.Processor, error) {
		return New(interpreter), nil
	})
}

// processor is the corevm tosca.Processor implementation.
type processor struct {
	interpreter tosca.Interpreter
}

// New constructs a Processor that dispatches contract calls and creations
// through interpreter.
func New(interpreter tosca.Interpreter) tosca.Processor {
	return &processor{interpreter: interpreter}
}

// Run implements tosca.Processor.
func (p *processor) Run(
	ctx context.Context,
	block tosca.BlockParameters,
	transaction tosca.Transaction,
	txContext tosca.TransactionContext,
) (tosca.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return tosca.Receipt{}, err
	}

	errorReceipt := tosca.Receipt{
		Success: false,
		GasUsed: transaction.GasLimit,
	}

	if err := buyGas(transaction, txContext); err != nil {
		return errorReceipt, nil
	}

	gas := transaction.GasLimit
	intrinsicGas := intrinsicGas(transaction)
	if gas < intrinsicGas {
		return errorReceipt, nil
	}
	gas -= intrinsicGas

	if err := handleNonce(transaction, txContext); err != nil {
		return errorReceipt, nil
	}

	run := newRunContext(p.interpreter, txContext, block, transaction)

	var result tosca.Result
	var createdAddress *tosca.Address
	var err error

	if transaction.Recipient == nil {
		result, createdAddress, err = run.create(transaction, gas)
	} else {
		var callResult tosca.CallResult
		callResult, err = run.Call(tosca.Call, tosca.CallParameters{
			Sender:      transaction.Sender,
			Recipient:   *transaction.Recipient,
			CodeAddress: *transaction.Recipient,
			Value:       transaction.Value,
			Input:       transaction.Input,
			Gas:         gas,
		})
		result = tosca.Result{
			Success:   callResult.Success,
			Output:    callResult.Output,
			GasLeft:   callResult.GasLeft,
			GasRefund: callResult.GasRefund,
		}
	}
	if err != nil {
		return errorReceipt, err
	}

	used := chargeGas(transaction, result)
	refundGas(transaction, used, txContext)

	return tosca.Receipt{
		Success:         result.Success,
		GasUsed:         used,
		ContractAddress: createdAddress,
		Output:          result.Output,
		Logs:            txContext.GetLogs(),
	}, nil
}

// chargeGas computes the final gas charged for the transaction, capping the
// refund counter accumulated during execution at half the gas actually used
// (spec §9), rather than crediting it back at full value.
func chargeGas(transaction tosca.Transaction, result tosca.Result) tosca.Gas {
	gasUsed := transaction.GasLimit - result.GasLeft
	refund := result.GasRefund
	if cap := gasUsed / 2; refund > cap {
		refund = cap
	}
	return gasUsed - refund
}

// refundGas credits the sender for gas bought by buyGas but not ultimately
// used, at the transaction's own gas price.
func refundGas(transaction tosca.Transaction, used tosca.Gas, context tosca.TransactionContext) {
	unused := transaction.GasLimit - used
	credit := transaction.GasPrice.Scale(uint64(unused))
	balance := context.GetBalance(transaction.Sender)
	context.SetBalance(transaction.Sender, tosca.Add(balance, credit))
}

// intrinsicGas computes the gas a transaction must pay before any code
// runs: a base fee distinguishing calls from contract creation, a per-byte
// calldata cost (EIP-2028), and a per-entry access-list cost.
func intrinsicGas(transaction tosca.Transaction) tosca.Gas {
	gas := txGas
	if transaction.Recipient == nil {
		gas = txGasContractCreation
	}

	if len(transaction.Input) > 0 {
		nonZeroBytes := tosca.Gas(0)
		for _, b := range transaction.Input {
			if b != 0 {
				nonZeroBytes++
			}
		}
		zeroBytes := tosca.Gas(len(transaction.Input)) - nonZeroBytes
		gas += zeroBytes*txDataZeroGasEIP2028 + nonZeroBytes*txDataNonZeroGasEIP2028
	}

	for _, tuple := range transaction.AccessList {
		gas += txAccessListAddressGas
		gas += tosca.Gas(len(tuple.Keys)) * txAccessListStorageKeyGas
	}

	return gas
}

// handleNonce verifies the transaction's nonce matches the sender's current
// nonce and, if so, increments it.
func handleNonce(transaction tosca.Transaction, context tosca.TransactionContext) error {
	stateNonce := context.GetNonce(transaction.Sender)
	if transaction.Nonce != stateNonce {
		return fmt.Errorf("nonce mismatch: transaction has %v, state has %v", transaction.Nonce, stateNonce)
	}
	context.SetNonce(transaction.Sender, stateNonce+1)
	return nil
}

// buyGas debits GasLimit*GasPrice from the sender's balance up front,
// failing the transaction before any state mutation if the balance is
// insufficient.
func buyGas(transaction tosca.Transaction, context tosca.TransactionContext) error {
	cost := transaction.GasPrice.Scale(uint64(transaction.GasLimit))
	balance := context.GetBalance(transaction.Sender)
	if balance.Cmp(cost) < 0 {
		return fmt.Errorf("insufficient balance to buy gas: %v < %v", balance, cost)
	}
	context.SetBalance(transaction.Sender, tosca.Sub(balance, cost))
	return nil
}
