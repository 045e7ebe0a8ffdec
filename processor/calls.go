package processor

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/openevm/corevm/tosca"
)

// create runs a contract-creation transaction: unlike a nested CREATE/CREATE2
// opcode, the creating account's nonce has already been consumed by the
// Processor's handleNonce step, so the new contract's address is derived
// directly from the transaction's own nonce rather than from one more
// increment of it.
func (r *runContext) create(transaction tosca.Transaction, gas tosca.Gas) (tosca.Result, *tosca.Address, error) {
	if !canTransferValue(r.TransactionContext, transaction.Value, transaction.Sender, nil) {
		return tosca.Result{Success: false}, nil, nil
	}
	r.depth++
	defer func() { r.depth-- }()
	result, createdAddress, err := r.runCreate(
		tosca.Create,
		transaction.Sender,
		transaction.Value,
		transaction.Input,
		tosca.Hash{},
		gas,
		transaction.Nonce,
	)
	return result, createdAddress, err
}

// isRevert reports whether a failed Result came from an explicit REVERT, in
// which case its output and remaining gas survive the unwind; any other
// failure consumes all gas forwarded to the call.
func isRevert(result tosca.Result, err error) bool {
	return err == nil && !result.Success && (result.GasLeft > 0 || len(result.Output) > 0)
}

func hashCode(code tosca.Code) tosca.Hash {
	return tosca.Hash(crypto.Keccak256(code))
}

func createAddress(kind tosca.CallKind, sender tosca.Address, nonce uint64, salt tosca.Hash, initCodeHash tosca.Hash) tosca.Address {
	if kind == tosca.Create {
		return tosca.Address(crypto.CreateAddress(common.Address(sender), nonce))
	}
	return tosca.Address(crypto.CreateAddress2(common.Address(sender), common.Hash(salt), initCodeHash[:]))
}

// canTransferValue reports whether sender can afford to send value without
// its balance going negative, and, when recipient is known, without the
// recipient's balance overflowing. recipient is nil when the destination
// address has not been derived yet, as for a not-yet-executed CREATE.
func canTransferValue(context tosca.TransactionContext, value tosca.Value, sender tosca.Address, recipient *tosca.Address) bool {
	if value.IsZero() {
		return true
	}
	senderBalance := context.GetBalance(sender)
	if senderBalance.Cmp(value) < 0 {
		return false
	}
	if recipient == nil || sender == *recipient {
		return true
	}
	receiverBalance := context.GetBalance(*recipient)
	updated := tosca.Add(receiverBalance, value)
	if updated.Cmp(receiverBalance) < 0 || updated.Cmp(value) < 0 {
		return false
	}
	return true
}

// transferValue moves value from sender to recipient. Only safe to call
// after canTransferValue has reported true for the same arguments.
func transferValue(context tosca.TransactionContext, value tosca.Value, sender, recipient tosca.Address) {
	if value.IsZero() || sender == recipient {
		return
	}
	senderBalance := context.GetBalance(sender)
	receiverBalance := context.GetBalance(recipient)
	context.SetBalance(sender, tosca.Sub(senderBalance, value))
	context.SetBalance(recipient, tosca.Add(receiverBalance, value))
}

func incrementNonce(context tosca.TransactionContext, address tosca.Address) error {
	nonce := context.GetNonce(address)
	if nonce+1 < nonce {
		return fmt.Errorf("nonce overflow for %v", address)
	}
	context.SetNonce(address, nonce+1)
	return nil
}
