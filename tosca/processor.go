package tosca

//go:generate mockgen -source processor.go -destination processor_mock.go -package tosca

import "context"

// Processor is a component capable of executing whole transactions against
// a TransactionContext: charging gas, checking and incrementing the
// sender's nonce, dispatching to contract creation or message calls
// (recursively, through an Interpreter reached via RunContext.Call), and
// crediting any unused gas and refunds back to the sender.
//
// ctx is observed only between transactions, never inside the interpreter's
// hot loop; a Processor checks it before starting a transaction's execution
// and returns ctx.Err() without mutating state if it is already done.
type Processor interface {
	Run(ctx context.Context, block BlockParameters, transaction Transaction, context TransactionContext) (Receipt, error)
}

// Transaction summarizes the parameters of a transaction to be executed.
type Transaction struct {
	Sender     Address       // pays for the transaction's execution
	Recipient  *Address      // nil if this transaction creates a new contract
	Nonce      uint64        // must match the sender account's current nonce
	Input      Data          // call data, or init code when Recipient is nil
	Value      Value         // amount of network currency moved to Recipient
	GasLimit   Gas           // maximum gas the transaction may consume
	GasPrice   Value         // price paid per unit of gas
	AccessList []AccessTuple // accounts/slots the sender expects to touch
}

// AccessTuple names a range of accounts and storage slots a transaction
// expects to access. Each tuple adds a per-address and a per-key cost to a
// transaction's intrinsic gas, but does not warm the listed accounts or
// slots: access-list based cold/warm pricing (EIP-2929/3529) is not
// implemented.
type AccessTuple struct {
	Address Address
	Keys    []Key
}

// Receipt summarizes the outcome of executing a Transaction.
type Receipt struct {
	Success         bool
	Output          Data
	ContractAddress *Address // set if this transaction created a contract
	GasUsed         Gas
	Logs            []Log
}
