package processor

import (
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/openevm/corevm/tosca"
)

// maxCallDepth bounds CALL/CREATE recursion; enforced here rather than in
// the interpreter, mirroring the teacher's split between interpreter and
// processor responsibilities.
const maxCallDepth = 1024

// maxCodeSize bounds the size of code a CREATE/CREATE2 may install,
// unconditionally of revision (EIP-170).
const maxCodeSize = 24576

// createGasCostPerByte is charged against the gas left over from running
// init code, per byte of code it returns for deployment.
const createGasCostPerByte = 200

var emptyCodeHash = tosca.Hash(crypto.Keccak256(nil))

// runContext is the tosca.RunContext an interpreter invocation sees: it
// extends the caller-supplied TransactionContext with the block and
// transaction environment, call-depth tracking, and static-call
// propagation needed to dispatch CALL/CREATE family operations.
type runContext struct {
	tosca.TransactionContext
	interpreter tosca.Interpreter
	block       tosca.BlockParameters
	transaction tosca.TransactionParameters
	depth       int
	static      bool
}

func newRunContext(
	interpreter tosca.Interpreter,
	context tosca.TransactionContext,
	block tosca.BlockParameters,
	transaction tosca.Transaction,
) *runContext {
	return &runContext{
		TransactionContext: context,
		interpreter:        interpreter,
		block:              block,
		transaction: tosca.TransactionParameters{
			Origin:   transaction.Sender,
			GasPrice: transaction.GasPrice,
		},
	}
}

// Call implements tosca.RunContext, dispatching to the message-call or
// contract-creation sub-protocol depending on kind.
func (r *runContext) Call(kind tosca.CallKind, parameters tosca.CallParameters) (tosca.CallResult, error) {
	if kind == tosca.Create || kind == tosca.Create2 {
		return r.executeCreate(kind, parameters)
	}
	return r.executeCall(kind, parameters)
}

func (r *runContext) executeCall(kind tosca.CallKind, parameters tosca.CallParameters) (tosca.CallResult, error) {
	failed := tosca.CallResult{Success: false, GasLeft: parameters.Gas}
	if r.depth >= maxCallDepth {
		return failed, nil
	}
	r.depth++
	defer func() { r.depth-- }()

	if kind == tosca.Call || kind == tosca.CallCode {
		if !canTransferValue(r.TransactionContext, parameters.Value, parameters.Sender, &parameters.Recipient) {
			return failed, nil
		}
	}

	wasStatic := r.static
	if kind == tosca.StaticCall {
		r.static = true
	}
	defer func() { r.static = wasStatic }()

	recipient := parameters.Recipient

	if r.block.Revision.IsAtLeast(tosca.R09_Berlin) &&
		!tosca.IsPrecompiledContract(recipient) &&
		!r.AccountExists(recipient) &&
		parameters.Value.IsZero() {
		return tosca.CallResult{Success: true, GasLeft: parameters.Gas}, nil
	}

	if kind == tosca.Call || kind == tosca.CallCode {
		transferValue(r.TransactionContext, parameters.Value, parameters.Sender, recipient)
	}

	snapshot := r.CreateSnapshot()

	if result, ok := runPrecompiled(r.block.Revision, parameters.Input, recipient, parameters.Gas); ok {
		if !result.Success {
			r.RestoreSnapshot(snapshot)
			result.GasLeft = 0
		}
		return result, nil
	}

	var codeHash tosca.Hash
	var code tosca.Code
	if kind == tosca.Call || kind == tosca.StaticCall {
		codeHash = r.GetCodeHash(recipient)
		code = r.GetCode(recipient)
	} else {
		code = r.GetCode(parameters.CodeAddress)
		codeHash = r.GetCodeHash(parameters.CodeAddress)
	}

	params := tosca.Parameters{
		BlockParameters:       r.block,
		TransactionParameters: r.transaction,
		Context:               r,
		Kind:                  kind,
		Static:                r.static,
		Depth:                 r.depth - 1,
		Gas:                   parameters.Gas,
		Recipient:             recipient,
		Sender:                parameters.Sender,
		Input:                 parameters.Input,
		Value:                 parameters.Value,
		CodeHash:              &codeHash,
		Code:                  code,
	}

	result, err := r.interpreter.Run(params)
	if err != nil || !result.Success {
		r.RestoreSnapshot(snapshot)
		if !isRevert(result, err) {
			result.GasLeft = 0
		}
	}

	return tosca.CallResult{
		Output:    result.Output,
		GasLeft:   result.GasLeft,
		GasRefund: result.GasRefund,
		Success:   result.Success,
	}, err
}

func (r *runContext) executeCreate(kind tosca.CallKind, parameters tosca.CallParameters) (tosca.CallResult, error) {
	failed := tosca.CallResult{Success: false, GasLeft: parameters.Gas}
	if r.depth >= maxCallDepth {
		return failed, nil
	}
	r.depth++
	defer func() { r.depth-- }()

	if !canTransferValue(r.TransactionContext, parameters.Value, parameters.Sender, nil) {
		return failed, nil
	}
	if err := incrementNonce(r.TransactionContext, parameters.Sender); err != nil {
		return failed, nil
	}

	result, createdAddress, err := r.runCreate(
		kind,
		parameters.Sender,
		parameters.Value,
		[]byte(parameters.Input),
		parameters.Salt,
		parameters.Gas,
		r.GetNonce(parameters.Sender)-1,
	)
	if err != nil {
		return tosca.CallResult{}, err
	}
	var address tosca.Address
	if createdAddress != nil {
		address = *createdAddress
	}
	return tosca.CallResult{
		Output:         result.Output,
		GasLeft:        result.GasLeft,
		GasRefund:      result.GasRefund,
		Success:        result.Success,
		CreatedAddress: address,
	}, nil
}

// runCreate derives the new contract's address, runs its init code, and
// installs the resulting code on success. It does not touch the creating
// account's nonce; callers that model a CREATE/CREATE2 opcode increment it
// beforehand and pass the pre-increment value as nonce, while the
// transaction-level contract-creation path passes the transaction's own
// nonce directly, since the Processor already accounted for that increment.
func (r *runContext) runCreate(
	kind tosca.CallKind,
	sender tosca.Address,
	value tosca.Value,
	initCode []byte,
	salt tosca.Hash,
	gas tosca.Gas,
	nonce uint64,
) (tosca.Result, *tosca.Address, error) {
	code := tosca.Code(initCode)
	codeHash := hashCode(code)
	createdAddress := createAddress(kind, sender, nonce, salt, codeHash)

	if r.GetNonce(createdAddress) != 0 ||
		(r.GetCodeHash(createdAddress) != (tosca.Hash{}) && r.GetCodeHash(createdAddress) != emptyCodeHash) {
		return tosca.Result{Success: false}, nil, nil
	}

	snapshot := r.CreateSnapshot()
	r.SetNonce(createdAddress, 1)
	transferValue(r.TransactionContext, value, sender, createdAddress)

	params := tosca.Parameters{
		BlockParameters:       r.block,
		TransactionParameters: r.transaction,
		Context:               r,
		Kind:                  kind,
		Static:                r.static,
		Depth:                 r.depth - 1,
		Gas:                   gas,
		Recipient:             createdAddress,
		Sender:                sender,
		Input:                 nil,
		Value:                 value,
		CodeHash:              &codeHash,
		Code:                  code,
	}

	result, err := r.interpreter.Run(params)
	if err != nil || !result.Success {
		r.RestoreSnapshot(snapshot)
		if !isRevert(result, err) {
			return tosca.Result{Success: false}, nil, err
		}
		return tosca.Result{Success: false, Output: result.Output, GasLeft: result.GasLeft}, &createdAddress, nil
	}

	outCode := result.Output
	if len(outCode) > maxCodeSize {
		result.Success = false
	}
	if r.block.Revision.IsAtLeast(tosca.R10_London) && len(outCode) > 0 && outCode[0] == 0xEF {
		result.Success = false
	}
	depositGas := tosca.Gas(len(outCode)) * createGasCostPerByte
	if result.GasLeft < depositGas {
		result.Success = false
	} else {
		result.GasLeft -= depositGas
	}

	if result.Success {
		r.SetCode(createdAddress, tosca.Code(outCode))
		return result, &createdAddress, nil
	}

	r.RestoreSnapshot(snapshot)
	result.GasLeft = 0
	result.Output = nil
	return result, &createdAddress, nil
}
