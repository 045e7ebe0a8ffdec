package interpreter

import (
	"fmt"

	"github.com/openevm/corevm/tosca"
)

// Config customizes how a VM built from this package executes code.
type Config struct {
	// JumpdestCacheSize bounds the number of distinct code hashes whose
	// jump-destination analysis is cached. Zero selects
	// defaultJumpdestCacheSize; a negative value disables caching,
	// recomputing the analysis on every call.
	JumpdestCacheSize int

	// Logger, if set, receives a line for every instruction executed.
	Logger StepLogger
}

// VM is a tosca.Interpreter implementation that executes raw EVM byte-code
// directly, without pre-converting it into an intermediate representation.
type VM struct {
	jumps  *JumpdestCache
	logger StepLogger
}

// New constructs a VM according to config.
func New(config Config) *VM {
	size := config.JumpdestCacheSize
	if size == 0 {
		size = defaultJumpdestCacheSize
	}
	return &VM{
		jumps:  NewJumpdestCache(size),
		logger: config.Logger,
	}
}

func init() {
	tosca.RegisterInterpreterFactory("corevm", func(config any) (tosca.Interpreter, error) {
		cfg, _ := config.(Config)
		return New(cfg), nil
	})
}

// Run implements tosca.Interpreter.
func (vm *VM) Run(params tosca.Parameters) (tosca.Result, error) {
	if len(params.Code) == 0 {
		return tosca.Result{Success: true, GasLeft: params.Gas}, nil
	}

	jumps := vm.jumps.get(params.Code, params.CodeHash)
	f := newFrame(params, jumps)
	defer f.release()

	status, err := steps(f, vm.logger)
	if err != nil {
		return tosca.Result{}, err
	}
	return generateResult(status, f)
}

func generateResult(status status, f *frame) (tosca.Result, error) {
	switch status {
	case statusStopped, statusSelfDestructed:
		return tosca.Result{
			Success:   true,
			GasLeft:   f.gas,
			GasRefund: f.refund,
		}, nil
	case statusReturned:
		return tosca.Result{
			Success:   true,
			Output:    f.returnData,
			GasLeft:   f.gas,
			GasRefund: f.refund,
		}, nil
	case statusReverted:
		return tosca.Result{
			Success: false,
			Output:  f.returnData,
			GasLeft: f.gas,
		}, nil
	case statusFailed:
		return tosca.Result{Success: false}, nil
	default:
		return tosca.Result{}, fmt.Errorf("unexpected interpreter status: %v", status)
	}
}

func checkStackBounds(stackLen int, op OpCode) error {
	req := stackRequirements[op]
	if stackLen < req.min {
		return tosca.ErrStackUnderflow
	}
	if stackLen > req.maxLeft {
		return tosca.ErrStackOverflow
	}
	return nil
}

// steps runs f to completion, dispatching one opcode at a time until the
// code ends or a STOP/RETURN/REVERT/SELFDESTRUCT/trap is reached.
func steps(f *frame, logger StepLogger) (status, error) {
	st := statusRunning
	for st == statusRunning {
		if f.pc >= int64(len(f.code)) {
			return statusStopped, nil
		}

		op := f.currentOp()

		if err := checkStackBounds(f.stack.len(), op); err != nil {
			return statusFailed, nil
		}

		if err := f.useGas(staticGasCosts[op]); err != nil {
			return statusFailed, nil
		}

		if logger != nil {
			logger.LogStep(f, op)
		}

		var err error
		switch op {
		case STOP:
			st = opStop()
		case ADD:
			opAdd(f)
		case MUL:
			opMul(f)
		case SUB:
			opSub(f)
		case DIV:
			opDiv(f)
		case SDIV:
			opSdiv(f)
		case MOD:
			opMod(f)
		case SMOD:
			opSmod(f)
		case ADDMOD:
			opAddmod(f)
		case MULMOD:
			opMulmod(f)
		case EXP:
			err = opExp(f)
		case SIGNEXTEND:
			opSignextend(f)
		case LT:
			opLt(f)
		case GT:
			opGt(f)
		case SLT:
			opSlt(f)
		case SGT:
			opSgt(f)
		case EQ:
			opEq(f)
		case ISZERO:
			opIszero(f)
		case AND:
			opAnd(f)
		case OR:
			opOr(f)
		case XOR:
			opXor(f)
		case NOT:
			opNot(f)
		case BYTE:
			opByte(f)
		case SHL:
			opShl(f)
		case SHR:
			opShr(f)
		case SAR:
			opSar(f)
		case SHA3:
			err = opSha3(f)
		case ADDRESS:
			opAddress(f)
		case BALANCE:
			err = opBalance(f)
		case ORIGIN:
			opOrigin(f)
		case CALLER:
			opCaller(f)
		case CALLVALUE:
			opCallvalue(f)
		case CALLDATALOAD:
			opCalldataload(f)
		case CALLDATASIZE:
			opCalldatasize(f)
		case CALLDATACOPY:
			err = opCalldatacopy(f)
		case CODESIZE:
			opCodesize(f)
		case CODECOPY:
			err = opCodecopy(f)
		case GASPRICE:
			opGasprice(f)
		case EXTCODESIZE:
			err = opExtcodesize(f)
		case EXTCODECOPY:
			err = opExtcodecopy(f)
		case RETURNDATASIZE:
			opReturndatasize(f)
		case RETURNDATACOPY:
			err = opReturndatacopy(f)
		case EXTCODEHASH:
			err = opExtcodehash(f)
		case BLOCKHASH:
			opBlockhash(f)
		case COINBASE:
			opCoinbase(f)
		case TIMESTAMP:
			opTimestamp(f)
		case NUMBER:
			opNumber(f)
		case PREVRANDAO:
			opPrevrandao(f)
		case GASLIMIT:
			opGaslimit(f)
		case CHAINID:
			opChainid(f)
		case SELFBALANCE:
			opSelfbalance(f)
		case BASEFEE:
			err = opBaseFee(f)
		case BLOBHASH:
			err = opBlobHash(f)
		case BLOBBASEFEE:
			err = opBlobBaseFee(f)
		case POP:
			opPop(f)
		case MLOAD:
			err = opMload(f)
		case MSTORE:
			err = opMstore(f)
		case MSTORE8:
			err = opMstore8(f)
		case SLOAD:
			err = opSload(f)
		case SSTORE:
			err = opSstore(f)
		case JUMP:
			err = opJump(f)
		case JUMPI:
			err = opJumpi(f)
		case PC:
			opPc(f)
		case MSIZE:
			opMsize(f)
		case GAS:
			opGas(f)
		case JUMPDEST:
			// no-op, already validated during analysis.
		case TLOAD:
			err = opTload(f)
		case TSTORE:
			err = opTstore(f)
		case MCOPY:
			err = opMcopy(f)
		case PUSH0:
			err = opPush0(f)
		case PUSH1, PUSH2, PUSH3, PUSH4, PUSH5, PUSH6, PUSH7, PUSH8, PUSH9, PUSH10,
			PUSH11, PUSH12, PUSH13, PUSH14, PUSH15, PUSH16, PUSH17, PUSH18, PUSH19,
			PUSH20, PUSH21, PUSH22, PUSH23, PUSH24, PUSH25, PUSH26, PUSH27, PUSH28,
			PUSH29, PUSH30, PUSH31, PUSH32:
			opPush(f, int(op-PUSH1)+1)
		case DUP1, DUP2, DUP3, DUP4, DUP5, DUP6, DUP7, DUP8, DUP9, DUP10,
			DUP11, DUP12, DUP13, DUP14, DUP15, DUP16:
			opDup(f, int(op-DUP1)+1)
		case SWAP1, SWAP2, SWAP3, SWAP4, SWAP5, SWAP6, SWAP7, SWAP8, SWAP9, SWAP10,
			SWAP11, SWAP12, SWAP13, SWAP14, SWAP15, SWAP16:
			opSwap(f, int(op-SWAP1)+1)
		case LOG0, LOG1, LOG2, LOG3, LOG4:
			err = opLog(f, int(op-LOG0))
		case CREATE:
			err = opCreate(f)
		case CALL:
			err = opCall(f)
		case RETURN:
			st = statusReturned
			err = opReturnOrRevert(f)
		case DELEGATECALL:
			err = opDelegateCall(f)
		case CREATE2:
			err = opCreate2(f)
		case STATICCALL:
			err = opStaticCall(f)
		case REVERT:
			st = statusReverted
			err = opReturnOrRevert(f)
		case CALLCODE:
			err = opCallCode(f)
		case SELFDESTRUCT:
			st, err = opSelfdestruct(f)
		default:
			err = tosca.ErrInvalidOpcode
		}

		if err != nil {
			return statusFailed, nil
		}

		f.pc++
		if st != statusRunning {
			return st, nil
		}
	}
	return st, nil
}
