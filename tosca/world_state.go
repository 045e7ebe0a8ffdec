package tosca

//go:generate mockgen -source world_state.go -destination world_state_mock.go -package tosca

// WorldState is the interface through which an Interpreter or Processor
// reads and mutates the accounts of the chain: balances, nonces, code and
// persistent storage.
type WorldState interface {
	AccountExists(Address) bool

	GetBalance(Address) Value
	SetBalance(Address, Value)

	GetNonce(Address) uint64
	SetNonce(Address, uint64)

	GetCode(Address) Code
	GetCodeHash(Address) Hash
	GetCodeSize(Address) int
	SetCode(Address, Code)

	GetStorage(Address, Key) Word
	SetStorage(Address, Key, Word) StorageStatus

	// SelfDestruct destroys addr and transfers its balance to beneficiary.
	// If beneficiary does not exist, the balance is transferred anyway. The
	// returned bool is true the first time addr is destroyed within the
	// ongoing transaction.
	SelfDestruct(addr Address, beneficiary Address) bool
}

// Snapshot identifies a point in a TransactionContext's history that
// RestoreSnapshot can roll back to. Snapshots nest and must be restored in
// last-in-first-out order matching the call stack that created them.
type Snapshot int

// Log is a log record emitted by the LOG0..LOG4 opcodes as a side effect of
// contract execution.
type Log struct {
	Address Address
	Topics  []Hash
	Data    Data
}

// TransactionContext extends WorldState with the transaction-scoped state
// needed to execute EVM instructions: checkpointing, transient storage
// (EIP-1153), logs, and historical block hashes. Access-list bookkeeping
// (EIP-2929/3529 cold/warm accounting) is deliberately not part of this
// interface; every account and storage access is charged at its flat,
// pre-Berlin cost.
type TransactionContext interface {
	WorldState

	// CreateSnapshot captures the current state so it can later be restored
	// by RestoreSnapshot, e.g. when a nested call reverts.
	CreateSnapshot() Snapshot
	RestoreSnapshot(Snapshot)

	GetTransientStorage(Address, Key) Word
	SetTransientStorage(Address, Key, Word)

	EmitLog(Log)
	GetLogs() []Log

	// GetBlockHash returns the hash of the block with the given number, or
	// the zero Hash if number is not among the 256 most recent ancestors.
	GetBlockHash(number int64) Hash

	// GetCommittedStorage returns the value a storage slot held at the
	// start of the current transaction, used by SetStorage to classify a
	// write via GetStorageStatus.
	GetCommittedStorage(addr Address, key Key) Word

	// HasSelfDestructed reports whether addr was marked for destruction
	// earlier in the current transaction.
	HasSelfDestructed(addr Address) bool
}

// RunContext is the interface an Interpreter uses to execute a single
// contract invocation: it extends TransactionContext with the ability to
// perform recursive calls (CALL, DELEGATECALL, STATICCALL, CALLCODE,
// CREATE, CREATE2), which is the one EVM-instruction-level operation that
// cannot be expressed purely in terms of state reads and writes.
type RunContext interface {
	TransactionContext

	Call(kind CallKind, parameter CallParameters) (CallResult, error)
}
