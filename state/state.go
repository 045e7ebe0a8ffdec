// Package state provides an in-memory tosca.TransactionContext: an account
// map with an undo-log based checkpoint stack, used by the CLI and by tests
// that need a full TransactionContext rather than a mock.
package state

import (
	"bytes"
	"maps"
	"slices"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/openevm/corevm/tosca"
)

var _ tosca.TransactionContext = (*State)(nil)

// Account holds the persistent fields of one address.
type Account struct {
	Nonce   uint64
	Balance tosca.Value
	Code    []byte
	Storage map[tosca.Key]tosca.Word
}

func (a Account) clone() Account {
	clone := a
	clone.Code = bytes.Clone(a.Code)
	if a.Storage != nil {
		clone.Storage = maps.Clone(a.Storage)
	}
	return clone
}

// State is an in-memory tosca.TransactionContext. Every mutating operation
// pushes an undo closure restoring the previous value onto a stack; a
// Snapshot is simply the stack's length at the time it was taken, and
// restoring replays undo closures back down to that length, mirroring the
// checkpoint discipline commit/revert semantics require.
type State struct {
	original    map[tosca.Address]Account
	accounts    map[tosca.Address]Account
	destructed  map[tosca.Address]bool
	transient   map[tosca.Address]map[tosca.Key]tosca.Word
	blockHashes map[int64]tosca.Hash
	logs        []tosca.Log
	undo        []func()
}

// New constructs an empty State with no accounts.
func New() *State {
	return &State{
		original:    map[tosca.Address]Account{},
		accounts:    map[tosca.Address]Account{},
		destructed:  map[tosca.Address]bool{},
		transient:   map[tosca.Address]map[tosca.Key]tosca.Word{},
		blockHashes: map[int64]tosca.Hash{},
	}
}

// SetAccount installs addr's full account state directly, bypassing the undo
// log. Intended for populating a State before a transaction begins (e.g. from
// the CLI or a test fixture), not during execution.
func (s *State) SetAccount(addr tosca.Address, account Account) {
	s.accounts[addr] = account.clone()
	s.original[addr] = account.clone()
}

// SetBlockHash installs the hash of block number, for BLOCKHASH lookups.
func (s *State) SetBlockHash(number int64, hash tosca.Hash) {
	s.blockHashes[number] = hash
}

func (s *State) AccountExists(addr tosca.Address) bool {
	account, ok := s.accounts[addr]
	if !ok {
		return false
	}
	return account.Nonce != 0 || account.Balance != (tosca.Value{}) || len(account.Code) != 0
}

func (s *State) GetBalance(addr tosca.Address) tosca.Value {
	return s.accounts[addr].Balance
}

func (s *State) SetBalance(addr tosca.Address, value tosca.Value) {
	original := s.accounts[addr]
	modified := original
	modified.Balance = value
	s.accounts[addr] = modified
	s.undo = append(s.undo, func() { s.accounts[addr] = original })
}

func (s *State) GetNonce(addr tosca.Address) uint64 {
	return s.accounts[addr].Nonce
}

func (s *State) SetNonce(addr tosca.Address, value uint64) {
	original := s.accounts[addr]
	modified := original
	modified.Nonce = value
	s.accounts[addr] = modified
	s.undo = append(s.undo, func() { s.accounts[addr] = original })
}

func (s *State) GetCode(addr tosca.Address) tosca.Code {
	return tosca.Code(bytes.Clone(s.accounts[addr].Code))
}

func (s *State) GetCodeHash(addr tosca.Address) tosca.Hash {
	code := s.accounts[addr].Code
	if len(code) == 0 {
		return tosca.Hash{}
	}
	return tosca.Hash(crypto.Keccak256Hash(code))
}

func (s *State) GetCodeSize(addr tosca.Address) int {
	return len(s.accounts[addr].Code)
}

func (s *State) SetCode(addr tosca.Address, code tosca.Code) {
	original := s.accounts[addr]
	modified := original
	modified.Code = bytes.Clone(code)
	s.accounts[addr] = modified
	s.undo = append(s.undo, func() { s.accounts[addr] = original })
}

func (s *State) GetStorage(addr tosca.Address, key tosca.Key) tosca.Word {
	return s.accounts[addr].Storage[key]
}

func (s *State) SetStorage(addr tosca.Address, key tosca.Key, value tosca.Word) tosca.StorageStatus {
	original := s.original[addr].Storage[key]
	current := s.accounts[addr].Storage[key]

	account := s.accounts[addr]
	if account.Storage == nil {
		account.Storage = map[tosca.Key]tosca.Word{}
		s.accounts[addr] = account
	}
	s.accounts[addr].Storage[key] = value
	s.undo = append(s.undo, func() { s.accounts[addr].Storage[key] = current })

	return tosca.GetStorageStatus(original, current, value)
}

// SelfDestruct marks addr for destruction, moving its balance to beneficiary.
// The account itself is cleared only when Finalize is called, which the
// Processor does not do; until then its code and storage remain visible to
// further reads, matching
// post-Cancun (EIP-6780) SELFDESTRUCT semantics for the common case of a
// destruct outside of the account's creating transaction.
func (s *State) SelfDestruct(addr tosca.Address, beneficiary tosca.Address) bool {
	balance := s.GetBalance(addr)
	if !balance.IsZero() {
		s.SetBalance(addr, tosca.Value{})
		if addr != beneficiary {
			s.SetBalance(beneficiary, tosca.Add(s.GetBalance(beneficiary), balance))
		}
	}
	wasDestructed := s.destructed[addr]
	s.destructed[addr] = true
	s.undo = append(s.undo, func() {
		if !wasDestructed {
			delete(s.destructed, addr)
		}
	})
	return !wasDestructed
}

func (s *State) HasSelfDestructed(addr tosca.Address) bool {
	return s.destructed[addr]
}

func (s *State) CreateSnapshot() tosca.Snapshot {
	return tosca.Snapshot(len(s.undo))
}

func (s *State) RestoreSnapshot(snapshot tosca.Snapshot) {
	for len(s.undo) > int(snapshot) {
		s.undo[len(s.undo)-1]()
		s.undo = s.undo[:len(s.undo)-1]
	}
}

func (s *State) GetTransientStorage(addr tosca.Address, key tosca.Key) tosca.Word {
	return s.transient[addr][key]
}

func (s *State) SetTransientStorage(addr tosca.Address, key tosca.Key, value tosca.Word) {
	slots, ok := s.transient[addr]
	if !ok {
		slots = map[tosca.Key]tosca.Word{}
		s.transient[addr] = slots
	}
	original := slots[key]
	slots[key] = value
	s.undo = append(s.undo, func() { s.transient[addr][key] = original })
}

func (s *State) EmitLog(log tosca.Log) {
	index := len(s.logs)
	s.logs = append(s.logs, log)
	s.undo = append(s.undo, func() { s.logs = s.logs[:index] })
}

func (s *State) GetLogs() []tosca.Log {
	return slices.Clone(s.logs)
}

func (s *State) GetBlockHash(number int64) tosca.Hash {
	return s.blockHashes[number]
}

func (s *State) GetCommittedStorage(addr tosca.Address, key tosca.Key) tosca.Word {
	return s.original[addr].Storage[key]
}

// Finalize removes every account marked self-destructed during the
// transaction and resets transient storage, which does not survive past a
// single transaction (EIP-1153). It works outside the checkpoint/undo
// mechanism entirely and discards the undo log. The Processor does not call
// it; it is not part of tosca.TransactionContext.
func (s *State) Finalize() {
	for addr := range s.destructed {
		delete(s.accounts, addr)
		delete(s.original, addr)
	}
	s.destructed = map[tosca.Address]bool{}
	s.transient = map[tosca.Address]map[tosca.Key]tosca.Word{}
	s.undo = nil
}
