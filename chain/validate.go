package chain

import (
	"errors"
	"fmt"
	"sync"

	"github.com/openevm/corevm/tosca"
)

var (
	// ErrTooManyUncles is returned when a block lists more than two uncles.
	ErrTooManyUncles = errors.New("too many uncles")
	// ErrDuplicateUncles is returned when two of a block's uncles share a hash.
	ErrDuplicateUncles = errors.New("duplicate uncles")
	// ErrInvalidUncleHash is returned when keccak256(rlp(uncles)) does not
	// match the header's claimed uncle hash.
	ErrInvalidUncleHash = errors.New("invalid uncle hash")
	// ErrInvalidTxTrie is returned when the reconstructed transactions trie
	// root does not match the header's claimed transactions trie root.
	ErrInvalidTxTrie = errors.New("invalid transactions trie")
	// ErrUncleNotAncestor is returned when an uncle's parent is not within
	// uncleAncestorDepth generations of the block claiming it.
	ErrUncleNotAncestor = errors.New("uncle is not a recent ancestor")
	// ErrUncleAlreadyIncluded is returned when an uncle has already been
	// included as a canonical block or a previously accepted uncle.
	ErrUncleAlreadyIncluded = errors.New("uncle already included")
)

// TransactionError names one transaction, by its index in the block, that
// failed individual validation.
type TransactionError struct {
	Index int
	Err   error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction %d: %v", e.Index, e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }

// TransactionValidator checks one transaction in isolation: signature
// recovery and intrinsic field validity. Out of scope details (signature
// scheme, chain ID handling) are the caller's to inject.
type TransactionValidator interface {
	ValidateTransaction(tx tosca.Transaction) error
}

// ValidateUncles checks a block's uncle list: at most two uncles, all
// distinct, keccak256(rlp(uncles)) matching the header, and each
// individually eligible against chain. genesis blocks accept any (empty)
// uncle list trivially.
func ValidateUncles(block Block, chain Blockchain, genesis bool) error {
	if genesis {
		return nil
	}

	if len(block.Uncles) > maxUncles {
		return ErrTooManyUncles
	}

	seen := make(map[tosca.Hash]bool, len(block.Uncles))
	for _, uncle := range block.Uncles {
		hash := uncle.Hash()
		if seen[hash] {
			return ErrDuplicateUncles
		}
		seen[hash] = true
	}

	got, err := uncleHash(block.Uncles)
	if err != nil {
		return err
	}
	if got != block.Header.UncleHash {
		return ErrInvalidUncleHash
	}

	for _, uncle := range block.Uncles {
		if !chain.IsAncestor(uncle.ParentHash, block.Header, uncleAncestorDepth) {
			return fmt.Errorf("%w: %x", ErrUncleNotAncestor, uncle.Hash())
		}
		if chain.IsUncleIncluded(uncle.Hash()) {
			return fmt.Errorf("%w: %x", ErrUncleAlreadyIncluded, uncle.Hash())
		}
	}

	return nil
}

// ValidateTransactionsTrie reconstructs the Merkle-Patricia trie of a
// block's transactions and compares its root against the header's claimed
// transactions trie hash.
func ValidateTransactionsTrie(block Block) error {
	got, err := transactionsRoot(block.Transactions)
	if err != nil {
		return err
	}
	if got != block.Header.TransactionsTrie {
		return ErrInvalidTxTrie
	}
	return nil
}

// ValidateTransactions runs validator against every transaction in the
// block, collecting every failure rather than stopping at the first one,
// so the caller can report all offending indices at once.
func ValidateTransactions(block Block, validator TransactionValidator) error {
	var failures []error
	for i, tx := range block.Transactions {
		if err := validator.ValidateTransaction(tx); err != nil {
			failures = append(failures, &TransactionError{Index: i, Err: err})
		}
	}
	return errors.Join(failures...)
}

// ValidateBlock checks a block's structural invariants: uncle eligibility,
// the transactions trie, and (if validator is non-nil) every individual
// transaction. The three checks touch disjoint state and are run
// concurrently, joining on all three before returning; any block-level
// failure is fatal for that block, with no partial acceptance.
func ValidateBlock(block Block, chain Blockchain, validator TransactionValidator, genesis bool) error {
	var (
		wg                               sync.WaitGroup
		unclesErr, txTrieErr, txValidErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		unclesErr = ValidateUncles(block, chain, genesis)
	}()
	go func() {
		defer wg.Done()
		txTrieErr = ValidateTransactionsTrie(block)
	}()
	if validator != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			txValidErr = ValidateTransactions(block, validator)
		}()
	}
	wg.Wait()

	return errors.Join(unclesErr, txTrieErr, txValidErr)
}
