package chain

import (
	"errors"
	"testing"

	"github.com/openevm/corevm/tosca"
)

func TestValidateUncles_GenesisAcceptsAnyUncleListTrivially(t *testing.T) {
	block := Block{Uncles: []Header{{Number: 1}, {Number: 2}, {Number: 3}}}
	if err := ValidateUncles(block, fakeChain{}, true); err != nil {
		t.Errorf("genesis should accept uncles trivially, got %v", err)
	}
}

func TestValidateUncles_RejectsMoreThanTwoUncles(t *testing.T) {
	block := Block{Uncles: []Header{{Number: 1}, {Number: 2}, {Number: 3}}}
	err := ValidateUncles(block, fakeChain{}, false)
	if !errors.Is(err, ErrTooManyUncles) {
		t.Errorf("expected ErrTooManyUncles, got %v", err)
	}
}

func TestValidateUncles_RejectsDuplicateUncleHashes(t *testing.T) {
	uncle := Header{Number: 4}
	block := Block{Uncles: []Header{uncle, uncle}}
	err := ValidateUncles(block, fakeChain{}, false)
	if !errors.Is(err, ErrDuplicateUncles) {
		t.Errorf("expected ErrDuplicateUncles, got %v", err)
	}
}

func TestValidateUncles_RejectsMismatchedUncleHash(t *testing.T) {
	block := Block{
		Header: Header{UncleHash: tosca.Hash{0xff}},
		Uncles: []Header{{Number: 1}},
	}
	err := ValidateUncles(block, fakeChain{}, false)
	if !errors.Is(err, ErrInvalidUncleHash) {
		t.Errorf("expected ErrInvalidUncleHash, got %v", err)
	}
}

func TestValidateUncles_RejectsUncleThatIsNotARecentAncestor(t *testing.T) {
	uncles := []Header{{Number: 1}}
	hash, err := uncleHash(uncles)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	block := Block{Header: Header{UncleHash: hash}, Uncles: uncles}

	err = ValidateUncles(block, fakeChain{}, false)
	if !errors.Is(err, ErrUncleNotAncestor) {
		t.Errorf("expected ErrUncleNotAncestor, got %v", err)
	}
}

func TestValidateUncles_RejectsAlreadyIncludedUncle(t *testing.T) {
	uncles := []Header{{Number: 1}}
	hash, err := uncleHash(uncles)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	block := Block{Header: Header{UncleHash: hash}, Uncles: uncles}

	chain := fakeChain{
		ancestors: map[tosca.Hash]bool{{}: true},
		included:  map[tosca.Hash]bool{uncles[0].Hash(): true},
	}

	err = ValidateUncles(block, chain, false)
	if !errors.Is(err, ErrUncleAlreadyIncluded) {
		t.Errorf("expected ErrUncleAlreadyIncluded, got %v", err)
	}
}

func TestValidateTransactionsTrie_EmptyBlockMatchesEmptyRootHash(t *testing.T) {
	block := Block{Header: Header{TransactionsTrie: emptyRootHash}}
	if err := ValidateTransactionsTrie(block); err != nil {
		t.Errorf("an empty transaction list with the empty root hash should validate, got %v", err)
	}
}

func TestValidateTransactionsTrie_RejectsMismatchedRoot(t *testing.T) {
	block := Block{
		Header:       Header{TransactionsTrie: tosca.Hash{0xaa}},
		Transactions: []tosca.Transaction{{Nonce: 1}},
	}
	err := ValidateTransactionsTrie(block)
	if !errors.Is(err, ErrInvalidTxTrie) {
		t.Errorf("expected ErrInvalidTxTrie, got %v", err)
	}
}

type rejectingValidator struct{}

func (rejectingValidator) ValidateTransaction(tx tosca.Transaction) error {
	if tx.Nonce == 0 {
		return errors.New("nonce must be nonzero")
	}
	return nil
}

func TestValidateTransactions_CollectsEveryOffendingIndex(t *testing.T) {
	block := Block{Transactions: []tosca.Transaction{
		{Nonce: 1},
		{Nonce: 0},
		{Nonce: 2},
		{Nonce: 0},
	}}

	err := ValidateTransactions(block, rejectingValidator{})
	if err == nil {
		t.Fatalf("expected an aggregate error")
	}

	var txErr *TransactionError
	count := 0
	for _, e := range flattenJoined(err) {
		if errors.As(e, &txErr) {
			count++
		}
	}
	if count != 2 {
		t.Errorf("expected 2 offending transactions reported, found %d in %v", count, err)
	}
}

func flattenJoined(err error) []error {
	type unwrapper interface{ Unwrap() []error }
	if u, ok := err.(unwrapper); ok {
		return u.Unwrap()
	}
	return []error{err}
}

func TestValidateBlock_RunsIndependentChecksConcurrentlyAndJoinsAll(t *testing.T) {
	uncles := []Header{{Number: 1}}
	hash, err := uncleHash(uncles)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	block := Block{
		Header: Header{UncleHash: hash, TransactionsTrie: emptyRootHash},
		Uncles: uncles,
	}
	chain := fakeChain{ancestors: map[tosca.Hash]bool{{}: true}, included: map[tosca.Hash]bool{}}

	if err := ValidateBlock(block, chain, nil, false); err != nil {
		t.Errorf("a structurally valid block should pass, got %v", err)
	}
}

func TestValidateBlock_FailsFatallyOnAnySubcheck(t *testing.T) {
	block := Block{Header: Header{TransactionsTrie: tosca.Hash{0xbb}}}
	chain := fakeChain{}

	err := ValidateBlock(block, chain, nil, true)
	if !errors.Is(err, ErrInvalidTxTrie) {
		t.Errorf("expected ErrInvalidTxTrie to surface from the joined error, got %v", err)
	}
}
