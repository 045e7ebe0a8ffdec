// Package chain implements structural validation of a single Ethereum
// block: the transactions trie, the uncles hash, and uncle eligibility
// against an injected view of the surrounding chain. It sits above the
// Processor, which runs one transaction at a time; this package is
// concerned with the block as a whole, before any transaction in it runs.
package chain

import (
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/openevm/corevm/tosca"
)

// Header carries the subset of an Ethereum block header this package
// validates against. Fields are ordered to match their RLP wire position.
type Header struct {
	ParentHash       tosca.Hash
	UncleHash        tosca.Hash
	Coinbase         tosca.Address
	TransactionsTrie tosca.Hash
	Number           uint64
	GasLimit         uint64
	GasUsed          uint64
	Time             uint64
	Extra            []byte
}

// Hash returns the header's own identity hash, keccak256 of its RLP
// encoding, used by ancestor and uncle-inclusion checks.
func (h Header) Hash() tosca.Hash {
	encoded, err := rlp.EncodeToBytes(h)
	if err != nil {
		panic(err)
	}
	return tosca.Hash(crypto.Keccak256Hash(encoded))
}

// Block is a header together with the transactions and uncle headers it
// claims to contain. Immutable after construction; nothing in this package
// mutates a Block or Header in place.
type Block struct {
	Header       Header
	Transactions []tosca.Transaction
	Uncles       []Header
}

// Blockchain is the view of the surrounding chain a Block is validated
// against: whether a header is a recent ancestor of the block being
// validated, and whether a header has already been spent as a canonical
// block or as some other block's uncle.
type Blockchain interface {
	// IsAncestor reports whether candidate is an ancestor of block within
	// the last generations blocks (inclusive of block's own parent).
	IsAncestor(candidate tosca.Hash, block Header, generations int) bool
	// IsUncleIncluded reports whether uncle has already been included,
	// either as a canonical block or as a previously accepted uncle.
	IsUncleIncluded(uncle tosca.Hash) bool
}

// maxUncles bounds the number of uncle headers a block may list.
const maxUncles = 2

// uncleAncestorDepth is how many generations back an uncle's parent may be
// from the block claiming it, per Ethereum's uncle-eligibility rule.
const uncleAncestorDepth = 7
