package chain

import (
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/ethereum/go-ethereum/trie"

	"github.com/openevm/corevm/tosca"
)

// emptyRootHash is KECCAK256_RLP, the root of a trie with no entries: the
// keccak256 of the RLP encoding of the empty byte string. It is the
// expected transactions trie root of a block with no transactions.
var emptyRootHash = tosca.Hash(crypto.Keccak256Hash(rlp.EmptyString))

// txWireFormat mirrors the legacy Ethereum transaction RLP envelope. The
// recipient is encoded as an empty byte string for contract creation,
// matching how "to" is represented on the wire.
type txWireFormat struct {
	Nonce    uint64
	GasPrice []byte
	GasLimit uint64
	To       []byte
	Value    []byte
	Data     []byte
}

func serializeTransaction(tx tosca.Transaction) ([]byte, error) {
	wire := txWireFormat{
		Nonce:    tx.Nonce,
		GasPrice: tx.GasPrice.ToBig().Bytes(),
		GasLimit: uint64(tx.GasLimit),
		Value:    tx.Value.ToBig().Bytes(),
		Data:     []byte(tx.Input),
	}
	if tx.Recipient != nil {
		wire.To = tx.Recipient[:]
	}
	return rlp.EncodeToBytes(wire)
}

// uncleHash returns keccak256(rlp(uncles)), the value a block's header
// claims as its uncle hash.
func uncleHash(uncles []Header) (tosca.Hash, error) {
	encoded, err := rlp.EncodeToBytes(uncles)
	if err != nil {
		return tosca.Hash{}, err
	}
	return tosca.Hash(crypto.Keccak256Hash(encoded)), nil
}

// transactionsRoot builds the Merkle-Patricia trie a block's transactions
// trie hash is checked against: for each transaction i, insert
// (rlp(i), tx.serialize()). An empty list yields emptyRootHash.
func transactionsRoot(transactions []tosca.Transaction) (tosca.Hash, error) {
	if len(transactions) == 0 {
		return emptyRootHash, nil
	}

	hasher := trie.NewStackTrie(nil)
	keyBuffer := make([]byte, 0, 8)
	insert := func(i int) error {
		key, err := rlp.EncodeToBytes(uint(i))
		if err != nil {
			return err
		}
		keyBuffer = append(keyBuffer[:0], key...)

		value, err := serializeTransaction(transactions[i])
		if err != nil {
			return err
		}
		return hasher.Update(keyBuffer, value)
	}
	// The stack trie takes keys in ascending byte order. rlp(0) is 0x80,
	// which sorts after rlp(1)..rlp(127) (0x01..0x7f) and before rlp(128)
	// onward (0x81...), so index 0 is inserted between those two ranges.
	for i := 1; i < len(transactions) && i < 0x80; i++ {
		if err := insert(i); err != nil {
			return tosca.Hash{}, err
		}
	}
	if err := insert(0); err != nil {
		return tosca.Hash{}, err
	}
	for i := 0x80; i < len(transactions); i++ {
		if err := insert(i); err != nil {
			return tosca.Hash{}, err
		}
	}
	return tosca.Hash(hasher.Hash()), nil
}
