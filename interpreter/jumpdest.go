package interpreter

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/openevm/corevm/tosca"
)

// jumpTable records, for a given piece of code, which byte offsets are
// valid JUMP/JUMPI destinations (JUMPDEST not embedded in a PUSH argument)
// and which are valid BEGINSUB destinations (EIP-2315: byte 0x5C not
// embedded in a PUSH argument). BEGINSUB/JUMPSUB/RETURNSUB never activated
// on mainnet and are not wired into the opcode dispatch table, and nothing
// consults validJumpSubs during execution, but the analysis is still
// produced so the invariant that every recorded BEGINSUB lies outside PUSH
// data can be tested directly.
type jumpTable struct {
	validJumps    []bool
	validJumpSubs []bool
}

func (t *jumpTable) isValidJump(dest int64) bool {
	return dest >= 0 && dest < int64(len(t.validJumps)) && t.validJumps[dest]
}

func (t *jumpTable) isValidJumpSub(dest int64) bool {
	return dest >= 0 && dest < int64(len(t.validJumpSubs)) && t.validJumpSubs[dest]
}

// analyzeJumpDests walks code once, skipping over PUSH immediate bytes, and
// records the offset of every JUMPDEST (0x5B) in validJumps and of every
// 0x5C byte, the value EIP-2315 gave BEGINSUB, in validJumpSubs. From
// Cancun on 0x5C is TLOAD, so validJumpSubs then marks TLOAD positions; it
// is kept separate from validJumps, which alone decides JUMP/JUMPI targets.
func analyzeJumpDests(code []byte) *jumpTable {
	table := &jumpTable{
		validJumps:    make([]bool, len(code)),
		validJumpSubs: make([]bool, len(code)),
	}
	for pc := 0; pc < len(code); {
		op := OpCode(code[pc])
		if op == JUMPDEST {
			table.validJumps[pc] = true
		}
		if code[pc] == 0x5C {
			table.validJumpSubs[pc] = true
		}
		if PUSH1 <= op && op <= PUSH32 {
			pc += op.Width()
			continue
		}
		pc++
	}
	return table
}

// JumpdestCache caches jump-destination analysis results keyed by code
// hash, avoiding repeated linear scans of the same deployed contract across
// many calls within a block or a conformance run.
type JumpdestCache struct {
	cache *lru.Cache[tosca.Hash, *jumpTable]
}

// defaultJumpdestCacheSize bounds the cache to a few thousand distinct
// contracts, which comfortably covers the hot set of a single block.
const defaultJumpdestCacheSize = 4096

// NewJumpdestCache creates a cache with capacity entries. A non-positive
// capacity disables caching.
func NewJumpdestCache(capacity int) *JumpdestCache {
	if capacity <= 0 {
		return &JumpdestCache{}
	}
	cache, err := lru.New[tosca.Hash, *jumpTable](capacity)
	if err != nil {
		// capacity is always positive here, so lru.New cannot fail.
		panic(err)
	}
	return &JumpdestCache{cache: cache}
}

// get returns the jump table for code, computing and caching it under
// codeHash if it is not already present. A nil codeHash (e.g. for init
// code, which has no stable hash until it is executed) bypasses the cache.
func (c *JumpdestCache) get(code []byte, codeHash *tosca.Hash) *jumpTable {
	if c.cache == nil || codeHash == nil {
		return analyzeJumpDests(code)
	}
	if table, ok := c.cache.Get(*codeHash); ok {
		return table
	}
	table := analyzeJumpDests(code)
	c.cache.Add(*codeHash, table)
	return table
}
