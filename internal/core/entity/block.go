package entity

import (
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Block is the execution block as returned by the light client. Its
// transaction list is either fully embedded or hash-only, see Transactions.
type Block struct {
	Hash            common.Hash
	Header          Header
	Size            uint64
	TotalDifficulty *big.Int
	Uncles          []common.Hash
	Transactions    Transactions
	Withdrawals     []Withdrawal

	// Unknown holds block members with no field above, kept verbatim.
	Unknown map[string]json.RawMessage
}

// Header is the subset of header fields served on the wire.
type Header struct {
	ParentHash       common.Hash
	UncleHash        common.Hash
	Coinbase         common.Address
	Root             common.Hash
	TxHash           common.Hash
	ReceiptHash      common.Hash
	Bloom            types.Bloom
	Difficulty       *big.Int
	Number           uint64
	GasLimit         uint64
	GasUsed          uint64
	Time             uint64
	Extra            []byte
	MixDigest        common.Hash
	Nonce            types.BlockNonce
	BaseFee          *big.Int
	WithdrawalsHash  *common.Hash
	ParentBeaconRoot *common.Hash
	BlobGasUsed      *uint64
	ExcessBlobGas    *uint64
}

// Transaction captures the fields of an embedded transaction body.
type Transaction struct {
	Hash                 common.Hash
	Type                 uint8
	BlockHash            *common.Hash
	BlockNumber          *uint64
	TransactionIndex     *uint64
	From                 common.Address
	To                   *common.Address
	Value                *big.Int
	Gas                  uint64
	GasPrice             *big.Int
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int
	Nonce                uint64
	Data                 []byte
	AccessList           types.AccessList
	ChainID              *big.Int
	V, R, S              *big.Int

	// Unknown holds members such as yParity, blob fields or the
	// authorization list, kept verbatim.
	Unknown map[string]json.RawMessage
}

// Withdrawal represents a single withdrawal entry from a block (Shanghai+).
type Withdrawal struct {
	Index     uint64
	Validator uint64
	Address   common.Address
	Amount    uint64
}

// Transactions is the transaction list of a block: either full bodies or
// only their hashes. The zero value is an empty hash-only list.
type Transactions struct {
	full   bool
	bodies []Transaction
	hashes []common.Hash
}

// FullTransactions builds a list carrying full transaction bodies.
func FullTransactions(txs []Transaction) Transactions {
	return Transactions{full: true, bodies: txs}
}

// HashTransactions builds a hash-only list.
func HashTransactions(hashes []common.Hash) Transactions {
	return Transactions{hashes: hashes}
}

// IsFull reports whether the list embeds full transaction bodies.
func (t Transactions) IsFull() bool { return t.full }

// Len is the number of transactions regardless of representation.
func (t Transactions) Len() int {
	if t.full {
		return len(t.bodies)
	}
	return len(t.hashes)
}

// Bodies returns the embedded bodies, or nil for a hash-only list.
func (t Transactions) Bodies() []Transaction {
	if !t.full {
		return nil
	}
	return t.bodies
}

// Hashes returns the transaction hashes for either representation.
func (t Transactions) Hashes() []common.Hash {
	if !t.full {
		return t.hashes
	}
	out := make([]common.Hash, len(t.bodies))
	for i := range t.bodies {
		out[i] = t.bodies[i].Hash
	}
	return out
}
