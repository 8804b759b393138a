package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/core/entity"
)

// BlockJSON is the Ethereum JSON-RPC block object.
type BlockJSON struct {
	Hash             common.Hash       `json:"hash"`
	ParentHash       common.Hash       `json:"parentHash"`
	UncleHash        common.Hash       `json:"sha3Uncles"`
	Coinbase         common.Address    `json:"miner"`
	Root             common.Hash       `json:"stateRoot"`
	TxHash           common.Hash       `json:"transactionsRoot"`
	ReceiptHash      common.Hash       `json:"receiptsRoot"`
	Bloom            types.Bloom       `json:"logsBloom"`
	Difficulty       *hexutil.Big      `json:"difficulty"`
	TotalDifficulty  *hexutil.Big      `json:"totalDifficulty,omitempty"`
	Number           hexutil.Uint64    `json:"number"`
	GasLimit         hexutil.Uint64    `json:"gasLimit"`
	GasUsed          hexutil.Uint64    `json:"gasUsed"`
	Time             hexutil.Uint64    `json:"timestamp"`
	Extra            hexutil.Bytes     `json:"extraData"`
	MixDigest        common.Hash       `json:"mixHash"`
	Nonce            types.BlockNonce  `json:"nonce"`
	Size             hexutil.Uint64    `json:"size"`
	BaseFee          *hexutil.Big      `json:"baseFeePerGas,omitempty"`
	WithdrawalsHash  *common.Hash      `json:"withdrawalsRoot,omitempty"`
	BlobGasUsed      *hexutil.Uint64   `json:"blobGasUsed,omitempty"`
	ExcessBlobGas    *hexutil.Uint64   `json:"excessBlobGas,omitempty"`
	ParentBeaconRoot *common.Hash      `json:"parentBeaconBlockRoot,omitempty"`
	Uncles           []common.Hash     `json:"uncles"`
	Transactions     TransactionList   `json:"transactions"`
	Withdrawals      []*WithdrawalJSON `json:"withdrawals,omitempty"`

	// Unknown members are carried through unchanged.
	Unknown map[string]json.RawMessage `json:"-"`
}

// TransactionJSON is the Ethereum JSON-RPC transaction object.
type TransactionJSON struct {
	BlockHash            *common.Hash      `json:"blockHash"`
	BlockNumber          *hexutil.Uint64   `json:"blockNumber"`
	From                 common.Address    `json:"from"`
	Gas                  hexutil.Uint64    `json:"gas"`
	GasPrice             *hexutil.Big      `json:"gasPrice"`
	MaxFeePerGas         *hexutil.Big      `json:"maxFeePerGas,omitempty"`
	MaxPriorityFeePerGas *hexutil.Big      `json:"maxPriorityFeePerGas,omitempty"`
	Hash                 common.Hash       `json:"hash"`
	Input                hexutil.Bytes     `json:"input"`
	Nonce                hexutil.Uint64    `json:"nonce"`
	To                   *common.Address   `json:"to"`
	TransactionIndex     *hexutil.Uint64   `json:"transactionIndex"`
	Value                *hexutil.Big      `json:"value"`
	Type                 hexutil.Uint64    `json:"type"`
	Accesses             *types.AccessList `json:"accessList,omitempty"`
	ChainID              *hexutil.Big      `json:"chainId,omitempty"`
	V                    *hexutil.Big      `json:"v"`
	R                    *hexutil.Big      `json:"r"`
	S                    *hexutil.Big      `json:"s"`

	// Unknown members are carried through unchanged.
	Unknown map[string]json.RawMessage `json:"-"`
}

var (
	blockMembers       = jsonMembers(reflect.TypeOf(BlockJSON{}))
	transactionMembers = jsonMembers(reflect.TypeOf(TransactionJSON{}))
)

type (
	blockFields       BlockJSON
	transactionFields TransactionJSON
)

func (j BlockJSON) MarshalJSON() ([]byte, error) {
	typed, err := json.Marshal(blockFields(j))
	if err != nil {
		return nil, err
	}
	return mergeUnknown(typed, j.Unknown)
}

func (j *BlockJSON) UnmarshalJSON(data []byte) error {
	var typed blockFields
	if err := json.Unmarshal(data, &typed); err != nil {
		return err
	}
	unknown, err := splitUnknown(data, blockMembers)
	if err != nil {
		return err
	}
	*j = BlockJSON(typed)
	j.Unknown = unknown
	return nil
}

func (j TransactionJSON) MarshalJSON() ([]byte, error) {
	typed, err := json.Marshal(transactionFields(j))
	if err != nil {
		return nil, err
	}
	return mergeUnknown(typed, j.Unknown)
}

func (j *TransactionJSON) UnmarshalJSON(data []byte) error {
	var typed transactionFields
	if err := json.Unmarshal(data, &typed); err != nil {
		return err
	}
	unknown, err := splitUnknown(data, transactionMembers)
	if err != nil {
		return err
	}
	*j = TransactionJSON(typed)
	j.Unknown = unknown
	return nil
}

func jsonMembers(t reflect.Type) map[string]struct{} {
	names := make(map[string]struct{}, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name != "" && name != "-" {
			names[name] = struct{}{}
		}
	}
	return names
}

// splitUnknown returns the members of the object in data that are not in known.
func splitUnknown(data []byte, known map[string]struct{}) (map[string]json.RawMessage, error) {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, err
	}
	for name := range members {
		if _, ok := known[name]; ok {
			delete(members, name)
		}
	}
	if len(members) == 0 {
		return nil, nil
	}
	return members, nil
}

// mergeUnknown adds unknown members to the encoded object. Typed members win.
func mergeUnknown(typed []byte, unknown map[string]json.RawMessage) ([]byte, error) {
	if len(unknown) == 0 {
		return typed, nil
	}
	var members map[string]json.RawMessage
	if err := json.Unmarshal(typed, &members); err != nil {
		return nil, err
	}
	for name, value := range unknown {
		if _, ok := members[name]; !ok {
			members[name] = value
		}
	}
	return json.Marshal(members)
}

type WithdrawalJSON struct {
	Index     hexutil.Uint64 `json:"index"`
	Validator hexutil.Uint64 `json:"validatorIndex"`
	Address   common.Address `json:"address"`
	Amount    hexutil.Uint64 `json:"amount"`
}

// TransactionList is the "transactions" member of a block object: an array
// of either transaction objects or transaction hashes.
type TransactionList struct {
	Full   []*TransactionJSON
	Hashes []common.Hash
}

// IsFull reports whether the list holds transaction objects.
func (l TransactionList) IsFull() bool { return l.Full != nil }

func (l TransactionList) MarshalJSON() ([]byte, error) {
	if l.Full != nil {
		return json.Marshal(l.Full)
	}
	if l.Hashes == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.Hashes)
}

func (l *TransactionList) UnmarshalJSON(data []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	l.Full, l.Hashes = nil, nil
	if len(items) == 0 {
		return nil
	}
	switch first := bytes.TrimSpace(items[0]); {
	case len(first) > 0 && first[0] == '{':
		l.Full = make([]*TransactionJSON, len(items))
		for i, raw := range items {
			if err := json.Unmarshal(raw, &l.Full[i]); err != nil {
				return fmt.Errorf("transaction %d: %w", i, err)
			}
		}
	case len(first) > 0 && first[0] == '"':
		l.Hashes = make([]common.Hash, len(items))
		for i, raw := range items {
			if err := json.Unmarshal(raw, &l.Hashes[i]); err != nil {
				return fmt.Errorf("transaction hash %d: %w", i, err)
			}
		}
	default:
		return fmt.Errorf("unexpected transaction list element %s", first)
	}
	return nil
}

// EncodeBlock converts a block to its wire object.
func EncodeBlock(b *entity.Block) *BlockJSON {
	if b == nil {
		return nil
	}
	h := b.Header
	out := &BlockJSON{
		Hash:             b.Hash,
		ParentHash:       h.ParentHash,
		UncleHash:        h.UncleHash,
		Coinbase:         h.Coinbase,
		Root:             h.Root,
		TxHash:           h.TxHash,
		ReceiptHash:      h.ReceiptHash,
		Bloom:            h.Bloom,
		Difficulty:       (*hexutil.Big)(orZero(h.Difficulty)),
		TotalDifficulty:  (*hexutil.Big)(b.TotalDifficulty),
		Number:           hexutil.Uint64(h.Number),
		GasLimit:         hexutil.Uint64(h.GasLimit),
		GasUsed:          hexutil.Uint64(h.GasUsed),
		Time:             hexutil.Uint64(h.Time),
		Extra:            hexutil.Bytes(nonNilBytes(h.Extra)),
		MixDigest:        h.MixDigest,
		Nonce:            h.Nonce,
		Size:             hexutil.Uint64(b.Size),
		BaseFee:          (*hexutil.Big)(h.BaseFee),
		WithdrawalsHash:  h.WithdrawalsHash,
		BlobGasUsed:      (*hexutil.Uint64)(h.BlobGasUsed),
		ExcessBlobGas:    (*hexutil.Uint64)(h.ExcessBlobGas),
		ParentBeaconRoot: h.ParentBeaconRoot,
		Uncles:           b.Uncles,
		Unknown:          b.Unknown,
	}
	if out.Uncles == nil {
		out.Uncles = []common.Hash{}
	}
	if b.Transactions.IsFull() {
		bodies := b.Transactions.Bodies()
		out.Transactions.Full = make([]*TransactionJSON, len(bodies))
		for i := range bodies {
			out.Transactions.Full[i] = EncodeTransaction(&bodies[i])
		}
	} else {
		out.Transactions.Hashes = b.Transactions.Hashes()
	}
	if b.Withdrawals != nil {
		out.Withdrawals = make([]*WithdrawalJSON, len(b.Withdrawals))
		for i, w := range b.Withdrawals {
			out.Withdrawals[i] = &WithdrawalJSON{
				Index:     hexutil.Uint64(w.Index),
				Validator: hexutil.Uint64(w.Validator),
				Address:   w.Address,
				Amount:    hexutil.Uint64(w.Amount),
			}
		}
	}
	return out
}

// DecodeBlock converts a wire block object to a block.
func DecodeBlock(j *BlockJSON) *entity.Block {
	if j == nil {
		return nil
	}
	b := &entity.Block{
		Hash: j.Hash,
		Header: entity.Header{
			ParentHash:       j.ParentHash,
			UncleHash:        j.UncleHash,
			Coinbase:         j.Coinbase,
			Root:             j.Root,
			TxHash:           j.TxHash,
			ReceiptHash:      j.ReceiptHash,
			Bloom:            j.Bloom,
			Difficulty:       (*big.Int)(j.Difficulty),
			Number:           uint64(j.Number),
			GasLimit:         uint64(j.GasLimit),
			GasUsed:          uint64(j.GasUsed),
			Time:             uint64(j.Time),
			Extra:            j.Extra,
			MixDigest:        j.MixDigest,
			Nonce:            j.Nonce,
			BaseFee:          (*big.Int)(j.BaseFee),
			WithdrawalsHash:  j.WithdrawalsHash,
			ParentBeaconRoot: j.ParentBeaconRoot,
			BlobGasUsed:      (*uint64)(j.BlobGasUsed),
			ExcessBlobGas:    (*uint64)(j.ExcessBlobGas),
		},
		Size:            uint64(j.Size),
		TotalDifficulty: (*big.Int)(j.TotalDifficulty),
		Uncles:          j.Uncles,
		Unknown:         j.Unknown,
	}
	if j.Transactions.IsFull() {
		txs := make([]entity.Transaction, len(j.Transactions.Full))
		for i, tx := range j.Transactions.Full {
			txs[i] = *DecodeTransaction(tx)
		}
		b.Transactions = entity.FullTransactions(txs)
	} else {
		b.Transactions = entity.HashTransactions(j.Transactions.Hashes)
	}
	if j.Withdrawals != nil {
		b.Withdrawals = make([]entity.Withdrawal, len(j.Withdrawals))
		for i, w := range j.Withdrawals {
			b.Withdrawals[i] = entity.Withdrawal{
				Index:     uint64(w.Index),
				Validator: uint64(w.Validator),
				Address:   w.Address,
				Amount:    uint64(w.Amount),
			}
		}
	}
	return b
}

// EncodeTransaction converts a transaction body to its wire object.
func EncodeTransaction(tx *entity.Transaction) *TransactionJSON {
	if tx == nil {
		return nil
	}
	out := &TransactionJSON{
		BlockHash:            tx.BlockHash,
		BlockNumber:          (*hexutil.Uint64)(tx.BlockNumber),
		From:                 tx.From,
		Gas:                  hexutil.Uint64(tx.Gas),
		GasPrice:             (*hexutil.Big)(tx.GasPrice),
		MaxFeePerGas:         (*hexutil.Big)(tx.MaxFeePerGas),
		MaxPriorityFeePerGas: (*hexutil.Big)(tx.MaxPriorityFeePerGas),
		Hash:                 tx.Hash,
		Input:                hexutil.Bytes(nonNilBytes(tx.Data)),
		Nonce:                hexutil.Uint64(tx.Nonce),
		To:                   tx.To,
		TransactionIndex:     (*hexutil.Uint64)(tx.TransactionIndex),
		Value:                (*hexutil.Big)(orZero(tx.Value)),
		Type:                 hexutil.Uint64(tx.Type),
		ChainID:              (*hexutil.Big)(tx.ChainID),
		V:                    (*hexutil.Big)(tx.V),
		R:                    (*hexutil.Big)(tx.R),
		S:                    (*hexutil.Big)(tx.S),
		Unknown:              tx.Unknown,
	}
	if tx.AccessList != nil {
		al := tx.AccessList
		out.Accesses = &al
	}
	return out
}

// DecodeTransaction converts a wire transaction object to a body.
func DecodeTransaction(j *TransactionJSON) *entity.Transaction {
	if j == nil {
		return &entity.Transaction{}
	}
	tx := &entity.Transaction{
		Hash:                 j.Hash,
		Type:                 uint8(j.Type),
		BlockHash:            j.BlockHash,
		BlockNumber:          (*uint64)(j.BlockNumber),
		TransactionIndex:     (*uint64)(j.TransactionIndex),
		From:                 j.From,
		To:                   j.To,
		Value:                (*big.Int)(j.Value),
		Gas:                  uint64(j.Gas),
		GasPrice:             (*big.Int)(j.GasPrice),
		MaxFeePerGas:         (*big.Int)(j.MaxFeePerGas),
		MaxPriorityFeePerGas: (*big.Int)(j.MaxPriorityFeePerGas),
		Nonce:                uint64(j.Nonce),
		Data:                 j.Input,
		ChainID:              (*big.Int)(j.ChainID),
		V:                    (*big.Int)(j.V),
		R:                    (*big.Int)(j.R),
		S:                    (*big.Int)(j.S),
		Unknown:              j.Unknown,
	}
	if j.Accesses != nil {
		tx.AccessList = *j.Accesses
	}
	return tx
}

// MarshalBlockJSON serializes a block using its wire object.
func MarshalBlockJSON(b *entity.Block) ([]byte, error) {
	return json.Marshal(EncodeBlock(b))
}

// UnmarshalBlockJSON parses a block object produced by MarshalBlockJSON or
// by any Ethereum JSON-RPC endpoint. fullTx is the representation that was
// requested; it decides how an empty transaction array is typed.
func UnmarshalBlockJSON(data []byte, fullTx bool) (*entity.Block, error) {
	var j BlockJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, err
	}
	b := DecodeBlock(&j)
	if fullTx && b.Transactions.Len() == 0 {
		b.Transactions = entity.FullTransactions(nil)
	}
	return b, nil
}

func orZero(n *big.Int) *big.Int {
	if n == nil {
		return new(big.Int)
	}
	return n
}

func nonNilBytes(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
