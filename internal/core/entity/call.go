package entity

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// CallOptions is forwarded opaquely to the backend call and estimate-gas
// operations. Only well-formedness is checked at decode time.
type CallOptions struct {
	From     *common.Address
	To       *common.Address
	Value    *big.Int
	Gas      uint64
	GasPrice *big.Int
	Data     []byte
}

// SubmittedTransaction records a raw transaction the backend accepted for
// broadcast.
type SubmittedTransaction struct {
	Hash        common.Hash
	Raw         []byte
	SubmittedAt time.Time
}
